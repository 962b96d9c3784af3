// Package queue persists the sync queue: the ordered list of local mutations
// waiting to be applied to the remote API.
//
// Entries are processed in created_at order, ties broken by id. The store
// does not enforce mutual exclusion between processors; callers serialize
// drains themselves.
package queue
