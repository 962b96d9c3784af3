// Package models defines the client-side data model of the sync engine:
// the nutrition records kept in the local store, the request shapes sent to
// the remote API, queue entries, aggregate sync status and conflict notices.
package models
