// Package records is the local entity store: one table per entity type, each
// row holding the JSON body of the record keyed by its id.
package records
