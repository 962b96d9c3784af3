package models

import "fmt"

// EntityType names the kind of record a queue entry mutates.
type EntityType string

const (
	EntityFood          EntityType = "food"
	EntityDiaryEntry    EntityType = "diary_entry"
	EntityRecipe        EntityType = "recipe"
	EntitySavedMeal     EntityType = "saved_meal"
	EntityWeightEntry   EntityType = "weight_entry"
	EntityExerciseEntry EntityType = "exercise_entry"
	EntityUser          EntityType = "user"
)

// EntityTypes lists every entity type in a stable order.
var EntityTypes = []EntityType{
	EntityFood,
	EntityDiaryEntry,
	EntityRecipe,
	EntitySavedMeal,
	EntityWeightEntry,
	EntityExerciseEntry,
	EntityUser,
}

// ParseEntityType validates s against the known entity types.
func ParseEntityType(s string) (EntityType, error) {
	for _, t := range EntityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// PartialUpdates reports whether update requests for t carry only the
// fields that changed and are merged into the stored record.
func (t EntityType) PartialUpdates() bool {
	return t == EntityRecipe
}

// Operation is the kind of mutation recorded in the queue.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Operations lists every operation in a stable order.
var Operations = []Operation{OperationCreate, OperationUpdate, OperationDelete}

// ParseOperation validates s against the known operations.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", s)
}
