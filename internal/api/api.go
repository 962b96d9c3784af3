// Package api is the wire contract between the sync client and the
// nutrition server: the gRPC service and method names, the message
// envelopes and the JSON codec used to encode them.
package api

import (
	"strings"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "nutrisync.v1.NutritionService"

var entityMethodNames = map[models.EntityType]string{
	models.EntityFood:          "Food",
	models.EntityDiaryEntry:    "DiaryEntry",
	models.EntityRecipe:        "Recipe",
	models.EntitySavedMeal:     "SavedMeal",
	models.EntityWeightEntry:   "WeightEntry",
	models.EntityExerciseEntry: "ExerciseEntry",
}

// MethodName returns the short method name, e.g. "CreateFood".
func MethodName(entity models.EntityType, op models.Operation) string {
	verb := string(op)
	if verb != "" {
		verb = strings.ToUpper(verb[:1]) + verb[1:]
	}
	return verb + entityMethodNames[entity]
}

// FullMethod returns the method path used by grpc.ClientConn.Invoke.
func FullMethod(entity models.EntityType, op models.Operation) string {
	return "/" + ServiceName + "/" + MethodName(entity, op)
}

// SupportsUpdate reports whether the server exposes an update method for
// entity. Diary and weight entries are immutable remotely.
func SupportsUpdate(entity models.EntityType) bool {
	switch entity {
	case models.EntityDiaryEntry, models.EntityWeightEntry, models.EntityUser:
		return false
	}
	return true
}

// UpdateRequest carries the id of the record being replaced and its new body.
type UpdateRequest[T any] struct {
	ID   string `json:"id"`
	Body T      `json:"body"`
}

// DeleteRequest identifies the record to delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// Empty is the response of calls that return nothing.
type Empty struct{}
