package records

import (
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/dbx"
)

// Repositories groups the local stores of every syncable entity type.
type Repositories struct {
	Foods           Store[models.Food]
	DiaryEntries    Store[models.DiaryEntry]
	Recipes         Store[models.Recipe]
	SavedMeals      Store[models.SavedMeal]
	WeightEntries   Store[models.WeightEntry]
	ExerciseEntries Store[models.ExerciseEntry]
}

func NewRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Foods:           NewSQLiteRepository[models.Food](db, models.EntityFood),
		DiaryEntries:    NewSQLiteRepository[models.DiaryEntry](db, models.EntityDiaryEntry),
		Recipes:         NewSQLiteRepository[models.Recipe](db, models.EntityRecipe),
		SavedMeals:      NewSQLiteRepository[models.SavedMeal](db, models.EntitySavedMeal),
		WeightEntries:   NewSQLiteRepository[models.WeightEntry](db, models.EntityWeightEntry),
		ExerciseEntries: NewSQLiteRepository[models.ExerciseEntry](db, models.EntityExerciseEntry),
	}
}
