package store

import "github.com/dmitrijs2005/nutrisync/internal/client/models"

// Data holds one collection per entity type.
type Data struct {
	Foods           *Collection[models.Food]
	DiaryEntries    *Collection[models.DiaryEntry]
	Recipes         *Collection[models.Recipe]
	SavedMeals      *Collection[models.SavedMeal]
	WeightEntries   *Collection[models.WeightEntry]
	ExerciseEntries *Collection[models.ExerciseEntry]
}

func NewData() *Data {
	return &Data{
		Foods:           NewCollection[models.Food](),
		DiaryEntries:    NewCollection[models.DiaryEntry](),
		Recipes:         NewCollection[models.Recipe](),
		SavedMeals:      NewCollection[models.SavedMeal](),
		WeightEntries:   NewCollection[models.WeightEntry](),
		ExerciseEntries: NewCollection[models.ExerciseEntry](),
	}
}
