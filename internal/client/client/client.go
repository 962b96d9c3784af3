package client

import (
	"context"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
)

// Client is the remote nutrition API.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	CreateFood(ctx context.Context, req models.FoodRequest) (*models.Food, error)
	UpdateFood(ctx context.Context, id string, req models.FoodRequest) (*models.Food, error)
	DeleteFood(ctx context.Context, id string) error

	CreateDiaryEntry(ctx context.Context, req models.DiaryEntryRequest) (*models.DiaryEntry, error)
	DeleteDiaryEntry(ctx context.Context, id string) error

	CreateRecipe(ctx context.Context, req models.RecipeRequest) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, req models.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error

	CreateSavedMeal(ctx context.Context, req models.SavedMealRequest) (*models.SavedMeal, error)
	UpdateSavedMeal(ctx context.Context, id string, req models.SavedMealRequest) (*models.SavedMeal, error)
	DeleteSavedMeal(ctx context.Context, id string) error

	CreateWeightEntry(ctx context.Context, req models.WeightEntryRequest) (*models.WeightEntry, error)
	DeleteWeightEntry(ctx context.Context, id string) error

	CreateExerciseEntry(ctx context.Context, req models.ExerciseEntryRequest) (*models.ExerciseEntry, error)
	UpdateExerciseEntry(ctx context.Context, id string, req models.ExerciseEntryRequest) (*models.ExerciseEntry, error)
	DeleteExerciseEntry(ctx context.Context, id string) error
}
