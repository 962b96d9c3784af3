package grpc

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func mapError(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

func invalidArgument(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

func buildFood(id string, req models.FoodRequest, _ *models.Food, now time.Time) models.Food {
	return models.Food{
		ID:          id,
		Name:        req.Name,
		Brand:       req.Brand,
		Calories:    req.Calories,
		ProteinG:    req.ProteinG,
		CarbsG:      req.CarbsG,
		FatG:        req.FatG,
		ServingSize: req.ServingSize,
		ServingUnit: req.ServingUnit,
		UpdatedAt:   now,
	}
}

func buildDiaryEntry(id string, req models.DiaryEntryRequest, _ *models.DiaryEntry, now time.Time) models.DiaryEntry {
	return models.DiaryEntry{
		ID:        id,
		Date:      req.Date,
		Meal:      req.Meal,
		FoodID:    req.FoodID,
		RecipeID:  req.RecipeID,
		Servings:  req.Servings,
		Calories:  req.Calories,
		UpdatedAt: now,
	}
}

// buildRecipe merges partial updates: zero-valued fields keep the previous
// value.
func buildRecipe(id string, req models.RecipeRequest, prev *models.Recipe, now time.Time) models.Recipe {
	r := models.Recipe{ID: id}
	if prev != nil {
		r = *prev
	}
	if req.Name != "" {
		r.Name = req.Name
	}
	if req.Servings != 0 {
		r.Servings = req.Servings
	}
	if req.Ingredients != nil {
		r.Ingredients = req.Ingredients
	}
	r.UpdatedAt = now
	return r
}

func buildSavedMeal(id string, req models.SavedMealRequest, _ *models.SavedMeal, now time.Time) models.SavedMeal {
	return models.SavedMeal{ID: id, Name: req.Name, Items: req.Items, Notes: req.Notes, UpdatedAt: now}
}

func buildWeightEntry(id string, req models.WeightEntryRequest, _ *models.WeightEntry, now time.Time) models.WeightEntry {
	return models.WeightEntry{
		ID:        id,
		UserID:    req.UserID,
		Date:      req.Date,
		WeightKg:  req.WeightKg,
		Note:      req.Note,
		UpdatedAt: now,
	}
}

func buildExerciseEntry(id string, req models.ExerciseEntryRequest, _ *models.ExerciseEntry, now time.Time) models.ExerciseEntry {
	return models.ExerciseEntry{
		ID:             id,
		UserID:         req.UserID,
		Date:           req.Date,
		Name:           req.Name,
		DurationMin:    req.DurationMin,
		CaloriesBurned: req.CaloriesBurned,
		UpdatedAt:      now,
	}
}
