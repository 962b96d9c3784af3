package models

import "time"

// Record is anything the local store can persist by id.
type Record interface {
	RecordID() string
}

// Food is a food item with per-serving nutrition values.
type Food struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"protein_g,omitempty"`
	CarbsG      float64   `json:"carbs_g,omitempty"`
	FatG        float64   `json:"fat_g,omitempty"`
	ServingSize float64   `json:"serving_size,omitempty"`
	ServingUnit string    `json:"serving_unit,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (f Food) RecordID() string { return f.ID }

// FoodRequest is the body of create/update food calls.
type FoodRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Brand       string  `json:"brand,omitempty" validate:"max=200"`
	Calories    int     `json:"calories" validate:"gte=0"`
	ProteinG    float64 `json:"protein_g,omitempty" validate:"gte=0"`
	CarbsG      float64 `json:"carbs_g,omitempty" validate:"gte=0"`
	FatG        float64 `json:"fat_g,omitempty" validate:"gte=0"`
	ServingSize float64 `json:"serving_size,omitempty" validate:"gte=0"`
	ServingUnit string  `json:"serving_unit,omitempty" validate:"max=32"`
}

// DiaryEntry logs consumption of a food or recipe on a given day.
type DiaryEntry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Meal      string    `json:"meal"`
	FoodID    string    `json:"food_id,omitempty"`
	RecipeID  string    `json:"recipe_id,omitempty"`
	Servings  float64   `json:"servings"`
	Calories  int       `json:"calories"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d DiaryEntry) RecordID() string { return d.ID }

// DiaryEntryRequest is the body of create diary entry calls.
type DiaryEntryRequest struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Meal     string  `json:"meal" validate:"required,oneof=breakfast lunch dinner snack"`
	FoodID   string  `json:"food_id,omitempty" validate:"required_without=RecipeID"`
	RecipeID string  `json:"recipe_id,omitempty" validate:"required_without=FoodID"`
	Servings float64 `json:"servings" validate:"gt=0"`
	Calories int     `json:"calories" validate:"gte=0"`
}

// RecipeIngredient is one line of a recipe.
type RecipeIngredient struct {
	FoodID string  `json:"food_id" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Unit   string  `json:"unit,omitempty"`
}

// Recipe groups ingredients into a dish with a number of servings.
type Recipe struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Servings      float64            `json:"servings"`
	Ingredients   []RecipeIngredient `json:"ingredients,omitempty"`
	CaloriesTotal int                `json:"calories_total"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (r Recipe) RecordID() string { return r.ID }

// RecipeRequest is the body of create/update recipe calls. Updates may carry
// only the fields that changed.
type RecipeRequest struct {
	Name        string             `json:"name,omitempty" validate:"max=200"`
	Servings    float64            `json:"servings,omitempty" validate:"gte=0"`
	Ingredients []RecipeIngredient `json:"ingredients,omitempty" validate:"dive"`
}

// MealItem is one component of a saved meal.
type MealItem struct {
	FoodID   string  `json:"food_id,omitempty"`
	RecipeID string  `json:"recipe_id,omitempty"`
	Servings float64 `json:"servings" validate:"gt=0"`
}

// SavedMeal is a reusable combination of foods and recipes.
type SavedMeal struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Items     []MealItem `json:"items,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (m SavedMeal) RecordID() string { return m.ID }

// SavedMealRequest is the body of create/update saved meal calls.
type SavedMealRequest struct {
	Name  string     `json:"name" validate:"required,max=200"`
	Items []MealItem `json:"items,omitempty" validate:"dive"`
	Notes string     `json:"notes,omitempty" validate:"max=2000"`
}

// WeightEntry is one body-weight measurement.
type WeightEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	WeightKg  float64   `json:"weight_kg"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w WeightEntry) RecordID() string { return w.ID }

// WeightEntryRequest is the body of create weight entry calls. UserID is
// filled from the current user when the payload omits it.
type WeightEntryRequest struct {
	UserID   string  `json:"user_id" validate:"required"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	WeightKg float64 `json:"weight_kg" validate:"gt=0,lte=1000"`
	Note     string  `json:"note,omitempty" validate:"max=500"`
}

// ExerciseEntry records a workout and the energy it burned.
type ExerciseEntry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Date           string    `json:"date"`
	Name           string    `json:"name"`
	DurationMin    int       `json:"duration_min"`
	CaloriesBurned int       `json:"calories_burned"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (e ExerciseEntry) RecordID() string { return e.ID }

// ExerciseEntryRequest is the body of create/update exercise calls.
type ExerciseEntryRequest struct {
	UserID         string `json:"user_id" validate:"required"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Name           string `json:"name" validate:"required,max=200"`
	DurationMin    int    `json:"duration_min" validate:"gte=0"`
	CaloriesBurned int    `json:"calories_burned" validate:"gte=0"`
}

// User is the signed-in account whose data is being synced.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}
