package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/nutrisync/internal/client/client"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
)

// fakeAPI is an in-memory client.Client. Errors set in errs are returned by
// the named method.
type fakeAPI struct {
	mu     sync.Mutex
	seq    int
	errs   map[string]error
	calls  map[string]int
	foods  map[string]models.Food
	diary  map[string]models.DiaryEntry
	weight map[string]models.WeightEntry
}

var _ client.Client = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		errs:   make(map[string]error),
		calls:  make(map[string]int),
		foods:  make(map[string]models.Food),
		diary:  make(map[string]models.DiaryEntry),
		weight: make(map[string]models.WeightEntry),
	}
}

func (f *fakeAPI) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.errs[method]
}

func (f *fakeAPI) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeAPI) setErr(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method] = err
}

func (f *fakeAPI) nextID(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeAPI) Close() error                   { return nil }
func (f *fakeAPI) Ping(ctx context.Context) error { return f.enter("Ping") }

func (f *fakeAPI) CreateFood(ctx context.Context, req models.FoodRequest) (*models.Food, error) {
	if err := f.enter("CreateFood"); err != nil {
		return nil, err
	}
	food := models.Food{ID: f.nextID("food"), Name: req.Name, Calories: req.Calories}
	f.mu.Lock()
	f.foods[food.ID] = food
	f.mu.Unlock()
	return &food, nil
}

func (f *fakeAPI) UpdateFood(ctx context.Context, id string, req models.FoodRequest) (*models.Food, error) {
	if err := f.enter("UpdateFood"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.foods[id]; !ok {
		return nil, client.ErrNotFound
	}
	food := models.Food{ID: id, Name: req.Name, Calories: req.Calories}
	f.foods[id] = food
	return &food, nil
}

func (f *fakeAPI) DeleteFood(ctx context.Context, id string) error {
	if err := f.enter("DeleteFood"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.foods[id]; !ok {
		return client.ErrNotFound
	}
	delete(f.foods, id)
	return nil
}

func (f *fakeAPI) CreateDiaryEntry(ctx context.Context, req models.DiaryEntryRequest) (*models.DiaryEntry, error) {
	if err := f.enter("CreateDiaryEntry"); err != nil {
		return nil, err
	}
	d := models.DiaryEntry{ID: f.nextID("diary"), Date: req.Date, Meal: req.Meal, FoodID: req.FoodID, Servings: req.Servings}
	f.mu.Lock()
	f.diary[d.ID] = d
	f.mu.Unlock()
	return &d, nil
}

func (f *fakeAPI) DeleteDiaryEntry(ctx context.Context, id string) error {
	if err := f.enter("DeleteDiaryEntry"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.diary[id]; !ok {
		return client.ErrNotFound
	}
	delete(f.diary, id)
	return nil
}

func (f *fakeAPI) CreateRecipe(ctx context.Context, req models.RecipeRequest) (*models.Recipe, error) {
	if err := f.enter("CreateRecipe"); err != nil {
		return nil, err
	}
	return &models.Recipe{ID: f.nextID("recipe"), Name: req.Name, Servings: req.Servings}, nil
}

func (f *fakeAPI) UpdateRecipe(ctx context.Context, id string, req models.RecipeRequest) (*models.Recipe, error) {
	if err := f.enter("UpdateRecipe"); err != nil {
		return nil, err
	}
	return &models.Recipe{ID: id, Name: req.Name, Servings: req.Servings}, nil
}

func (f *fakeAPI) DeleteRecipe(ctx context.Context, id string) error {
	return f.enter("DeleteRecipe")
}

func (f *fakeAPI) CreateSavedMeal(ctx context.Context, req models.SavedMealRequest) (*models.SavedMeal, error) {
	if err := f.enter("CreateSavedMeal"); err != nil {
		return nil, err
	}
	return &models.SavedMeal{ID: f.nextID("meal"), Name: req.Name}, nil
}

func (f *fakeAPI) UpdateSavedMeal(ctx context.Context, id string, req models.SavedMealRequest) (*models.SavedMeal, error) {
	if err := f.enter("UpdateSavedMeal"); err != nil {
		return nil, err
	}
	return &models.SavedMeal{ID: id, Name: req.Name}, nil
}

func (f *fakeAPI) DeleteSavedMeal(ctx context.Context, id string) error {
	return f.enter("DeleteSavedMeal")
}

func (f *fakeAPI) CreateWeightEntry(ctx context.Context, req models.WeightEntryRequest) (*models.WeightEntry, error) {
	if err := f.enter("CreateWeightEntry"); err != nil {
		return nil, err
	}
	w := models.WeightEntry{ID: f.nextID("weight"), UserID: req.UserID, Date: req.Date, WeightKg: req.WeightKg}
	f.mu.Lock()
	f.weight[w.ID] = w
	f.mu.Unlock()
	return &w, nil
}

func (f *fakeAPI) DeleteWeightEntry(ctx context.Context, id string) error {
	if err := f.enter("DeleteWeightEntry"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.weight[id]; !ok {
		return client.ErrNotFound
	}
	delete(f.weight, id)
	return nil
}

func (f *fakeAPI) CreateExerciseEntry(ctx context.Context, req models.ExerciseEntryRequest) (*models.ExerciseEntry, error) {
	if err := f.enter("CreateExerciseEntry"); err != nil {
		return nil, err
	}
	return &models.ExerciseEntry{ID: f.nextID("exercise"), UserID: req.UserID, Name: req.Name, Date: req.Date}, nil
}

func (f *fakeAPI) UpdateExerciseEntry(ctx context.Context, id string, req models.ExerciseEntryRequest) (*models.ExerciseEntry, error) {
	if err := f.enter("UpdateExerciseEntry"); err != nil {
		return nil, err
	}
	return &models.ExerciseEntry{ID: id, UserID: req.UserID, Name: req.Name, Date: req.Date}, nil
}

func (f *fakeAPI) DeleteExerciseEntry(ctx context.Context, id string) error {
	return f.enter("DeleteExerciseEntry")
}
