package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/records"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/users"
)

// LocalMutator applies a mutation to the local store immediately and queues
// it for the server. New records get a placeholder id until the server
// assigns one.
type LocalMutator struct {
	writer  QueueWriter
	records *records.Repositories
	users   users.Repository
	now     func() time.Time
}

func NewLocalMutator(w QueueWriter, r *records.Repositories, u users.Repository) *LocalMutator {
	return &LocalMutator{writer: w, records: r, users: u, now: time.Now}
}

func (m *LocalMutator) AddFood(ctx context.Context, req models.FoodRequest) (models.Food, error) {
	f := foodFromRequest(models.NewPlaceholderID(), req, m.now())

	if err := m.records.Foods.Insert(ctx, f); err != nil {
		return f, err
	}
	if _, err := m.writer.QueueCreate(ctx, models.EntityFood, f.ID, req); err != nil {
		return f, fmt.Errorf("queue create food: %w", err)
	}
	return f, nil
}

func (m *LocalMutator) UpdateFood(ctx context.Context, id string, req models.FoodRequest) (models.Food, error) {
	f := foodFromRequest(id, req, m.now())

	if err := m.records.Foods.Update(ctx, f); err != nil {
		return f, err
	}
	if _, err := m.writer.QueueUpdate(ctx, models.EntityFood, id, req); err != nil {
		return f, fmt.Errorf("queue update food: %w", err)
	}
	return f, nil
}

func (m *LocalMutator) DeleteFood(ctx context.Context, id string) error {
	if err := m.records.Foods.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := m.writer.QueueDelete(ctx, models.EntityFood, id); err != nil {
		return fmt.Errorf("queue delete food: %w", err)
	}
	return nil
}

// AddWeight records a measurement for the signed-in user when req has no
// user id.
func (m *LocalMutator) AddWeight(ctx context.Context, req models.WeightEntryRequest) (models.WeightEntry, error) {
	if req.UserID == "" && m.users != nil {
		u, err := m.users.Current(ctx)
		if err != nil {
			return models.WeightEntry{}, err
		}
		if u != nil {
			req.UserID = u.ID
		}
	}

	w := models.WeightEntry{
		ID:        models.NewPlaceholderID(),
		UserID:    req.UserID,
		Date:      req.Date,
		WeightKg:  req.WeightKg,
		Note:      req.Note,
		UpdatedAt: m.now().UTC(),
	}

	if err := m.records.WeightEntries.Insert(ctx, w); err != nil {
		return w, err
	}
	if _, err := m.writer.QueueCreate(ctx, models.EntityWeightEntry, w.ID, req); err != nil {
		return w, fmt.Errorf("queue create weight entry: %w", err)
	}
	return w, nil
}

func (m *LocalMutator) DeleteWeight(ctx context.Context, id string) error {
	if err := m.records.WeightEntries.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := m.writer.QueueDelete(ctx, models.EntityWeightEntry, id); err != nil {
		return fmt.Errorf("queue delete weight entry: %w", err)
	}
	return nil
}

func foodFromRequest(id string, req models.FoodRequest, now time.Time) models.Food {
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
		UpdatedAt:   now.UTC(),
	}
}
