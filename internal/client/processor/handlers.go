package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nutrisync/internal/client/client"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/records"
	"github.com/dmitrijs2005/nutrisync/internal/common"
	"github.com/goccy/go-json"
)

// binding wires one entity type to its remote calls and local store. A nil
// update means the server cannot update the entity in place; updates are
// then applied by deleting the remote record and creating a new one.
type binding[Req any, Rec models.Record] struct {
	entity  models.EntityType
	store   records.Store[Rec]
	create  func(ctx context.Context, req Req) (*Rec, error)
	update  func(ctx context.Context, id string, req Req) (*Rec, error)
	remove  func(ctx context.Context, id string) error
	prepare func(ctx context.Context, req *Req) error
}

func register[Req any, Rec models.Record](p *Processor, b binding[Req, Rec]) {
	p.registry.Register(b.entity, models.OperationCreate, func(ctx context.Context, e *models.QueueEntry) error {
		return handleCreate(ctx, p, b, e)
	})
	p.registry.Register(b.entity, models.OperationUpdate, func(ctx context.Context, e *models.QueueEntry) error {
		return handleUpdate(ctx, p, b, e)
	})
	p.registry.Register(b.entity, models.OperationDelete, func(ctx context.Context, e *models.QueueEntry) error {
		return handleDelete(ctx, p, b, e)
	})
}

func (p *Processor) registerDefaults() {
	register(p, binding[models.FoodRequest, models.Food]{
		entity: models.EntityFood,
		store:  p.records.Foods,
		create: p.api.CreateFood,
		update: p.api.UpdateFood,
		remove: p.api.DeleteFood,
	})
	register(p, binding[models.DiaryEntryRequest, models.DiaryEntry]{
		entity: models.EntityDiaryEntry,
		store:  p.records.DiaryEntries,
		create: p.api.CreateDiaryEntry,
		remove: p.api.DeleteDiaryEntry,
	})
	register(p, binding[models.RecipeRequest, models.Recipe]{
		entity: models.EntityRecipe,
		store:  p.records.Recipes,
		create: p.api.CreateRecipe,
		update: p.api.UpdateRecipe,
		remove: p.api.DeleteRecipe,
	})
	register(p, binding[models.SavedMealRequest, models.SavedMeal]{
		entity: models.EntitySavedMeal,
		store:  p.records.SavedMeals,
		create: p.api.CreateSavedMeal,
		update: p.api.UpdateSavedMeal,
		remove: p.api.DeleteSavedMeal,
	})
	register(p, binding[models.WeightEntryRequest, models.WeightEntry]{
		entity: models.EntityWeightEntry,
		store:  p.records.WeightEntries,
		create: p.api.CreateWeightEntry,
		remove: p.api.DeleteWeightEntry,
		prepare: func(ctx context.Context, req *models.WeightEntryRequest) error {
			return p.fillUserID(ctx, &req.UserID)
		},
	})
	register(p, binding[models.ExerciseEntryRequest, models.ExerciseEntry]{
		entity: models.EntityExerciseEntry,
		store:  p.records.ExerciseEntries,
		create: p.api.CreateExerciseEntry,
		update: p.api.UpdateExerciseEntry,
		remove: p.api.DeleteExerciseEntry,
		prepare: func(ctx context.Context, req *models.ExerciseEntryRequest) error {
			return p.fillUserID(ctx, &req.UserID)
		},
	})

	// Profile changes sync through a separate path.
	noop := func(context.Context, *models.QueueEntry) error { return nil }
	for _, op := range models.Operations {
		p.registry.Register(models.EntityUser, op, noop)
	}
}

func (p *Processor) fillUserID(ctx context.Context, userID *string) error {
	if *userID != "" {
		return nil
	}
	id, err := p.currentUserID(ctx)
	if err != nil {
		return err
	}
	*userID = id
	return nil
}

func decodeRequest[Req any](ctx context.Context, p *Processor, prepare func(context.Context, *Req) error, e *models.QueueEntry) (Req, error) {
	var req Req
	if len(e.Payload) == 0 {
		return req, fmt.Errorf("%w for %s %s", models.ErrMissingPayload, e.Operation, e.EntityType)
	}
	if err := json.Unmarshal(e.Payload, &req); err != nil {
		return req, fmt.Errorf("%w: decode %s payload: %w", models.ErrSerialization, e.EntityType, err)
	}
	if prepare != nil {
		if err := prepare(ctx, &req); err != nil {
			return req, err
		}
	}
	if err := p.validate.StructCtx(ctx, &req); err != nil {
		return req, fmt.Errorf("%w: %w", models.ErrSerialization, err)
	}
	return req, nil
}

// replaceLocal swaps the record stored under oldID for rec. The entry is
// completed in the same queue transaction that points queued follow-ups at
// the new id, so a change queued meanwhile cannot keep the stale id.
func replaceLocal[Req any, Rec models.Record](ctx context.Context, p *Processor, b binding[Req, Rec], e *models.QueueEntry, oldID string, rec Rec) error {
	newID := rec.RecordID()
	if oldID != newID {
		if err := b.store.Delete(ctx, oldID); err != nil {
			return err
		}
	}
	if err := b.store.Insert(ctx, rec); err != nil {
		return err
	}

	now := p.now()
	err := p.queue.CompleteRemapped(ctx, e.ID, now, b.entity, oldID, newID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	e.Status = models.StatusCompleted
	e.ProcessedAt = &now
	return nil
}

func handleCreate[Req any, Rec models.Record](ctx context.Context, p *Processor, b binding[Req, Rec], e *models.QueueEntry) error {
	req, err := decodeRequest(ctx, p, b.prepare, e)
	if err != nil {
		return err
	}

	rec, err := b.create(ctx, req)
	if err != nil {
		return fmt.Errorf("create %s: %w", b.entity, err)
	}

	return replaceLocal(ctx, p, b, e, e.EntityID, *rec)
}

func handleUpdate[Req any, Rec models.Record](ctx context.Context, p *Processor, b binding[Req, Rec], e *models.QueueEntry) error {
	req, err := decodeRequest(ctx, p, b.prepare, e)
	if err != nil {
		return err
	}

	if b.update == nil {
		return recreate(ctx, p, b, e, req)
	}

	rec, err := b.update(ctx, e.EntityID, req)
	if errors.Is(err, client.ErrNotFound) {
		p.NotifyConflict(models.SyncConflict{
			EntityType: b.entity,
			EntityID:   e.EntityID,
			Message:    "updated locally but no longer exists on the server",
		})
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", b.entity, err)
	}

	return b.store.Update(ctx, *rec)
}

// recreate applies an update to an entity the server cannot update in place.
func recreate[Req any, Rec models.Record](ctx context.Context, p *Processor, b binding[Req, Rec], e *models.QueueEntry, req Req) error {
	if !models.IsPlaceholder(e.EntityID) {
		if err := b.remove(ctx, e.EntityID); err != nil && !errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("delete %s before recreate: %w", b.entity, err)
		}
	}

	rec, err := b.create(ctx, req)
	if err != nil {
		return fmt.Errorf("recreate %s: %w", b.entity, err)
	}

	return replaceLocal(ctx, p, b, e, e.EntityID, *rec)
}

func handleDelete[Req any, Rec models.Record](ctx context.Context, p *Processor, b binding[Req, Rec], e *models.QueueEntry) error {
	// A placeholder never reached the server.
	if models.IsPlaceholder(e.EntityID) {
		return b.store.Delete(ctx, e.EntityID)
	}

	if err := b.remove(ctx, e.EntityID); err != nil && !errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("delete %s: %w", b.entity, err)
	}

	return b.store.Delete(ctx, e.EntityID)
}
