package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/client"
	"github.com/dmitrijs2005/nutrisync/internal/client/migrations"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/queue"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/records"
	"github.com/dmitrijs2005/nutrisync/internal/client/repositories/users"
	"github.com/dmitrijs2005/nutrisync/internal/common"
	"github.com/dmitrijs2005/nutrisync/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	api   *fakeAPI
	queue *queue.SQLiteRepository
	recs  *records.Repositories
	users *users.SQLiteRepository
	proc  *Processor
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db.DB))

	f := &fixture{
		api:   newFakeAPI(),
		queue: queue.NewSQLiteRepository(db),
		recs:  records.NewRepositories(db),
		users: users.NewSQLiteRepository(db),
	}
	f.proc = New(f.queue, f.api, f.recs, f.users)
	return f
}

func (f *fixture) enqueue(t *testing.T, et models.EntityType, id string, op models.Operation, payload string) *models.QueueEntry {
	t.Helper()
	e := &models.QueueEntry{EntityType: et, EntityID: id, Operation: op}
	if payload != "" {
		e.Payload = []byte(payload)
	}
	_, err := f.queue.Enqueue(context.Background(), e)
	require.NoError(t, err)
	return e
}

func (f *fixture) get(t *testing.T, id int64) *models.QueueEntry {
	t.Helper()
	e, err := f.queue.Get(context.Background(), id)
	require.NoError(t, err)
	return e
}

func TestRegistryCoversEveryPair(t *testing.T) {
	f := setup(t)
	for _, et := range models.EntityTypes {
		for _, op := range models.Operations {
			_, ok := f.proc.Registry().Lookup(et, op)
			assert.True(t, ok, "%s/%s", et, op)
		}
	}
	assert.Equal(t, len(models.EntityTypes)*len(models.Operations), f.proc.Registry().Len())
}

func TestCreate_ReplacesPlaceholder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.recs.Foods.Insert(ctx, models.Food{ID: "temp_abc", Name: "Apple", Calories: 95}))
	e := f.enqueue(t, models.EntityFood, "temp_abc", models.OperationCreate, `{"name":"Apple","calories":95}`)

	assert.True(t, f.proc.Process(ctx, e))

	_, err := f.recs.Foods.Get(ctx, "temp_abc")
	assert.ErrorIs(t, err, common.ErrNotFound)

	foods, err := f.recs.Foods.List(ctx)
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.NotEqual(t, "temp_abc", foods[0].ID)
	assert.Equal(t, 95, foods[0].Calories)

	got := f.get(t, e.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.NotNil(t, got.ProcessedAt)
}

func TestCreate_RemapsFollowUps(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	create := f.enqueue(t, models.EntityFood, "temp_1", models.OperationCreate, `{"name":"Apple","calories":95}`)
	del := f.enqueue(t, models.EntityFood, "temp_1", models.OperationDelete, "")

	require.True(t, f.proc.Process(ctx, create))

	foods, err := f.recs.Foods.List(ctx)
	require.NoError(t, err)
	require.Len(t, foods, 1)

	got := f.get(t, del.ID)
	assert.Equal(t, foods[0].ID, got.EntityID)
	assert.Equal(t, models.OperationDelete, got.Operation)

	require.True(t, f.proc.Process(ctx, got))
	assert.Equal(t, 1, f.api.callCount("DeleteFood"))

	foods, err = f.recs.Foods.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, foods)
}

func TestUpdate_OverwritesLocal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	srv, err := f.api.CreateFood(ctx, models.FoodRequest{Name: "Apple", Calories: 95})
	require.NoError(t, err)
	require.NoError(t, f.recs.Foods.Insert(ctx, *srv))

	e := f.enqueue(t, models.EntityFood, srv.ID, models.OperationUpdate, `{"name":"Apple","calories":52}`)
	require.True(t, f.proc.Process(ctx, e))

	got, err := f.recs.Foods.Get(ctx, srv.ID)
	require.NoError(t, err)
	assert.Equal(t, 52, got.Calories)
}

func TestUpdate_MissingRemoteEmitsConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ch, cancel := f.proc.Conflicts().Subscribe()
	defer cancel()

	e := f.enqueue(t, models.EntityFood, "gone", models.OperationUpdate, `{"name":"Apple","calories":1}`)
	assert.False(t, f.proc.Process(ctx, e))

	select {
	case c := <-ch:
		assert.Equal(t, models.EntityFood, c.EntityType)
		assert.Equal(t, "gone", c.EntityID)
	case <-time.After(time.Second):
		t.Fatal("no conflict")
	}

	got := f.get(t, e.ID)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, models.SyncErrorNotFound, got.ErrorKind)
	assert.Equal(t, 1, got.RetryCount)
}

func TestDelete_NotFoundIsSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.recs.Foods.Insert(ctx, models.Food{ID: "srv-1"}))
	e := f.enqueue(t, models.EntityFood, "srv-1", models.OperationDelete, "")

	assert.True(t, f.proc.Process(ctx, e))
	assert.Equal(t, 1, f.api.callCount("DeleteFood"))

	_, err := f.recs.Foods.Get(ctx, "srv-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, models.StatusCompleted, f.get(t, e.ID).Status)
}

func TestDelete_PlaceholderSkipsRemote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.recs.WeightEntries.Insert(ctx, models.WeightEntry{ID: "temp_w"}))
	e := f.enqueue(t, models.EntityWeightEntry, "temp_w", models.OperationDelete, "")

	assert.True(t, f.proc.Process(ctx, e))
	assert.Zero(t, f.api.callCount("DeleteWeightEntry"))

	_, err := f.recs.WeightEntries.Get(ctx, "temp_w")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDiaryUpdate_DeletesAndRecreates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	old, err := f.api.CreateDiaryEntry(ctx, models.DiaryEntryRequest{Date: "2024-03-01", Meal: "lunch", FoodID: "f1", Servings: 1})
	require.NoError(t, err)
	require.NoError(t, f.recs.DiaryEntries.Insert(ctx, *old))

	e := f.enqueue(t, models.EntityDiaryEntry, old.ID, models.OperationUpdate,
		`{"date":"2024-03-01","meal":"dinner","food_id":"f1","servings":2}`)
	follow := f.enqueue(t, models.EntityDiaryEntry, old.ID, models.OperationDelete, "")

	require.True(t, f.proc.Process(ctx, e))
	assert.Equal(t, 1, f.api.callCount("DeleteDiaryEntry"))
	assert.Equal(t, 2, f.api.callCount("CreateDiaryEntry"))

	_, err = f.recs.DiaryEntries.Get(ctx, old.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	list, err := f.recs.DiaryEntries.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "dinner", list[0].Meal)
	assert.Equal(t, list[0].ID, f.get(t, follow.ID).EntityID)
}

func TestDiaryUpdate_ToleratesMissingRemote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	e := f.enqueue(t, models.EntityDiaryEntry, "gone", models.OperationUpdate,
		`{"date":"2024-03-01","meal":"dinner","food_id":"f1","servings":2}`)

	assert.True(t, f.proc.Process(ctx, e))
}

func TestWeightCreate_FillsCurrentUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	e := f.enqueue(t, models.EntityWeightEntry, "temp_w", models.OperationCreate, `{"date":"2024-03-01","weight_kg":70}`)

	assert.False(t, f.proc.Process(ctx, e), "no user yet")
	got := f.get(t, e.ID)
	assert.Contains(t, got.LastError, ErrNoUser.Error())
	assert.Equal(t, models.SyncErrorUnknown, got.ErrorKind)
	assert.Zero(t, f.api.callCount("CreateWeightEntry"))

	require.NoError(t, f.users.SetCurrent(ctx, models.User{ID: "u1", Email: "a@example.com"}))
	require.True(t, f.proc.Process(ctx, got))

	list, err := f.recs.WeightEntries.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].UserID)
}

func TestSerializationFailures(t *testing.T) {
	tests := []struct {
		name    string
		op      models.Operation
		payload string
	}{
		{"missing payload", models.OperationCreate, ""},
		{"bad json", models.OperationCreate, `{"name":`},
		{"wrong type", models.OperationUpdate, `{"name":"A","calories":"lots"}`},
		{"validation", models.OperationCreate, `{"calories":10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			e := f.enqueue(t, models.EntityFood, "temp_1", tt.op, tt.payload)

			assert.False(t, f.proc.Process(context.Background(), e))

			got := f.get(t, e.ID)
			assert.Equal(t, models.StatusFailed, got.Status)
			assert.Equal(t, models.SyncErrorSerialization, got.ErrorKind)
			assert.NotEmpty(t, got.LastError)
			assert.Zero(t, f.api.callCount("CreateFood")+f.api.callCount("UpdateFood"))
		})
	}
}

func TestRemoteUnavailable(t *testing.T) {
	f := setup(t)
	f.api.setErr("CreateFood", client.ErrUnavailable)

	e := f.enqueue(t, models.EntityFood, "temp_1", models.OperationCreate, `{"name":"Apple","calories":95}`)
	assert.False(t, f.proc.Process(context.Background(), e))

	got := f.get(t, e.ID)
	assert.Equal(t, models.SyncErrorNetwork, got.ErrorKind)
	assert.Equal(t, 1, got.RetryCount)
	assert.Contains(t, got.LastError, "server unavailable")
}

func TestPanicIsRecorded(t *testing.T) {
	f := setup(t)
	f.proc.Registry().Register(models.EntityRecipe, models.OperationDelete, func(context.Context, *models.QueueEntry) error {
		panic("kaboom")
	})

	e := f.enqueue(t, models.EntityRecipe, "r1", models.OperationDelete, "")
	assert.False(t, f.proc.Process(context.Background(), e))

	got := f.get(t, e.ID)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Contains(t, got.LastError, "kaboom")
}

func TestUnknownHandler(t *testing.T) {
	f := setup(t)

	e := f.enqueue(t, models.EntityType("pantry"), "p1", models.OperationCreate, "{}")
	assert.False(t, f.proc.Process(context.Background(), e))
	assert.Contains(t, f.get(t, e.ID).LastError, ErrNoHandler.Error())
}

func TestUserEntriesAreNoop(t *testing.T) {
	f := setup(t)

	e := f.enqueue(t, models.EntityUser, "u1", models.OperationUpdate, `{"display_name":"x"}`)
	assert.True(t, f.proc.Process(context.Background(), e))
	assert.Equal(t, models.StatusCompleted, f.get(t, e.ID).Status)
}

func TestEntryRemovedMidFlight(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	e := f.enqueue(t, models.EntityRecipe, "r1", models.OperationDelete, "")
	_, err := f.queue.DeleteAll(ctx)
	require.NoError(t, err)

	assert.True(t, f.proc.Process(ctx, e))

	f.api.setErr("DeleteRecipe", errors.New("boom"))
	assert.False(t, f.proc.Process(ctx, e))
}

// brokenCompletion fails every attempt to complete an entry with err.
type brokenCompletion struct {
	*queue.SQLiteRepository
	err error
}

func (b brokenCompletion) MarkStatus(context.Context, int64, models.QueueStatus, *time.Time) error {
	return b.err
}

func (b brokenCompletion) CompleteRemapped(context.Context, int64, time.Time, models.EntityType, string, string) error {
	return b.err
}

func TestCompletionFailureIsRecorded(t *testing.T) {
	tests := []struct {
		name    string
		et      models.EntityType
		id      string
		op      models.Operation
		payload string
		method  string
	}{
		{"create", models.EntityFood, "temp_1", models.OperationCreate, `{"name":"Apple","calories":95}`, "CreateFood"},
		{"delete", models.EntityFood, "srv-1", models.OperationDelete, "", "DeleteFood"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			proc := New(brokenCompletion{f.queue, errors.New("disk I/O error")}, f.api, f.recs, f.users)

			e := f.enqueue(t, tt.et, tt.id, tt.op, tt.payload)
			assert.False(t, proc.Process(context.Background(), e))
			assert.Equal(t, 1, f.api.callCount(tt.method))

			got := f.get(t, e.ID)
			assert.Equal(t, models.StatusFailed, got.Status)
			assert.Equal(t, 1, got.RetryCount)
			assert.Contains(t, got.LastError, "disk I/O error")
		})
	}
}

// interleavedQueue runs before ahead of every CompleteRemapped call.
type interleavedQueue struct {
	*queue.SQLiteRepository
	before func(ctx context.Context)
}

func (q interleavedQueue) CompleteRemapped(ctx context.Context, id int64, at time.Time, et models.EntityType, from, to string) error {
	q.before(ctx)
	return q.SQLiteRepository.CompleteRemapped(ctx, id, at, et, from, to)
}

func TestCreate_DeleteQueuedInFlightGetsServerID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var deleteID int64
	q := interleavedQueue{f.queue, func(ctx context.Context) {
		id, err := f.queue.Replace(ctx, &models.QueueEntry{
			EntityType: models.EntityFood, EntityID: "temp_1", Operation: models.OperationDelete,
		})
		require.NoError(t, err)
		deleteID = id
	}}
	proc := New(q, f.api, f.recs, f.users)

	e := f.enqueue(t, models.EntityFood, "temp_1", models.OperationCreate, `{"name":"Apple","calories":95}`)
	assert.True(t, proc.Process(ctx, e))

	del := f.get(t, deleteID)
	assert.False(t, models.IsPlaceholder(del.EntityID))
	assert.Equal(t, models.OperationDelete, del.Operation)
	assert.Equal(t, models.StatusPending, del.Status)

	_, err := f.queue.Get(ctx, e.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
