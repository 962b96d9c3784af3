package queue

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/migrations"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/common"
	"github.com/dmitrijs2005/nutrisync/internal/dbx"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db.DB))
	return db
}

func setupRepo(t *testing.T) (*SQLiteRepository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewSQLiteRepository(setupDB(t), WithClock(clock.now)), clock
}

func entry(et models.EntityType, id string, op models.Operation, payload string) *models.QueueEntry {
	e := &models.QueueEntry{EntityType: et, EntityID: id, Operation: op}
	if payload != "" {
		e.Payload = []byte(payload)
	}
	return e
}

func TestEnqueueAndGet(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	id, err := r.Enqueue(ctx, entry(models.EntityFood, "temp_1", models.OperationCreate, `{"name":"Apple"}`))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.EntityFood, got.EntityType)
	assert.Equal(t, "temp_1", got.EntityID)
	assert.Equal(t, models.OperationCreate, got.Operation)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, 0, got.RetryCount)
	assert.JSONEq(t, `{"name":"Apple"}`, string(got.Payload))
	assert.True(t, clock.t.Equal(got.CreatedAt))
	assert.Nil(t, got.ProcessedAt)

	_, err = r.Get(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteHasNoPayload(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	id, err := r.Enqueue(ctx, entry(models.EntityWeightEntry, "w1", models.OperationDelete, ""))
	require.NoError(t, err)

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.Payload)
}

func TestListPending_OrderedByCreatedAtThenID(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	later := entry(models.EntityFood, "b", models.OperationCreate, "{}")
	later.CreatedAt = clock.t.Add(time.Minute)
	_, err := r.Enqueue(ctx, later)
	require.NoError(t, err)

	_, err = r.Enqueue(ctx, entry(models.EntityFood, "a1", models.OperationCreate, "{}"))
	require.NoError(t, err)
	_, err = r.Enqueue(ctx, entry(models.EntityFood, "a2", models.OperationCreate, "{}"))
	require.NoError(t, err)

	list, err := r.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a1", "a2", "b"}, []string{list[0].EntityID, list[1].EntityID, list[2].EntityID})

	list, err = r.ListPending(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListPendingAfter(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	old := entry(models.EntityFood, "old", models.OperationCreate, "{}")
	_, err := r.Enqueue(ctx, old)
	require.NoError(t, err)
	a := entry(models.EntityFood, "a", models.OperationCreate, "{}")
	a.CreatedAt = clock.t.Add(time.Minute)
	_, err = r.Enqueue(ctx, a)
	require.NoError(t, err)
	b := entry(models.EntityFood, "b", models.OperationCreate, "{}")
	b.CreatedAt = a.CreatedAt
	_, err = r.Enqueue(ctx, b)
	require.NoError(t, err)
	c := entry(models.EntityFood, "c", models.OperationCreate, "{}")
	c.CreatedAt = clock.t.Add(2 * time.Minute)
	_, err = r.Enqueue(ctx, c)
	require.NoError(t, err)

	list, err := r.ListPendingAfter(ctx, a.CreatedAt, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"b", "c"}, []string{list[0].EntityID, list[1].EntityID})

	list, err = r.ListPendingAfter(ctx, old.CreatedAt, old.ID, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].EntityID)
}

func TestMarkFailed_AndListFailedRetryCap(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	id, err := r.Enqueue(ctx, entry(models.EntityWeightEntry, "w1", models.OperationDelete, ""))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		require.NoError(t, r.MarkFailed(ctx, id, &models.SyncError{Kind: models.SyncErrorNetwork, Message: "timeout"}))

		got, err := r.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, got.Status)
		assert.Equal(t, i, got.RetryCount)
		assert.Equal(t, "timeout", got.LastError)
		assert.Equal(t, models.SyncErrorNetwork, got.ErrorKind)
		assert.NotNil(t, got.ProcessedAt)

		failed, err := r.ListFailed(ctx, 3, 10)
		require.NoError(t, err)
		if i < 3 {
			assert.Len(t, failed, 1)
		} else {
			assert.Empty(t, failed)
		}
	}

	pending, err := r.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	n, err := r.CountPendingOrFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, r.MarkFailed(ctx, 12345, nil), common.ErrNotFound)
}

func TestMarkStatus(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	id, err := r.Enqueue(ctx, entry(models.EntityFood, "f1", models.OperationUpdate, "{}"))
	require.NoError(t, err)

	ts := clock.t.Add(time.Second)
	require.NoError(t, r.MarkStatus(ctx, id, models.StatusCompleted, &ts))

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.ProcessedAt)
	assert.True(t, ts.Equal(*got.ProcessedAt))

	assert.ErrorIs(t, r.MarkStatus(ctx, 999, models.StatusCompleted, nil), common.ErrNotFound)
}

func TestReplace_UpdateTwiceKeepsLatest(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	_, err := r.Replace(ctx, entry(models.EntityRecipe, "r1", models.OperationUpdate, `{"servings":2}`))
	require.NoError(t, err)
	_, err = r.Replace(ctx, entry(models.EntityRecipe, "r1", models.OperationUpdate, `{"servings":4}`))
	require.NoError(t, err)

	list, err := r.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusPending, list[0].Status)
	assert.Equal(t, models.OperationUpdate, list[0].Operation)
	assert.JSONEq(t, `{"servings":4}`, string(list[0].Payload))
}

func TestReplace_UpdateOverCreateStaysCreate(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	_, err := r.Enqueue(ctx, entry(models.EntityFood, "temp_1", models.OperationCreate, `{"name":"Apple"}`))
	require.NoError(t, err)
	created := clock.t

	clock.advance(time.Minute)
	_, err = r.Enqueue(ctx, entry(models.EntityFood, "other", models.OperationCreate, `{"name":"Pear"}`))
	require.NoError(t, err)

	clock.advance(time.Minute)
	_, err = r.Replace(ctx, entry(models.EntityFood, "temp_1", models.OperationUpdate, `{"name":"Green apple"}`))
	require.NoError(t, err)

	list, err := r.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "temp_1", list[0].EntityID)
	assert.Equal(t, models.OperationCreate, list[0].Operation)
	assert.True(t, created.Equal(list[0].CreatedAt))
	assert.JSONEq(t, `{"name":"Green apple"}`, string(list[0].Payload))
}

func TestReplace_PartialUpdateMergesIntoCreate(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	_, err := r.Enqueue(ctx, entry(models.EntityRecipe, "temp_r", models.OperationCreate,
		`{"name":"Soup","servings":2,"ingredients":[{"food_id":"f1","amount":1}]}`))
	require.NoError(t, err)

	_, err = r.Replace(ctx, entry(models.EntityRecipe, "temp_r", models.OperationUpdate, `{"servings":4}`))
	require.NoError(t, err)

	list, err := r.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.OperationCreate, list[0].Operation)
	assert.JSONEq(t, `{"name":"Soup","servings":4,"ingredients":[{"food_id":"f1","amount":1}]}`,
		string(list[0].Payload))
}

func TestReplace_PartialUpdateBadPayload(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	_, err := r.Enqueue(ctx, entry(models.EntityRecipe, "temp_r", models.OperationCreate, `{"name":"Soup"}`))
	require.NoError(t, err)

	_, err = r.Replace(ctx, entry(models.EntityRecipe, "temp_r", models.OperationUpdate, `not json`))
	assert.ErrorIs(t, err, models.ErrSerialization)

	list, err := r.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.JSONEq(t, `{"name":"Soup"}`, string(list[0].Payload))
}

func TestReplace_DeleteRemovesFailedAndKeepsCompleted(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	doneID, err := r.Enqueue(ctx, entry(models.EntityFood, "f1", models.OperationCreate, "{}"))
	require.NoError(t, err)
	require.NoError(t, r.MarkStatus(ctx, doneID, models.StatusCompleted, nil))

	failedID, err := r.Enqueue(ctx, entry(models.EntityFood, "f1", models.OperationUpdate, "{}"))
	require.NoError(t, err)
	require.NoError(t, r.MarkFailed(ctx, failedID, &models.SyncError{Message: "boom"}))

	_, err = r.Replace(ctx, entry(models.EntityFood, "f1", models.OperationDelete, ""))
	require.NoError(t, err)

	list, err := r.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.StatusCompleted, list[0].Status)
	assert.Equal(t, models.OperationDelete, list[1].Operation)
	assert.Equal(t, models.StatusPending, list[1].Status)
}

func TestDeleteByEntity(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	_, err := r.Enqueue(ctx, entry(models.EntityFood, "f1", models.OperationUpdate, "{}"))
	require.NoError(t, err)
	_, err = r.Enqueue(ctx, entry(models.EntityFood, "f2", models.OperationUpdate, "{}"))
	require.NoError(t, err)

	n, err := r.DeleteByEntity(ctx, models.EntityFood, "f1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.DeleteByEntity(ctx, models.EntityFood, "f1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	count, err := r.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCompleteRemapped(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	self, err := r.Enqueue(ctx, entry(models.EntityFood, "temp_1", models.OperationCreate, "{}"))
	require.NoError(t, err)
	follow, err := r.Enqueue(ctx, entry(models.EntityFood, "temp_1", models.OperationCreate, `{"name":"x"}`))
	require.NoError(t, err)
	other, err := r.Enqueue(ctx, entry(models.EntityRecipe, "temp_1", models.OperationDelete, ""))
	require.NoError(t, err)

	require.NoError(t, r.CompleteRemapped(ctx, self, clock.t, models.EntityFood, "temp_1", "srv-9"))

	got, err := r.Get(ctx, follow)
	require.NoError(t, err)
	assert.Equal(t, "srv-9", got.EntityID)
	assert.Equal(t, models.OperationUpdate, got.Operation)

	got, err = r.Get(ctx, self)
	require.NoError(t, err)
	assert.Equal(t, "temp_1", got.EntityID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.ProcessedAt)
	assert.True(t, clock.t.Equal(*got.ProcessedAt))

	got, err = r.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "temp_1", got.EntityID)
}

func TestCompleteRemapped_EntryReplacedMeanwhile(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	create, err := r.Enqueue(ctx, entry(models.EntityFood, "temp_1", models.OperationCreate, `{"name":"x"}`))
	require.NoError(t, err)
	// A delete queued while the create is in flight replaces it.
	del, err := r.Replace(ctx, entry(models.EntityFood, "temp_1", models.OperationDelete, ""))
	require.NoError(t, err)

	err = r.CompleteRemapped(ctx, create, clock.t, models.EntityFood, "temp_1", "srv-9")
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := r.Get(ctx, del)
	require.NoError(t, err)
	assert.Equal(t, "srv-9", got.EntityID)
	assert.Equal(t, models.OperationDelete, got.Operation)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestDeleteCompletedOlderThan(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	old, err := r.Enqueue(ctx, entry(models.EntityFood, "f1", models.OperationCreate, "{}"))
	require.NoError(t, err)
	oldTS := clock.t.Add(-25 * time.Hour)
	require.NoError(t, r.MarkStatus(ctx, old, models.StatusCompleted, &oldTS))

	recent, err := r.Enqueue(ctx, entry(models.EntityFood, "f2", models.OperationCreate, "{}"))
	require.NoError(t, err)
	recentTS := clock.t.Add(-time.Hour)
	require.NoError(t, r.MarkStatus(ctx, recent, models.StatusCompleted, &recentTS))

	_, err = r.Enqueue(ctx, entry(models.EntityFood, "f3", models.OperationCreate, "{}"))
	require.NoError(t, err)

	n, err := r.DeleteCompletedOlderThan(ctx, clock.t.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.Get(ctx, old)
	assert.ErrorIs(t, err, common.ErrNotFound)

	list, err := r.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDeleteAll(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := r.Enqueue(ctx, entry(models.EntityFood, id, models.OperationCreate, "{}"))
		require.NoError(t, err)
	}

	n, err := r.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	count, err := r.CountPendingOrFailed(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFailureSummary(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	s, err := r.FailureSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.FailureSummary{}, s)

	a, err := r.Enqueue(ctx, entry(models.EntityFood, "a", models.OperationCreate, "{}"))
	require.NoError(t, err)
	b, err := r.Enqueue(ctx, entry(models.EntityFood, "b", models.OperationCreate, "{}"))
	require.NoError(t, err)

	require.NoError(t, r.MarkFailed(ctx, b, &models.SyncError{Message: "first"}))
	clock.advance(time.Second)
	require.NoError(t, r.MarkFailed(ctx, a, &models.SyncError{Message: "second"}))

	s, err = r.FailureSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, "second", s.LastError)
}

func TestWatchCounts(t *testing.T) {
	r, _ := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := r.WatchCounts(ctx)

	select {
	case c := <-ch:
		assert.Equal(t, Counts{}, c)
	case <-time.After(time.Second):
		t.Fatal("no initial counts")
	}

	id, err := r.Enqueue(ctx, entry(models.EntityFood, "a", models.OperationCreate, "{}"))
	require.NoError(t, err)

	select {
	case c := <-ch:
		assert.Equal(t, Counts{Pending: 1, PendingOrFailed: 1}, c)
	case <-time.After(time.Second):
		t.Fatal("no update after enqueue")
	}

	require.NoError(t, r.MarkFailed(ctx, id, &models.SyncError{Message: "x"}))

	select {
	case c := <-ch:
		assert.Equal(t, Counts{Pending: 0, PendingOrFailed: 1}, c)
	case <-time.After(time.Second):
		t.Fatal("no update after failure")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 10*time.Millisecond)
}
