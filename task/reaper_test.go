package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kpitest "github.com/skubi6/kpi/internal/testing"
	"github.com/skubi6/kpi/logger"
	"github.com/skubi6/kpi/task"
)

func TestMarkStuckAsErrored(t *testing.T) {
	db := kpitest.CreateTestDB(t)
	store := task.NewStore(db)

	data := map[string]any{"source": "aXYZ", "type": "csv"}
	stuckCreated := task.New(task.KindExport, "bob", data)
	stuckProcessing := task.New(task.KindExport, "bob", data)
	young := task.New(task.KindExport, "bob", data)
	for _, tk := range []*task.Task{stuckCreated, stuckProcessing, young} {
		require.NoError(t, store.Create(tk))
	}
	require.NoError(t, store.SaveStatus(stuckProcessing.UID, task.StatusProcessing))

	dayAgo := time.Now().UTC().Add(-24 * time.Hour)
	backdate(t, db, stuckCreated.UID, dayAgo)
	backdate(t, db, stuckProcessing.UID, dayAgo)

	// Cutoff is 4x the max run time: a day-old task is far past 4x30m
	task.MarkStuckAsErrored(store, logger.NewTest(), "bob", "aXYZ", 30*time.Minute)

	for _, uid := range []string{stuckCreated.UID, stuckProcessing.UID} {
		got, err := store.Get(uid)
		require.NoError(t, err)
		assert.Equal(t, task.StatusError, got.Status, uid)
	}
	got, err := store.Get(young.UID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCreated, got.Status, "young tasks are untouched")
}

func TestMarkStuckAsErrored_GracePeriod(t *testing.T) {
	db := kpitest.CreateTestDB(t)
	store := task.NewStore(db)

	// Older than maxRunTime but younger than 4x: queueing delay, not stuck
	slow := task.New(task.KindExport, "bob", map[string]any{"source": "aXYZ"})
	require.NoError(t, store.Create(slow))
	backdate(t, db, slow.UID, time.Now().UTC().Add(-2*30*time.Minute))

	task.MarkStuckAsErrored(store, logger.NewTest(), "bob", "aXYZ", 30*time.Minute)

	got, err := store.Get(slow.UID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCreated, got.Status)
}

func TestMarkStuckAsErrored_ScopedToOwnerAndSource(t *testing.T) {
	db := kpitest.CreateTestDB(t)
	store := task.NewStore(db)

	dayAgo := time.Now().UTC().Add(-24 * time.Hour)
	otherOwner := task.New(task.KindExport, "eve", map[string]any{"source": "aXYZ"})
	otherSource := task.New(task.KindExport, "bob", map[string]any{"source": "bQRS"})
	for _, tk := range []*task.Task{otherOwner, otherSource} {
		require.NoError(t, store.Create(tk))
		backdate(t, db, tk.UID, dayAgo)
	}

	task.MarkStuckAsErrored(store, logger.NewTest(), "bob", "aXYZ", 30*time.Minute)

	for _, uid := range []string{otherOwner.UID, otherSource.UID} {
		got, err := store.Get(uid)
		require.NoError(t, err)
		assert.Equal(t, task.StatusCreated, got.Status, uid)
	}
}
