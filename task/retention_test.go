package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skubi6/kpi/errors"
	kpitest "github.com/skubi6/kpi/internal/testing"
	"github.com/skubi6/kpi/logger"
	"github.com/skubi6/kpi/task"
)

// recordingDeleter records artifact deletions and can fail selected paths.
type recordingDeleter struct {
	deleted  []string
	failPath string
}

func (d *recordingDeleter) Delete(path string) error {
	if path == d.failPath {
		return errors.Newf("cannot delete %s", path)
	}
	d.deleted = append(d.deleted, path)
	return nil
}

func TestRemoveExcess(t *testing.T) {
	db := kpitest.CreateTestDB(t)
	store := task.NewStore(db)

	// Five completed exports, oldest first
	base := time.Now().UTC().Add(-time.Hour)
	var uids []string
	for i := 0; i < 5; i++ {
		tk := task.New(task.KindExport, "bob", map[string]any{"source": "aXYZ"})
		tk.Result = "bob/exports/" + tk.UID + ".csv"
		tk.Status = task.StatusComplete
		require.NoError(t, store.Create(tk))
		backdate(t, db, tk.UID, base.Add(time.Duration(i)*time.Minute))
		uids = append(uids, tk.UID)
	}

	deleter := &recordingDeleter{}
	removed := task.RemoveExcess(store, deleter, logger.NewTest(), "bob", "aXYZ", 2)
	assert.Equal(t, 3, removed)

	// The two newest survive
	for _, uid := range uids[3:] {
		_, err := store.Get(uid)
		assert.NoError(t, err, uid)
	}
	// The three oldest are gone, records and artifacts both
	for _, uid := range uids[:3] {
		_, err := store.Get(uid)
		assert.Error(t, err, uid)
		assert.Contains(t, deleter.deleted, "bob/exports/"+uid+".csv")
	}
	assert.Len(t, deleter.deleted, 3)
}

func TestRemoveExcess_UnderQuota(t *testing.T) {
	db := kpitest.CreateTestDB(t)
	store := task.NewStore(db)

	tk := task.New(task.KindExport, "bob", map[string]any{"source": "aXYZ"})
	require.NoError(t, store.Create(tk))

	deleter := &recordingDeleter{}
	assert.Equal(t, 0, task.RemoveExcess(store, deleter, logger.NewTest(), "bob", "aXYZ", 2))
	assert.Empty(t, deleter.deleted)
}

func TestRemoveExcess_ResultlessTask(t *testing.T) {
	// A task whose artifact was never written still gets removed; there is
	// simply nothing to delete from storage.
	db := kpitest.CreateTestDB(t)
	store := task.NewStore(db)

	base := time.Now().UTC().Add(-time.Hour)
	old := task.New(task.KindExport, "bob", map[string]any{"source": "aXYZ"})
	young := task.New(task.KindExport, "bob", map[string]any{"source": "aXYZ"})
	require.NoError(t, store.Create(old))
	require.NoError(t, store.Create(young))
	backdate(t, db, old.UID, base)

	deleter := &recordingDeleter{}
	assert.Equal(t, 1, task.RemoveExcess(store, deleter, logger.NewTest(), "bob", "aXYZ", 1))
	assert.Empty(t, deleter.deleted)

	_, err := store.Get(old.UID)
	assert.Error(t, err)
}

func TestRemoveExcess_ArtifactFailureKeepsRecord(t *testing.T) {
	// If the artifact cannot be deleted the record must survive, or the
	// artifact would be orphaned forever.
	db := kpitest.CreateTestDB(t)
	store := task.NewStore(db)

	base := time.Now().UTC().Add(-time.Hour)
	var uids []string
	for i := 0; i < 3; i++ {
		tk := task.New(task.KindExport, "bob", map[string]any{"source": "aXYZ"})
		tk.Result = "bob/exports/" + tk.UID + ".csv"
		require.NoError(t, store.Create(tk))
		backdate(t, db, tk.UID, base.Add(time.Duration(i)*time.Minute))
		uids = append(uids, tk.UID)
	}

	deleter := &recordingDeleter{failPath: "bob/exports/" + uids[0] + ".csv"}
	removed := task.RemoveExcess(store, deleter, logger.NewTest(), "bob", "aXYZ", 1)
	assert.Equal(t, 1, removed, "the failure is isolated to its task")

	_, err := store.Get(uids[0])
	assert.NoError(t, err, "record with undeletable artifact is kept")
	_, err = store.Get(uids[1])
	assert.Error(t, err, "the other excess task is still removed")
}
