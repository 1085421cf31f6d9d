package task

import (
	"go.uber.org/zap"
)

// ArtifactDeleter is the narrow view of artifact storage the retention
// enforcer needs. Deleting a path that was never written must be a no-op.
type ArtifactDeleter interface {
	Delete(path string) error
}

// RemoveExcess deletes the owner's oldest export tasks for a source beyond
// maxRetained, newest first by creation time. Each excess task's stored
// artifact is deleted before its record; a failure on one task does not
// abort the sweep. Returns the number of tasks removed.
//
// Runs synchronously after a successful export completes, not on a timer.
func RemoveExcess(store *Store, artifacts ArtifactDeleter, log *zap.SugaredLogger, owner, source string, maxRetained int) int {
	tasks, err := store.ListExportsBySourceKludge(owner, source)
	if err != nil {
		log.Warnw("Failed to list exports for retention",
			"owner", owner,
			"source", source,
			"error", err,
		)
		return 0
	}

	if len(tasks) <= maxRetained {
		return 0
	}

	removed := 0
	for _, t := range tasks[maxRetained:] {
		// The artifact must be reclaimed before the record that references it
		if t.Result != "" {
			if err := artifacts.Delete(t.Result); err != nil {
				log.Warnw("Failed to delete export artifact",
					"uid", t.UID,
					"result", t.Result,
					"error", err,
				)
				continue
			}
		}
		if err := store.Delete(t.UID); err != nil {
			log.Warnw("Failed to delete export task",
				"uid", t.UID,
				"error", err,
			)
			continue
		}
		removed++
	}

	return removed
}
