package task

import (
	"time"

	"go.uber.org/zap"
)

// StuckGraceFactor is the multiple of the expected maximum run time a task
// may remain non-terminal before the reaper considers it abandoned. Generous,
// to avoid false positives from queueing delay.
const StuckGraceFactor = 4

// MarkStuckAsErrored sets the status to error and logs a warning for any of
// the owner's export tasks for this source that have been in an incomplete
// state for longer than StuckGraceFactor times maxRunTime.
//
// Each task is persisted individually so a failure on one does not block
// reaping the rest. The forced error is advisory: a run that is merely slow
// will overwrite it when its own finalize write lands.
func MarkStuckAsErrored(store *Store, log *zap.SugaredLogger, owner, source string, maxRunTime time.Duration) {
	now := time.Now().UTC()
	cutoff := now.Add(-StuckGraceFactor * maxRunTime)

	stuck, err := store.ListStuckExportsKludge(owner, source, cutoff)
	if err != nil {
		log.Warnw("Failed to list stuck exports",
			"owner", owner,
			"source", source,
			"error", err,
		)
		return
	}

	for _, t := range stuck {
		log.Warnw("Stuck export",
			"uid", t.UID,
			"type", t.DataString("type"),
			"owner", t.Owner,
			"source", t.DataString("source"),
			"age", now.Sub(t.DateCreated),
		)
		if err := store.SaveStatus(t.UID, StatusError); err != nil {
			log.Warnw("Failed to mark stuck export as errored",
				"uid", t.UID,
				"error", err,
			)
		}
	}
}
