package task

import (
	"database/sql"
	"encoding/json"

	"github.com/skubi6/kpi/errors"
)

// TaskScanArgs holds the variables needed for scanning a task from a database
// row. Follows the same pattern as the store's other scan helpers.
type TaskScanArgs struct {
	Data               string
	Messages           string
	LastSubmissionTime sql.NullTime
	Result             sql.NullString
}

// GetTaskScanArgs returns a TaskScanArgs struct with all variables ready for scanning
func GetTaskScanArgs() *TaskScanArgs {
	return &TaskScanArgs{}
}

// GetTaskScanTargets returns a slice of pointers for the task and scan args,
// in the order expected by the standard task SELECT query
func GetTaskScanTargets(t *Task, args *TaskScanArgs) []interface{} {
	return []interface{}{
		&t.UID,
		&t.Kind,
		&t.Owner,
		&args.Data,
		&args.Messages,
		&t.Status,
		&t.DateCreated,
		&args.LastSubmissionTime,
		&args.Result,
	}
}

// ProcessTaskScanArgs processes the scanned arguments and populates the task
// struct. Returns an error if JSON unmarshaling fails.
func ProcessTaskScanArgs(t *Task, args *TaskScanArgs) error {
	t.Data = map[string]any{}
	if args.Data != "" {
		if err := json.Unmarshal([]byte(args.Data), &t.Data); err != nil {
			return errors.Wrapf(err, "failed to unmarshal data for task %s", t.UID)
		}
	}

	t.Messages = Messages{}
	if args.Messages != "" {
		if err := json.Unmarshal([]byte(args.Messages), &t.Messages); err != nil {
			return errors.Wrapf(err, "failed to unmarshal messages for task %s", t.UID)
		}
	}

	if args.LastSubmissionTime.Valid {
		ts := args.LastSubmissionTime.Time.UTC()
		t.LastSubmissionTime = &ts
	}
	if args.Result.Valid {
		t.Result = args.Result.String
	}

	return nil
}

// ScanTaskFromRows scans a single task from sql.Rows (for use in loops)
func ScanTaskFromRows(rows *sql.Rows, t *Task) error {
	args := GetTaskScanArgs()
	targets := GetTaskScanTargets(t, args)

	if err := rows.Scan(targets...); err != nil {
		return err
	}

	return ProcessTaskScanArgs(t, args)
}

// StandardTaskSelectColumns returns the standard column list for task SELECT queries
func StandardTaskSelectColumns() string {
	return `uid, kind, owner, data, messages, status,
		date_created, last_submission_time, result`
}
