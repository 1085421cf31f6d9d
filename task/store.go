package task

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/skubi6/kpi/errors"
)

// Store handles persistence of import/export tasks
type Store struct {
	db *sql.DB
}

// NewStore creates a new task store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new task into the database
func (s *Store) Create(t *Task) error {
	dataJSON, err := json.Marshal(t.Data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal task data")
	}
	messagesJSON, err := json.Marshal(t.Messages)
	if err != nil {
		return errors.Wrap(err, "failed to marshal task messages")
	}

	query := `
		INSERT INTO import_export_tasks (
			uid, kind, owner, data, messages, status,
			date_created, last_submission_time, result
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result := sql.NullString{String: t.Result, Valid: t.Result != ""}
	var lastSubmission sql.NullTime
	if t.LastSubmissionTime != nil {
		lastSubmission = sql.NullTime{Time: *t.LastSubmissionTime, Valid: true}
	}

	_, err = s.db.Exec(query,
		t.UID,
		t.Kind,
		t.Owner,
		string(dataJSON),
		string(messagesJSON),
		t.Status,
		t.DateCreated,
		lastSubmission,
		result,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create task")
	}

	return nil
}

// Get retrieves a task by uid
func (s *Store) Get(uid string) (*Task, error) {
	query := `SELECT ` + StandardTaskSelectColumns() + ` FROM import_export_tasks WHERE uid = ?`

	var t Task
	args := GetTaskScanArgs()
	targets := GetTaskScanTargets(&t, args)

	err := s.db.QueryRow(query, uid).Scan(targets...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf("task not found: %s", uid)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get task")
	}

	if err := ProcessTaskScanArgs(&t, args); err != nil {
		return nil, err
	}
	t.DateCreated = t.DateCreated.UTC()

	return &t, nil
}

// Claim atomically transitions a created task to processing, so that exactly
// one runner ever executes a task's body. Returns ErrAlreadyComplete for a
// complete task (callers treat that as a no-op) and ConcurrentExecutionError
// for a task any other runner has already claimed.
func (s *Store) Claim(uid string) error {
	res, err := s.db.Exec(
		`UPDATE import_export_tasks SET status = ? WHERE uid = ? AND status = ?`,
		StatusProcessing, uid, StatusCreated,
	)
	if err != nil {
		return errors.Wrap(err, "failed to claim task")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 1 {
		return nil
	}

	// Claim lost: classify from the persisted status
	var kind Kind
	var status Status
	err = s.db.QueryRow(`SELECT kind, status FROM import_export_tasks WHERE uid = ?`, uid).
		Scan(&kind, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Newf("task not found: %s", uid)
	}
	if err != nil {
		return errors.Wrap(err, "failed to read task status after claim")
	}
	if status == StatusComplete {
		return ErrAlreadyComplete
	}
	return &ConcurrentExecutionError{UID: uid, Kind: kind}
}

// Update persists a task's mutable fields (status, data, messages, result,
// last submission time). The caller is responsible for message merging.
func (s *Store) Update(t *Task) error {
	dataJSON, err := json.Marshal(t.Data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal task data")
	}
	messagesJSON, err := json.Marshal(t.Messages)
	if err != nil {
		return errors.Wrap(err, "failed to marshal task messages")
	}

	query := `
		UPDATE import_export_tasks
		SET data = ?,
		    messages = ?,
		    status = ?,
		    last_submission_time = ?,
		    result = ?
		WHERE uid = ?
	`

	result := sql.NullString{String: t.Result, Valid: t.Result != ""}
	var lastSubmission sql.NullTime
	if t.LastSubmissionTime != nil {
		lastSubmission = sql.NullTime{Time: *t.LastSubmissionTime, Valid: true}
	}

	_, err = s.db.Exec(query,
		string(dataJSON),
		string(messagesJSON),
		t.Status,
		lastSubmission,
		result,
		t.UID,
	)

	if err != nil {
		return errors.Wrap(err, "failed to update task")
	}

	return nil
}

// SaveStatus persists only the status field. Used as the last-resort write
// when a full update fails, so a task is never left stuck in processing.
func (s *Store) SaveStatus(uid string, status Status) error {
	_, err := s.db.Exec(
		`UPDATE import_export_tasks SET status = ? WHERE uid = ?`,
		status, uid,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save task status")
	}
	return nil
}

// SaveResult persists the artifact reference and the last observed submission
// timestamp, leaving status and messages to the runner's finalize write.
func (s *Store) SaveResult(t *Task) error {
	result := sql.NullString{String: t.Result, Valid: t.Result != ""}
	var lastSubmission sql.NullTime
	if t.LastSubmissionTime != nil {
		lastSubmission = sql.NullTime{Time: *t.LastSubmissionTime, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE import_export_tasks SET result = ?, last_submission_time = ? WHERE uid = ?`,
		result, lastSubmission, t.UID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save task result")
	}
	return nil
}

// Delete removes a task from the database
func (s *Store) Delete(uid string) error {
	result, err := s.db.Exec(`DELETE FROM import_export_tasks WHERE uid = ?`, uid)
	if err != nil {
		return errors.Wrap(err, "failed to delete task")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}

	if rows == 0 {
		return errors.Newf("task not found: %s", uid)
	}

	return nil
}

// ListExportsBySourceKludge returns a user's export tasks whose serialized
// request data contains the source reference as a substring, newest first.
//
// This is a disposable way to filter by source: a source URL appearing inside
// any other request field would also match. Kept deliberately to preserve the
// original matching scope; a structured (owner, source) index would tighten
// it. See DESIGN.md.
func (s *Store) ListExportsBySourceKludge(owner, source string) ([]*Task, error) {
	query := `SELECT ` + StandardTaskSelectColumns() + `
		FROM import_export_tasks
		WHERE kind = ?
		  AND owner = ?
		  AND data LIKE '%' || ? || '%'
		ORDER BY date_created DESC`

	rows, err := s.db.Query(query, KindExport, owner, source)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list exports by source")
	}
	defer rows.Close()

	return scanTasks(rows, "exports")
}

// ListStuckExportsKludge returns a user's non-terminal export tasks for a
// source (same substring matching as ListExportsBySourceKludge) created
// before the cutoff.
func (s *Store) ListStuckExportsKludge(owner, source string, cutoff time.Time) ([]*Task, error) {
	query := `SELECT ` + StandardTaskSelectColumns() + `
		FROM import_export_tasks
		WHERE kind = ?
		  AND owner = ?
		  AND data LIKE '%' || ? || '%'
		  AND status IN (?, ?)
		  AND date_created < ?
		ORDER BY date_created ASC`

	rows, err := s.db.Query(query, KindExport, owner, source,
		StatusCreated, StatusProcessing, cutoff)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stuck exports")
	}
	defer rows.Close()

	return scanTasks(rows, "stuck exports")
}

// ListByOwner returns a user's tasks, newest first. An empty owner lists
// every user's tasks.
func (s *Store) ListByOwner(owner string, limit int) ([]*Task, error) {
	query := `SELECT ` + StandardTaskSelectColumns() + `
		FROM import_export_tasks
		WHERE (? = '' OR owner = ?)
		ORDER BY date_created DESC
		LIMIT ?`

	rows, err := s.db.Query(query, owner, owner, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tasks by owner")
	}
	defer rows.Close()

	return scanTasks(rows, "tasks")
}

// scanTasks is a helper that scans multiple tasks from query rows
func scanTasks(rows *sql.Rows, context string) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		var t Task
		if err := ScanTaskFromRows(rows, &t); err != nil {
			return nil, errors.Wrap(err, "failed to scan task")
		}
		t.DateCreated = t.DateCreated.UTC()
		tasks = append(tasks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "error iterating %s", context)
	}

	return tasks, nil
}
