// Package task provides the asynchronous import/export job engine: the
// persisted task record and its status state machine, the runner that
// guarantees at-most-one execution per task, the stuck-task reaper, and the
// retention enforcer for completed export artifacts.
package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a task
type Status string

const (
	StatusCreated    Status = "created"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// IsValidStatus returns true if the status string is a valid Status
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusCreated, StatusProcessing, StatusComplete, StatusError:
		return true
	default:
		return false
	}
}

// Kind distinguishes the two task flavors
type Kind string

const (
	KindImport Kind = "import"
	KindExport Kind = "export"
)

// uidPrefixes mirrors the original uid convention: "i" for imports, "e" for
// exports, followed by random hex
var uidPrefixes = map[Kind]string{
	KindImport: "i",
	KindExport: "e",
}

// Messages is an accumulating key/value record of informational or error
// details. It is merged, never replaced, when a task is saved.
type Messages map[string]any

// Fixed message keys written by the runner on failure
const (
	MessageKeyErrorType = "error_type"
	MessageKeyError     = "error"
)

// DataKeyProcessingTime is written into a task's request data after each run
// for diagnostic purposes
const DataKeyProcessingTime = "processing_time_seconds"

// Task is one import or export request tracked through the state machine.
//
// Status starts at "created" and is advanced only by the runner (and, for
// stale tasks, the reaper). Data is the caller-supplied request; it is
// mutated after creation only to persist computed diagnostics. Exports
// additionally track the most recent submission timestamp observed during the
// pipeline run and a reference to the stored artifact.
type Task struct {
	UID                string         `json:"uid"`
	Kind               Kind           `json:"kind"`
	Owner              string         `json:"owner"`
	Data               map[string]any `json:"data"`
	Messages           Messages       `json:"messages"`
	Status             Status         `json:"status"`
	DateCreated        time.Time      `json:"date_created"`
	LastSubmissionTime *time.Time     `json:"last_submission_time,omitempty"`
	Result             string         `json:"result,omitempty"`
}

// New creates a task in the created state with a fresh uid.
func New(kind Kind, owner string, data map[string]any) *Task {
	if data == nil {
		data = map[string]any{}
	}
	return &Task{
		UID:         uidPrefixes[kind] + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Kind:        kind,
		Owner:       owner,
		Data:        data,
		Messages:    Messages{},
		Status:      StatusCreated,
		DateCreated: time.Now().UTC(),
	}
}

// DataString returns the string value stored under key, or "" when the key is
// absent or not a string.
func (t *Task) DataString(key string) string {
	v, ok := t.Data[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// DataBool interprets a bool-as-string request value ("true"/"false",
// case-insensitive), returning fallback when the key is absent.
func (t *Task) DataBool(key string, fallback bool) bool {
	v, ok := t.Data[key]
	if !ok {
		return fallback
	}
	switch s := v.(type) {
	case string:
		return strings.EqualFold(s, "true")
	case bool:
		return s
	default:
		return fallback
	}
}

// DataStringList returns a list-of-strings request value. A missing key
// returns fallback; a present-but-empty list returns the empty list.
func (t *Task) DataStringList(key string, fallback []string) []string {
	v, ok := t.Data[key]
	if !ok {
		return fallback
	}
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return fallback
	}
}
