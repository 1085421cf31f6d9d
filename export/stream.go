package export

import (
	"time"

	"github.com/skubi6/kpi/errors"
	"github.com/skubi6/kpi/formpack"
)

// Submission timestamps arrive as strings whose layout depends on the
// collecting backend; none carry an explicit zone even though the values
// are UTC.
var submissionTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseSubmissionTime parses a submission timestamp and normalizes it to
// UTC. Zoneless values are taken as already UTC.
func ParseSubmissionTime(s string) (time.Time, error) {
	for _, layout := range submissionTimeLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, errors.Newf("unparseable submission timestamp %q", s)
}

// TimestampTracker passes a submission stream through unchanged while
// tracking the most recent observed submission time. It never filters,
// reorders, or buffers: each Next yields exactly the inner stream's next
// record.
type TimestampTracker struct {
	inner formpack.Stream

	// Last holds the most recent submission time seen so far. It may be
	// primed with a previously persisted value and is read by the caller
	// after the stream is drained.
	Last *time.Time
}

// NewTimestampTracker wraps stream, starting from last (which may be nil).
func NewTimestampTracker(stream formpack.Stream, last *time.Time) *TimestampTracker {
	return &TimestampTracker{inner: stream, Last: last}
}

// Next implements formpack.Stream. Records without a submission-time field
// pass through unobserved.
func (t *TimestampTracker) Next() (formpack.Submission, error) {
	sub, err := t.inner.Next()
	if err != nil {
		return nil, err
	}

	raw, ok := sub[formpack.ColumnSubmissionTime].(string)
	if !ok || raw == "" {
		return sub, nil
	}
	ts, err := ParseSubmissionTime(raw)
	if err != nil {
		return nil, err
	}
	if t.Last == nil || ts.After(*t.Last) {
		t.Last = &ts
	}
	return sub, nil
}
