package task

import (
	"fmt"

	"github.com/skubi6/kpi/errors"
)

// ErrAlreadyComplete signals that a claim found the task already complete.
// Run treats it as an idempotent no-op; it never escapes the runner.
var ErrAlreadyComplete = errors.New("task already complete")

// ConcurrentExecutionError indicates a second runner attempted a task that is
// already in flight. It is the one failure Run surfaces to its caller, since
// it signals a dispatcher bug rather than a job-data problem.
type ConcurrentExecutionError struct {
	UID  string
	Kind Kind
}

func (e *ConcurrentExecutionError) Error() string {
	return fmt.Sprintf("only recently created %s tasks can be executed (uid %s)", e.Kind, e.UID)
}

// PermissionDeniedError indicates the task owner lacks the access a job body
// requires. Recorded in task messages; the task ends in the error state.
type PermissionDeniedError struct {
	User   string
	Source string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s cannot export %s", e.User, e.Source)
}

// NotDeployedError indicates an export source without an active deployment.
type NotDeployedError struct {
	Source string
}

func (e *NotDeployedError) Error() string {
	return fmt.Sprintf("the source %s must be deployed prior to export", e.Source)
}

// UnsupportedFormatError indicates an export type outside the supported set.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%q is not a valid export type: only `xls`, `csv`, and `spss_labels` are supported", e.Format)
}

// ErrorType names the kind of a job-body failure for the messages record.
// Known taxonomy members get their own name; everything else is generic.
func ErrorType(err error) string {
	var (
		permErr       *PermissionDeniedError
		deployErr     *NotDeployedError
		formatErr     *UnsupportedFormatError
		concurrentErr *ConcurrentExecutionError
	)
	switch {
	case errors.As(err, &permErr):
		return "PermissionDenied"
	case errors.As(err, &deployErr):
		return "NotDeployedError"
	case errors.As(err, &formatErr):
		return "UnsupportedFormatError"
	case errors.As(err, &concurrentErr):
		return "ConcurrentExecutionError"
	default:
		return "Error"
	}
}
