package task

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skubi6/kpi/errors"
)

// Body is the task-kind-specific job body the runner invokes between the
// claim and finalize writes. Implementations record informational details in
// msgs and report failure through the returned error; the runner owns all
// status transitions and persistence.
type Body interface {
	// Execute runs the job. The messages accumulator is fresh for each run
	// attempt and is merged into the task's persisted messages afterwards.
	Execute(ctx context.Context, t *Task, msgs Messages) error

	// Kind returns the task kind this body handles.
	Kind() Kind
}

// Runner drives the task state machine with at-most-one successful execution
// per task and uniform failure capture. It has no scheduler of its own; Run
// is invoked by an external dispatcher and executes to completion on the
// calling goroutine.
type Runner struct {
	store  *Store
	bodies map[Kind]Body
	log    *zap.SugaredLogger
}

// NewRunner creates a runner with an empty body registry. Callers must
// register a body per task kind before dispatching tasks of that kind.
func NewRunner(store *Store, log *zap.SugaredLogger) *Runner {
	return &Runner{
		store:  store,
		bodies: make(map[Kind]Body),
		log:    log,
	}
}

// Register adds a job body for its kind.
// Panics if a body is already registered for that kind.
func (r *Runner) Register(body Body) {
	kind := body.Kind()
	if _, exists := r.bodies[kind]; exists {
		panic(fmt.Sprintf("body already registered for task kind: %s", kind))
	}
	r.bodies[kind] = body
}

// Run executes a task: claim, body, finalize.
//
// A task already complete is a silent no-op. A task claimed by another runner
// surfaces ConcurrentExecutionError; that is the only failure Run ever
// returns for a claimable task — every failure raised by the job body is
// captured into the task's persisted status and messages instead.
func (r *Runner) Run(ctx context.Context, t *Task) error {
	err := r.store.Claim(t.UID)
	if errors.Is(err, ErrAlreadyComplete) {
		t.Status = StatusComplete
		return nil
	}
	if err != nil {
		return err
	}
	t.Status = StatusProcessing

	msgs := Messages{}
	runErr := r.execute(ctx, t, msgs)

	if runErr == nil {
		t.Status = StatusComplete
	} else {
		msgs[MessageKeyErrorType] = ErrorType(runErr)
		msgs[MessageKeyError] = runErr.Error()
		t.Status = StatusError
		r.log.Errorw("Failed to run task",
			"uid", t.UID,
			"kind", t.Kind,
			"owner", t.Owner,
			"error", runErr,
		)
	}

	// Merge, never replace, the accumulated messages
	if t.Messages == nil {
		t.Messages = Messages{}
	}
	for k, v := range msgs {
		t.Messages[k] = v
	}

	// Record the processing time for diagnostic purposes
	t.Data[DataKeyProcessingTime] = time.Now().UTC().Sub(t.DateCreated).Seconds()

	if err := r.store.Update(t); err != nil {
		// The finalize write failed (e.g. unserializable message content).
		// Force the error state with a status-only write so the task is
		// never left stuck in processing.
		t.Status = StatusError
		r.log.Errorw("Failed to save task",
			"uid", t.UID,
			"kind", t.Kind,
			"error", err,
		)
		if saveErr := r.store.SaveStatus(t.UID, StatusError); saveErr != nil {
			r.log.Errorw("Failed to save task status",
				"uid", t.UID,
				"error", saveErr,
			)
		}
	}

	return nil
}

// execute dispatches to the registered body, converting panics and missing
// registrations into ordinary job failures.
func (r *Runner) execute(ctx context.Context, t *Task, msgs Messages) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Newf("panic while running %s task %s: %v", t.Kind, t.UID, p)
		}
	}()

	body, ok := r.bodies[t.Kind]
	if !ok {
		return errors.Newf("no body registered for %s tasks", t.Kind)
	}
	return body.Execute(ctx, t, msgs)
}
