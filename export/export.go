package export

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skubi6/kpi/artifact"
	"github.com/skubi6/kpi/asset"
	"github.com/skubi6/kpi/errors"
	"github.com/skubi6/kpi/formpack"
	"github.com/skubi6/kpi/task"
)

// Job is the export task body. It validates the request, runs housekeeping
// for the (owner, source) pair, streams the submission data through the
// selected encoder into the artifact store, and prunes excess exports.
type Job struct {
	store     *task.Store
	assets    asset.Resolver
	artifacts *artifact.Storage
	log       *zap.SugaredLogger

	// maxRunTime is the longest an export is expected to take; the stuck
	// reaper's cutoff derives from it.
	maxRunTime time.Duration
	// maxRetained caps completed exports kept per (owner, source) pair.
	maxRetained int
}

// NewJob creates the export body.
func NewJob(
	store *task.Store,
	assets asset.Resolver,
	artifacts *artifact.Storage,
	log *zap.SugaredLogger,
	maxRunTime time.Duration,
	maxRetained int,
) *Job {
	return &Job{
		store:       store,
		assets:      assets,
		artifacts:   artifacts,
		log:         log,
		maxRunTime:  maxRunTime,
		maxRetained: maxRetained,
	}
}

// Kind implements task.Body.
func (j *Job) Kind() task.Kind {
	return task.KindExport
}

// Execute implements task.Body.
func (j *Job) Execute(ctx context.Context, t *task.Task, msgs task.Messages) error {
	req, err := ParseRequest(t)
	if err != nil {
		return err
	}
	source, err := j.assets.Resolve(req.Source)
	if err != nil {
		return err
	}
	if !source.HasDeployment() {
		return &task.NotDeployedError{Source: req.Source}
	}
	if !source.CanViewSubmissions(t.Owner) {
		return &task.PermissionDeniedError{User: t.Owner, Source: req.Source}
	}

	// Take this opportunity to do some housekeeping.
	task.MarkStuckAsErrored(j.store, j.log, t.Owner, req.Source, j.maxRunTime)

	pack, err := formpack.NewPack(source.Name, source.Versions...)
	if err != nil {
		return err
	}
	exp := pack.Export(req.Options)

	tracker := NewTimestampTracker(source.Deployment.Submissions(ctx), t.LastSubmissionTime)

	// The filename reflects the requested language, not the translation the
	// export defaulted to: an unset lang renders as "labels".
	filename := BuildFilename(
		exp.Title,
		req.Options.AllVersions,
		FilenameLanguage(req.Format, req.Options.Lang),
		time.Now(),
		req.Format.Extension(),
	)
	path := artifact.ExportPath(t.Owner, filename)

	// Reserve the name before streaming, so a crashed encode still leaves
	// a deletable artifact for the retention enforcer.
	if _, err := j.artifacts.Put(path, strings.NewReader("")); err != nil {
		return err
	}

	if err := j.encode(path, req.Format, exp, tracker); err != nil {
		return err
	}

	t.Result = path
	t.LastSubmissionTime = tracker.Last
	if err := j.store.SaveResult(t); err != nil {
		return err
	}

	// Now that a new export has completed, remove the excess.
	task.RemoveExcess(j.store, j.artifacts, j.log, t.Owner, req.Source, j.maxRetained)
	return nil
}

// encode streams the encoder's output into the artifact store through a
// pipe, so no format but the workbook materializes the full output.
func (j *Job) encode(path string, format Format, exp *formpack.Export, stream formpack.Stream) error {
	pr, pw := io.Pipe()
	encErr := make(chan error, 1)
	go func() {
		var err error
		switch format {
		case FormatCSV:
			err = WriteCSV(pw, exp, stream)
		case FormatXLSX:
			err = WriteXLSX(pw, exp, stream)
		case FormatSPSSLabels:
			err = WriteSPSSLabels(pw, exp)
		}
		encErr <- err
		pw.CloseWithError(err)
	}()

	_, putErr := j.artifacts.Put(path, pr)
	pr.Close()
	// A storage failure aborts the encoder with a closed-pipe error; only a
	// genuine encoder failure takes precedence over putErr.
	if err := <-encErr; err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return err
	}
	return putErr
}
