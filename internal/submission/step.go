package submission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"enasubmit/internal/journal"
	"enasubmit/internal/logging"
	"enasubmit/internal/manifest"
	"enasubmit/internal/notifications"
	"enasubmit/internal/receipt"
	"enasubmit/internal/services"
	"enasubmit/internal/upload"
)

// submitStep builds one record, submits it under ADD+HOLD, classifies the
// receipt and releases accepted records. A failed release fails the step
// but keeps its accession. The result is appended to the chain's outcome,
// counted and journaled.
func (o *Orchestrator) submitStep(ctx context.Context, c *chain, step, alias string, build func() (manifest.Document, error)) (result StepResult) {
	stepCtx := services.WithStep(ctx, step)
	logger := logging.WithContext(stepCtx, o.logger)
	started := o.now()
	result = StepResult{Step: step, Alias: alias, Status: receipt.Failed}

	defer func() {
		result.Duration = o.now().Sub(started)
		c.outcome.Steps = append(c.outcome.Steps, result)
		o.metrics.IncrementStepResult(step, result.Status.String())
		o.metrics.ObserveStepDuration(step, result.Duration)
		entry := journal.Entry{
			CorrelationID: c.outcome.CorrelationID,
			Environment:   o.environment,
			Step:          step,
			Alias:         alias,
			Status:        result.Status.String(),
			Accession:     result.Accession,
			Pattern:       result.Pattern,
			Released:      result.Released,
		}
		switch {
		case result.ReleaseErr != nil:
			entry.ErrorKind = services.Kind(result.ReleaseErr)
			entry.Detail = "release failed: " + result.ReleaseErr.Error()
		case result.Err != nil:
			entry.ErrorKind = services.Kind(result.Err)
			entry.Detail = result.Err.Error()
		}
		o.record(stepCtx, logger, entry)
	}()

	logger.Info("step started",
		logging.EventType("step_start"),
		logging.String("alias", alias),
	)

	doc, err := build()
	if err != nil {
		result.Err = err
		o.logFailure(logger, err, nil)
		return result
	}
	envelope, err := manifest.BuildEnvelope(manifest.AddAndHold(c.centerFor(step), o.holdUntil()))
	if err != nil {
		result.Err = err
		o.logFailure(logger, err, nil)
		return result
	}

	resp, err := o.transport.Submit(stepCtx, envelope, doc)
	if err != nil {
		result.Err = err
		o.logFailure(logger, err, nil)
		return result
	}

	res := o.classifier.Classify(resp.StatusCode, resp.Body, string(doc.Kind))
	result.Status = res.Status
	result.Accession = res.Accession
	result.Pattern = res.Pattern

	switch res.Status {
	case receipt.Failed:
		result.Err = res.Err
		o.logFailure(logger, res.Err, &res)
		return result
	case receipt.Duplicate:
		logger.Info("record already registered",
			logging.EventType("duplicate_skip"),
			logging.String("alias", alias),
			logging.String("accession", res.Accession),
			logging.String("pattern", res.Pattern),
		)
		return result
	}

	if res.Accession == "" {
		if step != StepRun {
			result.Err = services.Wrap(services.ErrProtocol, step, "classify", "accepted without accession", nil)
			o.logFailure(logger, result.Err, &res)
			return result
		}
		logger.Warn("record accepted without accession",
			logging.Alert("missing_accession"),
			logging.String("alias", alias),
			logging.ResponseBody(res.Body),
		)
		return result
	}

	logger.Info("step completed",
		logging.EventType("step_complete"),
		logging.String("alias", alias),
		logging.String("accession", res.Accession),
	)
	o.release(stepCtx, c, logger, &result)
	return result
}

func (o *Orchestrator) release(ctx context.Context, c *chain, logger *slog.Logger, result *StepResult) {
	releaser := &Releaser{
		Transport:  o.transport,
		Classifier: o.classifier,
		CenterName: c.centerFor(result.Step),
		Logger:     o.logger,
	}
	rel := releaser.Release(ctx, result.Step, result.Accession)
	o.metrics.IncrementRelease(result.Step, rel.Status.String())
	if rel.Status == receipt.Accepted {
		result.Released = true
		return
	}
	err := rel.Err
	if err == nil {
		err = services.Wrap(services.ErrProtocol, result.Step, "release", "release not accepted", nil)
	}
	result.ReleaseErr = err
	result.Err = err
	logger.Warn("release failed; record stays held",
		logging.Alert("release_failed"),
		logging.String("accession", result.Accession),
		logging.Error(err),
	)
	o.publish(ctx, logger, notifications.EventReleaseFailed, notifications.Payload{
		"step":      result.Step,
		"accession": result.Accession,
		"error":     services.Kind(err) + " error",
	})
}

func (o *Orchestrator) uploadStep(ctx context.Context, c *chain) (upload.Result, error) {
	stepCtx := services.WithStep(ctx, StepUpload)
	logger := logging.WithContext(stepCtx, o.logger)
	started := o.now()

	logger.Info("step started",
		logging.EventType("step_start"),
		logging.String("file", c.req.FilePath),
	)
	up, err := o.uploader.Upload(stepCtx, c.req.FilePath)
	o.metrics.ObserveStepDuration(StepUpload, o.now().Sub(started))
	entry := journal.Entry{
		CorrelationID: c.outcome.CorrelationID,
		Environment:   o.environment,
		Step:          StepUpload,
		Alias:         c.req.RunAlias(),
	}
	if err != nil {
		o.metrics.IncrementStepResult(StepUpload, "failed")
		o.logFailure(logger, err, nil)
		entry.Status = "failed"
		entry.ErrorKind = services.Kind(err)
		entry.Detail = err.Error()
		o.record(stepCtx, logger, entry)
		return upload.Result{}, err
	}

	o.metrics.IncrementStepResult(StepUpload, "completed")
	o.metrics.AddUploadBytes(up.Bytes)
	logger.Info("file uploaded",
		logging.EventType("upload_complete"),
		logging.String("remote_name", up.RemoteName),
		logging.Int64("bytes", up.Bytes),
		logging.String("md5", up.Checksum),
		logging.Duration("elapsed", up.Duration),
	)
	entry.Status = "completed"
	entry.Detail = fmt.Sprintf("%s md5=%s bytes=%d", up.RemoteName, up.Checksum, up.Bytes)
	o.record(stepCtx, logger, entry)
	return up, nil
}

func (o *Orchestrator) logFailure(logger *slog.Logger, err error, res *receipt.Result) {
	attrs := []logging.Attr{
		logging.EventType("step_failure"),
		logging.String("error_kind", services.Kind(err)),
		logging.Error(err),
	}
	if res != nil {
		attrs = append(attrs,
			logging.Int("http_status", res.StatusCode),
			logging.ResponseBody(res.Body),
		)
		if res.Unrecognized {
			attrs = append(attrs,
				logging.Alert("unrecognized_archive_error"),
				logging.String("archive_errors", strings.Join(res.Errors, " | ")),
			)
		}
	}
	logger.Error("step failed", logging.Args(attrs...)...)
}

func (o *Orchestrator) holdUntil() time.Time {
	return o.now().AddDate(0, 0, o.holdDays)
}
