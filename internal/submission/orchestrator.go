package submission

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"enasubmit/internal/journal"
	"enasubmit/internal/logging"
	"enasubmit/internal/manifest"
	"enasubmit/internal/metrics"
	"enasubmit/internal/notifications"
	"enasubmit/internal/receipt"
	"enasubmit/internal/services"
	"enasubmit/internal/upload"
)

// Uploader transfers the run file.
type Uploader interface {
	Upload(ctx context.Context, path string) (upload.Result, error)
}

// Recorder appends journal entries.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) (journal.Entry, error)
}

// Options wires the orchestrator's collaborators. Transport and Uploader are
// required; the rest are optional.
type Options struct {
	Transport   Transport
	Uploader    Uploader
	Classifier  *receipt.Classifier
	Journal     Recorder
	Notifier    notifications.Service
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	Environment string
	HoldDays    int
	Now         func() time.Time
	NewID       func() string
}

// Orchestrator runs one chain per Run call.
type Orchestrator struct {
	transport   Transport
	uploader    Uploader
	classifier  receipt.Classifier
	journal     Recorder
	notifier    notifications.Service
	metrics     *metrics.Metrics
	logger      *slog.Logger
	environment string
	holdDays    int
	now         func() time.Time
	newID       func() string
}

// NewOrchestrator validates opts and constructs an Orchestrator.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Transport == nil || opts.Uploader == nil {
		return nil, errors.New("submission requires a transport and an uploader")
	}
	o := &Orchestrator{
		transport:   opts.Transport,
		uploader:    opts.Uploader,
		classifier:  receipt.Default,
		journal:     opts.Journal,
		notifier:    opts.Notifier,
		metrics:     opts.Metrics,
		logger:      logging.NewComponentLogger(opts.Logger, "submission"),
		environment: strings.TrimSpace(opts.Environment),
		holdDays:    opts.HoldDays,
		now:         opts.Now,
		newID:       opts.NewID,
	}
	if opts.Classifier != nil {
		o.classifier = *opts.Classifier
	}
	if o.notifier == nil {
		o.notifier = notifications.NewService(nil)
	}
	if o.environment == "" {
		o.environment = "sandbox"
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	return o, nil
}

// chain carries the accumulated state of one Run call.
type chain struct {
	req     Request
	outcome Outcome
	logger  *slog.Logger
}

// centerFor is the center name used by step's record, envelope and release.
func (c *chain) centerFor(step string) string {
	if step == StepSample {
		return c.req.SampleCenter()
	}
	return c.req.RunCenter()
}

// Run executes the chain for req. Outcome.Err carries the error that
// aborted it, if any.
func (o *Orchestrator) Run(ctx context.Context, req Request) Outcome {
	id := o.newID()
	ctx = services.WithRequestID(ctx, id)
	c := &chain{
		req: req,
		outcome: Outcome{
			CorrelationID: id,
			Environment:   o.environment,
			State:         StateStart,
		},
		logger: logging.WithContext(ctx, o.logger),
	}
	c.logger.Info("submission chain started",
		logging.String("environment", o.environment),
		logging.String("sample", req.SampleAlias()),
		logging.String("run", req.RunAlias()),
	)

	if err := req.Validate(); err != nil {
		return o.abort(ctx, c, StepRequest, err)
	}

	// Sample
	c.outcome.State = StateSampleSubmitting
	res := o.submitStep(ctx, c, StepSample, req.SampleAlias(), func() (manifest.Document, error) {
		return manifest.BuildSample(req.Sample())
	})
	c.outcome.SampleAccession = res.Accession
	if res.Err != nil {
		return o.abort(ctx, c, StepSample, res.Err)
	}

	// Experiment
	c.outcome.State = StateExperimentSubmitting
	res = o.submitStep(ctx, c, StepExperiment, req.ExperimentAlias(), func() (manifest.Document, error) {
		return manifest.BuildExperiment(req.Experiment(c.outcome.SampleAccession))
	})
	c.outcome.ExperimentAccession = res.Accession
	if res.Err != nil {
		return o.abort(ctx, c, StepExperiment, res.Err)
	}

	// Upload
	c.outcome.State = StateRunUploading
	up, err := o.uploadStep(ctx, c)
	if err != nil {
		return o.abort(ctx, c, StepUpload, err)
	}
	c.outcome.Upload = &up

	// Run
	c.outcome.State = StateRunSubmitting
	res = o.submitStep(ctx, c, StepRun, req.RunAlias(), func() (manifest.Document, error) {
		return manifest.BuildRun(req.Run(c.outcome.ExperimentAccession, up.Checksum))
	})
	c.outcome.RunAccession = res.Accession
	if res.Err != nil {
		return o.abort(ctx, c, StepRun, res.Err)
	}

	c.outcome.State = StateDone
	c.logger.Info("submission chain completed",
		logging.Bool("success", c.outcome.Success()),
		logging.String("sample_accession", c.outcome.SampleAccession),
		logging.String("experiment_accession", c.outcome.ExperimentAccession),
		logging.String("run_accession", c.outcome.RunAccession),
	)
	o.publish(ctx, c.logger, notifications.EventChainCompleted, notifications.Payload{
		"sample":               req.SampleAlias(),
		"run":                  req.RunAlias(),
		"environment":          o.environment,
		"sample_accession":     nullable(c.outcome.SampleAccession),
		"experiment_accession": nullable(c.outcome.ExperimentAccession),
		"run_accession":        nullable(c.outcome.RunAccession),
	})
	return c.outcome
}

func (o *Orchestrator) abort(ctx context.Context, c *chain, step string, err error) Outcome {
	c.outcome.State = StateAborted
	c.outcome.FailedStep = step
	c.outcome.Err = err
	if step == StepRequest {
		o.record(ctx, c.logger, journal.Entry{
			CorrelationID: c.outcome.CorrelationID,
			Environment:   o.environment,
			Step:          step,
			Alias:         c.req.SampleAlias(),
			Status:        receipt.Failed.String(),
			ErrorKind:     services.Kind(err),
			Detail:        err.Error(),
		})
	}
	c.logger.Error("submission chain aborted",
		logging.EventType("chain_aborted"),
		logging.String("failed_step", step),
		logging.String("error_kind", services.Kind(err)),
		logging.String("sample_accession", c.outcome.SampleAccession),
		logging.String("experiment_accession", c.outcome.ExperimentAccession),
		logging.Error(err),
	)
	o.publish(ctx, c.logger, notifications.EventChainAborted, notifications.Payload{
		"sample": c.req.SampleAlias(),
		"run":    c.req.RunAlias(),
		"step":   step,
		"error":  services.Kind(err) + " error",
	})
	return c.outcome
}

func (o *Orchestrator) publish(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := o.notifier.Publish(ctx, event, payload); err != nil {
		logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, e journal.Entry) {
	if o.journal == nil {
		return
	}
	if _, err := o.journal.Record(ctx, e); err != nil {
		logger.Warn("journal write failed",
			logging.Alert("journal_unavailable"),
			logging.Error(err),
		)
	}
}

func nullable(v string) string {
	if v == "" {
		return "null"
	}
	return v
}
