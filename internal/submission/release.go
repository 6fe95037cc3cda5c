package submission

import (
	"context"
	"log/slog"
	"strings"

	"enasubmit/internal/logging"
	"enasubmit/internal/manifest"
	"enasubmit/internal/receipt"
	"enasubmit/internal/services"
	"enasubmit/internal/services/webin"
)

// Transport is the drop-box surface used by the chain.
type Transport interface {
	Submit(ctx context.Context, envelope manifest.Document, docs ...manifest.Document) (webin.Response, error)
}

// Releaser issues RELEASE actions for held records.
type Releaser struct {
	Transport  Transport
	Classifier receipt.Classifier
	CenterName string
	Logger     *slog.Logger
}

// NewReleaser constructs a Releaser using the default pattern table.
func NewReleaser(transport Transport, centerName string, logger *slog.Logger) *Releaser {
	return &Releaser{
		Transport:  transport,
		Classifier: receipt.Default,
		CenterName: centerName,
		Logger:     logging.NewComponentLogger(logger, "release"),
	}
}

// Release submits a RELEASE envelope for accession and classifies the
// receipt. It performs exactly one drop-box call.
func (r *Releaser) Release(ctx context.Context, step, accession string) receipt.Result {
	accession = strings.TrimSpace(accession)
	if accession == "" {
		return receipt.Result{
			Status: receipt.Failed,
			Err:    services.Wrap(services.ErrConstruction, step, "release", "accession is required", nil),
		}
	}
	if r == nil || r.Transport == nil {
		return receipt.Result{
			Status: receipt.Failed,
			Err:    services.Wrap(services.ErrConfiguration, step, "release", "drop-box transport unavailable", nil),
		}
	}
	logger := logging.WithContext(ctx, r.Logger)

	doc, err := manifest.BuildEnvelope(manifest.ReleaseOf(r.CenterName, accession))
	if err != nil {
		return receipt.Result{Status: receipt.Failed, Err: err}
	}
	resp, err := r.Transport.Submit(ctx, doc)
	if err != nil {
		logger.Warn("release request failed",
			logging.String("accession", accession),
			logging.Error(err),
		)
		return receipt.Result{Status: receipt.Failed, Err: err}
	}

	classifier := r.Classifier
	if classifier.Patterns == nil {
		classifier = receipt.Default
	}
	res := classifier.Classify(resp.StatusCode, resp.Body, "")
	if res.Status != receipt.Accepted {
		logger.Warn("release rejected",
			logging.String("accession", accession),
			logging.Int("http_status", resp.StatusCode),
			logging.ResponseBody(res.Body),
			logging.Error(res.Err),
		)
		if res.Status == receipt.Duplicate {
			res.Status = receipt.Failed
			res.Err = services.Wrap(services.ErrProtocol, step, "release", "unexpected duplicate receipt for release", nil)
		}
		return res
	}
	logger.Info("record released",
		logging.EventType("release_complete"),
		logging.String("accession", accession),
	)
	return res
}
