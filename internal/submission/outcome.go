package submission

import (
	"time"

	"enasubmit/internal/receipt"
	"enasubmit/internal/upload"
)

// State is a position in the chain's state machine.
type State string

const (
	StateStart                State = "start"
	StateSampleSubmitting     State = "sample:submitting"
	StateExperimentSubmitting State = "experiment:submitting"
	StateRunUploading         State = "run:uploading"
	StateRunSubmitting        State = "run:submitting"
	StateDone                 State = "done"
	StateAborted              State = "aborted"
)

// Step names used in logs, metrics and the journal.
const (
	StepRequest    = "request"
	StepSample     = "sample"
	StepExperiment = "experiment"
	StepUpload     = "upload"
	StepRun        = "run"
)

// StepResult is the outcome of one submitted record.
type StepResult struct {
	Step       string
	Alias      string
	Status     receipt.Status
	Accession  string
	Pattern    string
	Released   bool
	ReleaseErr error
	Err        error
	Duration   time.Duration
}

// Outcome summarises one chain.
type Outcome struct {
	CorrelationID string
	Environment   string
	State         State
	// FailedStep names the step that aborted the chain.
	FailedStep string

	SampleAccession     string
	ExperimentAccession string
	RunAccession        string

	Steps  []StepResult
	Upload *upload.Result
	Err    error
}

// Success reports whether the chain reached Done with all three accessions.
func (o Outcome) Success() bool {
	return o.State == StateDone &&
		o.SampleAccession != "" &&
		o.ExperimentAccession != "" &&
		o.RunAccession != ""
}

// Step returns the result for name, if that step ran.
func (o Outcome) Step(name string) (StepResult, bool) {
	for _, s := range o.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return StepResult{}, false
}
