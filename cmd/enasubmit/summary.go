package main

import (
	"errors"
	"strings"

	"enasubmit/internal/services"
	"enasubmit/internal/submission"
)

// errChainFailed signals a completed invocation whose summary reports
// failure; main exits non-zero without printing it again.
var errChainFailed = errors.New("submission chain did not succeed")

const nullAccession = "null"

// summary is the single result record of a submit invocation.
type summary struct {
	Success             bool    `json:"success"`
	Sample              string  `json:"sample"`
	Run                 string  `json:"run"`
	File                string  `json:"file"`
	Study               string  `json:"study"`
	SampleAccession     *string `json:"sample_accession"`
	ExperimentAccession *string `json:"experiment_accession"`
	RunAccession        *string `json:"run_accession"`
	Environment         string  `json:"environment"`
	CorrelationID       string  `json:"correlation_id"`
	FailedStep          string  `json:"failed_step,omitempty"`
	ErrorKind           string  `json:"error_kind,omitempty"`
	Checksum            string  `json:"checksum,omitempty"`
}

func newSummary(req submission.Request, out submission.Outcome) summary {
	s := summary{
		Success:             out.Success(),
		Sample:              req.SampleAlias(),
		Run:                 req.RunAlias(),
		File:                req.FilePath,
		Study:               req.StudyAccession,
		SampleAccession:     optional(out.SampleAccession),
		ExperimentAccession: optional(out.ExperimentAccession),
		RunAccession:        optional(out.RunAccession),
		Environment:         out.Environment,
		CorrelationID:       out.CorrelationID,
		FailedStep:          out.FailedStep,
	}
	if out.Err != nil {
		s.ErrorKind = services.Kind(out.Err)
	}
	if out.Upload != nil {
		s.Checksum = out.Upload.Checksum
	}
	return s
}

// line renders the space-separated summary:
// success sample run file study sample_acc exp_acc run_acc.
func (s summary) line() string {
	flag := "0"
	if s.Success {
		flag = "1"
	}
	return strings.Join([]string{
		flag,
		field(s.Sample),
		field(s.Run),
		field(s.File),
		field(s.Study),
		deref(s.SampleAccession),
		deref(s.ExperimentAccession),
		deref(s.RunAccession),
	}, " ")
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return nullAccession
	}
	return *value
}

func field(value string) string {
	if strings.TrimSpace(value) == "" {
		return nullAccession
	}
	return value
}
