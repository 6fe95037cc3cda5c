package submission

import (
	"fmt"
	"path/filepath"
	"strings"

	"enasubmit/internal/manifest"
	"enasubmit/internal/services"
)

// Request carries the caller-supplied fields for one chain.
//
// SampleCenterName applies to the Sample record and RunCenterName to the
// Experiment and Run records. Either falls back to CenterName when empty.
type Request struct {
	StudyAccession   string
	CenterName       string
	SampleCenterName string
	RunCenterName    string

	SampleName       string
	TaxonID          string
	SampleAttributes []manifest.Attribute

	RunName    string
	FilePath   string
	FileType   string
	Instrument string
	Library    manifest.Library
}

// SampleAlias is the sample name.
func (r Request) SampleAlias() string { return strings.TrimSpace(r.SampleName) }

// ExperimentAlias joins the sample and run names.
func (r Request) ExperimentAlias() string {
	return r.SampleAlias() + "/" + r.RunAlias()
}

// RunAlias is the run name.
func (r Request) RunAlias() string { return strings.TrimSpace(r.RunName) }

// SampleCenter is the center name filed on the Sample record.
func (r Request) SampleCenter() string {
	if c := strings.TrimSpace(r.SampleCenterName); c != "" {
		return c
	}
	return strings.TrimSpace(r.CenterName)
}

// RunCenter is the center name filed on the Experiment and Run records.
func (r Request) RunCenter() string {
	if c := strings.TrimSpace(r.RunCenterName); c != "" {
		return c
	}
	return strings.TrimSpace(r.CenterName)
}

// Sample maps the request onto the Sample record.
func (r Request) Sample() manifest.Sample {
	return manifest.Sample{
		Alias:      r.SampleAlias(),
		TaxonID:    r.TaxonID,
		CenterName: r.SampleCenter(),
		Attributes: r.SampleAttributes,
	}
}

// Experiment maps the request onto the Experiment record for sampleAccession.
func (r Request) Experiment(sampleAccession string) manifest.Experiment {
	return manifest.Experiment{
		Alias:           r.ExperimentAlias(),
		CenterName:      r.RunCenter(),
		StudyAccession:  r.StudyAccession,
		SampleAccession: sampleAccession,
		Instrument:      r.Instrument,
		Library:         r.Library,
	}
}

// Run maps the request onto the Run record for experimentAccession.
func (r Request) Run(experimentAccession, checksum string) manifest.Run {
	return manifest.Run{
		Alias:               r.RunAlias(),
		CenterName:          r.RunCenter(),
		ExperimentAccession: experimentAccession,
		FileName:            filepath.Base(r.FilePath),
		FileType:            r.FileType,
		Checksum:            checksum,
	}
}

// Validate rejects requests that could never complete the chain, before
// anything is sent.
func (r Request) Validate() error {
	missing := make([]string, 0, 4)
	for _, field := range []struct{ name, value string }{
		{"study accession", r.StudyAccession},
		{"sample center name", r.SampleCenter()},
		{"run center name", r.RunCenter()},
		{"sample name", r.SampleName},
		{"taxon id", r.TaxonID},
		{"run name", r.RunName},
		{"file path", r.FilePath},
		{"file type", r.FileType},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrValidation, "request", "validate", fmt.Sprintf("missing %s", strings.Join(missing, ", ")), nil)
	}
	if strings.Contains(r.SampleAlias(), "/") {
		return services.Wrap(services.ErrValidation, "request", "validate", "sample name must not contain '/'", nil)
	}
	if _, err := manifest.LookupInstrument(r.Instrument); err != nil {
		return err
	}
	for _, lib := range []struct{ name, value string }{
		{"library strategy", r.Library.Strategy},
		{"library source", r.Library.Source},
		{"library selection", r.Library.Selection},
	} {
		if strings.TrimSpace(lib.value) == "" {
			return services.Wrap(services.ErrValidation, "request", "validate", "missing "+lib.name, nil)
		}
	}
	return nil
}
