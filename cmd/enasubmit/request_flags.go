package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"enasubmit/internal/config"
	"enasubmit/internal/manifest"
	"enasubmit/internal/submission"
)

// requestFlags collects the chain inputs shared by submit and manifest.
type requestFlags struct {
	study        string
	center       string
	sampleCenter string
	runCenter    string
	sample       string
	taxon        string
	attributes   []string

	run        string
	file       string
	fileType   string
	instrument string

	librarySource    string
	librarySelection string
	libraryStrategy  string
	layout           string
	nominalLength    int
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.study, "study", "", "Study accession the experiment is filed under (default from config or WEBIN_STUDY)")
	flags.StringVar(&f.center, "center", "", "Submitting center name")
	flags.StringVar(&f.sampleCenter, "sample-center", "", "Center name on the sample record (default --center)")
	flags.StringVar(&f.runCenter, "run-center", "", "Center name on the experiment and run records (default --center)")
	flags.StringVar(&f.sample, "sample", "", "Sample name, used as the sample alias")
	flags.StringVar(&f.taxon, "taxon", "", "NCBI taxon id of the sample (default from config)")
	flags.StringArrayVar(&f.attributes, "sample-attr", nil, "Sample attribute as TAG=VALUE (repeatable)")
	flags.StringVar(&f.run, "run", "", "Run name, used as the run alias")
	flags.StringVar(&f.file, "file", "", "Data file to upload for the run")
	flags.StringVar(&f.fileType, "file-type", "", "Declared file type of the data file (default from config)")
	flags.StringVar(&f.instrument, "instrument", "", "Sequencing instrument, e.g. miseq or minion")
	flags.StringVar(&f.librarySource, "library-source", "", "Library source, e.g. VIRAL_RNA")
	flags.StringVar(&f.librarySelection, "library-selection", "", "Library selection, e.g. PCR")
	flags.StringVar(&f.libraryStrategy, "library-strategy", "", "Library strategy, e.g. AMPLICON")
	flags.StringVar(&f.layout, "layout", "single", "Library layout (single or paired)")
	flags.IntVar(&f.nominalLength, "nominal-length", 0, "Nominal insert length for paired libraries")
}

// request maps the flags onto a submission request, filling gaps from cfg.
func (f *requestFlags) request(cfg *config.Config) (submission.Request, error) {
	attrs, err := parseAttributes(f.attributes)
	if err != nil {
		return submission.Request{}, err
	}
	req := submission.Request{
		StudyAccession:   firstNonEmpty(f.study, cfg.Defaults.StudyAccession),
		CenterName:       strings.TrimSpace(f.center),
		SampleCenterName: firstNonEmpty(f.sampleCenter, f.center),
		RunCenterName:    firstNonEmpty(f.runCenter, f.center),
		SampleName:       strings.TrimSpace(f.sample),
		TaxonID:          firstNonEmpty(f.taxon, cfg.Defaults.TaxonID),
		SampleAttributes: attrs,
		RunName:          strings.TrimSpace(f.run),
		FilePath:         strings.TrimSpace(f.file),
		FileType:         firstNonEmpty(f.fileType, cfg.Defaults.FileType),
		Instrument:       spaced(f.instrument),
		Library: manifest.Library{
			Strategy:      spaced(f.libraryStrategy),
			Source:        spaced(f.librarySource),
			Selection:     spaced(f.librarySelection),
			Layout:        manifest.Layout(strings.ToUpper(strings.TrimSpace(f.layout))),
			NominalLength: f.nominalLength,
		},
	}
	if req.FilePath != "" {
		expanded, err := config.ExpandPath(req.FilePath)
		if err != nil {
			return submission.Request{}, fmt.Errorf("resolve run file: %w", err)
		}
		req.FilePath = expanded
	}
	return req, nil
}

func parseAttributes(values []string) ([]manifest.Attribute, error) {
	if len(values) == 0 {
		return nil, nil
	}
	attrs := make([]manifest.Attribute, 0, len(values))
	for _, raw := range values {
		tag, value, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(tag) == "" {
			return nil, fmt.Errorf("sample attribute %q: expected TAG=VALUE", raw)
		}
		attrs = append(attrs, manifest.Attribute{Tag: strings.TrimSpace(tag), Value: strings.TrimSpace(value)})
	}
	return attrs, nil
}

// spaced accepts shell-friendly underscores in vocabulary terms.
func spaced(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "_", " "))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
