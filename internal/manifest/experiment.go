package manifest

import (
	"encoding/xml"
	"fmt"
	"strings"

	"enasubmit/internal/services"
)

type experimentSetXML struct {
	XMLName    xml.Name        `xml:"EXPERIMENT_SET"`
	Experiment []experimentXML `xml:"EXPERIMENT"`
}

type experimentXML struct {
	Alias      string       `xml:"alias,attr"`
	CenterName string       `xml:"center_name,attr,omitempty"`
	Title      string       `xml:"TITLE"`
	StudyRef   accessionRef `xml:"STUDY_REF"`
	Design     designXML    `xml:"DESIGN"`
	Platform   platformXML  `xml:"PLATFORM"`
}

type accessionRef struct {
	Accession string `xml:"accession,attr"`
}

type designXML struct {
	Description      string       `xml:"DESIGN_DESCRIPTION"`
	SampleDescriptor accessionRef `xml:"SAMPLE_DESCRIPTOR"`
	Library          libraryXML   `xml:"LIBRARY_DESCRIPTOR"`
}

type libraryXML struct {
	Name      string    `xml:"LIBRARY_NAME"`
	Strategy  string    `xml:"LIBRARY_STRATEGY"`
	Source    string    `xml:"LIBRARY_SOURCE"`
	Selection string    `xml:"LIBRARY_SELECTION"`
	Layout    layoutXML `xml:"LIBRARY_LAYOUT"`
}

type layoutXML struct {
	Single *struct{}  `xml:"SINGLE"`
	Paired *pairedXML `xml:"PAIRED"`
}

type pairedXML struct {
	NominalLength int `xml:"NOMINAL_LENGTH,attr,omitempty"`
}

type platformXML struct {
	Illumina       *instrumentXML `xml:"ILLUMINA"`
	OxfordNanopore *instrumentXML `xml:"OXFORD_NANOPORE"`
}

type instrumentXML struct {
	Model string `xml:"INSTRUMENT_MODEL"`
}

// BuildExperiment renders an EXPERIMENT_SET document. The instrument is
// resolved through LookupInstrument before anything is encoded.
func BuildExperiment(e Experiment) (Document, error) {
	rec := experimentXML{
		Alias:      text(e.Alias),
		CenterName: text(e.CenterName),
		Title:      text(e.Title),
		StudyRef:   accessionRef{Accession: text(e.StudyAccession)},
	}
	checks := []struct{ field, value string }{
		{"alias", rec.Alias},
		{"study accession", rec.StudyRef.Accession},
		{"sample accession", text(e.SampleAccession)},
		{"library strategy", text(e.Library.Strategy)},
		{"library source", text(e.Library.Source)},
		{"library selection", text(e.Library.Selection)},
	}
	for _, c := range checks {
		if err := required(KindExperiment, c.field, c.value); err != nil {
			return Document{}, err
		}
	}
	if rec.Title == "" {
		rec.Title = rec.Alias
	}

	inst, err := LookupInstrument(e.Instrument)
	if err != nil {
		return Document{}, err
	}
	model := &instrumentXML{Model: inst.Model}
	switch inst.Platform {
	case PlatformIllumina:
		rec.Platform.Illumina = model
	case PlatformOxfordNanopore:
		rec.Platform.OxfordNanopore = model
	}

	layout, err := buildLayout(e.Library)
	if err != nil {
		return Document{}, err
	}
	rec.Design = designXML{
		SampleDescriptor: accessionRef{Accession: text(e.SampleAccession)},
		Library: libraryXML{
			Strategy:  text(e.Library.Strategy),
			Source:    text(e.Library.Source),
			Selection: text(e.Library.Selection),
			Layout:    layout,
		},
	}

	return encode(KindExperiment, experimentSetXML{Experiment: []experimentXML{rec}})
}

func buildLayout(lib Library) (layoutXML, error) {
	switch Layout(strings.ToUpper(strings.TrimSpace(string(lib.Layout)))) {
	case "", LayoutSingle:
		return layoutXML{Single: &struct{}{}}, nil
	case LayoutPaired:
		if lib.NominalLength < 0 {
			return layoutXML{}, services.Wrap(services.ErrConstruction, KindExperiment.Step(), "validate", "nominal length must not be negative", nil)
		}
		return layoutXML{Paired: &pairedXML{NominalLength: lib.NominalLength}}, nil
	default:
		return layoutXML{}, services.Wrap(services.ErrConstruction, KindExperiment.Step(), "validate",
			fmt.Sprintf("unknown library layout %q", lib.Layout), nil)
	}
}
