package manifest

import (
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"enasubmit/internal/services"
)

// Kind names a submission payload. It doubles as the multipart field name and
// as the receipt element that carries the issued accession.
type Kind string

const (
	KindSample     Kind = "SAMPLE"
	KindExperiment Kind = "EXPERIMENT"
	KindRun        Kind = "RUN"
	KindSubmission Kind = "SUBMISSION"
)

// Step returns the lower-case label used in logs and the journal.
func (k Kind) Step() string {
	return strings.ToLower(string(k))
}

// Document is one rendered XML payload.
type Document struct {
	Kind Kind
	Body []byte
}

// Attribute is a single SAMPLE_ATTRIBUTE tag/value pair.
type Attribute struct {
	Tag   string
	Value string
}

// Sample is the first record of the chain.
type Sample struct {
	Alias      string
	Title      string
	TaxonID    string
	CenterName string
	Attributes []Attribute
}

// Layout selects the LIBRARY_LAYOUT element.
type Layout string

const (
	LayoutSingle Layout = "SINGLE"
	LayoutPaired Layout = "PAIRED"
)

// Library describes how the sequencing library was prepared.
type Library struct {
	Strategy      string
	Source        string
	Selection     string
	Layout        Layout
	NominalLength int
}

// Experiment links a sample accession to a study and a sequencing platform.
type Experiment struct {
	Alias           string
	Title           string
	CenterName      string
	StudyAccession  string
	SampleAccession string
	Instrument      string
	Library         Library
}

// Run attaches one uploaded data file to an experiment accession.
type Run struct {
	Alias               string
	CenterName          string
	ExperimentAccession string
	FileName            string
	FileType            string
	Checksum            string
}

func encode(kind Kind, v any) (Document, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return Document{}, services.Wrap(services.ErrConstruction, kind.Step(), "encode xml", "", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return Document{Kind: kind, Body: out}, nil
}

// text trims and NFC-normalizes caller-supplied free text.
func text(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

func required(kind Kind, field, value string) error {
	if value == "" {
		return services.Wrap(services.ErrConstruction, kind.Step(), "validate", fmt.Sprintf("%s is required", field), nil)
	}
	return nil
}
