package manifest

import (
	"encoding/xml"
	"fmt"

	"enasubmit/internal/services"
)

type sampleSetXML struct {
	XMLName xml.Name    `xml:"SAMPLE_SET"`
	Sample  []sampleXML `xml:"SAMPLE"`
}

type sampleXML struct {
	Alias      string         `xml:"alias,attr"`
	CenterName string         `xml:"center_name,attr,omitempty"`
	Title      string         `xml:"TITLE"`
	TaxonID    string         `xml:"SAMPLE_NAME>TAXON_ID"`
	Attributes *attributesXML `xml:"SAMPLE_ATTRIBUTES,omitempty"`
}

// attributesXML is only emitted when it holds at least one attribute; the
// archive schema rejects an empty SAMPLE_ATTRIBUTES block.
type attributesXML struct {
	Attribute []attributeXML `xml:"SAMPLE_ATTRIBUTE"`
}

type attributeXML struct {
	Tag   string `xml:"TAG"`
	Value string `xml:"VALUE"`
}

// BuildSample renders a SAMPLE_SET document holding one sample. Attributes
// with an empty value are left out; a tag repeated within the sample is a
// construction error.
func BuildSample(s Sample) (Document, error) {
	rec := sampleXML{
		Alias:      text(s.Alias),
		CenterName: text(s.CenterName),
		Title:      text(s.Title),
		TaxonID:    text(s.TaxonID),
	}
	if err := required(KindSample, "alias", rec.Alias); err != nil {
		return Document{}, err
	}
	if err := required(KindSample, "taxon id", rec.TaxonID); err != nil {
		return Document{}, err
	}
	if rec.Title == "" {
		rec.Title = rec.Alias
	}

	var attrs []attributeXML
	seen := make(map[string]struct{}, len(s.Attributes))
	for _, attr := range s.Attributes {
		tag := text(attr.Tag)
		if tag == "" {
			return Document{}, services.Wrap(services.ErrConstruction, KindSample.Step(), "validate", "attribute tag must not be empty", nil)
		}
		if _, dup := seen[tag]; dup {
			return Document{}, services.Wrap(services.ErrConstruction, KindSample.Step(), "validate",
				fmt.Sprintf("attribute tag %q repeated", tag), nil)
		}
		seen[tag] = struct{}{}
		value := text(attr.Value)
		if value == "" {
			continue
		}
		attrs = append(attrs, attributeXML{Tag: tag, Value: value})
	}
	if len(attrs) > 0 {
		rec.Attributes = &attributesXML{Attribute: attrs}
	}

	return encode(KindSample, sampleSetXML{Sample: []sampleXML{rec}})
}
