package manifest

import (
	"encoding/xml"
	"time"

	"enasubmit/internal/services"
)

// HoldDateLayout is the HoldUntilDate attribute format.
const HoldDateLayout = "2006-01-02"

// Envelope is a SUBMISSION action document. Exactly one of the two action
// sequences is populated: ADD followed by HOLD, or a single RELEASE.
type Envelope struct {
	CenterName    string
	HoldUntil     time.Time
	ReleaseTarget string
}

// AddAndHold returns the envelope used to create a record held until the
// given date.
func AddAndHold(centerName string, holdUntil time.Time) Envelope {
	return Envelope{CenterName: centerName, HoldUntil: holdUntil}
}

// ReleaseOf returns the envelope that releases a previously held accession.
func ReleaseOf(centerName, accession string) Envelope {
	return Envelope{CenterName: centerName, ReleaseTarget: accession}
}

// IsRelease reports whether the envelope carries the RELEASE action.
func (e Envelope) IsRelease() bool {
	return e.ReleaseTarget != ""
}

type submissionXML struct {
	XMLName    xml.Name    `xml:"SUBMISSION"`
	CenterName string      `xml:"center_name,attr,omitempty"`
	Actions    []actionXML `xml:"ACTIONS>ACTION"`
}

type actionXML struct {
	Add     *struct{}   `xml:"ADD"`
	Hold    *holdXML    `xml:"HOLD"`
	Release *releaseXML `xml:"RELEASE"`
}

type holdXML struct {
	HoldUntilDate string `xml:"HoldUntilDate,attr"`
}

type releaseXML struct {
	Target string `xml:"target,attr"`
}

// BuildEnvelope renders the SUBMISSION document for e.
func BuildEnvelope(e Envelope) (Document, error) {
	rec := submissionXML{CenterName: text(e.CenterName)}
	if target := text(e.ReleaseTarget); target != "" {
		rec.Actions = []actionXML{{Release: &releaseXML{Target: target}}}
		return encode(KindSubmission, rec)
	}
	if e.HoldUntil.IsZero() {
		return Document{}, services.Wrap(services.ErrConstruction, KindSubmission.Step(), "validate", "hold date is required", nil)
	}
	rec.Actions = []actionXML{
		{Add: &struct{}{}},
		{Hold: &holdXML{HoldUntilDate: e.HoldUntil.Format(HoldDateLayout)}},
	}
	return encode(KindSubmission, rec)
}
