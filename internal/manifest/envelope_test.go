package manifest_test

import (
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"enasubmit/internal/manifest"
	"enasubmit/internal/services"
)

type parsedSubmission struct {
	CenterName string `xml:"center_name,attr"`
	Actions    []struct {
		Add  *struct{} `xml:"ADD"`
		Hold *struct {
			Date string `xml:"HoldUntilDate,attr"`
		} `xml:"HOLD"`
		Release *struct {
			Target string `xml:"target,attr"`
		} `xml:"RELEASE"`
	} `xml:"ACTIONS>ACTION"`
}

func TestBuildEnvelopeAddAndHold(t *testing.T) {
	day := time.Date(2026, 10, 14, 15, 4, 5, 0, time.UTC)
	env := manifest.AddAndHold("Centre", day)
	if env.IsRelease() {
		t.Fatal("add envelope reported as release")
	}
	doc, err := manifest.BuildEnvelope(env)
	if err != nil {
		t.Fatalf("BuildEnvelope: %v", err)
	}
	if doc.Kind != manifest.KindSubmission {
		t.Fatalf("unexpected kind %q", doc.Kind)
	}
	var got parsedSubmission
	if err := xml.Unmarshal(doc.Body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.CenterName != "Centre" {
		t.Fatalf("unexpected center %q", got.CenterName)
	}
	if len(got.Actions) != 2 {
		t.Fatalf("expected two actions, got %d", len(got.Actions))
	}
	if got.Actions[0].Add == nil || got.Actions[0].Hold != nil {
		t.Fatalf("first action must be ADD: %+v", got.Actions[0])
	}
	if got.Actions[1].Hold == nil || got.Actions[1].Hold.Date != "2026-10-14" {
		t.Fatalf("second action must be HOLD with date: %+v", got.Actions[1])
	}
}

func TestBuildEnvelopeRelease(t *testing.T) {
	env := manifest.ReleaseOf("Centre", "ERS000001")
	if !env.IsRelease() {
		t.Fatal("release envelope not reported as release")
	}
	doc, err := manifest.BuildEnvelope(env)
	if err != nil {
		t.Fatalf("BuildEnvelope: %v", err)
	}
	var got parsedSubmission
	if err := xml.Unmarshal(doc.Body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Actions) != 1 || got.Actions[0].Release == nil || got.Actions[0].Release.Target != "ERS000001" {
		t.Fatalf("expected single RELEASE action, got %+v", got.Actions)
	}
	if got.Actions[0].Add != nil || got.Actions[0].Hold != nil {
		t.Fatal("release envelope must not carry ADD or HOLD")
	}
}

func TestBuildEnvelopeRequiresHoldDate(t *testing.T) {
	if _, err := manifest.BuildEnvelope(manifest.Envelope{CenterName: "Centre"}); !errors.Is(err, services.ErrConstruction) {
		t.Fatalf("expected construction error, got %v", err)
	}
}
