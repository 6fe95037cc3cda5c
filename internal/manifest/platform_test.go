package manifest_test

import (
	"errors"
	"testing"

	"enasubmit/internal/manifest"
	"enasubmit/internal/services"
)

func TestLookupInstrumentTable(t *testing.T) {
	cases := map[string]manifest.Instrument{
		"miseq":       {Platform: manifest.PlatformIllumina, Model: "Illumina MiSeq"},
		"hiseq 2500":  {Platform: manifest.PlatformIllumina, Model: "Illumina HiSeq 2500"},
		"nextseq":     {Platform: manifest.PlatformIllumina, Model: "Illumina NextSeq"},
		"nextseq 550": {Platform: manifest.PlatformIllumina, Model: "Illumina NextSeq 550"},
		"novaseq":     {Platform: manifest.PlatformIllumina, Model: "Illumina NovaSeq"},
		"minion":      {Platform: manifest.PlatformOxfordNanopore, Model: "MinION"},
		"gridion":     {Platform: manifest.PlatformOxfordNanopore, Model: "GridION"},
		"promethion":  {Platform: manifest.PlatformOxfordNanopore, Model: "PromethION"},
	}
	for id, want := range cases {
		got, err := manifest.LookupInstrument(id)
		if err != nil {
			t.Fatalf("LookupInstrument(%q): %v", id, err)
		}
		if got != want {
			t.Fatalf("LookupInstrument(%q) = %+v, want %+v", id, got, want)
		}
	}
	if len(manifest.KnownInstruments()) != len(cases) {
		t.Fatalf("unexpected known instrument count: %v", manifest.KnownInstruments())
	}
}

func TestLookupInstrumentNormalizesInput(t *testing.T) {
	for _, id := range []string{"MiSeq", " miseq ", "NextSeq_550", "nextseq   550"} {
		if _, err := manifest.LookupInstrument(id); err != nil {
			t.Fatalf("LookupInstrument(%q): %v", id, err)
		}
	}
}

func TestLookupInstrumentUnknown(t *testing.T) {
	for _, id := range []string{"", "hiseq2000", "grid", "prom"} {
		if _, err := manifest.LookupInstrument(id); !errors.Is(err, services.ErrConstruction) {
			t.Fatalf("LookupInstrument(%q): expected construction error, got %v", id, err)
		}
	}
}
