package manifest

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"enasubmit/internal/services"
)

// Platform is a sequencing platform element name in the experiment schema.
type Platform string

const (
	PlatformIllumina       Platform = "ILLUMINA"
	PlatformOxfordNanopore Platform = "OXFORD_NANOPORE"
)

// Instrument is a resolved PLATFORM/INSTRUMENT_MODEL pair.
type Instrument struct {
	Platform Platform
	Model    string
}

var instruments = map[string]Instrument{
	"miseq":       {PlatformIllumina, "Illumina MiSeq"},
	"hiseq 2500":  {PlatformIllumina, "Illumina HiSeq 2500"},
	"nextseq":     {PlatformIllumina, "Illumina NextSeq"},
	"nextseq 550": {PlatformIllumina, "Illumina NextSeq 550"},
	"novaseq":     {PlatformIllumina, "Illumina NovaSeq"},
	"minion":      {PlatformOxfordNanopore, "MinION"},
	"gridion":     {PlatformOxfordNanopore, "GridION"},
	"promethion":  {PlatformOxfordNanopore, "PromethION"},
}

// LookupInstrument resolves a user-facing instrument identifier. Matching is
// case-insensitive, underscores count as spaces and runs of whitespace
// collapse, so "NextSeq_550" and "nextseq  550" both resolve.
func LookupInstrument(id string) (Instrument, error) {
	key := instrumentKey(id)
	inst, ok := instruments[key]
	if !ok {
		return Instrument{}, services.Wrap(services.ErrConstruction, KindExperiment.Step(), "resolve instrument",
			fmt.Sprintf("unrecognized instrument %q (known: %s)", id, strings.Join(KnownInstruments(), ", ")), nil)
	}
	return inst, nil
}

// KnownInstruments lists the accepted identifiers in sorted order.
func KnownInstruments() []string {
	keys := make([]string, 0, len(instruments))
	for key := range instruments {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func instrumentKey(id string) string {
	id = strings.ReplaceAll(id, "_", " ")
	return cases.Fold().String(strings.Join(strings.Fields(id), " "))
}
