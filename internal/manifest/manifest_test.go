package manifest_test

import (
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"enasubmit/internal/manifest"
	"enasubmit/internal/services"
)

type parsedSample struct {
	Sample struct {
		Alias      string `xml:"alias,attr"`
		Title      string `xml:"TITLE"`
		TaxonID    string `xml:"SAMPLE_NAME>TAXON_ID"`
		Attributes []struct {
			Tag   string `xml:"TAG"`
			Value string `xml:"VALUE"`
		} `xml:"SAMPLE_ATTRIBUTES>SAMPLE_ATTRIBUTE"`
	} `xml:"SAMPLE"`
}

type parsedSampleRecord struct {
	XMLName xml.Name
	Sample  struct {
		Alias      string `xml:"alias,attr"`
		CenterName string `xml:"center_name,attr"`
	} `xml:"SAMPLE"`
}

type parsedExperiment struct {
	Experiment struct {
		Alias string `xml:"alias,attr"`
		Title string `xml:"TITLE"`
		Study struct {
			Accession string `xml:"accession,attr"`
		} `xml:"STUDY_REF"`
		Design struct {
			Sample struct {
				Accession string `xml:"accession,attr"`
			} `xml:"SAMPLE_DESCRIPTOR"`
			Library struct {
				Strategy  string `xml:"LIBRARY_STRATEGY"`
				Source    string `xml:"LIBRARY_SOURCE"`
				Selection string `xml:"LIBRARY_SELECTION"`
				Layout    struct {
					Single *struct{} `xml:"SINGLE"`
					Paired *struct {
						NominalLength int `xml:"NOMINAL_LENGTH,attr"`
					} `xml:"PAIRED"`
				} `xml:"LIBRARY_LAYOUT"`
			} `xml:"LIBRARY_DESCRIPTOR"`
		} `xml:"DESIGN"`
		Platform struct {
			Illumina *struct {
				Model string `xml:"INSTRUMENT_MODEL"`
			} `xml:"ILLUMINA"`
			OxfordNanopore *struct {
				Model string `xml:"INSTRUMENT_MODEL"`
			} `xml:"OXFORD_NANOPORE"`
		} `xml:"PLATFORM"`
	} `xml:"EXPERIMENT"`
}

type parsedRun struct {
	Run struct {
		Alias      string `xml:"alias,attr"`
		Experiment struct {
			Accession string `xml:"accession,attr"`
		} `xml:"EXPERIMENT_REF"`
		Files []struct {
			Filename       string `xml:"filename,attr"`
			FileType       string `xml:"filetype,attr"`
			ChecksumMethod string `xml:"checksum_method,attr"`
			Checksum       string `xml:"checksum,attr"`
		} `xml:"DATA_BLOCK>FILES>FILE"`
	} `xml:"RUN"`
}

func decode(t *testing.T, doc manifest.Document, v any) {
	t.Helper()
	if err := xml.Unmarshal(doc.Body, v); err != nil {
		t.Fatalf("unmarshal %s document: %v\n%s", doc.Kind, err, doc.Body)
	}
}

func TestBuildSampleRendersRecordAndOmitsEmptyAttributes(t *testing.T) {
	doc, err := manifest.BuildSample(manifest.Sample{
		Alias:      "S1",
		TaxonID:    "9606",
		CenterName: "Centre",
		Attributes: []manifest.Attribute{
			{Tag: "collection_date", Value: "2020-03-01"},
			{Tag: "host", Value: ""},
			{Tag: "country", Value: "United Kingdom"},
		},
	})
	if err != nil {
		t.Fatalf("BuildSample: %v", err)
	}
	if doc.Kind != manifest.KindSample {
		t.Fatalf("unexpected kind %q", doc.Kind)
	}
	if !strings.HasPrefix(string(doc.Body), xml.Header) {
		t.Fatalf("expected xml header, got %q", doc.Body)
	}

	var root parsedSampleRecord
	decode(t, doc, &root)
	if root.XMLName.Local != "SAMPLE_SET" {
		t.Fatalf("expected SAMPLE_SET root, got %q", root.XMLName.Local)
	}
	if root.Sample.CenterName != "Centre" {
		t.Fatalf("unexpected center name %q", root.Sample.CenterName)
	}

	var parsed parsedSample
	decode(t, doc, &parsed)
	got := parsed.Sample
	if got.Alias != "S1" || got.TaxonID != "9606" || got.Title != "S1" {
		t.Fatalf("unexpected sample: %+v", got)
	}
	if strings.Contains(string(doc.Body), "host") {
		t.Fatalf("empty-valued attribute was rendered: %s", doc.Body)
	}
	tags := make([]string, 0, len(got.Attributes))
	for _, attr := range got.Attributes {
		tags = append(tags, attr.Tag+"="+attr.Value)
	}
	if diff := cmp.Diff([]string{"collection_date=2020-03-01", "country=United Kingdom"}, tags); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSampleWithoutAttributesHasNoAttributeBlock(t *testing.T) {
	cases := map[string][]manifest.Attribute{
		"nil":          nil,
		"empty slice":  {},
		"empty values": {{Tag: "host", Value: ""}, {Tag: "country", Value: "  "}},
	}
	for name, attrs := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := manifest.BuildSample(manifest.Sample{Alias: "S1", TaxonID: "9606", Attributes: attrs})
			if err != nil {
				t.Fatalf("BuildSample: %v", err)
			}
			if strings.Contains(string(doc.Body), "SAMPLE_ATTRIBUTES") {
				t.Fatalf("expected no attribute block, got %s", doc.Body)
			}
		})
	}
}

func TestBuildSampleEscapesFreeText(t *testing.T) {
	alias := `a&b<"c">`
	doc, err := manifest.BuildSample(manifest.Sample{
		Alias:      alias,
		TaxonID:    "9606",
		Attributes: []manifest.Attribute{{Tag: "note", Value: "</VALUE><INJECTED/>"}},
	})
	if err != nil {
		t.Fatalf("BuildSample: %v", err)
	}
	body := string(doc.Body)
	if strings.Contains(body, "<INJECTED") || strings.Contains(body, `<"c">`) {
		t.Fatalf("free text was not escaped: %s", body)
	}
	var parsed parsedSample
	decode(t, doc, &parsed)
	got := parsed.Sample
	if got.Alias != alias {
		t.Fatalf("alias did not survive round trip: got %q want %q", got.Alias, alias)
	}
	if len(got.Attributes) != 1 || got.Attributes[0].Value != "</VALUE><INJECTED/>" {
		t.Fatalf("attribute value did not survive round trip: %+v", got.Attributes)
	}
}

func TestBuildSampleRejectsInvalidRecords(t *testing.T) {
	cases := map[string]manifest.Sample{
		"missing alias": {TaxonID: "9606"},
		"missing taxon": {Alias: "S1"},
		"duplicate tag": {Alias: "S1", TaxonID: "9606", Attributes: []manifest.Attribute{{Tag: "host", Value: "a"}, {Tag: "host", Value: "b"}}},
		"empty tag":     {Alias: "S1", TaxonID: "9606", Attributes: []manifest.Attribute{{Tag: " ", Value: "a"}}},
	}
	for name, sample := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := manifest.BuildSample(sample)
			if !errors.Is(err, services.ErrConstruction) {
				t.Fatalf("expected construction error, got %v", err)
			}
		})
	}
}

func validExperiment() manifest.Experiment {
	return manifest.Experiment{
		Alias:           "S1/R1",
		CenterName:      "Centre",
		StudyAccession:  "ERP1",
		SampleAccession: "ERS000001",
		Instrument:      "miseq",
		Library: manifest.Library{
			Strategy:  "AMPLICON",
			Source:    "VIRAL RNA",
			Selection: "PCR",
		},
	}
}

func TestBuildExperimentRendersDesignAndPlatform(t *testing.T) {
	doc, err := manifest.BuildExperiment(validExperiment())
	if err != nil {
		t.Fatalf("BuildExperiment: %v", err)
	}
	var got parsedExperiment
	decode(t, doc, &got)
	exp := got.Experiment
	if exp.Alias != "S1/R1" || exp.Title != "S1/R1" {
		t.Fatalf("unexpected alias/title: %q %q", exp.Alias, exp.Title)
	}
	if exp.Study.Accession != "ERP1" || exp.Design.Sample.Accession != "ERS000001" {
		t.Fatalf("unexpected references: study=%q sample=%q", exp.Study.Accession, exp.Design.Sample.Accession)
	}
	lib := exp.Design.Library
	if lib.Strategy != "AMPLICON" || lib.Source != "VIRAL RNA" || lib.Selection != "PCR" {
		t.Fatalf("unexpected library: %+v", lib)
	}
	if lib.Layout.Single == nil || lib.Layout.Paired != nil {
		t.Fatalf("expected SINGLE layout, got %+v", lib.Layout)
	}
	if exp.Platform.Illumina == nil || exp.Platform.Illumina.Model != "Illumina MiSeq" {
		t.Fatalf("expected Illumina MiSeq platform, got %+v", exp.Platform)
	}
	if exp.Platform.OxfordNanopore != nil {
		t.Fatal("expected no nanopore element")
	}
}

func TestBuildExperimentPairedLayout(t *testing.T) {
	exp := validExperiment()
	exp.Library.Layout = manifest.LayoutPaired
	exp.Library.NominalLength = 300
	doc, err := manifest.BuildExperiment(exp)
	if err != nil {
		t.Fatalf("BuildExperiment: %v", err)
	}
	var got parsedExperiment
	decode(t, doc, &got)
	layout := got.Experiment.Design.Library.Layout
	if layout.Paired == nil || layout.Paired.NominalLength != 300 || layout.Single != nil {
		t.Fatalf("expected PAIRED layout with nominal length, got %+v", layout)
	}
}

func TestBuildExperimentUnknownInstrumentIsConstructionError(t *testing.T) {
	exp := validExperiment()
	exp.Instrument = "hiseq2000"
	doc, err := manifest.BuildExperiment(exp)
	if !errors.Is(err, services.ErrConstruction) {
		t.Fatalf("expected construction error, got %v", err)
	}
	if len(doc.Body) != 0 {
		t.Fatalf("expected no document, got %s", doc.Body)
	}
}

func TestBuildExperimentRequiresReferences(t *testing.T) {
	exp := validExperiment()
	exp.SampleAccession = ""
	if _, err := manifest.BuildExperiment(exp); !errors.Is(err, services.ErrConstruction) {
		t.Fatalf("expected construction error for missing sample accession, got %v", err)
	}
	exp = validExperiment()
	exp.Library.Layout = "TRIPLE"
	if _, err := manifest.BuildExperiment(exp); !errors.Is(err, services.ErrConstruction) {
		t.Fatalf("expected construction error for unknown layout, got %v", err)
	}
}

func TestBuildRunRendersFileBlock(t *testing.T) {
	doc, err := manifest.BuildRun(manifest.Run{
		Alias:               "R1",
		CenterName:          "Centre",
		ExperimentAccession: "ERX000001",
		FileName:            "test & 1.bam",
		FileType:            "BAM",
		Checksum:            "D41D8CD98F00B204E9800998ECF8427E",
	})
	if err != nil {
		t.Fatalf("BuildRun: %v", err)
	}
	var got parsedRun
	decode(t, doc, &got)
	if got.Run.Alias != "R1" || got.Run.Experiment.Accession != "ERX000001" {
		t.Fatalf("unexpected run: %+v", got.Run)
	}
	if len(got.Run.Files) != 1 {
		t.Fatalf("expected one file, got %d", len(got.Run.Files))
	}
	file := got.Run.Files[0]
	want := struct{ name, typ, method, sum string }{"test & 1.bam", "bam", "MD5", "d41d8cd98f00b204e9800998ecf8427e"}
	if file.Filename != want.name || file.FileType != want.typ || file.ChecksumMethod != want.method || file.Checksum != want.sum {
		t.Fatalf("unexpected file element: %+v", file)
	}
}

func TestBuildRunRejectsPathsAndBadChecksums(t *testing.T) {
	base := manifest.Run{
		Alias:               "R1",
		ExperimentAccession: "ERX000001",
		FileName:            "test.bam",
		FileType:            "bam",
		Checksum:            "d41d8cd98f00b204e9800998ecf8427e",
	}
	withPath := base
	withPath.FileName = "/data/private/test.bam"
	if _, err := manifest.BuildRun(withPath); !errors.Is(err, services.ErrConstruction) {
		t.Fatalf("expected construction error for path filename, got %v", err)
	}
	badSum := base
	badSum.Checksum = "not-a-checksum"
	if _, err := manifest.BuildRun(badSum); !errors.Is(err, services.ErrConstruction) {
		t.Fatalf("expected construction error for checksum, got %v", err)
	}
	noExp := base
	noExp.ExperimentAccession = ""
	if _, err := manifest.BuildRun(noExp); !errors.Is(err, services.ErrConstruction) {
		t.Fatalf("expected construction error for missing experiment accession, got %v", err)
	}
}
