package manifest

import (
	"encoding/hex"
	"encoding/xml"
	"path"
	"strings"

	"enasubmit/internal/services"
)

type runSetXML struct {
	XMLName xml.Name `xml:"RUN_SET"`
	Run     []runXML `xml:"RUN"`
}

type runXML struct {
	Alias         string       `xml:"alias,attr"`
	CenterName    string       `xml:"center_name,attr,omitempty"`
	ExperimentRef accessionRef `xml:"EXPERIMENT_REF"`
	Files         []fileXML    `xml:"DATA_BLOCK>FILES>FILE"`
}

type fileXML struct {
	Filename       string `xml:"filename,attr"`
	FileType       string `xml:"filetype,attr"`
	ChecksumMethod string `xml:"checksum_method,attr"`
	Checksum       string `xml:"checksum,attr"`
}

// BuildRun renders a RUN_SET document. The filename must already be the
// archive-visible basename and the checksum the hex MD5 of the uploaded bytes.
func BuildRun(r Run) (Document, error) {
	rec := runXML{
		Alias:         text(r.Alias),
		CenterName:    text(r.CenterName),
		ExperimentRef: accessionRef{Accession: text(r.ExperimentAccession)},
	}
	file := fileXML{
		Filename:       text(r.FileName),
		FileType:       strings.ToLower(text(r.FileType)),
		ChecksumMethod: "MD5",
		Checksum:       strings.ToLower(strings.TrimSpace(r.Checksum)),
	}
	checks := []struct{ field, value string }{
		{"alias", rec.Alias},
		{"experiment accession", rec.ExperimentRef.Accession},
		{"file name", file.Filename},
		{"file type", file.FileType},
		{"checksum", file.Checksum},
	}
	for _, c := range checks {
		if err := required(KindRun, c.field, c.value); err != nil {
			return Document{}, err
		}
	}
	if strings.ContainsAny(file.Filename, `/\`) || path.Base(file.Filename) != file.Filename {
		return Document{}, services.Wrap(services.ErrConstruction, KindRun.Step(), "validate", "file name must be a bare basename", nil)
	}
	if raw, err := hex.DecodeString(file.Checksum); err != nil || len(raw) != 16 {
		return Document{}, services.Wrap(services.ErrConstruction, KindRun.Step(), "validate", "checksum must be a 32 character hex MD5", nil)
	}
	rec.Files = []fileXML{file}

	return encode(KindRun, runSetXML{Run: []runXML{rec}})
}
