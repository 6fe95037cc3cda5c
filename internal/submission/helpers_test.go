package submission_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"enasubmit/internal/journal"
	"enasubmit/internal/manifest"
	"enasubmit/internal/services/webin"
	"enasubmit/internal/submission"
	"enasubmit/internal/testsupport"
	"enasubmit/internal/upload"
)

var releaseTarget = regexp.MustCompile(`target="([^"]+)"`)

var defaultAccessions = map[string]string{
	"SAMPLE":     "ERS000001",
	"EXPERIMENT": "ERX000001",
	"RUN":        "ERR000001",
}

func acceptedBody(kind, accession string) string {
	return fmt.Sprintf(`<RECEIPT success="true"><%s accession="%s" alias="x"/></RECEIPT>`, kind, accession)
}

func duplicateBody(accession string) string {
	return fmt.Sprintf(`<RECEIPT success="false"><MESSAGES><ERROR>In object, alias:"x". The object being added already exists in the submission account with accession: "%s".</ERROR></MESSAGES></RECEIPT>`, accession)
}

// scriptedTransport answers by payload kind; "RELEASE" covers release calls.
type scriptedTransport struct {
	mu        sync.Mutex
	responses map[string]webin.Response
	errs      map[string]error
	calls     []string
	releases  []string
	payloads  map[string][]byte
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{
		responses: map[string]webin.Response{},
		errs:      map[string]error{},
		payloads:  map[string][]byte{},
	}
}

func (s *scriptedTransport) Submit(_ context.Context, envelope manifest.Document, docs ...manifest.Document) (webin.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind := "RELEASE"
	if len(docs) > 0 {
		kind = string(docs[0].Kind)
		s.payloads[kind] = docs[0].Body
	} else if m := releaseTarget.FindSubmatch(envelope.Body); m != nil {
		s.releases = append(s.releases, string(m[1]))
	}
	s.calls = append(s.calls, kind)
	if err, ok := s.errs[kind]; ok {
		return webin.Response{}, err
	}
	if resp, ok := s.responses[kind]; ok {
		return resp, nil
	}
	if kind == "RELEASE" {
		return webin.Response{StatusCode: 200, Body: []byte(`<RECEIPT success="true"/>`)}, nil
	}
	return webin.Response{StatusCode: 200, Body: []byte(acceptedBody(kind, defaultAccessions[kind]))}, nil
}

func (s *scriptedTransport) respond(kind string, status int, body string) {
	s.responses[kind] = webin.Response{StatusCode: status, Body: []byte(body)}
}

type fakeUploader struct {
	calls int
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, path string) (upload.Result, error) {
	f.calls++
	if f.err != nil {
		return upload.Result{}, f.err
	}
	return upload.Result{LocalPath: path, RemoteName: filepath.Base(path), Checksum: "d41d8cd98f00b204e9800998ecf8427e"}, nil
}

type failingJournal struct{ calls int }

func (f *failingJournal) Record(context.Context, journal.Entry) (journal.Entry, error) {
	f.calls++
	return journal.Entry{}, errors.New("disk full")
}

// ftpConn is an in-memory FTP server connection.
type ftpConn struct {
	mu     sync.Mutex
	stored map[string][]byte
}

func (c *ftpConn) Login(string, string) error { return nil }

func (c *ftpConn) Stor(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stored == nil {
		c.stored = map[string][]byte{}
	}
	c.stored[path] = data
	return nil
}

func (c *ftpConn) Quit() error { return nil }

type ftpDialer struct{ conn *ftpConn }

func (d ftpDialer) Dial(context.Context, string, time.Duration) (upload.Conn, error) {
	return d.conn, nil
}

func scenarioRequest(t *testing.T) submission.Request {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bam")
	testsupport.WriteFile(t, path, 0)
	return submission.Request{
		StudyAccession: "ERP1",
		CenterName:     "Centre",
		SampleName:     "S1",
		TaxonID:        "9606",
		RunName:        "R1",
		FilePath:       path,
		FileType:       "bam",
		Instrument:     "miseq",
		Library: manifest.Library{
			Strategy:  "AMPLICON",
			Source:    "VIRAL RNA",
			Selection: "PCR",
		},
	}
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
}

func newOrchestrator(t *testing.T, opts submission.Options) *submission.Orchestrator {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedClock()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "test-correlation" }
	}
	o, err := submission.NewOrchestrator(opts)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

func manifestAttr(tag, value string) manifest.Attribute {
	return manifest.Attribute{Tag: tag, Value: value}
}
