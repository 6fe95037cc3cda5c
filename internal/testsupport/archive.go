package testsupport

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// ArchiveRequest is one call observed by the fake drop-box.
type ArchiveRequest struct {
	Kind          string
	Alias         string
	ReleaseTarget string
	Submission    []byte
	Payload       []byte
}

type cannedResponse struct {
	status int
	body   string
}

// ArchiveServer emulates the drop-box: it issues one accession per alias,
// answers a reused alias with the archive's duplicate ERROR and accepts
// RELEASE actions.
type ArchiveServer struct {
	t      testing.TB
	server *httptest.Server

	mu sync.Mutex

	username string
	password string
	issued   map[string]string
	counters map[string]int
	canned   map[string]cannedResponse
	omit     map[string]bool
	awaiting bool
	requests []ArchiveRequest
	releases []string
}

var accessionPrefix = map[string]string{
	"SAMPLE":     "ERS",
	"EXPERIMENT": "ERX",
	"RUN":        "ERR",
}

// NewArchiveServer starts a fake drop-box that expects the credentials from
// NewConfig and registers cleanup.
func NewArchiveServer(t testing.TB) *ArchiveServer {
	t.Helper()
	a := &ArchiveServer{
		t:        t,
		username: "Webin-test",
		password: "test-password",
		issued:   map[string]string{},
		counters: map[string]int{},
		canned:   map[string]cannedResponse{},
		omit:     map[string]bool{},
	}
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
	t.Cleanup(a.server.Close)
	return a
}

// URL returns the drop-box endpoint.
func (a *ArchiveServer) URL() string {
	return a.server.URL + "/ena/submit/drop-box/submit/"
}

// Respond makes every later submission of kind return the given response.
// Kind "RELEASE" targets release calls.
func (a *ArchiveServer) Respond(kind string, status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.canned[kind] = cannedResponse{status: status, body: body}
}

// OmitAccession makes accepted receipts for kind carry no accession attribute.
func (a *ArchiveServer) OmitAccession(kind string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.omit[kind] = true
}

// UseAwaitingMessage switches duplicate replies to the "waiting to be
// processed" wording.
func (a *ArchiveServer) UseAwaitingMessage() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.awaiting = true
}

// Requests returns a copy of every observed call in arrival order.
func (a *ArchiveServer) Requests() []ArchiveRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ArchiveRequest(nil), a.requests...)
}

// Releases returns the released accessions in arrival order.
func (a *ArchiveServer) Releases() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.releases...)
}

// Kinds returns the payload kind of every observed call.
func (a *ArchiveServer) Kinds() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.requests))
	for _, r := range a.requests {
		out = append(out, r.Kind)
	}
	return out
}

func (a *ArchiveServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, pass, ok := r.BasicAuth()
	if !ok || user != a.username || pass != a.password {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "bad multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	submission, err := formFile(r, "SUBMISSION")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := ArchiveRequest{Submission: submission}
	if target := attrOf(submission, "RELEASE", "target"); target != "" {
		req.Kind = "RELEASE"
		req.ReleaseTarget = target
	} else {
		for kind := range accessionPrefix {
			if data, err := formFile(r, kind); err == nil {
				req.Kind = kind
				req.Payload = data
				req.Alias = attrOf(data, kind, "alias")
				break
			}
		}
	}
	if req.Kind == "" {
		http.Error(w, "no payload part", http.StatusBadRequest)
		return
	}

	status, body := a.respond(req)
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (a *ArchiveServer) respond(req ArchiveRequest) (int, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, req)

	if canned, ok := a.canned[req.Kind]; ok {
		return canned.status, canned.body
	}

	if req.Kind == "RELEASE" {
		a.releases = append(a.releases, req.ReleaseTarget)
		return http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT success="true"><MESSAGES><INFO>` + html.EscapeString(req.ReleaseTarget) + ` has been released</INFO></MESSAGES><ACTIONS>RELEASE</ACTIONS></RECEIPT>`
	}

	key := req.Kind + "\x00" + req.Alias
	escapedAlias := html.EscapeString(req.Alias)
	if acc, seen := a.issued[key]; seen {
		msg := fmt.Sprintf(`In %s, alias:"%s", accession:"". The object being added already exists in the submission account with accession: "%s".`, strings.ToLower(req.Kind), escapedAlias, acc)
		if a.awaiting {
			msg = fmt.Sprintf("The object(%s) has already been submitted and is waiting to be processed.", acc)
		}
		return http.StatusOK, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT success="false"><%s alias="%s" status="PRIVATE"/><MESSAGES><ERROR>%s</ERROR></MESSAGES></RECEIPT>`, req.Kind, escapedAlias, msg)
	}

	a.counters[req.Kind]++
	acc := fmt.Sprintf("%s%06d", accessionPrefix[req.Kind], a.counters[req.Kind])
	a.issued[key] = acc
	accAttr := fmt.Sprintf(` accession="%s"`, acc)
	if a.omit[req.Kind] {
		accAttr = ""
	}
	return http.StatusOK, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT success="true"><%s%s alias="%s" status="PRIVATE"/><SUBMISSION accession="ERA%06d"/><ACTIONS>ADD</ACTIONS><ACTIONS>HOLD</ACTIONS></RECEIPT>`, req.Kind, accAttr, escapedAlias, len(a.requests))
}

func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s part: %w", field, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// attrOf returns the named attribute of the first element called elem.
func attrOf(doc []byte, elem, attr string) string {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != elem {
			continue
		}
		for _, a := range start.Attr {
			if a.Name.Local == attr {
				return a.Value
			}
		}
		return ""
	}
}
