package receipt

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"enasubmit/internal/services"
)

// Status is the tri-state outcome of one submission.
type Status int

const (
	Failed Status = iota
	Accepted
	Duplicate
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// Result is the classified outcome of one drop-box response.
type Result struct {
	Status     Status
	Accession  string
	StatusCode int
	// Body is the raw receipt, kept for diagnostics.
	Body string
	// Errors lists the text of every ERROR element in document order.
	Errors []string
	// Pattern is the ID of the duplicate pattern that matched.
	Pattern string
	// Unrecognized is set when ERROR elements were present but none
	// matched the duplicate table.
	Unrecognized bool
	Err          error
}

// OK reports whether the chain may continue past this result.
func (r Result) OK() bool {
	return r.Status == Accepted || r.Status == Duplicate
}

// Classifier classifies receipts against a duplicate pattern table.
type Classifier struct {
	Patterns []DuplicatePattern
}

// Default classifies with the package pattern table.
var Default = Classifier{Patterns: Patterns}

// Classify classifies with the package pattern table.
func Classify(statusCode int, body []byte, expectedRoot string) Result {
	return Default.Classify(statusCode, body, expectedRoot)
}

// Classify turns a status and body into a Result. When expectedRoot names
// an element, its accession attribute is extracted from accepted receipts;
// a missing attribute yields an empty accession, not a failure.
func (c Classifier) Classify(statusCode int, body []byte, expectedRoot string) Result {
	step := strings.ToLower(strings.TrimSpace(expectedRoot))
	if step == "" {
		step = "release"
	}
	res := Result{StatusCode: statusCode, Body: string(body)}
	if statusCode != http.StatusOK {
		res.Status = Failed
		res.Err = services.Wrap(services.ErrTransport, step, "classify", fmt.Sprintf("archive responded with HTTP %d", statusCode), nil)
		return res
	}

	parsed, err := scan(body, expectedRoot)
	if err != nil {
		res.Status = Failed
		res.Err = services.Wrap(services.ErrProtocol, step, "classify", "unreadable receipt", err)
		return res
	}
	res.Errors = parsed.errors

	if len(parsed.errors) == 0 {
		res.Status = Accepted
		res.Accession = parsed.accession
		return res
	}

	for _, text := range parsed.errors {
		for _, p := range c.Patterns {
			if acc, ok := p.Match(text); ok {
				res.Status = Duplicate
				res.Accession = acc
				res.Pattern = p.ID()
				return res
			}
		}
	}

	res.Status = Failed
	res.Unrecognized = true
	res.Err = services.Wrap(services.ErrProtocol, step, "classify", "archive reported errors: "+strings.Join(parsed.errors, "; "), nil)
	return res
}

type scanned struct {
	errors    []string
	accession string
}

// scan walks the receipt token stream collecting ERROR text at any depth and
// the accession attribute of the first element named root.
func scan(body []byte, root string) (scanned, error) {
	var out scanned
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false

	var (
		errDepth  int
		errText   strings.Builder
		foundRoot bool
		sawStart  bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			sawStart = true
			if errDepth > 0 {
				errDepth++
				continue
			}
			if t.Name.Local == "ERROR" {
				errDepth = 1
				errText.Reset()
				continue
			}
			if root != "" && !foundRoot && t.Name.Local == root {
				foundRoot = true
				for _, attr := range t.Attr {
					if attr.Name.Local == "accession" {
						out.accession = strings.TrimSpace(attr.Value)
					}
				}
			}
		case xml.EndElement:
			if errDepth > 0 {
				errDepth--
				if errDepth == 0 {
					out.errors = append(out.errors, strings.Join(strings.Fields(errText.String()), " "))
				}
			}
		case xml.CharData:
			if errDepth > 0 {
				errText.Write(t)
			}
		}
	}
	if !sawStart {
		return out, errors.New("no elements in receipt")
	}
	return out, nil
}
