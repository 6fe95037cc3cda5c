package receipt

import (
	"fmt"
	"regexp"
	"strings"
)

// DuplicatePattern recognises one archive message meaning "this alias was
// already registered" and recovers the accession it names.
type DuplicatePattern struct {
	Name    string
	Version int
	// Phrase must appear verbatim in the ERROR text.
	Phrase string
	// Accession must capture the accession as its first group.
	Accession *regexp.Regexp
}

// ID returns the name@version label recorded on matching results.
func (p DuplicatePattern) ID() string {
	return fmt.Sprintf("%s@v%d", p.Name, p.Version)
}

// Match reports the recovered accession. A phrase hit without an
// extractable accession is not a match.
func (p DuplicatePattern) Match(text string) (string, bool) {
	if p.Phrase == "" || p.Accession == nil || !strings.Contains(text, p.Phrase) {
		return "", false
	}
	m := p.Accession.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	acc := strings.TrimSpace(m[1])
	if acc == "" {
		return "", false
	}
	return acc, true
}

// Patterns is the default duplicate table, checked in order.
var Patterns = []DuplicatePattern{
	{
		Name:      "exists-in-account",
		Version:   1,
		Phrase:    "already exists in the submission account with accession:",
		Accession: regexp.MustCompile(`already exists in the submission account with accession:\s*"?([A-Za-z][A-Za-z0-9_]*[0-9])"?`),
	},
	{
		Name:      "awaiting-processing",
		Version:   1,
		Phrase:    "has already been submitted and is waiting to be processed",
		Accession: regexp.MustCompile(`object\(\s*"?([A-Za-z][A-Za-z0-9_]*[0-9])"?\s*\)`),
	},
}
