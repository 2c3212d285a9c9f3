package booksync

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeDocumentID derives a storage safe id from a book title: accents are
// folded, everything outside [a-z0-9] collapses to single hyphens and edge
// hyphens are dropped. Titles with nothing left (CJK titles for example) get
// a time based id.
func SanitizeDocumentID(title string, now time.Time) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	base := strings.ToLower(strings.TrimSpace(folded))
	base = nonAlphanumeric.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		return fmt.Sprintf("journey-book-%d", now.UnixMilli())
	}
	return base
}
