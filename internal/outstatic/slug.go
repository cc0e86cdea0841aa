package outstatic

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent strips combining marks so accented titles slugify cleanly.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases a title and reduces it to hyphen-separated alphanumerics.
func Slugify(s string) string {
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)

	var b strings.Builder
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	out := b.String()
	if out == "" {
		return "untitled"
	}
	return out
}

// StorageKey derives the blob storage key for a post's cover image: the
// lowercased, hyphenated title under images/, suffixed with a unix timestamp.
func StorageKey(title string, now time.Time) string {
	return fmt.Sprintf("images/%s-%d.png", Slugify(title), now.Unix())
}
