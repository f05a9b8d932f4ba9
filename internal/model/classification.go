package model

import (
	"strings"
	"time"
)

// DefaultGlyph is assigned to classifications created without an explicit
// glyph, such as a category minted on the fly during an edit.
const DefaultGlyph = "📝"

// Classification is a user-owned named bucket with a display glyph and a
// set of matching keywords. Names are unique per user, case-insensitively.
type Classification struct {
	CreatedAt time.Time
	Name      string
	Glyph     string
	UserID    string
	Keywords  []string
	ID        int64
}

// NormalizeClassificationName lower-cases and trims a name for comparison
// and storage.
func NormalizeClassificationName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseKeywords splits comma-separated keyword input, trimming and
// lower-casing each entry and dropping empties. A literal "none" (any case)
// yields an empty set.
func ParseKeywords(input string) []string {
	if strings.EqualFold(strings.TrimSpace(input), "none") {
		return nil
	}

	var keywords []string
	for _, part := range strings.Split(input, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			keywords = append(keywords, part)
		}
	}
	return keywords
}
