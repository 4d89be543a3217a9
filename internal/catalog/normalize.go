package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// NormalizeVibe maps free-form client input onto a canonical vibe name, so
// "corporate" and "CREATIVE" resolve to their catalog keys. Returns false for
// anything outside the catalog.
func NormalizeVibe(input string) (string, bool) {
	candidate := titleCaser.String(strings.ToLower(strings.TrimSpace(input)))
	if _, ok := vibes[candidate]; ok {
		return candidate, true
	}
	return "", false
}
