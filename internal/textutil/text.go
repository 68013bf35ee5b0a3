package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ContainsAnyFold reports whether s contains any of the keywords using Unicode
// case folding.
func ContainsAnyFold(s string, keywords ...string) bool {
	// Casers carry state, so each call builds its own.
	folder := cases.Fold()
	folded := folder.String(s)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(folded, folder.String(keyword)) {
			return true
		}
	}
	return false
}

// Humanize turns a snake_case tag such as "calendar_event" into "Calendar Event".
func Humanize(tag string) string {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", " "))
	if tag == "" {
		return ""
	}
	return cases.Title(language.English).String(tag)
}

// Truncate shortens s to at most maxRunes runes, ending with "..." when cut.
func Truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
