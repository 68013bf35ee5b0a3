package textutil

import "strings"

// pathSegmentReplacer strips characters that are unsafe in a single path
// segment on common filesystems.
var pathSegmentReplacer = strings.NewReplacer(
	"/", "",
	"\\", "",
	":", "",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizePathSegment removes / \ : * ? " < > | from name and trims leading
// and trailing whitespace and dots. The result can be empty; use
// SegmentOrFallback when an empty segment must not reach a path.
func SanitizePathSegment(name string) string {
	name = pathSegmentReplacer.Replace(name)
	return strings.TrimFunc(name, func(r rune) bool {
		return r == '.' || isSpace(r)
	})
}

// SegmentOrFallback sanitizes name and, when nothing usable remains, returns
// the sanitized fallback instead.
func SegmentOrFallback(name, fallback string) string {
	if seg := SanitizePathSegment(name); seg != "" {
		return seg
	}
	return SanitizePathSegment(fallback)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', 0x85, 0xA0:
		return true
	}
	return r > 0xFF && strings.TrimSpace(string(r)) == ""
}
