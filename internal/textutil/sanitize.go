package textutil

import "strings"

// SanitizeFileName makes a string safe to use as a filename. Path separators,
// colons, and asterisks become dashes so the shape of the name survives;
// characters that some filesystems reject outright are dropped. Leading and
// trailing whitespace is trimmed.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*':
			b.WriteByte('-')
		case '?', '"', '<', '>', '|':
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
