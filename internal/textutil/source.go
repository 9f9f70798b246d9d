package textutil

import (
	"path/filepath"
	"regexp"
	"strings"
)

// sourceMarkerPattern matches the trailing "_source_<Name>" marker in a file
// stem. The marker must not be empty.
var sourceMarkerPattern = regexp.MustCompile(`_source_(.+)$`)

// SourceAttribution extracts the source attribution embedded in a video file
// name, such as "dance_clip_source_Weibo.mp4" yielding "Weibo". Underscores
// inside the marker become spaces. Returns false when the name carries no
// marker.
func SourceAttribution(path string) (string, bool) {
	stem := fileStem(path)
	match := sourceMarkerPattern.FindStringSubmatch(stem)
	if match == nil {
		return "", false
	}
	attribution := strings.TrimSpace(strings.ReplaceAll(match[1], "_", " "))
	if attribution == "" {
		return "", false
	}
	return attribution, true
}

// DisplayTitle derives a human-readable title from a video file name: the
// extension and any source marker are removed and underscores become spaces.
// Returns "Untitled" when nothing usable remains.
func DisplayTitle(path string) string {
	stem := sourceMarkerPattern.ReplaceAllString(fileStem(path), "")
	title := strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
	if title == "" {
		return "Untitled"
	}
	return title
}

func fileStem(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
