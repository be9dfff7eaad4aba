package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// maximum filename length after sanitizing
const maxNameLen = 200

var (
	invalidFileRunes = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)
	multiSpace       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns an arbitrary string (usually a video title)
// into a safe filename: forbidden characters become spaces, runs of
// whitespace collapse, trailing dots are dropped and overly long names
// are truncated.
func SanitizeFilename(name string) string {
	if name == "" {
		return "untitled"
	}

	clean := invalidFileRunes.ReplaceAllString(name, " ")
	clean = strings.TrimSpace(clean)
	clean = multiSpace.ReplaceAllString(clean, " ")
	clean = strings.TrimRight(clean, ".")

	if clean == "" {
		return "untitled"
	}
	if len(clean) > maxNameLen {
		clean = clean[:maxNameLen]
	}
	return clean
}

// SRTName swaps the extension of an uploaded audio filename for .srt,
// e.g. "talk.mp3" becomes "talk.srt".
func SRTName(sourceFile string) string {
	base := filepath.Base(sourceFile)
	ext := filepath.Ext(base)
	if ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return SanitizeFilename(base) + ".srt"
}

// Timestamp is the unix-millisecond suffix used to keep export
// filenames unique.
func Timestamp() int64 {
	return time.Now().UnixMilli()
}

// NumberedName builds the deterministic "<index>.<ext>" artifact name
// for URL batches.
func NumberedName(index int, ext string) string {
	return fmt.Sprintf("%d.%s", index, strings.TrimPrefix(ext, "."))
}
