// Package timeline parses operator-pasted timeline text of the form
// "0:00 - Some words" into timed entries ready for SRT serialization.
package timeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Entry is one parsed timeline line: a start offset in seconds and the
// text that follows the timestamp.
type Entry struct {
	StartSeconds float64
	Text         string
}

var linePattern = regexp.MustCompile(`^(\d+:\d+(?:\.\d+)?(?::\d+(?:\.\d+)?)?)\s*[-\s]\s*(.+)$`)

// Parse scans raw text line by line and extracts entries whose line
// starts with an M:SS or H:MM:SS timestamp followed by "-" or
// whitespace and free text. Lines without that prefix are dropped
// silently, and the output keeps input order even when timestamps are
// out of sequence.
func Parse(raw string) []Entry {
	entries := make([]Entry, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		match := linePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		seconds, ok := parseClock(match[1])
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			StartSeconds: seconds,
			Text:         strings.TrimSpace(match[2]),
		})
	}
	return entries
}

// parseClock converts a colon-delimited clock token to seconds. Two
// components read as minutes:seconds, three as hours:minutes:seconds;
// the seconds component may carry a fraction.
func parseClock(clock string) (float64, bool) {
	parts := strings.Split(clock, ":")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		values = append(values, v)
	}

	switch len(values) {
	case 2:
		return values[0]*60 + values[1], true
	case 3:
		return values[0]*3600 + values[1]*60 + values[2], true
	default:
		return 0, false
	}
}
