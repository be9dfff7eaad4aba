package srt

import (
	"fmt"
	"math"
)

// FormatTime renders total seconds as zero-padded HH:MM:SS,mmm.
// Sub-millisecond remainders are truncated, not rounded.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	whole := int(seconds)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	milliseconds := int(math.Floor((seconds - math.Trunc(seconds)) * 1000))

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, milliseconds)
}
