package srt

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Render serializes cues to canonical SRT text: index line, time range
// line, cue text and a blank line per cue.
func Render(cues []Cue) string {
	var b strings.Builder
	for _, cue := range cues {
		fmt.Fprintf(&b, "%d\n", cue.Index)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTime(cue.StartSeconds), FormatTime(cue.EndSeconds))
		fmt.Fprintf(&b, "%s\n\n", cue.Text)
	}
	return b.String()
}

// WriteFile renders cues and writes them to path.
func WriteFile(path string, cues []Cue) error {
	if len(cues) == 0 {
		return fmt.Errorf("no cues to write")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	if _, err := writer.WriteString(Render(cues)); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}
