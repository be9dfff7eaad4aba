package transcripts

import (
	"fmt"
	"strings"

	"github.com/tubedesk/tubedesk/internal/remote"
	"github.com/tubedesk/tubedesk/internal/srt"
)

// FormatOffset renders an offset in seconds as M:SS for timeline text.
func FormatOffset(seconds float64) string {
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// TimelineText renders a transcript as "M:SS - text" lines, one per
// segment.
func TimelineText(resp remote.TranscriptResponse) (string, error) {
	if !resp.Success || len(resp.Transcript) == 0 {
		return "", fmt.Errorf("no transcript available for %s", resp.VideoID)
	}
	lines := make([]string, 0, len(resp.Transcript))
	for _, segment := range resp.Transcript {
		lines = append(lines, fmt.Sprintf("%s - %s", FormatOffset(segment.OffsetSeconds), srt.DecodeEntities(segment.Text)))
	}
	return strings.Join(lines, "\n"), nil
}

// PlainText renders a transcript as one space-joined paragraph.
func PlainText(resp remote.TranscriptResponse) (string, error) {
	if !resp.Success || len(resp.Transcript) == 0 {
		return "", fmt.Errorf("no transcript available for %s", resp.VideoID)
	}
	parts := make([]string, 0, len(resp.Transcript))
	for _, segment := range resp.Transcript {
		parts = append(parts, srt.DecodeEntities(segment.Text))
	}
	return strings.Join(parts, " "), nil
}

// Language returns the transcript language, falling back to detection
// over the segment texts when the backend omitted it.
func Language(resp remote.TranscriptResponse) string {
	if resp.TranscriptLanguage != "" {
		return resp.TranscriptLanguage
	}
	return srt.DetectLanguage(resp.Transcript).String()
}
