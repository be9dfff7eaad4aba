// Package export writes the artifacts the operator downloads: SRT
// files, zip bundles of numbered SRTs, xlsx channel listings, plain
// text transcript dumps and raw media blobs.
package export

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tubedesk/tubedesk/internal/remote"
	"github.com/tubedesk/tubedesk/internal/srt"
)

// SaveBlob writes binary data under dir with a sanitized filename and
// returns the name used.
func SaveBlob(dir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	name := SanitizeFilename(filename)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// WriteTimelineSRT renders cues into a "subtitle-<ms>.srt" file under
// dir and returns the filename.
func WriteTimelineSRT(dir string, cues []srt.Cue) (string, error) {
	if len(cues) == 0 {
		return "", fmt.Errorf("no cues to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	name := fmt.Sprintf("subtitle-%d.srt", Timestamp())
	if err := srt.WriteFile(filepath.Join(dir, name), cues); err != nil {
		return "", err
	}
	return name, nil
}

// WriteSRTZip bundles one numbered SRT per successful transcript into
// "subtitles-<ms>.zip". Numbering follows the position in responses, so
// failed entries leave gaps. Returns the filename and how many SRTs
// went in.
func WriteSRTZip(dir string, responses []remote.TranscriptResponse) (string, int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create download directory: %w", err)
	}

	name := fmt.Sprintf("subtitles-%d.zip", Timestamp())
	file, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", 0, fmt.Errorf("create zip: %w", err)
	}
	defer file.Close()

	archive := zip.NewWriter(file)
	count := 0
	for i, resp := range responses {
		if !resp.Success || len(resp.Transcript) == 0 {
			continue
		}
		entry, err := archive.Create(fmt.Sprintf("%d.srt", i+1))
		if err != nil {
			return "", 0, fmt.Errorf("add zip entry: %w", err)
		}
		if _, err := entry.Write([]byte(srt.Render(srt.FromSegments(resp.Transcript)))); err != nil {
			return "", 0, fmt.Errorf("write zip entry: %w", err)
		}
		count++
	}
	if err := archive.Close(); err != nil {
		return "", 0, fmt.Errorf("finish zip: %w", err)
	}
	if count == 0 {
		_ = os.Remove(filepath.Join(dir, name))
		return "", 0, fmt.Errorf("no transcripts available to export")
	}
	return name, count, nil
}

// WriteTranscriptsTxt writes successful transcripts as numbered text
// blocks (index, watch URL, title, space-joined text) into filename
// under dir.
func WriteTranscriptsTxt(dir, filename string, responses []remote.TranscriptResponse) (int, error) {
	blocks := make([]string, 0, len(responses))
	num := 0
	for _, resp := range responses {
		if !resp.Success || len(resp.Transcript) == 0 {
			continue
		}
		num++

		parts := make([]string, 0, len(resp.Transcript))
		for _, segment := range resp.Transcript {
			parts = append(parts, srt.DecodeEntities(segment.Text))
		}

		blocks = append(blocks, fmt.Sprintf("%d.\nhttps://www.youtube.com/watch?v=%s\n\n%s\n\n%s\n\n\n\n",
			num, resp.VideoID, resp.Metadata.Title, strings.Join(parts, " ")))
	}
	if len(blocks) == 0 {
		return 0, fmt.Errorf("no successful transcripts to export")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create download directory: %w", err)
	}
	content := strings.Join(blocks, "\n")
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", filename, err)
	}
	return num, nil
}
