package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tubedesk/tubedesk/internal/export"
	"github.com/tubedesk/tubedesk/internal/srt"
	"github.com/tubedesk/tubedesk/internal/timeline"
)

// ExportTranscriptSRT writes one fetched transcript as an SRT file
// named by its position in the library, matching the numbering used by
// the zip export. It returns the saved filename.
func (s *Service) ExportTranscriptSRT(videoID string) (string, error) {
	responses := s.library.List()
	for i, resp := range responses {
		if resp.VideoID != videoID {
			continue
		}
		if !resp.Success || len(resp.Transcript) == 0 {
			return "", fmt.Errorf("no transcript available for %s", videoID)
		}
		name := export.NumberedName(i+1, "srt")
		cues := srt.FromSegments(resp.Transcript)
		if err := srt.WriteFile(filepath.Join(s.downloadDir, name), cues); err != nil {
			return "", err
		}
		return name, nil
	}
	return "", ErrNotFound
}

// ExportAllSRTZip writes every successful transcript into one zip,
// entries numbered by library position. It returns the zip filename and
// the number of entries.
func (s *Service) ExportAllSRTZip() (string, int, error) {
	responses := s.library.List()
	if len(responses) == 0 {
		return "", 0, ErrNoTranscripts
	}
	return export.WriteSRTZip(s.downloadDir, responses)
}

// ExportTranscriptsTxt writes transcripts as numbered text blocks.
// pageIndex < 0 exports the whole library; otherwise one zero-based
// page of pageSize entries. It returns the filename and block count.
func (s *Service) ExportTranscriptsTxt(pageIndex, pageSize int) (string, int, error) {
	var (
		responses = s.library.List()
		filename  string
	)
	if pageIndex < 0 {
		filename = fmt.Sprintf("youtube-transcripts-all-%d.txt", export.Timestamp())
	} else {
		responses = s.library.Page(pageIndex, pageSize)
		filename = fmt.Sprintf("youtube-transcripts-page-%d-%d.txt", pageIndex+1, export.Timestamp())
	}
	if len(responses) == 0 {
		return "", 0, ErrNoTranscripts
	}

	count, err := export.WriteTranscriptsTxt(s.downloadDir, filename, responses)
	if err != nil {
		return "", 0, err
	}
	return filename, count, nil
}

// ExportTimelineSRT converts pasted "M:SS - text" lines into an SRT
// file. Lines that do not match the timeline shape are skipped; if none
// match, the export is rejected.
func (s *Service) ExportTimelineSRT(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyInput
	}
	entries := timeline.Parse(raw)
	if len(entries) == 0 {
		return "", ErrNoTimelineEntries
	}
	return export.WriteTimelineSRT(s.downloadDir, srt.FromTimeline(entries))
}

// ExportChannelXLSX writes the most recent channel listing as a
// spreadsheet. It returns the filename and the number of rows.
func (s *Service) ExportChannelXLSX() (string, int, error) {
	s.mu.Lock()
	videos := s.lastChannel
	s.mu.Unlock()

	if len(videos) == 0 {
		return "", 0, ErrNoChannelListing
	}
	name, err := export.WriteChannelXLSX(s.downloadDir, videos)
	if err != nil {
		return "", 0, err
	}
	return name, len(videos), nil
}

// DownloadImage saves a thumbnail or other image from the backend into
// the download directory and returns the saved filename.
func (s *Service) DownloadImage(ctx context.Context, imageURL string) (string, error) {
	if strings.TrimSpace(imageURL) == "" {
		return "", ErrEmptyInput
	}
	blob, err := s.client.DownloadImage(ctx, strings.TrimSpace(imageURL))
	if err != nil {
		return "", err
	}

	name := blob.Filename
	if name == "" {
		name = fmt.Sprintf("image-%d.jpg", export.Timestamp())
	}
	return export.SaveBlob(s.downloadDir, name, blob.Data)
}
