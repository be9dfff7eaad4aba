package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/tubedesk/tubedesk/internal/remote"
)

const videosSheet = "Videos"

// WriteChannelXLSX exports channel videos as a three-column spreadsheet
// (sequence number, URL, view count) named "youtube-videos-<ms>.xlsx"
// and returns the filename.
func WriteChannelXLSX(dir string, videos []remote.ChannelVideo) (string, error) {
	if len(videos) == 0 {
		return "", fmt.Errorf("no videos to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", videosSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	headers := []any{"No.", "URL", "View"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(videosSheet, cell, header); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	for i, video := range videos {
		row := i + 2
		values := []any{i + 1, video.URL, video.ViewCount}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(videosSheet, cell, value); err != nil {
				return "", fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	// Fixed widths: narrow index, wide URL, medium view count.
	if err := f.SetColWidth(videosSheet, "A", "A", 5); err != nil {
		return "", err
	}
	if err := f.SetColWidth(videosSheet, "B", "B", 60); err != nil {
		return "", err
	}
	if err := f.SetColWidth(videosSheet, "C", "C", 15); err != nil {
		return "", err
	}

	name := fmt.Sprintf("youtube-videos-%d.xlsx", Timestamp())
	if err := f.SaveAs(filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("save spreadsheet: %w", err)
	}
	return name, nil
}
