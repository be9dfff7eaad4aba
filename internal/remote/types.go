package remote

import "github.com/tubedesk/tubedesk/internal/srt"

// Thumbnail is one thumbnail variant in video metadata.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Metadata describes the video a transcript belongs to.
type Metadata struct {
	VideoID         string      `json:"videoId"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Author          string      `json:"author"`
	ChannelID       string      `json:"channelId"`
	Thumbnails      []Thumbnail `json:"thumbnails"`
	DurationSeconds float64     `json:"durationSeconds"`
	ViewCount       int64       `json:"viewCount"`
	LikeCount       int64       `json:"likeCount"`
	IsLive          bool        `json:"isLive"`
	Category        string      `json:"category"`
}

// TranscriptResponse is the backend's per-video transcript payload.
type TranscriptResponse struct {
	Success            bool          `json:"success"`
	VideoID            string        `json:"videoId"`
	Transcript         []srt.Segment `json:"transcript"`
	TranscriptLanguage string        `json:"transcriptLanguage"`
	Metadata           Metadata      `json:"metadata"`
	Error              string        `json:"error,omitempty"`
}

// ChannelVideo is one row of a channel's video listing.
type ChannelVideo struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	ViewCount int64  `json:"view_count"`
}

// Blob is a binary download plus the filename the backend suggested via
// Content-Disposition, empty when none was sent.
type Blob struct {
	Filename string
	Data     []byte
}
