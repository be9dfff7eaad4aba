package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Transcript fetches the transcript of a single video.
func (c *Client) Transcript(ctx context.Context, videoID string) (*TranscriptResponse, error) {
	var out TranscriptResponse
	err := c.postJSON(ctx, "/youtube/transcript", map[string]string{"videoId": videoID}, &out)
	if err != nil {
		return nil, fmt.Errorf("transcript request failed: %w", err)
	}
	return &out, nil
}

// Transcripts fetches transcripts for a batch of video IDs in one call.
func (c *Client) Transcripts(ctx context.Context, videoIDs []string) ([]TranscriptResponse, error) {
	var out []TranscriptResponse
	err := c.postJSON(ctx, "/youtube/transcripts", map[string][]string{"videoIds": videoIDs}, &out)
	if err != nil {
		return nil, fmt.Errorf("transcripts request failed: %w", err)
	}
	return out, nil
}

// ChannelVideos lists every video of a channel.
func (c *Client) ChannelVideos(ctx context.Context, channelURL string) ([]ChannelVideo, error) {
	var out []ChannelVideo
	err := c.postJSON(ctx, "/youtube/urls", map[string]string{"url": channelURL}, &out)
	if err != nil {
		return nil, fmt.Errorf("channel videos request failed: %w", err)
	}
	return out, nil
}

// Audio extracts the audio track of a video as a binary blob.
func (c *Client) Audio(ctx context.Context, videoURL string) (*Blob, error) {
	blob, err := c.postBlob(ctx, "/youtube/audio", map[string]string{"url": videoURL})
	if err != nil {
		return nil, fmt.Errorf("audio request failed: %w", err)
	}
	return blob, nil
}

// Video extracts a video download at the requested quality.
func (c *Client) Video(ctx context.Context, videoURL, quality string) (*Blob, error) {
	blob, err := c.postBlob(ctx, "/youtube/video", map[string]string{
		"url":     videoURL,
		"quality": quality,
	})
	if err != nil {
		return nil, fmt.Errorf("video request failed: %w", err)
	}
	return blob, nil
}

// DownloadImage proxies an image download through the backend.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) (*Blob, error) {
	blob, err := c.postBlob(ctx, "/youtube/download-image", map[string]string{"imageUrl": imageURL})
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	return blob, nil
}

// AudioToSRT uploads an audio file and returns the transcribed SRT
// text.
func (c *Client) AudioToSRT(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload: %w", err)
	}
	body := buf.Bytes()
	contentType := writer.FormDataContentType()

	resp, err := c.do(ctx, func(string) (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.baseURL+"/youtube/srt", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("srt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read srt body: %w", err)
	}
	return string(data), nil
}
