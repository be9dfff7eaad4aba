// Package service orchestrates the tool's operations on top of the
// remote backend client: URL normalization, transcript fetching and
// rendering, extraction batches, channel enumeration and exports.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tubedesk/tubedesk/internal/batch"
	"github.com/tubedesk/tubedesk/internal/clipboard"
	"github.com/tubedesk/tubedesk/internal/config"
	"github.com/tubedesk/tubedesk/internal/remote"
	"github.com/tubedesk/tubedesk/internal/textutil"
	"github.com/tubedesk/tubedesk/internal/transcripts"
	"github.com/tubedesk/tubedesk/pkg/log"
)

// Archiver persists finished batches. *persistence.SQLiteStore satisfies
// it; tests use lighter fakes.
type Archiver interface {
	ArchiveBatch(ctx context.Context, snap batch.Snapshot, finishedAt time.Time) error
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	client   *remote.Client
	registry *batch.Registry
	library  *transcripts.Collection
	archive  Archiver

	downloadDir  string
	videoQuality string
	progressTick time.Duration
	retainAge    time.Duration

	copyText    func(string) error
	newProgress func() batch.Progresser

	mu          sync.Mutex
	lastChannel []remote.ChannelVideo
}

// Option customizes a Service, mostly for tests.
type Option func(*Service)

// WithCopyFunc replaces the system clipboard writer.
func WithCopyFunc(fn func(string) error) Option {
	return func(s *Service) { s.copyText = fn }
}

// WithProgresser replaces the simulated progress strategy used for new
// batches.
func WithProgresser(fn func() batch.Progresser) Option {
	return func(s *Service) { s.newProgress = fn }
}

// New wires a Service from configuration. archive may be nil, in which
// case finished batches are not persisted.
func New(cfg *config.Config, client *remote.Client, archive Archiver, opts ...Option) *Service {
	s := &Service{
		client:       client,
		registry:     batch.NewRegistry(),
		library:      transcripts.NewCollection(),
		archive:      archive,
		downloadDir:  cfg.Storage.DownloadDir,
		videoQuality: cfg.Backend.VideoQuality,
		progressTick: time.Duration(cfg.Batch.ProgressTickMS) * time.Millisecond,
		retainAge:    time.Duration(cfg.Storage.RetainDays) * 24 * time.Hour,
		copyText:     clipboard.WriteAll,
	}
	s.newProgress = func() batch.Progresser {
		return batch.NewTickerProgress(s.tick())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplySettings takes over the runtime-tunable values for operations
// started from now on. The backend URL and prune schedule need a
// restart to change.
func (s *Service) ApplySettings(next config.RuntimeSettings) error {
	s.mu.Lock()
	s.videoQuality = next.VideoQuality
	s.progressTick = time.Duration(next.ProgressTickMS) * time.Millisecond
	s.mu.Unlock()
	return nil
}

func (s *Service) quality() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoQuality
}

func (s *Service) tick() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressTick
}

// FormatResult is the outcome of URL normalization.
type FormatResult struct {
	Tokens    []string `json:"tokens"`
	Formatted string   `json:"formatted"`
}

// FormatURLs splits free-form input on whitespace and commas and joins
// the tokens back with ", ". The result is the canonical form every
// fetch and batch operation expects.
func (s *Service) FormatURLs(raw string) (FormatResult, error) {
	if strings.TrimSpace(raw) == "" {
		return FormatResult{}, ErrEmptyInput
	}
	tokens := textutil.Tokenize(raw)
	return FormatResult{
		Tokens:    tokens,
		Formatted: textutil.Join(tokens),
	}, nil
}

// formattedTokens validates that input is non-empty and already in
// canonical form, then returns its tokens.
func (s *Service) formattedTokens(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}
	tokens := textutil.Tokenize(raw)
	if textutil.Join(tokens) != strings.TrimSpace(raw) {
		return nil, ErrNotFormatted
	}
	return tokens, nil
}

// FetchTranscripts resolves video IDs from formatted input and fetches
// their transcripts sequentially. Every response, failed ones included,
// is merged into the library keyed by video ID.
func (s *Service) FetchTranscripts(ctx context.Context, formatted string) ([]remote.TranscriptResponse, error) {
	tokens, err := s.formattedTokens(formatted)
	if err != nil {
		return nil, err
	}
	ids := textutil.ExtractVideoIDs(tokens)
	if len(ids) == 0 {
		return nil, ErrNoVideoIDs
	}

	responses, err := s.client.Transcripts(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.library.Upsert(responses...)
	return responses, nil
}

// FetchTranscript fetches a single video's transcript and merges it
// into the library.
func (s *Service) FetchTranscript(ctx context.Context, token string) (*remote.TranscriptResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrEmptyInput
	}
	id, ok := textutil.ExtractVideoID(strings.TrimSpace(token))
	if !ok {
		return nil, ErrNoVideoIDs
	}

	resp, err := s.client.Transcript(ctx, id)
	if err != nil {
		return nil, err
	}
	s.library.Upsert(*resp)
	return resp, nil
}

// Transcripts returns all fetched transcripts in fetch order.
func (s *Service) Transcripts() []remote.TranscriptResponse {
	return s.library.List()
}

// TranscriptPage returns one zero-based page of transcripts.
func (s *Service) TranscriptPage(pageIndex, pageSize int) []remote.TranscriptResponse {
	return s.library.Page(pageIndex, pageSize)
}

// Transcript returns one transcript by video ID.
func (s *Service) Transcript(videoID string) (remote.TranscriptResponse, error) {
	resp, ok := s.library.Get(videoID)
	if !ok {
		return remote.TranscriptResponse{}, ErrNotFound
	}
	return resp, nil
}

// DeleteTranscript removes one transcript from the library.
func (s *Service) DeleteTranscript(videoID string) error {
	if !s.library.Delete(videoID) {
		return ErrNotFound
	}
	return nil
}

// TranscriptTimeline renders one transcript as "M:SS - text" lines.
func (s *Service) TranscriptTimeline(videoID string) (string, error) {
	resp, ok := s.library.Get(videoID)
	if !ok {
		return "", ErrNotFound
	}
	return transcripts.TimelineText(resp)
}

// TranscriptPlain renders one transcript as a single paragraph.
func (s *Service) TranscriptPlain(videoID string) (string, error) {
	resp, ok := s.library.Get(videoID)
	if !ok {
		return "", ErrNotFound
	}
	return transcripts.PlainText(resp)
}

// Copy puts text on the system clipboard.
func (s *Service) Copy(text string) error {
	return s.copyText(text)
}

// ChannelVideos enumerates a channel's videos oldest first. The listing
// is cached for a later spreadsheet export.
func (s *Service) ChannelVideos(ctx context.Context, channelURL string) ([]remote.ChannelVideo, error) {
	if strings.TrimSpace(channelURL) == "" {
		return nil, ErrEmptyInput
	}
	videos, err := s.client.ChannelVideos(ctx, strings.TrimSpace(channelURL))
	if err != nil {
		return nil, err
	}

	// The backend returns newest first; the listing reads oldest first.
	reversed := make([]remote.ChannelVideo, len(videos))
	for i, v := range videos {
		reversed[len(videos)-1-i] = v
	}

	s.mu.Lock()
	s.lastChannel = reversed
	s.mu.Unlock()
	return reversed, nil
}

// Schedule registers the periodic archive prune on c using expr.
func (s *Service) Schedule(c *cron.Cron, expr string) error {
	_, err := c.AddFunc(expr, func() {
		if err := s.PruneArchive(context.Background()); err != nil {
			log.Warn("Archive prune failed: %v", err)
		}
	})
	return err
}

// PruneArchive removes archived batches older than the retention age.
func (s *Service) PruneArchive(ctx context.Context) error {
	if s.archive == nil {
		return nil
	}
	removed, err := s.archive.PruneBefore(ctx, time.Now().Add(-s.retainAge))
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Info("Pruned %d archived batches", removed)
	}
	return nil
}
