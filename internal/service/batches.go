package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/tubedesk/tubedesk/internal/batch"
	"github.com/tubedesk/tubedesk/internal/export"
	"github.com/tubedesk/tubedesk/pkg/log"
)

// UploadedFile is one audio file submitted for subtitle generation.
type UploadedFile struct {
	Name string
	Data []byte
}

// StartAudioBatch launches sequential audio extraction for every URL in
// the formatted input. It returns immediately; progress is observed via
// the batch registry.
func (s *Service) StartAudioBatch(formatted string) (*batch.Batch, error) {
	urls, err := s.formattedTokens(formatted)
	if err != nil {
		return nil, err
	}

	b, err := batch.New(batch.KindAudio, urls, s.newProgress())
	if err != nil {
		return nil, err
	}
	s.registry.Add(b)

	go s.runBatch(b, func(ctx context.Context, url string) (*batch.Result, error) {
		blob, err := s.client.Audio(ctx, url)
		if err != nil {
			return nil, err
		}
		return &batch.Result{Title: blob.Filename, Data: blob.Data}, nil
	}, "mp3")
	return b, nil
}

// StartVideoBatch launches sequential video extraction at the
// configured quality.
func (s *Service) StartVideoBatch(formatted string) (*batch.Batch, error) {
	urls, err := s.formattedTokens(formatted)
	if err != nil {
		return nil, err
	}

	b, err := batch.New(batch.KindVideo, urls, s.newProgress())
	if err != nil {
		return nil, err
	}
	s.registry.Add(b)

	go s.runBatch(b, func(ctx context.Context, url string) (*batch.Result, error) {
		blob, err := s.client.Video(ctx, url, s.quality())
		if err != nil {
			return nil, err
		}
		return &batch.Result{Title: blob.Filename, Data: blob.Data}, nil
	}, "mp4")
	return b, nil
}

// StartSubtitleBatch launches sequential subtitle generation for
// uploaded audio files. Items are keyed by filename; duplicates
// collapse into one item.
func (s *Service) StartSubtitleBatch(files []UploadedFile) (*batch.Batch, error) {
	if len(files) == 0 {
		return nil, ErrEmptyInput
	}

	byName := make(map[string][]byte, len(files))
	keys := make([]string, 0, len(files))
	for _, f := range files {
		if _, seen := byName[f.Name]; !seen {
			keys = append(keys, f.Name)
		}
		byName[f.Name] = f.Data
	}

	b, err := batch.New(batch.KindSubtitle, keys, s.newProgress())
	if err != nil {
		return nil, err
	}
	s.registry.Add(b)

	go s.runBatch(b, func(ctx context.Context, name string) (*batch.Result, error) {
		text, err := s.client.AudioToSRT(ctx, name, bytes.NewReader(byName[name]))
		if err != nil {
			return nil, err
		}
		return &batch.Result{Filename: export.SRTName(name), Data: []byte(text)}, nil
	}, "srt")
	return b, nil
}

// runBatch drives a batch to completion and archives the outcome.
// Batches outlive the HTTP request that started them, so this runs on
// a background context. URL batches always save under the sequence
// number; only results carrying an explicit filename (the subtitle
// flow's derived name) keep it.
func (s *Service) runBatch(b *batch.Batch, exec batch.Executor, ext string) {
	ctx := context.Background()

	summary := b.Run(ctx, exec, func(index int, key string, res *batch.Result) (string, error) {
		name := res.Filename
		if name == "" {
			name = export.NumberedName(index, ext)
		}
		return export.SaveBlob(s.downloadDir, name, res.Data)
	})

	log.Info("%s batch %s finished: %d/%d successful", b.Kind, b.ID, summary.SuccessCount, summary.Total)

	if s.archive != nil {
		if err := s.archive.ArchiveBatch(ctx, b.Snapshot(), time.Now()); err != nil {
			log.Warn("Failed to archive batch %s: %v", b.ID, err)
		}
	}
}

// Batches returns snapshots of all live batches in creation order.
func (s *Service) Batches() []batch.Snapshot {
	return s.registry.List()
}

// Batch returns one live batch by ID.
func (s *Service) Batch(id string) (*batch.Batch, error) {
	b, ok := s.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	return b, nil
}

// DeleteBatchItem removes one item from a live batch. A removed item's
// in-flight download, if any, is discarded when it resolves.
func (s *Service) DeleteBatchItem(id, key string) error {
	b, err := s.Batch(id)
	if err != nil {
		return err
	}
	if !b.DeleteItem(key) {
		return fmt.Errorf("item %s: %w", key, ErrNotFound)
	}
	return nil
}
