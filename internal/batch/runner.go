// Package batch implements the sequential per-item job runner: every
// item moves pending → loading → success|failed while a progress
// strategy animates the loading phase. Items are processed one at a
// time on purpose: each success triggers an artifact write, and those
// side effects must not race.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tubedesk/tubedesk/pkg/log"
)

const (
	// progressStep and progressCeiling shape the simulated progress:
	// +10 per tick, capped at 90. Only a confirmed success reaches 100.
	progressStep    = 10
	progressCeiling = 90
)

// Executor performs the remote operation for one item key.
type Executor func(ctx context.Context, key string) (*Result, error)

// Sink persists a successful item's artifact. index is the item's
// 1-based position in the batch, used for deterministic numbered
// filenames when the result carries none. It returns the name the
// artifact was saved under.
type Sink func(index int, key string, res *Result) (string, error)

// Batch is one submitted set of keys with independent per-item
// outcomes.
type Batch struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time

	tracker  *Tracker
	progress Progresser

	mu      sync.RWMutex
	running bool
	done    bool
	summary Summary
}

// Snapshot is the serializable view of a batch.
type Snapshot struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Running   bool      `json:"running"`
	Done      bool      `json:"done"`
	Summary   Summary   `json:"summary"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a batch with every key initialized to pending.
func New(kind Kind, keys []string, progress Progresser) (*Batch, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("batch requires at least one item")
	}
	if progress == nil {
		progress = NoProgress{}
	}
	return &Batch{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now(),
		tracker:   NewTracker(keys),
		progress:  progress,
	}, nil
}

// Run processes the batch strictly sequentially: each item transitions
// to loading, the progress strategy animates it, exec is invoked, and
// the outcome is recorded. A failed item never aborts the batch. Run
// returns the success/total summary after the last item resolves.
func (b *Batch) Run(ctx context.Context, exec Executor, sink Sink) Summary {
	b.mu.Lock()
	if b.running || b.done {
		summary := b.summary
		b.mu.Unlock()
		return summary
	}
	b.running = true
	b.mu.Unlock()

	keys := b.tracker.Keys()
	successCount := 0

	for i, key := range keys {
		index := i + 1

		moved := b.tracker.Update(key, func(item *Item) {
			item.Status = StatusLoading
			item.Progress = 0
		})
		if !moved {
			// Deleted before its turn came up.
			continue
		}

		stop := b.progress.Start(func() {
			b.tracker.Advance(key, progressStep, progressCeiling)
		})

		res, err := exec(ctx, key)
		stop()

		if err != nil {
			b.tracker.Update(key, func(item *Item) {
				item.Status = StatusFailed
				item.Progress = 0
				item.Error = errorMessage(err)
			})
			log.Error("Batch %s item %q failed: %v", b.ID, key, err)
			continue
		}

		saved := ""
		if sink != nil {
			saved, err = sink(index, key, res)
			if err != nil {
				// The remote fetch succeeded; a local download failure
				// is logged but does not change the item's status.
				log.Error("Batch %s item %q artifact write failed: %v", b.ID, key, err)
			}
		}

		recorded := b.tracker.Update(key, func(item *Item) {
			item.Status = StatusSuccess
			item.Progress = 100
			item.Title = res.Title
			item.Artifact = saved
			item.Error = ""
		})
		if recorded {
			successCount++
		}
	}

	summary := Summary{SuccessCount: successCount, Total: len(keys)}

	b.mu.Lock()
	b.running = false
	b.done = true
	b.summary = summary
	b.mu.Unlock()

	log.Info("Batch %s completed: %d/%d", b.ID, summary.SuccessCount, summary.Total)
	return summary
}

// Snapshot returns the current serializable state.
func (b *Batch) Snapshot() Snapshot {
	b.mu.RLock()
	running, done, summary := b.running, b.done, b.summary
	b.mu.RUnlock()

	return Snapshot{
		ID:        b.ID,
		Kind:      b.Kind,
		Running:   running,
		Done:      done,
		Summary:   summary,
		Items:     b.tracker.Snapshot(),
		CreatedAt: b.CreatedAt,
	}
}

// DeleteItem removes one key. An in-flight remote call for that key is
// not aborted; its late result simply has nowhere to land.
func (b *Batch) DeleteItem(key string) bool {
	return b.tracker.Delete(key)
}

// Item returns a copy of one tracked item.
func (b *Batch) Item(key string) (Item, bool) {
	return b.tracker.Get(key)
}

// Done reports whether the batch has finished running.
func (b *Batch) Done() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.done
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown error"
	}
	return err.Error()
}
