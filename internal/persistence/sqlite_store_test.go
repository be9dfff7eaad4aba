package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubedesk/tubedesk/internal/batch"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSnapshot(id string, created time.Time) batch.Snapshot {
	return batch.Snapshot{
		ID:        id,
		Kind:      batch.KindAudio,
		Done:      true,
		Summary:   batch.Summary{SuccessCount: 1, Total: 2},
		CreatedAt: created,
		Items: []batch.Item{
			{Key: "https://www.youtube.com/watch?v=aaaaaaaaaaa", Status: batch.StatusSuccess, Artifact: "1.mp3", Progress: 100, UpdatedAt: created},
			{Key: "https://www.youtube.com/watch?v=bbbbbbbbbbb", Status: batch.StatusFailed, Error: "boom", UpdatedAt: created},
		},
	}
}

func TestArchiveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.ArchiveBatch(ctx, sampleSnapshot("b1", created), created.Add(time.Minute)))

	got, err := store.GetArchived(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, batch.KindAudio, got.Kind)
	assert.Equal(t, 1, got.SuccessCount)
	assert.Equal(t, 2, got.Total)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "1.mp3", got.Items[0].Artifact)
	assert.Equal(t, batch.StatusFailed, got.Items[1].Status)
	assert.Equal(t, "boom", got.Items[1].Error)
}

func TestGetArchivedMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetArchived(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestArchiveTwiceOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	snap := sampleSnapshot("b1", created)
	require.NoError(t, store.ArchiveBatch(ctx, snap, created.Add(time.Minute)))

	snap.Summary.SuccessCount = 2
	snap.Items[1].Status = batch.StatusSuccess
	snap.Items[1].Error = ""
	require.NoError(t, store.ArchiveBatch(ctx, snap, created.Add(2*time.Minute)))

	got, err := store.GetArchived(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.SuccessCount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, batch.StatusSuccess, got.Items[1].Status)
}

func TestListArchivedNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.ArchiveBatch(ctx, sampleSnapshot("old", base), base))
	require.NoError(t, store.ArchiveBatch(ctx, sampleSnapshot("new", base), base.Add(time.Hour)))

	list, err := store.ListArchived(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
	assert.Empty(t, list[0].Items)

	limited, err := store.ListArchived(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)
}

func TestPruneBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.ArchiveBatch(ctx, sampleSnapshot("stale", base), base))
	require.NoError(t, store.ArchiveBatch(ctx, sampleSnapshot("fresh", base), base.Add(48*time.Hour)))

	removed, err := store.PruneBefore(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	gone, err := store.GetArchived(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := store.GetArchived(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Len(t, kept.Items, 2)
}
