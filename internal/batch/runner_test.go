package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PartialFailureKeepsGoing(t *testing.T) {
	b, err := New(KindAudio, []string{"url-1", "url-2", "url-3"}, NoProgress{})
	require.NoError(t, err)

	exec := func(_ context.Context, key string) (*Result, error) {
		if key == "url-2" {
			return nil, errors.New("extraction failed")
		}
		return &Result{Data: []byte("payload"), Title: "title " + key}, nil
	}

	var saved []string
	sink := func(index int, _ string, _ *Result) (string, error) {
		name := fmt.Sprintf("%d.mp3", index)
		saved = append(saved, name)
		return name, nil
	}

	summary := b.Run(context.Background(), exec, sink)
	assert.Equal(t, Summary{SuccessCount: 2, Total: 3}, summary)

	items := b.Snapshot().Items
	require.Len(t, items, 3)

	assert.Equal(t, StatusSuccess, items[0].Status)
	assert.Equal(t, 100, items[0].Progress)
	assert.Equal(t, "1.mp3", items[0].Artifact)

	assert.Equal(t, StatusFailed, items[1].Status)
	assert.Equal(t, 0, items[1].Progress)
	assert.NotEmpty(t, items[1].Error)

	assert.Equal(t, StatusSuccess, items[2].Status)
	assert.Equal(t, "3.mp3", items[2].Artifact)

	// Numbered filenames keep the original batch positions.
	assert.Equal(t, []string{"1.mp3", "3.mp3"}, saved)
}

func TestRun_SinkFailureDoesNotChangeStatus(t *testing.T) {
	b, err := New(KindAudio, []string{"url-1"}, NoProgress{})
	require.NoError(t, err)

	exec := func(context.Context, string) (*Result, error) {
		return &Result{Data: []byte("payload")}, nil
	}
	sink := func(int, string, *Result) (string, error) {
		return "", errors.New("disk full")
	}

	summary := b.Run(context.Background(), exec, sink)
	assert.Equal(t, Summary{SuccessCount: 1, Total: 1}, summary)

	item, ok := b.Item("url-1")
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, item.Status)
	assert.Equal(t, 100, item.Progress)
}

func TestRun_EmptyErrorFallsBackToUnknown(t *testing.T) {
	b, err := New(KindAudio, []string{"url-1"}, NoProgress{})
	require.NoError(t, err)

	summary := b.Run(context.Background(), func(context.Context, string) (*Result, error) {
		return nil, errors.New("")
	}, nil)
	assert.Equal(t, 0, summary.SuccessCount)

	item, _ := b.Item("url-1")
	assert.Equal(t, "Unknown error", item.Error)
}

func TestRun_SimulatedProgressCapsBelowHundred(t *testing.T) {
	b, err := New(KindAudio, []string{"url-1"}, NewTickerProgress(5*time.Millisecond))
	require.NoError(t, err)

	var observed int
	exec := func(context.Context, string) (*Result, error) {
		require.Eventually(t, func() bool {
			item, ok := b.Item("url-1")
			if ok && item.Progress > observed {
				observed = item.Progress
			}
			return observed == 90
		}, time.Second, 2*time.Millisecond, "progress should climb to the 90 ceiling")

		// Give the ticker room to prove it never passes the ceiling.
		time.Sleep(30 * time.Millisecond)
		item, _ := b.Item("url-1")
		assert.Equal(t, 90, item.Progress)
		return &Result{}, nil
	}

	b.Run(context.Background(), exec, nil)

	item, _ := b.Item("url-1")
	assert.Equal(t, 100, item.Progress)
	assert.Equal(t, StatusSuccess, item.Status)
}

func TestRun_DeletedItemIsSkipped(t *testing.T) {
	b, err := New(KindAudio, []string{"url-1", "url-2"}, NoProgress{})
	require.NoError(t, err)

	require.True(t, b.DeleteItem("url-1"))

	var executed []string
	summary := b.Run(context.Background(), func(_ context.Context, key string) (*Result, error) {
		executed = append(executed, key)
		return &Result{}, nil
	}, nil)

	assert.Equal(t, []string{"url-2"}, executed)
	assert.Equal(t, Summary{SuccessCount: 1, Total: 2}, summary)
}

func TestRun_ResultForKeyDeletedMidFlightIsDiscarded(t *testing.T) {
	b, err := New(KindAudio, []string{"url-1"}, NoProgress{})
	require.NoError(t, err)

	exec := func(context.Context, string) (*Result, error) {
		// The operator deletes the item while its call is in flight.
		require.True(t, b.DeleteItem("url-1"))
		return &Result{Title: "late"}, nil
	}

	summary := b.Run(context.Background(), exec, nil)
	assert.Equal(t, 0, summary.SuccessCount)

	_, ok := b.Item("url-1")
	assert.False(t, ok)
	assert.Empty(t, b.Snapshot().Items)
}

func TestNew_RejectsEmptyBatch(t *testing.T) {
	_, err := New(KindAudio, nil, NoProgress{})
	require.Error(t, err)
}

func TestNew_DuplicateKeysCollapse(t *testing.T) {
	b, err := New(KindAudio, []string{"url-1", "url-1", "url-2"}, NoProgress{})
	require.NoError(t, err)
	assert.Len(t, b.Snapshot().Items, 2)
}

func TestRun_SecondRunIsNoOp(t *testing.T) {
	b, err := New(KindAudio, []string{"url-1"}, NoProgress{})
	require.NoError(t, err)

	var calls int
	exec := func(context.Context, string) (*Result, error) {
		calls++
		return &Result{}, nil
	}

	first := b.Run(context.Background(), exec, nil)
	second := b.Run(context.Background(), exec, nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, b.Done())
}
