package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubedesk/tubedesk/internal/auth"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.Session, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session := auth.NewSession("stale-token", "refresh-token")
	client, err := NewClient(Config{BaseURL: server.URL}, session)
	require.NoError(t, err)
	return client, session, server
}

func TestClient_Transcripts(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/youtube/transcripts", r.URL.Path)
		require.Equal(t, "Bearer stale-token", r.Header.Get("Authorization"))

		var req map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"abcdefghijk"}, req["videoIds"])

		_ = json.NewEncoder(w).Encode([]TranscriptResponse{
			{Success: true, VideoID: "abcdefghijk", TranscriptLanguage: "en"},
		})
	}))

	got, err := client.Transcripts(context.Background(), []string{"abcdefghijk"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Success)
	assert.Equal(t, "abcdefghijk", got[0].VideoID)
}

func TestClient_RefreshesOnceAndRetries(t *testing.T) {
	var refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "refresh-token", req["refreshToken"])
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "fresh-token",
			"refreshToken": "fresh-refresh",
		})
	})
	mux.HandleFunc("/youtube/transcript", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(TranscriptResponse{Success: true, VideoID: "abcdefghijk"})
	})

	client, session, _ := newTestClient(t, mux)

	got, err := client.Transcript(context.Background(), "abcdefghijk")
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, "fresh-token", session.AccessToken())
	assert.Equal(t, "fresh-refresh", session.RefreshToken())
}

func TestClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	const workers = 4

	var refreshCalls atomic.Int32
	var arrived atomic.Int32
	gate := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		// Keep the refresh in flight long enough for every 401'd
		// caller to queue behind it.
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "fresh-token",
			"refreshToken": "fresh-refresh",
		})
	})
	mux.HandleFunc("/youtube/transcript", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			// Release all stale requests at once so their retries
			// overlap the single refresh.
			if arrived.Add(1) == workers {
				close(gate)
			}
			<-gate
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(TranscriptResponse{Success: true})
	})

	client, _, _ := newTestClient(t, mux)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Transcript(context.Background(), "abcdefghijk")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}
	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestClient_FailedRefreshClearsSession(t *testing.T) {
	var expired atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/youtube/transcript", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	session := auth.NewSession("stale-token", "refresh-token")
	client, err := NewClient(Config{BaseURL: server.URL}, session,
		WithOnExpire(func() { expired.Store(true) }))
	require.NoError(t, err)

	_, err = client.Transcript(context.Background(), "abcdefghijk")
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, session.Authenticated())
	assert.True(t, expired.Load())
}

func TestClient_BlobFilenameFromContentDisposition(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/youtube/audio", r.URL.Path)
		w.Header().Set("Content-Disposition", `attachment; filename="my song.mp3"`)
		_, _ = w.Write([]byte("audio-bytes"))
	}))

	blob, err := client.Audio(context.Background(), "https://youtu.be/abcdefghijk")
	require.NoError(t, err)
	assert.Equal(t, "my song.mp3", blob.Filename)
	assert.Equal(t, []byte("audio-bytes"), blob.Data)
}

func TestClient_BlobWithoutDisposition(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0x00, 0x01})
	}))

	blob, err := client.Video(context.Background(), "https://youtu.be/abcdefghijk", "720")
	require.NoError(t, err)
	assert.Empty(t, blob.Filename)
	assert.Len(t, blob.Data, 2)
}

func TestClient_AudioToSRT(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/youtube/srt", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "talk.mp3", header.Filename)

		_, _ = w.Write([]byte("1\n00:00:00,000 --> 00:00:02,000\nhello\n\n"))
	}))

	srtText, err := client.AudioToSRT(context.Background(), "talk.mp3", strings.NewReader("fake-audio"))
	require.NoError(t, err)
	assert.Contains(t, srtText, "--> 00:00:02,000")
}

func TestClient_BackendErrorStatus(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.Transcript(context.Background(), "abcdefghijk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, auth.NewSession("", ""))
	require.Error(t, err)
}
