// Package httpapi exposes the tool's operations over HTTP: URL
// formatting, transcript fetching and exports, extraction batches with
// an SSE progress stream, channel listings and runtime settings.
package httpapi

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/tubedesk/tubedesk/internal/config"
	"github.com/tubedesk/tubedesk/internal/persistence"
	"github.com/tubedesk/tubedesk/internal/service"
)

type runtimeSettingsStore interface {
	GetRuntimeSettings() (config.RuntimeSettings, error)
	UpdateRuntimeSettings(next config.RuntimeSettings) (config.RuntimeSettings, error)
}

type runtimeSettingsApplier func(next config.RuntimeSettings) error

type archiveReader interface {
	ListArchived(ctx context.Context, limit int) ([]persistence.ArchivedBatch, error)
	GetArchived(ctx context.Context, id string) (*persistence.ArchivedBatch, error)
}

type Server struct {
	svc      *service.Service
	archive  archiveReader
	settings runtimeSettingsStore
	apply    runtimeSettingsApplier

	uiEnabled   bool
	uiStaticDir string

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

func WithUI(staticDir string, enabled bool) Option {
	return func(s *Server) {
		s.uiStaticDir = staticDir
		s.uiEnabled = enabled
	}
}

func WithRuntimeSettingsStore(store runtimeSettingsStore) Option {
	return func(s *Server) {
		s.settings = store
	}
}

func WithRuntimeSettingsApplier(apply runtimeSettingsApplier) Option {
	return func(s *Server) {
		s.apply = apply
	}
}

// WithArchive enables the read-only history endpoints.
func WithArchive(archive archiveReader) Option {
	return func(s *Server) {
		s.archive = archive
	}
}

func NewServer(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		uiEnabled: false,
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/urls/format", s.handleFormatURLs)
	s.mux.HandleFunc("/api/transcript", s.handleFetchTranscript)
	s.mux.HandleFunc("/api/transcripts", s.handleTranscripts)
	s.mux.HandleFunc("/api/transcripts/export/srt", s.handleExportSRTZip)
	s.mux.HandleFunc("/api/transcripts/export/txt", s.handleExportTxt)
	s.mux.HandleFunc("/api/transcripts/", s.handleTranscriptByID)
	s.mux.HandleFunc("/api/timeline/srt", s.handleTimelineSRT)
	s.mux.HandleFunc("/api/batches", s.handleListBatches)
	s.mux.HandleFunc("/api/batches/audio", s.handleStartURLBatch(s.svc.StartAudioBatch))
	s.mux.HandleFunc("/api/batches/video", s.handleStartURLBatch(s.svc.StartVideoBatch))
	s.mux.HandleFunc("/api/batches/srt", s.handleStartSubtitleBatch)
	s.mux.HandleFunc("/api/batches/", s.handleBatchByID)
	s.mux.HandleFunc("/api/channel/videos", s.handleChannelVideos)
	s.mux.HandleFunc("/api/channel/videos/export", s.handleChannelExport)
	s.mux.HandleFunc("/api/images/download", s.handleImageDownload)
	s.mux.HandleFunc("/api/archive", s.handleArchiveList)
	s.mux.HandleFunc("/api/archive/", s.handleArchiveByID)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/", s.handleStatic)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if !s.uiEnabled || s.uiStaticDir == "" {
		http.NotFound(w, r)
		return
	}

	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	indexPath := filepath.Join(s.uiStaticDir, "index.html")

	if rel == "" || !strings.Contains(filepath.Base(rel), ".") {
		http.ServeFile(w, r, indexPath)
		return
	}

	filePath := filepath.Join(s.uiStaticDir, rel)
	if _, err := os.Stat(filePath); err != nil {
		// SPA fallback: non-existing static file path returns index
		http.ServeFile(w, r, indexPath)
		return
	}
	http.ServeFile(w, r, filePath)
}
