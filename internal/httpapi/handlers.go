package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tubedesk/tubedesk/internal/batch"
	"github.com/tubedesk/tubedesk/internal/config"
	"github.com/tubedesk/tubedesk/internal/persistence"
	"github.com/tubedesk/tubedesk/internal/service"
)

// errStatus maps service errors onto HTTP status codes. Validation
// failures are the caller's fault; everything else is a 500.
func errStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmptyInput),
		errors.Is(err, service.ErrNotFormatted),
		errors.Is(err, service.ErrNoVideoIDs),
		errors.Is(err, service.ErrNoTranscripts),
		errors.Is(err, service.ErrNoChannelListing),
		errors.Is(err, service.ErrNoTimelineEntries):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, errStatus(err), err.Error())
}

type textRequest struct {
	Text string `json:"text"`
}

type urlRequest struct {
	URL string `json:"url"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func (s *Server) handleFormatURLs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.svc.FormatURLs(req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFetchTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req urlRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.svc.FetchTranscript(r.Context(), req.URL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.svc.Transcripts())
	case http.MethodPost:
		var req textRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		responses, err := s.svc.FetchTranscripts(r.Context(), req.Text)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, responses)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleTranscriptByID serves /api/transcripts/{videoId} and its
// sub-resources: /timeline, /text and /export/srt.
func (s *Server) handleTranscriptByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/transcripts/")
	videoID, sub, _ := strings.Cut(rest, "/")
	if decoded, err := url.PathUnescape(videoID); err == nil {
		videoID = decoded
	}
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "missing video id")
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			resp, err := s.svc.Transcript(videoID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodDelete:
			if err := s.svc.DeleteTranscript(videoID); err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case "timeline":
		s.serveTranscriptText(w, r, videoID, s.svc.TranscriptTimeline)
	case "text":
		s.serveTranscriptText(w, r, videoID, s.svc.TranscriptPlain)
	case "export/srt":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		name, err := s.svc.ExportTranscriptSRT(videoID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"filename": name})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// serveTranscriptText renders one transcript view and optionally puts
// it on the clipboard when ?copy=1 is set.
func (s *Server) serveTranscriptText(w http.ResponseWriter, r *http.Request, videoID string, render func(string) (string, error)) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	text, err := render(videoID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	copied := false
	if r.URL.Query().Get("copy") == "1" {
		if err := s.svc.Copy(text); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		copied = true
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"text":   text,
		"copied": copied,
	})
}

func (s *Server) handleExportSRTZip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name, count, err := s.svc.ExportAllSRTZip()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": name,
		"count":    count,
	})
}

type exportTxtRequest struct {
	Scope    string `json:"scope"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

func (s *Server) handleExportTxt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req exportTxtRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pageIndex := -1
	if req.Scope == "page" {
		if req.Page < 0 || req.PageSize <= 0 {
			writeError(w, http.StatusBadRequest, "page export requires page >= 0 and page_size > 0")
			return
		}
		pageIndex = req.Page
	}

	name, count, err := s.svc.ExportTranscriptsTxt(pageIndex, req.PageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": name,
		"count":    count,
	})
}

func (s *Server) handleTimelineSRT(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name, err := s.svc.ExportTimelineSRT(req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filename": name})
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Batches())
}

type startBatchRequest struct {
	URLs string `json:"urls"`
}

func (s *Server) handleStartURLBatch(start func(string) (*batch.Batch, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req startBatchRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		b, err := start(req.URLs)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, b.Snapshot())
	}
}

const maxUploadBytes = 256 << 20

func (s *Server) handleStartSubtitleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	var files []service.UploadedFile
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable upload: "+header.Filename)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable upload: "+header.Filename)
			return
		}
		files = append(files, service.UploadedFile{Name: header.Filename, Data: data})
	}

	b, err := s.svc.StartSubtitleBatch(files)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b.Snapshot())
}

// handleBatchByID serves /api/batches/{id}, /api/batches/{id}/stream
// and /api/batches/{id}/items/{key}.
func (s *Server) handleBatchByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/batches/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch id")
		return
	}

	b, err := s.svc.Batch(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch {
	case sub == "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, b.Snapshot())
	case sub == "stream":
		s.streamBatch(w, r, b)
	case sub == "items":
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		// Item keys are URLs, so they travel as a query parameter
		// rather than a path segment.
		key := r.URL.Query().Get("key")
		if key == "" {
			writeError(w, http.StatusBadRequest, "missing item key")
			return
		}
		if err := s.svc.DeleteBatchItem(id, key); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleChannelVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req urlRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	videos, err := s.svc.ChannelVideos(r.Context(), req.URL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

func (s *Server) handleChannelExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name, rows, err := s.svc.ExportChannelXLSX()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": name,
		"rows":     rows,
	})
}

type imageRequest struct {
	ImageURL string `json:"imageUrl"`
}

func (s *Server) handleImageDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req imageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name, err := s.svc.DownloadImage(r.Context(), req.ImageURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filename": name})
}

func (s *Server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotImplemented, "archive is not configured")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := s.archive.ListArchived(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []persistence.ArchivedBatch{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleArchiveByID(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotImplemented, "archive is not configured")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/archive/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch id")
		return
	}
	got, err := s.archive.GetArchived(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if got == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, got)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.GetRuntimeSettings()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req config.RuntimeSettings
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, err := s.settings.UpdateRuntimeSettings(req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if s.apply != nil {
			if err := s.apply(saved); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
