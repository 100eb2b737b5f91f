package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"minutes/internal/api"
	"minutes/internal/logging"
)

const (
	maxNotesBodyBytes = 1 << 20
	defaultRelated    = 5
)

type createRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxNotesBodyBytes)
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", "")
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid request body: expected {\"notes\": \"...\"}", "")
		return
	}

	rep, err := s.svc.CreateReport(r.Context(), req.Notes)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	var (
		meetings []api.Meeting
		err      error
	)
	if search != "" {
		logging.WithContext(r.Context(), s.logger).Debug("searching meetings", logging.String("search", search))
		meetings, err = s.svc.Search(r.Context(), search)
	} else {
		meetings, err = s.svc.History(r.Context())
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if meetings == nil {
		meetings = []api.Meeting{}
	}
	s.writeJSON(w, http.StatusOK, api.MeetingListResponse{Meetings: meetings, Search: search})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.meetingID(w, r)
	if !ok {
		return
	}
	m, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.MeetingResponse{Meeting: *m})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.meetingID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	id, ok := s.meetingID(w, r)
	if !ok {
		return
	}
	limit := defaultRelated
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit", "")
			return
		}
		limit = parsed
	}
	related, err := s.svc.Related(r.Context(), id, limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if related == nil {
		related = []api.RelatedMeeting{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"related": related})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	path, err := s.svc.ReportPath(name)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	limit := int64(s.cfg.Transcription.MaxAudioSizeMB)*1024*1024 + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, header, err := r.FormFile("audio_file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("File too large. Maximum size: %d MB", s.cfg.Transcription.MaxAudioSizeMB), "")
			return
		}
		s.writeError(w, http.StatusBadRequest, "No audio file provided", "")
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	tr, err := s.svc.Transcribe(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tr)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.svc.Health(r.Context())
	status := http.StatusOK
	if !h.ModelReady {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, h)
}

func (s *Server) meetingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid meeting id", "")
		return 0, false
	}
	return id, true
}
