package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
)

func bookmarkKey(b model.Bookmark) string {
	return fmt.Sprintf("%s:%d", b.SessionID, b.MessageIndex)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	history, ok := s.histories[id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no history for session")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleHistoryPut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var history model.ChatHistory
	if err := json.NewDecoder(r.Body).Decode(&history); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	history.SessionID = id
	history.UpdatedAt = time.Now()

	s.mu.Lock()
	s.histories[id] = history
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	delete(s.histories, id)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleBookmarkAdd(w http.ResponseWriter, r *http.Request) {
	var b model.Bookmark
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	s.bookmarks[bookmarkKey(b)] = b
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleBookmarkRemove(w http.ResponseWriter, r *http.Request) {
	var b model.Bookmark
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	_, ok := s.bookmarks[bookmarkKey(b)]
	delete(s.bookmarks, bookmarkKey(b))
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "bookmark not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var rating model.Rating
	if err := json.NewDecoder(r.Body).Decode(&rating); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rating.Value != model.RatingUp && rating.Value != model.RatingDown {
		writeError(w, http.StatusBadRequest, "value must be up or down")
		return
	}

	s.mu.Lock()
	s.nextID++
	rating.ID = fmt.Sprintf("rating-%d", s.nextID)
	rating.CreatedAt = time.Now()
	// One vote per message; a re-rate replaces the previous one.
	for k, existing := range s.ratings {
		if existing.SessionID == rating.SessionID && existing.MessageIndex == rating.MessageIndex {
			delete(s.ratings, k)
		}
	}
	s.ratings[rating.ID] = rating
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, rating)
}

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	s.mu.Lock()
	out := make([]model.Rating, 0)
	for _, rating := range s.ratings {
		if rating.SessionID == sessionID {
			out = append(out, rating)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRatingsAll(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	s.mu.Lock()
	out := make([]model.Rating, 0, len(s.ratings))
	for _, rating := range s.ratings {
		out = append(out, rating)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRatingDelete(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.ratings[id]
	delete(s.ratings, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "rating not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleReportCreate(w http.ResponseWriter, r *http.Request) {
	var report model.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if report.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if report.Status == "" {
		report.Status = model.ReportPending
	}

	s.mu.Lock()
	s.nextID++
	report.ID = fmt.Sprintf("report-%d", s.nextID)
	report.CreatedAt = time.Now()
	s.reports[report.ID] = report
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleReportList(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	s.mu.Lock()
	out := make([]model.Report, 0, len(s.reports))
	for _, report := range s.reports {
		out = append(out, report)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReportUpdate(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id := chi.URLParam(r, "id")

	var patch model.Report
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	report, ok := s.reports[id]
	if ok {
		if patch.Status != "" {
			report.Status = patch.Status
		}
		if patch.AdminNotes != "" {
			report.AdminNotes = patch.AdminNotes
		}
		s.reports[id] = report
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReportDelete(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.reports[id]
	delete(s.reports, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

const maxUploadBytes = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	kind := model.UploadKind(chi.URLParam(r, "kind"))
	switch kind {
	case model.UploadImage, model.UploadAudio, model.UploadVideo, model.UploadDocument:
	default:
		writeError(w, http.StatusBadRequest, "unknown upload kind")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	// The sink discards the bytes; only the metadata is echoed back.
	writeJSON(w, http.StatusCreated, model.UploadResult{
		URL:      fmt.Sprintf("https://cdn.local/%s/%s", kind, header.Filename),
		Filename: header.Filename,
		Size:     header.Size,
	})
}

func (s *Server) handlePropertySearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	s.mu.Lock()
	props := s.properties
	s.mu.Unlock()

	out := make([]model.PropertyRef, 0)
	for _, p := range props {
		if q == "" ||
			strings.Contains(strings.ToLower(p.ID), q) ||
			strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Address), q) {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePropertyGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	props := s.properties
	s.mu.Unlock()

	for _, p := range props {
		if strings.EqualFold(p.ID, id) {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "property not found")
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	id := callerIdentity(r)
	if id.Role != model.TierAdmin && id.Role != model.TierRootAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return false
	}
	return true
}
