package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/auth"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
)

// roleLimits mirror the backend quota tiers.
var roleLimits = map[model.RoleTier]int{
	model.TierPublic: 10,
	model.TierUser:   100,
	model.TierAdmin:  1000,
}

const quotaWindowMs = int64(time.Hour / time.Millisecond)

func callerIdentity(r *http.Request) auth.Identity {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return auth.FromToken(token)
}

// quotaStatus returns the caller's current quota view.
func (s *Server) quotaStatus(id auth.Identity) model.RateLimitInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := roleLimits[id.Role]
	remaining := limit - s.quotas[id.Namespace]
	if remaining < 0 {
		remaining = 0
	}
	return model.RateLimitInfo{
		Role:      id.Role,
		Limit:     limit,
		Remaining: remaining,
		WindowMs:  quotaWindowMs,
	}
}

// tryConsume spends one send from the caller's quota. False means the
// tier's allowance is already used up.
func (s *Server) tryConsume(id auth.Identity) bool {
	if id.Role.Unlimited() {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	limit := roleLimits[id.Role]
	if limit > 0 && s.quotas[id.Namespace] >= limit {
		return false
	}
	s.quotas[id.Namespace]++
	return true
}

func (s *Server) handleRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.quotaStatus(callerIdentity(r)))
}

// handleChat answers with a canned echo reply, buffered or streamed
// depending on the request's stream flag.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if !s.tryConsume(callerIdentity(r)) {
		writeError(w, http.StatusTooManyRequests, "message quota exhausted")
		return
	}

	reply := s.composeReply(&req)

	if !req.Stream {
		writeJSON(w, http.StatusOK, model.ChatResponse{
			Success:   true,
			Response:  reply,
			SessionID: req.SessionID,
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for _, word := range strings.SplitAfter(reply, " ") {
		select {
		case <-r.Context().Done():
			return
		default:
		}
		writeStreamEvent(w, model.StreamEvent{Type: model.StreamEventChunk, Content: word})
		flusher.Flush()
	}
	writeStreamEvent(w, model.StreamEvent{
		Type:      model.StreamEventDone,
		Response:  reply,
		SessionID: req.SessionID,
	})
	flusher.Flush()
}

func writeStreamEvent(w http.ResponseWriter, ev model.StreamEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n", data)
}

// composeReply builds a deterministic assistant reply so integration
// tests can assert on it.
func (s *Server) composeReply(req *model.ChatRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You asked: %s", req.Message)
	if len(req.Mentions) > 0 {
		b.WriteString(" (about")
		for _, m := range req.Mentions {
			fmt.Fprintf(&b, " %s", m.ID)
		}
		b.WriteString(")")
	}
	return b.String()
}
