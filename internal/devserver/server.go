// Package devserver is an in-memory stand-in for the UrbanSetu chat
// backend. It implements the HTTP contracts the widget consumes, for
// local development and integration tests. It is a test double: no
// real inference, persistence or enforcement lives here.
package devserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/logger"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/metrics"
)

// Options configure the dev server.
type Options struct {
	// RateLimitRequests/RateLimitWindow shape the per-IP guardrail on
	// top of the per-role chat quota.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Server holds the in-memory state behind the stub endpoints.
type Server struct {
	log  *logger.Logger
	opts Options

	mu        sync.Mutex
	quotas    map[string]int // consumed sends per identity
	histories map[string]model.ChatHistory
	bookmarks map[string]model.Bookmark
	ratings   map[string]model.Rating
	reports   map[string]model.Report
	nextID    int

	properties []model.PropertyRef
}

// New creates a dev server with listing fixtures loaded.
func New(log *logger.Logger, opts Options) *Server {
	if opts.RateLimitRequests == 0 {
		opts.RateLimitRequests = 60
	}
	if opts.RateLimitWindow == 0 {
		opts.RateLimitWindow = time.Minute
	}
	return &Server{
		log:       log,
		opts:      opts,
		quotas:    make(map[string]int),
		histories: make(map[string]model.ChatHistory),
		bookmarks: make(map[string]model.Bookmark),
		ratings:   make(map[string]model.Rating),
		reports:   make(map[string]model.Report),
		properties: []model.PropertyRef{
			{ID: "MLS-1001", Title: "Lakeview Condo", Address: "12 Shore Dr", Price: 425000},
			{ID: "MLS-1002", Title: "Downtown Loft", Address: "88 Main St", Price: 610000},
			{ID: "MLS-1003", Title: "Suburban Family Home", Address: "3 Maple Ct", Price: 520000},
		},
	}
}

// Router builds the chi router serving the widget contracts.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(s.opts.RateLimitRequests, s.opts.RateLimitWindow))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/chat", s.handleChat)
	r.Get("/rate-limit-status", s.handleRateLimitStatus)

	r.Route("/chat-history/session/{id}", func(r chi.Router) {
		r.Get("/", s.handleHistoryGet)
		r.Put("/", s.handleHistoryPut)
		r.Delete("/clear", s.handleHistoryClear)
	})

	r.Post("/bookmark", s.handleBookmarkAdd)
	r.Delete("/bookmark", s.handleBookmarkRemove)

	r.Post("/rate", s.handleRate)
	r.Get("/ratings/{sessionId}", s.handleRatings)
	r.Get("/ratings-all", s.handleRatingsAll)
	r.Delete("/rating/{id}", s.handleRatingDelete)

	r.Route("/report-message", func(r chi.Router) {
		r.Post("/create", s.handleReportCreate)
		r.Get("/getreports", s.handleReportList)
		r.Put("/update/{id}", s.handleReportUpdate)
		r.Delete("/delete/{id}", s.handleReportDelete)
	})

	r.Post("/upload/{kind}", s.handleUpload)

	r.Get("/property-search/search", s.handlePropertySearch)
	r.Get("/property-search/{id}", s.handlePropertyGet)

	return r
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		s.log.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"bytes", wrapped.written,
			"duration", duration,
			"remote_addr", r.RemoteAddr,
		)
		metrics.RecordRequest(r.Method, r.URL.Path, http.StatusText(wrapped.statusCode), duration.Seconds())
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
