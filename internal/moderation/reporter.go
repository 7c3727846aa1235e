// Package moderation delivers flagged message text to the review
// endpoint off the send path. Delivery is best-effort, at most once:
// failures are logged and swallowed, a full queue drops the report.
package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/logger"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/metrics"
)

// Poster is the slice of the transport client the reporter needs.
type Poster interface {
	Post(ctx context.Context, path string, in, out any) error
}

const (
	queueSize      = 32
	deliverTimeout = 10 * time.Second
)

// Reporter is the asynchronous moderation dispatcher.
type Reporter struct {
	client Poster
	log    *logger.Logger

	queue chan model.Report
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewReporter starts a reporter with a single delivery worker.
func NewReporter(client Poster, log *logger.Logger) *Reporter {
	r := &Reporter{
		client: client,
		log:    log,
		queue:  make(chan model.Report, queueSize),
	}
	r.wg.Add(1)
	go r.worker()
	return r
}

// Notify enqueues a report without blocking. When the queue is full the
// report is dropped; the chat flow is never held up by moderation.
func (r *Reporter) Notify(report model.Report) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	select {
	case r.queue <- report:
		r.mu.Unlock()
	default:
		r.mu.Unlock()
		r.log.Warn("moderation queue full, dropping report", "session_id", report.SessionID)
		metrics.ModerationReportsTotal.WithLabelValues("dropped").Inc()
	}
}

// Close drains the queue and stops the worker.
func (r *Reporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.queue)
	r.wg.Wait()
}

func (r *Reporter) worker() {
	defer r.wg.Done()
	for report := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		err := r.client.Post(ctx, "/report-message/create", report, nil)
		cancel()
		if err != nil {
			// Best effort only; the user-facing flow already moved on.
			r.log.Warn("moderation notification failed", "error", err, "session_id", report.SessionID)
			metrics.ModerationReportsTotal.WithLabelValues("failed").Inc()
			continue
		}
		metrics.ModerationReportsTotal.WithLabelValues("delivered").Inc()
	}
}
