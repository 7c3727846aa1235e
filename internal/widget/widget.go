// Package widget wires the chat pipeline together: validation, content
// guard, optimistic transcript updates, transport, stream decoding and
// quota gating.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/auth"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/config"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/guard"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/localstate"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/mention"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/moderation"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/prefs"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/ratelimit"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/session"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/store"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/transport"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/logger"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/metrics"
)

// Validation and gating errors surfaced as transient notices, never
// appended to the transcript.
var (
	ErrEmptyInput     = errors.New("message is empty")
	ErrInputTooLong   = errors.New("message exceeds the input length cap")
	ErrTranscriptFull = errors.New("message count limit reached")
	// ErrQuotaExhausted drives the sign-in/upgrade prompt.
	ErrQuotaExhausted = errors.New("message quota exhausted")
)

// Widget is one chat widget instance.
type Widget struct {
	cfg      *config.Config
	log      *logger.Logger
	state    *localstate.Store
	identity auth.Identity

	sessions  *session.Manager
	guard     *guard.Guard
	transport *transport.Client
	governor  *ratelimit.Governor
	reporter  *moderation.Reporter
	resolver  *mention.Resolver
	conv      *store.Conversation

	mu    sync.Mutex
	prefs prefs.Preferences
	mode  Mode
}

// statusClient adapts the transport client to the governor's interface.
type statusClient struct {
	t *transport.Client
}

func (s statusClient) RateLimitStatus(ctx context.Context) (*model.RateLimitInfo, error) {
	var out model.RateLimitInfo
	if err := s.t.Get(ctx, "/rate-limit-status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// New assembles a widget from configuration.
func New(cfg *config.Config, log *logger.Logger) (*Widget, error) {
	state, err := localstate.Open(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}

	identity := auth.FromToken(cfg.APIToken)
	tc := transport.New(transport.Config{
		BaseURL:        cfg.APIBaseURL,
		Token:          cfg.APIToken,
		RequestTimeout: cfg.RequestTimeout,
		StreamTimeout:  cfg.StreamTimeout,
	}, log)

	w := &Widget{
		cfg:       cfg,
		log:       log,
		state:     state,
		identity:  identity,
		sessions:  session.NewManager(state, identity.Namespace),
		guard:     guard.Default(),
		transport: tc,
		governor:  ratelimit.New(statusClient{t: tc}, identity.Role, log),
		reporter:  moderation.NewReporter(tc, log),
		resolver:  mention.NewResolver(tc),
		conv:      store.New(store.DefaultWelcome),
		prefs:     prefs.Load(state, identity.Namespace),
		mode:      ModeClosed,
	}
	return w, nil
}

// Close releases the moderation worker and local state.
func (w *Widget) Close() error {
	w.reporter.Close()
	return w.state.Close()
}

// Messages returns the current transcript.
func (w *Widget) Messages() []model.Message {
	return w.conv.Messages()
}

// Preferences returns the active preferences.
func (w *Widget) Preferences() prefs.Preferences {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prefs
}

// SetPreferences applies and persists new preferences.
func (w *Widget) SetPreferences(p prefs.Preferences) error {
	if err := prefs.Save(w.state, w.identity.Namespace, p); err != nil {
		return err
	}
	w.mu.Lock()
	w.prefs = p
	w.mu.Unlock()
	return nil
}

// SessionID returns the durable session identity.
func (w *Widget) SessionID() (string, error) {
	return w.sessions.GetOrCreate()
}

// NewSession aborts any in-flight send, resets the transcript to the
// welcome message and rotates the session identity.
func (w *Widget) NewSession() (string, error) {
	w.transport.Abort()
	w.conv.Clear()
	return w.sessions.Reset()
}

// Abort cancels the in-flight send, if any, and removes the streaming
// placeholder. Nothing is appended to the transcript.
func (w *Widget) Abort() {
	w.transport.Abort()
	w.conv.DropStream()
}

// RefreshQuota polls the backend quota. Best effort: on failure the
// locally derived default is used.
func (w *Widget) RefreshQuota(ctx context.Context) model.RateLimitInfo {
	return w.governor.Refresh(ctx)
}

// Send runs the full outbound pipeline for one user input. A content
// guard hit records a redacted placeholder and returns nil: blocking is
// handled, not an error. Abort also returns nil with no transcript
// entry. Transport failures append an error message carrying the
// original input and return nil; validation and quota problems are
// returned as errors without touching the transcript.
func (w *Widget) Send(ctx context.Context, text string) error {
	// Streaming needs both the deployment switch and the user preference.
	return w.send(ctx, text, w.cfg.StreamEnabled && w.Preferences().StreamEnabled)
}

// Retry resubmits the most recent failed input, buffered.
func (w *Widget) Retry(ctx context.Context) error {
	text, ok := w.conv.LastFailedInput()
	if !ok {
		return errors.New("nothing to retry")
	}
	return w.send(ctx, text, false)
}

func (w *Widget) send(ctx context.Context, text string, streaming bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	if len(text) > w.cfg.MaxInputLength {
		return ErrInputTooLong
	}
	if w.conv.Len() >= w.cfg.MaxMessages {
		return ErrTranscriptFull
	}

	sessionID, err := w.sessions.GetOrCreate()
	if err != nil {
		return err
	}

	// Content guard runs before anything leaves the client.
	if res := w.guard.Classify(text); res.Restricted {
		metrics.RecordGuardBlock(res.Category)
		w.conv.Append(model.NewRestrictedMessage(uuid.New().String(), res.Category, res.Reason))
		w.reporter.Notify(model.Report{
			SessionID: sessionID,
			Content:   text,
			Category:  res.Category,
			Reason:    res.Reason,
			Status:    model.ReportPending,
		})
		w.recordEvent("analytics", "guard_block:"+res.Category)
		return nil
	}

	if !w.governor.Allowed() {
		metrics.RecordSend("quota_denied")
		return ErrQuotaExhausted
	}

	// A new send supersedes any in-flight one; the old streaming
	// placeholder must not linger.
	w.conv.DropStream()

	p := w.Preferences()
	req := &model.ChatRequest{
		Message:     text,
		History:     w.conv.History(w.cfg.HistoryWindow),
		SessionID:   sessionID,
		Tone:        p.Tone,
		Length:      p.Length,
		Creativity:  p.Creativity,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		TopK:        p.TopK,
		MaxTokens:   p.MaxTokens,
		Mentions:    w.resolver.Resolve(ctx, text),
	}

	// Optimistic append of the user message.
	if err := w.conv.Append(model.NewUserMessage(uuid.New().String(), text)); err != nil {
		return err
	}

	var delivered bool
	if streaming {
		delivered, err = w.sendStreaming(ctx, req)
	} else {
		delivered, err = w.sendBuffered(ctx, req)
	}
	if err != nil {
		return err
	}

	if delivered {
		w.governor.Note()
	}
	// The cached quota mirror is re-polled after every send attempt.
	w.governor.Refresh(ctx)
	return nil
}

func (w *Widget) sendBuffered(ctx context.Context, req *model.ChatRequest) (bool, error) {
	resp, err := w.transport.Send(ctx, req)
	if err != nil {
		return false, w.handleSendFailure(req.Message, err)
	}

	w.conv.Append(model.NewAssistantMessage(uuid.New().String(), resp.Response, false))
	metrics.RecordSend("ok")
	return true, nil
}

func (w *Widget) sendStreaming(ctx context.Context, req *model.ChatRequest) (bool, error) {
	if err := w.conv.Append(model.NewAssistantMessage(uuid.New().String(), "", true)); err != nil {
		return false, err
	}

	start := time.Now()
	resp, err := w.transport.SendStream(ctx, req, func(chunk string) error {
		metrics.StreamChunksTotal.Inc()
		return w.conv.AppendChunk(chunk)
	})
	if err != nil {
		w.conv.DropStream()
		return false, w.handleSendFailure(req.Message, err)
	}

	if err := w.conv.CompleteStream(resp.Response); err != nil {
		return false, err
	}
	metrics.StreamDuration.Observe(time.Since(start).Seconds())
	metrics.RecordSend("ok")
	return true, nil
}

// handleSendFailure maps transport failures to transcript state. Abort
// is silent; everything else becomes a retryable error message.
func (w *Widget) handleSendFailure(original string, err error) error {
	if transport.IsAborted(err) {
		metrics.RecordSend("aborted")
		return nil
	}

	metrics.RecordSend("error")
	w.log.Error("chat send failed", "error", err)
	w.recordEvent("errors", err.Error())

	cause := "Something went wrong while contacting the assistant. Please try again."
	var te *transport.Error
	if errors.As(err, &te) && te.Message != "" &&
		(te.Kind == transport.KindHTTP || te.Kind == transport.KindServer) {
		cause = te.Message
	}
	w.conv.Append(model.NewErrorMessage(uuid.New().String(), cause, original))
	return nil
}

// SaveDraft persists the half-typed input for the current session.
func (w *Widget) SaveDraft(text string) error {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return err
	}
	if text == "" {
		return w.state.Delete(w.identity.Namespace, "draft:"+id)
	}
	return w.state.Set(w.identity.Namespace, "draft:"+id, text)
}

// Draft returns the stored draft for the current session, if any.
func (w *Widget) Draft() (string, error) {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return "", err
	}
	text, _, err := w.state.Get(w.identity.Namespace, "draft:"+id)
	return text, err
}

// recordEvent appends to a bounded local event ring. Failures are
// logged only; telemetry never breaks the chat flow.
func (w *Widget) recordEvent(kind, payload string) {
	if err := w.state.AppendEvent(w.identity.Namespace, kind, payload); err != nil {
		w.log.Warn("record event failed", "kind", kind, "error", err)
	}
}

// RecentEvents returns the locally buffered analytics or error events.
func (w *Widget) RecentEvents(kind string, limit int) ([]localstate.Event, error) {
	return w.state.Events(w.identity.Namespace, kind, limit)
}
