package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/config"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/logger"
)

// fakeBackend is a minimal in-memory stand-in for the chat backend.
type fakeBackend struct {
	mu          sync.Mutex
	chatCalls   int
	reports     []model.Report
	rateInfo    model.RateLimitInfo
	failChat    bool
	blockChat   chan struct{} // when set, /chat parks until request ctx is done
	streamLines []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		rateInfo: model.RateLimitInfo{Role: model.TierUser, Limit: 100, Remaining: 50, WindowMs: 3600000},
		streamLines: []string{
			`data: {"type":"chunk","content":"Hi"}`,
			`data: {"type":"chunk","content":" there"}`,
			`data: {"type":"done","response":"Hi there","sessionId":"srv-sess"}`,
		},
	}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.chatCalls++
		fail := b.failChat
		block := b.blockChat
		lines := b.streamLines
		b.mu.Unlock()

		if block != nil {
			// Drain the body so the server watches the connection and
			// can cancel r.Context() when the client disconnects.
			io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
			return
		}
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"error":"assistant unavailable"}`)
			return
		}

		var req model.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, line := range lines {
				fmt.Fprintln(w, line)
			}
			return
		}
		json.NewEncoder(w).Encode(model.ChatResponse{
			Success: true, Response: "Hi there", SessionID: req.SessionID,
		})
	})
	mux.HandleFunc("/rate-limit-status", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		info := b.rateInfo
		b.mu.Unlock()
		json.NewEncoder(w).Encode(info)
	})
	mux.HandleFunc("/report-message/create", func(w http.ResponseWriter, r *http.Request) {
		var rep model.Report
		json.NewDecoder(r.Body).Decode(&rep)
		b.mu.Lock()
		b.reports = append(b.reports, rep)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{}`)
	})
	return mux
}

func (b *fakeBackend) chatCallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chatCalls
}

func newTestWidget(t *testing.T, b *fakeBackend) *Widget {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
		StreamTimeout:  5 * time.Second,
		HistoryWindow:  10,
		MaxInputLength: 4000,
		MaxMessages:    200,
		StreamEnabled:  true,
		StatePath:      filepath.Join(t.TempDir(), "state.db"),
	}
	w, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestSend_StreamingEndToEnd(t *testing.T) {
	b := newFakeBackend()
	w := newTestWidget(t, b)

	require.NoError(t, w.Send(context.Background(), "hello"))

	msgs := w.Messages()
	require.Len(t, msgs, 3, "welcome + user + assistant")
	require.Equal(t, model.RoleUser, msgs[1].Role)
	require.Equal(t, "hello", msgs[1].Content)
	require.Equal(t, model.RoleAssistant, msgs[2].Role)
	require.Equal(t, "Hi there", msgs[2].Content, "server final text wins")
	require.False(t, msgs[2].Streaming, "streaming flag must be cleared on completion")
}

func TestSend_GuardBlocksBeforeTransport(t *testing.T) {
	b := newFakeBackend()
	w := newTestWidget(t, b)

	require.NoError(t, w.Send(context.Background(), "you are an idiot"))
	require.Equal(t, 0, b.chatCallCount(), "blocked text must never reach the transport")

	msgs := w.Messages()
	last := msgs[len(msgs)-1]
	require.True(t, last.Restricted)
	require.Equal(t, "abusive", last.RestrictedCategory)
	require.NotContains(t, last.Content, "idiot", "original text must not be displayed")

	// Close drains the moderation queue; the raw text goes to review.
	w.Close()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.reports, 1)
	require.Equal(t, "you are an idiot", b.reports[0].Content)
	require.Equal(t, model.ReportPending, b.reports[0].Status)
}

func TestSend_ValidationErrors(t *testing.T) {
	b := newFakeBackend()
	w := newTestWidget(t, b)

	require.ErrorIs(t, w.Send(context.Background(), "   "), ErrEmptyInput)

	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	require.ErrorIs(t, w.Send(context.Background(), string(long)), ErrInputTooLong)
	require.Equal(t, 0, b.chatCallCount())
	require.Len(t, w.Messages(), 1, "validation failures never touch the transcript")
}

func TestSend_QuotaDenied(t *testing.T) {
	b := newFakeBackend()
	b.rateInfo = model.RateLimitInfo{Role: model.TierUser, Limit: 100, Remaining: 0, WindowMs: 3600000}
	w := newTestWidget(t, b)
	w.RefreshQuota(context.Background())

	err := w.Send(context.Background(), "hello")
	require.ErrorIs(t, err, ErrQuotaExhausted)
	require.Equal(t, 0, b.chatCallCount())
	require.Len(t, w.Messages(), 1, "quota denial is a prompt, not a transcript entry")
}

func TestSend_QuotaIgnoredForRootAdmin(t *testing.T) {
	b := newFakeBackend()
	b.rateInfo = model.RateLimitInfo{Role: model.TierRootAdmin, Limit: 0, Remaining: 0}
	w := newTestWidget(t, b)
	w.RefreshQuota(context.Background())

	require.NoError(t, w.Send(context.Background(), "hello"))
	require.Equal(t, 1, b.chatCallCount())
}

func TestSend_TransportFailureAppendsRetryableError(t *testing.T) {
	b := newFakeBackend()
	b.failChat = true
	w := newTestWidget(t, b)

	require.NoError(t, w.Send(context.Background(), "hello"))

	msgs := w.Messages()
	last := msgs[len(msgs)-1]
	require.True(t, last.Error)
	require.Equal(t, "assistant unavailable", last.Content, "server message surfaces as the cause")
	require.Equal(t, "hello", last.OriginalUserMessage)

	// Backend recovers; manual retry resubmits the failed input buffered.
	b.mu.Lock()
	b.failChat = false
	b.mu.Unlock()

	require.NoError(t, w.Retry(context.Background()))
	msgs = w.Messages()
	require.Equal(t, "Hi there", msgs[len(msgs)-1].Content)
	require.False(t, msgs[len(msgs)-1].Error)
}

func TestSend_StreamErrorEventSurfacesServerMessage(t *testing.T) {
	b := newFakeBackend()
	b.streamLines = []string{
		`data: {"type":"chunk","content":"Hi"}`,
		`data: {"type":"error","error":"model overloaded"}`,
	}
	w := newTestWidget(t, b)

	require.NoError(t, w.Send(context.Background(), "hello"))

	msgs := w.Messages()
	last := msgs[len(msgs)-1]
	require.True(t, last.Error)
	require.Equal(t, "model overloaded", last.Content, "the backend's abort message is the cause")
	require.Equal(t, "hello", last.OriginalUserMessage)
	for _, m := range msgs {
		require.False(t, m.Streaming, "the partial stream placeholder must be dropped")
	}
}

func TestAbort_LeavesNoErrorMessage(t *testing.T) {
	b := newFakeBackend()
	b.blockChat = make(chan struct{})
	w := newTestWidget(t, b)

	done := make(chan error, 1)
	go func() {
		done <- w.Send(context.Background(), "hello")
	}()

	// Wait for the request to reach the backend, then abort.
	require.Eventually(t, func() bool { return b.chatCallCount() == 1 },
		2*time.Second, 10*time.Millisecond)
	w.Abort()

	require.NoError(t, <-done, "abort is silent, not an error")
	for _, m := range w.Messages() {
		require.False(t, m.Error, "abort must not append an error message")
		require.False(t, m.Streaming, "abort must drop the streaming placeholder")
	}
}

func TestNewSession_ResetsTranscriptAndIdentity(t *testing.T) {
	b := newFakeBackend()
	w := newTestWidget(t, b)

	old, err := w.SessionID()
	require.NoError(t, err)
	require.NoError(t, w.Send(context.Background(), "hello"))
	require.Greater(t, len(w.Messages()), 1)

	fresh, err := w.NewSession()
	require.NoError(t, err)
	require.NotEqual(t, old, fresh)
	require.Len(t, w.Messages(), 1, "clear leaves exactly one welcome message")

	got, err := w.SessionID()
	require.NoError(t, err)
	require.Equal(t, fresh, got)
}

func TestDraft_RoundTrip(t *testing.T) {
	b := newFakeBackend()
	w := newTestWidget(t, b)

	require.NoError(t, w.SaveDraft("half typed quest"))
	got, err := w.Draft()
	require.NoError(t, err)
	require.Equal(t, "half typed quest", got)

	require.NoError(t, w.SaveDraft(""))
	got, err = w.Draft()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSetMode_AdminGate(t *testing.T) {
	b := newFakeBackend()
	w := newTestWidget(t, b)

	require.NoError(t, w.SetMode(ModeChat))
	require.Equal(t, ModeChat, w.Mode())

	err := w.SetMode(ModeAdminReports)
	require.Error(t, err, "anonymous caller must not open admin surfaces")
	require.Equal(t, ModeChat, w.Mode(), "rejected switches leave the mode unchanged")
}
