// Package transport issues HTTP requests to the chat backend,
// supporting buffered JSON and incrementally streamed responses.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/stream"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/logger"
)

// ErrorKind classifies transport failures.
type ErrorKind string

const (
	// KindHTTP is a non-2xx response from the backend.
	KindHTTP ErrorKind = "http"
	// KindNetwork is a connection-level failure.
	KindNetwork ErrorKind = "network"
	// KindAborted is a user- or supersede-initiated cancellation. It is
	// never surfaced as a chat error message.
	KindAborted ErrorKind = "aborted"
	// KindServer is an in-stream error event from the backend, carrying
	// its user-facing message.
	KindServer ErrorKind = "server"
	// KindDecode is a malformed response body.
	KindDecode ErrorKind = "decode"
)

// Error is a classified transport failure.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsAborted reports whether err is a cancelled send.
func IsAborted(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == KindAborted
}

// Config holds transport settings.
type Config struct {
	BaseURL        string
	Token          string
	RequestTimeout time.Duration
	StreamTimeout  time.Duration
}

// Client talks to the chat backend. At most one chat send is in flight
// at a time: starting a new send cancels the previous one.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger

	mu             sync.Mutex
	cancelInflight context.CancelFunc
	sendGen        uint64
}

// New creates a transport client.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.StreamTimeout == 0 {
		cfg.StreamTimeout = 2 * time.Minute
	}
	return &Client{
		cfg: cfg,
		// Per-call deadlines come from contexts; streaming reads must
		// outlive any single-request timeout.
		http: &http.Client{},
		log:  log,
	}
}

// Abort cancels any in-flight chat send.
func (c *Client) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelInflight != nil {
		c.log.Debug("aborting in-flight send")
		c.cancelInflight()
		c.cancelInflight = nil
	}
}

// beginSend registers a new in-flight send, cancelling the previous.
func (c *Client) beginSend(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	sendCtx, cancel := context.WithTimeout(ctx, timeout)

	c.mu.Lock()
	if c.cancelInflight != nil {
		c.log.Debug("cancelling superseded send")
		c.cancelInflight()
	}
	c.cancelInflight = cancel
	c.sendGen++
	gen := c.sendGen
	c.mu.Unlock()

	return sendCtx, func() {
		c.mu.Lock()
		// Only clear the slot if it still belongs to this send.
		if c.sendGen == gen {
			c.cancelInflight = nil
		}
		c.mu.Unlock()
		cancel()
	}
}

// Send issues a buffered chat request.
func (c *Client) Send(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	req.Stream = false

	sendCtx, done := c.beginSend(ctx, c.cfg.RequestTimeout)
	defer done()

	resp, err := c.doJSON(sendCtx, http.MethodPost, "/chat", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out model.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "malformed chat response", Err: err}
	}
	return &out, nil
}

// SendStream issues a streaming chat request, invoking onChunk for each
// incremental fragment, and returns the normalized final response.
func (c *Client) SendStream(ctx context.Context, req *model.ChatRequest, onChunk stream.ChunkFunc) (*model.ChatResponse, error) {
	req.Stream = true

	sendCtx, done := c.beginSend(ctx, c.cfg.StreamTimeout)
	defer done()

	resp, err := c.doJSON(sendCtx, http.MethodPost, "/chat", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	res, err := stream.Decode(resp.Body, onChunk)
	if err != nil {
		if sendCtx.Err() != nil {
			return nil, &Error{Kind: KindAborted, Message: "send cancelled", Err: sendCtx.Err()}
		}
		var se *stream.ServerError
		if errors.As(err, &se) {
			c.log.Warn("backend aborted stream", "message", se.Message)
			return nil, &Error{Kind: KindServer, Message: se.Message, Err: err}
		}
		return nil, &Error{Kind: KindDecode, Message: "stream failed", Err: err}
	}

	return &model.ChatResponse{
		Success:   true,
		Response:  res.Text,
		SessionID: res.SessionID,
	}, nil
}

// doJSON sends a JSON request and classifies any failure. The caller
// owns the response body on success.
func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Message: "marshal request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "create request", Err: err}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &Error{Kind: KindAborted, Message: "send cancelled", Err: ctx.Err()}
		}
		return nil, &Error{Kind: KindNetwork, Message: "request failed", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.httpError(resp)
	}
	return resp, nil
}

// httpError extracts the server-supplied message when present.
func (c *Client) httpError(resp *http.Response) error {
	msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(body) > 0 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Error != "" {
				msg = payload.Error
			} else if payload.Message != "" {
				msg = payload.Message
			}
		}
	}
	c.log.Debug("backend error response", "status", resp.StatusCode, "message", msg)
	return &Error{Kind: KindHTTP, Status: resp.StatusCode, Message: msg}
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
// out may be nil when the response body is irrelevant.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, http.MethodPost, path, in, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, http.MethodPut, path, in, out)
}

// Delete issues a DELETE, optionally with a JSON body.
func (c *Client) Delete(ctx context.Context, path string, in any) error {
	return c.call(ctx, http.MethodDelete, path, in, nil)
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	resp, err := c.doJSON(callCtx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindDecode, Message: "malformed response for " + path, Err: err}
	}
	return nil
}

// Upload sends a file as multipart form data and returns its hosted URL.
func (c *Client) Upload(ctx context.Context, kind model.UploadKind, filename string, r io.Reader) (*model.UploadResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.StreamTimeout)
	defer cancel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Message: "build multipart body", Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "read upload source", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "finalize multipart body", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost,
		c.cfg.BaseURL+"/upload/"+url.PathEscape(string(kind)), &buf)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if callCtx.Err() != nil {
			return nil, &Error{Kind: KindAborted, Message: "upload cancelled", Err: callCtx.Err()}
		}
		return nil, &Error{Kind: KindNetwork, Message: "upload failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.httpError(resp)
	}

	var out model.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "malformed upload response", Err: err}
	}
	if out.Filename == "" {
		out.Filename = strings.TrimSpace(filename)
	}
	return &out, nil
}
