package model

// HistoryMessage is the trimmed message shape sent to the backend as
// conversation context.
type HistoryMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// PropertyRef is a structured entity reference attached to a message
// via the @mention mechanism.
type PropertyRef struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Address string `json:"address,omitempty"`
	Price   int64  `json:"price,omitempty"`
	URL     string `json:"url,omitempty"`
}

// ChatRequest is the payload for POST /chat.
type ChatRequest struct {
	Message     string           `json:"message"`
	History     []HistoryMessage `json:"history,omitempty"`
	SessionID   string           `json:"sessionId"`
	Tone        string           `json:"tone,omitempty"`
	Length      string           `json:"length,omitempty"`
	Creativity  string           `json:"creativity,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
	TopP        float64          `json:"topP,omitempty"`
	TopK        int              `json:"topK,omitempty"`
	MaxTokens   int              `json:"maxTokens,omitempty"`
	Stream      bool             `json:"stream"`
	Mentions    []PropertyRef    `json:"mentions,omitempty"`
}

// ChatResponse is the buffered response from POST /chat, and the
// normalized result of a completed stream.
type ChatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// StreamEvent is one newline-delimited record in a streamed response
// body. Type is chunk, done or error.
type StreamEvent struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	Response  string `json:"response,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Stream event types.
const (
	StreamEventChunk = "chunk"
	StreamEventDone  = "done"
	StreamEventError = "error"
)
