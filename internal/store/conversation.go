// Package store holds the ordered transcript that the presentation
// layer renders from. It is the single in-memory source of truth for
// the visible conversation.
package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
)

// DefaultWelcome is the message a cleared conversation starts with.
const DefaultWelcome = "Hi! I'm your UrbanSetu assistant. Ask me anything about properties, neighborhoods or listings."

var (
	// ErrStreamActive is returned when a second streaming message would
	// be appended while one is still being filled.
	ErrStreamActive = errors.New("a message is already streaming")
	// ErrNoStream is returned by streaming mutations when no message is
	// currently streaming.
	ErrNoStream = errors.New("no streaming message")
)

// Conversation is an append-only transcript with a single in-place
// mutation path: the trailing assistant message while it streams.
type Conversation struct {
	mu       sync.RWMutex
	messages []model.Message
	welcome  string
}

// New creates a conversation seeded with the welcome message.
func New(welcome string) *Conversation {
	if welcome == "" {
		welcome = DefaultWelcome
	}
	c := &Conversation{welcome: welcome}
	c.reset()
	return c
}

func (c *Conversation) reset() {
	c.messages = []model.Message{
		model.NewAssistantMessage(uuid.New().String(), c.welcome, false),
	}
}

// Append adds a message to the end of the transcript. Appending a
// streaming message while another is still streaming is rejected.
func (c *Conversation) Append(msg model.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.Streaming && c.streamingIndexLocked() >= 0 {
		return ErrStreamActive
	}
	c.messages = append(c.messages, msg)
	return nil
}

// AppendChunk grows the content of the streaming message in place.
func (c *Conversation) AppendChunk(chunk string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.streamingIndexLocked()
	if i < 0 {
		return ErrNoStream
	}
	c.messages[i].Content += chunk
	return nil
}

// CompleteStream replaces the streaming message's content with the
// final text and clears the streaming flag.
func (c *Conversation) CompleteStream(final string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.streamingIndexLocked()
	if i < 0 {
		return ErrNoStream
	}
	c.messages[i].Content = final
	c.messages[i].Streaming = false
	return nil
}

// DropStream removes the streaming message entirely. Used when a send
// is aborted and must leave no trace in the transcript.
func (c *Conversation) DropStream() {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.streamingIndexLocked()
	if i < 0 {
		return
	}
	c.messages = append(c.messages[:i], c.messages[i+1:]...)
}

// ReplaceAll swaps in a transcript loaded from the backend, preserving
// server order.
func (c *Conversation) ReplaceAll(messages []model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = make([]model.Message, len(messages))
	copy(c.messages, messages)
}

// Clear resets the transcript to a single fresh welcome message.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Messages returns a copy of the transcript in order.
func (c *Conversation) Messages() []model.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the transcript.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the trailing message and whether one exists.
func (c *Conversation) Last() (model.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return model.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// LastFailedInput returns the original text of the most recent error
// message, for manual retry.
func (c *Conversation) LastFailedInput() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Error {
			return c.messages[i].OriginalUserMessage, true
		}
	}
	return "", false
}

// History returns the trailing window of non-restricted, non-error
// messages in backend context format.
func (c *Conversation) History(window int) []model.HistoryMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.HistoryMessage
	for _, m := range c.messages {
		if m.Restricted || m.Error || m.Streaming {
			continue
		}
		out = append(out, model.HistoryMessage{Role: m.Role, Content: m.Content})
	}
	if window > 0 && len(out) > window {
		out = out[len(out)-window:]
	}
	return out
}

// streamingIndexLocked finds the streaming message. The invariant that
// at most one exists is maintained by Append.
func (c *Conversation) streamingIndexLocked() int {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Streaming {
			return i
		}
	}
	return -1
}
