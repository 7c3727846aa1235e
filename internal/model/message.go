// Package model defines data structures for the chat widget.
package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents one entry in the visible transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Streaming is set only while an assistant message is being
	// incrementally filled. At most one message carries it at a time.
	Streaming bool `json:"isStreaming,omitempty"`

	// Restricted marks a user message blocked by the content guard.
	// The original text is never stored here, only the match metadata.
	Restricted         bool   `json:"isRestricted,omitempty"`
	RestrictedCategory string `json:"restrictedCategory,omitempty"`
	RestrictedReason   string `json:"restrictedReason,omitempty"`

	// Error marks a synthetic assistant message describing a transport
	// failure. OriginalUserMessage carries the failed input for retry.
	Error               bool   `json:"isError,omitempty"`
	OriginalUserMessage string `json:"originalUserMessage,omitempty"`
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(id, content string) Message {
	return Message{
		ID:        id,
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message. When streaming is
// true the content starts empty and is filled chunk by chunk.
func NewAssistantMessage(id, content string, streaming bool) Message {
	return Message{
		ID:        id,
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
		Streaming: streaming,
	}
}

// NewRestrictedMessage creates the redacted placeholder recorded in
// place of a blocked user message.
func NewRestrictedMessage(id, category, reason string) Message {
	return Message{
		ID:                 id,
		Role:               RoleUser,
		Content:            "[message blocked]",
		Timestamp:          time.Now(),
		Restricted:         true,
		RestrictedCategory: category,
		RestrictedReason:   reason,
	}
}

// NewErrorMessage creates the synthetic assistant message appended when
// a send fails, carrying the original input so the user can retry.
func NewErrorMessage(id, cause, originalUserMessage string) Message {
	return Message{
		ID:                  id,
		Role:                RoleAssistant,
		Content:             cause,
		Timestamp:           time.Now(),
		Error:               true,
		OriginalUserMessage: originalUserMessage,
	}
}
