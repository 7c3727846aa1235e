package model

import (
	"time"
)

// Bookmark marks a single transcript entry for later retrieval. Keyed
// by session, message index and timestamp on the backend.
type Bookmark struct {
	SessionID    string    `json:"sessionId"`
	MessageIndex int       `json:"messageIndex"`
	Timestamp    time.Time `json:"timestamp"`
	Content      string    `json:"content,omitempty"`
}

// RatingValue is a per-message thumbs up or down.
type RatingValue string

const (
	RatingUp   RatingValue = "up"
	RatingDown RatingValue = "down"
)

// Rating is per-message feedback with an optional free-text reason.
type Rating struct {
	ID           string      `json:"id,omitempty"`
	SessionID    string      `json:"sessionId"`
	MessageIndex int         `json:"messageIndex"`
	Value        RatingValue `json:"value"`
	Reason       string      `json:"reason,omitempty"`
	CreatedAt    time.Time   `json:"createdAt,omitempty"`
}

// ReportStatus is the triage state of a content report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report is a user- or system-initiated content report.
type Report struct {
	ID         string       `json:"id,omitempty"`
	SessionID  string       `json:"sessionId"`
	Content    string       `json:"content"`
	Category   string       `json:"category,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	Status     ReportStatus `json:"status,omitempty"`
	AdminNotes string       `json:"adminNotes,omitempty"`
	CreatedAt  time.Time    `json:"createdAt,omitempty"`
}

// ChatHistory is a session's persisted transcript and display name.
type ChatHistory struct {
	SessionID string    `json:"sessionId"`
	Name      string    `json:"name,omitempty"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// UploadKind is the media class of an uploaded file.
type UploadKind string

const (
	UploadImage    UploadKind = "image"
	UploadAudio    UploadKind = "audio"
	UploadVideo    UploadKind = "video"
	UploadDocument UploadKind = "document"
)

// UploadResult is the hosted location of an uploaded file, referenced
// later from a chat message.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
}
