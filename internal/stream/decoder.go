// Package stream decodes newline-delimited chat response streams into
// incremental text state.
package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
)

// eventPrefix marks lines carrying an event record. All other lines
// (blank keep-alives, comments) are ignored.
const eventPrefix = "data: "

// maxLineBytes bounds a single event line.
const maxLineBytes = 1 << 20

// ChunkFunc receives each incremental text fragment in arrival order.
// Returning an error abandons the stream.
type ChunkFunc func(chunk string) error

// ServerError is an in-stream error event: the backend aborted the
// response and supplied a message for the user.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "stream error: " + e.Message
}

// Result is the outcome of a fully consumed stream.
type Result struct {
	// Text is the server's authoritative final text when a done event
	// arrived, otherwise the locally accumulated chunks.
	Text      string
	SessionID string
	// Done reports whether the server signalled completion.
	Done bool
}

// Decode reads the stream to completion, invoking onChunk for every
// chunk event. Malformed lines are skipped rather than aborting the
// stream. A done event replaces the accumulator with the server's
// final text and ends the read; an error event aborts immediately.
func Decode(r io.Reader, onChunk ChunkFunc) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var acc strings.Builder
	res := &Result{}

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, eventPrefix) {
			continue
		}

		var event model.StreamEvent
		if err := json.Unmarshal([]byte(line[len(eventPrefix):]), &event); err != nil {
			// Corrupt record; keep reading.
			continue
		}

		switch event.Type {
		case model.StreamEventChunk:
			acc.WriteString(event.Content)
			if onChunk != nil {
				if err := onChunk(event.Content); err != nil {
					return nil, err
				}
			}
		case model.StreamEventDone:
			res.Text = event.Response
			res.SessionID = event.SessionID
			res.Done = true
			return res, nil
		case model.StreamEventError:
			return nil, &ServerError{Message: event.Error}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	// Stream ended without a done event; the accumulated text is the
	// best available result.
	res.Text = acc.String()
	return res, nil
}
