package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Writer serializes events onto an open SSE response.
//
// Wire format, one event per logical message:
//
//	event: <type>
//	data: <json>
//	<blank line>
//
// Every event is flushed immediately so the peer sees it without buffering.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter wraps a response writer and its flusher. flusher may be nil in
// tests that only capture the bytes.
func NewWriter(w io.Writer, flusher http.Flusher) *Writer {
	return &Writer{w: w, flusher: flusher}
}

// Send marshals payload and writes it as a named SSE event.
func (sw *Writer) Send(event EventType, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}
