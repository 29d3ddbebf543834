// Package stream implements the chat-stream event contract and the
// server-side producer that emits it over SSE.
package stream

import "time"

// EventType identifies a named SSE event on the chat stream.
type EventType string

const (
	// EventDelta carries one unit of reply text; consumers append, never replace.
	EventDelta EventType = "delta"
	// EventExecution is the side-channel card emitted after the reply body.
	EventExecution EventType = "execution"
	// EventDone terminates a successful stream.
	EventDone EventType = "done"
	// EventError terminates a failed stream.
	EventError EventType = "error"
)

// Delta is the payload of a delta event.
type Delta struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Execution is the payload of an execution event: synthetic run metrics
// attached to the chat turn. At most one is emitted per stream.
type Execution struct {
	Type      string    `json:"type"`
	Status    string    `json:"status"` // "success" or "error"
	ItemCount int       `json:"itemCount"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// Done is the payload of the terminal done event.
type Done struct {
	Type string `json:"type"`
}

// ErrorPayload is the payload of the terminal error event.
type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewDelta builds a delta payload for one unit of text.
func NewDelta(content string) Delta {
	return Delta{Type: string(EventDelta), Content: content}
}

// NewExecution builds an execution card payload stamped with the current time.
func NewExecution(status string, itemCount int, summary string) Execution {
	return Execution{
		Type:      string(EventExecution),
		Status:    status,
		ItemCount: itemCount,
		Summary:   summary,
		Timestamp: time.Now().UTC(),
	}
}

// NewDone builds the done payload.
func NewDone() Done {
	return Done{Type: string(EventDone)}
}

// NewErrorPayload builds an error payload with a human-readable message.
func NewErrorPayload(message string) ErrorPayload {
	return ErrorPayload{Type: string(EventError), Message: message}
}
