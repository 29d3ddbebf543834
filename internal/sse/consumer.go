package sse

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"truesignal/internal/logging"
	"truesignal/internal/stream"
)

// ConnectionState tracks where a stream session is in its lifecycle.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Callbacks receive stream progress. Any field may be nil.
type Callbacks struct {
	// OnStreamingText fires after each delta with the full accumulated text.
	OnStreamingText func(text string)
	// OnSideChannel fires for execution cards and any event type the
	// consumer does not recognize.
	OnSideChannel func(evt Event)
	// OnComplete fires exactly once when the session resolves.
	OnComplete func(text string)
	// OnError fires exactly once when the session rejects.
	OnError func(err error)
}

// Consumer drives one stream session at a time against a Transport and folds
// delta events into a reply string.
type Consumer struct {
	transport Transport
	logger    logging.Logger

	mu    sync.Mutex
	state ConnectionState
	conn  Connection
}

// NewConsumer builds a consumer over the given transport. A nil transport
// gets the HTTP one.
func NewConsumer(transport Transport, logger logging.Logger) *Consumer {
	if transport == nil {
		transport = NewHTTPTransport()
	}
	return &Consumer{
		transport: transport,
		logger:    logging.OrNop(logger),
		state:     StateDisconnected,
	}
}

// State reports the current session state.
func (c *Consumer) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close tears down the live connection, if any. A Recv blocked on the
// connection unblocks with an error and the session settles through the
// partial-success rule.
func (c *Consumer) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Consumer) setState(s ConnectionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Stream opens url and consumes events until the session settles. It returns
// the accumulated reply text and settles exactly once: a terminal event, a
// transport failure, and Close all route to the same resolution paths.
//
// A transport failure mid-stream resolves with the partial text when any
// deltas arrived, and rejects with a TransportError otherwise. Malformed
// delta and execution payloads are logged and skipped; a malformed done
// payload still resolves with whatever accumulated.
func (c *Consumer) Stream(ctx context.Context, url string, cb Callbacks) (string, error) {
	if strings.TrimSpace(url) == "" {
		err := &InvalidRequestError{Reason: "empty stream url"}
		c.fail(cb, err)
		return "", err
	}

	c.setState(StateConnecting)
	conn, err := c.transport.Open(ctx, url)
	if err != nil {
		terr := &TransportError{Err: err}
		c.fail(cb, terr)
		return "", terr
	}
	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	var text strings.Builder
	for {
		evt, err := conn.Recv()
		if err != nil {
			if text.Len() > 0 {
				// Partial success: the transport died but content arrived.
				c.logger.Warn("stream interrupted after %d bytes: %v", text.Len(), err)
				c.resolve(cb, text.String())
				return text.String(), nil
			}
			terr := &TransportError{Err: err}
			c.fail(cb, terr)
			return "", terr
		}

		switch evt.Type {
		case string(stream.EventDelta):
			var delta stream.Delta
			if err := json.Unmarshal([]byte(evt.Data), &delta); err != nil {
				c.logger.Warn("skipping malformed delta payload: %v", err)
				continue
			}
			text.WriteString(delta.Content)
			if cb.OnStreamingText != nil {
				cb.OnStreamingText(text.String())
			}

		case string(stream.EventExecution):
			var card stream.Execution
			if err := json.Unmarshal([]byte(evt.Data), &card); err != nil {
				c.logger.Warn("skipping malformed execution payload: %v", err)
				continue
			}
			if cb.OnSideChannel != nil {
				cb.OnSideChannel(evt)
			}

		case string(stream.EventDone):
			c.resolve(cb, text.String())
			return text.String(), nil

		case string(stream.EventError):
			var payload stream.ErrorPayload
			msg := "stream error"
			if err := json.Unmarshal([]byte(evt.Data), &payload); err == nil && payload.Message != "" {
				msg = payload.Message
			}
			uerr := &UpstreamError{Message: msg}
			c.fail(cb, uerr)
			return text.String(), uerr

		default:
			if cb.OnSideChannel != nil {
				cb.OnSideChannel(evt)
			}
		}
	}
}

func (c *Consumer) resolve(cb Callbacks, text string) {
	c.setState(StateDisconnected)
	if cb.OnComplete != nil {
		cb.OnComplete(text)
	}
}

func (c *Consumer) fail(cb Callbacks, err error) {
	c.setState(StateError)
	c.logger.Error("stream session failed: %v", err)
	if cb.OnError != nil {
		cb.OnError(err)
	}
}
