package sse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Event is one server-sent event as it arrives off the wire. Data is the raw
// payload; callers decode it against the event type.
type Event struct {
	Type string
	Data string
}

// Connection is a single live event stream. Recv blocks until the next event
// arrives and returns io.EOF when the server closes the stream cleanly.
// Close unblocks a pending Recv.
type Connection interface {
	Recv() (Event, error)
	Close() error
}

// Transport opens event streams. The production transport speaks HTTP; tests
// substitute scripted streams.
type Transport interface {
	Open(ctx context.Context, url string) (Connection, error)
}

// HTTPTransport opens text/event-stream connections over HTTP GET.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport returns a transport with no client timeout. Streams are
// long-lived; lifetime control belongs to the caller's context.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{Timeout: 0}}
}

func (t *HTTPTransport) Open(ctx context.Context, url string) (Connection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 0}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream endpoint returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}
	return &httpConnection{
		body:   resp.Body,
		reader: bufio.NewReader(resp.Body),
	}, nil
}

type httpConnection struct {
	body   io.ReadCloser
	reader *bufio.Reader
}

// Recv parses one event from the wire. Lines are accumulated until the blank
// separator line; "event:" sets the type and "data:" lines append to the
// payload, per the SSE framing rules.
func (c *httpConnection) Recv() (Event, error) {
	var (
		evt     Event
		dataSet bool
	)
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && dataSet {
				return evt, nil
			}
			return Event{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if dataSet || evt.Type != "" {
				if evt.Type == "" {
					evt.Type = "message"
				}
				return evt, nil
			}
			// Stray separator before any field; keep reading.
		case strings.HasPrefix(line, "event:"):
			evt.Type = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			chunk := strings.TrimPrefix(line, "data:")
			chunk = strings.TrimPrefix(chunk, " ")
			if dataSet {
				evt.Data += "\n" + chunk
			} else {
				evt.Data = chunk
				dataSet = true
			}
		case strings.HasPrefix(line, ":"):
			// Comment line, used by servers as keep-alive.
		}
	}
}

func (c *httpConnection) Close() error {
	return c.body.Close()
}

// RetryConfig shapes the outer retry loop around a stream session.
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultRetryConfig mirrors the reference client: three attempts one second
// apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, RetryDelay: time.Second}
}
