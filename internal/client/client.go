// Package client is the Go counterpart of the dashboard frontend: a typed
// HTTP client over the task API plus the streaming chat channel.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"truesignal/internal/logging"
	"truesignal/internal/notify"
	"truesignal/internal/sse"
)

// envelope is the wire shape every API endpoint responds with.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Error   string          `json:"error"`
}

// Config holds the client knobs.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RetryBase seeds the exponential backoff of RetryRequest.
	RetryBase time.Duration
}

// DefaultConfig targets a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:3001",
		Timeout:   30 * time.Second,
		RetryBase: 100 * time.Millisecond,
	}
}

// Client talks to a task server. Zero-value is not usable; build with New.
type Client struct {
	cfg      Config
	http     *http.Client
	consumer *sse.Consumer
	logger   logging.Logger
	notifier *notify.Service
}

// New builds a client. The streaming consumer shares the client's logger but
// owns its own connection; plain requests and streams never contend.
func New(cfg Config, logger logging.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = DefaultConfig().RetryBase
	}
	logger = logging.OrNop(logger)
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		consumer: sse.NewConsumer(nil, logger),
		logger:   logger,
	}
}

// Request performs one API call and decodes the envelope payload into out.
// out may be nil when the caller only cares about success.
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &sse.TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &sse.TransportError{Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &sse.UpstreamError{Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// RetryRequest repeats Request with exponential backoff. The delay before
// retry n is RetryBase shifted left n times, so attempts spread out fast.
func (c *Client) RetryRequest(ctx context.Context, method, path string, body, out any, maxRetries int) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var last error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryBase * (1 << attempt)
			c.logger.Warn("retrying %s %s in %s (attempt %d/%d)", method, path, delay, attempt+1, maxRetries)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		last = c.Request(ctx, method, path, body, out)
		if last == nil {
			return nil
		}
	}
	if c.notifier != nil {
		c.notifier.Add(notify.LevelError, "Request failed",
			fmt.Sprintf("%s %s gave up after %d attempts", method, path, maxRetries))
	}
	return &sse.ExhaustedRetriesError{Attempts: maxRetries, Last: last}
}

// WithNotifier routes persistent request failures into a notification feed.
func (c *Client) WithNotifier(notifier *notify.Service) *Client {
	c.notifier = notifier
	return c
}
