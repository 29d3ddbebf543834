package stream

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"truesignal/internal/logging"
)

// ErrMissingTaskID is returned when a stream request has no task identifier.
var ErrMissingTaskID = errors.New("task id required")

// Request is one chat turn submitted to the stream endpoint. Immutable once
// submitted.
type Request struct {
	TaskID      string
	Message     string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Config tunes the producer's pacing and the execution-card policy.
type Config struct {
	// MinDelay and MaxDelay bound the jitter window between delta events.
	MinDelay time.Duration
	MaxDelay time.Duration
	// ExecutionPause is the fixed wait before an execution card is emitted.
	ExecutionPause time.Duration
	// ExecutionChance is the probability in [0,1] that a stream ends with an
	// execution card. 0 disables the card, 1 forces it.
	ExecutionChance float64
}

// DefaultConfig matches the reference pacing: 30-70ms per character, a 500ms
// pause before the card, and a coin-flip card policy.
func DefaultConfig() Config {
	return Config{
		MinDelay:        30 * time.Millisecond,
		MaxDelay:        70 * time.Millisecond,
		ExecutionPause:  500 * time.Millisecond,
		ExecutionChance: 0.5,
	}
}

// Result describes what one stream attempt emitted.
type Result struct {
	// Reply is the full composed body, even when the stream aborted part way.
	Reply string
	// Aborted reports that the peer disconnected and the remaining sequence
	// was dropped without error.
	Aborted bool
	// Executed is the emitted execution card, when the policy fired.
	Executed *Execution
}

// Composer turns a chat message into a reply body.
type Composer func(message string) (string, error)

// Option configures a Producer.
type Option func(*Producer)

// WithComposer replaces the reply-book composer; used to inject generation
// backends or faults.
func WithComposer(compose Composer) Option {
	return func(p *Producer) {
		if compose != nil {
			p.compose = compose
		}
	}
}

// Producer turns chat requests into ordered delta/execution/done sequences
// on an SSE writer. One handler invocation owns one Producer stream call;
// there is no shared per-request state, so a single Producer serves
// concurrent connections.
type Producer struct {
	cfg     Config
	compose Composer
	logger  logging.Logger
}

// NewProducer builds a producer over the given reply book.
func NewProducer(book *ReplyBook, cfg Config, logger logging.Logger, opts ...Option) *Producer {
	if book == nil {
		book = DefaultReplyBook()
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	p := &Producer{
		cfg: cfg,
		compose: func(message string) (string, error) {
			return book.Compose(message), nil
		},
		logger: logging.OrNop(logger),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stream writes the reply for req as one delta event per character, an
// optional execution card, and a terminal done event.
//
// ctx must be the request context: its cancellation means the peer went
// away. The producer checks it before every write and aborts the remaining
// sequence silently; a write to a closed peer is never attempted and never
// surfaces as an error. A reply-generation fault emits a single error event
// instead, provided the peer is still connected.
func (p *Producer) Stream(ctx context.Context, sw *Writer, req Request) (Result, error) {
	if req.TaskID == "" {
		return Result{}, ErrMissingTaskID
	}
	message := req.Message
	if message == "" {
		message = DefaultGreeting
	}

	reply, err := p.compose(message)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Aborted: true}, nil
		}
		p.logger.Error("reply generation failed for task %s: %v", req.TaskID, err)
		_ = sw.Send(EventError, NewErrorPayload(fmt.Sprintf("failed to generate reply: %v", err)))
		return Result{}, err
	}

	runes := []rune(reply)
	for i, r := range runes {
		if ctx.Err() != nil {
			p.logger.Warn("peer disconnected, dropping %d of %d characters for task %s",
				len(runes)-i, len(runes), req.TaskID)
			return Result{Reply: reply, Aborted: true}, nil
		}
		if err := sw.Send(EventDelta, NewDelta(string(r))); err != nil {
			// Write failure means the peer is gone; stay silent.
			return Result{Reply: reply, Aborted: true}, nil
		}
		if !p.pause(ctx, p.jitter()) {
			return Result{Reply: reply, Aborted: true}, nil
		}
	}

	var executed *Execution
	if p.cfg.ExecutionChance > 0 && rand.Float64() < p.cfg.ExecutionChance {
		if !p.pause(ctx, p.cfg.ExecutionPause) {
			return Result{Reply: reply, Aborted: true}, nil
		}
		card := NewExecution("success", rand.Intn(91)+10,
			fmt.Sprintf("Processed the request about %q and gathered the related items.", message))
		if err := sw.Send(EventExecution, card); err != nil {
			return Result{Reply: reply, Aborted: true}, nil
		}
		executed = &card
	}

	if ctx.Err() != nil {
		return Result{Reply: reply, Aborted: true}, nil
	}
	if err := sw.Send(EventDone, NewDone()); err != nil {
		return Result{Reply: reply, Aborted: true}, nil
	}
	return Result{Reply: reply, Executed: executed}, nil
}

// jitter picks a delay inside the configured window.
func (p *Producer) jitter() time.Duration {
	window := p.cfg.MaxDelay - p.cfg.MinDelay
	if window <= 0 {
		return p.cfg.MinDelay
	}
	return p.cfg.MinDelay + time.Duration(rand.Int63n(int64(window)))
}

// pause waits for d or until the peer disconnects; false means disconnect.
func (p *Producer) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
