package sse

import (
	"context"
	"time"

	"truesignal/internal/logging"
)

// StreamWithRetry runs consumer sessions against url until one settles
// successfully or the retry budget is spent. Each attempt is a fresh session
// with a fresh accumulation buffer; a fixed delay separates attempts.
//
// A partial-success resolution counts as success and ends the loop.
func StreamWithRetry(ctx context.Context, consumer *Consumer, url string, cb Callbacks, cfg RetryConfig, logger logging.Logger) (string, error) {
	logger = logging.OrNop(logger)
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}

	var last error
	attempts := 0
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			last = err
			break
		}
		attempts++
		text, err := consumer.Stream(ctx, url, cb)
		if err == nil {
			return text, nil
		}
		last = err
		logger.Warn("stream attempt %d/%d failed: %v", attempt, cfg.MaxRetries, err)
		if attempt == cfg.MaxRetries {
			break
		}
		select {
		case <-time.After(cfg.RetryDelay):
		case <-ctx.Done():
			return "", &ExhaustedRetriesError{Attempts: attempts, Last: ctx.Err()}
		}
	}
	// Attempts reflects sessions actually opened; a context canceled before
	// the first one reports zero.
	return "", &ExhaustedRetriesError{Attempts: attempts, Last: last}
}
