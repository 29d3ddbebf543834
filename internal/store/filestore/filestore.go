// Package filestore persists the dashboard's collections as JSON files under
// a data directory. Each collection lives in its own file and is rewritten
// atomically on every mutation; the data set is small enough that this is
// simpler and safer than incremental writes.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"truesignal/internal/logging"
)

type collection[T any] struct {
	mu     sync.Mutex
	path   string
	items  []T
	logger logging.Logger
}

func newCollection[T any](dir, name string, logger logging.Logger) (*collection[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	c := &collection[T]{
		path:   filepath.Join(dir, name+".json"),
		logger: logging.OrNop(logger),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	c.logger.Debug("opened %s with %d items", c.path, len(c.items))
	return c, nil
}

func (c *collection[T]) load() error {
	raw, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", c.path, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &c.items); err != nil {
		return fmt.Errorf("parse %s: %w", c.path, err)
	}
	return nil
}

// persist writes the collection through a temp file and rename so a crash
// mid-write never leaves a truncated collection behind. Caller holds mu.
func (c *collection[T]) persist() error {
	raw, err := json.MarshalIndent(c.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace %s: %w", c.path, err)
	}
	return nil
}

// snapshot copies the current items.
func (c *collection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// mutate runs fn over the items under the lock and persists the result.
func (c *collection[T]) mutate(fn func(items []T) []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = fn(c.items)
	return c.persist()
}

// page bounds a slice by limit and offset. limit <= 0 means everything past
// the offset.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
