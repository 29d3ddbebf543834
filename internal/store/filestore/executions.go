package filestore

import (
	"truesignal/internal/logging"
	"truesignal/internal/types"
)

// ExecutionStore persists run records, newest first.
type ExecutionStore struct {
	col *collection[types.ExecutionRecord]
}

func NewExecutionStore(dir string, logger logging.Logger) (*ExecutionStore, error) {
	col, err := newCollection[types.ExecutionRecord](dir, "executions", logger)
	if err != nil {
		return nil, err
	}
	return &ExecutionStore{col: col}, nil
}

// Prepend stores a record at the head so listings come back newest first.
func (s *ExecutionStore) Prepend(record types.ExecutionRecord) error {
	return s.col.mutate(func(items []types.ExecutionRecord) []types.ExecutionRecord {
		return append([]types.ExecutionRecord{record}, items...)
	})
}

// ListByTask pages through a task's run history, newest first.
func (s *ExecutionStore) ListByTask(taskID string, limit, offset int) []types.ExecutionRecord {
	var matched []types.ExecutionRecord
	for _, r := range s.col.snapshot() {
		if r.TaskID == taskID {
			matched = append(matched, r)
		}
	}
	return page(matched, limit, offset)
}

// CountByTask reports how many runs a task has recorded.
func (s *ExecutionStore) CountByTask(taskID string) int {
	count := 0
	for _, r := range s.col.snapshot() {
		if r.TaskID == taskID {
			count++
		}
	}
	return count
}

// DeleteByTask drops a task's run history.
func (s *ExecutionStore) DeleteByTask(taskID string) error {
	return s.col.mutate(func(items []types.ExecutionRecord) []types.ExecutionRecord {
		out := items[:0]
		for _, r := range items {
			if r.TaskID != taskID {
				out = append(out, r)
			}
		}
		return out
	})
}
