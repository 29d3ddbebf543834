package filestore

import (
	"errors"
	"time"

	"truesignal/internal/logging"
	"truesignal/internal/types"
	"truesignal/internal/utils/id"
)

// ErrNotFound is returned when a lookup misses.
var ErrNotFound = errors.New("not found")

// TaskStore persists dashboard tasks.
type TaskStore struct {
	col *collection[types.Task]
}

func NewTaskStore(dir string, logger logging.Logger) (*TaskStore, error) {
	col, err := newCollection[types.Task](dir, "tasks", logger)
	if err != nil {
		return nil, err
	}
	s := &TaskStore{col: col}
	if len(col.snapshot()) == 0 {
		if err := s.seed(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// seed writes a couple of demo tasks so a fresh install has something to
// show.
func (s *TaskStore) seed() error {
	now := time.Now().UTC()
	demo := []types.Task{
		{
			ID:                   id.NewTaskID(),
			Name:                 "Tech news digest",
			Command:              "Collect the day's top technology stories and summarize them",
			Frequency:            "daily",
			ExecutionTime:        "09:00",
			NotificationChannels: []string{"email"},
			Status:               "active",
			CreatedAt:            now,
			UpdatedAt:            now,
		},
		{
			ID:                   id.NewTaskID(),
			Name:                 "Release watch",
			Command:              "Check tracked repositories for new releases",
			Frequency:            "hourly",
			ExecutionTime:        "",
			NotificationChannels: []string{"webhook"},
			Status:               "paused",
			CreatedAt:            now,
			UpdatedAt:            now,
		},
	}
	return s.col.mutate(func(items []types.Task) []types.Task {
		return append(items, demo...)
	})
}

func (s *TaskStore) List() []types.Task {
	return s.col.snapshot()
}

func (s *TaskStore) Get(taskID string) (types.Task, error) {
	for _, t := range s.col.snapshot() {
		if t.ID == taskID {
			return t, nil
		}
	}
	return types.Task{}, ErrNotFound
}

// Create assigns an id and timestamps and persists the task.
func (s *TaskStore) Create(task types.Task) (types.Task, error) {
	now := time.Now().UTC()
	task.ID = id.NewTaskID()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = "active"
	}
	err := s.col.mutate(func(items []types.Task) []types.Task {
		return append(items, task)
	})
	return task, err
}

// Update overwrites the mutable fields of an existing task.
func (s *TaskStore) Update(taskID string, patch types.Task) (types.Task, error) {
	var updated types.Task
	found := false
	err := s.col.mutate(func(items []types.Task) []types.Task {
		for i := range items {
			if items[i].ID != taskID {
				continue
			}
			found = true
			if patch.Name != "" {
				items[i].Name = patch.Name
			}
			if patch.Command != "" {
				items[i].Command = patch.Command
			}
			if patch.Frequency != "" {
				items[i].Frequency = patch.Frequency
			}
			if patch.ExecutionTime != "" {
				items[i].ExecutionTime = patch.ExecutionTime
			}
			if patch.NotificationChannels != nil {
				items[i].NotificationChannels = patch.NotificationChannels
			}
			if patch.Status != "" {
				items[i].Status = patch.Status
			}
			items[i].UpdatedAt = time.Now().UTC()
			updated = items[i]
			break
		}
		return items
	})
	if err != nil {
		return types.Task{}, err
	}
	if !found {
		return types.Task{}, ErrNotFound
	}
	return updated, nil
}

// Touch records the time of the latest execution.
func (s *TaskStore) Touch(taskID string, at time.Time) error {
	return s.col.mutate(func(items []types.Task) []types.Task {
		for i := range items {
			if items[i].ID == taskID {
				items[i].LastExecution = at
				items[i].UpdatedAt = at
				break
			}
		}
		return items
	})
}

func (s *TaskStore) Delete(taskID string) error {
	found := false
	err := s.col.mutate(func(items []types.Task) []types.Task {
		out := items[:0]
		for _, t := range items {
			if t.ID == taskID {
				found = true
				continue
			}
			out = append(out, t)
		}
		return out
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
