package filestore

import (
	"strings"
	"time"

	"truesignal/internal/logging"
	"truesignal/internal/types"
	"truesignal/internal/utils/id"
)

// MessageStore persists chat messages, oldest first.
type MessageStore struct {
	col *collection[types.Message]
}

func NewMessageStore(dir string, logger logging.Logger) (*MessageStore, error) {
	col, err := newCollection[types.Message](dir, "messages", logger)
	if err != nil {
		return nil, err
	}
	return &MessageStore{col: col}, nil
}

// Append stores a message, filling in the id and timestamp when the caller
// left them empty.
func (s *MessageStore) Append(msg types.Message) (types.Message, error) {
	if msg.ID == "" {
		msg.ID = id.NewMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.Type == "" {
		msg.Type = "text"
	}
	err := s.col.mutate(func(items []types.Message) []types.Message {
		return append(items, msg)
	})
	return msg, err
}

// List pages through every stored message in arrival order.
func (s *MessageStore) List(limit, offset int) []types.Message {
	return page(s.col.snapshot(), limit, offset)
}

// ListByTask pages through a task's messages in arrival order.
func (s *MessageStore) ListByTask(taskID string, limit, offset int) []types.Message {
	var matched []types.Message
	for _, m := range s.col.snapshot() {
		if m.TaskID == taskID {
			matched = append(matched, m)
		}
	}
	return page(matched, limit, offset)
}

// Search matches query against message content, case-insensitively. An empty
// taskID searches every task.
func (s *MessageStore) Search(query, taskID string) []types.Message {
	needle := strings.ToLower(query)
	var matched []types.Message
	for _, m := range s.col.snapshot() {
		if taskID != "" && m.TaskID != taskID {
			continue
		}
		if strings.Contains(strings.ToLower(m.Content), needle) {
			matched = append(matched, m)
		}
	}
	if matched == nil {
		matched = []types.Message{}
	}
	return matched
}

// SetRead flags the given messages. Unknown ids are skipped; the count of
// messages actually changed is returned.
func (s *MessageStore) SetRead(ids []string, read bool) (int, error) {
	wanted := make(map[string]bool, len(ids))
	for _, msgID := range ids {
		wanted[msgID] = true
	}
	changed := 0
	err := s.col.mutate(func(items []types.Message) []types.Message {
		for i := range items {
			if wanted[items[i].ID] && items[i].Read != read {
				items[i].Read = read
				changed++
			}
		}
		return items
	})
	return changed, err
}

// DeleteByTask drops every message of a task; used when the task itself is
// deleted.
func (s *MessageStore) DeleteByTask(taskID string) error {
	return s.col.mutate(func(items []types.Message) []types.Message {
		out := items[:0]
		for _, m := range items {
			if m.TaskID != taskID {
				out = append(out, m)
			}
		}
		return out
	})
}
