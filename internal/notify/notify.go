// Package notify keeps a small in-memory feed of user-facing notices, the
// kind the dashboard surfaces as toasts.
package notify

import (
	"sync"
	"time"

	"truesignal/internal/logging"
	"truesignal/internal/utils/id"
)

// Level classifies a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one entry in the feed.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Service holds a bounded, newest-first notification feed. Safe for
// concurrent use.
type Service struct {
	mu      sync.Mutex
	items   []Notification
	maxSize int
	logger  logging.Logger
}

const defaultMaxSize = 100

func NewService(logger logging.Logger) *Service {
	return &Service{
		maxSize: defaultMaxSize,
		logger:  logging.OrNop(logger),
	}
}

// Add prepends a notice and returns it. The oldest entries fall off past the
// size bound.
func (s *Service) Add(level Level, title, message string) Notification {
	n := Notification{
		ID:        id.NewNotificationID(),
		Level:     level,
		Title:     title,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	s.mu.Lock()
	s.items = append([]Notification{n}, s.items...)
	if len(s.items) > s.maxSize {
		s.items = s.items[:s.maxSize]
	}
	s.mu.Unlock()
	s.logger.Info("notification [%s] %s: %s", level, title, message)
	return n
}

// Dismiss drops the notice with the given id. Unknown ids are a no-op.
func (s *Service) Dismiss(noticeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.items {
		if n.ID == noticeID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// DismissAll clears the feed.
func (s *Service) DismissAll() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// List returns a snapshot of the feed, newest first.
func (s *Service) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}
