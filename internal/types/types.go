// Package types holds the persisted entities shared by the stores, the HTTP
// handlers, and the client adapter layer.
package types

import "time"

// Task is the dashboard-facing entity: a scheduled instruction with a
// frequency and notification channels. The mock server persists tasks
// directly; the adapter layer derives them from Source records.
type Task struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Command              string    `json:"command"`
	Frequency            string    `json:"frequency"`
	ExecutionTime        string    `json:"execution_time"`
	NotificationChannels []string  `json:"notification_channels"`
	Status               string    `json:"status"`
	LastExecution        time.Time `json:"last_execution,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Message is a single chat turn attached to a task.
type Message struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Role      string    `json:"role"` // "user" or "ai"
	Type      string    `json:"type"` // "text" or "execution"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// ExecutionRecord captures one simulated task run.
type ExecutionRecord struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"taskId"`
	TaskName   string    `json:"taskName"`
	Status     string    `json:"status"` // "success" or "error"
	Duration   float64   `json:"duration"`
	ItemsCount int       `json:"itemsCount"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Source is the backend-shaped entity the adapter layer maps onto tasks:
// an RSS feed subscription with a numeric priority instead of a frequency.
type Source struct {
	ID            int64      `json:"id"`
	Platform      string     `json:"platform,omitempty"`
	URL           string     `json:"url"`
	AuthorName    string     `json:"author_name"`
	Priority      int        `json:"priority"`
	LastFetchTime *time.Time `json:"last_fetch_time,omitempty"`
	Enabled       bool       `json:"enabled"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SourceInput is the write shape for creating or updating a source.
type SourceInput struct {
	Name     string `json:"name,omitempty"`
	URL      string `json:"url"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
}
