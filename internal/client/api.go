package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"truesignal/internal/sse"
	"truesignal/internal/types"
)

// ListTasks fetches every source and adapts it to the task model.
func (c *Client) ListTasks(ctx context.Context) ([]types.Task, error) {
	var sources []types.Source
	if err := c.Request(ctx, http.MethodGet, "/api/sources", nil, &sources); err != nil {
		return nil, err
	}
	tasks := make([]types.Task, 0, len(sources))
	for _, src := range sources {
		tasks = append(tasks, AdaptSourceToTask(src))
	}
	return tasks, nil
}

// CreateTask adapts the task to a source payload and creates it.
func (c *Client) CreateTask(ctx context.Context, task types.Task) (types.Task, error) {
	var created types.Source
	if err := c.Request(ctx, http.MethodPost, "/api/sources", AdaptTaskToSource(task), &created); err != nil {
		return types.Task{}, err
	}
	return AdaptSourceToTask(created), nil
}

// UpdateTask pushes task changes to the backing source. Ids that do not name
// a source are rejected up front.
func (c *Client) UpdateTask(ctx context.Context, task types.Task) (types.Task, error) {
	id, ok := SourceIDFromTask(task.ID)
	if !ok {
		return types.Task{}, &sse.InvalidRequestError{Reason: fmt.Sprintf("task %q is not backed by a source", task.ID)}
	}
	var updated types.Source
	if err := c.Request(ctx, http.MethodPut, fmt.Sprintf("/api/sources/%d", id), AdaptTaskToSource(task), &updated); err != nil {
		return types.Task{}, err
	}
	return AdaptSourceToTask(updated), nil
}

// DeleteTask removes the backing source.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	id, ok := SourceIDFromTask(taskID)
	if !ok {
		return &sse.InvalidRequestError{Reason: fmt.Sprintf("task %q is not backed by a source", taskID)}
	}
	return c.Request(ctx, http.MethodDelete, fmt.Sprintf("/api/sources/%d", id), nil, nil)
}

// ExecuteTask triggers a run and returns its record.
func (c *Client) ExecuteTask(ctx context.Context, taskID string) (types.ExecutionRecord, error) {
	var record types.ExecutionRecord
	err := c.Request(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(taskID)+"/execute", nil, &record)
	return record, err
}

// ExecutionHistory pages through past runs of a task.
func (c *Client) ExecutionHistory(ctx context.Context, taskID string, limit, offset int) ([]types.ExecutionRecord, error) {
	var records []types.ExecutionRecord
	path := fmt.Sprintf("/api/tasks/%s/execution-history?limit=%d&offset=%d", url.PathEscape(taskID), limit, offset)
	err := c.Request(ctx, http.MethodGet, path, nil, &records)
	return records, err
}

// Messages fetches the chat history of a task.
func (c *Client) Messages(ctx context.Context, taskID string, limit, offset int) ([]types.Message, error) {
	var messages []types.Message
	path := fmt.Sprintf("/api/tasks/%s/messages?limit=%d&offset=%d", url.PathEscape(taskID), limit, offset)
	err := c.Request(ctx, http.MethodGet, path, nil, &messages)
	return messages, err
}

// SaveMessage appends a chat turn. Transient failures retry with backoff.
func (c *Client) SaveMessage(ctx context.Context, msg types.Message) (types.Message, error) {
	var saved types.Message
	err := c.RetryRequest(ctx, http.MethodPost, "/api/messages", msg, &saved, 3)
	return saved, err
}

// SearchMessages matches message content against query, optionally scoped to
// one task.
func (c *Client) SearchMessages(ctx context.Context, query, taskID string) ([]types.Message, error) {
	var messages []types.Message
	path := "/api/messages/search?q=" + url.QueryEscape(query)
	if taskID != "" {
		path += "&taskId=" + url.QueryEscape(taskID)
	}
	err := c.Request(ctx, http.MethodGet, path, nil, &messages)
	return messages, err
}

// MarkMessagesRead flags the given messages as read.
func (c *Client) MarkMessagesRead(ctx context.Context, ids []string) error {
	payload := map[string]any{"messageIds": ids, "read": true}
	return c.Request(ctx, http.MethodPut, "/api/messages/status", payload, nil)
}

// Chat opens the streaming chat channel for a task and consumes the reply.
// The whole session retries as a unit: each attempt reconnects and refolds
// the text from scratch.
func (c *Client) Chat(ctx context.Context, taskID, message string, cb sse.Callbacks) (string, error) {
	if taskID == "" {
		err := &sse.InvalidRequestError{Reason: "task id required"}
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return "", err
	}
	streamURL := fmt.Sprintf("%s/api/chat/stream?taskId=%s&message=%s",
		c.cfg.BaseURL, url.QueryEscape(taskID), url.QueryEscape(message))
	return sse.StreamWithRetry(ctx, c.consumer, streamURL, cb, sse.DefaultRetryConfig(), c.logger)
}

// CloseStream tears down a live chat stream, if any.
func (c *Client) CloseStream() error {
	return c.consumer.Close()
}
