package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"truesignal/internal/stream"
	"truesignal/internal/types"
)

// handleChatStream serves GET /api/chat/stream: the reply to the message
// query parameter, streamed character by character as SSE delta events.
//
// The stream ties its lifetime to the request context. When the client drops
// the connection the producer stops mid-sequence without emitting anything
// further; only a completed stream persists the AI message.
func (s *Server) handleChatStream(c *gin.Context) {
	taskID := c.Query("taskId")
	if taskID == "" {
		respondError(c, http.StatusBadRequest, "taskId is required")
		return
	}
	message := c.Query("message")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respondError(c, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.metrics.activeStreams.Inc()
	defer s.metrics.activeStreams.Dec()

	sw := stream.NewWriter(c.Writer, flusher)
	result, err := s.producer.Stream(c.Request.Context(), sw, stream.Request{
		TaskID:  taskID,
		Message: message,
	})
	if err != nil {
		s.logger.Error("chat stream for task %s failed: %v", taskID, err)
		return
	}
	if result.Aborted {
		s.logger.Info("chat stream for task %s aborted by client", taskID)
		return
	}

	s.metrics.streamEvents.WithLabelValues(string(stream.EventDone)).Inc()
	if result.Executed != nil {
		s.metrics.streamEvents.WithLabelValues(string(stream.EventExecution)).Inc()
	}

	// Persist the finished reply so reloading the dashboard shows it.
	if _, err := s.stores.Messages.Append(types.Message{
		TaskID:  taskID,
		Role:    "ai",
		Type:    "text",
		Content: result.Reply,
	}); err != nil {
		s.logger.Error("failed to persist stream reply for task %s: %v", taskID, err)
	}
}
