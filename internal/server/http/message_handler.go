package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"truesignal/internal/types"
)

func (s *Server) handleListMessages(c *gin.Context) {
	taskID := c.Param("id")
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	respondData(c, http.StatusOK, s.stores.Messages.ListByTask(taskID, limit, offset))
}

func (s *Server) handleSaveMessage(c *gin.Context) {
	var msg types.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		respondError(c, http.StatusBadRequest, "invalid message payload")
		return
	}
	if msg.TaskID == "" || msg.Content == "" {
		respondError(c, http.StatusBadRequest, "task_id and content are required")
		return
	}
	saved, err := s.stores.Messages.Append(msg)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save message")
		return
	}
	respondData(c, http.StatusCreated, saved)
}

func (s *Server) handleSearchMessages(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, http.StatusBadRequest, "q is required")
		return
	}
	respondData(c, http.StatusOK, s.stores.Messages.Search(query, c.Query("taskId")))
}

func (s *Server) handleMessageStatus(c *gin.Context) {
	var payload struct {
		MessageIDs []string `json:"messageIds"`
		Read       bool     `json:"read"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || len(payload.MessageIDs) == 0 {
		respondError(c, http.StatusBadRequest, "messageIds is required")
		return
	}
	changed, err := s.stores.Messages.SetRead(payload.MessageIDs, payload.Read)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update messages")
		return
	}
	respondData(c, http.StatusOK, gin.H{"updated": changed})
}

// handleExportMessages renders chat history as markdown, json or csv and
// serves it as a download. taskId narrows the export to one task; without
// it, every stored message is exported.
func (s *Server) handleExportMessages(c *gin.Context) {
	taskID := c.Query("taskId")
	label := taskID
	var messages []types.Message
	if taskID == "" {
		label = "all"
		messages = s.stores.Messages.List(0, 0)
	} else {
		messages = s.stores.Messages.ListByTask(taskID, 0, 0)
	}
	format := c.DefaultQuery("format", "markdown")
	stamp := time.Now().UTC().Format("2006-01-02")

	switch format {
	case "markdown":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=messages-%s-%s.md", label, stamp))
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", exportMarkdown(label, messages))
	case "json":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=messages-%s-%s.json", label, stamp))
		c.JSON(http.StatusOK, messages)
	case "csv":
		body, err := exportCSV(messages)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to render csv")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=messages-%s-%s.csv", label, stamp))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
	default:
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
	}
}

// exportMarkdown renders messages with a YAML front matter block followed by
// one section per message. label is the task id, or "all" for an unscoped
// export.
func exportMarkdown(label string, messages []types.Message) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "---\ntask_id: %s\nexported_at: %s\nmessage_count: %d\n---\n\n",
		label, time.Now().UTC().Format(time.RFC3339), len(messages))
	for _, m := range messages {
		fmt.Fprintf(&buf, "## %s (%s)\n\n%s\n\n", m.Role, m.Timestamp.Format(time.RFC3339), m.Content)
	}
	return buf.Bytes()
}

func exportCSV(messages []types.Message) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "task_id", "role", "type", "content", "timestamp"}); err != nil {
		return nil, err
	}
	for _, m := range messages {
		record := []string{m.ID, m.TaskID, m.Role, m.Type, m.Content, m.Timestamp.Format(time.RFC3339)}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
