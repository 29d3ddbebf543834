package http

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"truesignal/internal/notify"
	"truesignal/internal/store/filestore"
	"truesignal/internal/types"
	"truesignal/internal/utils/id"
)

func (s *Server) handleListTasks(c *gin.Context) {
	respondData(c, http.StatusOK, s.stores.Tasks.List())
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.stores.Tasks.Get(c.Param("id"))
	if errors.Is(err, filestore.ErrNotFound) {
		respondError(c, http.StatusNotFound, "task not found")
		return
	}
	respondData(c, http.StatusOK, task)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var task types.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		respondError(c, http.StatusBadRequest, "invalid task payload")
		return
	}
	if task.Name == "" || task.Command == "" {
		respondError(c, http.StatusBadRequest, "name and command are required")
		return
	}
	created, err := s.stores.Tasks.Create(task)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save task")
		return
	}
	respondData(c, http.StatusCreated, created)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var patch types.Task
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "invalid task payload")
		return
	}
	updated, err := s.stores.Tasks.Update(c.Param("id"), patch)
	if errors.Is(err, filestore.ErrNotFound) {
		respondError(c, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save task")
		return
	}
	respondData(c, http.StatusOK, updated)
}

// handleDeleteTask removes the task together with its messages and run
// history.
func (s *Server) handleDeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	err := s.stores.Tasks.Delete(taskID)
	if errors.Is(err, filestore.ErrNotFound) {
		respondError(c, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete task")
		return
	}
	if err := s.stores.Messages.DeleteByTask(taskID); err != nil {
		s.logger.Error("failed to delete messages of task %s: %v", taskID, err)
	}
	if err := s.stores.Executions.DeleteByTask(taskID); err != nil {
		s.logger.Error("failed to delete run history of task %s: %v", taskID, err)
	}
	respondData(c, http.StatusOK, gin.H{"deleted": taskID})
}

// handleExecuteTask simulates one run: most runs succeed, a minority fail,
// and every run lands at the head of the task's history.
func (s *Server) handleExecuteTask(c *gin.Context) {
	task, err := s.stores.Tasks.Get(c.Param("id"))
	if errors.Is(err, filestore.ErrNotFound) {
		respondError(c, http.StatusNotFound, "task not found")
		return
	}

	now := time.Now().UTC()
	record := types.ExecutionRecord{
		ID:        id.NewExecutionID(),
		TaskID:    task.ID,
		TaskName:  task.Name,
		Status:    "success",
		Duration:  1 + rand.Float64()*3,
		Timestamp: now,
	}
	if rand.Float64() < 0.8 {
		record.ItemsCount = rand.Intn(50) + 1
		record.Message = fmt.Sprintf("Collected %d items for %q", record.ItemsCount, task.Name)
		s.notifier.Add(notify.LevelSuccess, "Task completed", record.Message)
	} else {
		record.Status = "error"
		record.Message = fmt.Sprintf("Run of %q failed: upstream did not respond", task.Name)
		s.notifier.Add(notify.LevelError, "Task failed", record.Message)
	}

	if err := s.stores.Executions.Prepend(record); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to record run")
		return
	}
	if err := s.stores.Tasks.Touch(task.ID, now); err != nil {
		s.logger.Error("failed to touch task %s: %v", task.ID, err)
	}
	respondData(c, http.StatusOK, record)
}

func (s *Server) handleExecutionHistory(c *gin.Context) {
	taskID := c.Param("id")
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	records := s.stores.Executions.ListByTask(taskID, limit, offset)
	respondData(c, http.StatusOK, gin.H{
		"records": records,
		"total":   s.stores.Executions.CountByTask(taskID),
		"limit":   limit,
		"offset":  offset,
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
