package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"truesignal/internal/store/filestore"
	"truesignal/internal/types"
)

func (s *Server) handleListSources(c *gin.Context) {
	respondData(c, http.StatusOK, s.stores.Sources.List())
}

func (s *Server) handleCreateSource(c *gin.Context) {
	var input types.SourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid source payload")
		return
	}
	if input.URL == "" {
		respondError(c, http.StatusBadRequest, "url is required")
		return
	}
	created, err := s.stores.Sources.Create(input)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save source")
		return
	}
	respondData(c, http.StatusCreated, created)
}

func (s *Server) handleUpdateSource(c *gin.Context) {
	sourceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid source id")
		return
	}
	var input types.SourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid source payload")
		return
	}
	updated, err := s.stores.Sources.Update(sourceID, input)
	if errors.Is(err, filestore.ErrNotFound) {
		respondError(c, http.StatusNotFound, "source not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save source")
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (s *Server) handleDeleteSource(c *gin.Context) {
	sourceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid source id")
		return
	}
	err = s.stores.Sources.Delete(sourceID)
	if errors.Is(err, filestore.ErrNotFound) {
		respondError(c, http.StatusNotFound, "source not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete source")
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": sourceID})
}

func (s *Server) handleListNotifications(c *gin.Context) {
	respondData(c, http.StatusOK, s.notifier.List())
}

func (s *Server) handleDismissNotification(c *gin.Context) {
	s.notifier.Dismiss(c.Param("id"))
	respondData(c, http.StatusOK, gin.H{"dismissed": c.Param("id")})
}
