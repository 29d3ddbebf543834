// Package http wires the dashboard API: task and source CRUD, chat history,
// message export, and the SSE chat stream.
package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"truesignal/internal/config"
	"truesignal/internal/logging"
	"truesignal/internal/notify"
	"truesignal/internal/store/filestore"
	"truesignal/internal/stream"
)

// Stores bundles the persistence handles the server needs.
type Stores struct {
	Tasks      *filestore.TaskStore
	Messages   *filestore.MessageStore
	Executions *filestore.ExecutionStore
	Sources    *filestore.SourceStore
}

// Server owns the HTTP surface.
type Server struct {
	cfg      config.ServerConfig
	logger   logging.Logger
	stores   Stores
	producer *stream.Producer
	notifier *notify.Service
	metrics  *serverMetrics
	registry *prometheus.Registry
}

// NewServer assembles the server. producer drives the chat stream; notifier
// collects the notices task runs generate.
func NewServer(cfg config.ServerConfig, stores Stores, producer *stream.Producer, notifier *notify.Service, logger logging.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Server{
		cfg:      cfg,
		logger:   logging.OrNop(logger),
		stores:   stores,
		producer: producer,
		notifier: notifier,
		metrics:  newServerMetrics(registry),
		registry: registry,
	}
}

// Routes builds the gin engine with every endpoint mounted.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))
	router.Use(s.metrics.instrument())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.CORSOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Cache-Control")
	router.Use(cors.New(corsCfg))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.POST("/tasks/:id/execute", s.handleExecuteTask)
		api.GET("/tasks/:id/execution-history", s.handleExecutionHistory)
		api.GET("/tasks/:id/messages", s.handleListMessages)

		api.POST("/messages", s.handleSaveMessage)
		api.GET("/messages/search", s.handleSearchMessages)
		api.PUT("/messages/status", s.handleMessageStatus)
		api.GET("/messages/export", s.handleExportMessages)

		api.GET("/sources", s.handleListSources)
		api.POST("/sources", s.handleCreateSource)
		api.PUT("/sources/:id", s.handleUpdateSource)
		api.DELETE("/sources/:id", s.handleDeleteSource)

		api.GET("/notifications", s.handleListNotifications)
		api.DELETE("/notifications/:id", s.handleDismissNotification)

		api.GET("/chat/stream", s.handleChatStream)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	respondData(c, http.StatusOK, gin.H{"status": "ok"})
}
