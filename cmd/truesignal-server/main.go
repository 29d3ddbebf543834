// truesignal-server runs the dashboard API: task and source management,
// chat history, and the streaming chat endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"truesignal/internal/config"
	"truesignal/internal/logging"
	"truesignal/internal/notify"
	serverhttp "truesignal/internal/server/http"
	"truesignal/internal/store/filestore"
	"truesignal/internal/stream"
)

func main() {
	var (
		configPath string
		port       int
		dataDir    string
	)

	root := &cobra.Command{
		Use:   "truesignal-server",
		Short: "Task dashboard API with a streaming chat channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.Data.Dir = dataDir
			}
			return run(cfg)
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	root.Flags().IntVarP(&port, "port", "p", 3001, "listen port")
	root.Flags().StringVar(&dataDir, "data-dir", "./data", "data directory")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "truesignal-server: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := logging.NewComponentLogger("Server")
	logger.Info("starting with data dir %s", cfg.Data.Dir)

	tasks, err := filestore.NewTaskStore(cfg.Data.Dir, logger)
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}
	messages, err := filestore.NewMessageStore(cfg.Data.Dir, logger)
	if err != nil {
		return fmt.Errorf("open message store: %w", err)
	}
	executions, err := filestore.NewExecutionStore(cfg.Data.Dir, logger)
	if err != nil {
		return fmt.Errorf("open execution store: %w", err)
	}
	sources, err := filestore.NewSourceStore(cfg.Data.Dir, logger)
	if err != nil {
		return fmt.Errorf("open source store: %w", err)
	}

	producer := stream.NewProducer(stream.DefaultReplyBook(), stream.Config{
		MinDelay:        cfg.Stream.MinDelay,
		MaxDelay:        cfg.Stream.MaxDelay,
		ExecutionPause:  cfg.Stream.ExecutionPause,
		ExecutionChance: cfg.Stream.ExecutionChance,
	}, logging.NewStreamLogger("Producer"))

	notifier := notify.NewService(logger)

	srv := serverhttp.NewServer(cfg.Server, serverhttp.Stores{
		Tasks:      tasks,
		Messages:   messages,
		Executions: executions,
		Sources:    sources,
	}, producer, notifier, logger)

	httpServer := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     srv.Routes(),
		ReadTimeout: 15 * time.Second,
		// No write timeout: chat streams stay open as long as the client does.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("shutdown: %v", err)
			return err
		}
	}
	logger.Info("stopped")
	return nil
}
