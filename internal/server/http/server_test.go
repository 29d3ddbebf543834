package http

import (
	"testing"

	"github.com/stretchr/testify/require"

	"truesignal/internal/config"
	"truesignal/internal/notify"
	"truesignal/internal/store/filestore"
	"truesignal/internal/stream"
)

// newTestServer builds a server over a throwaway data directory with an
// instant, card-free stream producer.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	tasks, err := filestore.NewTaskStore(dir, nil)
	require.NoError(t, err)
	messages, err := filestore.NewMessageStore(dir, nil)
	require.NoError(t, err)
	executions, err := filestore.NewExecutionStore(dir, nil)
	require.NoError(t, err)
	sources, err := filestore.NewSourceStore(dir, nil)
	require.NoError(t, err)

	producer := stream.NewProducer(stream.DefaultReplyBook(), stream.Config{}, nil)

	return NewServer(config.ServerConfig{CORSOrigins: []string{"*"}}, Stores{
		Tasks:      tasks,
		Messages:   messages,
		Executions: executions,
		Sources:    sources,
	}, producer, notify.NewService(nil), nil)
}
