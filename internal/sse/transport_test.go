package sse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportParsesEventFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: delta\ndata: {\"content\":\"a\"}\n\n")
		fmt.Fprint(w, ": keep-alive\n")
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
	}))
	defer srv.Close()

	conn, err := NewHTTPTransport().Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer conn.Close()

	evt, err := conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, "delta", evt.Type)
	assert.Equal(t, `{"content":"a"}`, evt.Data)

	evt, err = conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, "done", evt.Type)

	_, err = conn.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestHTTPTransportJoinsMultilineData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: delta\ndata: line1\ndata: line2\n\n")
	}))
	defer srv.Close()

	conn, err := NewHTTPTransport().Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer conn.Close()

	evt, err := conn.Recv()
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", evt.Data)
}

func TestHTTPTransportRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPTransport().Open(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPTransportRejectsWrongContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "{}")
	}))
	defer srv.Close()

	_, err := NewHTTPTransport().Open(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content type")
}
