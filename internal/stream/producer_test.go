package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sinkWriter collects SSE frames and can be told to start failing after a
// number of writes, standing in for a peer that went away.
type sinkWriter struct {
	buf       bytes.Buffer
	writes    int
	failAfter int
}

func (w *sinkWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.failAfter > 0 && w.writes > w.failAfter {
		return 0, errors.New("broken pipe")
	}
	return w.buf.Write(p)
}

func (w *sinkWriter) Flush() {}

type frame struct {
	event string
	data  string
}

func parseFrames(t *testing.T, raw string) []frame {
	t.Helper()
	var frames []frame
	for _, block := range strings.Split(strings.TrimSpace(raw), "\n\n") {
		if block == "" {
			continue
		}
		lines := strings.SplitN(block, "\n", 2)
		require.Len(t, lines, 2, "frame missing data line: %q", block)
		frames = append(frames, frame{
			event: strings.TrimPrefix(lines[0], "event: "),
			data:  strings.TrimPrefix(lines[1], "data: "),
		})
	}
	return frames
}

func instantConfig(chance float64) Config {
	return Config{ExecutionChance: chance}
}

func TestStreamEmitsDeltasInOrder(t *testing.T) {
	sink := &sinkWriter{}
	p := NewProducer(NewReplyBook(nil, "abc"), instantConfig(0), nil)

	result, err := p.Stream(context.Background(), NewWriter(sink, sink), Request{TaskID: "t1", Message: "anything"})
	require.NoError(t, err)
	assert.False(t, result.Aborted)
	assert.Equal(t, "abc", result.Reply)
	assert.Nil(t, result.Executed)

	frames := parseFrames(t, sink.buf.String())
	require.Len(t, frames, 4)

	var got strings.Builder
	for _, f := range frames[:3] {
		assert.Equal(t, "delta", f.event)
		var delta Delta
		require.NoError(t, json.Unmarshal([]byte(f.data), &delta))
		got.WriteString(delta.Content)
	}
	assert.Equal(t, "abc", got.String())
	assert.Equal(t, "done", frames[3].event)
}

func TestStreamEmitsExecutionCardWhenForced(t *testing.T) {
	sink := &sinkWriter{}
	p := NewProducer(NewReplyBook(nil, "hi"), instantConfig(1), nil)

	result, err := p.Stream(context.Background(), NewWriter(sink, sink), Request{TaskID: "t1", Message: "status"})
	require.NoError(t, err)
	require.NotNil(t, result.Executed)

	frames := parseFrames(t, sink.buf.String())
	require.Len(t, frames, 4)
	assert.Equal(t, "execution", frames[2].event)
	assert.Equal(t, "done", frames[3].event)

	var card Execution
	require.NoError(t, json.Unmarshal([]byte(frames[2].data), &card))
	assert.Equal(t, "success", card.Status)
	assert.GreaterOrEqual(t, card.ItemCount, 10)
	assert.Contains(t, card.Summary, "status")
}

func TestStreamAbortsSilentlyOnWriteFailure(t *testing.T) {
	sink := &sinkWriter{failAfter: 2}
	p := NewProducer(NewReplyBook(nil, "abcdef"), instantConfig(1), nil)

	result, err := p.Stream(context.Background(), NewWriter(sink, sink), Request{TaskID: "t1", Message: "x"})
	require.NoError(t, err)
	assert.True(t, result.Aborted)

	// Only the frames written before the failure made it out; the done and
	// execution events never did.
	frames := parseFrames(t, sink.buf.String())
	require.Len(t, frames, 2)
	for _, f := range frames {
		assert.Equal(t, "delta", f.event)
	}
}

func TestStreamAbortsSilentlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &sinkWriter{}
	p := NewProducer(NewReplyBook(nil, "abcdef"), instantConfig(1), nil)

	result, err := p.Stream(ctx, NewWriter(sink, sink), Request{TaskID: "t1", Message: "x"})
	require.NoError(t, err)
	assert.True(t, result.Aborted)
	assert.Empty(t, sink.buf.String())
}

func TestStreamRequiresTaskID(t *testing.T) {
	sink := &sinkWriter{}
	p := NewProducer(nil, instantConfig(0), nil)

	_, err := p.Stream(context.Background(), NewWriter(sink, sink), Request{Message: "x"})
	assert.ErrorIs(t, err, ErrMissingTaskID)
	assert.Empty(t, sink.buf.String())
}

func TestStreamDefaultsEmptyMessageToGreeting(t *testing.T) {
	var composed string
	p := NewProducer(nil, instantConfig(0), nil, WithComposer(func(message string) (string, error) {
		composed = message
		return "ok", nil
	}))

	sink := &sinkWriter{}
	_, err := p.Stream(context.Background(), NewWriter(sink, sink), Request{TaskID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, DefaultGreeting, composed)
}

func TestStreamEmitsErrorEventOnComposerFailure(t *testing.T) {
	p := NewProducer(nil, instantConfig(0), nil, WithComposer(func(string) (string, error) {
		return "", errors.New("model unavailable")
	}))

	sink := &sinkWriter{}
	_, err := p.Stream(context.Background(), NewWriter(sink, sink), Request{TaskID: "t1", Message: "x"})
	require.Error(t, err)

	frames := parseFrames(t, sink.buf.String())
	require.Len(t, frames, 1)
	assert.Equal(t, "error", frames[0].event)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal([]byte(frames[0].data), &payload))
	assert.Contains(t, payload.Message, "model unavailable")
}

func TestReplyBookFirstMatchWins(t *testing.T) {
	book := NewReplyBook([]CannedReply{
		{Trigger: "hello", Response: "first"},
		{Trigger: "hello", Response: "second"},
	}, "fallback %q")

	assert.Equal(t, "first", book.Compose("hello"))
	assert.Equal(t, `fallback "nothing"`, book.Compose("nothing"))
}
