package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truesignal/internal/types"
)

func TestPriorityFrequencyBucketsRoundTrip(t *testing.T) {
	// The two mappings are lossy, but a round trip must land in the same
	// frequency bucket it started from.
	for _, priority := range []int{10, 8, 6, 5, 3, 1} {
		freq := PriorityToFrequency(priority)
		back := FrequencyToPriority(freq)
		assert.Equal(t, freq, PriorityToFrequency(back), "priority %d", priority)
	}
}

func TestPriorityFrequencyFallbacks(t *testing.T) {
	assert.Equal(t, "daily", PriorityToFrequency(7))
	assert.Equal(t, "daily", PriorityToFrequency(-1))
	assert.Equal(t, 5, FrequencyToPriority("monthly"))
	assert.Equal(t, 5, FrequencyToPriority(""))
}

func TestSourceTaskIDRoundTrip(t *testing.T) {
	taskID := TaskIDFromSource(42)
	assert.Equal(t, "source-42", taskID)

	id, ok := SourceIDFromTask(taskID)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestSourceIDFromTaskPassesThroughForeignIDs(t *testing.T) {
	for _, taskID := range []string{"task_9f2", "source-", "source-abc", ""} {
		_, ok := SourceIDFromTask(taskID)
		assert.False(t, ok, "id %q", taskID)
	}
}

func TestAdaptSourceToTask(t *testing.T) {
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := types.Source{
		ID:            7,
		URL:           "https://feed.example/rss",
		AuthorName:    "Example Feed",
		Priority:      8,
		LastFetchTime: &fetched,
		Enabled:       true,
	}

	task := AdaptSourceToTask(src)
	assert.Equal(t, "source-7", task.ID)
	assert.Equal(t, "Example Feed", task.Name)
	assert.Equal(t, "https://feed.example/rss", task.Command)
	assert.Equal(t, "hourly", task.Frequency)
	assert.Equal(t, "active", task.Status)
	assert.Equal(t, fetched, task.LastExecution)
}

func TestAdaptSourceToTaskFallsBackToURLName(t *testing.T) {
	task := AdaptSourceToTask(types.Source{ID: 1, URL: "https://feed.example/rss", Enabled: false})
	assert.Equal(t, "https://feed.example/rss", task.Name)
	assert.Equal(t, "paused", task.Status)
}

func TestAdaptTaskToSource(t *testing.T) {
	input := AdaptTaskToSource(types.Task{
		Name:      "Example Feed",
		Command:   "https://feed.example/rss",
		Frequency: "weekly",
		Status:    "active",
	})
	assert.Equal(t, "Example Feed", input.Name)
	assert.Equal(t, "https://feed.example/rss", input.URL)
	assert.Equal(t, 3, input.Priority)
	assert.True(t, input.Enabled)
}
