package client

import (
	"fmt"
	"strconv"
	"strings"

	"truesignal/internal/types"
)

// The adapter folds the source model the server stores into the task model
// the dashboard renders, and back. Priority and frequency are coarser than
// each other, so the mapping is bucketed rather than exact.

const sourceIDPrefix = "source-"

// PriorityToFrequency buckets a fetch priority into a schedule frequency.
// Unknown priorities fall back to daily.
func PriorityToFrequency(priority int) string {
	switch priority {
	case 10, 8:
		return "hourly"
	case 6, 5:
		return "daily"
	case 3, 1:
		return "weekly"
	default:
		return "daily"
	}
}

// FrequencyToPriority picks a representative priority for a frequency.
// Unknown frequencies fall back to 5.
func FrequencyToPriority(frequency string) int {
	switch frequency {
	case "hourly":
		return 8
	case "daily":
		return 6
	case "weekly":
		return 3
	case "once":
		return 5
	default:
		return 5
	}
}

// TaskIDFromSource derives the dashboard id for a source.
func TaskIDFromSource(id int64) string {
	return fmt.Sprintf("%s%d", sourceIDPrefix, id)
}

// SourceIDFromTask inverts TaskIDFromSource. Ids without the prefix or with
// a malformed suffix pass through unchanged with ok=false, so callers can
// route native task ids differently.
func SourceIDFromTask(taskID string) (int64, bool) {
	rest, found := strings.CutPrefix(taskID, sourceIDPrefix)
	if !found {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// AdaptSourceToTask renders a stored source as a dashboard task.
func AdaptSourceToTask(src types.Source) types.Task {
	name := src.AuthorName
	if name == "" {
		name = src.URL
	}
	status := "paused"
	if src.Enabled {
		status = "active"
	}
	task := types.Task{
		ID:        TaskIDFromSource(src.ID),
		Name:      name,
		Command:   src.URL,
		Frequency: PriorityToFrequency(src.Priority),
		Status:    status,
		CreatedAt: src.CreatedAt,
		UpdatedAt: src.UpdatedAt,
	}
	if src.LastFetchTime != nil {
		task.LastExecution = *src.LastFetchTime
	}
	return task
}

// AdaptTaskToSource renders a dashboard task as the source payload the
// server accepts on create and update.
func AdaptTaskToSource(task types.Task) types.SourceInput {
	return types.SourceInput{
		Name:     task.Name,
		URL:      task.Command,
		Priority: FrequencyToPriority(task.Frequency),
		Enabled:  task.Status == "active",
	}
}
