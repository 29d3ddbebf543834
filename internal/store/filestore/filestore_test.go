package filestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truesignal/internal/types"
)

func TestTaskStoreSeedsDemoTasksOnce(t *testing.T) {
	dir := t.TempDir()

	store, err := NewTaskStore(dir, nil)
	require.NoError(t, err)
	seeded := store.List()
	require.NotEmpty(t, seeded)

	// Reopening the same directory must not seed again.
	reopened, err := NewTaskStore(dir, nil)
	require.NoError(t, err)
	assert.Len(t, reopened.List(), len(seeded))
}

func TestTaskStoreCRUD(t *testing.T) {
	store, err := NewTaskStore(t.TempDir(), nil)
	require.NoError(t, err)

	created, err := store.Create(types.Task{Name: "n", Command: "c", Frequency: "daily"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "n", got.Name)

	updated, err := store.Update(created.ID, types.Task{Status: "paused"})
	require.NoError(t, err)
	assert.Equal(t, "paused", updated.Status)
	assert.Equal(t, "n", updated.Name)

	_, err = store.Update("missing", types.Task{})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(created.ID))
	_, err = store.Get(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTaskStore(dir, nil)
	require.NoError(t, err)
	created, err := store.Create(types.Task{Name: "persisted", Command: "c"})
	require.NoError(t, err)

	reopened, err := NewTaskStore(dir, nil)
	require.NoError(t, err)
	got, err := reopened.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Name)
}

func TestMessageStorePagingAndSearch(t *testing.T) {
	store, err := NewMessageStore(t.TempDir(), nil)
	require.NoError(t, err)

	for _, content := range []string{"alpha one", "beta two", "alpha three"} {
		_, err := store.Append(types.Message{TaskID: "t1", Role: "user", Content: content})
		require.NoError(t, err)
	}
	_, err = store.Append(types.Message{TaskID: "t2", Role: "user", Content: "alpha other"})
	require.NoError(t, err)

	paged := store.ListByTask("t1", 2, 1)
	require.Len(t, paged, 2)
	assert.Equal(t, "beta two", paged[0].Content)
	assert.Equal(t, "alpha three", paged[1].Content)

	assert.Len(t, store.List(0, 0), 4)
	assert.Len(t, store.Search("ALPHA", ""), 3)
	assert.Len(t, store.Search("alpha", "t1"), 2)
	assert.Empty(t, store.Search("gamma", ""))
}

func TestMessageStoreSetReadAndCascade(t *testing.T) {
	store, err := NewMessageStore(t.TempDir(), nil)
	require.NoError(t, err)

	first, err := store.Append(types.Message{TaskID: "t1", Content: "a"})
	require.NoError(t, err)
	second, err := store.Append(types.Message{TaskID: "t1", Content: "b"})
	require.NoError(t, err)

	changed, err := store.SetRead([]string{first.ID, "missing"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	messages := store.ListByTask("t1", 0, 0)
	assert.True(t, messages[0].Read)
	assert.False(t, messages[1].Read)
	_ = second

	require.NoError(t, store.DeleteByTask("t1"))
	assert.Empty(t, store.ListByTask("t1", 0, 0))
}

func TestExecutionStoreNewestFirst(t *testing.T) {
	store, err := NewExecutionStore(t.TempDir(), nil)
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Prepend(types.ExecutionRecord{
			ID:        string(rune('a' + i)),
			TaskID:    "t1",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records := store.ListByTask("t1", 0, 0)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "a", records[2].ID)
	assert.Equal(t, 3, store.CountByTask("t1"))

	limited := store.ListByTask("t1", 1, 1)
	require.Len(t, limited, 1)
	assert.Equal(t, "b", limited[0].ID)
}

func TestSourceStoreIncrementsIDs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSourceStore(dir, nil)
	require.NoError(t, err)

	first, err := store.Create(types.SourceInput{URL: "https://a", Priority: 8, Enabled: true})
	require.NoError(t, err)
	second, err := store.Create(types.SourceInput{URL: "https://b", Priority: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, second.ID)

	require.NoError(t, store.Delete(second.ID))

	// Ids keep climbing from the highest ever stored in the file, so reuse
	// after delete-then-reopen only happens when the tail was deleted.
	reopened, err := NewSourceStore(dir, nil)
	require.NoError(t, err)
	third, err := reopened.Create(types.SourceInput{URL: "https://c", Priority: 5})
	require.NoError(t, err)
	assert.Greater(t, third.ID, first.ID)
}
