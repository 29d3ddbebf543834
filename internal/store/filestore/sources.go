package filestore

import (
	"time"

	"truesignal/internal/logging"
	"truesignal/internal/types"
)

// SourceStore persists feed sources with incrementing numeric ids.
type SourceStore struct {
	col *collection[types.Source]
}

func NewSourceStore(dir string, logger logging.Logger) (*SourceStore, error) {
	col, err := newCollection[types.Source](dir, "sources", logger)
	if err != nil {
		return nil, err
	}
	return &SourceStore{col: col}, nil
}

func (s *SourceStore) List() []types.Source {
	return s.col.snapshot()
}

func (s *SourceStore) Get(sourceID int64) (types.Source, error) {
	for _, src := range s.col.snapshot() {
		if src.ID == sourceID {
			return src, nil
		}
	}
	return types.Source{}, ErrNotFound
}

// Create persists a new source. Ids increment from the highest seen so they
// stay unique across restarts.
func (s *SourceStore) Create(input types.SourceInput) (types.Source, error) {
	now := time.Now().UTC()
	src := types.Source{
		URL:        input.URL,
		AuthorName: input.Name,
		Priority:   input.Priority,
		Enabled:    input.Enabled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := s.col.mutate(func(items []types.Source) []types.Source {
		var maxID int64
		for _, existing := range items {
			if existing.ID > maxID {
				maxID = existing.ID
			}
		}
		src.ID = maxID + 1
		return append(items, src)
	})
	return src, err
}

// Update overwrites the writable fields of an existing source.
func (s *SourceStore) Update(sourceID int64, input types.SourceInput) (types.Source, error) {
	var updated types.Source
	found := false
	err := s.col.mutate(func(items []types.Source) []types.Source {
		for i := range items {
			if items[i].ID != sourceID {
				continue
			}
			found = true
			if input.URL != "" {
				items[i].URL = input.URL
			}
			if input.Name != "" {
				items[i].AuthorName = input.Name
			}
			if input.Priority != 0 {
				items[i].Priority = input.Priority
			}
			items[i].Enabled = input.Enabled
			items[i].UpdatedAt = time.Now().UTC()
			updated = items[i]
			break
		}
		return items
	})
	if err != nil {
		return types.Source{}, err
	}
	if !found {
		return types.Source{}, ErrNotFound
	}
	return updated, nil
}

// MarkFetched records a completed fetch.
func (s *SourceStore) MarkFetched(sourceID int64, at time.Time) error {
	return s.col.mutate(func(items []types.Source) []types.Source {
		for i := range items {
			if items[i].ID == sourceID {
				items[i].LastFetchTime = &at
				items[i].UpdatedAt = at
				break
			}
		}
		return items
	})
}

func (s *SourceStore) Delete(sourceID int64) error {
	found := false
	err := s.col.mutate(func(items []types.Source) []types.Source {
		out := items[:0]
		for _, src := range items {
			if src.ID == sourceID {
				found = true
				continue
			}
			out = append(out, src)
		}
		return out
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
