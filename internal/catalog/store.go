package catalog

import (
	"context"
	"sync"

	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/models"
	"github.com/threeplay/backend/internal/persist"
)

// Store holds the video catalog. Every mutation is written through to the
// persisted slice. Ids are not deduplicated; callers keep them unique.
type Store struct {
	mu     sync.Mutex
	videos []models.Video
	slice  *persist.Slice[State]
}

// NewStore restores the catalog from slice.
func NewStore(ctx context.Context, slice *persist.Slice[State]) *Store {
	if slice == nil {
		panic("catalog: slice must not be nil")
	}
	return &Store{videos: slice.Load(ctx).Videos, slice: slice}
}

// Add puts video at the front of the catalog.
func (s *Store) Add(ctx context.Context, video models.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.videos = append([]models.Video{video}, s.videos...)
	s.persistLocked(ctx)
}

// Delete removes every record with id and reports whether any existed.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.videos[:0:0]
	for _, v := range s.videos {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(s.videos) {
		return false
	}
	s.videos = kept
	s.persistLocked(ctx)
	return true
}

// ReplaceAll overwrites the catalog.
func (s *Store) ReplaceAll(ctx context.Context, videos []models.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.videos = append([]models.Video(nil), videos...)
	s.persistLocked(ctx)
}

// List returns a snapshot of the catalog in display order.
func (s *Store) List() []models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Video(nil), s.videos...)
}

// Get returns the first record with id.
func (s *Store) Get(id string) (models.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.videos {
		if v.ID == id {
			return v, true
		}
	}
	return models.Video{}, false
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := s.slice.Save(ctx, State{Videos: s.videos}); err != nil {
		logging.FromContext(ctx).Warn("persist catalog failed", "error", err, "videos", len(s.videos))
	}
}
