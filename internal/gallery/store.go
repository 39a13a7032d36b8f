// Package gallery keeps the ordered log of generated artifacts and mirrors
// it into durable storage after every mutation.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/faelscarpato/capyvision/internal/domain"
)

// Snapshotter is the durable key the gallery serializes into.
type Snapshotter interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
}

// evictionStep is how many of the oldest entries one quota failure removes.
const evictionStep = 2

// Store holds MediaItems newest-first. All mutations persist the full
// sequence; when the snapshot write trips the storage quota, the two oldest
// entries are evicted and the write retried until it fits or the log is
// empty. Persistence failures never propagate to callers: the in-memory log
// stays authoritative for the session.
type Store struct {
	mu     sync.Mutex
	items  []domain.MediaItem
	snaps  Snapshotter
	logger zerolog.Logger
}

func NewStore(snaps Snapshotter, logger zerolog.Logger) *Store {
	return &Store{snaps: snaps, logger: logger}
}

// Restore loads the persisted sequence. Meant for startup; a corrupt or
// missing snapshot yields an empty gallery rather than an error.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.snaps.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("gallery: snapshot load failed, starting empty")
		return
	}
	if len(data) == 0 {
		return
	}
	var items []domain.MediaItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn().Err(err).Msg("gallery: snapshot corrupt, starting empty")
		return
	}
	s.items = items
}

// Prepend inserts item at the head and persists the sequence.
func (s *Store) Prepend(ctx context.Context, item domain.MediaItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]domain.MediaItem{item}, s.items...)
	s.persist(ctx)
}

// Clear drops every item and persists the empty sequence. The confirmation
// gesture is the caller's responsibility.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Snapshot returns a copy of the sequence, newest first.
func (s *Store) Snapshot() []domain.MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.MediaItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the number of stored items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// persist serializes the sequence, evicting the oldest entries while the
// write keeps exceeding the quota. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	for {
		data, err := json.Marshal(s.items)
		if err != nil {
			s.logger.Error().Err(err).Msg("gallery: marshal failed, snapshot skipped")
			return
		}
		err = s.snaps.Save(ctx, data)
		if err == nil {
			return
		}
		if !errors.Is(err, domain.ErrStorageQuota) {
			s.logger.Error().Err(err).Msg("gallery: snapshot write failed")
			return
		}
		if len(s.items) <= 1 {
			// Nothing old enough to evict. The mutation stays in memory;
			// the snapshot silently keeps its previous state.
			s.logger.Warn().Err(err).Msg("gallery: quota exceeded with nothing to evict, snapshot dropped")
			return
		}
		evicted := evictionStep
		if evicted >= len(s.items) {
			evicted = len(s.items) - 1
		}
		s.items = s.items[:len(s.items)-evicted]
		s.logger.Warn().Int("evicted", evicted).Int("remaining", len(s.items)).Msg("gallery: storage quota exceeded, evicted oldest entries")
	}
}
