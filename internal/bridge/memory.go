package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/stridetrack/stridetrack/internal/models"
)

// MemoryStore is an in-process SnapshotStore for tests and the dev server.
type MemoryStore struct {
	mu   sync.Mutex
	snap *models.WidgetSnapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, snap models.WidgetSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &snap
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) (models.WidgetSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return models.WidgetSnapshot{}, fmt.Errorf("%w: no snapshot stored", models.ErrStaleSnapshot)
	}
	return *s.snap, nil
}

func (s *MemoryStore) Close() error { return nil }
