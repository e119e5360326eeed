package favorites

import (
	"fmt"
	"sync"

	"echod/internal/errors"
)

// MemoryStore is an in-memory Store backed by a catalog for item
// lookup.
type MemoryStore struct {
	catalog *MemoryCatalog

	mu    sync.RWMutex
	items map[string][]Item // identity → favourites, in insertion order
}

// NewStore returns an empty store resolving IDs against catalog.
func NewStore(catalog *MemoryCatalog) *MemoryStore {
	return &MemoryStore{catalog: catalog, items: make(map[string][]Item)}
}

// Add records itemID as a favourite of identity.  Adding the same item
// twice is a no-op.
func (s *MemoryStore) Add(identity string, itemID int) error {
	it, ok := s.catalog.Get(itemID)
	if !ok {
		return fmt.Errorf("add favourite %d: %w", itemID, errors.ErrUnknownItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.items[identity] {
		if have.ID == itemID {
			return nil
		}
	}
	s.items[identity] = append(s.items[identity], it)
	return nil
}

// List returns a copy of identity's favourites.
func (s *MemoryStore) List(identity string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.items[identity]...)
}
