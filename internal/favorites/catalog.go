package favorites

import (
	"strings"
	"sync"
)

// DefaultItems seeds a new catalog.
var DefaultItems = []Item{ //nolint:gochecknoglobals
	{ID: 1, Title: "Inception", Category: "Sci-Fi"},
	{ID: 2, Title: "Titanic", Category: "Romance"},
	{ID: 3, Title: "The Matrix", Category: "Action"},
	{ID: 4, Title: "Up", Category: "Animation"},
}

// MemoryCatalog is an in-memory Catalog.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items []Item
}

// NewCatalog returns a catalog holding items, or DefaultItems when
// none are given.
func NewCatalog(items ...Item) *MemoryCatalog {
	if len(items) == 0 {
		items = DefaultItems
	}
	return &MemoryCatalog{items: append([]Item(nil), items...)}
}

// Search returns items whose title or category contains term.  The
// match is case-sensitive; an empty term matches everything.
func (c *MemoryCatalog) Search(term string) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Item
	for _, it := range c.items {
		if strings.Contains(it.Title, term) || strings.Contains(it.Category, term) {
			out = append(out, it)
		}
	}
	return out
}

// Get looks up an item by ID.
func (c *MemoryCatalog) Get(id int) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
