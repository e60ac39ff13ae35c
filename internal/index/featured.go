package index

import (
	"sync"
	"time"

	"github.com/shelfmark/shelfmark/internal/domain"
)

// FeaturedIndex holds the curated shelves in memory. Shelves are replaced
// wholesale on each reload; readers always see a consistent snapshot.
type FeaturedIndex struct {
	mu         sync.RWMutex
	shelves    []*domain.Shelf
	lastReload time.Time
}

// NewFeaturedIndex creates an empty featured index
func NewFeaturedIndex() *FeaturedIndex {
	return &FeaturedIndex{}
}

// Update replaces all shelves in the index
func (idx *FeaturedIndex) Update(shelves []*domain.Shelf) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.shelves = shelves
	idx.lastReload = time.Now()
}

// Shelves returns the current shelves
func (idx *FeaturedIndex) Shelves() []*domain.Shelf {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.shelves
}

// LastReload returns the timestamp of the last update
func (idx *FeaturedIndex) LastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// Count returns the number of shelves in the index
func (idx *FeaturedIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.shelves)
}
