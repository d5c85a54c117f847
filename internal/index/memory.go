package index

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkjump/internal/catalog"
	"github.com/MrSnakeDoc/linkjump/internal/domain"
)

// MemoryIndex provides in-memory storage and lookup for catalog links and apps.
// It is the serving copy; Redis only persists it.
//
// Records handed out are copies, so callers may read them while clicks are
// being counted.
type MemoryIndex struct {
	mu         sync.RWMutex
	links      map[string]*catalog.Record // ID -> Record
	apps       []*domain.AppResult        // last catalog, response order
	requestID  string                     // request id of the last catalog
	lastReload time.Time                  // Timestamp of last catalog reload
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		links: make(map[string]*catalog.Record),
	}
}

// UpdateLinks replaces all links in the index.
// Records are usually built from an earlier GetAllLinks snapshot, so clicks
// counted since then are carried over from the live record.
func (idx *MemoryIndex) UpdateLinks(records []*catalog.Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	// Clear and rebuild
	links := make(map[string]*catalog.Record, len(records))
	for _, r := range records {
		c := *r
		if live, ok := idx.links[r.ID]; ok && live.Clicks > c.Clicks {
			c.Clicks = live.Clicks
			c.LastOpenedAt = live.LastOpenedAt
		}
		links[r.ID] = &c
	}
	idx.links = links
	idx.lastReload = time.Now()
}

// GetLink retrieves a link record by ID
func (idx *MemoryIndex) GetLink(id string) (*catalog.Record, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	r, ok := idx.links[id]
	if !ok {
		return nil, false
	}
	c := *r
	return &c, true
}

// GetAllLinks returns all link records, ordered by ID
func (idx *MemoryIndex) GetAllLinks() []*catalog.Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	records := make([]*catalog.Record, 0, len(idx.links))
	for _, r := range idx.links {
		c := *r
		records = append(records, &c)
	}
	slices.SortFunc(records, func(a, b *catalog.Record) int {
		return strings.Compare(a.ID, b.ID)
	})
	return records
}

// AddLink adds or updates a single link record
func (idx *MemoryIndex) AddLink(r *catalog.Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	c := *r
	idx.links[r.ID] = &c
}

// DeleteLink removes a link from the index
func (idx *MemoryIndex) DeleteLink(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.links, id)
}

// Count returns the number of links in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.links)
}

// IncrementClicks counts a successful open and returns the new total.
// Unknown ids are ignored and report 0.
func (idx *MemoryIndex) IncrementClicks(id string, at time.Time) int64 {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	r, ok := idx.links[id]
	if !ok {
		return 0
	}
	r.Clicks++
	r.LastOpenedAt = at
	r.UpdatedAt = at
	return r.Clicks
}

// GetLastReload returns the timestamp of the last catalog reload
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// ─────────────────────────────────────────────────────────────────
// App methods
// ─────────────────────────────────────────────────────────────────

// SetApps stores the apps of the last parsed catalog.
func (idx *MemoryIndex) SetApps(requestID string, apps []*domain.AppResult) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.requestID = requestID
	idx.apps = slices.Clone(apps)
}

// GetApps returns the apps of the last parsed catalog, in response order.
func (idx *MemoryIndex) GetApps() (requestID string, apps []*domain.AppResult) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.requestID, slices.Clone(idx.apps)
}

// AppCount returns the number of apps in the last catalog
func (idx *MemoryIndex) AppCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.apps)
}
