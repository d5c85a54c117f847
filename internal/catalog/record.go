package catalog

import (
	"time"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
)

// Record is the catalog's runtime view of one link.
//
// The link itself is immutable; everything else is bookkeeping merged from
// the catalog file, Redis and click learning.
// A Record is uniquely identified by the link's entity id.
type Record struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID equals Link.EntityID().
	ID string

	// Link is the parsed descriptor.
	Link *domain.Link

	// ─────────────────────────────
	// Provenance & observation
	// ─────────────────────────────

	// Sources indicates where this link was discovered from.
	// Example: catalog, redis
	Sources []string

	// LastSeenAt is updated whenever the link is present in a catalog reload.
	LastSeenAt time.Time

	// ─────────────────────────────
	// Learning & persistence
	// ─────────────────────────────

	// Clicks counts successful opens.
	Clicks int64

	CreatedAt time.Time
	UpdatedAt time.Time

	// LastOpenedAt is updated only after a successful open.
	LastOpenedAt time.Time

	// ─────────────────────────────
	// Liveness & cleanup
	// ─────────────────────────────

	// Disabled marks a link that vanished from the catalog.
	// It may be garbage-collected later.
	Disabled bool
}

// NewRecord wraps a link seen at now.
func NewRecord(l *domain.Link, source string, now time.Time) *Record {
	return &Record{
		ID:         l.EntityID(),
		Link:       l,
		Sources:    []string{source},
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// HasSource reports whether source is already recorded.
func (r *Record) HasSource(source string) bool {
	for _, s := range r.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// AddSource appends source if it is new.
func (r *Record) AddSource(source string) {
	if !r.HasSource(source) {
		r.Sources = append(r.Sources, source)
	}
}
