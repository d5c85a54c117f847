package redis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linkjump/internal/catalog"
	"github.com/MrSnakeDoc/linkjump/internal/domain"
)

// recordJSON is the persisted form of a catalog.Record. The link travels in
// its versioned envelope so older entries fail loudly instead of decoding wrong.
type recordJSON struct {
	ID           string          `json:"id"`
	Link         json.RawMessage `json:"link"`
	Sources      []string        `json:"sources"`
	LastSeenAt   time.Time       `json:"last_seen_at"`
	Clicks       int64           `json:"clicks"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	LastOpenedAt time.Time       `json:"last_opened_at"`
	Disabled     bool            `json:"disabled"`
}

func encodeRecord(r *catalog.Record) ([]byte, error) {
	if r == nil || r.Link == nil {
		return nil, fmt.Errorf("record has no link")
	}
	link, err := domain.EncodeLink(r.Link)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recordJSON{
		ID:           r.ID,
		Link:         link,
		Sources:      r.Sources,
		LastSeenAt:   r.LastSeenAt,
		Clicks:       r.Clicks,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastOpenedAt: r.LastOpenedAt,
		Disabled:     r.Disabled,
	})
}

func decodeRecord(data []byte) (*catalog.Record, error) {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	link, err := domain.DecodeLink(in.Link)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", in.ID, err)
	}
	return &catalog.Record{
		ID:           in.ID,
		Link:         link,
		Sources:      in.Sources,
		LastSeenAt:   in.LastSeenAt,
		Clicks:       in.Clicks,
		CreatedAt:    in.CreatedAt,
		UpdatedAt:    in.UpdatedAt,
		LastOpenedAt: in.LastOpenedAt,
		Disabled:     in.Disabled,
	}, nil
}
