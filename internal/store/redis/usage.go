package redis

import (
	"context"
	"fmt"
	"strconv"
)

// IncrementClicks increments the click counter of a link and returns the new value
func (s *Store) IncrementClicks(ctx context.Context, linkID string) (int64, error) {
	n, err := s.client.HIncrBy(ctx, KeyClicks, linkID, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment clicks: %w", err)
	}
	return n, nil
}

// GetClickStats retrieves the click counters of all links
func (s *Store) GetClickStats(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, KeyClicks).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get click stats: %w", err)
	}

	stats := make(map[string]int64, len(raw))
	for id, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		stats[id] = n
	}

	return stats, nil
}
