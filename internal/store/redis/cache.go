package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedOutcome is the stored result of a resolution on a given device.
type CachedOutcome struct {
	Opened     bool      `json:"opened"`
	Strategy   string    `json:"strategy"`
	Code       string    `json:"code,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// CacheOutcome stores the outcome of opening a link on a device
func (s *Store) CacheOutcome(ctx context.Context, device, linkID string, fallbackToStore bool, o CachedOutcome, ttl time.Duration) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	if err := s.client.Set(ctx, OutcomeKey(device, linkID, fallbackToStore), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache outcome: %w", err)
	}
	return nil
}

// GetCachedOutcome retrieves a cached outcome. A miss returns nil, nil.
func (s *Store) GetCachedOutcome(ctx context.Context, device, linkID string, fallbackToStore bool) (*CachedOutcome, error) {
	data, err := s.client.Get(ctx, OutcomeKey(device, linkID, fallbackToStore)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached outcome: %w", err)
	}
	var o CachedOutcome
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached outcome: %w", err)
	}
	return &o, nil
}

// FlushOutcomes removes all cached outcomes. Called whenever the device or
// the catalog changes, since both invalidate every outcome.
func (s *Store) FlushOutcomes(ctx context.Context) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixOutcome+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete outcome key: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to flush outcomes: %w", err)
	}
	return deleted, nil
}
