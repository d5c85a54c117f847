package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkjump/internal/catalog"
)

const (
	// DefaultLinkTTL is the default TTL for link entries (48 hours)
	DefaultLinkTTL = 48 * time.Hour
	// DefaultOutcomeTTL is the default TTL for cached outcomes (24 hours)
	DefaultOutcomeTTL = 24 * time.Hour
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("not found")

// Store handles Redis operations for links, handler trees, outcomes and clicks
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveLink stores a link record in Redis
func (s *Store) SaveLink(ctx context.Context, r *catalog.Record) error {
	return s.SaveLinksMany(ctx, []*catalog.Record{r})
}

// GetLink retrieves a link record from Redis by ID
func (s *Store) GetLink(ctx context.Context, id string) (*catalog.Record, error) {
	data, err := s.client.Get(ctx, LinkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("link %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return decodeRecord(data)
}

// GetAllLinks retrieves all link records from Redis. Entries that expired or
// no longer decode are skipped.
func (s *Store) GetAllLinks(ctx context.Context) ([]*catalog.Record, error) {
	ids, err := s.client.SMembers(ctx, AllLinksKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get link IDs: %w", err)
	}

	if len(ids) == 0 {
		return []*catalog.Record{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, LinkKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}

	records := make([]*catalog.Record, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			continue
		}
		r, err := decodeRecord(data)
		if err != nil {
			continue
		}
		records = append(records, r)
	}

	return records, nil
}

// DeleteLink removes a link record and its click counter
func (s *Store) DeleteLink(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, LinkKey(id))
	pipe.SRem(ctx, AllLinksKey(), id)
	pipe.HDel(ctx, KeyClicks, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

// SaveLinksMany stores multiple link records in Redis (bulk operation).
// A link's handler tree is part of its encoded record.
func (s *Store) SaveLinksMany(ctx context.Context, records []*catalog.Record) error {
	pipe := s.client.Pipeline()

	for _, r := range records {
		data, err := encodeRecord(r)
		if err != nil {
			return fmt.Errorf("failed to marshal link %s: %w", r.ID, err)
		}

		pipe.Set(ctx, LinkKey(r.ID), data, DefaultLinkTTL)
		pipe.SAdd(ctx, AllLinksKey(), r.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save links: %w", err)
	}

	return nil
}
