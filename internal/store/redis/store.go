package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the remote annotation store: one hash document per (user, book)
// pair, a per-user zset ordering documents by updated_at, and a per-user
// pub/sub channel announcing every mutation.
type Store struct {
	client *redis.Client
	now    func() time.Time // fallback clock when TIME is unavailable
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// serverTime returns the store's notion of "now". Timestamps are assigned by
// the server (Redis TIME), not by clients, so records written by different
// clients order consistently. Falls back to the local clock if TIME fails.
func (s *Store) serverTime(ctx context.Context) time.Time {
	if t, err := s.client.Time(ctx).Result(); err == nil {
		return t
	}
	return s.now()
}
