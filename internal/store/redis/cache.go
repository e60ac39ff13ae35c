package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/domain"
)

// CacheSearch stores a catalog search result under its query with a TTL.
func (s *Store) CacheSearch(ctx context.Context, query string, books []*domain.Book, ttl time.Duration) error {
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("failed to marshal search result: %w", err)
	}
	if err := s.client.Set(ctx, SearchCacheKey(query), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache search result: %w", err)
	}
	return nil
}

// GetCachedSearch retrieves a cached catalog search. Returns (nil, nil) on a
// cache miss.
func (s *Store) GetCachedSearch(ctx context.Context, query string) ([]*domain.Book, error) {
	data, err := s.client.Get(ctx, SearchCacheKey(query)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached search: %w", err)
	}

	var books []*domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached search: %w", err)
	}
	return books, nil
}

// FlushSearchCache removes all cached catalog searches.
func (s *Store) FlushSearchCache(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixSearchCache+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush search cache: %w", err)
	}
	return nil
}
