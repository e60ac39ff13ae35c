package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RepairStats summarizes one index repair pass.
type RepairStats struct {
	Indexed int // documents re-added to their ordering index
	Removed int // dangling index members dropped
}

// RepairIndexes re-synchronizes the per-user ordering indexes against the
// bookmark documents. Documents and index entries are written in separate
// commands, so a client that died mid-toggle can leave the two out of step:
// a document missing from its index, or an index member whose document is
// gone. Both directions converge here.
func (s *Store) RepairIndexes(ctx context.Context) (RepairStats, error) {
	var stats RepairStats

	// Documents missing from their index (or with a stale score).
	iter := s.client.Scan(ctx, 0, KeyPrefixUser+"*:bookmark:*", 0).Iterator()
	for iter.Next(ctx) {
		uid, bookID, err := ParseBookmarkKey(iter.Val())
		if err != nil {
			continue
		}
		raw, err := s.client.HGet(ctx, iter.Val(), FieldUpdatedAt).Result()
		if err != nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			continue
		}
		added, err := s.client.ZAdd(ctx, BookmarkIndexKey(uid), redis.Z{
			Score:  float64(ts.UnixNano()),
			Member: bookID,
		}).Result()
		if err != nil {
			return stats, fmt.Errorf("failed to re-index bookmark: %w", err)
		}
		stats.Indexed += int(added)
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan bookmark documents: %w", err)
	}

	// Index members whose document is gone.
	iter = s.client.Scan(ctx, 0, KeyPrefixUser+"*:bookmarks", 0).Iterator()
	for iter.Next(ctx) {
		uid, err := ParseBookmarkIndexKey(iter.Val())
		if err != nil {
			continue
		}
		members, err := s.client.ZRange(ctx, iter.Val(), 0, -1).Result()
		if err != nil {
			return stats, fmt.Errorf("failed to read bookmark index: %w", err)
		}
		for _, bookID := range members {
			exists, err := s.Exists(ctx, uid, bookID)
			if err != nil {
				return stats, err
			}
			if !exists {
				if err := s.client.ZRem(ctx, iter.Val(), bookID).Err(); err != nil {
					return stats, fmt.Errorf("failed to remove dangling index member: %w", err)
				}
				stats.Removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan bookmark indexes: %w", err)
	}

	return stats, nil
}
