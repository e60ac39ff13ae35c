package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/domain"
)

// Hash field names of a bookmark document.
const (
	FieldBookID       = "book_id"
	FieldTitle        = "title"
	FieldAuthors      = "authors"
	FieldThumbnailURL = "thumbnail_url"
	FieldPublisher    = "publisher"
	FieldStatus       = "status"
	FieldMemo         = "memo"
	FieldCreatedAt    = "created_at"
	FieldUpdatedAt    = "updated_at"
)

// Event announces one mutation on a user's bookmark collection.
type Event struct {
	Kind   string `json:"kind"` // "created" | "updated" | "deleted"
	BookID string `json:"book_id"`
}

// Exists reports whether a bookmark document exists for (uid, bookID).
func (s *Store) Exists(ctx context.Context, uid, bookID string) (bool, error) {
	n, err := s.client.Exists(ctx, BookmarkKey(uid, bookID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark existence: %w", err)
	}
	return n > 0, nil
}

// Get retrieves a bookmark document. Returns (nil, nil) when no document
// exists; absence is a valid state, not an error.
func (s *Store) Get(ctx context.Context, uid, bookID string) (*domain.Bookmark, error) {
	fields, err := s.client.HGetAll(ctx, BookmarkKey(uid, bookID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return recordFromFields(fields), nil
}

// Create writes a fresh bookmark document with merge semantics: all supplied
// fields are written, but created_at is only set when absent, so a lingering
// document keeps its original creation time. Annotations (status, memo) are
// always written with the supplied defaults; re-bookmarking after a delete is
// a hard reset, not a restore.
func (s *Store) Create(ctx context.Context, uid string, rec *domain.Bookmark) error {
	ts := s.serverTime(ctx)
	key := BookmarkKey(uid, rec.BookID)

	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, FieldCreatedAt, ts.Format(time.RFC3339Nano))
	pipe.HSet(ctx, key, map[string]interface{}{
		FieldBookID:       rec.BookID,
		FieldTitle:        rec.Title,
		FieldAuthors:      rec.Authors,
		FieldThumbnailURL: rec.ThumbnailURL,
		FieldPublisher:    rec.Publisher,
		FieldStatus:       string(rec.Status),
		FieldMemo:         rec.Memo,
		FieldUpdatedAt:    ts.Format(time.RFC3339Nano),
	})
	pipe.ZAdd(ctx, BookmarkIndexKey(uid), redis.Z{
		Score:  float64(ts.UnixNano()),
		Member: rec.BookID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create bookmark: %w", err)
	}

	s.publish(ctx, uid, Event{Kind: "created", BookID: rec.BookID})
	return nil
}

// UpdateFields merge-writes the given hash fields and refreshes updated_at.
// The caller is responsible for existence gating; updating a missing document
// would resurrect it as a partial record.
func (s *Store) UpdateFields(ctx context.Context, uid, bookID string, fields map[string]interface{}) error {
	ts := s.serverTime(ctx)

	values := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values[FieldUpdatedAt] = ts.Format(time.RFC3339Nano)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, BookmarkKey(uid, bookID), values)
	pipe.ZAdd(ctx, BookmarkIndexKey(uid), redis.Z{
		Score:  float64(ts.UnixNano()),
		Member: bookID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}

	s.publish(ctx, uid, Event{Kind: "updated", BookID: bookID})
	return nil
}

// Delete removes the bookmark document entirely (hard delete, annotations
// included) and drops it from the ordering index.
func (s *Store) Delete(ctx context.Context, uid, bookID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, BookmarkKey(uid, bookID))
	pipe.ZRem(ctx, BookmarkIndexKey(uid), bookID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	s.publish(ctx, uid, Event{Kind: "deleted", BookID: bookID})
	return nil
}

// List returns all of a user's bookmarks ordered by updated_at descending.
func (s *Store) List(ctx context.Context, uid string) ([]*domain.Bookmark, error) {
	ids, err := s.client.ZRevRange(ctx, BookmarkIndexKey(uid), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmark ids: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, BookmarkKey(uid, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch bookmarks: %w", err)
	}

	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for _, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			// Dangling index entry; the repair scheduler cleans these up.
			continue
		}
		bookmarks = append(bookmarks, recordFromFields(fields))
	}
	return bookmarks, nil
}

// publish announces a mutation on the user's event channel (best effort:
// a lost event only delays a subscriber snapshot, it cannot corrupt state).
func (s *Store) publish(ctx context.Context, uid string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = s.client.Publish(ctx, EventsChannel(uid), payload).Err()
}

func recordFromFields(fields map[string]string) *domain.Bookmark {
	rec := &domain.Bookmark{
		BookID:       fields[FieldBookID],
		Title:        fields[FieldTitle],
		Authors:      fields[FieldAuthors],
		ThumbnailURL: fields[FieldThumbnailURL],
		Publisher:    fields[FieldPublisher],
		Status:       domain.Status(fields[FieldStatus]),
		Memo:         fields[FieldMemo],
	}
	// A partially written document may miss the status field; "todo" is the
	// documented fallback.
	if !rec.Status.Valid() {
		rec.Status = domain.StatusTodo
	}
	if t, err := time.Parse(time.RFC3339Nano, fields[FieldCreatedAt]); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields[FieldUpdatedAt]); err == nil {
		rec.UpdatedAt = t
	}
	return rec
}
