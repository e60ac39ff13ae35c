package service

import (
	"context"
	"fmt"

	"github.com/shelfmark/shelfmark/internal/domain"
	"github.com/shelfmark/shelfmark/internal/logger"
	redisstore "github.com/shelfmark/shelfmark/internal/store/redis"
)

// Bookmarks reconciles bookmark existence and annotations against the remote
// store. Existence of a record is the single source of truth for "is
// bookmarked"; status and memo writes are gated on it, so the per-user
// collection stays exactly equal to the set of books the user bookmarked and
// no orphaned annotation can exist.
type Bookmarks struct {
	store  *redisstore.Store
	logger logger.Logger
}

// NewBookmarks creates the reconciliation service.
func NewBookmarks(store *redisstore.Store, log logger.Logger) *Bookmarks {
	return &Bookmarks{
		store:  store,
		logger: log,
	}
}

// IsBookmarked reports whether a record exists for (uid, bookID). No side
// effects.
func (b *Bookmarks) IsBookmarked(ctx context.Context, uid, bookID string) (bool, error) {
	if uid == "" {
		return false, domain.ErrUnauthenticated
	}
	return b.store.Exists(ctx, uid, bookID)
}

// Toggle flips bookmark existence and returns the resulting state
// (true = now bookmarked).
//
// When absent, a record is created from the supplied book's display fields
// with status "todo" and an empty memo; when present, the record is hard
// deleted and its annotations are lost. The existence check and the write
// are separate store calls, not a compare-and-swap: two toggles racing on
// the same pair can end up with either final state, but never a partial
// record.
func (b *Bookmarks) Toggle(ctx context.Context, uid string, book *domain.Book) (bool, error) {
	if uid == "" {
		return false, domain.ErrUnauthenticated
	}
	if book == nil || book.ID == "" {
		return false, fmt.Errorf("toggle bookmark: missing book id")
	}

	exists, err := b.store.Exists(ctx, uid, book.ID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := b.store.Delete(ctx, uid, book.ID); err != nil {
			return false, err
		}
		b.logger.Info("bookmark removed",
			logger.String("uid", uid),
			logger.String("book_id", book.ID))
		return false, nil
	}

	if err := b.store.Create(ctx, uid, domain.NewBookmark(book)); err != nil {
		return false, err
	}
	b.logger.Info("bookmark created",
		logger.String("uid", uid),
		logger.String("book_id", book.ID))
	return true, nil
}

// Memo returns the stored memo, or "" when no record exists. Absence is a
// valid state, not an error.
func (b *Bookmarks) Memo(ctx context.Context, uid, bookID string) (string, error) {
	if uid == "" {
		return "", domain.ErrUnauthenticated
	}
	rec, err := b.store.Get(ctx, uid, bookID)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}
	return rec.Memo, nil
}

// SaveMemo updates the memo of an existing bookmark and refreshes
// updated_at. Fails with domain.ErrBookmarkRequired when the book is not
// bookmarked; annotating without a bookmark is a contract violation, not a
// silent no-op.
func (b *Bookmarks) SaveMemo(ctx context.Context, uid, bookID, memo string) error {
	if uid == "" {
		return domain.ErrUnauthenticated
	}
	exists, err := b.store.Exists(ctx, uid, bookID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrBookmarkRequired
	}
	return b.store.UpdateFields(ctx, uid, bookID, map[string]interface{}{
		redisstore.FieldMemo: memo,
	})
}

// Status returns the stored reading status, or nil when no record exists
// (distinct from a default). A record with an unexpectedly absent status
// field reads as "todo".
func (b *Bookmarks) Status(ctx context.Context, uid, bookID string) (*domain.Status, error) {
	if uid == "" {
		return nil, domain.ErrUnauthenticated
	}
	rec, err := b.store.Get(ctx, uid, bookID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	st := rec.Status
	return &st, nil
}

// SetStatus updates the reading status of an existing bookmark and refreshes
// updated_at. Fails with domain.ErrBookmarkRequired when the book is not
// bookmarked and domain.ErrInvalidStatus for values outside
// {todo, reading, done}. The UI only offers the three values, but the
// service validates regardless.
func (b *Bookmarks) SetStatus(ctx context.Context, uid, bookID string, status domain.Status) error {
	if uid == "" {
		return domain.ErrUnauthenticated
	}
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	exists, err := b.store.Exists(ctx, uid, bookID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrBookmarkRequired
	}
	return b.store.UpdateFields(ctx, uid, bookID, map[string]interface{}{
		redisstore.FieldStatus: string(status),
	})
}

// List returns the user's bookmarks ordered by updated_at descending.
func (b *Bookmarks) List(ctx context.Context, uid string) ([]*domain.Bookmark, error) {
	if uid == "" {
		return nil, domain.ErrUnauthenticated
	}
	return b.store.List(ctx, uid)
}

// Watch subscribes to the live set of the user's bookmarks.
func (b *Bookmarks) Watch(ctx context.Context, uid string) (*redisstore.Subscription, error) {
	if uid == "" {
		return nil, domain.ErrUnauthenticated
	}
	return b.store.Watch(ctx, uid)
}
