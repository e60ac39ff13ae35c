package domain

import "time"

// Bookmark is the per-user annotation record for one catalog book.
//
// Existence of the record is the sole source of truth for "is bookmarked":
// there is no soft delete. Status and memo are only mutable while the record
// exists.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// BookID is the catalog volume id. Together with the owning user id it
	// forms the record's composite key.
	BookID string `json:"book_id"`

	// ─────────────────────────────
	// Catalog snapshot (frozen at creation)
	// ─────────────────────────────

	// Title is the display title captured when the bookmark was created.
	// It is not re-synced from the catalog afterwards.
	Title string `json:"title"`

	// Authors is the comma-joined author display string.
	Authors string `json:"authors"`

	// ThumbnailURL is the HTTPS-normalized cover URL, may be empty.
	ThumbnailURL string `json:"thumbnail_url"`

	// Publisher may be empty.
	Publisher string `json:"publisher"`

	// ─────────────────────────────
	// Annotation (mutable while the record exists)
	// ─────────────────────────────

	// Status is the reading state, "todo" at creation.
	Status Status `json:"status"`

	// Memo is free text, empty at creation.
	Memo string `json:"memo"`

	// ─────────────────────────────
	// Metadata (store-assigned)
	// ─────────────────────────────

	// CreatedAt is set once at creation and never overwritten.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every mutation. The bookmark list is
	// ordered by this field, newest first.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBookmark builds a fresh record from a catalog snapshot with default
// annotations. Timestamps are assigned by the store on write.
func NewBookmark(book *Book) *Bookmark {
	return &Bookmark{
		BookID:       book.ID,
		Title:        book.Title,
		Authors:      book.AuthorsDisplay(),
		ThumbnailURL: NormalizeThumbnail(book.ThumbnailURL),
		Publisher:    book.Publisher,
		Status:       StatusTodo,
		Memo:         "",
	}
}
