package domain

import "strings"

// Book is a catalog entry as returned by the external book API.
//
// It is read-only from this system's point of view: the catalog owns the
// record, we only denormalize a snapshot of its display fields into a
// Bookmark at bookmark-creation time.
type Book struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the stable catalog volume identifier.
	// Example: "zyTCAlFPjgYC"
	ID string `json:"id"`

	// ─────────────────────────────
	// Display fields
	// ─────────────────────────────

	// Title is the volume title.
	Title string `json:"title"`

	// Authors are the author names, in catalog order.
	Authors []string `json:"authors,omitempty"`

	// ThumbnailURL is the cover image URL, HTTPS-normalized.
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	// Publisher may be empty.
	Publisher string `json:"publisher,omitempty"`

	// Description may be empty.
	Description string `json:"description,omitempty"`

	// PublishedDate is the catalog's publication date string (free-form).
	PublishedDate string `json:"published_date,omitempty"`
}

// AuthorsDisplay returns the comma-joined author names, the form that is
// denormalized into a bookmark record.
func (b *Book) AuthorsDisplay() string {
	return strings.Join(b.Authors, ", ")
}

// NormalizeThumbnail rewrites plain-HTTP cover URLs to HTTPS.
// The Google Books API still hands out http:// links, which browsers block
// as mixed content.
func NormalizeThumbnail(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
