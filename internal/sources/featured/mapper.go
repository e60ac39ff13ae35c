package featured

import (
	"fmt"

	"github.com/shelfmark/shelfmark/internal/domain"
)

// Mapper converts featured file entries to domain shelves
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapShelves converts a parsed featured file to []*domain.Shelf.
// Entries without an id or title are skipped; shelves that end up empty are
// dropped.
func (m *Mapper) MapShelves(file *File) ([]*domain.Shelf, error) {
	var shelves []*domain.Shelf

	for _, entry := range file.Shelves {
		if entry.Name == "" {
			continue
		}

		books := make([]*domain.Book, 0, len(entry.Books))
		for _, be := range entry.Books {
			if be.ID == "" || be.Title == "" {
				continue
			}
			books = append(books, &domain.Book{
				ID:            be.ID,
				Title:         be.Title,
				Authors:       be.Authors,
				ThumbnailURL:  domain.NormalizeThumbnail(be.Thumbnail),
				Publisher:     be.Publisher,
				PublishedDate: be.PublishedDate,
			})
		}
		if len(books) == 0 {
			continue
		}

		shelves = append(shelves, &domain.Shelf{
			Name:  entry.Name,
			Books: books,
		})
	}

	if len(shelves) == 0 {
		return nil, fmt.Errorf("no valid shelves found in featured file")
	}

	return shelves, nil
}
