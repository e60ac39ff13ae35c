package domain

// Shelf is a curated group of books shown on the landing page.
// Shelves come from the featured file, not from the catalog API.
type Shelf struct {
	Name  string  `json:"name"`
	Books []*Book `json:"books"`
}
