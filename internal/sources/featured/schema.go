package featured

// File represents the top-level structure of featured.yaml
type File struct {
	Shelves []ShelfEntry `yaml:"shelves"`
}

// ShelfEntry is one curated shelf in the file
type ShelfEntry struct {
	Name  string      `yaml:"name"`
	Books []BookEntry `yaml:"books"`
}

// BookEntry contains the curated book properties
type BookEntry struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Authors       []string `yaml:"authors,omitempty"`
	Thumbnail     string   `yaml:"thumbnail,omitempty"`
	Publisher     string   `yaml:"publisher,omitempty"`
	PublishedDate string   `yaml:"publishedDate,omitempty"`
}
