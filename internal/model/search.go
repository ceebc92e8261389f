package model

// SearchQuery is a lookup tagged with its issue order.
type SearchQuery struct {
	Text string `json:"text"`
	Seq  uint64 `json:"seq"`
}

// SearchResult is a single hit from the search index.
type SearchResult struct {
	Title    string `json:"title"`
	Path     string `json:"path"`
	Category string `json:"category,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// RelatedFile is the sidebar projection of a search hit.
type RelatedFile struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Path     string `json:"path,omitempty"`
}

// Related projects a search hit onto a related-file entry.
func (r SearchResult) Related() RelatedFile {
	return RelatedFile{Title: r.Title, Category: r.Category, Path: r.Path}
}
