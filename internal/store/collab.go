package store

import (
	"context"

	"github.com/rcliao/draftpad/internal/model"
)

// Fetch returns the latest version of a file for an editing session.
func (s *SQLiteStore) Fetch(ctx context.Context, id model.Identity) (*model.StoredFile, error) {
	files, err := s.Get(ctx, GetParams{Category: id.Category, Filename: id.Filename})
	if err != nil {
		return nil, err
	}
	return &files[0], nil
}

// Persist stores req as a new version of the file.
func (s *SQLiteStore) Persist(ctx context.Context, id model.Identity, req model.SaveRequest) (*model.StoredFile, error) {
	filename := req.Filename
	if filename == "" {
		filename = id.Filename
	}
	return s.Put(ctx, PutParams{Category: id.Category, Filename: filename, Content: req.Content})
}

// Lookup runs a search and projects the hits onto the search-index shape.
func (s *SQLiteStore) Lookup(ctx context.Context, query string) ([]model.SearchResult, error) {
	results, err := s.Search(ctx, SearchParams{Query: query})
	if err != nil {
		return nil, err
	}
	hits := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		hits = append(hits, r.Hit(query))
	}
	return hits, nil
}
