// Package store provides the file storage interface and SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/draftpad/internal/model"
)

// PutParams holds parameters for storing a file.
type PutParams struct {
	Category string
	Filename string
	Content  string
}

// GetParams holds parameters for retrieving a file.
type GetParams struct {
	Category string
	Filename string
	History  bool
	Version  int // 0 means latest
}

// ListParams holds parameters for listing files.
type ListParams struct {
	Category  string
	Limit     int
	NamesOnly bool
}

// RmParams holds parameters for deleting a file.
type RmParams struct {
	Category    string
	Filename    string
	AllVersions bool
	Hard        bool
}

// Store defines the file storage interface.
type Store interface {
	// Put stores a new version of a file. Returns the stored version.
	Put(ctx context.Context, p PutParams) (*model.StoredFile, error)

	// Get retrieves a file by category and filename.
	// Returns a slice (single element normally, multiple with History=true).
	Get(ctx context.Context, p GetParams) ([]model.StoredFile, error)

	// List lists the latest version of files matching the given filters.
	List(ctx context.Context, p ListParams) ([]model.StoredFile, error)

	// Rm soft-deletes (or hard-deletes) a file.
	Rm(ctx context.Context, p RmParams) error

	// Search finds files whose name, content or chunks match a query.
	Search(ctx context.Context, p SearchParams) ([]SearchResult, error)

	// Close closes the store.
	Close() error
}
