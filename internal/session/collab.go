package session

import (
	"context"

	"github.com/rcliao/draftpad/internal/model"
)

// FileStore is the file-storage collaborator.
// Fetch returns an error wrapping model.ErrNotFound for a missing file.
type FileStore interface {
	Fetch(ctx context.Context, id model.Identity) (*model.StoredFile, error)
	Persist(ctx context.Context, id model.Identity, req model.SaveRequest) (*model.StoredFile, error)
}

// SearchIndex is the search collaborator.
type SearchIndex interface {
	Lookup(ctx context.Context, query string) ([]model.SearchResult, error)
}

// Notifier receives user-visible save outcomes. Only manual saves notify.
type Notifier interface {
	SaveSucceeded(res model.PersistResult)
	SaveFailed(id model.Identity, err error)
}

type nopNotifier struct{}

func (nopNotifier) SaveSucceeded(model.PersistResult) {}
func (nopNotifier) SaveFailed(model.Identity, error)  {}
