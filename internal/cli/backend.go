package cli

import (
	"github.com/rcliao/draftpad/internal/config"
	"github.com/rcliao/draftpad/internal/remote"
	"github.com/rcliao/draftpad/internal/session"
	"github.com/rcliao/draftpad/internal/store"
)

// backend bundles the collaborators an editing session talks to.
type backend struct {
	files session.FileStore
	index session.SearchIndex
	close func() error
}

func openBackend(cfg *config.Config) (*backend, error) {
	if cfg.Backend == config.BackendHTTP {
		timeout := cfg.HTTP.Timeout.Std()
		return &backend{
			files: remote.NewFileClient(cfg.FilesURL, timeout),
			index: remote.NewSearchClient(cfg.SearchURL, timeout),
			close: func() error { return nil },
		}, nil
	}

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return &backend{files: s, index: s, close: s.Close}, nil
}

func (b *backend) Close() error { return b.close() }
