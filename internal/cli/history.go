package cli

import (
	"github.com/roach88/ash/internal/history"
	"github.com/roach88/ash/internal/store"
)

// openHistory opens the history database at path with every ash table
// registered.
func openHistory(opts *RootOptions, path string) (*store.Store, error) {
	reg, err := history.NewRegistry()
	if err != nil {
		return nil, err
	}
	return store.Open(path, reg,
		store.WithConfig(opts.Config),
		store.WithLogger(opts.Logger),
	)
}

// closeHistory closes s, logging rather than returning a failure.
func closeHistory(opts *RootOptions, s *store.Store) {
	if err := s.Close(); err != nil {
		opts.Logger.Error("error closing database", "path", s.Path(), "error", err)
	}
}
