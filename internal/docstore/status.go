package docstore

import (
	"context"
	"sort"
)

const maxStatusCollections = 10

// Status is a point-in-time connectivity report.
type Status struct {
	Configured  bool
	Connected   bool
	Backend     string
	Database    string
	Collections []string
	Err         error
}

// Status probes the backend and lists up to ten collection names.
func (s *Store) Status(ctx context.Context) Status {
	if !s.Available() {
		return Status{}
	}

	st := Status{
		Configured: true,
		Backend:    s.backend.Name(),
		Database:   s.backend.Database(),
	}
	if err := s.backend.Ping(ctx); err != nil {
		st.Err = err
		return st
	}
	st.Connected = true

	names, err := s.backend.Collections(ctx)
	if err != nil {
		st.Err = err
		return st
	}
	sort.Strings(names)
	if len(names) > maxStatusCollections {
		names = names[:maxStatusCollections]
	}
	st.Collections = names
	return st
}
