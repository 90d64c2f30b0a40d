package manifest

import (
	"os"
	"sync/atomic"
)

// Store holds the current manifest for one asset domain. The manifest value
// itself stays immutable; in development the store swaps in a freshly loaded
// value when the build rewrites the document. Reads are lock-free.
type Store struct {
	domain  Domain
	path    string
	current atomic.Pointer[Manifest]
}

// NewStore creates a store for the manifest document at path. A missing
// document is not an error: the store starts empty and every lookup falls
// back, which is the expected development and pre-build state.
func NewStore(domain Domain, path string) (*Store, error) {
	s := &Store{domain: domain, path: path}

	if path == "" {
		s.current.Store(Empty(domain))
		return s, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.current.Store(Empty(domain))
		return s, nil
	}

	m, err := LoadFile(domain, path)
	if err != nil {
		return nil, err
	}
	s.current.Store(m)
	return s, nil
}

// FixedStore wraps an already-built manifest, for tests and embedded use.
func FixedStore(m *Manifest) *Store {
	s := &Store{domain: m.Domain()}
	s.current.Store(m)
	return s
}

// Domain returns the asset domain this store serves.
func (s *Store) Domain() Domain {
	return s.domain
}

// Path returns the manifest document path, empty when the store is fixed.
func (s *Store) Path() string {
	return s.path
}

// Current returns the current manifest.
func (s *Store) Current() *Manifest {
	return s.current.Load()
}

// Reload reads the manifest document again and swaps it in. Used by the
// development watcher after the build rewrites the document.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	m, err := LoadFile(s.domain, s.path)
	if err != nil {
		return err
	}
	s.current.Store(m)
	return nil
}
