// Package manifest resolves stable logical asset names to content-addressed
// physical paths, enabling long-lived client-side caching. A manifest is an
// immutable mapping produced by the build step and loaded once at process
// start; when no mapping exists (development, or before a first production
// build) resolution falls back to a conventional static path.
//
// Two independent manifests exist per build, one for server-consumed assets
// and one for client-consumed assets. They are separate values with separate
// domains and must never be conflated.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/tandemview/tandem/internal/logging"
)

// Domain names which asset domain a manifest covers.
type Domain string

const (
	DomainServer Domain = "server"
	DomainClient Domain = "client"
)

// DefaultFallbackPrefix is the conventional path prefix used when a key has
// no mapping.
const DefaultFallbackPrefix = "/static"

// Manifest is an immutable logical-key to physical-path mapping for one
// asset domain.
type Manifest struct {
	domain  Domain
	entries map[string]string
}

// New creates a manifest over a copy of entries, so later mutation of the
// argument cannot leak in.
func New(domain Domain, entries map[string]string) *Manifest {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Manifest{domain: domain, entries: copied}
}

// Empty creates a manifest with no mappings, the pre-build state where every
// lookup falls back.
func Empty(domain Domain) *Manifest {
	return &Manifest{domain: domain, entries: map[string]string{}}
}

// LoadFile reads a manifest document: a flat JSON object mapping logical
// keys to physical paths.
func LoadFile(domain Domain, filePath string) (*Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s manifest %s: %w", domain, filePath, err)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s manifest %s: %w", domain, filePath, err)
	}
	return New(domain, entries), nil
}

// Domain returns the asset domain this manifest covers.
func (m *Manifest) Domain() Domain {
	return m.domain
}

// Len returns the number of mappings.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Lookup returns the mapped physical path for key and whether a mapping
// exists. Pure: no mutation, no caching beyond the manifest's immutability.
func (m *Manifest) Lookup(key string) (string, bool) {
	p, ok := m.entries[key]
	return p, ok
}

// Resolve returns the mapped physical path for key, or the conventional
// fallback path when no mapping exists.
func (m *Manifest) Resolve(key, fallbackPrefix string) string {
	if p, ok := m.entries[key]; ok {
		return p
	}
	return Fallback(key, fallbackPrefix)
}

// Fallback builds the conventional physical path for a logical key.
func Fallback(key, fallbackPrefix string) string {
	if fallbackPrefix == "" {
		fallbackPrefix = DefaultFallbackPrefix
	}
	return path.Join(fallbackPrefix, key)
}

// Resolver resolves keys against one manifest domain and logs degraded-mode
// lookups. A key miss is not an error; in production it indicates an unbuilt
// or stale manifest and is logged as a warning.
type Resolver struct {
	store          *Store
	fallbackPrefix string
	production     bool
	logger         logging.Logger
}

// NewResolver creates a resolver over a manifest store.
func NewResolver(store *Store, fallbackPrefix string, production bool, logger logging.Logger) *Resolver {
	return &Resolver{
		store:          store,
		fallbackPrefix: fallbackPrefix,
		production:     production,
		logger:         logger.WithComponent("manifest"),
	}
}

// Domain returns the asset domain this resolver serves.
func (r *Resolver) Domain() Domain {
	return r.store.Domain()
}

// Resolve maps a logical key to a physical path, falling back to the
// conventional path on a miss.
func (r *Resolver) Resolve(key string) string {
	m := r.store.Current()
	if p, ok := m.Lookup(key); ok {
		return p
	}
	if r.production {
		r.logger.Warn(context.Background(), nil, "manifest miss, serving fallback path",
			"domain", string(m.Domain()),
			"key", key)
	}
	return Fallback(key, r.fallbackPrefix)
}
