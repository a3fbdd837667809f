package platform

import (
	"slices"
	"sync"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/paths"
)

// Sentinel errors for registry operations.
var (
	// ErrStoreAlreadyRegistered is returned when attempting to register
	// a store with an identifier that is already in use.
	ErrStoreAlreadyRegistered = errors.New("store already registered")

	// ErrInvalidStoreName is returned when attempting to register
	// a store with an unknown identifier.
	ErrInvalidStoreName = errors.New("invalid store name")
)

// Registry manages store registration and lookup.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewRegistry creates a new empty store registry.
func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[string]*Store),
	}
}

// Register adds a store to the registry.
// Returns an error if:
//   - The store identifier is unknown (per paths.ValidStore)
//   - A store with the same identifier is already registered
func (r *Registry) Register(s *Store) error {
	if s == nil || !paths.ValidStore(s.ID()) {
		return ErrInvalidStoreName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[s.ID()]; exists {
		return ErrStoreAlreadyRegistered
	}

	r.stores[s.ID()] = s
	return nil
}

// Get returns the store registered under id.
func (r *Registry) Get(id string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[id]
	return s, ok
}

// Pair returns the two stores to be synchronized.
func (r *Registry) Pair(a, b string) (*Store, *Store, error) {
	if a == b {
		return nil, nil, errors.Newf("cannot pair store %q with itself", a)
	}
	sa, ok := r.Get(a)
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "store %q", a)
	}
	sb, ok := r.Get(b)
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "store %q", b)
	}
	return sa, sb, nil
}

// Names returns all registered store identifiers in sorted order.
// Returns nil when the registry is empty.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.stores) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.stores))
	for id := range r.stores {
		names = append(names, id)
	}
	slices.Sort(names)
	return names
}

// All returns all registered stores ordered by identifier.
func (r *Registry) All() []*Store {
	names := r.Names()
	if names == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*Store, 0, len(names))
	for _, id := range names {
		results = append(results, r.stores[id])
	}
	return results
}
