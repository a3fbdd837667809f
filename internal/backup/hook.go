package backup

import (
	"sync"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

// Session backs up each store at most once, before its first write in a run.
// It is safe for concurrent use.
type Session struct {
	mgr *Manager

	mu   sync.Mutex
	done map[string]*Manifest
}

// NewSession creates a session backed by mgr.
func NewSession(mgr *Manager) *Session {
	return &Session{mgr: mgr, done: make(map[string]*Manifest)}
}

// EnsureBackedUp backs up the store's file unless the session already did.
// A file that does not exist yet needs no backup and returns (nil, nil).
// A failed backup is retried on the next call.
func (s *Session) EnsureBackedUp(store, path string) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.done[store]; ok {
		return m, nil
	}

	m, err := s.mgr.Backup(store, path)
	if errors.Is(err, ErrNothingToBackUp) {
		s.done[store] = nil
		return nil, nil
	}
	if err != nil && m == nil {
		return nil, errors.Wrapf(err, "creating backup for %s", store)
	}

	// A pruning failure still produced a usable backup.
	s.done[store] = m
	return m, err
}

// Manifests returns the backups taken during the session, keyed by store.
func (s *Session) Manifests() map[string]*Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*Manifest, len(s.done))
	for store, m := range s.done {
		if m != nil {
			out[store] = m
		}
	}
	return out
}
