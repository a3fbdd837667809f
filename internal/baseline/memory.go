package baseline

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/mcp"
)

// entry is the stored form of one baseline.
type entry struct {
	Entry    *mcp.Entry `json:"entry"`
	SyncedAt time.Time  `json:"synced_at"`
}

// pairs maps pair identifiers to per-name baselines.
type pairs map[string]map[string]entry

func (p pairs) get(pairID, name string) (*mcp.Entry, bool) {
	e, ok := p[pairID][name]
	if !ok {
		return nil, false
	}
	return e.Entry.Clone(), true
}

func (p pairs) put(pairID, name string, e *mcp.Entry, now time.Time) {
	byName, ok := p[pairID]
	if !ok {
		byName = make(map[string]entry)
		p[pairID] = byName
	}
	byName[name] = entry{Entry: e.Clone(), SyncedAt: now.UTC()}
}

// remove reports whether anything was removed.
func (p pairs) remove(pairID, name string) bool {
	byName, ok := p[pairID]
	if !ok {
		return false
	}
	if _, ok := byName[name]; !ok {
		return false
	}
	delete(byName, name)
	if len(byName) == 0 {
		delete(p, pairID)
	}
	return true
}

func (p pairs) list(pairID string) []Record {
	byName := p[pairID]
	records := make([]Record, 0, len(byName))
	for name, e := range byName {
		records = append(records, Record{Name: name, Entry: e.Entry.Clone(), SyncedAt: e.SyncedAt})
	}
	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return records
}

func validate(pairID, name string, e *mcp.Entry) error {
	if pairID == "" {
		return errors.New("baseline pair id is required")
	}
	if name == "" {
		return errors.New("baseline name is required")
	}
	if e == nil {
		return errors.Newf("baseline for %q is nil", name)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	pairs pairs
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pairs: make(pairs), now: time.Now}
}

// Get implements Store.
func (s *MemoryStore) Get(pairID, name string) (*mcp.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.pairs.get(pairID, name)
	return e, ok, nil
}

// Put implements Store.
func (s *MemoryStore) Put(pairID, name string, e *mcp.Entry) error {
	if err := validate(pairID, name, e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs.put(pairID, name, e, s.now())
	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(pairID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs.remove(pairID, name)
	return nil
}

// List implements Lister.
func (s *MemoryStore) List(pairID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pairs.list(pairID), nil
}
