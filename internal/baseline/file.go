package baseline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/mcp"
	"github.com/neilforest7/mcp-coordinator/internal/paths"
	"github.com/neilforest7/mcp-coordinator/pkg/fileutil"
)

// FileVersion is the current baseline file format version.
const FileVersion = 1

// fileFormat is the on-disk layout of a FileStore.
type fileFormat struct {
	Version int   `json:"version"`
	Pairs   pairs `json:"pairs"`
}

// FileStore is a Store backed by a JSON file. Every mutation rewrites the
// file atomically before returning, so a successful Put is durable.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	pairs pairs
	now   func() time.Time
}

// Open loads the baseline file at path. A missing file yields an empty store;
// the file and its directory are created on the first mutation.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, pairs: make(pairs), now: time.Now}

	data, err := fileutil.ReadDocument(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "reading baseline %s", path)
	}
	if len(data) == 0 {
		return s, nil
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing baseline %s", path)
	}
	if f.Version > FileVersion {
		return nil, errors.Newf("baseline %s has unsupported version %d", path, f.Version)
	}
	if f.Pairs != nil {
		s.pairs = f.Pairs
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get implements Store.
func (s *FileStore) Get(pairID, name string) (*mcp.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.pairs.get(pairID, name)
	return e, ok, nil
}

// Put implements Store. The in-memory state is only changed when the file
// write succeeds.
func (s *FileStore) Put(pairID, name string, e *mcp.Entry) error {
	if err := validate(pairID, name, e); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.pairs[pairID][name]
	s.pairs.put(pairID, name, e, s.now())
	if err := s.flush(); err != nil {
		if had {
			s.pairs[pairID][name] = prev
		} else {
			s.pairs.remove(pairID, name)
		}
		return err
	}
	return nil
}

// Remove implements Store.
func (s *FileStore) Remove(pairID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.pairs[pairID][name]
	if !s.pairs.remove(pairID, name) {
		return nil
	}
	if err := s.flush(); err != nil {
		if had {
			s.pairs.put(pairID, name, prev.Entry, prev.SyncedAt)
		}
		return err
	}
	return nil
}

// List implements Lister.
func (s *FileStore) List(pairID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pairs.list(pairID), nil
}

// flush writes the current state. Callers hold s.mu.
func (s *FileStore) flush() error {
	if err := paths.EnsureDir(filepath.Dir(s.path), 0); err != nil {
		return errors.Wrap(err, "creating baseline directory")
	}
	f := fileFormat{Version: FileVersion, Pairs: s.pairs}
	if err := fileutil.AtomicWriteJSON(s.path, f); err != nil {
		return errors.Wrapf(err, "writing baseline %s", s.path)
	}
	return nil
}
