package platform

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"path/filepath"
	"sync"

	"github.com/neilforest7/mcp-coordinator/internal/backup"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/logging"
	"github.com/neilforest7/mcp-coordinator/internal/paths"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

// Sink writes reconcile changes into store files. Each name's changes to one
// store land in a single atomic save, after the store's file was backed up
// once for the run.
type Sink struct {
	stores  map[reconcile.Side]*Store
	backups *backup.Session
	logger  *slog.Logger

	mu   sync.Mutex
	docs map[reconcile.Side]*documentState
}

type documentState struct {
	servers map[string]json.RawMessage
	save    func(servers map[string]json.RawMessage) error
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithBackups backs up each store's file before its first write.
func WithBackups(s *backup.Session) SinkOption {
	return func(sink *Sink) {
		sink.backups = s
	}
}

// WithSinkLogger sets the logger used for per-write messages.
func WithSinkLogger(l *slog.Logger) SinkOption {
	return func(sink *Sink) {
		if l != nil {
			sink.logger = l
		}
	}
}

// NewSink creates a sink writing side A changes to a and side B changes to b.
func NewSink(a, b *Store, opts ...SinkOption) *Sink {
	s := &Sink{
		stores: map[reconcile.Side]*Store{reconcile.SideA: a, reconcile.SideB: b},
		logger: logging.NewDiscard(),
		docs:   make(map[reconcile.Side]*documentState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write implements reconcile.Sink. Changes are grouped per store; a store
// is saved only if every change to it applies.
func (s *Sink) Write(ctx context.Context, name string, changes []reconcile.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, side := range []reconcile.Side{reconcile.SideA, reconcile.SideB} {
		var mine []reconcile.Change
		for _, c := range changes {
			if c.Side == side {
				mine = append(mine, c)
			}
		}
		if len(mine) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeSide(side, name, mine); err != nil {
			return err
		}
	}
	return nil
}

// Backups returns the backups taken before the first write to each store,
// keyed by store ID. It is empty when backups are disabled.
func (s *Sink) Backups() map[string]*backup.Manifest {
	if s.backups == nil {
		return nil
	}
	return s.backups.Manifests()
}

func (s *Sink) writeSide(side reconcile.Side, name string, changes []reconcile.Change) error {
	store, ok := s.stores[side]
	if !ok || store == nil {
		return errors.Newf("no store for side %q", side)
	}

	state, err := s.document(side, store)
	if err != nil {
		return err
	}

	next := maps.Clone(state.servers)
	for _, c := range changes {
		switch c.Op {
		case reconcile.OpUpsert:
			next[c.Key] = c.Raw
		case reconcile.OpDelete:
			delete(next, c.Key)
		default:
			return errors.Newf("unknown change op %q", c.Op)
		}
	}

	if s.backups != nil {
		if m, err := s.backups.EnsureBackedUp(store.ID(), store.Path()); err != nil {
			if m == nil {
				return errors.Wrapf(err, "backing up %s", store.DisplayName())
			}
			s.logger.Warn("backup pruning failed", "store", store.ID(), "error", err)
		} else if m != nil {
			s.logger.Debug("backed up store", "store", store.ID(), "backup", m.ID)
		}
	}

	if err := state.save(next); err != nil {
		return errors.Wrapf(err, "writing %s", store.DisplayName())
	}
	state.servers = next

	s.logger.Info("wrote store", "store", store.ID(), "name", name, "changes", len(changes))
	return nil
}

// document returns the cached state of a side's file, loading it on first
// use. Later writes build on the cached servers so each save carries every
// earlier change of the run.
func (s *Sink) document(side reconcile.Side, store *Store) (*documentState, error) {
	if st, ok := s.docs[side]; ok {
		return st, nil
	}

	doc, err := store.Load()
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", store.DisplayName())
	}

	path := store.Path()
	st := &documentState{
		servers: maps.Clone(doc.Servers),
		save: func(servers map[string]json.RawMessage) error {
			if err := paths.EnsureDir(filepath.Dir(path), 0o755); err != nil {
				return errors.Wrap(err, "creating config directory")
			}
			doc.Servers = servers
			return doc.Save(path)
		},
	}
	s.docs[side] = st
	return st, nil
}
