package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/neilforest7/mcp-coordinator/internal/backup"
	"github.com/neilforest7/mcp-coordinator/internal/baseline"
	"github.com/neilforest7/mcp-coordinator/internal/config"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/lock"
	"github.com/neilforest7/mcp-coordinator/internal/logging"
	"github.com/neilforest7/mcp-coordinator/internal/paths"
	"github.com/neilforest7/mcp-coordinator/internal/platform"
	"github.com/neilforest7/mcp-coordinator/internal/platform/claude"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

// environment is everything a command needs to reconcile the two stores.
type environment struct {
	cfg      *config.Config
	registry *platform.Registry
	a, b     *platform.Store
	baseline *baseline.FileStore
	pairID   string
	engine   *reconcile.Engine
	logger   *slog.Logger
}

// newEnvironment resolves the stores and baseline from the loaded config and
// the global flags.
func newEnvironment(ctx context.Context) (*environment, error) {
	cfg := loadedConfig
	if cfg == nil {
		cfg = config.Default()
	}
	logger := logging.FromContext(ctx)

	machine := firstNonEmpty(machineFlag, cfg.MachineID)
	if id, ok := strings.CutPrefix(machine, "remote:"); ok {
		machine = baseline.RemoteMachine(id)
	}
	if strings.ContainsAny(machine, "/+ \t") {
		return nil, errors.NewUserError(errors.Newf("invalid machine %q", machine),
			"Machine names cannot contain '/', '+' or spaces")
	}

	registry := platform.NewRegistry()
	style := claude.DisableStyle(cfg.Stores.Claude.DisableStyle)
	for _, s := range []*platform.Store{
		platform.NewClaudeStore(firstNonEmpty(claudeConfig, cfg.ClaudePath()), style),
		platform.NewOpenCodeStore(firstNonEmpty(opencodeConfig, cfg.OpenCodePath())),
	} {
		if err := registry.Register(s); err != nil {
			return nil, errors.Wrap(err, "registering stores")
		}
	}
	a, b, err := registry.Pair(paths.StoreClaude, paths.StoreOpenCode)
	if err != nil {
		return nil, errors.Wrap(err, "resolving store pair")
	}

	bl, err := baseline.Open(cfg.BaselinePath())
	if err != nil {
		return nil, errors.NewSystemError(err, "Check or remove the baseline file "+cfg.BaselinePath())
	}

	pairID := baseline.PairID(machine, a.ID(), b.ID())
	logger = logger.With("pair", pairID)

	return &environment{
		cfg:      cfg,
		registry: registry,
		a:        a,
		b:        b,
		baseline: bl,
		pairID:   pairID,
		engine:   reconcile.NewEngine(a.Normalizer(), b.Normalizer(), bl, pairID, reconcile.WithLogger(logger)),
		logger:   logger,
	}, nil
}

// plan reads both store files and classifies every name.
func (e *environment) plan() (*reconcile.Plan, error) {
	rawA, err := e.a.Servers()
	if err != nil {
		return nil, errors.NewUserError(err, "Fix the JSON in "+e.a.Path())
	}
	rawB, err := e.b.Servers()
	if err != nil {
		return nil, errors.NewUserError(err, "Fix the JSON in "+e.b.Path())
	}
	e.logger.Debug("read stores", "claude", len(rawA), "opencode", len(rawB))

	p, err := e.engine.Analyze(rawA, rawB)
	if err != nil {
		return nil, errors.Wrap(err, "analyzing stores")
	}
	for _, m := range p.Malformed {
		e.logger.Warn("skipping malformed entry", "store", m.Store, "key", m.Key, "error", m.Err)
	}
	return p, nil
}

// sideLabel returns the display name of a side.
func (e *environment) sideLabel(s reconcile.Side) string {
	if s == reconcile.SideA {
		return e.a.DisplayName()
	}
	return e.b.DisplayName()
}

// sideOf maps a store identifier to its side.
func (e *environment) sideOf(store string) (reconcile.Side, bool) {
	switch store {
	case e.a.ID():
		return reconcile.SideA, true
	case e.b.ID():
		return reconcile.SideB, true
	}
	return "", false
}

// lock returns the apply lock for the pair, kept beside the baseline file.
func (e *environment) lock() *lock.Lock {
	return lock.ForPair(filepath.Join(filepath.Dir(e.cfg.BaselinePath()), "locks"), e.pairID)
}

// sink returns the writer for apply, backing up files first when enabled.
func (e *environment) sink() *platform.Sink {
	opts := []platform.SinkOption{platform.WithSinkLogger(e.logger)}
	if e.cfg.Backup.Enabled {
		mgr := backup.NewManager(
			backup.WithBackupDir(e.cfg.BackupDir()),
			backup.WithRetentionCount(e.cfg.Backup.Retention),
		)
		opts = append(opts, platform.WithBackups(backup.NewSession(mgr)))
	}
	return platform.NewSink(e.a, e.b, opts...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
