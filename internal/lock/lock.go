// Package lock serializes applies per store pair across processes.
package lock

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/paths"
)

// ErrLocked indicates another process holds the pair's lock.
var ErrLocked = errors.New("another sync is in progress")

// retryDelay is how often Acquire polls a held lock.
const retryDelay = 100 * time.Millisecond

// Lock is an exclusive advisory lock on one file.
type Lock struct {
	fl *flock.Flock
}

// ForPair returns the lock guarding applies to pairID, kept in dir. An
// empty dir selects paths.LockDir.
func ForPair(dir, pairID string) *Lock {
	if dir == "" {
		return New(paths.LockFile(pairID))
	}
	return New(paths.LockFileIn(dir, pairID))
}

// New returns a lock on path. The file is created on first acquire.
func New(path string) *Lock {
	return &Lock{fl: flock.New(path)}
}

// Path returns the lock file.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// TryAcquire takes the lock without waiting. It returns ErrLocked when
// another holder exists.
func (l *Lock) TryAcquire() error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	locked, err := l.fl.TryLock()
	if err != nil {
		return errors.Wrapf(err, "acquiring lock %s", l.Path())
	}
	if !locked {
		return errors.Wrapf(ErrLocked, "lock %s is held", l.Path())
	}
	return nil
}

// Acquire waits for the lock until ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	locked, err := l.fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Mark(errors.Wrapf(ctxErr, "waiting for lock %s", l.Path()), ErrLocked)
		}
		return errors.Wrapf(err, "acquiring lock %s", l.Path())
	}
	if !locked {
		return errors.Wrapf(ErrLocked, "lock %s is held", l.Path())
	}
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return errors.Wrapf(err, "releasing lock %s", l.Path())
	}
	return nil
}

// Held reports whether this Lock currently holds the file.
func (l *Lock) Held() bool {
	return l.fl.Locked()
}

func (l *Lock) ensureDir() error {
	if err := paths.EnsureDir(filepath.Dir(l.Path()), paths.DefaultDirPerm); err != nil {
		return errors.Wrap(err, "creating lock directory")
	}
	return nil
}
