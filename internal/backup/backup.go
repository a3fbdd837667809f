package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/paths"
	"github.com/neilforest7/mcp-coordinator/pkg/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

const idLayout = "20060102T150405"

// Manager creates, restores, and prunes store backups.
type Manager struct {
	rootDir        string
	retentionCount int
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory. Each store gets a
// subdirectory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of backups kept per store after each
// backup. Zero disables pruning.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.retentionCount = n
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupRoot(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backup copies the given files of a store into a new timestamped backup and
// prunes older backups beyond the retention count. Missing files are skipped;
// when none exist it returns ErrNothingToBackUp.
func (m *Manager) Backup(store string, files ...string) (*Manifest, error) {
	if store == "" {
		return nil, errors.New("store is required")
	}

	var existing []string
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "stat %s", f)
		}
		if info.IsDir() {
			return nil, errors.Newf("%s is a directory", f)
		}
		existing = append(existing, f)
	}
	if len(existing) == 0 {
		return nil, ErrNothingToBackUp
	}

	createdAt := m.now().UTC()
	backupID, err := m.reserveID(store, createdAt)
	if err != nil {
		return nil, err
	}
	backupPath := m.backupPath(store, backupID)

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   createdAt,
		Store:       store,
		ToolVersion: Version,
		ID:          backupID,
	}
	for _, f := range existing {
		bf, err := backupFile(f, backupPath)
		if err != nil {
			_ = os.RemoveAll(backupPath)
			return nil, errors.Wrapf(err, "backing up %s", f)
		}
		manifest.Files = append(manifest.Files, *bf)
	}

	if err := fileutil.AtomicWriteJSON(filepath.Join(backupPath, "manifest.json"), manifest); err != nil {
		_ = os.RemoveAll(backupPath)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if m.retentionCount > 0 {
		if err := m.Prune(store, m.retentionCount); err != nil {
			return manifest, errors.Wrap(err, "pruning old backups")
		}
	}

	return manifest, nil
}

// reserveID creates the backup directory under a unique ID derived from t.
// Backups within the same second get an increasing numeric suffix, so a
// newer backup always sorts after older ones even once those are pruned.
func (m *Manager) reserveID(store string, t time.Time) (string, error) {
	dir := m.storeDir(store)
	if err := paths.EnsureDir(dir, 0o700); err != nil {
		return "", errors.Wrap(err, "creating backup directory")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(err, "reading backup directory")
	}

	base := t.Format(idLayout)
	next := 0
	for _, e := range entries {
		if b, n := splitID(e.Name()); b == base && n+1 > next {
			next = n + 1
		}
	}

	for i := next; ; i++ {
		id := base
		if i > 0 {
			id = base + "-" + strconv.Itoa(i)
		}
		err := os.Mkdir(m.backupPath(store, id), 0o700)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", errors.Wrap(err, "creating backup directory")
		}
	}
}

// backupFile copies a single file into the backup directory.
func backupFile(src, backupPath string) (*File, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return nil, errors.Wrap(err, "resolving path")
	}
	relPath := generateRelPath(abs)
	dst := filepath.Join(backupPath, relPath)

	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return nil, errors.Wrap(err, "creating parent directory")
	}

	hash, mode, err := copyFile(abs, dst)
	if err != nil {
		return nil, err
	}

	return &File{
		OriginalPath: abs,
		RelPath:      relPath,
		SHA256Hash:   hash,
		Mode:         mode,
	}, nil
}

// Restore copies the files of a backup back to their original locations
// after verifying their hashes.
func (m *Manager) Restore(store, backupID string) error {
	manifest, err := m.Get(store, backupID)
	if err != nil {
		return err
	}

	backupPath := m.backupPath(store, backupID)

	// Load and verify every file before touching any original.
	contents := make([][]byte, len(manifest.Files))
	for i, bf := range manifest.Files {
		data, err := os.ReadFile(filepath.Join(backupPath, bf.RelPath))
		if err != nil {
			return errors.Wrapf(err, "reading backup file %s", bf.RelPath)
		}
		if sum := sha256.Sum256(data); hex.EncodeToString(sum[:]) != bf.SHA256Hash {
			return errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", bf.RelPath)
		}
		contents[i] = data
	}

	for i, bf := range manifest.Files {
		if err := fileutil.AtomicWriteFile(bf.OriginalPath, contents[i], bf.Mode.Perm()); err != nil {
			return errors.Wrapf(err, "restoring %s", bf.OriginalPath)
		}
	}
	return nil
}

// List returns all backups for a store, newest first.
func (m *Manager) List(store string) ([]Manifest, error) {
	if store == "" {
		return nil, errors.New("store is required")
	}

	entries, err := os.ReadDir(m.storeDir(store))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(store, entry.Name())
		if err != nil {
			// Skip invalid backup directories
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	// Newest first; IDs break ties within a second.
	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})

	return manifests, nil
}

// Prune removes backups beyond the keep most recent for the store.
func (m *Manager) Prune(store string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List(store)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for i := keep; i < len(manifests); i++ {
		if err := os.RemoveAll(m.backupPath(store, manifests[i].ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
	}

	return nil
}

// Get returns the manifest for a specific backup.
func (m *Manager) Get(store, backupID string) (*Manifest, error) {
	if store == "" {
		return nil, errors.New("store is required")
	}
	if backupID == "" {
		return nil, errors.New("backup ID is required")
	}

	data, err := os.ReadFile(filepath.Join(m.backupPath(store, backupID), "manifest.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", backupID)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.ID = backupID
	return &manifest, nil
}

func (m *Manager) storeDir(store string) string {
	return filepath.Join(m.rootDir, store)
}

func (m *Manager) backupPath(store, backupID string) string {
	return filepath.Join(m.storeDir(store), backupID)
}

// compareIDs orders backup IDs by timestamp then numeric suffix.
func compareIDs(a, b string) int {
	aBase, aN := splitID(a)
	bBase, bN := splitID(b)
	if c := strings.Compare(aBase, bBase); c != 0 {
		return c
	}
	return aN - bN
}

func splitID(id string) (string, int) {
	base, suffix, ok := strings.Cut(id, "-")
	if !ok {
		return id, 0
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return id, 0
	}
	return base, n
}

// copyFile copies src to dst, returning the SHA256 hash and the source mode.
// The copy is owner-only since store files hold credentials.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = srcInfo.Mode()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(dstFile, h), srcFile); err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}

	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}

	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// generateRelPath turns an absolute path into a relative path inside a
// backup directory. Colons are dropped so Windows drive letters stay valid.
func generateRelPath(absPath string) string {
	clean := filepath.Clean(absPath)
	clean = strings.TrimLeft(clean, string(filepath.Separator))
	return strings.ReplaceAll(clean, ":", "")
}
