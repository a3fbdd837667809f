package backup

import (
	"io/fs"
	"time"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// DefaultRetentionCount is the default number of backups kept per store.
const DefaultRetentionCount = 5

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist for the store.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrNothingToBackUp indicates none of the given files exist yet.
	ErrNothingToBackUp = errors.New("no files to back up")

	// ErrBackupCorrupted indicates a file's SHA256 hash does not match the
	// manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Manifest describes one backup. It is stored as manifest.json in each
// backup directory.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Store is the store whose files were copied (claude, opencode).
	Store string `json:"store"`

	Files []File `json:"files"`

	// ToolVersion is the mcpsync version that created the backup.
	ToolVersion string `json:"tool_version"`

	// ID is the backup directory name. It is populated when loading from
	// disk and not stored in JSON.
	ID string `json:"-"`
}

// File describes one copied file.
type File struct {
	OriginalPath string      `json:"original_path"`
	RelPath      string      `json:"rel_path"`
	SHA256Hash   string      `json:"sha256_hash"`
	Mode         fs.FileMode `json:"mode"`
}
