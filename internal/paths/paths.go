package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "mcpsync"

// Store identifiers for supported MCP clients.
const (
	StoreClaude   = "claude"
	StoreOpenCode = "opencode"
)

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory, or "" if it cannot be determined.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// StateHome returns the XDG state home directory.
// On Linux: ~/.local/state
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func StateHome() string {
	return xdg.StateHome
}

// ConfigDir returns the directory holding the tool's own config.yaml.
// Returns: <ConfigHome>/mcpsync/
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// BaselineFile returns the default baseline file.
// Returns: <StateHome>/mcpsync/baseline.json
func BaselineFile() string {
	return filepath.Join(StateHome(), AppName, "baseline.json")
}

// BackupRoot returns the directory holding every store's backups.
// Returns: <DataHome>/mcpsync/backups/
func BackupRoot() string {
	return filepath.Join(DataHome(), AppName, "backups")
}

// BackupDir returns the backup directory for a store.
// Returns: <DataHome>/mcpsync/backups/<store>/
func BackupDir(store string) string {
	return filepath.Join(BackupRoot(), store)
}

// LockDir returns the default directory for apply locks.
// Returns: <StateHome>/mcpsync/locks/
func LockDir() string {
	return filepath.Join(StateHome(), AppName, "locks")
}

// LockFile returns the default lock file guarding applies for a store pair.
// Returns: <StateHome>/mcpsync/locks/<pairID>.lock
func LockFile(pairID string) string {
	return LockFileIn(LockDir(), pairID)
}

// LockFileIn returns the lock file for a store pair inside dir. Path
// separators in pairID are replaced so every pair gets one flat file.
func LockFileIn(dir, pairID string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(pairID)
	return filepath.Join(dir, name+".lock")
}

// ValidStore returns true if the store name is recognized.
func ValidStore(store string) bool {
	return store == StoreClaude || store == StoreOpenCode
}

// Stores returns all supported store identifiers.
func Stores() []string {
	return []string{StoreClaude, StoreOpenCode}
}

// StoreConfigPath returns the default configuration file for a store.
//
// Store paths:
//   - claude: <ConfigHome>/Claude/claude_desktop_config.json
//     (%APPDATA%\Claude\ on Windows)
//   - opencode: ~/.config/opencode/opencode.json on every OS
//
// Returns an empty string for unknown stores.
func StoreConfigPath(store string) string {
	switch store {
	case StoreClaude:
		base := ConfigHome()
		if runtime.GOOS == "windows" {
			if appData := os.Getenv("APPDATA"); appData != "" {
				base = appData
			}
		}
		return filepath.Join(base, "Claude", "claude_desktop_config.json")
	case StoreOpenCode:
		home := Home()
		if home == "" {
			return ""
		}
		return filepath.Join(home, ".config", "opencode", "opencode.json")
	}
	return ""
}
