package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/platform/claude"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is out of range.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidDisableStyle indicates an unknown Claude disable style.
	ErrInvalidDisableStyle = errors.New("invalid disable style")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidRetention indicates a negative backup retention.
	ErrInvalidRetention = errors.New("retention must be >= 0")

	// ErrInvalidMachineID indicates a machine id that cannot scope a baseline.
	ErrInvalidMachineID = errors.New("invalid machine id")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of *FieldError.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error
	add := func(field string, value any, err error) {
		errs = append(errs, &FieldError{Field: field, Value: value, Err: err})
	}

	if cfg.Version < 1 || cfg.Version > CurrentVersion {
		add("version", cfg.Version, ErrUnsupportedVersion)
	}

	// The machine id becomes part of a pair id; separators would blur scopes.
	if strings.ContainsAny(cfg.MachineID, "/+ \t\n") {
		add("machine_id", cfg.MachineID, ErrInvalidMachineID)
	}

	if !claude.ValidDisableStyle(cfg.Stores.Claude.DisableStyle) {
		add("stores.claude.disable_style", cfg.Stores.Claude.DisableStyle, ErrInvalidDisableStyle)
	}

	for field, path := range map[string]string{
		"stores.claude.path":   cfg.Stores.Claude.Path,
		"stores.opencode.path": cfg.Stores.OpenCode.Path,
		"baseline_file":        cfg.BaselineFile,
		"backup.dir":           cfg.Backup.Dir,
	} {
		if err := validatePath(path); err != nil {
			add(field, path, err)
		}
	}

	if cfg.Backup.Retention < 0 {
		add("backup.retention", cfg.Backup.Retention, ErrInvalidRetention)
	}

	sortFieldErrors(errs)
	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents an invalid value for one config key.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func sortFieldErrors(errs []error) {
	slices.SortFunc(errs, func(a, b error) int {
		return strings.Compare(a.(*FieldError).Field, b.(*FieldError).Field)
	})
}
