package platform

import (
	"os"
)

// InstallStatus indicates whether a store's configuration file is present.
type InstallStatus string

const (
	// StatusInstalled indicates the configuration file exists.
	StatusInstalled InstallStatus = "installed"

	// StatusNotInstalled indicates the configuration file does not exist.
	// Syncing into such a store creates the file.
	StatusNotInstalled InstallStatus = "not_installed"
)

// DetectionResult contains information about a detected store.
type DetectionResult struct {
	// Store is the store identifier.
	Store string

	// DisplayName is the human readable store name.
	DisplayName string

	// Path is the configuration file path. Always set, even if the file does
	// not exist.
	Path string

	// Status indicates whether the file exists.
	Status InstallStatus
}

// Detect checks whether a store's configuration file exists.
func Detect(s *Store) *DetectionResult {
	status := StatusNotInstalled
	if fileExists(s.Path()) {
		status = StatusInstalled
	}
	return &DetectionResult{
		Store:       s.ID(),
		DisplayName: s.DisplayName(),
		Path:        s.Path(),
		Status:      status,
	}
}

// DetectAll returns detection results for every registered store, ordered by
// identifier.
func DetectAll(r *Registry) []*DetectionResult {
	stores := r.All()
	results := make([]*DetectionResult, 0, len(stores))
	for _, s := range stores {
		results = append(results, Detect(s))
	}
	return results
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}
