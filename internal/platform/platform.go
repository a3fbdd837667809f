package platform

import (
	"encoding/json"

	"github.com/neilforest7/mcp-coordinator/internal/mcp"
	"github.com/neilforest7/mcp-coordinator/internal/platform/claude"
	"github.com/neilforest7/mcp-coordinator/internal/platform/document"
	"github.com/neilforest7/mcp-coordinator/internal/platform/opencode"
)

// Store is one MCP client's configuration store.
type Store struct {
	normalizer mcp.Normalizer
	serversKey string
	path       string
}

// NewStore creates a store. An empty path is kept empty; callers resolve
// defaults before constructing.
func NewStore(n mcp.Normalizer, serversKey, path string) *Store {
	return &Store{normalizer: n, serversKey: serversKey, path: path}
}

// NewClaudeStore creates the Claude Desktop store. An empty path selects the
// default location.
func NewClaudeStore(path string, style claude.DisableStyle) *Store {
	if path == "" {
		path = claude.DefaultConfigPath()
	}
	return NewStore(claude.NewMCPNormalizer(claude.WithDisableStyle(style)), claude.ServersKey, path)
}

// NewOpenCodeStore creates the OpenCode store. An empty path selects the
// default location.
func NewOpenCodeStore(path string) *Store {
	if path == "" {
		path = opencode.DefaultConfigPath()
	}
	return NewStore(opencode.NewMCPNormalizer(), opencode.ServersKey, path)
}

// ID returns the store identifier.
func (s *Store) ID() string { return s.normalizer.Store() }

// DisplayName returns the human readable store name.
func (s *Store) DisplayName() string { return s.normalizer.DisplayName() }

// Normalizer returns the store's schema normalizer.
func (s *Store) Normalizer() mcp.Normalizer { return s.normalizer }

// ServersKey returns the top-level key holding the server map.
func (s *Store) ServersKey() string { return s.serversKey }

// Path returns the configuration file path.
func (s *Store) Path() string { return s.path }

// Load reads the store's configuration file. A missing file yields an empty
// document.
func (s *Store) Load() (*document.Document, error) {
	return document.Load(s.path, s.serversKey)
}

// Servers reads the store's raw server map.
func (s *Store) Servers() (map[string]json.RawMessage, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Servers, nil
}
