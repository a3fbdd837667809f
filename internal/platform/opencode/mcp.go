package opencode

import (
	"github.com/neilforest7/mcp-coordinator/internal/paths"
	"github.com/neilforest7/mcp-coordinator/internal/platform/document"
)

// ServersKey is the top-level key of the server map.
const ServersKey = "mcp"

// DefaultConfigPath returns the default location of opencode.json.
func DefaultConfigPath() string {
	return paths.StoreConfigPath(paths.StoreOpenCode)
}

// LoadDocument reads an OpenCode configuration file. A missing file yields an
// empty document.
func LoadDocument(path string) (*document.Document, error) {
	return document.Load(path, ServersKey)
}

// ParseDocument decodes an OpenCode configuration.
func ParseDocument(data []byte) (*document.Document, error) {
	return document.Parse(data, ServersKey)
}
