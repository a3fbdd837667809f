package claude

import (
	"github.com/neilforest7/mcp-coordinator/internal/paths"
	"github.com/neilforest7/mcp-coordinator/internal/platform/document"
)

// ServersKey is the top-level key of the server map.
const ServersKey = "mcpServers"

// ConfigFileName is the name of the Claude Desktop configuration file.
const ConfigFileName = "claude_desktop_config.json"

// DefaultConfigPath returns the default location of the Claude Desktop
// configuration file.
func DefaultConfigPath() string {
	return paths.StoreConfigPath(paths.StoreClaude)
}

// LoadDocument reads a Claude Desktop configuration file. A missing file
// yields an empty document.
func LoadDocument(path string) (*document.Document, error) {
	return document.Load(path, ServersKey)
}

// ParseDocument decodes a Claude Desktop configuration.
func ParseDocument(data []byte) (*document.Document, error) {
	return document.Parse(data, ServersKey)
}
