// Package paths provides cross-platform path resolution for the MCP client
// configuration files and for mcpsync's own state.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. Tool state lives under the XDG directories:
//
//	| Purpose  | Location                                  |
//	|----------|-------------------------------------------|
//	| Config   | <ConfigHome>/mcpsync/config.yaml          |
//	| Baseline | <StateHome>/mcpsync/baseline.json         |
//	| Locks    | <StateHome>/mcpsync/locks/<pair>.lock     |
//	| Backups  | <DataHome>/mcpsync/backups/<store>/       |
//
// # Store Files
//
// Use the store constants when resolving client configuration files:
//
//	paths.StoreConfigPath(paths.StoreClaude)   // .../Claude/claude_desktop_config.json
//	paths.StoreConfigPath(paths.StoreOpenCode) // ~/.config/opencode/opencode.json
package paths
