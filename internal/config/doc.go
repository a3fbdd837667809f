// Package config provides configuration management for the mcpsync CLI.
//
// This package handles loading and validating the tool's own configuration
// file. It is distinct from the store files (Claude Desktop, OpenCode) that
// the tool reconciles.
//
// # Configuration File
//
// config.yaml is searched in $MCPSYNC_CONFIG_DIR, the current directory and
// <ConfigHome>/mcpsync/:
//
//	version: 1
//	machine_id: laptop          # baseline scope, default "local"
//	stores:
//	  claude:
//	    path: /custom/claude_desktop_config.json
//	    disable_style: prefix   # or "flag"
//	  opencode:
//	    path: /custom/opencode.json
//	baseline_file: /custom/baseline.json
//	backup:
//	  enabled: true
//	  retention: 5
//	  dir: /custom/backups     # default <DataHome>/mcpsync/backups
//
// Every key can be overridden from the environment with the MCPSYNC_ prefix,
// dots replaced by underscores: MCPSYNC_STORES_CLAUDE_PATH.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if errors.Is(err, errors.ErrInvalidConfig) {
//	    // one or more *FieldError joined
//	}
package config
