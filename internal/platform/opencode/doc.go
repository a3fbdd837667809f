// Package opencode provides the OpenCode store: its MCP server schema,
// normalization to and from canonical entries, and its configuration file.
//
// OpenCode keeps servers in opencode.json under the "mcp" key. The process is
// a single command array, the transport is an explicit "type", and the
// enabled state is a positive "enabled" flag that defaults to true:
//
//	{
//	  "$schema": "https://opencode.ai/config.json",
//	  "mcp": {
//	    "github": {
//	      "type": "local",
//	      "command": ["npx", "-y", "@modelcontextprotocol/server-github"],
//	      "environment": {"GITHUB_TOKEN": "${GITHUB_TOKEN}"},
//	      "enabled": true
//	    },
//	    "api": {
//	      "type": "remote",
//	      "url": "https://example.com/mcp",
//	      "enabled": false
//	    }
//	  }
//	}
package opencode
