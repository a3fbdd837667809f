// Package claude provides the Claude Desktop store: its MCP server schema,
// normalization to and from canonical entries, and its configuration file.
//
// # Schema
//
// Claude Desktop keeps servers in claude_desktop_config.json under the
// "mcpServers" key. A local server splits its process into a command string
// and an argument list:
//
//	{
//	  "mcpServers": {
//	    "github": {
//	      "command": "npx",
//	      "args": ["-y", "@modelcontextprotocol/server-github"],
//	      "env": {"GITHUB_TOKEN": "${GITHUB_TOKEN}"}
//	    },
//	    "_disabled_search": {
//	      "command": "uvx",
//	      "args": ["search-server"]
//	    }
//	  }
//	}
//
// # Disabled Servers
//
// A server is disabled either by an explicit "isActive": false or by the
// reserved [DisabledPrefix] on its key. Both normalize to Enabled=false with
// the prefix stripped from the canonical name. When writing, the
// [DisableStyle] chosen with [WithDisableStyle] decides which convention is
// used.
package claude
