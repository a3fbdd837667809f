// Package mcp provides the canonical MCP (Model Context Protocol) server
// representation that the synchronization engine compares and merges.
//
// Each configuration store describes the same logical servers in its own
// schema. A store-specific [Normalizer] converts a raw record into an
// [Entry] and back, so the rest of the engine never special-cases a store.
//
// # Entries
//
// An [Entry] is either local or remote:
//
//	// Local server launched as a process
//	local := &mcp.Entry{
//	    Name:      "github",
//	    Enabled:   true,
//	    Transport: mcp.TransportLocal,
//	    Argv:      []string{"npx", "-y", "@modelcontextprotocol/server-github"},
//	    Env:       map[string]string{"GITHUB_TOKEN": "${GITHUB_TOKEN}"},
//	}
//
//	// Remote server reached over HTTP
//	remote := &mcp.Entry{
//	    Name:      "remote-api",
//	    Enabled:   true,
//	    Transport: mcp.TransportRemote,
//	    URL:       "https://api.example.com/mcp",
//	    Headers:   map[string]string{"Authorization": "Bearer ${API_KEY}"},
//	}
//
// Exactly one of a non-empty Argv or a set URL holds, matching Transport.
// [Entry.Validate] enforces this.
//
// # Snapshots
//
// A [Snapshot] is one store's state after normalization, keyed by canonical
// name. Records that cannot be normalized are returned separately as
// [EntryError] values and never enter the snapshot:
//
//	snap, malformed := mcp.NewSnapshot(normalizer, rawServers)
//	for _, e := range malformed {
//	    log.Warn("skipping entry", "key", e.Key, "error", e.Err)
//	}
package mcp
