// Package platform binds each supported MCP client to its normalizer and its
// configuration file.
//
// A [Store] couples a store identifier with the [mcp.Normalizer] for its
// schema, the top-level key of its server map, and the file path it is read
// from and written to. Stores are looked up through a [Registry]:
//
//	reg := platform.NewRegistry()
//	_ = reg.Register(platform.NewClaudeStore(path, claude.DisablePrefix))
//	_ = reg.Register(platform.NewOpenCodeStore(""))
//	a, b, err := reg.Pair("claude", "opencode")
//
// # Detection
//
// Use [Detect] to report whether a store's configuration file exists:
//
//	for _, result := range platform.DetectAll(reg) {
//	    fmt.Printf("%s: %s\n", result.Store, result.Status)
//	}
//
// # Thread Safety
//
// Registry is safe for concurrent use. Stores are immutable.
package platform
