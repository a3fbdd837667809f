package claude

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/mcp"
)

// StoreID identifies the Claude Desktop store.
const StoreID = "claude"

// DisabledPrefix marks a disabled server by its key.
const DisabledPrefix = "_disabled_"

// DisableStyle selects how a disabled entry is written.
type DisableStyle string

const (
	// DisablePrefix writes disabled entries under DisabledPrefix+name.
	DisablePrefix DisableStyle = "prefix"

	// DisableFlag writes disabled entries with "isActive": false.
	DisableFlag DisableStyle = "flag"
)

// ValidDisableStyle reports whether s names a known style.
func ValidDisableStyle(s string) bool {
	switch DisableStyle(s) {
	case DisablePrefix, DisableFlag:
		return true
	}
	return false
}

// MCPNormalizer converts between canonical entries and Claude Desktop records.
//
// Differences from canonical:
//   - "command" string + "args" list instead of a single argv
//   - "isActive" (optional, positive logic) or a key prefix instead of "enabled"
//   - "type" stdio/http/sse instead of local/remote
type MCPNormalizer struct {
	style DisableStyle
}

// Option configures an MCPNormalizer.
type Option func(*MCPNormalizer)

// WithDisableStyle sets how disabled entries are written. Reading always
// accepts both conventions.
func WithDisableStyle(style DisableStyle) Option {
	return func(n *MCPNormalizer) {
		if ValidDisableStyle(string(style)) {
			n.style = style
		}
	}
}

// NewMCPNormalizer creates a Claude Desktop normalizer. The default disable
// style is DisablePrefix, matching the Claude Desktop UI.
func NewMCPNormalizer(opts ...Option) *MCPNormalizer {
	n := &MCPNormalizer{style: DisablePrefix}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Store returns the store identifier.
func (n *MCPNormalizer) Store() string {
	return StoreID
}

// DisplayName returns the human readable store name.
func (n *MCPNormalizer) DisplayName() string {
	return "Claude Desktop"
}

// Style returns the disable style used when writing.
func (n *MCPNormalizer) Style() DisableStyle {
	return n.style
}

// Normalize converts a Claude Desktop record into a canonical entry.
//
// Mapping:
//   - key "_disabled_x" → Name "x", Enabled false
//   - "isActive": false → Enabled false
//   - Command + Args → Argv
//   - type "http"/"sse", or a URL without a command → remote
func (n *MCPNormalizer) Normalize(key string, raw json.RawMessage) (*mcp.Entry, error) {
	var server MCPServer
	if err := json.Unmarshal(raw, &server); err != nil {
		return nil, mcp.Malformed("parsing Claude Desktop server: %v", err)
	}

	name := key
	enabled := server.Active()
	if strings.HasPrefix(key, DisabledPrefix) {
		name = strings.TrimPrefix(key, DisabledPrefix)
		enabled = false
	}
	if name == "" {
		return nil, mcp.Malformed("server key %q has no name", key)
	}
	if strings.HasPrefix(name, DisabledPrefix) {
		return nil, mcp.Malformed("server key %q repeats the reserved prefix %q", key, DisabledPrefix)
	}

	transport, err := resolveTransport(&server)
	if err != nil {
		return nil, err
	}

	entry := &mcp.Entry{
		Name:      name,
		Enabled:   enabled,
		Transport: transport,
		Env:       server.Env,
	}
	switch transport {
	case mcp.TransportLocal:
		entry.Argv = make([]string, 0, 1+len(server.Args))
		entry.Argv = append(entry.Argv, server.Command)
		entry.Argv = append(entry.Argv, server.Args...)
	case mcp.TransportRemote:
		entry.URL = server.URL
		entry.Headers = server.Headers
	}

	if err := entry.Validate(); err != nil {
		return nil, errors.Mark(err, errors.ErrMalformedEntry)
	}
	return entry, nil
}

// resolveTransport determines the canonical transport of a record.
func resolveTransport(s *MCPServer) (mcp.Transport, error) {
	switch s.Type {
	case TypeStdio:
		if s.Command == "" {
			return "", mcp.Malformed("stdio server has no command")
		}
		if s.URL != "" {
			return "", mcp.Malformed("stdio server must not set a url")
		}
		return mcp.TransportLocal, nil
	case TypeHTTP, TypeSSE:
		if s.URL == "" {
			return "", mcp.Malformed("%s server has no url", s.Type)
		}
		if s.Command != "" {
			return "", mcp.Malformed("%s server must not set a command", s.Type)
		}
		return mcp.TransportRemote, nil
	case "":
		switch {
		case s.Command != "" && s.URL != "":
			return "", mcp.Malformed("server sets both command and url without a type")
		case s.Command != "":
			return mcp.TransportLocal, nil
		case s.URL != "":
			return mcp.TransportRemote, nil
		}
		return "", mcp.Malformed("server has neither command nor url")
	default:
		return "", mcp.Malformed("unsupported server type %q", s.Type)
	}
}

// Denormalize converts a canonical entry into a Claude Desktop key and record.
//
// Local entries are written with type "stdio", remote entries with type
// "http". A disabled entry is written according to the normalizer's
// DisableStyle.
func (n *MCPNormalizer) Denormalize(e *mcp.Entry) (string, json.RawMessage, error) {
	return n.denormalize(e, nil)
}

// DenormalizeOver converts e like Denormalize, starting from the record
// currently stored for it. Unknown fields and a legacy "sse" type survive
// when the transport is unchanged; an explicit "isActive" stays explicit.
func (n *MCPNormalizer) DenormalizeOver(e *mcp.Entry, existing json.RawMessage) (string, json.RawMessage, error) {
	var prev MCPServer
	if err := json.Unmarshal(existing, &prev); err != nil {
		return n.denormalize(e, nil)
	}
	return n.denormalize(e, &prev)
}

func (n *MCPNormalizer) denormalize(e *mcp.Entry, prev *MCPServer) (string, json.RawMessage, error) {
	if err := e.Validate(); err != nil {
		return "", nil, err
	}
	if strings.HasPrefix(e.Name, DisabledPrefix) {
		return "", nil, errors.Newf("name %q uses the reserved prefix %q", e.Name, DisabledPrefix)
	}

	key := e.Name
	server := &MCPServer{Env: e.Env}
	if prev != nil {
		server.unknownFields = prev.unknownFields
		if prev.IsActive != nil && e.Enabled {
			active := true
			server.IsActive = &active
		}
	}
	if !e.Enabled {
		switch n.style {
		case DisableFlag:
			inactive := false
			server.IsActive = &inactive
		default:
			key = DisabledPrefix + e.Name
		}
	}

	switch e.Transport {
	case mcp.TransportLocal:
		server.Type = TypeStdio
		server.Command = e.Argv[0]
		server.Args = slices.Clone(e.Args())
	case mcp.TransportRemote:
		server.Type = TypeHTTP
		if prev != nil && prev.Type == TypeSSE {
			server.Type = TypeSSE
		}
		server.URL = e.URL
		server.Headers = e.Headers
	}

	raw, err := json.Marshal(server)
	if err != nil {
		return "", nil, errors.Wrap(err, "marshaling Claude Desktop server")
	}
	return key, raw, nil
}

// Keys returns every key under which name may be stored, active key first.
func Keys(name string) []string {
	return []string{name, DisabledPrefix + name}
}

// NameForKey returns the canonical name for a record key, stripping
// DisabledPrefix.
func (n *MCPNormalizer) NameForKey(key string) string {
	return strings.TrimPrefix(key, DisabledPrefix)
}
