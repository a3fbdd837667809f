package opencode

import (
	"encoding/json"
	"slices"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/mcp"
)

// StoreID identifies the OpenCode store.
const StoreID = "opencode"

// MCPNormalizer converts between canonical entries and OpenCode records.
//
// Differences from canonical:
//   - "environment" instead of "env"
//   - "enabled" may be omitted, meaning true
//   - "type" is required on write
type MCPNormalizer struct{}

// NewMCPNormalizer creates an OpenCode normalizer.
func NewMCPNormalizer() *MCPNormalizer {
	return &MCPNormalizer{}
}

// Store returns the store identifier.
func (n *MCPNormalizer) Store() string {
	return StoreID
}

// DisplayName returns the human readable store name.
func (n *MCPNormalizer) DisplayName() string {
	return "OpenCode"
}

// Normalize converts an OpenCode record into a canonical entry.
func (n *MCPNormalizer) Normalize(key string, raw json.RawMessage) (*mcp.Entry, error) {
	var server MCPServer
	if err := json.Unmarshal(raw, &server); err != nil {
		return nil, mcp.Malformed("parsing OpenCode server: %v", err)
	}

	transport, err := resolveTransport(&server)
	if err != nil {
		return nil, err
	}

	entry := &mcp.Entry{
		Name:      key,
		Enabled:   server.IsEnabled(),
		Transport: transport,
		Env:       server.Environment,
	}
	switch transport {
	case mcp.TransportLocal:
		entry.Argv = slices.Clone(server.Command)
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
	case TypeLocal:
		if len(s.Command) == 0 {
			return "", mcp.Malformed("local server has no command")
		}
		if s.URL != "" {
			return "", mcp.Malformed("local server must not set a url")
		}
		return mcp.TransportLocal, nil
	case TypeRemote:
		if s.URL == "" {
			return "", mcp.Malformed("remote server has no url")
		}
		if len(s.Command) > 0 {
			return "", mcp.Malformed("remote server must not set a command")
		}
		return mcp.TransportRemote, nil
	case "":
		switch {
		case len(s.Command) > 0 && s.URL != "":
			return "", mcp.Malformed("server sets both command and url without a type")
		case len(s.Command) > 0:
			return mcp.TransportLocal, nil
		case s.URL != "":
			return mcp.TransportRemote, nil
		}
		return "", mcp.Malformed("server has neither command nor url")
	default:
		return "", mcp.Malformed("unsupported server type %q", s.Type)
	}
}

// Denormalize converts a canonical entry into an OpenCode key and record.
// The enabled flag is always written explicitly.
func (n *MCPNormalizer) Denormalize(e *mcp.Entry) (string, json.RawMessage, error) {
	return n.denormalize(e, nil)
}

// DenormalizeOver converts e like Denormalize, keeping the unknown fields of
// the record currently stored for it.
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

	enabled := e.Enabled
	server := &MCPServer{
		Environment: e.Env,
		Enabled:     &enabled,
	}
	if prev != nil {
		server.unknownFields = prev.unknownFields
	}
	switch e.Transport {
	case mcp.TransportLocal:
		server.Type = TypeLocal
		server.Command = slices.Clone(e.Argv)
	case mcp.TransportRemote:
		server.Type = TypeRemote
		server.URL = e.URL
		server.Headers = e.Headers
	}

	raw, err := json.Marshal(server)
	if err != nil {
		return "", nil, errors.Wrap(err, "marshaling OpenCode server")
	}
	return e.Name, raw, nil
}
