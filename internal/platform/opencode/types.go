package opencode

import (
	"encoding/json"
)

// OpenCode server type values.
const (
	TypeLocal  = "local"
	TypeRemote = "remote"
)

// MCPServer is one record of the "mcp" map. OpenCode combines the executable
// and its arguments into a single Command array.
type MCPServer struct {
	// Type is "local" or "remote". Inferred from Command/URL when empty.
	Type string `json:"type,omitempty"`

	// Command is the executable followed by its arguments.
	Command []string `json:"command,omitempty"`

	// URL is the endpoint for remote servers.
	URL string `json:"url,omitempty"`

	// Environment contains environment variables passed to the server process.
	// Note: OpenCode uses "environment" rather than Claude's "env".
	Environment map[string]string `json:"environment,omitempty"`

	// Headers contains HTTP headers for remote servers.
	Headers map[string]string `json:"headers,omitempty"`

	// Enabled is true when absent.
	Enabled *bool `json:"enabled,omitempty"`

	// unknownFields stores JSON fields not explicitly defined in this struct.
	unknownFields map[string]json.RawMessage
}

// MarshalJSON implements json.Marshaler to include unknown fields in output.
func (s *MCPServer) MarshalJSON() ([]byte, error) {
	result := make(map[string]any)

	// Copy unknown fields first (so known fields take precedence)
	for k, v := range s.unknownFields {
		result[k] = v
	}

	if s.Type != "" {
		result["type"] = s.Type
	}
	if len(s.Command) > 0 {
		result["command"] = s.Command
	}
	if s.URL != "" {
		result["url"] = s.URL
	}
	if len(s.Environment) > 0 {
		result["environment"] = s.Environment
	}
	if len(s.Headers) > 0 {
		result["headers"] = s.Headers
	}
	if s.Enabled != nil {
		result["enabled"] = *s.Enabled
	}

	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (s *MCPServer) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := map[string]any{
		"type":        &s.Type,
		"command":     &s.Command,
		"url":         &s.URL,
		"environment": &s.Environment,
		"headers":     &s.Headers,
		"enabled":     &s.Enabled,
	}
	for name, dst := range fields {
		v, ok := raw[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return err
		}
		delete(raw, name)
	}

	// Store remaining fields as unknown
	if len(raw) > 0 {
		s.unknownFields = raw
	}

	return nil
}

// IsEnabled reports the effective enabled state.
func (s *MCPServer) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}
