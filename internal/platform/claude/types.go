package claude

import (
	"encoding/json"
)

// Claude Desktop server type values.
const (
	// TypeStdio is the type for local process servers.
	TypeStdio = "stdio"

	// TypeHTTP is the type for remote streamable HTTP servers.
	TypeHTTP = "http"

	// TypeSSE is the legacy type for remote Server-Sent Events servers.
	TypeSSE = "sse"
)

// MCPServer is one record of the "mcpServers" map. The server name is the
// map key and is never stored inside the record.
type MCPServer struct {
	// Type is "stdio", "http" or "sse". Inferred from Command/URL when empty.
	Type string `json:"type,omitempty"`

	// Command is the executable for local servers.
	Command string `json:"command,omitempty"`

	// Args are the arguments passed to Command.
	Args []string `json:"args,omitempty"`

	// URL is the endpoint for remote servers.
	URL string `json:"url,omitempty"`

	// Env contains environment variables passed to the server process.
	Env map[string]string `json:"env,omitempty"`

	// Headers contains HTTP headers for remote servers.
	Headers map[string]string `json:"headers,omitempty"`

	// IsActive disables the server when explicitly false.
	IsActive *bool `json:"isActive,omitempty"`

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
	if s.Command != "" {
		result["command"] = s.Command
	}
	if len(s.Args) > 0 {
		result["args"] = s.Args
	}
	if s.URL != "" {
		result["url"] = s.URL
	}
	if len(s.Env) > 0 {
		result["env"] = s.Env
	}
	if len(s.Headers) > 0 {
		result["headers"] = s.Headers
	}
	if s.IsActive != nil {
		result["isActive"] = *s.IsActive
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
		"type":     &s.Type,
		"command":  &s.Command,
		"args":     &s.Args,
		"url":      &s.URL,
		"env":      &s.Env,
		"headers":  &s.Headers,
		"isActive": &s.IsActive,
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

// Active reports whether the record itself is enabled, ignoring any key prefix.
func (s *MCPServer) Active() bool {
	return s.IsActive == nil || *s.IsActive
}
