package mcp

import (
	"maps"
	"slices"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

// Transport identifies how a server is reached.
type Transport string

// Transport values.
const (
	// TransportLocal is a process launched from Argv, speaking over stdio.
	TransportLocal Transport = "local"

	// TransportRemote is a server reached at URL.
	TransportRemote Transport = "remote"
)

// Entry is the canonical, schema-neutral definition of one MCP server.
type Entry struct {
	// Name is the server's identifier within its store. Store-specific
	// decorations such as a disabled prefix are never part of Name.
	Name string `json:"name"`

	// Enabled reports whether the client should start the server.
	Enabled bool `json:"enabled"`

	// Transport selects between Argv and URL.
	Transport Transport `json:"transport"`

	// Argv is the executable followed by its arguments. Local only.
	Argv []string `json:"argv,omitempty"`

	// URL is the endpoint of a remote server. Remote only.
	URL string `json:"url,omitempty"`

	// Env holds environment variables passed to the server.
	Env map[string]string `json:"env,omitempty"`

	// Headers holds HTTP headers sent to a remote server. Remote only.
	Headers map[string]string `json:"headers,omitempty"`
}

// IsLocal returns true if the entry is launched as a local process.
func (e *Entry) IsLocal() bool {
	return e.Transport == TransportLocal
}

// IsRemote returns true if the entry is reached over the network.
func (e *Entry) IsRemote() bool {
	return e.Transport == TransportRemote
}

// Command returns the executable, or "" for remote entries.
func (e *Entry) Command() string {
	if len(e.Argv) == 0 {
		return ""
	}
	return e.Argv[0]
}

// Args returns the arguments following the executable.
func (e *Entry) Args() []string {
	if len(e.Argv) < 2 {
		return nil
	}
	return e.Argv[1:]
}

// Validate checks the transport invariant: a local entry has a non-empty
// Argv and no URL, a remote entry has a URL and no Argv.
func (e *Entry) Validate() error {
	if e.Name == "" {
		return errors.New("name is required")
	}
	switch e.Transport {
	case TransportLocal:
		if len(e.Argv) == 0 || e.Argv[0] == "" {
			return errors.Newf("local server %q has no command", e.Name)
		}
		if e.URL != "" {
			return errors.Newf("local server %q must not set a url", e.Name)
		}
		if len(e.Headers) > 0 {
			return errors.Newf("local server %q must not set headers", e.Name)
		}
	case TransportRemote:
		if e.URL == "" {
			return errors.Newf("remote server %q has no url", e.Name)
		}
		if len(e.Argv) > 0 {
			return errors.Newf("remote server %q must not set a command", e.Name)
		}
	default:
		return errors.Newf("server %q has unknown transport %q", e.Name, e.Transport)
	}
	return nil
}

// Equal reports whether two entries are identical in every canonical field.
// Nil and empty collections compare equal.
func (e *Entry) Equal(o *Entry) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.Name == o.Name &&
		e.Enabled == o.Enabled &&
		e.Transport == o.Transport &&
		e.URL == o.URL &&
		slices.Equal(e.Argv, o.Argv) &&
		maps.Equal(e.Env, o.Env) &&
		maps.Equal(e.Headers, o.Headers)
}

// SameContent reports whether two entries launch or reach the same server,
// ignoring name, enabled state, environment, and headers. Comparison is
// case-sensitive.
func (e *Entry) SameContent(o *Entry) bool {
	if e == nil || o == nil {
		return false
	}
	if e.Transport != o.Transport {
		return false
	}
	if e.IsRemote() {
		return e.URL == o.URL
	}
	return slices.Equal(e.Argv, o.Argv)
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Argv = slices.Clone(e.Argv)
	c.Env = maps.Clone(e.Env)
	c.Headers = maps.Clone(e.Headers)
	return &c
}

// Rename returns a copy of the entry carrying a different name.
func (e *Entry) Rename(name string) *Entry {
	c := e.Clone()
	c.Name = name
	return c
}
