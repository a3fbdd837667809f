// Package document reads and writes whole store configuration files while
// preserving everything outside the MCP server map.
package document

import (
	"bytes"
	"encoding/json"
	"maps"
	"os"
	"slices"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/pkg/fileutil"
)

// Document is a store configuration file: a JSON object whose servers live
// under a single top-level key. All other top-level fields are kept verbatim.
type Document struct {
	serversKey string

	// Servers maps record keys to raw server records.
	Servers map[string]json.RawMessage

	// other stores every top-level field except the servers key.
	other map[string]json.RawMessage
}

// New creates an empty document whose servers live under serversKey.
func New(serversKey string) *Document {
	return &Document{
		serversKey: serversKey,
		Servers:    make(map[string]json.RawMessage),
		other:      make(map[string]json.RawMessage),
	}
}

// Parse decodes a configuration file. Empty input yields an empty document.
func Parse(data []byte, serversKey string) (*Document, error) {
	d := New(serversKey)
	if len(data) == 0 {
		return d, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Wrap(err, "parsing configuration document")
	}

	if serversData, ok := top[serversKey]; ok {
		if string(serversData) != "null" {
			if err := json.Unmarshal(serversData, &d.Servers); err != nil {
				return nil, errors.Wrapf(err, "parsing %q", serversKey)
			}
		}
		delete(top, serversKey)
	}
	if d.Servers == nil {
		d.Servers = make(map[string]json.RawMessage)
	}

	d.other = top
	if d.other == nil {
		d.other = make(map[string]json.RawMessage)
	}
	return d, nil
}

// Load reads and parses the file at path. A missing file yields an empty
// document so a first sync can create it.
func Load(path, serversKey string) (*Document, error) {
	data, err := fileutil.ReadDocument(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(serversKey), nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	d, err := Parse(data, serversKey)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return d, nil
}

// ServersKey returns the top-level key holding the server map.
func (d *Document) ServersKey() string {
	return d.serversKey
}

// Keys returns the record keys in sorted order.
func (d *Document) Keys() []string {
	return slices.Sorted(maps.Keys(d.Servers))
}

// Upsert stores raw under key, replacing any existing record.
func (d *Document) Upsert(key string, raw json.RawMessage) {
	d.Servers[key] = raw
}

// Delete removes the record stored under key. It reports whether a record
// was removed.
func (d *Document) Delete(key string) bool {
	if _, ok := d.Servers[key]; !ok {
		return false
	}
	delete(d.Servers, key)
	return true
}

// MarshalJSON implements json.Marshaler, merging the preserved fields with
// the server map.
func (d *Document) MarshalJSON() ([]byte, error) {
	result := make(map[string]json.RawMessage, len(d.other)+1)
	maps.Copy(result, d.other)

	servers, err := marshal(d.Servers)
	if err != nil {
		return nil, err
	}
	result[d.serversKey] = servers

	return marshal(result)
}

// marshal encodes v without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Save writes the document to path atomically with 2-space indentation,
// keeping the permissions of an existing file.
func (d *Document) Save(path string) error {
	return fileutil.AtomicWriteJSONWithPerm(path, d, fileutil.FilePerm(path, 0o600))
}
