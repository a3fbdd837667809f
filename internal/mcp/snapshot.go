package mcp

import (
	"encoding/json"
	"slices"
	"sort"
)

// Record is one normalized server together with its native form.
type Record struct {
	// Key is the record's key in the store's server map.
	Key string

	// Raw is the record as the store holds it.
	Raw json.RawMessage

	// Entry is the canonical form of Raw.
	Entry *Entry
}

// Snapshot is one store's state after normalization, keyed by canonical name.
type Snapshot struct {
	store   string
	records map[string]*Record
}

// NewSnapshot normalizes every record of a store's server map.
//
// Records that fail normalization are returned as EntryErrors and left out of
// the snapshot. When two keys normalize to the same name (for example "x" and
// "_disabled_x"), the record whose key equals the name is kept and the other
// is reported as malformed.
func NewSnapshot(n Normalizer, raw map[string]json.RawMessage) (*Snapshot, []*EntryError) {
	s := &Snapshot{
		store:   n.Store(),
		records: make(map[string]*Record, len(raw)),
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var malformed []*EntryError
	for _, key := range keys {
		entry, err := n.Normalize(key, raw[key])
		if err != nil {
			ee := NewEntryError(n.Store(), key, err)
			ee.Name = NameForKey(n, key)
			malformed = append(malformed, ee)
			continue
		}

		rec := &Record{Key: key, Raw: raw[key], Entry: entry}
		existing, ok := s.records[entry.Name]
		if !ok {
			s.records[entry.Name] = rec
			continue
		}

		keep, drop := existing, rec
		if rec.Key == entry.Name {
			keep, drop = rec, existing
		}
		s.records[entry.Name] = keep
		ee := NewEntryError(n.Store(), drop.Key,
			Malformed("name %q is already defined by key %q", entry.Name, keep.Key))
		ee.Name = entry.Name
		malformed = append(malformed, ee)
	}

	return s, malformed
}

// NewSnapshotFromEntries builds a snapshot directly from canonical entries,
// denormalizing each to populate its native form.
func NewSnapshotFromEntries(n Normalizer, entries ...*Entry) (*Snapshot, error) {
	s := &Snapshot{
		store:   n.Store(),
		records: make(map[string]*Record, len(entries)),
	}
	for _, e := range entries {
		key, raw, err := n.Denormalize(e)
		if err != nil {
			return nil, err
		}
		s.records[e.Name] = &Record{Key: key, Raw: raw, Entry: e.Clone()}
	}
	return s, nil
}

// Store returns the identifier of the store this snapshot was taken from.
func (s *Snapshot) Store() string {
	return s.store
}

// Get returns the record for a canonical name.
func (s *Snapshot) Get(name string) (*Record, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.records[name]
	return r, ok
}

// Entry returns the canonical entry for name, or nil if absent.
func (s *Snapshot) Entry(name string) *Entry {
	r, ok := s.Get(name)
	if !ok {
		return nil
	}
	return r.Entry
}

// Names returns all canonical names in sorted order.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}
