package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

// Normalizer converts between one store's native server records and
// canonical entries.
//
// Records are exchanged as raw JSON so the engine stays independent of any
// store's Go types. The key passed to Normalize is the record's key in the
// store's server map; it may carry store-specific decorations (for example a
// disabled prefix) that Normalize strips from the canonical name.
//
// # Round Trip
//
// For every entry e returned by Normalize:
//
//	key, raw, _ := n.Denormalize(e)
//	back, _ := n.Normalize(key, raw)
//	// back.Equal(e) == true
//
// # Errors
//
// Normalize returns an error matching [errors.ErrMalformedEntry] when the
// record is neither a recognizable local nor remote server. Denormalize
// returns an error when the entry violates the canonical invariant.
type Normalizer interface {
	// Store returns the stable identifier of the store, e.g. "claude".
	Store() string

	// DisplayName returns a human readable store name for descriptions.
	DisplayName() string

	// Normalize converts a raw record stored under key into an Entry.
	Normalize(key string, raw json.RawMessage) (*Entry, error)

	// Denormalize converts an Entry into the key and raw record the store
	// would hold for it.
	Denormalize(e *Entry) (key string, raw json.RawMessage, err error)
}

// KeyNamer is implemented by normalizers whose record keys carry
// store-specific decorations. NameForKey returns the canonical name a key
// would normalize to, without parsing the record.
type KeyNamer interface {
	NameForKey(key string) string
}

// NameForKey returns the canonical name for a record key of n's store.
func NameForKey(n Normalizer, key string) string {
	if kn, ok := n.(KeyNamer); ok {
		return kn.NameForKey(key)
	}
	return key
}

// Merger is implemented by normalizers that can write an entry over the
// record a store already holds for it, keeping native fields the canonical
// form does not carry.
type Merger interface {
	DenormalizeOver(e *Entry, existing json.RawMessage) (key string, raw json.RawMessage, err error)
}

// DenormalizeOver converts e for n's store on top of existing. Normalizers
// without a Merger, or an empty existing record, fall back to Denormalize.
func DenormalizeOver(n Normalizer, e *Entry, existing json.RawMessage) (string, json.RawMessage, error) {
	if m, ok := n.(Merger); ok && len(existing) > 0 {
		return m.DenormalizeOver(e, existing)
	}
	return n.Denormalize(e)
}

// EntryError reports a raw record that could not be normalized.
type EntryError struct {
	// Store is the identifier of the store holding the record.
	Store string

	// Key is the record's key in the store, possibly empty.
	Key string

	// Name is the canonical name the key maps to.
	Name string

	// Err is the underlying cause.
	Err error
}

// NewEntryError creates an EntryError for the record stored under key.
func NewEntryError(store, key string, err error) *EntryError {
	return &EntryError{Store: store, Key: key, Name: key, Err: err}
}

// MarshalJSON implements json.Marshaler.
func (e *EntryError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Store string `json:"store"`
		Key   string `json:"key"`
		Name  string `json:"name"`
		Error string `json:"error"`
	}{e.Store, e.Key, e.Name, e.Err.Error()})
}

// Error implements error.
func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: entry %q: %v", e.Store, e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EntryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the malformed entry sentinel.
func (e *EntryError) Is(target error) bool {
	return target == errors.ErrMalformedEntry
}

// Malformed returns an error marked as errors.ErrMalformedEntry.
func Malformed(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), errors.ErrMalformedEntry)
}
