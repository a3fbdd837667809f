package baseline

import (
	"time"

	"github.com/neilforest7/mcp-coordinator/internal/mcp"
)

// DefaultMachine scopes baselines for the local machine.
const DefaultMachine = "local"

// Store persists baseline entries per store pair and name.
//
// Absence is not an error: Get reports ok=false for names never synced.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the baseline for name within pairID.
	Get(pairID, name string) (*mcp.Entry, bool, error)

	// Put records e as the baseline for name within pairID.
	Put(pairID, name string, e *mcp.Entry) error

	// Remove forgets the baseline for name within pairID. Removing an
	// absent name is not an error.
	Remove(pairID, name string) error
}

// Lister is implemented by stores that can enumerate a pair's baselines.
type Lister interface {
	// List returns every baseline of pairID ordered by name.
	List(pairID string) ([]Record, error)
}

// Record is one stored baseline.
type Record struct {
	// Name is the canonical entry name.
	Name string `json:"name"`

	// Entry is the canonical value last synced.
	Entry *mcp.Entry `json:"entry"`

	// SyncedAt is when the entry was last synced.
	SyncedAt time.Time `json:"synced_at"`
}

// PairID returns the identifier scoping baselines for a store pair on a
// machine, e.g. "local/claude+opencode". An empty machine selects
// DefaultMachine.
func PairID(machine, storeA, storeB string) string {
	if machine == "" {
		machine = DefaultMachine
	}
	return machine + "/" + storeA + "+" + storeB
}

// RemoteMachine returns the machine scope for a remote host identifier.
func RemoteMachine(id string) string {
	return "machine_" + id
}
