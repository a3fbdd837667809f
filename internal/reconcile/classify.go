package reconcile

import (
	"github.com/neilforest7/mcp-coordinator/internal/mcp"
)

// Classify builds the State of one name. stores and entries are parallel;
// a nil entry means the store does not hold the name. A nil base means no
// baseline exists.
func Classify(stores []string, entries []*mcp.Entry, base *mcp.Entry) State {
	state := State{
		Observations: make([]Observation, len(stores)),
		Agree:        true,
	}

	var first *mcp.Entry
	for i, store := range stores {
		e := entries[i]
		obs := Observation{Store: store, Present: e != nil}

		switch {
		case base == nil:
			obs.Relation = RelationUntracked
		case e == nil:
			obs.Relation = RelationRemoved
		case e.Equal(base):
			obs.Relation = RelationUnchanged
		default:
			obs.Relation = RelationChanged
		}
		state.Observations[i] = obs

		if e == nil {
			continue
		}
		if first == nil {
			first = e
		} else if !first.Equal(e) {
			state.Agree = false
		}
	}

	return state
}
