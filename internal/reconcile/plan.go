package reconcile

import (
	"cmp"
	"slices"

	"github.com/neilforest7/mcp-coordinator/internal/mcp"
)

// Item is one row of a plan.
type Item struct {
	// Name is the canonical entry name.
	Name string `json:"name"`

	// Status is the two-store classification of State.
	Status Status `json:"status"`

	// State is the per-store observation the status derives from.
	State State `json:"state"`

	// ActionDescription is human readable text describing what applying the
	// item would do.
	ActionDescription string `json:"action_description"`

	// DiffLines is the line diff of RawA against RawB. Conflicts only.
	DiffLines []DiffLine `json:"diff_lines,omitempty"`

	// UnifiedDiff renders DiffLines as unified diff text. Conflicts only.
	UnifiedDiff string `json:"unified_diff,omitempty"`

	// Additions and Deletions count inserted and deleted lines in DiffLines.
	Additions int `json:"additions,omitempty"`
	Deletions int `json:"deletions,omitempty"`

	// RawA and RawB are the stable serializations of each store's native
	// record, empty when the store does not hold the name.
	RawA string `json:"raw_a,omitempty"`
	RawB string `json:"raw_b,omitempty"`

	// AAsB is A's entry written in B's schema; BAsA is B's entry written in
	// A's schema. Conflicts only.
	AAsB string `json:"a_as_b,omitempty"`
	BAsA string `json:"b_as_a,omitempty"`

	// ContentMatches names entries of the other store with the same content
	// under a different name. Advisory only.
	ContentMatches []string `json:"content_matches,omitempty"`

	// Errors lists analysis problems that affected this item, such as a
	// preview that could not be rendered.
	Errors []string `json:"errors,omitempty"`
}

// Plan is the ordered, classified list of per-name differences between two
// snapshots.
type Plan struct {
	// PairID scopes the baseline the plan was classified against.
	PairID string `json:"pair_id"`

	// StoreA and StoreB identify the compared stores.
	StoreA string `json:"store_a"`
	StoreB string `json:"store_b"`

	// Items holds one item per name, sorted by name.
	Items []*Item `json:"items"`

	// Malformed lists records that could not be normalized. Their names are
	// excluded from Items.
	Malformed []*mcp.EntryError `json:"malformed,omitempty"`

	snapA *mcp.Snapshot
	snapB *mcp.Snapshot
}

// BuildPlan orders items by name. It does not modify the input slice.
func BuildPlan(items []*Item) []*Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b *Item) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Item returns the item for name.
func (p *Plan) Item(name string) (*Item, bool) {
	i, found := slices.BinarySearchFunc(p.Items, name, func(it *Item, n string) int {
		return cmp.Compare(it.Name, n)
	})
	if !found {
		return nil, false
	}
	return p.Items[i], true
}

// Names returns every item name in plan order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Items))
	for i, it := range p.Items {
		names[i] = it.Name
	}
	return names
}

// Pending returns the items that are not Synced.
func (p *Plan) Pending() []*Item {
	var out []*Item
	for _, it := range p.Items {
		if it.Status != StatusSynced {
			out = append(out, it)
		}
	}
	return out
}

// Counts returns the number of items per status.
func (p *Plan) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, it := range p.Items {
		counts[it.Status]++
	}
	return counts
}

// InSync reports whether every item is Synced and nothing is malformed.
func (p *Plan) InSync() bool {
	return len(p.Pending()) == 0 && len(p.Malformed) == 0
}
