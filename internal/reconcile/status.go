package reconcile

// Status is the classification of one name across the two stores.
type Status string

// Status values.
const (
	StatusSynced       Status = "Synced"
	StatusCreatedInA   Status = "CreatedInA"
	StatusCreatedInB   Status = "CreatedInB"
	StatusUpdatedInA   Status = "UpdatedInA"
	StatusUpdatedInB   Status = "UpdatedInB"
	StatusConflict     Status = "Conflict"
	StatusDeletedFromA Status = "DeletedFromA"
	StatusDeletedFromB Status = "DeletedFromB"
)

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{
		StatusConflict,
		StatusCreatedInA,
		StatusUpdatedInA,
		StatusCreatedInB,
		StatusUpdatedInB,
		StatusDeletedFromA,
		StatusDeletedFromB,
		StatusSynced,
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSynced, StatusCreatedInA, StatusCreatedInB, StatusUpdatedInA,
		StatusUpdatedInB, StatusConflict, StatusDeletedFromA, StatusDeletedFromB:
		return true
	}
	return false
}

// IsDeletion reports whether s signals a removal on one side.
func (s Status) IsDeletion() bool {
	return s == StatusDeletedFromA || s == StatusDeletedFromB
}

// Incoming returns the side whose store would receive the change, or "" for
// Synced and Conflict. Deletions are grouped with the store that should
// eventually drop the name too.
func (s Status) Incoming() Side {
	switch s {
	case StatusCreatedInA, StatusUpdatedInA, StatusDeletedFromA:
		return SideB
	case StatusCreatedInB, StatusUpdatedInB, StatusDeletedFromB:
		return SideA
	}
	return ""
}

// Relation describes one store's value relative to the baseline.
type Relation string

// Relation values.
const (
	// RelationUntracked means no baseline exists for the name.
	RelationUntracked Relation = "untracked"

	// RelationUnchanged means the value equals the baseline.
	RelationUnchanged Relation = "unchanged"

	// RelationChanged means the value differs from the baseline.
	RelationChanged Relation = "changed"

	// RelationRemoved means the name is absent while a baseline exists.
	RelationRemoved Relation = "removed"
)

// Observation is what one store holds for a name.
type Observation struct {
	// Store is the store identifier.
	Store string `json:"store"`

	// Present reports whether the store holds the name.
	Present bool `json:"present"`

	// Relation is the store's value relative to the baseline.
	Relation Relation `json:"relation"`
}

// State is the classification input for one name across any number of
// stores. Status maps the two-store case onto the named statuses.
type State struct {
	// Observations holds one entry per store, in store order.
	Observations []Observation `json:"observations"`

	// Agree reports whether every present value is identical.
	Agree bool `json:"agree"`
}

// PresentIn returns the stores holding the name.
func (s State) PresentIn() []string {
	var stores []string
	for _, o := range s.Observations {
		if o.Present {
			stores = append(stores, o.Store)
		}
	}
	return stores
}

// Tracked reports whether a baseline exists for the name.
func (s State) Tracked() bool {
	for _, o := range s.Observations {
		if o.Relation != RelationUntracked {
			return true
		}
	}
	return false
}

// Status returns the two-store classification. It returns "" when the state
// does not describe exactly two stores with at least one present.
func (s State) Status() Status {
	if len(s.Observations) != 2 {
		return ""
	}
	a, b := s.Observations[0], s.Observations[1]

	switch {
	case a.Present && b.Present:
		switch {
		case s.Agree:
			return StatusSynced
		case a.Relation == RelationUnchanged && b.Relation == RelationChanged:
			return StatusUpdatedInB
		case a.Relation == RelationChanged && b.Relation == RelationUnchanged:
			return StatusUpdatedInA
		}
		return StatusConflict
	case a.Present:
		return oneSided(a.Relation, StatusCreatedInA, StatusDeletedFromB)
	case b.Present:
		return oneSided(b.Relation, StatusCreatedInB, StatusDeletedFromA)
	}
	return ""
}

// oneSided classifies a name held by a single store. A remaining value that
// changed since the baseline conflicts with the other side's removal.
func oneSided(r Relation, created, deleted Status) Status {
	switch r {
	case RelationUntracked:
		return created
	case RelationUnchanged:
		return deleted
	}
	return StatusConflict
}
