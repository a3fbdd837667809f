package reconcile

import (
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/neilforest7/mcp-coordinator/internal/mcp"
)

// DuplicateDetector finds entries of one snapshot that launch or reach the
// same server as a given entry under a different name.
type DuplicateDetector struct {
	snap  *mcp.Snapshot
	index map[uint64][]string
}

// NewDuplicateDetector indexes every entry of snap by content.
func NewDuplicateDetector(snap *mcp.Snapshot) *DuplicateDetector {
	d := &DuplicateDetector{
		snap:  snap,
		index: make(map[uint64][]string, snap.Len()),
	}
	for _, name := range snap.Names() {
		fp := fingerprint(snap.Entry(name))
		d.index[fp] = append(d.index[fp], name)
	}
	return d
}

// Matches returns the sorted names of entries with the same content as e,
// excluding an entry named like e.
func (d *DuplicateDetector) Matches(e *mcp.Entry) []string {
	var matches []string
	for _, name := range d.index[fingerprint(e)] {
		if name == e.Name {
			continue
		}
		// Fingerprints may collide.
		if e.SameContent(d.snap.Entry(name)) {
			matches = append(matches, name)
		}
	}
	slices.Sort(matches)
	return matches
}

// fingerprint hashes the fields compared by mcp.Entry.SameContent.
func fingerprint(e *mcp.Entry) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(string(e.Transport))
	_, _ = h.Write([]byte{0})
	if e.IsRemote() {
		_, _ = h.WriteString(e.URL)
		return h.Sum64()
	}
	for _, arg := range e.Argv {
		_, _ = h.WriteString(arg)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
