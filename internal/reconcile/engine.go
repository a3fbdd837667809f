package reconcile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neilforest7/mcp-coordinator/internal/baseline"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/logging"
	"github.com/neilforest7/mcp-coordinator/internal/mcp"
)

// Side selects one store of the pair.
type Side string

// Side values.
const (
	SideA Side = "a"
	SideB Side = "b"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Valid reports whether s names a side.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Engine analyzes and applies differences between two stores.
type Engine struct {
	a, b     mcp.Normalizer
	baseline baseline.Store
	pairID   string
	renderer *Renderer
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine for stores a and b whose baselines live in bl
// under pairID. A nil bl behaves as an empty in-memory store.
func NewEngine(a, b mcp.Normalizer, bl baseline.Store, pairID string, opts ...Option) *Engine {
	if bl == nil {
		bl = baseline.NewMemoryStore()
	}
	e := &Engine{
		a:        a,
		b:        b,
		baseline: bl,
		pairID:   pairID,
		renderer: NewRenderer(a.DisplayName(), b.DisplayName()),
		logger:   logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PairID returns the baseline scope of the engine.
func (e *Engine) PairID() string {
	return e.pairID
}

// Renderer returns the renderer used for conflict diffs.
func (e *Engine) Renderer() *Renderer {
	return e.renderer
}

// normalizer returns the normalizer of side s.
func (e *Engine) normalizer(s Side) mcp.Normalizer {
	if s == SideA {
		return e.a
	}
	return e.b
}

// Analyze classifies every name held by either store. Records that fail to
// normalize are reported in Plan.Malformed and their names are left out of
// the plan. Problems affecting a single item are attached to it. An error is
// returned only when the engine itself is misconfigured.
func (e *Engine) Analyze(rawA, rawB map[string]json.RawMessage) (*Plan, error) {
	if e.pairID == "" {
		return nil, errors.New("store pair id is required")
	}

	snapA, malA := mcp.NewSnapshot(e.a, rawA)
	snapB, malB := mcp.NewSnapshot(e.b, rawB)

	plan := &Plan{
		PairID: e.pairID,
		StoreA: e.a.Store(),
		StoreB: e.b.Store(),
		snapA:  snapA,
		snapB:  snapB,
	}

	// A name whose record could not be read is excluded entirely, so a sync
	// never overwrites a record the user has to repair.
	excluded := make(map[string]bool)
	for _, side := range []struct {
		snap      *mcp.Snapshot
		malformed []*mcp.EntryError
	}{{snapA, malA}, {snapB, malB}} {
		for _, ee := range side.malformed {
			plan.Malformed = append(plan.Malformed, ee)
			e.logger.Warn("skipping malformed entry", "store", ee.Store, "key", ee.Key, "error", ee.Err)
			if _, ok := side.snap.Get(ee.Name); !ok {
				excluded[ee.Name] = true
			}
		}
	}

	dupA := NewDuplicateDetector(snapA)
	dupB := NewDuplicateDetector(snapB)

	seen := make(map[string]bool, snapA.Len()+snapB.Len())
	var items []*Item
	for _, names := range [][]string{snapA.Names(), snapB.Names()} {
		for _, name := range names {
			if seen[name] || excluded[name] {
				continue
			}
			seen[name] = true
			items = append(items, e.analyzeName(name, snapA, snapB, dupA, dupB))
		}
	}
	plan.Items = BuildPlan(items)

	e.logger.Debug("analysis complete",
		"pair", e.pairID,
		"items", len(plan.Items),
		"pending", len(plan.Pending()),
		"malformed", len(plan.Malformed))
	return plan, nil
}

func (e *Engine) analyzeName(name string, snapA, snapB *mcp.Snapshot, dupA, dupB *DuplicateDetector) *Item {
	item := &Item{Name: name}
	recA, okA := snapA.Get(name)
	recB, okB := snapB.Get(name)

	var entryA, entryB *mcp.Entry
	if okA {
		entryA = recA.Entry
		item.RawA = e.serialize(item, recA.Key, recA.Raw)
	}
	if okB {
		entryB = recB.Entry
		item.RawB = e.serialize(item, recB.Key, recB.Raw)
	}

	base, ok, err := e.baseline.Get(e.pairID, name)
	if err != nil {
		// Without a readable baseline the classification is conservative.
		item.Errors = append(item.Errors, fmt.Sprintf("reading baseline: %v", err))
		e.logger.Warn("baseline unavailable", "name", name, "error", err)
		base = nil
	} else if !ok {
		base = nil
	}

	item.State = Classify([]string{e.a.Store(), e.b.Store()}, []*mcp.Entry{entryA, entryB}, base)
	item.Status = item.State.Status()

	switch item.Status {
	case StatusConflict:
		e.renderConflict(item, entryA, entryB)
	case StatusCreatedInA:
		item.ContentMatches = dupB.Matches(entryA)
	case StatusCreatedInB:
		item.ContentMatches = dupA.Matches(entryB)
	}
	item.ActionDescription = e.describe(item)

	e.logger.Debug("classified", "name", name, "status", item.Status)
	return item
}

// renderConflict attaches the line diff and cross-schema previews. Failures
// omit the affected preview and are recorded on the item.
func (e *Engine) renderConflict(item *Item, entryA, entryB *mcp.Entry) {
	lines := e.renderer.Lines(item.RawA, item.RawB)
	item.DiffLines = lines
	item.UnifiedDiff, item.Additions, item.Deletions = e.renderer.Unified(lines)

	if entryA != nil {
		item.AAsB = e.preview(item, e.b, entryA)
	}
	if entryB != nil {
		item.BAsA = e.preview(item, e.a, entryB)
	}
}

// Preview fills the missing cross-schema previews of an item, which Analyze
// only renders for conflicts. Names absent from a side are left empty.
func (e *Engine) Preview(p *Plan, item *Item) {
	if p == nil || item == nil {
		return
	}
	if entry := p.snapA.Entry(item.Name); entry != nil && item.AAsB == "" {
		item.AAsB = e.preview(item, e.b, entry)
	}
	if entry := p.snapB.Entry(item.Name); entry != nil && item.BAsA == "" {
		item.BAsA = e.preview(item, e.a, entry)
	}
}

// preview renders entry in n's schema.
func (e *Engine) preview(item *Item, n mcp.Normalizer, entry *mcp.Entry) string {
	key, raw, err := n.Denormalize(entry)
	if err != nil {
		err = errors.Mark(errors.Wrapf(err, "converting to %s", n.DisplayName()), errors.ErrSerialization)
		item.Errors = append(item.Errors, err.Error())
		return ""
	}
	return e.serialize(item, key, raw)
}

func (e *Engine) serialize(item *Item, key string, raw json.RawMessage) string {
	text, err := Serialize(key, raw)
	if err != nil {
		item.Errors = append(item.Errors, err.Error())
		return ""
	}
	return text
}

// describe returns the action description of an analyzed item.
func (e *Engine) describe(item *Item) string {
	nameA, nameB := e.a.DisplayName(), e.b.DisplayName()

	var desc string
	switch item.Status {
	case StatusSynced:
		desc = fmt.Sprintf("%s is in sync", item.Name)
	case StatusCreatedInA:
		desc = fmt.Sprintf("Add %s to %s (new in %s)", item.Name, nameB, nameA)
	case StatusCreatedInB:
		desc = fmt.Sprintf("Add %s to %s (new in %s)", item.Name, nameA, nameB)
	case StatusUpdatedInA:
		desc = fmt.Sprintf("Update %s in %s (changed in %s)", item.Name, nameB, nameA)
	case StatusUpdatedInB:
		desc = fmt.Sprintf("Update %s in %s (changed in %s)", item.Name, nameA, nameB)
	case StatusDeletedFromA:
		desc = fmt.Sprintf("%s was removed from %s; remove it from %s manually", item.Name, nameA, nameB)
	case StatusDeletedFromB:
		desc = fmt.Sprintf("%s was removed from %s; remove it from %s manually", item.Name, nameB, nameA)
	case StatusConflict:
		obs := item.State.Observations
		switch {
		case !obs[0].Present:
			desc = fmt.Sprintf("Conflict: %s changed in %s but was removed from %s; choose which to keep", item.Name, nameB, nameA)
		case !obs[1].Present:
			desc = fmt.Sprintf("Conflict: %s changed in %s but was removed from %s; choose which to keep", item.Name, nameA, nameB)
		case item.State.Tracked():
			desc = fmt.Sprintf("Conflict: %s changed in both %s and %s; choose which to keep", item.Name, nameA, nameB)
		default:
			desc = fmt.Sprintf("Conflict: %s differs between %s and %s; choose which to keep", item.Name, nameA, nameB)
		}
	}

	if len(item.ContentMatches) > 0 {
		other := nameB
		if item.Status == StatusCreatedInB {
			other = nameA
		}
		desc += fmt.Sprintf("; warning: same server as %s in %s, possibly a duplicate under a different name",
			quoteJoin(item.ContentMatches), other)
	}
	return desc
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
