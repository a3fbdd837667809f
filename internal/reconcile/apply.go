package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/mcp"
)

// ModeKind selects how entries flow between stores.
type ModeKind string

// ModeKind values.
const (
	// ModeBidirectional propagates each item toward the side that lacks the
	// change. Conflicts need an explicit resolution.
	ModeBidirectional ModeKind = "bidirectional"

	// ModeOneWay copies every selected entry from Source to Destination,
	// overwriting unconditionally.
	ModeOneWay ModeKind = "one-way"

	// ModeMultiToOne and ModeOneToMulti are reserved for more than two
	// stores and always rejected.
	ModeMultiToOne ModeKind = "multi-to-one"
	ModeOneToMulti ModeKind = "one-to-multi"
)

// Mode is a sync direction.
type Mode struct {
	Kind        ModeKind `json:"kind"`
	Source      Side     `json:"source,omitempty"`
	Destination Side     `json:"destination,omitempty"`
}

// Bidirectional returns the bidirectional mode.
func Bidirectional() Mode {
	return Mode{Kind: ModeBidirectional}
}

// OneWay returns the mode copying from src to dst.
func OneWay(src, dst Side) Mode {
	return Mode{Kind: ModeOneWay, Source: src, Destination: dst}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m.Kind == ModeOneWay {
		return fmt.Sprintf("%s(%s->%s)", m.Kind, m.Source, m.Destination)
	}
	return string(m.Kind)
}

// Validate returns an error matching errors.ErrUnsupportedMode for modes the
// engine cannot run.
func (m Mode) Validate() error {
	switch m.Kind {
	case ModeBidirectional:
		return nil
	case ModeOneWay:
		if !m.Source.Valid() || !m.Destination.Valid() {
			return errors.Wrapf(errors.ErrUnsupportedMode, "one-way mode needs a source and destination, got %q and %q", m.Source, m.Destination)
		}
		if m.Source == m.Destination {
			return errors.Wrapf(errors.ErrUnsupportedMode, "one-way source and destination are both %q", m.Source)
		}
		return nil
	case ModeMultiToOne, ModeOneToMulti:
		return errors.Wrapf(errors.ErrUnsupportedMode, "%s mode is not available", m.Kind)
	}
	return errors.Wrapf(errors.ErrUnsupportedMode, "unknown mode %q", m.Kind)
}

// ChangeOp is the kind of store mutation.
type ChangeOp string

// ChangeOp values.
const (
	OpUpsert ChangeOp = "upsert"
	OpDelete ChangeOp = "delete"
)

// Change is one native record mutation of one store.
type Change struct {
	// Side is the store receiving the change.
	Side Side `json:"side"`

	// Store is the identifier of that store.
	Store string `json:"store"`

	// Op is the mutation.
	Op ChangeOp `json:"op"`

	// Key is the record key in the store's server map.
	Key string `json:"key"`

	// Raw is the native record. Upserts only.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Sink persists the changes of one name. Write must apply all changes or
// none; the baseline for name is recorded only when it returns nil.
type Sink interface {
	Write(ctx context.Context, name string, changes []Change) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, name string, changes []Change) error

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, name string, changes []Change) error {
	return f(ctx, name, changes)
}

// CollectSink records every write in memory.
type CollectSink struct {
	mu      sync.Mutex
	writes  map[string][]Change
	ordered []string
}

// NewCollectSink creates an empty CollectSink.
func NewCollectSink() *CollectSink {
	return &CollectSink{writes: make(map[string][]Change)}
}

// Write implements Sink.
func (s *CollectSink) Write(_ context.Context, name string, changes []Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.writes[name]; !ok {
		s.ordered = append(s.ordered, name)
	}
	s.writes[name] = append(s.writes[name], changes...)
	return nil
}

// Names returns written names in write order.
func (s *CollectSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ordered)
}

// Changes returns the changes written for name.
func (s *CollectSink) Changes(name string) []Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.writes[name])
}

// All returns every change in write order.
func (s *CollectSink) All() []Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []Change
	for _, name := range s.ordered {
		all = append(all, s.writes[name]...)
	}
	return all
}

// ApplyRequest selects what to apply.
type ApplyRequest struct {
	// Names are the entries to apply. Duplicates are ignored.
	Names []string

	// Mode is the sync direction.
	Mode Mode

	// Resolutions picks the side to keep for Conflict items in
	// bidirectional mode.
	Resolutions map[string]Side

	// DryRun computes changes without writing or recording baselines.
	DryRun bool
}

// Outcome is the result of applying one name.
type Outcome string

// Outcome values.
const (
	OutcomeApplied Outcome = "applied"
	OutcomePlanned Outcome = "planned"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ApplyResult is the outcome of one selected name.
type ApplyResult struct {
	Name    string   `json:"name"`
	Status  Status   `json:"status,omitempty"`
	Outcome Outcome  `json:"outcome"`
	Reason  string   `json:"reason,omitempty"`
	Changes []Change `json:"changes,omitempty"`
	Err     error    `json:"-"`
}

// MarshalJSON implements json.Marshaler, rendering Err as a string.
func (r ApplyResult) MarshalJSON() ([]byte, error) {
	type plain ApplyResult
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// ApplyReport records the outcome of every selected name.
type ApplyReport struct {
	RunID     string        `json:"run_id"`
	PairID    string        `json:"pair_id"`
	Mode      Mode          `json:"mode"`
	DryRun    bool          `json:"dry_run,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Results   []ApplyResult `json:"results"`
}

// Result returns the result for name.
func (r *ApplyReport) Result(name string) (ApplyResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return ApplyResult{}, false
}

// Applied returns the names whose changes were written.
func (r *ApplyReport) Applied() []string {
	var names []string
	for _, res := range r.Results {
		if res.Outcome == OutcomeApplied {
			names = append(names, res.Name)
		}
	}
	return names
}

// Failed returns the failed results.
func (r *ApplyReport) Failed() []ApplyResult {
	var failed []ApplyResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the errors of all failed results, or returns nil.
func (r *ApplyReport) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// ApplyError is the failure of one name during apply.
type ApplyError struct {
	Name string
	Err  error
}

func newApplyError(name string, err error) *ApplyError {
	return &ApplyError{Name: name, Err: errors.Mark(err, errors.ErrApplyFailure)}
}

// Error implements error.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("applying %q: %v", e.Name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the apply failure sentinel.
func (e *ApplyError) Is(target error) bool {
	return target == errors.ErrApplyFailure
}

// Apply converts the selected entries into their destination schemas and
// writes them through sink, one name at a time. A failure on one name does
// not stop the others; it is recorded in the report.
//
// The request is validated before anything is written: an unsupported mode,
// or a selected Conflict without a usable resolution in bidirectional mode,
// returns an error matching errors.ErrUnsupportedMode. Deletions are never
// applied in any mode.
func (e *Engine) Apply(ctx context.Context, p *Plan, req ApplyRequest, sink Sink) (*ApplyReport, error) {
	if p == nil || p.snapA == nil || p.snapB == nil {
		return nil, errors.New("plan was not produced by Analyze")
	}
	if p.PairID != e.pairID {
		return nil, errors.Newf("plan belongs to pair %q, engine to %q", p.PairID, e.pairID)
	}
	if err := req.Mode.Validate(); err != nil {
		return nil, err
	}
	if sink == nil && !req.DryRun {
		return nil, errors.New("a sink is required unless dry run")
	}

	names := slices.Clone(req.Names)
	slices.Sort(names)
	names = slices.Compact(names)

	if req.Mode.Kind == ModeBidirectional {
		if err := e.checkResolutions(p, names, req.Resolutions); err != nil {
			return nil, err
		}
	}

	report := &ApplyReport{
		RunID:     uuid.NewString(),
		PairID:    e.pairID,
		Mode:      req.Mode,
		DryRun:    req.DryRun,
		StartedAt: time.Now().UTC(),
	}

	for _, name := range names {
		var res ApplyResult
		if err := ctx.Err(); err != nil {
			res = ApplyResult{Name: name, Outcome: OutcomeFailed, Err: newApplyError(name, err)}
		} else {
			res = e.applyName(ctx, p, name, req, sink)
		}

		switch res.Outcome {
		case OutcomeFailed:
			e.logger.Warn("apply failed", "run", report.RunID, "name", name, "error", res.Err)
		case OutcomeApplied:
			e.logger.Info("applied", "run", report.RunID, "name", name, "status", res.Status, "changes", len(res.Changes))
		default:
			e.logger.Debug("apply", "run", report.RunID, "name", name, "outcome", res.Outcome, "reason", res.Reason)
		}
		report.Results = append(report.Results, res)
	}

	return report, nil
}

// checkResolutions rejects selected conflicts that cannot be applied.
func (e *Engine) checkResolutions(p *Plan, names []string, resolutions map[string]Side) error {
	for _, name := range names {
		item, ok := p.Item(name)
		if !ok || item.Status != StatusConflict {
			continue
		}
		keep, ok := resolutions[name]
		if !ok {
			return errors.Wrapf(errors.ErrUnsupportedMode, "conflict %q has no resolution", name)
		}
		if !keep.Valid() {
			return errors.Wrapf(errors.ErrUnsupportedMode, "conflict %q has invalid resolution %q", name, keep)
		}
		if p.snapshot(keep).Entry(name) == nil {
			return errors.Wrapf(errors.ErrUnsupportedMode,
				"conflict %q: keeping %s would delete the entry, and deletions are not applied",
				name, e.normalizer(keep).DisplayName())
		}
	}
	return nil
}

// snapshot returns the snapshot of side s.
func (p *Plan) snapshot(s Side) *mcp.Snapshot {
	if s == SideA {
		return p.snapA
	}
	return p.snapB
}

// source picks the side whose entry is copied for an item, or returns a skip
// reason.
func source(item *Item, p *Plan, req ApplyRequest) (Side, string) {
	if item.Status.IsDeletion() {
		return "", "deletions are not applied"
	}

	if req.Mode.Kind == ModeOneWay {
		if p.snapshot(req.Mode.Source).Entry(item.Name) == nil {
			return "", fmt.Sprintf("not present in source store %s", p.snapshot(req.Mode.Source).Store())
		}
		return req.Mode.Source, ""
	}

	switch item.Status {
	case StatusCreatedInA, StatusUpdatedInA:
		return SideA, ""
	case StatusCreatedInB, StatusUpdatedInB:
		return SideB, ""
	case StatusConflict:
		return req.Resolutions[item.Name], ""
	}
	return "", "already in sync"
}

func (e *Engine) applyName(ctx context.Context, p *Plan, name string, req ApplyRequest, sink Sink) ApplyResult {
	res := ApplyResult{Name: name}

	item, ok := p.Item(name)
	if !ok {
		res.Outcome = OutcomeFailed
		res.Err = newApplyError(name, errors.Wrap(errors.ErrNotFound, "name is not in the plan"))
		return res
	}
	res.Status = item.Status

	src, reason := source(item, p, req)
	if src == "" {
		res.Outcome = OutcomeSkipped
		res.Reason = reason
		if item.Status == StatusSynced && !req.DryRun {
			e.recordSynced(name, p.snapA.Entry(name))
		}
		return res
	}

	dst := src.Other()
	entry := p.snapshot(src).Entry(name)

	changes, err := e.changes(p, dst, entry)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = newApplyError(name, err)
		return res
	}
	res.Changes = changes

	if req.DryRun {
		res.Outcome = OutcomePlanned
		return res
	}

	if err := sink.Write(ctx, name, changes); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = newApplyError(name, errors.Wrap(err, "writing changes"))
		return res
	}

	if err := e.baseline.Put(e.pairID, name, entry); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = newApplyError(name, errors.Wrap(err, "changes written but baseline not recorded"))
		return res
	}

	res.Outcome = OutcomeApplied
	return res
}

// changes converts entry into dst's schema, over the record dst already holds
// for the name if any. When dst holds the name under a different key, that
// key is deleted.
func (e *Engine) changes(p *Plan, dst Side, entry *mcp.Entry) ([]Change, error) {
	n := e.normalizer(dst)
	rec, exists := p.snapshot(dst).Get(entry.Name)
	var existing json.RawMessage
	if exists {
		existing = rec.Raw
	}
	key, raw, err := mcp.DenormalizeOver(n, entry, existing)
	if err != nil {
		return nil, errors.Wrapf(err, "converting to %s", n.DisplayName())
	}

	changes := []Change{{Side: dst, Store: n.Store(), Op: OpUpsert, Key: key, Raw: raw}}
	if exists && rec.Key != key {
		changes = append(changes, Change{Side: dst, Store: n.Store(), Op: OpDelete, Key: rec.Key})
	}
	return changes, nil
}

// recordSynced records the baseline of a name both stores already agree on.
func (e *Engine) recordSynced(name string, entry *mcp.Entry) {
	base, ok, err := e.baseline.Get(e.pairID, name)
	if err == nil && ok && base.Equal(entry) {
		return
	}
	if err := e.baseline.Put(e.pairID, name, entry); err != nil {
		e.logger.Warn("recording baseline failed", "name", name, "error", err)
	}
}
