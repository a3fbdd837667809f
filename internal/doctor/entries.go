package doctor

import (
	"fmt"

	"github.com/neilforest7/mcp-coordinator/internal/baseline"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

// AnalyzeFunc produces the current plan for the store pair.
type AnalyzeFunc func() (*reconcile.Plan, error)

// EntryCheck reports server records that cannot take part in a sync:
// unreadable records and names stored under more than one key.
type EntryCheck struct {
	analyze AnalyzeFunc
}

var _ Check = (*EntryCheck)(nil)

// NewEntryCheck creates an entry check using analyze.
func NewEntryCheck(analyze AnalyzeFunc) *EntryCheck {
	return &EntryCheck{analyze: analyze}
}

// Name returns the unique identifier for this check.
func (c *EntryCheck) Name() string {
	return "server-entries"
}

// Category returns the grouping for this check.
func (c *EntryCheck) Category() string {
	return "store"
}

// Run executes the entry check.
func (c *EntryCheck) Run() *CheckResult {
	p, err := c.analyze()
	if err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  fmt.Sprintf("cannot read stores: %v", err),
			FixHint:  "fix the store file reported by config-syntax",
		}
	}

	var malformed []map[string]any
	for _, m := range p.Malformed {
		malformed = append(malformed, map[string]any{
			"store": m.Store,
			"key":   m.Key,
			"error": m.Err.Error(),
		})
	}
	var flagged []map[string]any
	for _, it := range p.Items {
		if len(it.Errors) > 0 {
			flagged = append(flagged, map[string]any{"name": it.Name, "errors": it.Errors})
		}
	}

	details := map[string]any{
		"servers":   len(p.Items),
		"conflicts": p.Counts()[reconcile.StatusConflict],
	}
	if len(malformed) > 0 {
		details["malformed"] = malformed
	}
	if len(flagged) > 0 {
		details["flagged"] = flagged
	}

	if len(malformed)+len(flagged) > 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  fmt.Sprintf("%d unreadable record(s), %d server(s) with analysis errors", len(malformed), len(flagged)),
			Details:  details,
			FixHint:  "edit the records listed in the details; unreadable records are never synced",
		}
	}
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("%d server(s) readable", len(p.Items)),
		Details:  details,
	}
}

// BaselineCheck reports baselines that no longer match any server in
// either store.
type BaselineCheck struct {
	store   baseline.Lister
	pairID  string
	analyze AnalyzeFunc
}

var _ Check = (*BaselineCheck)(nil)

// NewBaselineCheck creates a baseline check for pairID.
func NewBaselineCheck(store baseline.Lister, pairID string, analyze AnalyzeFunc) *BaselineCheck {
	return &BaselineCheck{store: store, pairID: pairID, analyze: analyze}
}

// Name returns the unique identifier for this check.
func (c *BaselineCheck) Name() string {
	return "baseline"
}

// Category returns the grouping for this check.
func (c *BaselineCheck) Category() string {
	return "baseline"
}

// Run executes the baseline check.
func (c *BaselineCheck) Run() *CheckResult {
	records, err := c.store.List(c.pairID)
	if err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  fmt.Sprintf("cannot list baselines: %v", err),
		}
	}
	p, err := c.analyze()
	if err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  fmt.Sprintf("%d baseline(s) recorded; stores unreadable", len(records)),
		}
	}

	var orphans []string
	for _, r := range records {
		if _, ok := p.Item(r.Name); !ok {
			orphans = append(orphans, r.Name)
		}
	}

	details := map[string]any{
		"pair_id":  c.pairID,
		"recorded": len(records),
	}
	if len(orphans) > 0 {
		details["orphans"] = orphans
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  fmt.Sprintf("%d baseline(s) name servers missing from both stores", len(orphans)),
			Details:  details,
			FixHint:  "mcpsync baseline forget NAME",
		}
	}
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("%d baseline(s) recorded", len(records)),
		Details:  details,
	}
}
