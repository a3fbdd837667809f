package doctor

import (
	"fmt"

	"github.com/neilforest7/mcp-coordinator/internal/platform"
)

// StoreCheck reports which store files exist.
type StoreCheck struct {
	registry *platform.Registry
}

var _ Check = (*StoreCheck)(nil)

// NewStoreCheck creates a store detection check over the registry.
func NewStoreCheck(r *platform.Registry) *StoreCheck {
	return &StoreCheck{registry: r}
}

// Name returns the unique identifier for this check.
func (c *StoreCheck) Name() string {
	return "store-detection"
}

// Category returns the grouping for this check.
func (c *StoreCheck) Category() string {
	return "store"
}

// Run executes the store detection check and returns its result.
func (c *StoreCheck) Run() *CheckResult {
	results := platform.DetectAll(c.registry)

	stores := make(map[string]any, len(results))
	var installed int
	var missing []string
	for _, r := range results {
		stores[r.Store] = map[string]any{
			"status": string(r.Status),
			"path":   r.Path,
		}
		if r.Status == platform.StatusInstalled {
			installed++
		} else {
			missing = append(missing, r.DisplayName)
		}
	}

	details := map[string]any{
		"stores":    stores,
		"installed": installed,
		"total":     len(results),
	}

	switch {
	case installed == 0:
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "no store files found; there is nothing to sync",
			Details:  details,
			FixHint:  "pass --claude-config and --opencode-config, or set stores.*.path in the config file",
		}
	case len(missing) > 0:
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  fmt.Sprintf("%d of %d store files found; apply creates the rest", installed, len(results)),
			Details:  details,
		}
	default:
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("%d store files found", installed),
			Details:  details,
		}
	}
}
