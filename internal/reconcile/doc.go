// Package reconcile compares two MCP configuration stores and applies a
// selected subset of their differences.
//
// Analysis normalizes both stores into canonical entries, classifies every
// name in the union of their keys against the last synced baseline, flags
// likely duplicates stored under different names, and renders line diffs
// and cross-schema previews for conflicts. The result is a [Plan]:
//
//	eng := reconcile.NewEngine(claudeNorm, opencodeNorm, store, pairID)
//	plan, err := eng.Analyze(rawClaude, rawOpenCode)
//	for _, item := range plan.Items {
//	    fmt.Println(item.Name, item.Status, item.ActionDescription)
//	}
//
// Applying converts the selected entries into the destination store's schema
// and hands the resulting upserts and deletes to a [Sink], one name at a
// time. The baseline for a name is only recorded after its sink write
// succeeds:
//
//	report, err := eng.Apply(ctx, plan, reconcile.ApplyRequest{
//	    Names: []string{"github"},
//	    Mode:  reconcile.Bidirectional(),
//	}, sink)
//
// # Status
//
// Status is derived from a [State], which records for each store whether the
// name is present and how its value relates to the baseline. The two-store
// table maps onto the named [Status] values. Deletions are reported but never
// applied.
//
// # Concurrency
//
// Analysis is read-only and may run concurrently. Apply calls for the same
// store pair must be serialized by the caller.
package reconcile
