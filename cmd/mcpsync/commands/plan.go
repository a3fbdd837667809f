package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

var (
	planAll         bool
	planFormat      string
	planShowSecrets bool
)

func init() {
	planCmd.Flags().BoolVar(&planAll, "all", false, "include servers that are already in sync")
	planCmd.Flags().StringVar(&planFormat, "format", formatText, "output format: text, json, yaml, toml")
	planCmd.Flags().BoolVar(&planShowSecrets, "show-secrets", false, "reveal masked secrets in diffs")
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show how the MCP servers of both stores differ",
	Long: `Compare the MCP servers of Claude Desktop and OpenCode and list what a
sync would do for each server name.

Each name is classified relative to the last sync:

  CreatedInA / CreatedInB   only one store has it and it was never synced
  UpdatedInA / UpdatedInB   one store changed it since the last sync
  DeletedFromA / FromB      one store removed it since the last sync
  Conflict                  both changed it, or it differs and was never synced
  Synced                    both stores agree

A is Claude Desktop and B is OpenCode. Entries that cannot be read are
listed separately and left alone.

Environment values and headers that look like secrets are masked unless
--show-secrets is given.`,
	Example: `  mcpsync plan
  mcpsync plan --all --format yaml`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, _ []string) error {
	if !validFormat(planFormat) {
		return errors.NewUserError(errors.Newf("unknown format %q", planFormat), "Use text, json, yaml or toml")
	}

	env, err := newEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	p, err := env.plan()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if planFormat != formatText {
		return encode(w, planFormat, newPlanView(p, planAll, planShowSecrets))
	}
	writePlanText(w, env, p, planAll, planShowSecrets)
	return nil
}

// planView is the machine-readable form of a plan.
type planView struct {
	PairID    string          `json:"pair_id" yaml:"pair_id" toml:"pair_id"`
	StoreA    string          `json:"store_a" yaml:"store_a" toml:"store_a"`
	StoreB    string          `json:"store_b" yaml:"store_b" toml:"store_b"`
	InSync    bool            `json:"in_sync" yaml:"in_sync" toml:"in_sync"`
	Counts    map[string]int  `json:"counts" yaml:"counts" toml:"counts"`
	Items     []itemView      `json:"items" yaml:"items" toml:"items"`
	Malformed []malformedView `json:"malformed,omitempty" yaml:"malformed,omitempty" toml:"malformed,omitempty"`
}

type itemView struct {
	Name           string   `json:"name" yaml:"name" toml:"name"`
	Status         string   `json:"status" yaml:"status" toml:"status"`
	Action         string   `json:"action" yaml:"action" toml:"action"`
	PresentIn      []string `json:"present_in" yaml:"present_in" toml:"present_in"`
	ContentMatches []string `json:"content_matches,omitempty" yaml:"content_matches,omitempty" toml:"content_matches,omitempty"`
	Additions      int      `json:"additions,omitempty" yaml:"additions,omitempty" toml:"additions,omitempty"`
	Deletions      int      `json:"deletions,omitempty" yaml:"deletions,omitempty" toml:"deletions,omitempty"`
	Diff           string   `json:"diff,omitempty" yaml:"diff,omitempty" toml:"diff,omitempty"`
	Errors         []string `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
}

type malformedView struct {
	Store string `json:"store" yaml:"store" toml:"store"`
	Key   string `json:"key" yaml:"key" toml:"key"`
	Error string `json:"error" yaml:"error" toml:"error"`
}

func newPlanView(p *reconcile.Plan, all, showSecrets bool) planView {
	v := planView{
		PairID: p.PairID,
		StoreA: p.StoreA,
		StoreB: p.StoreB,
		InSync: p.InSync(),
		Counts: make(map[string]int),
		Items:  []itemView{},
	}
	for status, n := range p.Counts() {
		v.Counts[string(status)] = n
	}
	for _, it := range p.Items {
		if !all && it.Status == reconcile.StatusSynced {
			continue
		}
		diff := it.UnifiedDiff
		if !showSecrets {
			diff = maskText(diff)
		}
		v.Items = append(v.Items, itemView{
			Name:           it.Name,
			Status:         string(it.Status),
			Action:         it.ActionDescription,
			PresentIn:      it.State.PresentIn(),
			ContentMatches: it.ContentMatches,
			Additions:      it.Additions,
			Deletions:      it.Deletions,
			Diff:           diff,
			Errors:         it.Errors,
		})
	}
	for _, m := range p.Malformed {
		v.Malformed = append(v.Malformed, malformedView{Store: m.Store, Key: m.Key, Error: m.Err.Error()})
	}
	return v
}

// writePlanText prints the plan grouped by status.
func writePlanText(w io.Writer, env *environment, p *reconcile.Plan, all, showSecrets bool) {
	headerColor.Fprintf(w, "%s <-> %s", env.a.DisplayName(), env.b.DisplayName())
	dimColor.Fprintf(w, " (%s)\n", p.PairID)

	groups := make(map[reconcile.Status][]*reconcile.Item)
	for _, it := range p.Items {
		groups[it.Status] = append(groups[it.Status], it)
	}

	for _, status := range reconcile.Statuses() {
		items := groups[status]
		if len(items) == 0 || (status == reconcile.StatusSynced && !all) {
			continue
		}
		fmt.Fprintln(w)
		statusColor(status).Fprintf(w, "%s (%d)\n", status, len(items))
		for _, it := range items {
			fmt.Fprint(w, "  ")
			nameColor.Fprint(w, it.Name)
			fmt.Fprintf(w, "  %s\n", it.ActionDescription)
			for _, e := range it.Errors {
				warnColor.Fprintf(w, "    ! %s\n", e)
			}
			if status == reconcile.StatusConflict && len(it.DiffLines) > 0 {
				lines := it.DiffLines
				if !showSecrets {
					lines = maskDiffLines(lines)
				}
				dimColor.Fprintf(w, "    +%d -%d\n", it.Additions, it.Deletions)
				writeDiffLines(w, lines, "    ")
			}
		}
	}

	if len(p.Malformed) > 0 {
		fmt.Fprintln(w)
		warnColor.Fprintf(w, "Unreadable entries (%d)\n", len(p.Malformed))
		for _, m := range p.Malformed {
			fmt.Fprintf(w, "  %s: %q: %v\n", m.Store, m.Key, m.Err)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, summary(p))
}

// summary is the one-line plan total.
func summary(p *reconcile.Plan) string {
	counts := p.Counts()
	pending := len(p.Items) - counts[reconcile.StatusSynced]
	if p.InSync() {
		return successColor.Sprintf("Everything in sync (%d servers)", len(p.Items))
	}
	parts := []string{
		fmt.Sprintf("%d pending", pending),
		fmt.Sprintf("%d in sync", counts[reconcile.StatusSynced]),
	}
	if n := counts[reconcile.StatusConflict]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d conflicting", n))
	}
	if n := len(p.Malformed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable", n))
	}
	return strings.Join(parts, ", ")
}
