package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

var (
	diffCompare     string
	diffShowSecrets bool
)

func init() {
	diffCmd.Flags().StringVar(&diffCompare, "compare", "raw",
		"what to compare: raw, as-claude, as-opencode")
	diffCmd.Flags().BoolVar(&diffShowSecrets, "show-secrets", false, "reveal masked secrets")
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff NAME",
	Short: "Show a line diff of one server across both stores",
	Long: `Show a line diff of one MCP server as each store holds it.

Comparison modes:

  raw          Claude Desktop's record against OpenCode's record
  as-claude    Claude Desktop's record against OpenCode's entry written for Claude Desktop
  as-opencode  Claude Desktop's entry written for OpenCode against OpenCode's record

The converted modes hide differences that are only schema shape, leaving
what a sync would actually change.`,
	Example: `  mcpsync diff github
  mcpsync diff github --compare as-opencode`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

// compareMode maps a --compare value to a renderer mode.
func compareMode(s string) (reconcile.CompareMode, error) {
	switch s {
	case "raw":
		return reconcile.CompareRaw, nil
	case "as-claude", "as-a":
		return reconcile.CompareAsA, nil
	case "as-opencode", "as-b":
		return reconcile.CompareAsB, nil
	}
	return "", errors.NewUserError(errors.Newf("unknown compare mode %q", s), "Use raw, as-claude or as-opencode")
}

func runDiff(cmd *cobra.Command, args []string) error {
	mode, err := compareMode(diffCompare)
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	p, err := env.plan()
	if err != nil {
		return err
	}

	name := args[0]
	item, ok := p.Item(name)
	if !ok {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "server %q", name), "Run 'mcpsync plan --all' to list server names")
	}

	// Converted previews are only kept for conflicts; build them on demand.
	if mode != reconcile.CompareRaw && item.AAsB == "" && item.BAsA == "" {
		env.engine.Preview(p, item)
	}

	cmp, err := env.engine.Renderer().Compare(item, mode)
	if err != nil {
		return errors.NewUserError(err, "Try --compare raw")
	}

	w := cmd.OutOrStdout()
	statusColor(item.Status).Fprintf(w, "%s", item.Status)
	fmt.Fprintf(w, "  %s\n", item.ActionDescription)
	for _, e := range item.Errors {
		warnColor.Fprintf(w, "! %s\n", e)
	}

	left, right := env.a.DisplayName(), env.b.DisplayName()
	switch mode {
	case reconcile.CompareAsA:
		right += " (as " + env.a.DisplayName() + ")"
	case reconcile.CompareAsB:
		left += " (as " + env.b.DisplayName() + ")"
	}
	delColor.Fprintf(w, "--- %s\n", left)
	addColor.Fprintf(w, "+++ %s\n", right)

	lines := cmp.Lines
	if !diffShowSecrets {
		lines = maskDiffLines(lines)
	}
	writeDiffLines(w, lines, "")

	if cmp.Additions+cmp.Deletions == 0 {
		dimColor.Fprintln(w, "(no differences)")
	}
	return nil
}
