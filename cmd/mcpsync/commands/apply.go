package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilforest7/mcp-coordinator/internal/backup"
	"github.com/neilforest7/mcp-coordinator/internal/cli/prompt"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/lock"
	"github.com/neilforest7/mcp-coordinator/internal/platform"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

// Direction flag values.
const (
	directionBoth             = "both"
	directionClaudeToOpenCode = "claude-to-opencode"
	directionOpenCodeToClaude = "opencode-to-claude"
)

var (
	applyDirection   string
	applyKeep        []string
	applyInteractive bool
	applyDryRun      bool
	applyJSON        bool
	applyWait        bool
)

// newSelector is replaced in tests.
var newSelector = prompt.NewSelector

func init() {
	applyCmd.Flags().StringVar(&applyDirection, "direction", directionBoth,
		"sync direction: both, claude-to-opencode, opencode-to-claude")
	applyCmd.Flags().StringArrayVar(&applyKeep, "keep", nil,
		"resolve a conflict as NAME=claude or NAME=opencode (repeatable)")
	applyCmd.Flags().BoolVarP(&applyInteractive, "interactive", "i", false,
		"pick servers and resolve conflicts interactively")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false,
		"show the changes without writing anything")
	applyCmd.Flags().BoolVar(&applyJSON, "json", false, "print the apply report as JSON")
	applyCmd.Flags().BoolVar(&applyWait, "wait", false,
		"wait for another apply on the same stores to finish instead of failing")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply [NAME...]",
	Short: "Write selected changes into the stores",
	Long: `Apply the changes of the named servers, or of every pending server when no
name is given.

In the default bidirectional mode each server's change flows toward the store
that lacks it. Conflicts need a decision: pass --keep NAME=claude or
--keep NAME=opencode, or use -i to choose interactively. Conflicts without a
decision are skipped when no names are given and rejected when named.

With --direction claude-to-opencode or opencode-to-claude the source store's
version overwrites the other for every selected server, conflicts included.

Deletions are never applied; remove the server from the other store by hand.

Each store file is backed up before its first write, and a lock prevents two
applies on the same stores from running at once. An apply that finds the lock
held fails unless --wait is given.`,
	Example: `  # Apply everything except unresolved conflicts
  mcpsync apply

  # Preview one server
  mcpsync apply github --dry-run

  # Resolve a conflict
  mcpsync apply github --keep github=claude

  # Make OpenCode match Claude Desktop
  mcpsync apply --direction claude-to-opencode

  # Queue behind a running apply
  mcpsync apply --wait`,
	RunE: runApply,
}

// parseDirection maps --direction onto a reconcile mode.
func parseDirection(s string) (reconcile.Mode, error) {
	switch s {
	case directionBoth, "":
		return reconcile.Bidirectional(), nil
	case directionClaudeToOpenCode:
		return reconcile.OneWay(reconcile.SideA, reconcile.SideB), nil
	case directionOpenCodeToClaude:
		return reconcile.OneWay(reconcile.SideB, reconcile.SideA), nil
	}
	return reconcile.Mode{}, errors.NewUserError(
		errors.Mark(errors.Newf("unknown direction %q", s), errors.ErrUnsupportedMode),
		"Use both, claude-to-opencode or opencode-to-claude")
}

// parseKeep parses NAME=STORE resolutions.
func parseKeep(env *environment, values []string) (map[string]reconcile.Side, error) {
	out := make(map[string]reconcile.Side, len(values))
	for _, v := range values {
		name, store, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, errors.NewUserError(errors.Newf("invalid --keep %q", v), "Use --keep NAME=claude or NAME=opencode")
		}
		side, ok := env.sideOf(store)
		if !ok {
			return nil, errors.NewUserError(errors.Newf("invalid store %q in --keep %q", store, v), "Use claude or opencode")
		}
		out[name] = side
	}
	return out, nil
}

// acquireLock takes the apply lock, blocking until ctx is done with --wait.
func acquireLock(ctx context.Context, l *lock.Lock) error {
	if !applyWait {
		if err := l.TryAcquire(); err != nil {
			return errors.NewUserError(err, "Wait for the other mcpsync apply to finish, or pass --wait")
		}
		return nil
	}
	if err := l.Acquire(ctx); err != nil {
		return errors.NewUserError(err, "The other mcpsync apply did not finish in time")
	}
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	mode, err := parseDirection(applyDirection)
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	resolutions, err := parseKeep(env, applyKeep)
	if err != nil {
		return err
	}

	if !applyDryRun {
		l := env.lock()
		if err := acquireLock(cmd.Context(), l); err != nil {
			return err
		}
		defer func() { _ = l.Release() }()
	}

	// Plan after locking so no other apply changes the files underneath.
	p, err := env.plan()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	names, err := selectNames(w, env, p, args, mode, resolutions)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "Nothing to apply.")
		return nil
	}

	req := reconcile.ApplyRequest{
		Names:       names,
		Mode:        mode,
		Resolutions: resolutions,
		DryRun:      applyDryRun,
	}
	var (
		sink  reconcile.Sink
		files *platform.Sink
	)
	if !applyDryRun {
		files = env.sink()
		sink = files
	}

	report, err := env.engine.Apply(cmd.Context(), p, req, sink)
	if err != nil {
		if errors.Is(err, errors.ErrUnsupportedMode) {
			return errors.NewUserError(err, "Resolve conflicts with --keep NAME=claude|opencode or use -i")
		}
		return errors.NewSystemError(err, "")
	}

	if applyJSON {
		if err := encode(w, formatJSON, report); err != nil {
			return err
		}
	} else {
		writeReport(w, env, report)
		if files != nil {
			writeBackups(w, env, files.Backups())
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		return errors.NewSystemError(
			errors.Wrapf(report.Err(), "%d of %d servers failed", len(failed), len(report.Results)),
			"Store backups are kept under "+env.cfg.BackupDir())
	}
	return nil
}

// selectNames decides which names to apply. Explicit names are used as
// given; otherwise pending names are offered interactively or taken whole,
// skipping unresolved conflicts in bidirectional mode.
func selectNames(w io.Writer, env *environment, p *reconcile.Plan, args []string,
	mode reconcile.Mode, resolutions map[string]reconcile.Side,
) ([]string, error) {
	needsDecision := func(it *reconcile.Item) bool {
		_, resolved := resolutions[it.Name]
		return mode.Kind == reconcile.ModeBidirectional && it.Status == reconcile.StatusConflict && !resolved
	}

	candidates := p.Pending()
	if len(args) > 0 {
		candidates = nil
		for _, name := range args {
			if it, ok := p.Item(name); ok {
				candidates = append(candidates, it)
			}
		}
	}

	if !applyInteractive {
		if len(args) > 0 {
			return args, nil
		}
		var names, skipped []string
		for _, it := range candidates {
			if needsDecision(it) {
				skipped = append(skipped, it.Name)
				continue
			}
			names = append(names, it.Name)
		}
		if len(skipped) > 0 {
			warnColor.Fprintf(w, "Skipping unresolved conflicts: %s\n", strings.Join(skipped, ", "))
		}
		return names, nil
	}

	sel := newSelector()
	names, err := sel.SelectItems(candidates)
	if errors.Is(err, prompt.ErrNoItems) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewUserError(err, "")
	}

	var out []string
	for _, name := range names {
		it, _ := p.Item(name)
		if !needsDecision(it) {
			out = append(out, name)
			continue
		}
		side, err := sel.ChooseSide(name, env.sideLabel(reconcile.SideA), env.sideLabel(reconcile.SideB))
		if err != nil {
			return nil, errors.NewUserError(err, "")
		}
		if side == "" {
			continue
		}
		resolutions[name] = side
		out = append(out, name)
	}
	return out, nil
}

// writeBackups lists the backups taken before the stores were written.
func writeBackups(w io.Writer, env *environment, backups map[string]*backup.Manifest) {
	for _, st := range []*platform.Store{env.a, env.b} {
		if m, ok := backups[st.ID()]; ok {
			dimColor.Fprintf(w, "Backed up %s as %s\n", st.DisplayName(), m.ID)
		}
	}
}

// writeReport prints one line per result.
func writeReport(w io.Writer, env *environment, r *reconcile.ApplyReport) {
	for _, res := range r.Results {
		switch res.Outcome {
		case reconcile.OutcomeApplied:
			successColor.Fprint(w, "applied ")
			fmt.Fprintf(w, "%s%s\n", res.Name, describeChanges(env, res.Changes))
		case reconcile.OutcomePlanned:
			warnColor.Fprint(w, "would apply ")
			fmt.Fprintf(w, "%s%s\n", res.Name, describeChanges(env, res.Changes))
		case reconcile.OutcomeSkipped:
			dimColor.Fprintf(w, "skipped %s: %s\n", res.Name, res.Reason)
		case reconcile.OutcomeFailed:
			failColor.Fprint(w, "failed ")
			fmt.Fprintf(w, "%s: %v\n", res.Name, res.Err)
		}
	}

	applied := len(r.Applied())
	if r.DryRun {
		fmt.Fprintf(w, "\nDry run: nothing written (run %s)\n", r.RunID)
		return
	}
	fmt.Fprintf(w, "\n%d applied, %d failed (run %s)\n", applied, len(r.Failed()), r.RunID)
}

// describeChanges renders changes as " -> OpenCode: upsert x, delete y".
func describeChanges(env *environment, changes []reconcile.Change) string {
	if len(changes) == 0 {
		return ""
	}
	bySide := make(map[reconcile.Side][]string)
	for _, c := range changes {
		bySide[c.Side] = append(bySide[c.Side], string(c.Op)+" "+c.Key)
	}
	sides := make([]reconcile.Side, 0, len(bySide))
	for s := range bySide {
		sides = append(sides, s)
	}
	slices.Sort(sides)

	var sb strings.Builder
	for _, s := range sides {
		fmt.Fprintf(&sb, " -> %s: %s", env.sideLabel(s), strings.Join(bySide[s], ", "))
	}
	return sb.String()
}
