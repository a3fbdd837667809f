package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/neilforest7/mcp-coordinator/internal/baseline"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

var baselineListFormat string

func init() {
	baselineListCmd.Flags().StringVar(&baselineListFormat, "format", formatText, "output format: text, json, yaml, toml")
	baselineCmd.AddCommand(baselineListCmd)
	baselineCmd.AddCommand(baselineForgetCmd)
	rootCmd.AddCommand(baselineCmd)
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect the last-synced state",
	Long: `The baseline remembers, per server name, the value both stores agreed on
after the last sync. It is how mcpsync tells an edit on one side from an edit
on the other.`,
}

var baselineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded baselines for the current store pair",
	Args:  cobra.NoArgs,
	RunE:  runBaselineList,
}

var baselineForgetCmd = &cobra.Command{
	Use:   "forget NAME...",
	Short: "Forget the baseline of servers",
	Long: `Forget the recorded baseline of the named servers. Servers present in both
stores with different values then show up as conflicts on the next plan.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBaselineForget,
}

type baselineView struct {
	PairID  string            `json:"pair_id" yaml:"pair_id" toml:"pair_id"`
	Path    string            `json:"path" yaml:"path" toml:"path"`
	Records []baseline.Record `json:"records" yaml:"records" toml:"records"`
}

func runBaselineList(cmd *cobra.Command, _ []string) error {
	if !validFormat(baselineListFormat) {
		return errors.NewUserError(errors.Newf("unknown format %q", baselineListFormat), "Use text, json, yaml or toml")
	}
	env, err := newEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	records, err := env.baseline.List(env.pairID)
	if err != nil {
		return errors.Wrap(err, "listing baselines")
	}

	w := cmd.OutOrStdout()
	if baselineListFormat != formatText {
		if records == nil {
			records = []baseline.Record{}
		}
		return encode(w, baselineListFormat, baselineView{PairID: env.pairID, Path: env.baseline.Path(), Records: records})
	}

	headerColor.Fprintf(w, "Baselines for %s\n", env.pairID)
	if len(records) == 0 {
		dimColor.Fprintln(w, "  (none recorded)")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tTRANSPORT\tENABLED\tSYNCED")
	for _, r := range records {
		fmt.Fprintf(tw, "  %s\t%s\t%t\t%s\n", r.Name, r.Entry.Transport, r.Entry.Enabled,
			r.SyncedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func runBaselineForget(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	l := env.lock()
	if err := l.TryAcquire(); err != nil {
		return errors.NewUserError(err, "Wait for the running mcpsync apply to finish")
	}
	defer func() { _ = l.Release() }()

	w := cmd.OutOrStdout()
	for _, name := range args {
		if err := env.baseline.Remove(env.pairID, name); err != nil {
			return errors.NewSystemError(errors.Wrapf(err, "forgetting %s", name), "")
		}
		fmt.Fprintf(w, "Forgot baseline of %s\n", name)
	}
	return nil
}
