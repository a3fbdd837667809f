package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/neilforest7/mcp-coordinator/internal/config"
	"github.com/neilforest7/mcp-coordinator/internal/doctor"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

var (
	doctorFormat  string
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", formatText, "output format: text, json, yaml")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "all", false, "show passed checks too")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "fix permission issues")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose store files, configuration, and baseline",
	Long: `Run diagnostic checks on the store files, the mcpsync config file, and the
baseline.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

// errDoctorWarnings and errDoctorErrors carry the doctor exit codes.
var (
	errDoctorWarnings = errors.New("warnings found")
	errDoctorErrors   = errors.New("errors found")
)

func runDoctor(cmd *cobra.Command, _ []string) error {
	if doctorFormat == formatTOML || !validFormat(doctorFormat) {
		return errors.NewUserError(errors.Newf("unknown format %q", doctorFormat), "Use text, json or yaml")
	}
	env, err := newEnvironment(cmd.Context())
	if err != nil {
		return err
	}

	var cache *reconcile.Plan
	var cacheErr error
	analyze := func() (*reconcile.Plan, error) {
		if cache == nil && cacheErr == nil {
			cache, cacheErr = env.plan()
		}
		return cache, cacheErr
	}

	storeTargets := []doctor.Target{
		{Label: env.a.ID(), Path: env.a.Path()},
		{Label: env.b.ID(), Path: env.b.Path()},
	}
	files := append(slices.Clone(storeTargets), doctor.Target{Label: "baseline", Path: env.baseline.Path()})
	configTargets := slices.Clone(storeTargets)
	if p := config.Path(); p != "" {
		configTargets = append(configTargets, doctor.Target{Label: "config", Path: p})
	}

	runner := doctor.NewRunner(
		doctor.NewStoreCheck(env.registry),
		doctor.NewPathPermissionCheck(files...),
		doctor.NewConfigSyntaxCheck(configTargets...),
		doctor.NewEntryCheck(analyze),
		doctor.NewBaselineCheck(env.baseline, env.pairID, analyze),
	)

	report := runner.Run()
	w := cmd.OutOrStdout()

	if doctorFix {
		if fixes := runner.Fix(); len(fixes) > 0 {
			for _, f := range fixes {
				if f.Fixed {
					successColor.Fprintf(w, "fixed %s: %s\n", f.Path, f.Description)
				} else {
					failColor.Fprintf(w, "could not fix %s: %s\n", f.Path, f.Description)
				}
			}
			report = runner.Run()
		}
	}

	if doctorFormat != formatText {
		if err := encode(w, doctorFormat, report); err != nil {
			return err
		}
	} else {
		writeDoctorText(w, report, doctorVerbose)
	}

	switch {
	case report.HasErrors():
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	case report.HasWarnings():
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func writeDoctorText(w io.Writer, report *doctor.Report, all bool) {
	for _, r := range report.Results {
		if !all && r.Status != doctor.SeverityError && r.Status != doctor.SeverityWarning {
			continue
		}
		severityColor(r.Status).Fprintf(w, "%s ", statusIcon(r.Status))
		fmt.Fprintf(w, "[%s] %s: %s\n", r.Category, r.Name, r.Message)
		if r.FixHint != "" && r.Status >= doctor.SeverityWarning {
			dimColor.Fprintf(w, "  hint: %s\n", r.FixHint)
		}
	}
	severityColor(report.Worst()).Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func severityColor(s doctor.Severity) *color.Color {
	switch s {
	case doctor.SeverityPass:
		return successColor
	case doctor.SeverityWarning:
		return warnColor
	case doctor.SeverityError:
		return failColor
	default:
		return dimColor
	}
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}
