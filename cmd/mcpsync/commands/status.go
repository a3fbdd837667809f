package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilforest7/mcp-coordinator/internal/config"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/platform"
)

var statusFormat string

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", formatText, "output format: text, json, yaml, toml")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the files and state mcpsync works with",
	Long: `Show where each store file lives and whether it exists, the config file in
use, the baseline file, and the number of servers with a recorded baseline.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

type statusView struct {
	ConfigFile string        `json:"config_file,omitempty" yaml:"config_file,omitempty" toml:"config_file,omitempty"`
	PairID     string        `json:"pair_id" yaml:"pair_id" toml:"pair_id"`
	Baseline   string        `json:"baseline" yaml:"baseline" toml:"baseline"`
	Baselines  int           `json:"baselines" yaml:"baselines" toml:"baselines"`
	BackupDir  string        `json:"backup_dir" yaml:"backup_dir" toml:"backup_dir"`
	Stores     []storeStatus `json:"stores" yaml:"stores" toml:"stores"`
}

type storeStatus struct {
	Store       string `json:"store" yaml:"store" toml:"store"`
	DisplayName string `json:"display_name" yaml:"display_name" toml:"display_name"`
	Path        string `json:"path" yaml:"path" toml:"path"`
	Installed   bool   `json:"installed" yaml:"installed" toml:"installed"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if !validFormat(statusFormat) {
		return errors.NewUserError(errors.Newf("unknown format %q", statusFormat), "Use text, json, yaml or toml")
	}
	env, err := newEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	records, err := env.baseline.List(env.pairID)
	if err != nil {
		return errors.Wrap(err, "listing baselines")
	}

	v := statusView{
		ConfigFile: config.Path(),
		PairID:     env.pairID,
		Baseline:   env.baseline.Path(),
		Baselines:  len(records),
		BackupDir:  env.cfg.BackupDir(),
	}
	for _, d := range platform.DetectAll(env.registry) {
		v.Stores = append(v.Stores, storeStatus{
			Store:       d.Store,
			DisplayName: d.DisplayName,
			Path:        d.Path,
			Installed:   d.Status == platform.StatusInstalled,
		})
	}

	w := cmd.OutOrStdout()
	if statusFormat != formatText {
		return encode(w, statusFormat, v)
	}

	headerColor.Fprintln(w, "Stores")
	for _, s := range v.Stores {
		state := successColor.Sprint("found")
		if !s.Installed {
			state = warnColor.Sprint("missing")
		}
		fmt.Fprintf(w, "  %-16s %s (%s)\n", s.DisplayName, s.Path, state)
	}
	fmt.Fprintln(w)
	cfgPath := v.ConfigFile
	if cfgPath == "" {
		cfgPath = dimColor.Sprint("(defaults)")
	}
	fmt.Fprintf(w, "Config:    %s\n", cfgPath)
	fmt.Fprintf(w, "Pair:      %s\n", v.PairID)
	fmt.Fprintf(w, "Baseline:  %s (%d recorded)\n", v.Baseline, v.Baselines)
	fmt.Fprintf(w, "Backups:   %s\n", v.BackupDir)
	return nil
}
