package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilforest7/mcp-coordinator/internal/backup"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/platform"
)

var backupListFormat string

func init() {
	backupListCmd.Flags().StringVar(&backupListFormat, "format", formatText, "output format: text, json, yaml, toml")
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List and restore store backups",
	Long: `mcpsync copies each store file into the backup directory before its first
write in an apply. Use these commands to inspect or restore those copies.`,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups of both stores, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore STORE [BACKUP-ID]",
	Short: "Restore a store file from a backup",
	Long: `Restore a store file from a backup. Without a backup ID the most recent
backup of the store is used. The current file is overwritten.`,
	Example: `  # Undo the last apply on OpenCode
  mcpsync backup restore opencode

  # Restore a specific backup
  mcpsync backup restore claude 20261018T101500`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBackupRestore,
}

type backupListView struct {
	Store   string           `json:"store" yaml:"store" toml:"store"`
	Backups []backupInfoView `json:"backups" yaml:"backups" toml:"backups"`
}

type backupInfoView struct {
	ID          string    `json:"id" yaml:"id" toml:"id"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at" toml:"created_at"`
	FileCount   int       `json:"file_count" yaml:"file_count" toml:"file_count"`
	ToolVersion string    `json:"tool_version" yaml:"tool_version" toml:"tool_version"`
}

func (e *environment) backupManager() *backup.Manager {
	return backup.NewManager(
		backup.WithBackupDir(e.cfg.BackupDir()),
		backup.WithRetentionCount(e.cfg.Backup.Retention),
	)
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	if !validFormat(backupListFormat) {
		return errors.NewUserError(errors.Newf("unknown format %q", backupListFormat), "Use text, json, yaml or toml")
	}
	env, err := newEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	mgr := env.backupManager()

	stores := []*platform.Store{env.a, env.b}
	views := make([]backupListView, 0, len(stores))
	for _, s := range stores {
		manifests, err := mgr.List(s.ID())
		if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.Wrapf(err, "listing backups for %s", s.ID())
		}
		v := backupListView{Store: s.ID(), Backups: make([]backupInfoView, 0, len(manifests))}
		for _, m := range manifests {
			v.Backups = append(v.Backups, backupInfoView{
				ID:          m.ID,
				CreatedAt:   m.CreatedAt,
				FileCount:   len(m.Files),
				ToolVersion: m.ToolVersion,
			})
		}
		views = append(views, v)
	}

	w := cmd.OutOrStdout()
	if backupListFormat != formatText {
		return encode(w, backupListFormat, struct {
			Stores []backupListView `json:"stores" yaml:"stores" toml:"stores"`
		}{views})
	}

	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		store, _ := env.registry.Get(v.Store)
		headerColor.Fprintf(w, "%s\n", store.DisplayName())
		if len(v.Backups) == 0 {
			dimColor.Fprintln(w, "  (no backups available)")
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ID\tCREATED\tFILES\tVERSION")
		for _, b := range v.Backups {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n", b.ID,
				b.CreatedAt.Local().Format("2006-01-02 15:04:05"), b.FileCount, b.ToolVersion)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	store, ok := env.registry.Get(args[0])
	if !ok {
		return errors.NewUserError(errors.Newf("unknown store %q", args[0]), "Use claude or opencode")
	}

	l := env.lock()
	if err := l.TryAcquire(); err != nil {
		return errors.NewUserError(err, "Wait for the running mcpsync apply to finish")
	}
	defer func() { _ = l.Release() }()

	mgr := env.backupManager()
	w := cmd.OutOrStdout()

	var id string
	if len(args) > 1 {
		id = args[1]
	} else {
		manifests, err := mgr.List(store.ID())
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				return errors.NewUserError(errors.Newf("no backups found for %s", store.DisplayName()), "")
			}
			return errors.Wrap(err, "listing backups")
		}
		id = manifests[0].ID
		fmt.Fprintf(w, "Using most recent backup: %s\n", id)
	}

	manifest, err := mgr.Get(store.ID(), id)
	if err != nil {
		return errors.NewUserError(errors.Wrapf(err, "getting backup %s", id), "Run 'mcpsync backup list' to see available backups")
	}
	if err := mgr.Restore(store.ID(), id); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "restoring backup"), "")
	}

	successColor.Fprintf(w, "Restored %d file(s) of %s from backup %s\n", len(manifest.Files), store.DisplayName(), id)
	return nil
}
