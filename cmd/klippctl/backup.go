package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/printbed/klippctl/internal/backup"
	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/messages"
)

var snapshotFunc = func(app *appEnv, name string, sources []string) (string, error) {
	root := app.settings.General.ResolveBackupRoot(app.paths.BackupRoot)
	m := backup.NewManager(root, backup.WithLogger(app.log))
	return m.Snapshot(name, sources)
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.BackupUse,
		Short: messages.BackupShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return runBackup(cmd, app)
		},
	}
}

// runBackup snapshots the printer data directory and any deployed web
// interface files.
func runBackup(cmd *cobra.Command, app *appEnv) error {
	out := cmd.OutOrStdout()
	sources := []string{app.paths.PrinterData}
	for _, d := range app.registry() {
		if d.Kind == component.KindWebUI {
			sources = append(sources, d.Dir)
		}
	}
	_, _ = fmt.Fprintf(out, messages.BackupCreatingFmt, app.paths.PrinterData)
	dir, err := snapshotFunc(app, "manual", sources)
	if errors.Is(err, backup.ErrNoSources) {
		_, _ = fmt.Fprintln(out, messages.BackupNothingToDo)
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, messages.BackupCreatedFmt, dir)
	return nil
}
