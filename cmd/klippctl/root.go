package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/printbed/klippctl/internal/menu"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/terminal"
	"github.com/printbed/klippctl/internal/updatewarn"
)

var warnIfOutdatedFunc = updatewarn.WarnIfOutdated

var isTerminalFunc = terminal.IsInteractive

// newRootCmd builds the klippctl command tree. Bare invocation on a terminal
// opens the interactive menu; without one it points at the subcommands.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminalFunc() {
				return errors.New(messages.MenuRequiresTerminal)
			}
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()
			warnIfOutdatedFunc(cmd.Context(), Version, cmd.ErrOrStderr())
			return runMenu(cmd, app, menu.NewHuhUI())
		},
	}
	cmd.AddCommand(
		newStatusCmd(),
		newUpdateCmd(),
		newInstallCmd(),
		newRemoveCmd(),
		newBackupCmd(),
		newVersionCmd(),
	)
	return cmd
}
