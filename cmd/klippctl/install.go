package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/setup"
)

func newInstallCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New(messages.InstallNoSelectionHint)
			}
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()
			targets, err := resolveComponents(app.registry(), args)
			if err != nil {
				return err
			}
			return runSetupFlow(cmd, app, stdinConfirm(cmd, yes), 0, targets, (*setup.Engine).Install)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, messages.UpdateFlagYes)
	return cmd
}
