package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/setup"
)

func newRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   messages.RemoveUse,
		Short: messages.RemoveShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New(messages.RemoveNoSelectionHint)
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
			confirm := stdinConfirm(cmd, yes)
			out := cmd.OutOrStdout()
			var approved []component.Descriptor
			for _, d := range targets {
				proceed, err := confirm(fmt.Sprintf(messages.MenuRemoveConfirmFmt, d.DisplayName), false)
				if err != nil {
					return err
				}
				if !proceed {
					_, _ = fmt.Fprintf(out, messages.RemoveSkippedFmt, d.DisplayName)
					continue
				}
				approved = append(approved, d)
			}
			if len(approved) == 0 {
				return nil
			}
			return runSetupFlow(cmd, app, confirm, 0, approved, (*setup.Engine).Remove)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, messages.UpdateFlagYes)
	return cmd
}
