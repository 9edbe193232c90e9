package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/diffview"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/setup"
	"github.com/printbed/klippctl/internal/status"
)

func newUpdateCmd() *cobra.Command {
	var all bool
	var yes bool
	var diffLines int
	cmd := &cobra.Command{
		Use:   messages.UpdateUse,
		Short: messages.UpdateShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New(messages.UpdateAllWithNames)
			}
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()
			out := cmd.OutOrStdout()
			report := runStatusPass(cmd, app)
			renderReport(out, report)
			_, _ = fmt.Fprintln(out)
			if !all && len(args) == 0 {
				_, _ = fmt.Fprintln(out, messages.UpdateNoSelectionHint)
				return nil
			}
			targets, err := updateTargets(out, report, args, all)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				_, _ = fmt.Fprintln(out, messages.UpdateNothingTodo)
				return nil
			}
			return runSetupFlow(cmd, app, stdinConfirm(cmd, yes), diffLines, targets, (*setup.Engine).Update)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, messages.UpdateFlagAll)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, messages.UpdateFlagYes)
	cmd.Flags().IntVar(&diffLines, "diff-lines", diffview.DefaultMaxLines, messages.UpdateFlagDiffLines)
	return cmd
}

// updateTargets picks the components to update. Only updates the pass
// offered run; named components without one are skipped with a notice.
func updateTargets(out io.Writer, report status.Report, names []string, all bool) ([]component.Descriptor, error) {
	if all {
		return offeredComponents(report), nil
	}
	reg := make([]component.Descriptor, 0, len(report.Results))
	for _, res := range report.Results {
		reg = append(reg, res.Component)
	}
	requested, err := resolveComponents(reg, names)
	if err != nil {
		return nil, err
	}
	var targets []component.Descriptor
	for _, d := range requested {
		if !report.Actions.Contains(d.Action) {
			_, _ = fmt.Fprintf(out, messages.UpdateComponentCurrentFmt, d.DisplayName)
			continue
		}
		targets = append(targets, d)
	}
	return targets, nil
}

// offeredComponents returns the descriptors whose action the pass offered,
// in registry order.
func offeredComponents(report status.Report) []component.Descriptor {
	var out []component.Descriptor
	for _, res := range report.Results {
		if report.Actions.Contains(res.Component.Action) {
			out = append(out, res.Component)
		}
	}
	return out
}
