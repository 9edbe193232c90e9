package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/config"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/spinner"
	"github.com/printbed/klippctl/internal/status"
)

// versionCellWidth is the visible width of every version cell in the table.
const versionCellWidth = 12

var newCheckerFunc = func() *status.Checker { return status.NewChecker() }

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.StatusUse,
		Short: messages.StatusShort,
		Long:  messages.StatusLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()
			report := runStatusPass(cmd, app)
			out := cmd.OutOrStdout()
			renderReport(out, report)
			printUpdateSummary(out, report)
			return nil
		},
	}
}

// runStatusPass checks every component, animating a spinner while the
// remote lookups run.
func runStatusPass(cmd *cobra.Command, app *appEnv) status.Report {
	if config.Offline() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), messages.StatusOfflineSkipRemote)
	}
	reg := app.registry()
	var report status.Report
	label := fmt.Sprintf(messages.StatusCheckingFmt, len(reg))
	_ = spinner.Run(cmd.ErrOrStderr(), label, func() error {
		report = newCheckerFunc().Run(cmd.Context(), reg)
		return nil
	})
	return report
}

// renderReport prints the component table in registry order.
func renderReport(out io.Writer, report status.Report) {
	nameWidth := len(messages.StatusHeaderComponent)
	for _, res := range report.Results {
		if n := len(res.Component.DisplayName); n > nameWidth {
			nameWidth = n
		}
	}
	_, _ = fmt.Fprintf(out, "%s  %s  %s\n",
		color.CyanString("%-*s", nameWidth, messages.StatusHeaderComponent),
		color.CyanString("%*s", versionCellWidth, messages.StatusHeaderInstalled),
		color.CyanString("%*s", versionCellWidth, messages.StatusHeaderLatest))
	for _, res := range report.Results {
		local, remote := statusCells(res)
		_, _ = fmt.Fprintf(out, "%-*s  %s  %s\n", nameWidth, res.Component.DisplayName, local, remote)
	}
}

// printUpdateSummary lists the components whose update the pass offers.
func printUpdateSummary(out io.Writer, report status.Report) {
	_, _ = fmt.Fprintln(out)
	if report.Actions.Len() == 0 {
		_, _ = fmt.Fprintln(out, messages.StatusAllUpToDate)
		return
	}
	_, _ = fmt.Fprintf(out, messages.StatusUpdatesHeaderFmt, strings.Join(updateNames(report), ", "))
}

// updateNames returns display names for the offered actions in registry order.
func updateNames(report status.Report) []string {
	var names []string
	for _, res := range report.Results {
		if report.Actions.Contains(res.Component.Action) && res.Status == status.UpdateAvailable {
			names = append(names, res.Component.DisplayName)
		}
	}
	return names
}

// statusCells renders both version cells of a result, colored by status.
func statusCells(res status.Result) (string, string) {
	if res.Component.Kind == component.KindSystem {
		return systemCells(res)
	}
	switch res.Status {
	case status.UpToDate:
		return formatVersionCell(res.Pair.Local, color.GreenString),
			formatVersionCell(res.Pair.Remote, color.GreenString)
	case status.UpdateAvailable:
		return formatVersionCell(res.Pair.Local, color.YellowString),
			formatVersionCell(res.Pair.Remote, color.GreenString)
	default:
		return formatVersionCell(res.Pair.Local, color.RedString),
			formatVersionCell(res.Pair.Remote, color.RedString)
	}
}

// systemCells renders the package manager row. It has no version strings;
// the cells carry the pending upgrade count instead.
func systemCells(res status.Result) (string, string) {
	switch res.Status {
	case status.UpToDate:
		return formatVersionCell(messages.StatusSystemCurrent, color.GreenString),
			formatVersionCell(messages.StatusSystemCurrent, color.GreenString)
	case status.UpdateAvailable:
		pending := fmt.Sprintf(messages.StatusSystemPendingFmt, res.Upgrades)
		return formatVersionCell(pending, color.YellowString),
			formatVersionCell(messages.StatusSystemUpgrade, color.GreenString)
	default:
		return formatVersionCell("", color.RedString),
			formatVersionCell("", color.RedString)
	}
}

// formatVersionCell pads or truncates value to exactly versionCellWidth
// visible characters, right aligned, then applies colorize. Padding happens
// before coloring so escape codes never count toward the width. An empty
// value renders as the red placeholder.
func formatVersionCell(value string, colorize func(format string, a ...any) string) string {
	if value == "" {
		value = messages.StatusVersionPlaceholder
		colorize = color.RedString
	}
	if runes := []rune(value); len(runes) > versionCellWidth {
		value = string(runes[:versionCellWidth])
	}
	if n := utf8.RuneCountInString(value); n < versionCellWidth {
		value = strings.Repeat(" ", versionCellWidth-n) + value
	}
	return colorize("%s", value)
}
