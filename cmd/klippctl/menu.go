package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/config"
	"github.com/printbed/klippctl/internal/menu"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/setup"
)

var installStateFunc = component.DetectInstallState

// runMenu drives the interactive main menu until the user quits. A failed
// flow is reported and the menu keeps running; Ctrl+C anywhere exits.
func runMenu(cmd *cobra.Command, app *appEnv, ui menu.UI) error {
	out := cmd.OutOrStdout()
	for {
		choice := messages.MenuOptionStatus
		err := ui.Select(messages.MenuTitle, []string{
			messages.MenuOptionStatus,
			messages.MenuOptionUpdate,
			messages.MenuOptionInstall,
			messages.MenuOptionRemove,
			messages.MenuOptionBackup,
			messages.MenuOptionSettings,
			messages.MenuOptionQuit,
		}, &choice)
		if err != nil {
			if menu.IsExit(err) {
				_, _ = fmt.Fprintln(out, messages.MenuGoodbye)
				return nil
			}
			return err
		}

		var flowErr error
		switch choice {
		case messages.MenuOptionStatus:
			report := runStatusPass(cmd, app)
			renderReport(out, report)
			printUpdateSummary(out, report)
		case messages.MenuOptionUpdate:
			flowErr = menuUpdate(cmd, app, ui)
		case messages.MenuOptionInstall:
			flowErr = menuInstall(cmd, app, ui)
		case messages.MenuOptionRemove:
			flowErr = menuRemove(cmd, app, ui)
		case messages.MenuOptionBackup:
			flowErr = runBackup(cmd, app)
		case messages.MenuOptionSettings:
			flowErr = menuSettings(cmd, app, ui)
		case messages.MenuOptionQuit:
			_, _ = fmt.Fprintln(out, messages.MenuGoodbye)
			return nil
		}

		if flowErr == nil {
			continue
		}
		if errors.Is(flowErr, menu.ErrCancelled) {
			_, _ = fmt.Fprintln(out, messages.MenuGoodbye)
			return nil
		}
		if errors.Is(flowErr, menu.ErrBack) {
			continue
		}
		var silent *SilentExitError
		if errors.As(flowErr, &silent) {
			// The failure was already printed step by step.
			continue
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("%v", flowErr))
	}
}

// menuUpdate shows the status table and offers exactly the updates the pass
// found, all preselected.
func menuUpdate(cmd *cobra.Command, app *appEnv, ui menu.UI) error {
	out := cmd.OutOrStdout()
	report := runStatusPass(cmd, app)
	renderReport(out, report)
	offered := offeredComponents(report)
	if len(offered) == 0 {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, messages.UpdateNothingTodo)
		return nil
	}
	options := make([]string, len(offered))
	for i, d := range offered {
		options[i] = d.DisplayName
	}
	selected := append([]string(nil), options...)
	if err := ui.MultiSelect(messages.MenuUpdateSelectTitle, options, &selected); err != nil {
		return err
	}
	targets := pickByDisplayName(offered, selected)
	if len(targets) == 0 {
		return nil
	}
	return runSetupFlow(cmd, app, huhConfirm(ui), 0, targets, (*setup.Engine).Update)
}

// menuInstall offers the components that are not fully installed.
func menuInstall(cmd *cobra.Command, app *appEnv, ui menu.UI) error {
	var candidates []component.Descriptor
	var options []string
	for _, d := range app.registry() {
		if d.Kind == component.KindSystem {
			continue
		}
		if installStateFunc(d) == component.Installed {
			continue
		}
		candidates = append(candidates, d)
		options = append(options, d.DisplayName)
	}
	if len(options) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), messages.MenuNothingToInstall)
		return nil
	}
	choice := options[0]
	if err := ui.Select(messages.MenuInstallSelectTitle, options, &choice); err != nil {
		return err
	}
	targets := pickByDisplayName(candidates, []string{choice})
	return runSetupFlow(cmd, app, huhConfirm(ui), 0, targets, (*setup.Engine).Install)
}

// menuRemove offers the installed components and confirms before deleting.
func menuRemove(cmd *cobra.Command, app *appEnv, ui menu.UI) error {
	out := cmd.OutOrStdout()
	var candidates []component.Descriptor
	var options []string
	for _, d := range app.registry() {
		if d.Kind == component.KindSystem {
			continue
		}
		if installStateFunc(d) == component.NotInstalled {
			continue
		}
		candidates = append(candidates, d)
		options = append(options, d.DisplayName)
	}
	if len(options) == 0 {
		_, _ = fmt.Fprintln(out, messages.MenuNothingToRemove)
		return nil
	}
	choice := options[0]
	if err := ui.Select(messages.MenuRemoveSelectTitle, options, &choice); err != nil {
		return err
	}
	proceed := false
	if err := ui.Confirm(fmt.Sprintf(messages.MenuRemoveConfirmFmt, choice), &proceed); err != nil {
		return err
	}
	if !proceed {
		_, _ = fmt.Fprintf(out, messages.RemoveSkippedFmt, choice)
		return nil
	}
	targets := pickByDisplayName(candidates, []string{choice})
	return runSetupFlow(cmd, app, huhConfirm(ui), 0, targets, (*setup.Engine).Remove)
}

// menuSettings edits the settings file one field at a time until the user
// backs out.
func menuSettings(cmd *cobra.Command, app *appEnv, ui menu.UI) error {
	out := cmd.OutOrStdout()
	for {
		choice := messages.MenuSettingKlipperRepo
		err := ui.Select(messages.MenuSettingsSelectTitle, []string{
			messages.MenuSettingKlipperRepo,
			messages.MenuSettingKlipperBranch,
			messages.MenuSettingMoonrakerRepo,
			messages.MenuSettingMoonrakerBranch,
			messages.MenuSettingBackupToggle,
		}, &choice)
		if err != nil {
			if errors.Is(err, menu.ErrBack) {
				return nil
			}
			return err
		}

		var changed bool
		var editErr error
		switch choice {
		case messages.MenuSettingKlipperRepo:
			changed, editErr = editSetting(ui, choice, &app.settings.Klipper.RepoURL)
		case messages.MenuSettingKlipperBranch:
			changed, editErr = editSetting(ui, choice, &app.settings.Klipper.Branch)
		case messages.MenuSettingMoonrakerRepo:
			changed, editErr = editSetting(ui, choice, &app.settings.Moonraker.RepoURL)
		case messages.MenuSettingMoonrakerBranch:
			changed, editErr = editSetting(ui, choice, &app.settings.Moonraker.Branch)
		case messages.MenuSettingBackupToggle:
			changed, editErr = editToggle(ui, choice, &app.settings.General.BackupBeforeUpdate)
		}
		if editErr != nil {
			if errors.Is(editErr, menu.ErrBack) {
				continue
			}
			return editErr
		}
		if !changed {
			continue
		}
		if err := config.Save(app.paths.SettingsPath, app.settings); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, messages.MenuSettingSavedFmt, choice)
	}
}

// editSetting prompts for a new value. Blank input keeps the old value.
func editSetting(ui menu.UI, title string, target *string) (bool, error) {
	value := *target
	if err := ui.Input(title, &value); err != nil {
		return false, err
	}
	value = strings.TrimSpace(value)
	if value == "" || value == *target {
		return false, nil
	}
	*target = value
	return true, nil
}

// editToggle flips a boolean setting.
func editToggle(ui menu.UI, title string, target *bool) (bool, error) {
	value := *target
	if err := ui.Confirm(title, &value); err != nil {
		return false, err
	}
	if value == *target {
		return false, nil
	}
	*target = value
	return true, nil
}

// huhConfirm answers flow prompts with an interactive confirm. Backing out
// keeps the prompt's default.
func huhConfirm(ui menu.UI) confirmFunc {
	return func(title string, def bool) (bool, error) {
		value := def
		if err := ui.Confirm(title, &value); err != nil {
			if errors.Is(err, menu.ErrBack) {
				return def, nil
			}
			return def, err
		}
		return value, nil
	}
}

// pickByDisplayName filters descriptors to the chosen display names,
// keeping registry order.
func pickByDisplayName(reg []component.Descriptor, chosen []string) []component.Descriptor {
	want := map[string]bool{}
	for _, name := range chosen {
		want[name] = true
	}
	var out []component.Descriptor
	for _, d := range reg {
		if want[d.DisplayName] {
			out = append(out, d)
		}
	}
	return out
}
