package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/printbed/klippctl/internal/aptpkg"
	"github.com/printbed/klippctl/internal/backup"
	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/gitrepo"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/systemd"
)

// Update brings an installed component to the newest available version.
func (e *Engine) Update(ctx context.Context, d component.Descriptor) ([]Result, error) {
	var results []Result

	_, _ = fmt.Fprintf(e.out, messages.SetupUpdatingFmt, d.DisplayName)

	if d.Kind == component.KindSystem {
		if err := e.updateSystem(ctx, &results); err != nil {
			return results, err
		}
		_, _ = fmt.Fprintf(e.out, messages.SetupDoneFmt, d.DisplayName)
		return results, nil
	}

	switch e.detectState(d) {
	case component.NotInstalled:
		e.warn(&results, d.DisplayName, fmt.Sprintf(messages.SetupNotInstalledFmt, d.DisplayName), "")
		return results, nil
	case component.Incomplete:
		e.warn(&results, d.DisplayName, fmt.Sprintf(messages.SetupIncompleteFmt, d.DisplayName), messages.SetupRecommendReinstall)
		return results, nil
	}

	if err := e.maybeBackup(d, &results); err != nil {
		return results, err
	}

	var err error
	switch d.Kind {
	case component.KindGitRepo:
		err = e.updateGit(ctx, d, &results)
	case component.KindWebUI:
		err = e.updateWebUI(ctx, d, &results)
	}
	if err != nil {
		return results, err
	}

	_, _ = fmt.Fprintf(e.out, messages.SetupDoneFmt, d.DisplayName)
	return results, nil
}

// maybeBackup snapshots the component before an update when the setting
// asks for it. A backup failure aborts the update; the user asked for a
// safety net and there is none.
func (e *Engine) maybeBackup(d component.Descriptor, results *[]Result) error {
	if e.settings == nil || !e.settings.General.BackupBeforeUpdate {
		return nil
	}

	var sources []string
	switch d.Kind {
	case component.KindGitRepo:
		sources = []string{d.Dir}
		if d.VenvDir != "" {
			sources = append(sources, d.VenvDir)
		}
	case component.KindWebUI:
		sources = []string{d.Dir}
	}

	dir, err := e.backups.Snapshot(d.Name, sources)
	if err != nil {
		if errors.Is(err, backup.ErrNoSources) {
			e.warn(results, messages.SetupStepBackup, messages.BackupNothingToDo, "")
			return nil
		}
		wrapped := fmt.Errorf(messages.SetupBackupFailedFmt, err)
		e.fail(results, messages.SetupStepBackup, wrapped, "")
		return wrapped
	}
	e.ok(results, messages.SetupStepBackup, dir)
	return nil
}

func (e *Engine) updateGit(ctx context.Context, d component.Descriptor, results *[]Result) error {
	head, err := gitrepo.Head(ctx, e.git, d.Dir)
	if err != nil {
		e.fail(results, messages.SetupStepPull, err, messages.SetupRecommendCheckLog)
		return err
	}

	units, err := e.stopServices(ctx, d, results)
	if err != nil {
		return err
	}

	if err := gitrepo.Pull(ctx, e.git, d.Dir); err != nil {
		e.rollbackGit(ctx, d, head, results)
		e.startServices(ctx, units, results)
		e.fail(results, messages.SetupStepPull, err, messages.SetupRecommendCheckLog)
		return err
	}

	if err := e.ensureVenv(ctx, d, results); err != nil {
		e.rollbackGit(ctx, d, head, results)
		e.startServices(ctx, units, results)
		return err
	}

	e.startServices(ctx, units, results)

	if described, descErr := gitrepo.Describe(ctx, e.git, d.Dir, "HEAD"); descErr == nil {
		e.ok(results, messages.SetupStepPull, described)
	} else {
		e.ok(results, messages.SetupStepPull, "updated")
	}
	return nil
}

func (e *Engine) updateWebUI(ctx context.Context, d component.Descriptor, results *[]Result) error {
	tag, err := e.deployRelease(ctx, d, results, true)
	if err != nil {
		return err
	}
	e.ok(results, messages.SetupStepDeploy, tag)
	return nil
}

// updateSystem refreshes the package index and upgrades everything apt
// reports as upgradable.
func (e *Engine) updateSystem(ctx context.Context, results *[]Result) error {
	if err := aptpkg.UpdateIndex(ctx, e.apt); err != nil {
		e.fail(results, messages.SetupStepSystemUpgrade, err, messages.SetupRecommendCheckLog)
		return err
	}
	if err := aptpkg.UpgradeAll(ctx, e.apt); err != nil {
		e.fail(results, messages.SetupStepSystemUpgrade, err, messages.SetupRecommendCheckLog)
		return err
	}
	e.ok(results, messages.SetupStepSystemUpgrade, "all packages upgraded")
	return nil
}

func (e *Engine) stopServices(ctx context.Context, d component.Descriptor, results *[]Result) ([]string, error) {
	if d.ServiceName == "" {
		return nil, nil
	}
	units, err := e.unitsFor(d.ServiceName)
	if err != nil {
		e.fail(results, messages.SetupStepStop, err, "")
		return nil, err
	}
	for _, unit := range units {
		if err := systemd.Stop(ctx, e.sysd, unit); err != nil {
			e.fail(results, messages.SetupStepStop, err, messages.SetupRecommendCheckLog)
			return nil, err
		}
	}
	if len(units) > 0 {
		e.ok(results, messages.SetupStepStop, fmt.Sprintf("%d stopped", len(units)))
	}
	return units, nil
}

func (e *Engine) startServices(ctx context.Context, units []string, results *[]Result) {
	started := 0
	for _, unit := range units {
		if err := systemd.Start(ctx, e.sysd, unit); err != nil {
			e.warn(results, messages.SetupStepStart, err.Error(), messages.SetupRecommendCheckLog)
			continue
		}
		started++
	}
	if started > 0 {
		e.ok(results, messages.SetupStepStart, fmt.Sprintf("%d started", started))
	}
}

// rollbackGit restores the checkout to the commit recorded before the
// update began.
func (e *Engine) rollbackGit(ctx context.Context, d component.Descriptor, head string, results *[]Result) {
	_, _ = fmt.Fprintf(e.out, messages.SetupRollbackFmt, d.DisplayName, shortCommit(head))
	if err := gitrepo.ResetHard(ctx, e.git, d.Dir, head); err != nil {
		wrapped := fmt.Errorf(messages.SetupRollbackFailedFmt, d.DisplayName, shortCommit(head), err)
		e.fail(results, messages.SetupStepPull, wrapped, messages.SetupRecommendReinstall)
		return
	}
	e.warn(results, messages.SetupStepPull, fmt.Sprintf("rolled back to %s", shortCommit(head)), "")
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
