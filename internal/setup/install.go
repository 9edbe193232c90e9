package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/printbed/klippctl/internal/aptpkg"
	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/config"
	"github.com/printbed/klippctl/internal/fsutil"
	"github.com/printbed/klippctl/internal/gitrepo"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/systemd"
	"github.com/printbed/klippctl/internal/unitfiles"
)

// printerDataSubdirs are created alongside the first git component so
// services find their config, log, and socket locations.
var printerDataSubdirs = []string{"config", "logs", "comms", "systemd"}

// Install sets up a component that is not installed yet. Installing over an
// incomplete checkout repairs it; installing an installed component is a
// no-op.
func (e *Engine) Install(ctx context.Context, d component.Descriptor) ([]Result, error) {
	var results []Result

	if d.Kind == component.KindSystem {
		return nil, errors.New(messages.SetupCannotManageSystem)
	}

	_, _ = fmt.Fprintf(e.out, messages.SetupInstallingFmt, d.DisplayName)

	if e.detectState(d) == component.Installed {
		e.warn(&results, d.DisplayName, fmt.Sprintf(messages.SetupAlreadyInstalledFmt, d.DisplayName), "")
		return results, nil
	}

	var err error
	switch d.Kind {
	case component.KindGitRepo:
		err = e.installGit(ctx, d, &results)
	case component.KindWebUI:
		err = e.installWebUI(ctx, d, &results)
	}
	if err != nil {
		return results, err
	}

	_, _ = fmt.Fprintf(e.out, messages.SetupDoneFmt, d.DisplayName)
	return results, nil
}

func (e *Engine) installGit(ctx context.Context, d component.Descriptor, results *[]Result) error {
	if err := e.installAptDeps(ctx, d, results); err != nil {
		return err
	}

	url := component.RepoURL(d, e.settings)
	branch := component.Branch(d, e.settings)
	if !gitrepo.IsRepo(d.Dir) {
		if err := gitrepo.Clone(ctx, e.git, url, branch, d.Dir); err != nil {
			e.fail(results, messages.SetupStepClone, err, messages.SetupRecommendCheckLog)
			return err
		}
	}
	e.ok(results, messages.SetupStepClone, fmt.Sprintf("%s (%s)", url, branch))

	if err := e.ensureVenv(ctx, d, results); err != nil {
		return err
	}

	if d.Name == "klipper" {
		for _, inst := range e.instanceUnits(d) {
			for _, sub := range printerDataSubdirs {
				if err := os.MkdirAll(filepath.Join(inst.dataDir, sub), 0o755); err != nil {
					e.fail(results, messages.SetupStepServices, err, "")
					return err
				}
			}
		}
	}

	// Crowsnest ships its own installer which lays down the service.
	if d.Name == "crowsnest" {
		if out, err := e.run.Run(ctx, d.Dir, "sudo", "make", "install"); err != nil {
			wrapped := fmt.Errorf(messages.SetupMakeInstallFailedFmt, d.Dir, string(out), err)
			e.fail(results, messages.SetupStepServices, wrapped, messages.SetupRecommendCheckLog)
			return wrapped
		}
		e.ok(results, messages.SetupStepServices, d.ServiceName+".service")
		return nil
	}

	return e.installService(ctx, d, results)
}

func (e *Engine) installWebUI(ctx context.Context, d component.Descriptor, results *[]Result) error {
	if err := e.installAptDeps(ctx, d, results); err != nil {
		return err
	}
	tag, err := e.deployRelease(ctx, d, results, false)
	if err != nil {
		return err
	}
	e.ok(results, messages.SetupStepDeploy, tag)
	return nil
}

func (e *Engine) installAptDeps(ctx context.Context, d component.Descriptor, results *[]Result) error {
	deps := aptDeps[d.Name]
	if len(deps) == 0 {
		return nil
	}
	if err := aptpkg.InstallPackages(ctx, e.apt, deps...); err != nil {
		e.fail(results, messages.SetupStepAptDeps, err, messages.SetupRecommendCheckLog)
		return err
	}
	e.ok(results, messages.SetupStepAptDeps, fmt.Sprintf("%d packages", len(deps)))
	return nil
}

// ensureVenv creates the component's virtualenv when missing and installs
// its pip requirements. pip itself is upgraded first; requirement sets
// routinely assume a recent pip.
func (e *Engine) ensureVenv(ctx context.Context, d component.Descriptor, results *[]Result) error {
	if d.VenvDir == "" {
		return nil
	}

	if _, err := os.Stat(d.VenvDir); err != nil {
		if out, venvErr := e.run.Run(ctx, "", "python3", "-m", "venv", d.VenvDir); venvErr != nil {
			wrapped := fmt.Errorf(messages.SetupVenvCreateFailedFmt, d.VenvDir, string(out), venvErr)
			e.fail(results, messages.SetupStepVirtualenv, wrapped, messages.SetupRecommendCheckLog)
			return wrapped
		}
	}

	pip := filepath.Join(d.VenvDir, "bin", "pip")
	if out, err := e.run.Run(ctx, "", pip, "install", "-U", "pip"); err != nil {
		wrapped := fmt.Errorf(messages.SetupPipInstallFailedFmt, d.DisplayName, string(out), err)
		e.fail(results, messages.SetupStepVirtualenv, wrapped, messages.SetupRecommendCheckLog)
		return wrapped
	}

	requirements, ok := requirementsFile[d.Name]
	if ok {
		path := filepath.Join(d.Dir, filepath.FromSlash(requirements))
		if out, err := e.run.Run(ctx, "", pip, "install", "-r", path); err != nil {
			wrapped := fmt.Errorf(messages.SetupPipInstallFailedFmt, d.DisplayName, string(out), err)
			e.fail(results, messages.SetupStepVirtualenv, wrapped, messages.SetupRecommendCheckLog)
			return wrapped
		}
	}

	e.ok(results, messages.SetupStepVirtualenv, d.VenvDir)
	return nil
}

// instanceUnit names one systemd unit to install and the printer data
// directory its service points at.
type instanceUnit struct {
	name    string
	dataDir string
}

// instanceUnits expands d into the units an install creates. Multi-instance
// components get one suffixed unit per configured instance; everything else
// (and an empty instance list) gets the bare unit against the default
// printer data directory.
func (e *Engine) instanceUnits(d component.Descriptor) []instanceUnit {
	if !d.MultiInstance || len(e.settings.General.Instances) == 0 {
		return []instanceUnit{{name: d.ServiceName + ".service", dataDir: e.paths.PrinterData}}
	}
	units := make([]instanceUnit, 0, len(e.settings.General.Instances))
	for _, instance := range e.settings.General.Instances {
		units = append(units, instanceUnit{
			name:    d.ServiceName + "-" + instance + ".service",
			dataDir: config.InstanceDataDir(e.paths.Home, instance),
		})
	}
	return units
}

// installService renders the unit files, stages them in the state directory,
// and copies them into the systemd unit directory before enabling them.
func (e *Engine) installService(ctx context.Context, d component.Descriptor, results *[]Result) error {
	if d.ServiceName == "" || !unitfiles.Has(d.Name) {
		return nil
	}

	units := e.instanceUnits(d)
	for _, inst := range units {
		content, err := unitfiles.Render(d.Name, unitfiles.Data{
			User:        e.username(),
			Dir:         d.Dir,
			VenvDir:     d.VenvDir,
			PrinterData: inst.dataDir,
		})
		if err != nil {
			e.fail(results, messages.SetupStepServices, err, "")
			return err
		}

		staged := filepath.Join(e.paths.StateDir, inst.name)
		if err := fsutil.WriteFileAtomic(staged, content, 0o644); err != nil {
			wrapped := fmt.Errorf(messages.SetupServiceWriteFailedFmt, staged, err)
			e.fail(results, messages.SetupStepServices, wrapped, "")
			return wrapped
		}
		if err := systemd.InstallUnit(ctx, e.sysd, staged, inst.name); err != nil {
			e.fail(results, messages.SetupStepServices, err, messages.SetupRecommendCheckLog)
			return err
		}
	}

	if err := systemd.DaemonReload(ctx, e.sysd); err != nil {
		e.fail(results, messages.SetupStepServices, err, messages.SetupRecommendCheckLog)
		return err
	}

	names := make([]string, 0, len(units))
	for _, inst := range units {
		if err := systemd.Enable(ctx, e.sysd, inst.name); err != nil {
			e.fail(results, messages.SetupStepServices, err, messages.SetupRecommendCheckLog)
			return err
		}
		if err := systemd.Start(ctx, e.sysd, inst.name); err != nil {
			e.fail(results, messages.SetupStepServices, err, messages.SetupRecommendCheckLog)
			return err
		}
		names = append(names, inst.name)
	}

	e.ok(results, messages.SetupStepServices, strings.Join(names, ", "))
	return nil
}
