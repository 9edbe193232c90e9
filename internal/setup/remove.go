package setup

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/systemd"
)

// Remove deletes a component's services, checkout, and virtualenv. Printer
// configuration and logs under printer_data stay on disk.
func (e *Engine) Remove(ctx context.Context, d component.Descriptor) ([]Result, error) {
	var results []Result

	if d.Kind == component.KindSystem {
		return results, errors.New(messages.SetupCannotManageSystem)
	}

	_, _ = fmt.Fprintf(e.out, messages.SetupRemovingFmt, d.DisplayName)

	if e.detectState(d) == component.NotInstalled {
		e.warn(&results, d.DisplayName, fmt.Sprintf(messages.SetupNotInstalledFmt, d.DisplayName), "")
		return results, nil
	}

	if err := e.removeServices(ctx, d, &results); err != nil {
		return results, err
	}
	if err := e.removePaths(d, &results); err != nil {
		return results, err
	}

	_, _ = fmt.Fprintf(e.out, messages.SetupDoneFmt, d.DisplayName)
	return results, nil
}

// removeServices stops, disables, and deletes every instance unit of the
// component. Stop and disable failures only warn so a half-broken install
// can still be torn down; failing to delete the unit file is fatal because
// systemd would keep resurrecting the service.
func (e *Engine) removeServices(ctx context.Context, d component.Descriptor, results *[]Result) error {
	if d.ServiceName == "" {
		return nil
	}
	units, err := e.unitsFor(d.ServiceName)
	if err != nil {
		e.fail(results, messages.SetupStepServices, err, "")
		return err
	}
	if len(units) == 0 {
		return nil
	}
	for _, unit := range units {
		if err := systemd.Stop(ctx, e.sysd, unit); err != nil {
			e.warn(results, messages.SetupStepServices, err.Error(), "")
		}
		if err := systemd.Disable(ctx, e.sysd, unit); err != nil {
			e.warn(results, messages.SetupStepServices, err.Error(), "")
		}
		if err := systemd.RemoveUnit(ctx, e.sysd, unit); err != nil {
			e.fail(results, messages.SetupStepServices, err, messages.SetupRecommendCheckLog)
			return err
		}
	}
	if err := systemd.DaemonReload(ctx, e.sysd); err != nil {
		e.warn(results, messages.SetupStepServices, err.Error(), "")
	}
	if err := systemd.ResetFailed(ctx, e.sysd); err != nil {
		e.warn(results, messages.SetupStepServices, err.Error(), "")
	}
	e.ok(results, messages.SetupStepServices, fmt.Sprintf("%d removed", len(units)))
	return nil
}

func (e *Engine) removePaths(d component.Descriptor, results *[]Result) error {
	paths := []string{d.Dir}
	if d.VenvDir != "" {
		paths = append(paths, d.VenvDir)
	}
	for _, path := range paths {
		if err := os.RemoveAll(path); err != nil {
			wrapped := fmt.Errorf(messages.SetupRemovePathFailedFmt, path, err)
			e.fail(results, d.DisplayName, wrapped, "")
			return wrapped
		}
	}
	e.ok(results, d.DisplayName, "files removed")
	return nil
}
