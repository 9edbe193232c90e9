// Package systemd controls the service units of the printer stack.
package systemd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/printbed/klippctl/internal/messages"
)

// Runner executes systemctl, allowing tests to inject stubs.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// NewRunner returns the Runner that shells out to systemctl.
func NewRunner() Runner {
	return execRunner{}
}

var unitDir = "/etc/systemd/system"

// UnitPath returns the absolute path of a unit file.
func UnitPath(unit string) string {
	return filepath.Join(unitDir, unit)
}

// InstanceUnits returns the installed unit files for a component, covering
// both the single-instance form (klipper.service) and suffixed instances
// (klipper-printer1.service), sorted by name. A missing unit directory
// yields an empty list.
func InstanceUnits(name string) ([]string, error) {
	re := regexp.MustCompile("^" + regexp.QuoteMeta(name) + `(-[0-9a-zA-Z]+)?\.service$`)
	entries, err := os.ReadDir(unitDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(messages.SystemdListUnitsFailedFmt, unitDir, err)
	}
	var units []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if re.MatchString(entry.Name()) {
			units = append(units, entry.Name())
		}
	}
	sort.Strings(units)
	return units, nil
}

// Start starts a unit.
func Start(ctx context.Context, r Runner, unit string) error {
	return action(ctx, r, "start", unit)
}

// Stop stops a unit.
func Stop(ctx context.Context, r Runner, unit string) error {
	return action(ctx, r, "stop", unit)
}

// Restart restarts a unit.
func Restart(ctx context.Context, r Runner, unit string) error {
	return action(ctx, r, "restart", unit)
}

// Enable enables a unit at boot.
func Enable(ctx context.Context, r Runner, unit string) error {
	return action(ctx, r, "enable", unit)
}

// Disable disables a unit at boot.
func Disable(ctx context.Context, r Runner, unit string) error {
	return action(ctx, r, "disable", unit)
}

func action(ctx context.Context, r Runner, verb, unit string) error {
	out, err := r.Run(ctx, "sudo", "systemctl", verb, unit)
	if err != nil {
		return fmt.Errorf(messages.SystemdActionFailedFmt, verb, unit, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// DaemonReload makes systemd pick up new or changed unit files.
func DaemonReload(ctx context.Context, r Runner) error {
	out, err := r.Run(ctx, "sudo", "systemctl", "daemon-reload")
	if err != nil {
		return fmt.Errorf(messages.SystemdDaemonReloadFailedFmt, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// ResetFailed clears failed state so removed units disappear from status.
func ResetFailed(ctx context.Context, r Runner) error {
	out, err := r.Run(ctx, "sudo", "systemctl", "reset-failed")
	if err != nil {
		return fmt.Errorf(messages.SystemdDaemonReloadFailedFmt, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// InstallUnit copies a staged unit file into the unit directory. klippctl
// runs unprivileged, so the copy goes through sudo.
func InstallUnit(ctx context.Context, r Runner, src, unit string) error {
	out, err := r.Run(ctx, "sudo", "cp", src, UnitPath(unit))
	if err != nil {
		return fmt.Errorf(messages.SystemdInstallUnitFailedFmt, unit, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// RemoveUnit deletes a unit file from the unit directory.
func RemoveUnit(ctx context.Context, r Runner, unit string) error {
	out, err := r.Run(ctx, "sudo", "rm", "-f", UnitPath(unit))
	if err != nil {
		return fmt.Errorf(messages.SystemdRemoveUnitFailedFmt, unit, strings.TrimSpace(string(out)), err)
	}
	return nil
}
