// Package aptpkg wraps the Debian package tooling klippctl drives.
package aptpkg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	debver "github.com/knqyf263/go-deb-version"

	"github.com/printbed/klippctl/internal/messages"
)

// Runner executes package manager commands, allowing tests to inject stubs.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")
	return cmd.CombinedOutput()
}

// NewRunner returns the Runner that shells out to apt and dpkg.
func NewRunner() Runner {
	return execRunner{}
}

var lookPathFunc = exec.LookPath

// Available reports whether apt-get can be found on PATH.
func Available() bool {
	_, err := lookPathFunc("apt-get")
	return err == nil
}

// indexMaxAge is how old the package index may grow before a status pass
// refreshes it. Matches the age apt's periodic update would tolerate.
const indexMaxAge = 6 * time.Hour

var aptListsDir = "/var/lib/apt/lists"

// IndexStale reports whether the package index needs a refresh before an
// upgradable listing can be trusted.
func IndexStale(now time.Time) bool {
	info, err := os.Stat(aptListsDir)
	if err != nil {
		return true
	}
	return now.Sub(info.ModTime()) > indexMaxAge
}

// UpdateIndex refreshes the package index.
func UpdateIndex(ctx context.Context, r Runner) error {
	out, err := r.Run(ctx, "sudo", "apt-get", "update", "--allow-releaseinfo-change")
	if err != nil {
		return fmt.Errorf(messages.AptUpdateFailedFmt, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Upgrade describes one package apt can move forward.
type Upgrade struct {
	Name      string
	Candidate string
	Installed string
}

// Upgradable lists the packages with a newer candidate version.
func Upgradable(ctx context.Context, r Runner) ([]Upgrade, error) {
	out, err := r.Run(ctx, "apt", "list", "--upgradable")
	if err != nil {
		return nil, fmt.Errorf(messages.AptListFailedFmt, strings.TrimSpace(string(out)), err)
	}
	return parseUpgradable(string(out)), nil
}

// parseUpgradable reads `apt list --upgradable` output. Lines look like
//
//	base-files/stable 12.4+deb12u7 arm64 [upgradable from: 12.4+deb12u6]
//
// The Listing header, warnings about the CLI interface, and entries whose
// candidate does not actually sort above the installed version are dropped.
func parseUpgradable(out string) []Upgrade {
	var ups []Upgrade
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Listing") ||
			strings.HasPrefix(line, "WARNING") || strings.HasPrefix(line, "N:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name, _, ok := strings.Cut(fields[0], "/")
		if !ok || name == "" {
			continue
		}
		up := Upgrade{Name: name, Candidate: fields[1]}
		if _, rest, found := strings.Cut(line, "[upgradable from: "); found {
			up.Installed = strings.TrimSuffix(strings.TrimSpace(rest), "]")
		}
		if up.Installed != "" && !candidateNewer(up.Candidate, up.Installed) {
			continue
		}
		ups = append(ups, up)
	}
	return ups
}

// candidateNewer compares two dpkg version strings. Unparseable versions
// are treated as newer so apt's own judgement wins.
func candidateNewer(candidate, installed string) bool {
	cand, err := debver.NewVersion(candidate)
	if err != nil {
		return true
	}
	inst, err := debver.NewVersion(installed)
	if err != nil {
		return true
	}
	return cand.GreaterThan(inst)
}

// InstallPackages installs the named packages without prompting.
func InstallPackages(ctx context.Context, r Runner, pkgs ...string) error {
	args := append([]string{"apt-get", "install", "-y"}, pkgs...)
	out, err := r.Run(ctx, "sudo", args...)
	if err != nil {
		return fmt.Errorf(messages.AptInstallFailedFmt, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// UpgradeAll applies every pending package upgrade.
func UpgradeAll(ctx context.Context, r Runner) error {
	out, err := r.Run(ctx, "sudo", "apt-get", "upgrade", "-y")
	if err != nil {
		return fmt.Errorf(messages.AptUpgradeFailedFmt, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// IsInstalled reports whether pkg is installed according to dpkg.
func IsInstalled(ctx context.Context, r Runner, pkg string) bool {
	out, err := r.Run(ctx, "dpkg-query", "-W", "-f=${Status}", pkg)
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "install ok installed")
}
