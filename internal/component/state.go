package component

import (
	"os"

	"github.com/printbed/klippctl/internal/systemd"
)

// InstallState describes how completely a component is present on disk.
type InstallState string

const (
	// Installed means every expected artifact exists.
	Installed InstallState = "installed"
	// Incomplete means some artifacts exist but others are missing, which
	// usually points at an interrupted install or removal.
	Incomplete InstallState = "incomplete"
	// NotInstalled means no artifact exists.
	NotInstalled InstallState = "not_installed"
)

var (
	statFunc      = os.Stat
	listUnitsFunc = systemd.InstanceUnits
)

// DetectInstallState inspects the filesystem artifacts of a component.
// Git components expect their checkout, virtualenv (when they use one),
// and at least one service unit; web interfaces expect the deploy
// directory and its version marker. The system pseudo component is
// always installed.
func DetectInstallState(d Descriptor) InstallState {
	if d.Kind == KindSystem {
		return Installed
	}

	var present, total int
	check := func(exists bool) {
		total++
		if exists {
			present++
		}
	}

	check(dirExists(d.Dir))
	switch d.Kind {
	case KindGitRepo:
		if d.VenvDir != "" {
			check(dirExists(d.VenvDir))
		}
		if d.ServiceName != "" {
			units, err := listUnitsFunc(d.ServiceName)
			check(err == nil && len(units) > 0)
		}
	case KindWebUI:
		check(fileExists(d.VersionFile))
	}

	switch present {
	case 0:
		return NotInstalled
	case total:
		return Installed
	default:
		return Incomplete
	}
}

func dirExists(path string) bool {
	info, err := statFunc(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := statFunc(path)
	return err == nil && !info.IsDir()
}
