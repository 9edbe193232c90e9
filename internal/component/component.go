// Package component defines the fixed registry of printer stack components.
package component

import (
	"path/filepath"

	"github.com/printbed/klippctl/internal/config"
)

// Kind classifies how a component's versions are read and how it updates.
type Kind string

const (
	// KindGitRepo marks components managed as git checkouts.
	KindGitRepo Kind = "git_repo"
	// KindWebUI marks components deployed from release archives.
	KindWebUI Kind = "web_ui"
	// KindSystem marks the package manager pseudo component.
	KindSystem Kind = "system"
)

// Action identifies an update operation a status pass may offer.
type Action string

const (
	ActionUpdateKlipper       Action = "update_klipper"
	ActionUpdateMoonraker     Action = "update_moonraker"
	ActionUpdateMainsail      Action = "update_mainsail"
	ActionUpdateFluidd        Action = "update_fluidd"
	ActionUpdateKlipperScreen Action = "update_klipperscreen"
	ActionUpdateCrowsnest     Action = "update_crowsnest"
	ActionUpgradeSystem       Action = "upgrade_system_packages"
)

// Descriptor describes one component of the printer stack.
type Descriptor struct {
	Name        string
	DisplayName string
	Kind        Kind

	// Dir is the install location: the checkout for git components, the
	// deploy directory for web interfaces. Empty for the system component.
	Dir string
	// VersionFile is the deployed version marker (web interfaces only).
	VersionFile string
	// RemoteRef is the tracking ref local commits are compared against
	// (git components only).
	RemoteRef string
	// ReleaseRepo is the GitHub owner/name queried for releases and
	// AssetName the archive deployed from them (web interfaces only).
	ReleaseRepo string
	AssetName   string
	// ServiceName is the base systemd unit name; instances may carry a
	// suffix (klipper-printer1.service). Empty when there is no service.
	ServiceName string
	// MultiInstance marks components that run one service per configured
	// printer instance.
	MultiInstance bool
	// VenvDir is the python virtualenv backing the service, when one exists.
	VenvDir string
	// Action is the update operation offered when the component is behind.
	Action Action
}

// Registry returns the component list in presentation order. The order is
// fixed; settings only influence where git components pull from.
func Registry(home string, s *config.Settings) []Descriptor {
	return []Descriptor{
		{
			Name:          "klipper",
			DisplayName:   "Klipper",
			Kind:          KindGitRepo,
			Dir:           filepath.Join(home, "klipper"),
			RemoteRef:     "origin/" + s.Klipper.Branch,
			ServiceName:   "klipper",
			MultiInstance: true,
			VenvDir:       filepath.Join(home, "klippy-env"),
			Action:        ActionUpdateKlipper,
		},
		{
			Name:          "moonraker",
			DisplayName:   "Moonraker",
			Kind:          KindGitRepo,
			Dir:           filepath.Join(home, "moonraker"),
			RemoteRef:     "origin/" + s.Moonraker.Branch,
			ServiceName:   "moonraker",
			MultiInstance: true,
			VenvDir:       filepath.Join(home, "moonraker-env"),
			Action:        ActionUpdateMoonraker,
		},
		{
			Name:        "mainsail",
			DisplayName: "Mainsail",
			Kind:        KindWebUI,
			Dir:         filepath.Join(home, "mainsail"),
			VersionFile: filepath.Join(home, "mainsail", ".version"),
			ReleaseRepo: "mainsail-crew/mainsail",
			AssetName:   "mainsail.zip",
			Action:      ActionUpdateMainsail,
		},
		{
			Name:        "fluidd",
			DisplayName: "Fluidd",
			Kind:        KindWebUI,
			Dir:         filepath.Join(home, "fluidd"),
			VersionFile: filepath.Join(home, "fluidd", ".version"),
			ReleaseRepo: "fluidd-core/fluidd",
			AssetName:   "fluidd.zip",
			Action:      ActionUpdateFluidd,
		},
		{
			Name:        "klipperscreen",
			DisplayName: "KlipperScreen",
			Kind:        KindGitRepo,
			Dir:         filepath.Join(home, "KlipperScreen"),
			RemoteRef:   "origin/master",
			ServiceName: "KlipperScreen",
			VenvDir:     filepath.Join(home, ".KlipperScreen-env"),
			Action:      ActionUpdateKlipperScreen,
		},
		{
			Name:        "crowsnest",
			DisplayName: "Crowsnest",
			Kind:        KindGitRepo,
			Dir:         filepath.Join(home, "crowsnest"),
			RemoteRef:   "origin/master",
			ServiceName: "crowsnest",
			Action:      ActionUpdateCrowsnest,
		},
		{
			Name:        "system",
			DisplayName: "System",
			Kind:        KindSystem,
			Action:      ActionUpgradeSystem,
		},
	}
}

// Find returns the descriptor named name from reg.
func Find(reg []Descriptor, name string) (Descriptor, bool) {
	for _, d := range reg {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// RepoURL returns the upstream clone URL for a git component, honoring
// settings overrides for klipper and moonraker.
func RepoURL(d Descriptor, s *config.Settings) string {
	switch d.Name {
	case "klipper":
		return s.Klipper.RepoURL
	case "moonraker":
		return s.Moonraker.RepoURL
	case "klipperscreen":
		return "https://github.com/KlipperScreen/KlipperScreen.git"
	case "crowsnest":
		return "https://github.com/mainsail-crew/crowsnest.git"
	}
	return ""
}

// Branch returns the branch a git component tracks.
func Branch(d Descriptor, s *config.Settings) string {
	switch d.Name {
	case "klipper":
		return s.Klipper.Branch
	case "moonraker":
		return s.Moonraker.Branch
	}
	return "master"
}
