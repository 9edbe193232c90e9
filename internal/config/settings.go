package config

import (
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// Settings is the decoded klippctl.toml.
type Settings struct {
	General   General       `toml:"general"`
	Klipper   RepoSettings  `toml:"klipper"`
	Moonraker RepoSettings  `toml:"moonraker"`
	Mainsail  WebUISettings `toml:"mainsail"`
	Fluidd    WebUISettings `toml:"fluidd"`
}

// General holds behavior toggles.
type General struct {
	BackupBeforeUpdate bool `toml:"backup_before_update"`
	// BackupRoot overrides where snapshots are written. Empty keeps the
	// default location under the home directory.
	BackupRoot string `toml:"backup_root,omitempty"`
	// Instances names the printer instances served by multi-instance
	// components. Installing such a component creates one service per
	// entry (klipper-<name>.service) instead of the bare unit.
	Instances []string `toml:"instances,omitempty"`
}

// ResolveBackupRoot returns the snapshot destination, expanding a leading ~
// in the configured override, or fallback when none is set.
func (g General) ResolveBackupRoot(fallback string) string {
	root := strings.TrimSpace(g.BackupRoot)
	if root == "" {
		return fallback
	}
	if expanded, err := homedir.Expand(root); err == nil {
		return expanded
	}
	return root
}

// RepoSettings selects the upstream repository for a git-managed component.
type RepoSettings struct {
	RepoURL string `toml:"repo_url"`
	Branch  string `toml:"branch"`
}

// WebUISettings holds per-interface options. The port is informational;
// klippctl does not manage the web server itself.
type WebUISettings struct {
	Port int `toml:"port"`
}

// Default returns the settings used when no file exists yet.
func Default() Settings {
	return Settings{
		General: General{BackupBeforeUpdate: true},
		Klipper: RepoSettings{
			RepoURL: "https://github.com/Klipper3d/klipper.git",
			Branch:  "master",
		},
		Moonraker: RepoSettings{
			RepoURL: "https://github.com/Arksine/moonraker.git",
			Branch:  "master",
		},
		Mainsail: WebUISettings{Port: 80},
		Fluidd:   WebUISettings{Port: 80},
	}
}
