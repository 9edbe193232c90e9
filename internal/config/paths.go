package config

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/printbed/klippctl/internal/messages"
)

// EnvNoNetwork and EnvSettingsPath define the environment keys klippctl honors.
const (
	// EnvNoNetwork disables all remote version checks when set to any non-empty value.
	EnvNoNetwork = "KLIPPCTL_NO_NETWORK"
	// EnvSettingsPath overrides the settings file location.
	EnvSettingsPath = "KLIPPCTL_CONFIG"
)

// Paths holds resolved locations for klippctl state and the printer stack.
type Paths struct {
	Home         string
	StateDir     string
	SettingsPath string
	LockPath     string
	LogPath      string
	BackupRoot   string
	PrinterData  string
}

// DefaultPaths resolves all well-known paths under the current user's home.
func DefaultPaths() (Paths, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Paths{}, fmt.Errorf(messages.ConfigResolveHomeFmt, err)
	}
	return PathsIn(home), nil
}

// PathsIn resolves all well-known paths under the given home directory.
func PathsIn(home string) Paths {
	stateDir := filepath.Join(home, ".klippctl")
	p := Paths{
		Home:         home,
		StateDir:     stateDir,
		SettingsPath: filepath.Join(stateDir, "klippctl.toml"),
		LockPath:     filepath.Join(stateDir, "klippctl.lock"),
		LogPath:      filepath.Join(stateDir, "klippctl.log"),
		BackupRoot:   filepath.Join(home, "klippctl_backups"),
		PrinterData:  filepath.Join(home, "printer_data"),
	}
	if override := os.Getenv(EnvSettingsPath); override != "" {
		if expanded, err := homedir.Expand(override); err == nil {
			p.SettingsPath = expanded
		} else {
			p.SettingsPath = override
		}
	}
	return p
}

// InstanceDataDir returns the printer data directory serving a named
// instance, following the stack's printer_<name>_data layout.
func InstanceDataDir(home string, instance string) string {
	return filepath.Join(home, "printer_"+instance+"_data")
}

// EnsureStateDir creates the state directory if it does not exist.
func (p Paths) EnsureStateDir() error {
	if err := os.MkdirAll(p.StateDir, 0o755); err != nil {
		return fmt.Errorf(messages.ConfigCreateDirFailedFmt, p.StateDir, err)
	}
	return nil
}

// Offline reports whether remote checks are disabled via the environment.
func Offline() bool {
	return os.Getenv(EnvNoNetwork) != ""
}
