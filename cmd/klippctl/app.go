package main

import (
	"github.com/rs/zerolog"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/config"
	"github.com/printbed/klippctl/internal/logging"
)

var defaultPathsFunc = config.DefaultPaths

// appEnv bundles the resolved paths, settings, and session logger shared by
// the subcommands.
type appEnv struct {
	paths    config.Paths
	settings *config.Settings
	log      zerolog.Logger
	closeLog func()
}

// loadApp resolves well-known paths, loads the settings file, and opens the
// session log. Callers must Close the returned environment.
func loadApp() (*appEnv, error) {
	paths, err := defaultPathsFunc()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureStateDir(); err != nil {
		return nil, err
	}
	settings, err := config.Load(paths.SettingsPath)
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logging.Open(paths.LogPath)
	if err != nil {
		return nil, err
	}
	return &appEnv{paths: paths, settings: settings, log: log, closeLog: closeLog}, nil
}

// Close releases the session log.
func (a *appEnv) Close() {
	if a.closeLog != nil {
		a.closeLog()
	}
}

// registry returns the component list rooted at the resolved home.
func (a *appEnv) registry() []component.Descriptor {
	return component.Registry(a.paths.Home, a.settings)
}
