package main

// NOTE: Tests in this package mutate package-level globals (defaultPathsFunc,
// isTerminalFunc, warnIfOutdatedFunc, newCheckerFunc, newEngineFunc,
// installStateFunc, snapshotFunc, executeFunc, color.NoColor). Do not use
// t.Parallel(). Each test must restore globals via t.Cleanup().

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/config"
	"github.com/printbed/klippctl/internal/releases"
	"github.com/printbed/klippctl/internal/setup"
	"github.com/printbed/klippctl/internal/status"
)

// withTestHome points the CLI at a throwaway home directory and disables
// terminal detection so prompts take their defaults.
func withTestHome(t *testing.T) config.Paths {
	t.Helper()

	t.Setenv(config.EnvSettingsPath, "")
	t.Setenv(config.EnvNoNetwork, "")

	paths := config.PathsIn(t.TempDir())
	origPaths := defaultPathsFunc
	defaultPathsFunc = func() (config.Paths, error) { return paths, nil }
	t.Cleanup(func() { defaultPathsFunc = origPaths })

	origTerm := isTerminalFunc
	isTerminalFunc = func() bool { return false }
	t.Cleanup(func() { isTerminalFunc = origTerm })

	origWarn := warnIfOutdatedFunc
	warnIfOutdatedFunc = func(context.Context, string, io.Writer) {}
	t.Cleanup(func() { warnIfOutdatedFunc = origWarn })

	return paths
}

// stubChecker replaces the status checker with one that never touches git,
// apt, or the network. Tests layer scenario options on top of the inert
// base; later options win.
func stubChecker(t *testing.T, opts ...status.Option) {
	t.Helper()

	base := []status.Option{
		status.WithToolChecks(func() bool { return true }, func() bool { return false }),
		status.WithIsRepo(func(string) bool { return false }),
		status.WithReadFile(func(string) ([]byte, error) { return nil, os.ErrNotExist }),
		status.WithLatestTagFunc(func(context.Context, string) (string, error) {
			return "", errors.New("remote lookups disabled in tests")
		}),
		status.WithClock(func() time.Time { return time.Unix(0, 0) }, func(time.Time) bool { return false }),
	}

	orig := newCheckerFunc
	newCheckerFunc = func() *status.Checker {
		return status.NewChecker(append(append([]status.Option(nil), base...), opts...)...)
	}
	t.Cleanup(func() { newCheckerFunc = orig })
}

// testApp builds an application environment without touching loadApp's
// seams, for tests that drive flow helpers directly.
func testApp(t *testing.T, paths config.Paths) *appEnv {
	t.Helper()
	if err := paths.EnsureStateDir(); err != nil {
		t.Fatalf("ensure state dir: %v", err)
	}
	settings := config.Default()
	return &appEnv{paths: paths, settings: &settings, log: zerolog.Nop()}
}

// stubInstallState pins the install state the menu flows see.
func stubInstallState(t *testing.T, state component.InstallState) {
	t.Helper()
	orig := installStateFunc
	installStateFunc = func(component.Descriptor) component.InstallState { return state }
	t.Cleanup(func() { installStateFunc = orig })
}

// runCLI executes the command line against a shared output buffer.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(append([]string{"klippctl"}, args...), &out, &out)
	return out.String(), err
}

// withColors forces colored output on or off for the duration of a test.
func withColors(t *testing.T, enabled bool) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = !enabled
	t.Cleanup(func() { color.NoColor = orig })
}

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// fakeGitRunner answers git invocations from a canned table. Lookups match
// on a substring of the joined arguments so keys can ignore absolute paths;
// unmatched commands succeed with empty output.
type fakeGitRunner struct {
	mu      sync.Mutex
	calls   []string
	outputs map[string]string
	errs    map[string]error
}

func (r *fakeGitRunner) Run(_ context.Context, dir string, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	r.mu.Lock()
	r.calls = append(r.calls, dir+": "+key)
	r.mu.Unlock()
	for k, err := range r.errs {
		if strings.Contains(key, k) {
			return []byte(r.outputs[k]), err
		}
	}
	for k, out := range r.outputs {
		if strings.Contains(key, k) {
			return []byte(out), nil
		}
	}
	return nil, nil
}

// fakeExecRunner serves the aptpkg and systemd runner seams, which share
// the same shape.
type fakeExecRunner struct {
	mu      sync.Mutex
	calls   []string
	outputs map[string]string
	errs    map[string]error
}

func (r *fakeExecRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	r.mu.Lock()
	r.calls = append(r.calls, key)
	r.mu.Unlock()
	for k, err := range r.errs {
		if strings.Contains(key, k) {
			return []byte(r.outputs[k]), err
		}
	}
	for k, out := range r.outputs {
		if strings.Contains(key, k) {
			return []byte(out), nil
		}
	}
	return nil, nil
}

// fakeCmdRunner serves the generic setup command seam.
type fakeCmdRunner struct {
	mu      sync.Mutex
	calls   []string
	outputs map[string]string
	errs    map[string]error
}

func (r *fakeCmdRunner) Run(_ context.Context, dir string, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	r.mu.Lock()
	r.calls = append(r.calls, dir+": "+key)
	r.mu.Unlock()
	for k, err := range r.errs {
		if strings.Contains(key, k) {
			return []byte(r.outputs[k]), err
		}
	}
	for k, out := range r.outputs {
		if strings.Contains(key, k) {
			return []byte(out), nil
		}
	}
	return nil, nil
}

func sawCommand(calls []string, substr string) bool {
	for _, c := range calls {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

// engineFakes bundles every external seam of a setup engine.
type engineFakes struct {
	run   *fakeCmdRunner
	git   *fakeGitRunner
	apt   *fakeExecRunner
	sysd  *fakeExecRunner
	state component.InstallState
	built int
}

func newEngineFakes(state component.InstallState) *engineFakes {
	return &engineFakes{
		run:   &fakeCmdRunner{outputs: map[string]string{}, errs: map[string]error{}},
		git:   &fakeGitRunner{outputs: map[string]string{}, errs: map[string]error{}},
		apt:   &fakeExecRunner{outputs: map[string]string{}, errs: map[string]error{}},
		sysd:  &fakeExecRunner{outputs: map[string]string{}, errs: map[string]error{}},
		state: state,
	}
}

// stubEngine reroutes engine construction through the fakes. The options a
// command passed stay in effect; the fakes are appended after them so no
// flow can reach a real system command.
func stubEngine(t *testing.T, fakes *engineFakes) {
	t.Helper()

	orig := newEngineFunc
	newEngineFunc = func(paths config.Paths, settings *config.Settings, opts ...setup.Option) *setup.Engine {
		fakes.built++
		opts = append(opts,
			setup.WithRunner(fakes.run),
			setup.WithGitRunner(fakes.git),
			setup.WithAptRunner(fakes.apt),
			setup.WithSystemdRunner(fakes.sysd),
			setup.WithUnitLister(func(name string) ([]string, error) {
				return []string{name + ".service"}, nil
			}),
			setup.WithStateDetector(func(component.Descriptor) component.InstallState {
				return fakes.state
			}),
			setup.WithReleaseFuncs(
				func(context.Context, string) (releases.Release, error) {
					return releases.Release{}, errors.New("release lookups disabled in tests")
				},
				func(context.Context, string, string) error {
					return errors.New("downloads disabled in tests")
				},
			),
		)
		return setup.New(paths, settings, opts...)
	}
	t.Cleanup(func() { newEngineFunc = orig })
}

// klipperUpdateFixture makes the status pass report one available Klipper
// update and wires the engine so the git update flow runs against fakes.
func klipperUpdateFixture(t *testing.T, paths config.Paths) *engineFakes {
	t.Helper()

	klipperDir := filepath.Join(paths.Home, "klipper")
	if err := os.MkdirAll(filepath.Join(klipperDir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	checkGit := &fakeGitRunner{outputs: map[string]string{
		"describe HEAD --always --tags":          "v0.12.0-110-gaaaaaaa\n",
		"fetch --quiet":                          "",
		"describe origin/master --always --tags": "v0.12.0-114-gbbbbbbb\n",
	}, errs: map[string]error{}}
	stubChecker(t,
		status.WithGitRunner(checkGit),
		status.WithIsRepo(func(dir string) bool { return dir == klipperDir }),
	)

	fakes := newEngineFakes(component.Installed)
	fakes.git.outputs["rev-parse HEAD"] = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n"
	fakes.git.outputs["describe HEAD --always --tags"] = "v0.12.0-114-gbbbbbbb\n"
	stubEngine(t, fakes)
	return fakes
}

// fakeUI feeds scripted answers to the menu flows. Each prompt consumes one
// step; a prompt with no step left or with the wrong kind fails the test.
type fakeUI struct {
	t     *testing.T
	steps []uiStep
}

type uiStep struct {
	kind    string
	choice  string   // select and input responses
	choices []string // multiselect response; nil keeps the preselection
	answer  bool     // confirm response
	err     error
}

func (ui *fakeUI) next(kind string) uiStep {
	ui.t.Helper()
	if len(ui.steps) == 0 {
		ui.t.Fatalf("unexpected %s prompt", kind)
	}
	step := ui.steps[0]
	ui.steps = ui.steps[1:]
	if step.kind != kind {
		ui.t.Fatalf("expected %s prompt, got %s", step.kind, kind)
	}
	return step
}

func (ui *fakeUI) Select(_ string, _ []string, current *string) error {
	step := ui.next("select")
	if step.err != nil {
		return step.err
	}
	if step.choice != "" {
		*current = step.choice
	}
	return nil
}

func (ui *fakeUI) MultiSelect(_ string, _ []string, selected *[]string) error {
	step := ui.next("multiselect")
	if step.err != nil {
		return step.err
	}
	if step.choices != nil {
		*selected = step.choices
	}
	return nil
}

func (ui *fakeUI) Confirm(_ string, value *bool) error {
	step := ui.next("confirm")
	if step.err != nil {
		return step.err
	}
	*value = step.answer
	return nil
}

func (ui *fakeUI) Input(_ string, value *string) error {
	step := ui.next("input")
	if step.err != nil {
		return step.err
	}
	*value = step.choice
	return nil
}

func (ui *fakeUI) Note(string, string) error { return nil }
