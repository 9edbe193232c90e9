// Package setup carries out the install, update, and removal flows for the
// components of the printer stack. Flows run external commands through
// narrow runner seams and report per-step results the CLI renders.
package setup

import (
	"context"
	"io"
	"os"
	"os/exec"
	"os/user"

	"github.com/rs/zerolog"

	"github.com/printbed/klippctl/internal/aptpkg"
	"github.com/printbed/klippctl/internal/backup"
	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/config"
	"github.com/printbed/klippctl/internal/diffview"
	"github.com/printbed/klippctl/internal/gitrepo"
	"github.com/printbed/klippctl/internal/releases"
	"github.com/printbed/klippctl/internal/systemd"
)

// Status classifies a step outcome.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

// Result describes one completed setup step.
type Result struct {
	Step           string
	Status         Status
	Message        string
	Recommendation string
}

// Runner executes external commands such as python and make.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

var currentUserFunc = user.Current

// Engine drives the setup flows for a single home layout.
type Engine struct {
	paths    config.Paths
	settings *config.Settings

	out io.Writer
	log zerolog.Logger

	run  Runner
	git  gitrepo.Runner
	apt  aptpkg.Runner
	sysd systemd.Runner

	backups *backup.Manager

	latestRelease func(ctx context.Context, ownerRepo string) (releases.Release, error)
	download      func(ctx context.Context, url string, dest string) error
	unitsFor      func(name string) ([]string, error)
	detectState   func(d component.Descriptor) component.InstallState

	confirm      func(title string, def bool) (bool, error)
	report       func(Result)
	diffMaxLines int
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput directs user-facing progress output.
func WithOutput(out io.Writer) Option {
	return func(e *Engine) { e.out = out }
}

// WithLogger attaches the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRunner replaces the generic command runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.run = r }
}

// WithGitRunner replaces the git runner.
func WithGitRunner(r gitrepo.Runner) Option {
	return func(e *Engine) { e.git = r }
}

// WithAptRunner replaces the apt runner.
func WithAptRunner(r aptpkg.Runner) Option {
	return func(e *Engine) { e.apt = r }
}

// WithSystemdRunner replaces the systemctl runner.
func WithSystemdRunner(r systemd.Runner) Option {
	return func(e *Engine) { e.sysd = r }
}

// WithBackupManager replaces the backup manager.
func WithBackupManager(m *backup.Manager) Option {
	return func(e *Engine) { e.backups = m }
}

// WithReleaseFuncs replaces the release lookup and archive download functions.
func WithReleaseFuncs(
	latest func(ctx context.Context, ownerRepo string) (releases.Release, error),
	download func(ctx context.Context, url string, dest string) error,
) Option {
	return func(e *Engine) {
		e.latestRelease = latest
		e.download = download
	}
}

// WithUnitLister replaces the systemd instance unit lookup.
func WithUnitLister(fn func(name string) ([]string, error)) Option {
	return func(e *Engine) { e.unitsFor = fn }
}

// WithStateDetector replaces the install state detection.
func WithStateDetector(fn func(d component.Descriptor) component.InstallState) Option {
	return func(e *Engine) { e.detectState = fn }
}

// WithConfirm installs the interactive confirmation prompt. The default
// accepts every prompt's default choice, which keeps scripted runs moving.
func WithConfirm(fn func(title string, def bool) (bool, error)) Option {
	return func(e *Engine) { e.confirm = fn }
}

// WithReporter installs a callback invoked as each step completes.
func WithReporter(fn func(Result)) Option {
	return func(e *Engine) { e.report = fn }
}

// WithDiffMaxLines caps the config diff preview length.
func WithDiffMaxLines(n int) Option {
	return func(e *Engine) { e.diffMaxLines = n }
}

// New builds an Engine with real system runners. Tests swap the seams via
// options.
func New(paths config.Paths, settings *config.Settings, opts ...Option) *Engine {
	e := &Engine{
		paths:         paths,
		settings:      settings,
		out:           os.Stdout,
		log:           zerolog.Nop(),
		run:           NewRunner(),
		git:           gitrepo.NewRunner(),
		apt:           aptpkg.NewRunner(),
		sysd:          systemd.NewRunner(),
		latestRelease: releases.Latest,
		download:      releases.Download,
		unitsFor:      systemd.InstanceUnits,
		detectState:   component.DetectInstallState,
		confirm:       func(_ string, def bool) (bool, error) { return def, nil },
		diffMaxLines:  diffview.DefaultMaxLines,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backups == nil {
		root := settings.General.ResolveBackupRoot(paths.BackupRoot)
		e.backups = backup.NewManager(root, backup.WithLogger(e.log))
	}
	return e
}

// username resolves the account that owns the installed services.
func (e *Engine) username() string {
	u, err := currentUserFunc()
	if err != nil || u.Username == "" {
		return "root"
	}
	return u.Username
}

func (e *Engine) ok(results *[]Result, step, message string) {
	e.emit(results, Result{Step: step, Status: StatusOK, Message: message})
}

func (e *Engine) warn(results *[]Result, step, message, recommendation string) {
	e.emit(results, Result{Step: step, Status: StatusWarn, Message: message, Recommendation: recommendation})
}

func (e *Engine) fail(results *[]Result, step string, err error, recommendation string) {
	e.emit(results, Result{Step: step, Status: StatusFail, Message: err.Error(), Recommendation: recommendation})
}

func (e *Engine) emit(results *[]Result, r Result) {
	*results = append(*results, r)
	event := e.log.Info()
	if r.Status == StatusFail {
		event = e.log.Error()
	}
	event.Str("step", r.Step).Msg(r.Message)
	if e.report != nil {
		e.report(r)
	}
}
