package status

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/printbed/klippctl/internal/aptpkg"
	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/config"
	"github.com/printbed/klippctl/internal/gitrepo"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/releases"
)

// checkConcurrency bounds how many components are probed at once. Remote
// probes are network or subprocess bound, so a small fan-out is enough.
const checkConcurrency = 4

// Checker resolves component versions against their upstreams.
type Checker struct {
	git       gitrepo.Runner
	apt       aptpkg.Runner
	latestTag func(context.Context, string) (string, error)
	readFile  func(string) ([]byte, error)
	isRepo    func(string) bool
	gitOK     func() bool
	aptOK     func() bool
	offline   func() bool
	now       func() time.Time
	stale     func(time.Time) bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithGitRunner sets the git execution seam.
func WithGitRunner(r gitrepo.Runner) Option {
	return func(c *Checker) { c.git = r }
}

// WithAptRunner sets the package manager execution seam.
func WithAptRunner(r aptpkg.Runner) Option {
	return func(c *Checker) { c.apt = r }
}

// WithLatestTagFunc sets the release lookup seam.
func WithLatestTagFunc(fn func(context.Context, string) (string, error)) Option {
	return func(c *Checker) { c.latestTag = fn }
}

// WithReadFile sets the version file read seam.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(c *Checker) { c.readFile = fn }
}

// WithIsRepo sets the checkout detection seam.
func WithIsRepo(fn func(string) bool) Option {
	return func(c *Checker) { c.isRepo = fn }
}

// WithToolChecks sets the git and apt presence seams.
func WithToolChecks(gitOK, aptOK func() bool) Option {
	return func(c *Checker) {
		c.gitOK = gitOK
		c.aptOK = aptOK
	}
}

// WithOffline forces or clears offline mode.
func WithOffline(offline bool) Option {
	return func(c *Checker) { c.offline = func() bool { return offline } }
}

// WithClock sets the time source and index staleness seams.
func WithClock(now func() time.Time, stale func(time.Time) bool) Option {
	return func(c *Checker) {
		c.now = now
		c.stale = stale
	}
}

// NewChecker returns a Checker wired to the real system.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		git:       gitrepo.NewRunner(),
		apt:       aptpkg.NewRunner(),
		latestTag: releases.LatestTag,
		readFile:  os.ReadFile,
		isRepo:    gitrepo.IsRepo,
		gitOK:     gitrepo.Available,
		aptOK:     aptpkg.Available,
		offline:   config.Offline,
		now:       time.Now,
		stale:     aptpkg.IndexStale,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks every component in reg and returns the report. Components are
// probed concurrently; results and the action set keep registry order, and
// a pass over unchanged inputs always yields the same report.
func (c *Checker) Run(ctx context.Context, reg []component.Descriptor) Report {
	results := make([]Result, len(reg))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for i, d := range reg {
		g.Go(func() error {
			results[i] = c.checkComponent(gctx, d)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Results: results}
	for _, res := range results {
		if res.Status == UpdateAvailable {
			report.Actions.Add(res.Component.Action)
		}
	}
	return report
}

// checkComponent resolves one component's pair and status. Every kind goes
// through this single path; the descriptor decides how each side is read.
func (c *Checker) checkComponent(ctx context.Context, d component.Descriptor) Result {
	res := Result{Component: d}
	switch d.Kind {
	case component.KindGitRepo:
		res.Pair, res.Err = c.gitPair(ctx, d)
	case component.KindWebUI:
		res.Pair, res.Err = c.webUIPair(ctx, d)
	case component.KindSystem:
		return c.systemResult(ctx, d)
	}
	res.Status = res.Pair.Compare()
	return res
}

// gitPair reads both sides of a git component. A missing git binary or
// checkout leaves the affected side empty.
func (c *Checker) gitPair(ctx context.Context, d component.Descriptor) (VersionPair, error) {
	if !c.gitOK() {
		return VersionPair{}, errors.New(messages.GitMissing)
	}
	if !c.isRepo(d.Dir) {
		return VersionPair{}, nil
	}

	var pair VersionPair
	var firstErr error

	local, err := gitrepo.Describe(ctx, c.git, d.Dir, "HEAD")
	if err != nil {
		firstErr = err
	} else {
		pair.Local = local
	}

	if c.offline() {
		return pair, firstErr
	}
	if err := gitrepo.Fetch(ctx, c.git, d.Dir); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		return pair, firstErr
	}
	remote, err := gitrepo.Describe(ctx, c.git, d.Dir, d.RemoteRef)
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		return pair, firstErr
	}
	pair.Remote = remote
	return pair, firstErr
}

// webUIPair reads the deployed version marker and the newest release tag.
func (c *Checker) webUIPair(ctx context.Context, d component.Descriptor) (VersionPair, error) {
	var pair VersionPair
	var firstErr error

	data, err := c.readFile(d.VersionFile)
	if err != nil {
		firstErr = err
	} else {
		pair.Local = firstLine(string(data))
	}

	if c.offline() {
		return pair, firstErr
	}
	remote, err := c.latestTag(ctx, d.ReleaseRepo)
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		return pair, firstErr
	}
	pair.Remote = remote
	return pair, firstErr
}

// systemResult derives the system component's status from the package
// manager: pending upgrades mean an update is available, an empty listing
// means up to date, and any failure degrades to Unknown.
func (c *Checker) systemResult(ctx context.Context, d component.Descriptor) Result {
	res := Result{Component: d, Status: Unknown}
	if !c.aptOK() {
		res.Err = errors.New(messages.AptMissing)
		return res
	}

	if !c.offline() && c.stale(c.now()) {
		if err := aptpkg.UpdateIndex(ctx, c.apt); err != nil {
			res.Err = err
			return res
		}
	}

	upgrades, err := aptpkg.Upgradable(ctx, c.apt)
	if err != nil {
		res.Err = err
		return res
	}
	res.Upgrades = len(upgrades)
	if len(upgrades) > 0 {
		res.Status = UpdateAvailable
	} else {
		res.Status = UpToDate
	}
	return res
}

// firstLine returns the trimmed first line of s.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
