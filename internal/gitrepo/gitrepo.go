// Package gitrepo reads and mutates the git checkouts klippctl manages.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/printbed/klippctl/internal/messages"
)

// Runner executes git, allowing tests to inject stubs.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// NewRunner returns the Runner that shells out to git.
func NewRunner() Runner {
	return execRunner{}
}

var lookPathFunc = exec.LookPath

// Available reports whether git can be found on PATH.
func Available() bool {
	_, err := lookPathFunc("git")
	return err == nil
}

// IsRepo reports whether dir is the root of a git checkout.
func IsRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// Describe returns the describe output for ref in the checkout at dir,
// shortened to the tag and commit count. ref is usually HEAD or a remote
// tracking ref such as origin/master.
func Describe(ctx context.Context, r Runner, dir, ref string) (string, error) {
	out, err := r.Run(ctx, dir, "describe", ref, "--always", "--tags")
	if err != nil {
		return "", fmt.Errorf(messages.StatusGitDescribeFailedFmt, dir, strings.TrimSpace(string(out)), err)
	}
	return shortDescribe(strings.TrimSpace(string(out))), nil
}

// Fetch updates the remote tracking refs for the checkout at dir.
func Fetch(ctx context.Context, r Runner, dir string) error {
	out, err := r.Run(ctx, dir, "fetch", "--quiet")
	if err != nil {
		return fmt.Errorf(messages.StatusGitFetchFailedFmt, dir, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Head returns the commit hash the checkout at dir currently points to.
func Head(ctx context.Context, r Runner, dir string) (string, error) {
	out, err := r.Run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf(messages.StatusGitDescribeFailedFmt, dir, strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Pull fast-forwards the checkout at dir to its upstream.
func Pull(ctx context.Context, r Runner, dir string) error {
	out, err := r.Run(ctx, dir, "pull")
	if err != nil {
		return fmt.Errorf(messages.SetupPullFailedFmt, dir, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// ResetHard moves the checkout at dir back to commit, discarding changes.
func ResetHard(ctx context.Context, r Runner, dir, commit string) error {
	out, err := r.Run(ctx, dir, "reset", "--hard", commit)
	if err != nil {
		return fmt.Errorf(messages.SetupResetFailedFmt, dir, commit, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Clone checks out branch of url into dest. The parent of dest must exist.
func Clone(ctx context.Context, r Runner, url, branch, dest string) error {
	out, err := r.Run(ctx, filepath.Dir(dest), "clone", "--branch", branch, url, dest)
	if err != nil {
		return fmt.Errorf(messages.SetupCloneFailedFmt, url, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// shortDescribe keeps the first two hyphen-delimited fields of a describe
// string, so v0.12.0-114-gabc1234 becomes v0.12.0-114 and a bare tag or
// commit hash passes through unchanged.
func shortDescribe(s string) string {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) <= 2 {
		return s
	}
	return parts[0] + "-" + parts[1]
}
