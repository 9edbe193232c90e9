package setup

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/config"
	"github.com/printbed/klippctl/internal/releases"
)

// script records command lines and injects canned output or errors. The
// first substring key matching a command line wins; tests use keys that
// cannot overlap. seq, when set, collects the lines of several scripts in
// invocation order so tests can assert ordering across runners.
type script struct {
	calls   []string
	seq     *[]string
	outputs map[string]string
	errs    map[string]error
}

func (s *script) record(line string) ([]byte, error) {
	s.calls = append(s.calls, line)
	if s.seq != nil {
		*s.seq = append(*s.seq, line)
	}
	for key, err := range s.errs {
		if strings.Contains(line, key) {
			return []byte(s.outputs[key]), err
		}
	}
	for key, out := range s.outputs {
		if strings.Contains(line, key) {
			return []byte(out), nil
		}
	}
	return nil, nil
}

func (s *script) failOn(key string, err error) {
	if s.errs == nil {
		s.errs = map[string]error{}
	}
	s.errs[key] = err
}

func (s *script) respond(key, out string) {
	if s.outputs == nil {
		s.outputs = map[string]string{}
	}
	s.outputs[key] = out
}

func (s *script) called(substr string) bool {
	return s.callIndex(substr) >= 0
}

func (s *script) callIndex(substr string) int {
	for i, line := range s.calls {
		if strings.Contains(line, substr) {
			return i
		}
	}
	return -1
}

// fakeCmdRunner satisfies the engine's generic Runner.
type fakeCmdRunner struct{ script }

func (f *fakeCmdRunner) Run(_ context.Context, dir string, name string, args ...string) ([]byte, error) {
	_ = dir
	return f.record(strings.Join(append([]string{name}, args...), " "))
}

// fakeGitRunner satisfies gitrepo.Runner.
type fakeGitRunner struct{ script }

func (f *fakeGitRunner) Run(_ context.Context, dir string, args ...string) ([]byte, error) {
	_ = dir
	return f.record("git " + strings.Join(args, " "))
}

// fakeSystemRunner satisfies both aptpkg.Runner and systemd.Runner.
type fakeSystemRunner struct{ script }

func (f *fakeSystemRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	return f.record(strings.Join(append([]string{name}, args...), " "))
}

// testEnv bundles an engine wired to fakes with the temp home it runs in.
type testEnv struct {
	home     string
	paths    config.Paths
	settings config.Settings

	out  bytes.Buffer
	seq  []string
	cmd  fakeCmdRunner
	git  fakeGitRunner
	apt  fakeSystemRunner
	sysd fakeSystemRunner

	units    []string
	unitsErr error
	state    component.InstallState

	release    releases.Release
	releaseErr error
	archive    []byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		home:     t.TempDir(),
		settings: config.Default(),
		state:    component.Installed,
	}
	env.settings.General.BackupBeforeUpdate = false
	env.paths = config.PathsIn(env.home)
	if err := os.MkdirAll(env.paths.StateDir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}
	for _, s := range []*script{&env.cmd.script, &env.git.script, &env.apt.script, &env.sysd.script} {
		s.seq = &env.seq
	}
	return env
}

// seqIndex returns the position of the first command line containing substr
// across all runners, or -1.
func (env *testEnv) seqIndex(substr string) int {
	for i, line := range env.seq {
		if strings.Contains(line, substr) {
			return i
		}
	}
	return -1
}

func (env *testEnv) engine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithOutput(&env.out),
		WithRunner(&env.cmd),
		WithGitRunner(&env.git),
		WithAptRunner(&env.apt),
		WithSystemdRunner(&env.sysd),
		WithUnitLister(func(string) ([]string, error) { return env.units, env.unitsErr }),
		WithStateDetector(func(component.Descriptor) component.InstallState { return env.state }),
		WithReleaseFuncs(
			func(context.Context, string) (releases.Release, error) {
				return env.release, env.releaseErr
			},
			func(_ context.Context, _ string, dest string) error {
				return os.WriteFile(dest, env.archive, 0o644)
			},
		),
	}
	return New(env.paths, &env.settings, append(base, opts...)...)
}

func (env *testEnv) descriptor(t *testing.T, name string) component.Descriptor {
	t.Helper()
	d, ok := component.Find(component.Registry(env.home, &env.settings), name)
	if !ok {
		t.Fatalf("unknown component %q", name)
	}
	return d
}

func withFakeUser(t *testing.T, username string) {
	t.Helper()
	orig := currentUserFunc
	currentUserFunc = func() (*user.User, error) {
		return &user.User{Username: username}, nil
	}
	t.Cleanup(func() { currentUserFunc = orig })
}

// buildZip assembles an archive from path to content mappings. Paths with a
// trailing slash become directory entries.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for path, content := range files {
		if strings.HasSuffix(path, "/") {
			if _, err := w.Create(path); err != nil {
				t.Fatalf("create zip dir %s: %v", path, err)
			}
			continue
		}
		f, err := w.Create(path)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", path, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", path, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func findResult(results []Result, step string) (Result, bool) {
	for _, r := range results {
		if r.Step == step {
			return r, true
		}
	}
	return Result{}, false
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
}
