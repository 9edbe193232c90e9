package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestMainVersionFlag(t *testing.T) {
	var out bytes.Buffer
	if err := execute([]string{"klippctl", "--version"}, &out, &out); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if strings.TrimSpace(out.String()) != Version {
		t.Fatalf("unexpected version output: %q", out.String())
	}
}

func TestMainUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	if err := execute([]string{"klippctl", "bogus"}, &out, &out); err == nil {
		t.Fatalf("expected error")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	want := "klippctl dev (commit unknown, built unknown)\n"
	if out != want {
		t.Fatalf("version output = %q, want %q", out, want)
	}
}

func TestVersionString(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = origVersion, origCommit, origDate })

	cases := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{"bare", "dev", "unknown", "unknown", "dev"},
		{"commit only", "1.2.0", "abc1234", "unknown", "1.2.0 (commit abc1234)"},
		{"date only", "1.2.0", "", "2026-08-01", "1.2.0 (built 2026-08-01)"},
		{"full", "1.2.0", "abc1234", "2026-08-01", "1.2.0 (commit abc1234, built 2026-08-01)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			Version, Commit, BuildDate = tc.version, tc.commit, tc.date
			if got := versionString(); got != tc.want {
				t.Fatalf("versionString() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRunMainSuccess(t *testing.T) {
	var out bytes.Buffer
	called := false
	runMain([]string{"klippctl", "--version"}, &out, &out, func(int) {
		called = true
	})
	if called {
		t.Fatalf("unexpected exit")
	}
}

func TestRunMainError(t *testing.T) {
	var out bytes.Buffer
	code := 0
	runMain([]string{"klippctl", "bogus"}, &out, &out, func(exitCode int) {
		code = exitCode
	})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("expected error output, got %q", out.String())
	}
}

func TestRunMainSilentExit(t *testing.T) {
	orig := executeFunc
	executeFunc = func([]string, io.Writer, io.Writer) error {
		return &SilentExitError{Code: 3}
	}
	t.Cleanup(func() { executeFunc = orig })

	var out bytes.Buffer
	code := -1
	runMain([]string{"klippctl"}, &out, &out, func(c int) { code = c })
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestRunMainExitError(t *testing.T) {
	cmdErr := exec.Command("false").Run()
	var exitErr *exec.ExitError
	if !errors.As(cmdErr, &exitErr) {
		t.Fatalf("running false did not produce an exit error: %v", cmdErr)
	}

	orig := executeFunc
	executeFunc = func([]string, io.Writer, io.Writer) error { return cmdErr }
	t.Cleanup(func() { executeFunc = orig })

	var out bytes.Buffer
	code := 0
	runMain([]string{"klippctl"}, &out, &out, func(c int) { code = c })
	if code != exitErr.ExitCode() {
		t.Fatalf("expected exit code %d, got %d", exitErr.ExitCode(), code)
	}
	if !strings.Contains(out.String(), "exit status") {
		t.Fatalf("expected exit status output, got %q", out.String())
	}
}

func TestSilentExitErrorMessage(t *testing.T) {
	err := &SilentExitError{Code: 2}
	if err.Error() != "exit 2" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestMainCallsExecute(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	os.Args = []string{"klippctl", "--version"}
	main()
}
