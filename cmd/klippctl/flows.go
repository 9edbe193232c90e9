package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/lockfile"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/setup"
)

var newEngineFunc = setup.New

// setupOp is one engine flow: Install, Update, or Remove.
type setupOp func(*setup.Engine, context.Context, component.Descriptor) ([]setup.Result, error)

// confirmFunc answers a flow's confirmation prompts.
type confirmFunc func(title string, def bool) (bool, error)

// runSetupFlow drives op over targets under the process lock, printing each
// step doctor-style. Failures stop the run; one that was already reported as
// a step converts to a silent exit so it is not printed twice.
func runSetupFlow(cmd *cobra.Command, app *appEnv, confirm confirmFunc, diffLines int, targets []component.Descriptor, op setupOp) error {
	out := cmd.OutOrStdout()
	return lockfile.WithLock(app.paths.LockPath, func() error {
		failPrinted := false
		opts := []setup.Option{
			setup.WithOutput(out),
			setup.WithLogger(app.log),
			setup.WithConfirm(confirm),
			setup.WithReporter(func(r setup.Result) {
				if r.Status == setup.StatusFail {
					failPrinted = true
				}
				printSetupResult(out, r)
			}),
		}
		if diffLines > 0 {
			opts = append(opts, setup.WithDiffMaxLines(diffLines))
		}
		eng := newEngineFunc(app.paths, app.settings, opts...)
		for _, d := range targets {
			if _, err := op(eng, cmd.Context(), d); err != nil {
				if failPrinted {
					return &SilentExitError{Code: 1}
				}
				return err
			}
		}
		return nil
	})
}

// printSetupResult renders one step result with a colored status label.
func printSetupResult(out io.Writer, r setup.Result) {
	var label string
	switch r.Status {
	case setup.StatusOK:
		label = color.GreenString(messages.SetupStatusOKLabel)
	case setup.StatusWarn:
		label = color.YellowString(messages.SetupStatusWarnLabel)
	case setup.StatusFail:
		label = color.RedString(messages.SetupStatusFailLabel)
	}
	_, _ = fmt.Fprintf(out, messages.SetupResultLineFmt, label, r.Step, r.Message)
	if r.Recommendation != "" {
		_, _ = fmt.Fprintf(out, messages.SetupRecommendationFmt, r.Recommendation)
	}
}

// stdinConfirm prompts on the command's streams. --yes answers every prompt
// with yes; non-interactive runs take the prompt's default.
func stdinConfirm(cmd *cobra.Command, yes bool) confirmFunc {
	return func(title string, def bool) (bool, error) {
		if yes {
			return true, nil
		}
		if !isTerminalFunc() {
			return def, nil
		}
		return promptYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), title, def)
	}
}

// promptYesNo asks a yes/no question and returns the user's choice. An empty
// response, including EOF, takes the default.
func promptYesNo(in io.Reader, out io.Writer, prompt string, defaultYes bool) (bool, error) {
	reader := bufio.NewReader(in)
	for {
		format := messages.PromptNoDefaultFmt
		if defaultYes {
			format = messages.PromptYesDefaultFmt
		}
		if _, err := fmt.Fprintf(out, format, prompt); err != nil {
			return false, err
		}
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		response := strings.ToLower(strings.TrimSpace(line))
		switch response {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if errors.Is(err, io.EOF) {
			return false, fmt.Errorf(messages.PromptInvalidResponse, response)
		}
		if _, err := fmt.Fprintln(out, messages.PromptRetryYesNo); err != nil {
			return false, err
		}
	}
}

// resolveComponents maps names to registry descriptors, rejecting unknown
// names and dropping duplicates.
func resolveComponents(reg []component.Descriptor, names []string) ([]component.Descriptor, error) {
	seen := map[string]bool{}
	var out []component.Descriptor
	for _, name := range names {
		d, ok := component.Find(reg, strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf(messages.UnknownComponentFmt, name)
		}
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out, nil
}
