// Package terminal reports properties of the controlling terminal.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// isTerminalFunc allows tests to fake TTY detection.
var isTerminalFunc = term.IsTerminal

// IsInteractive reports whether stdin and stdout are both interactive
// terminals. The menu and confirmation prompts require this; scripted
// invocations get plain subcommand output instead.
func IsInteractive() bool {
	return isTerminalFunc(int(os.Stdin.Fd())) && isTerminalFunc(int(os.Stdout.Fd()))
}
