// Package spinner animates a single long-running step, such as a remote
// version check or a git clone, and degrades to plain line output when
// stdout is not a terminal.
package spinner

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/printbed/klippctl/internal/terminal"
)

var interactiveFunc = terminal.IsInteractive

type doneMsg struct {
	err error
}

type model struct {
	spin  spinner.Model
	label string
	done  bool
	err   error
}

func newModel(label string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return model{spin: s, label: label}
}

func (m model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	return m.spin.View() + " " + m.label
}

// Run executes fn while rendering an animated spinner labeled with label.
// In non-interactive sessions the label is printed once instead. The
// returned error is always the one fn produced.
func Run(out io.Writer, label string, fn func() error) error {
	if !interactiveFunc() {
		_, _ = fmt.Fprintf(out, "%s...\n", label)
		return fn()
	}

	p := tea.NewProgram(newModel(label), tea.WithOutput(out))
	errCh := make(chan error, 1)
	go func() {
		err := fn()
		errCh <- err
		p.Send(doneMsg{err: err})
	}()

	// A program failure only costs the animation; the step itself still
	// finishes and reports through errCh.
	_, _ = p.Run()
	return <-errCh
}
