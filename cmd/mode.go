package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Mode is how the user supplied the report: on the command line or through
// the interactive picker.
type Mode int

const (
	ModeCLI Mode = iota
	ModeInteractive
)

func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	default:
		return "cli"
	}
}

// ErrNoInput is returned when no path was given and there is no terminal to ask on.
var ErrNoInput = errors.New("no report path given and stdin is not a terminal; usage: allureview <path>")

// SelectMode picks the mode: a path argument means CLI, otherwise the
// picker runs when a terminal is available.
func SelectMode(args []string, terminal bool) (Mode, error) {
	if len(args) > 0 {
		return ModeCLI, nil
	}
	if terminal {
		return ModeInteractive, nil
	}
	return ModeCLI, ErrNoInput
}

var (
	errorTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	errorBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("1")).
			Padding(0, 2)
)

// PrintError writes err in the style of the mode: a single line for the CLI,
// a bordered box for the picker.
func PrintError(w io.Writer, m Mode, err error) {
	if m == ModeInteractive {
		fmt.Fprintln(w, errorBoxStyle.Render(errorTitleStyle.Render("Error")+"\n\n"+err.Error()))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
