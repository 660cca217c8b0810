// Package style renders operation results for the terminal. Colors are
// applied only when stdout is a tty, so piped output stays plain.
package style

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Status classifies a rendered line.
type Status string

const (
	StatusSynced    Status = "synced"    // file matches the repo
	StatusPending   Status = "pending"   // file waiting to be pushed
	StatusStale     Status = "stale"     // file lost ownership, cleanable
	StatusUntracked Status = "untracked" // file unknown to the index
	StatusBroken    Status = "broken"    // index disagrees with the repo
)

// StatusStyle returns the pterm style for a status.
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusSynced:
		return pterm.NewStyle(pterm.FgGreen)
	case StatusPending:
		return pterm.NewStyle(pterm.FgYellow)
	case StatusStale:
		return pterm.NewStyle(pterm.FgMagenta)
	case StatusBroken:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

var (
	// TitleStyle is used for section headers.
	TitleStyle = pterm.NewStyle(pterm.Bold)

	// MutedStyle is used for secondary detail like paths and counts.
	MutedStyle = pterm.NewStyle(pterm.FgGray)

	// ErrorStyle is used for error messages.
	ErrorStyle = pterm.NewStyle(pterm.FgRed, pterm.Bold)
)

// isTerminal reports whether stdout supports styling.
func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Sprint applies a style when on a terminal, otherwise passes through.
func Sprint(s *pterm.Style, text string) string {
	if !isTerminal() {
		return text
	}
	return s.Sprint(text)
}

// Bold emphasizes text on terminals.
func Bold(text string) string {
	return Sprint(pterm.NewStyle(pterm.Bold), text)
}

// Title renders a section header.
func Title(text string) string {
	return Sprint(TitleStyle, text)
}

// Muted renders secondary detail.
func Muted(text string) string {
	return Sprint(MutedStyle, text)
}

// Indent prefixes each line with n levels of two-space indent.
func Indent(text string, n int) string {
	prefix := strings.Repeat("  ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// Count renders "n file(s)" style detail.
func Count(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
