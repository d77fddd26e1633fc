package session

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type styles struct {
	enabled bool

	title   lipgloss.Style
	section lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	if !shouldUseColor(w) {
		return styles{}
	}
	return styles{
		enabled: true,
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
		section: lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	}
}

func (st styles) paint(style lipgloss.Style, s string) string {
	if !st.enabled {
		return s
	}
	return style.Render(s)
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
