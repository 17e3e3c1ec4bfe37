package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	skipped lipgloss.Style
	muted   lipgloss.Style
	summary lipgloss.Style
}

// newStyles binds the palette to w so colour is only emitted for terminals.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		skipped: r.NewStyle().Foreground(lipgloss.Color("244")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("240")),
		summary: r.NewStyle().MarginTop(1),
	}
}
