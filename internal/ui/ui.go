// Package ui prints user-facing progress and result lines.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled lines to one writer. Colors are dropped
// automatically when the writer is not a terminal.
type Printer struct {
	w         io.Writer
	info      lipgloss.Style
	warn      lipgloss.Style
	fail      lipgloss.Style
	success   lipgloss.Style
	highlight lipgloss.Style
	dim       lipgloss.Style
}

// New returns a Printer for w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:         w,
		info:      r.NewStyle().Foreground(lipgloss.Color("6")),
		warn:      r.NewStyle().Foreground(lipgloss.Color("3")),
		fail:      r.NewStyle().Foreground(lipgloss.Color("1")),
		success:   r.NewStyle().Foreground(lipgloss.Color("2")),
		highlight: r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		dim:       r.NewStyle().Faint(true),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Highlight renders s for inline emphasis, e.g. component names.
func (p *Printer) Highlight(s string) string { return p.highlight.Render(s) }

// Dim renders s de-emphasized.
func (p *Printer) Dim(s string) string { return p.dim.Render(s) }

// Info prints a plain line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, fmt.Sprintf(format, args...))
}

// Step prints an in-progress line.
func (p *Printer) Step(format string, args ...any) {
	fmt.Fprintln(p.w, p.info.Render("→")+" "+fmt.Sprintf(format, args...))
}

// Success prints a ✓ line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Warn prints a ! line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.warn.Render("!")+" "+fmt.Sprintf(format, args...))
}

// Error prints a ✗ line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.fail.Render("✗")+" "+fmt.Sprintf(format, args...))
}

// Break prints an empty line.
func (p *Printer) Break() {
	fmt.Fprintln(p.w)
}
