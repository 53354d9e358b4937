package ui

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// RunWatch runs the watch board full screen until the user quits.
func RunWatch(m WatchModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Printer writes rendered components to a writer.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Result prints r sized to the printer.
func (p *Printer) Result(r *Result) {
	p.Println(r.SetWidth(p.width).Render())
}

// Header prints h sized to the printer.
func (p *Printer) Header(h *Header) {
	p.Println(h.SetWidth(p.width).Render())
}

// Board prints one direction's board.
func (p *Printer) Board(b *Board) {
	b.Width = p.width
	p.Println(b.Render())
}
