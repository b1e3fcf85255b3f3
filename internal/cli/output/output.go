// Package output renders command results for terminals, pipes, and
// machines. Mode auto picks styled text on a TTY and markdown when
// piped; json is always machine-readable.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Styles holds the lipgloss styles used across commands.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

func newStyles() *Styles {
	return &Styles{
		Header1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// plainStyles returns styles with no color or weight, for non-TTY text.
func plainStyles() *Styles {
	s := lipgloss.NewStyle()
	return &Styles{
		Header1: s, Header2: s, Bold: s, Muted: s,
		Success: s, Warning: s, Error: s, Info: s,
	}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer. Mode auto resolves to text on a TTY
// and markdown otherwise.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}

	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = termenv.NewOutput(f).TTY() != nil
	}

	r := &Renderer{out: out, errOut: errOut, mode: mode, isTTY: isTTY}
	if r.EffectiveMode() == ModeText && isTTY {
		r.styles = newStyles()
	} else {
		r.styles = plainStyles()
	}
	return r
}

// EffectiveMode resolves auto to a concrete mode.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Styles returns the renderer's style set.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the error writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to the output writer.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted output to the output writer.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders a table suited to the effective mode: unicode-ruled for
// text, pipe-delimited for markdown.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	h := make(table.Row, len(header))
	for i, c := range header {
		h[i] = c
	}
	t.AppendHeader(h)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, c := range row {
			tr[i] = c
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
