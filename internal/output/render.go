package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// Renderer handles styled terminal output.
type Renderer struct {
	width  int
	styled bool

	Summary lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Hint    lipgloss.Style
}

// NewRenderer creates a renderer. Styling is enabled when writing to a TTY,
// or when forceStyled is true. NO_COLOR disables styling either way.
func NewRenderer(w io.Writer, forceStyled bool) *Renderer {
	width, tty := terminalInfo(w)
	styled := (tty || forceStyled) && os.Getenv("NO_COLOR") == ""

	r := &Renderer{width: width, styled: styled}

	if styled {
		r.Summary = lipgloss.NewStyle().Bold(true)
		r.Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		r.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
		r.Hint = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	} else {
		r.Summary = lipgloss.NewStyle()
		r.Muted = lipgloss.NewStyle()
		r.Error = lipgloss.NewStyle()
		r.Hint = lipgloss.NewStyle()
	}

	return r
}

// terminalInfo returns the terminal width and whether the writer is a TTY.
func terminalInfo(w io.Writer) (width int, isTTY bool) {
	width = 80

	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(f.Fd()); err == nil && tw >= 40 {
			width = tw
		}
		fi, err := f.Stat()
		if err == nil && (fi.Mode()&os.ModeCharDevice) != 0 {
			isTTY = true
		}
	}

	return width, isTTY
}

// RenderResponse renders a success response to the writer.
func (r *Renderer) RenderResponse(w io.Writer, resp *Response) error {
	var b strings.Builder

	if resp.Summary != "" {
		b.WriteString(r.Summary.Render(resp.Summary))
		b.WriteString("\n")
	}

	if resp.Data != nil {
		if lines, ok := dataLines(resp.Data); ok {
			for _, line := range lines {
				b.WriteString("  " + line + "\n")
			}
		} else {
			encoded, err := json.MarshalIndent(resp.Data, "", "  ")
			if err != nil {
				return err
			}
			b.WriteString(r.Muted.Render(string(encoded)))
			b.WriteString("\n")
		}
	}

	_, err := fmt.Fprint(w, b.String())
	return err
}

// RenderError renders an error response to the writer.
func (r *Renderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	var b strings.Builder

	b.WriteString(r.Error.Render("Error: " + resp.Error))
	b.WriteString("\n")
	if resp.Hint != "" {
		b.WriteString(r.Hint.Render(resp.Hint))
		b.WriteString("\n")
	}

	_, err := fmt.Fprint(w, b.String())
	return err
}

// LineRenderer lets a data payload control its own styled line output.
type LineRenderer interface {
	RenderLines() []string
}

func dataLines(data any) ([]string, bool) {
	if lr, ok := data.(LineRenderer); ok {
		return lr.RenderLines(), true
	}
	return nil, false
}
