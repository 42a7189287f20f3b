package session

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/bpqx-io/bpqx/internal/schema"
	"github.com/bpqx-io/bpqx/pkg/types"
)

// Renderer writes every user-facing line of the session. Output is strictly
// line-oriented so it stays usable over a line-buffered, high-latency
// transport; colors are plain SGR on whole lines and can be disabled
// entirely.
type Renderer struct {
	out    io.Writer
	header *color.Color
	errc   *color.Color
}

// NewRenderer creates a renderer over out. noColor strips all color codes.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	header := color.New(color.FgCyan, color.Bold)
	errc := color.New(color.FgRed)
	if noColor {
		header.DisableColor()
		errc.DisableColor()
	}
	return &Renderer{out: out, header: header, errc: errc}
}

// Prompt writes a prompt without a trailing newline; the user's answer
// completes the line.
func (r *Renderer) Prompt(text string) {
	fmt.Fprint(r.out, text)
}

// Println writes one line of text.
func (r *Renderer) Println(text string) {
	fmt.Fprintln(r.out, text)
}

// Text writes text, or fallback when text is empty.
func (r *Renderer) Text(text, fallback string) {
	if text == "" {
		text = fallback
	}
	fmt.Fprintln(r.out, text)
}

// Errorf writes a one-line error message.
func (r *Renderer) Errorf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.errc.Sprint("Error:"), fmt.Sprintf(format, args...))
}

// Output writes command output exactly as captured, without adding a
// newline.
func (r *Renderer) Output(text string) {
	fmt.Fprint(r.out, text)
}

// Banner writes the application header and the reserved-command legend.
func (r *Renderer) Banner(title string) {
	fmt.Fprintf(r.out, "\n- %s -\n", r.header.Sprint(title))
	fmt.Fprintln(r.out, "[A]About [H]Help [B]Back [X]Exit")
}

// SelectExtension writes the main-menu selection line.
func (r *Renderer) SelectExtension(names []string) {
	fmt.Fprintf(r.out, "\nSelect Extension: %s\n", strings.Join(names, ", "))
}

// Options lists the candidates of an ambiguous match.
func (r *Renderer) Options(names []string) {
	fmt.Fprintf(r.out, "Options: %s\n", strings.Join(names, ", "))
}

// Suggestions lists near-miss names after a failed lookup.
func (r *Renderer) Suggestions(names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(r.out, "Did you mean: %s\n", strings.Join(names, ", "))
}

// Menu writes a menu as a single line: the prompt followed by every item
// as [key]Text with the inline parameter, if any, in parentheses.
func (r *Renderer) Menu(m *types.Menu) {
	parts := make([]string, 0, len(m.Items))
	for _, item := range m.Items {
		textBase := schema.StripInlineParam(item.Text)
		suffix := ""
		if item.InlineParam != "" {
			suffix = fmt.Sprintf(" (%s)", item.InlineParam)
		}
		if item.Key != "" {
			keyBase := schema.StripInlineParam(item.Key)
			parts = append(parts, fmt.Sprintf("[%s]%s%s", keyBase, textBase, suffix))
		} else {
			parts = append(parts, textBase+suffix)
		}
	}
	fmt.Fprintf(r.out, "\n%s: %s\n", m.Prompt, strings.Join(parts, " "))
}
