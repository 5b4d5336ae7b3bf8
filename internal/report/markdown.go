package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// minWrapWidth bounds markdown word wrapping on narrow terminals.
const minWrapWidth = 40

// MarkdownRenderer renders markdown with a glamour standard style. The underlying
// renderer is rebuilt only when the style or wrap width changes.
type MarkdownRenderer struct {
	// Style is a glamour standard style name; empty selects "notty".
	Style string

	style    string
	width    int
	renderer *glamour.TermRenderer
}

// Render wraps markdown at width, never narrower than minWrapWidth.
func (r *MarkdownRenderer) Render(markdown string, width int) (string, error) {
	style := strings.TrimSpace(r.Style)
	if style == "" {
		style = "notty"
	}
	if width < minWrapWidth {
		width = minWrapWidth
	}
	if r.renderer == nil || r.style != style || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", fmt.Errorf("build markdown renderer: %w", err)
		}
		r.renderer, r.style, r.width = renderer, style, width
	}
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// RenderMarkdown renders markdown once for a terminal of the given width.
func RenderMarkdown(markdown string, style string, width int) (string, error) {
	r := &MarkdownRenderer{Style: style}
	out, err := r.Render(markdown, width)
	if err != nil {
		return "", err
	}
	return out + "\n", nil
}
