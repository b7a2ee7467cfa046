package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders appointment notes and next steps, rebuilding the
// glamour renderer only when the wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(24, width)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}
	rendered, err := r.renderer.Render(bulletsToMarkdown(markdown))
	if err != nil {
		return markdown
	}
	return strings.Trim(rendered, "\n")
}

// bulletsToMarkdown rewrites "• item" lines produced by the next-steps
// generator as markdown list items.
func bulletsToMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "•"); ok {
			lines[i] = "- " + strings.TrimSpace(rest)
		}
	}
	return strings.Join(lines, "\n")
}
