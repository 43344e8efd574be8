package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// helpMarkdown is the :help screen content.
const helpMarkdown = `# kalkyl

A vim-style terminal spreadsheet editor.

## Movement

| Key | Action |
|-----|--------|
| h j k l / arrows | move cursor |
| gg / G | first / last row |
| 0 / ^ / $ | first column / first filled / last filled |
| ctrl+arrows | jump to the nearest filled cell |
| [ / ] | previous / next sheet |

## Editing

| Key | Action |
|-----|--------|
| enter | edit the cell (loads the sheet first if needed) |
| y / d / p | copy / cut / paste |
| u / ctrl+r | undo / redo |

## Search

| Key | Action |
|-----|--------|
| / and ? | search forward / backward |
| n / N | next / previous match (wraps) |

## Commands

| Command | Action |
|---------|--------|
| :w [path] | save, optionally to a new path |
| :q, :q!, :wq, :x | quit, force quit, save and quit |
| :sheet <n or name> | switch sheet |
| :dr [rows], :dc [cols] | delete rows / columns ("3", "2,4,7", "2-5") |
| :ds | delete the current sheet |
| :help | this screen |

Sheets marked with * in the tab strip are not loaded yet; press enter on
them to load.
`

// markdownRenderer renders help markdown for the terminal and recreates
// the renderer when wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown into ANSI-styled text at the requested wrap
// width, falling back to the raw text when styling fails.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := width
	if wrapWidth < 24 {
		wrapWidth = 24
	}

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

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
