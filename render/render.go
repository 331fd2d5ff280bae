// Package render paints the laid-out lines of a view as text: selected
// cells are bracketed and a visible caret is drawn as a bar.
package render

import (
	"strings"

	"github.com/chrisuehlinger/selectionkit/layout"
	"github.com/rivo/uniseg"
)

// Markers used when painting.
const (
	SelectionStart = "["
	SelectionEnd   = "]"
	Caret          = "|"
	Atomic         = "□"
)

// Text paints every line of view, one per output line. Right-to-left lines
// are aligned to the right edge of the view.
func Text(view *layout.View) string {
	var sb strings.Builder
	for i, ln := range view.Lines() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		s := Line(ln)
		if ln.RTL {
			if pad := view.Columns() - uniseg.StringWidth(s); pad > 0 {
				s = strings.Repeat(" ", pad) + s
			}
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// Line paints a single line.
func Line(ln layout.PaintedLine) string {
	var sb strings.Builder
	selected := false
	for i, c := range ln.Cells {
		if i == ln.Caret {
			sb.WriteString(Caret)
		}
		switch {
		case c.Selected && !selected:
			sb.WriteString(SelectionStart)
		case !c.Selected && selected:
			sb.WriteString(SelectionEnd)
		}
		selected = c.Selected
		if c.Atomic {
			sb.WriteString(Atomic)
		} else {
			sb.WriteString(c.Text)
		}
	}
	if selected {
		sb.WriteString(SelectionEnd)
	}
	if ln.Caret >= len(ln.Cells) {
		sb.WriteString(Caret)
	}
	return sb.String()
}
