package layout

import "github.com/chrisuehlinger/selectionkit/editing"

// View holds the selection committed to the render tree and the caret, and
// produces the painted lines.
type View struct {
	layout *Layout

	start, end   editing.Position
	caret        editing.Position
	caretAff     editing.Affinity
	caretVisible bool
	commits      int
}

var _ editing.CaretView = (*View)(nil)

// NewView returns an empty view over l.
func NewView(l *Layout) *View {
	return &View{layout: l}
}

// SetSelection highlights the range from start to end.
func (v *View) SetSelection(start, end editing.Position) {
	v.start, v.end = start, end
	v.commits++
}

// ClearSelection removes the highlighted range.
func (v *View) ClearSelection() {
	v.start, v.end = editing.Position{}, editing.Position{}
	v.commits++
}

// SetCaret places the caret; a null position hides it.
func (v *View) SetCaret(p editing.Position, a editing.Affinity, visible bool) {
	v.caret, v.caretAff, v.caretVisible = p, a, visible && !p.IsNull()
}

// Selection returns the highlighted range.
func (v *View) Selection() (start, end editing.Position) { return v.start, v.end }

// Commits counts selection updates pushed to the view.
func (v *View) Commits() int { return v.commits }

// Columns returns the width of a line in cells.
func (v *View) Columns() int { return v.layout.opts.columns() }

// PaintedCell is one painted grid cell.
type PaintedCell struct {
	Text     string
	Selected bool
	Atomic   bool
}

// PaintedLine is one line box ready for painting.
type PaintedLine struct {
	Cells []PaintedCell
	// Caret is the index of the cell the caret is painted before, or -1.
	Caret int
	RTL   bool
}

// Lines returns every line box with selection and caret state.
func (v *View) Lines() []PaintedLine {
	l := v.layout
	l.ensure()

	var selStart, selEnd point
	hasSel := false
	if !v.start.IsNull() && !v.end.IsNull() {
		s, ok1 := l.locate(v.start)
		e, ok2 := l.locate(v.end)
		if ok1 && ok2 && s.less(e) {
			selStart, selEnd, hasSel = s, e, true
		}
	}
	caretAt, caretLine := point{}, -1
	if v.caretVisible {
		if pt, ok := l.locate(v.caret); ok {
			caretAt = pt
			caretLine = l.blocks[pt.block].lineBase + lineOf(l.blocks[pt.block], pt.stop, v.caretAff)
		}
	}

	var out []PaintedLine
	for bi, b := range l.blocks {
		for li, ln := range b.lines {
			pl := PaintedLine{Caret: -1, RTL: b.rtl}
			for s := ln.start; s < ln.end; s++ {
				c := b.cells[s]
				if c.kind == breakCell {
					continue
				}
				here := point{bi, s}
				pl.Cells = append(pl.Cells, PaintedCell{
					Text:     c.text,
					Selected: hasSel && !here.less(selStart) && here.less(selEnd),
					Atomic:   c.kind == atomicCell,
				})
			}
			if caretLine == b.lineBase+li {
				pl.Caret = caretAt.stop - ln.start
			}
			out = append(out, pl)
		}
	}
	return out
}
