// Package layout handles line layout of a document for the selection
// engine: blocks, whitespace collapsing, line wrapping in a monospace grid,
// word and sentence segmentation, bidi levels and hit testing.
package layout

import (
	"sort"

	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
)

// Options sets the geometry of the monospace grid.
type Options struct {
	// Width is the width of every block.
	Width int
	// LineHeight is the height of a line box.
	LineHeight int
	// CharWidth is the advance of a single-width character.
	CharWidth int
}

// DefaultOptions returns an 80-column grid.
func DefaultOptions() Options {
	return Options{Width: 640, LineHeight: 16, CharWidth: 8}
}

func (o Options) columns() int {
	if o.CharWidth <= 0 {
		return o.Width
	}
	return max(1, o.Width/o.CharWidth)
}

// Layout is the line layout of one document. It observes the document and
// recomputes lazily after a mutation.
type Layout struct {
	doc    *dom.Document
	opts   Options
	blocks []*block
	dirty  bool
}

var _ editing.Layout = (*Layout)(nil)

// New lays out doc and registers the layout as an observer of it.
func New(doc *dom.Document, opts Options) *Layout {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = def.LineHeight
	}
	if opts.CharWidth <= 0 {
		opts.CharWidth = def.CharWidth
	}
	l := &Layout{doc: doc, opts: opts, dirty: true}
	doc.AddObserver(l)
	l.Update()
	return l
}

// Options returns the grid geometry.
func (l *Layout) Options() Options { return l.opts }

// NeedsLayout reports whether the document changed since the last Update.
func (l *Layout) NeedsLayout() bool { return l.dirty }

// Invalidate marks the layout stale, for changes the document does not
// report such as attribute and style edits.
func (l *Layout) Invalidate() { l.dirty = true }

// Update recomputes the layout.
func (l *Layout) Update() {
	if !l.doc.IsActive() {
		l.blocks = nil
		l.dirty = false
		return
	}
	bl := &builder{opts: l.opts}
	l.blocks = bl.build(l.doc)
	l.dirty = false
}

func (l *Layout) ensure() {
	if l.dirty {
		l.Update()
	}
}

// LineCount returns the number of line boxes.
func (l *Layout) LineCount() int {
	l.ensure()
	if len(l.blocks) == 0 {
		return 0
	}
	last := l.blocks[len(l.blocks)-1]
	return last.lineBase + len(last.lines)
}

// Mutation notifications only invalidate.

func (l *Layout) OnTextReplaced(*dom.Node, int, int, int) { l.dirty = true }
func (l *Layout) OnTextNodeSplit(*dom.Node)               { l.dirty = true }
func (l *Layout) OnTextNodesMerged(*dom.Node, int)        { l.dirty = true }
func (l *Layout) OnNodeWillBeRemoved(*dom.Node)           { l.dirty = true }
func (l *Layout) OnChildrenWillBeRemoved(*dom.Node)       { l.dirty = true }
func (l *Layout) OnShadowTreeChanged(*dom.Element)        { l.dirty = true }
func (l *Layout) OnDocumentDetached(*dom.Document)        { l.dirty = true }

// point is a caret stop: the boundary before cell stop of block.
type point struct {
	block int
	stop  int
}

func (a point) less(b point) bool {
	if a.block != b.block {
		return a.block < b.block
	}
	return a.stop < b.stop
}

// locate finds the stop equivalent to p. Positions between blocks resolve
// to the start of the following block. ok is false when p is not rendered.
func (l *Layout) locate(p editing.Position) (point, bool) {
	l.ensure()
	if p.IsNull() || len(l.blocks) == 0 {
		return point{}, false
	}
	p = p.ToOffsetInAnchor(editing.FlatTree)
	if p.IsNull() || !rendered(p.Anchor()) {
		return point{}, false
	}
	cmp := func(a, b editing.Position) int {
		c, err := editing.ComparePositions(a, b, editing.FlatTree)
		if err != nil {
			return 0
		}
		return c
	}

	for i, b := range l.blocks {
		if cmp(p, b.first) < 0 {
			// Between blocks.
			return point{block: i}, true
		}
		if cmp(p, b.last) > 0 {
			continue
		}
		stop := sort.Search(len(b.cells), func(k int) bool {
			return cmp(b.cells[k].end, p) > 0
		})
		return point{block: i, stop: stop}, true
	}
	last := len(l.blocks) - 1
	return point{block: last, stop: len(l.blocks[last].cells)}, true
}

// backward returns the earliest DOM position of a stop. A stop after a
// forced break is represented on the line it starts.
func (l *Layout) backward(pt point) editing.Position {
	b := l.blocks[pt.block]
	switch {
	case pt.stop > 0 && pt.stop < len(b.cells) && b.cells[pt.stop-1].kind == breakCell:
		return b.cells[pt.stop].start
	case pt.stop > 0:
		return b.cells[pt.stop-1].end
	case len(b.cells) > 0:
		return b.cells[0].start
	}
	return b.first
}

// forward returns the latest DOM position of a stop.
func (l *Layout) forward(pt point) editing.Position {
	b := l.blocks[pt.block]
	switch {
	case pt.stop < len(b.cells):
		return b.cells[pt.stop].start
	case pt.stop > 0:
		return b.cells[pt.stop-1].end
	}
	return b.first
}

// position returns the canonical position of a stop: the backward one,
// unless that leaves the editable or user-select:all region ref is in.
func (l *Layout) position(pt point, ref editing.Position) editing.Position {
	back := l.backward(pt)
	if ref.IsNull() || sameRegion(back, ref) {
		return back
	}
	if fwd := l.forward(pt); sameRegion(fwd, ref) {
		return fwd
	}
	return back
}

func sameRegion(a, b editing.Position) bool {
	ac, bc := a.ContainerIn(editing.FlatTree), b.ContainerIn(editing.FlatTree)
	return dom.RootEditableElement(ac) == dom.RootEditableElement(bc) &&
		dom.UserSelectAllRoot(ac) == dom.UserSelectAllRoot(bc)
}

func (l *Layout) bounds() (first, last point) {
	lb := len(l.blocks) - 1
	return point{}, point{block: lb, stop: len(l.blocks[lb].cells)}
}

func (l *Layout) next(pt point) (point, bool) {
	if pt.stop < len(l.blocks[pt.block].cells) {
		return point{pt.block, pt.stop + 1}, true
	}
	if pt.block+1 < len(l.blocks) {
		return point{pt.block + 1, 0}, true
	}
	return pt, false
}

func (l *Layout) prev(pt point) (point, bool) {
	if pt.stop > 0 {
		return point{pt.block, pt.stop - 1}, true
	}
	if pt.block > 0 {
		return point{pt.block - 1, len(l.blocks[pt.block-1].cells)}, true
	}
	return pt, false
}
