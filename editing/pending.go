package editing

import "github.com/chrisuehlinger/selectionkit/dom"

// PendingSelection defers pushing the selection to the render view until
// layout is clean. Marking it dirty is cheap and may happen many times per
// frame; Commit does the work once.
type PendingSelection struct {
	editor      *SelectionEditor
	caret       *CaretBlink
	dirty       bool
	renderDirty bool
}

func newPendingSelection(editor *SelectionEditor, caret *CaretBlink) *PendingSelection {
	return &PendingSelection{editor: editor, caret: caret}
}

// MarkDirty schedules a commit.
func (p *PendingSelection) MarkDirty() {
	p.dirty = true
}

// MarkRenderTreeDirty schedules a commit that first clears the highlight
// already painted, because the nodes it covers changed.
func (p *PendingSelection) MarkRenderTreeDirty() {
	p.dirty = true
	p.renderDirty = true
}

// IsDirty reports whether a commit is scheduled.
func (p *PendingSelection) IsDirty() bool {
	return p.dirty
}

// Commit pushes the selection to view. It returns false, leaving the
// commit scheduled, while layout is out of date; it also returns false when
// nothing was scheduled.
func (p *PendingSelection) Commit(view RenderView) bool {
	if !p.dirty {
		return false
	}
	layout := p.editor.layout
	if layout.NeedsLayout() {
		return false
	}
	p.dirty = false
	if p.renderDirty {
		view.ClearSelection()
		p.renderDirty = false
	}

	vs := p.editor.Selection(FlatTree)
	if cv, ok := view.(CaretView); ok {
		if vs.IsCaret() {
			cv.SetCaret(vs.start, vs.affinity, p.caret.IsVisible())
		} else {
			cv.SetCaret(Position{}, Downstream, false)
		}
	}
	if !vs.IsRange() {
		view.ClearSelection()
		return true
	}

	start, end := vs.start, vs.end
	if tc := enclosingTextControl(start, end); tc != nil {
		start = clampToNode(start, tc)
		end = clampToNode(end, tc)
	} else {
		if s := layout.MostForwardCaretPosition(start); !s.IsNull() {
			start = s
		}
		if e := layout.MostBackwardCaretPosition(end); !e.IsNull() {
			end = e
		}
		if comparePositions(start, end, FlatTree) >= 0 {
			view.ClearSelection()
			return true
		}
	}
	view.SetSelection(start, end)
	return true
}

func enclosingTextControl(start, end Position) *dom.Node {
	if tc := dom.EnclosingTextControl(start.ContainerIn(FlatTree)); tc != nil {
		return tc.AsNode()
	}
	if tc := dom.EnclosingTextControl(end.ContainerIn(FlatTree)); tc != nil {
		return tc.AsNode()
	}
	return nil
}

// clampToNode keeps p within n's contents.
func clampToNode(p Position, n *dom.Node) Position {
	if dom.IsInclusiveAncestor(dom.Flat, n, p.ContainerIn(FlatTree)) {
		return p
	}
	first := FirstPositionInNode(n)
	if comparePositions(p, first, FlatTree) < 0 {
		return first
	}
	return LastPositionInNode(n, FlatTree)
}
