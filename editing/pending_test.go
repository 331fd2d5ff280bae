package editing_test

import (
	"testing"

	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/chrisuehlinger/selectionkit/layout"
)

// highlightView is a RenderView without a caret.
type highlightView struct {
	start, end editing.Position
	cleared    int
	set        int
}

func (v *highlightView) SetSelection(start, end editing.Position) {
	v.start, v.end = start, end
	v.set++
}

func (v *highlightView) ClearSelection() {
	v.start, v.end = editing.Position{}, editing.Position{}
	v.cleared++
}

func TestPending_CommitOnce(t *testing.T) {
	f := newFixture(t, `<div id="a">abcdef</div>`, layout.Options{})
	a := f.text(t, "a")
	view := &highlightView{}

	if f.state.CommitAppearance(view) {
		t.Error("Expected nothing to commit before a selection is set")
	}
	f.selectRange(pos(a, 1), pos(a, 3))
	if !f.state.CommitAppearance(view) {
		t.Fatal("Expected the appearance to be committed")
	}
	if view.start != pos(a, 1) || view.end != pos(a, 3) {
		t.Errorf("Expected the highlight (a, 1)..(a, 3), got %v..%v", view.start, view.end)
	}
	if f.state.CommitAppearance(view) {
		t.Error("Expected a second commit to be a no-op")
	}
	if view.set != 1 {
		t.Errorf("Expected one highlight update, got %d", view.set)
	}
}

func TestPending_WaitsForLayout(t *testing.T) {
	f := newFixture(t, `<div id="a">abcdef</div>`, layout.Options{})
	a := f.text(t, "a")
	view := &highlightView{}

	f.selectRange(pos(a, 1), pos(a, 3))
	f.layout.Invalidate()
	if f.state.CommitAppearance(view) {
		t.Error("Expected the commit to be deferred while layout is dirty")
	}
	if !f.state.Pending().IsDirty() {
		t.Error("Expected the commit to stay scheduled")
	}
	f.layout.Update()
	if !f.state.CommitAppearance(view) {
		t.Error("Expected the commit to run after layout")
	}
}

func TestPending_ClearsWhenEndpointsMeet(t *testing.T) {
	f := newFixture(t, `<div id="a"><b id="b">ab</b>cd</div>`, layout.Options{})
	b := f.text(t, "b")
	cd := b.ParentNode().NextSibling()
	view := &highlightView{}

	f.selectRange(pos(b, 2), pos(cd, 1))
	cd.AsText().DeleteData(0, 1)
	if !f.state.IsRange() {
		t.Fatalf("Expected the repaired selection to stay a range, got %v", f.state.ComputeVisibleSelectionInDOMTree())
	}
	f.layout.Update()
	if !f.state.CommitAppearance(view) {
		t.Fatal("Expected the appearance to be committed")
	}
	if view.set != 0 || view.cleared == 0 {
		t.Errorf("Expected the highlight to be cleared, got set=%d cleared=%d", view.set, view.cleared)
	}
}

func TestPending_SnapsToRenderedPositions(t *testing.T) {
	f := newFixture(t, `<div id="a"><b id="b">ab</b>cd</div>`, layout.Options{})
	b := f.text(t, "b")
	cd := b.ParentNode().NextSibling()
	view := &highlightView{}

	f.selectRange(pos(b, 2), pos(cd, 2))
	f.state.CommitAppearance(view)
	if view.start != pos(cd, 0) {
		t.Errorf("Expected the highlight to start in the following node, got %v", view.start)
	}
	if view.end != pos(cd, 2) {
		t.Errorf("Expected the highlight to end at (cd, 2), got %v", view.end)
	}
}

func TestPending_TextControlClamp(t *testing.T) {
	f := newFixture(t, `<div id="a">ab</div><textarea id="t">xyz</textarea>`, layout.Options{})
	x := f.text(t, "t")
	ta := f.node(t, "t")
	view := &highlightView{}

	f.state.SetSelection(editing.NewSelectionBuilder(editing.AuthoredTree).
		SetBaseAndExtent(pos(x, 1), editing.AfterNodePosition(ta)).Build(), editing.SetSelectionOptions{})
	f.state.CommitAppearance(view)
	if view.start != pos(x, 1) {
		t.Errorf("Expected the highlight to start at (x, 1), got %v", view.start)
	}
	if got := view.end; got.ContainerIn(editing.FlatTree) != x && got.ContainerIn(editing.FlatTree) != ta {
		t.Errorf("Expected the highlight to stay inside the text control, got %v", got)
	}
}

func TestPending_CaretView(t *testing.T) {
	f := newFixture(t, `<div id="e" contenteditable>abc</div>`, layout.Options{})
	e := f.text(t, "e")
	view := layout.NewView(f.layout)

	f.caret(pos(e, 1))
	f.state.CommitAppearance(view)
	lines := view.Lines()
	if len(lines) != 1 || lines[0].Caret != 1 {
		t.Errorf("Expected the caret painted before the second cell, got %+v", lines)
	}

	f.selectRange(pos(e, 0), pos(e, 2))
	f.state.CommitAppearance(view)
	lines = view.Lines()
	if lines[0].Caret != -1 {
		t.Errorf("Expected no caret for a range, got %d", lines[0].Caret)
	}
	if !lines[0].Cells[0].Selected || !lines[0].Cells[1].Selected || lines[0].Cells[2].Selected {
		t.Errorf("Expected the first two cells selected, got %+v", lines[0].Cells)
	}
}
