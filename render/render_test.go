package render

import (
	"testing"

	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/chrisuehlinger/selectionkit/layout"
)

func setup(t *testing.T, src string, opts layout.Options) (*dom.Document, *layout.View) {
	t.Helper()
	doc, err := dom.ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	return doc, layout.NewView(layout.New(doc, opts))
}

func firstText(doc *dom.Document, id string) *dom.Node {
	return doc.GetElementByID(id).AsNode().FirstChild()
}

func TestText_Selection(t *testing.T) {
	doc, view := setup(t, `<div id="a">abcde fghi</div><div id="b">xyz</div>`, layout.Options{})
	a, b := firstText(doc, "a"), firstText(doc, "b")

	view.SetSelection(editing.NewPosition(a, 1), editing.NewPosition(a, 3))
	if got, want := Text(view), "a[bc]de fghi\nxyz"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	view.SetSelection(editing.NewPosition(a, 6), editing.NewPosition(b, 1))
	if got, want := Text(view), "abcde [fghi]\n[x]yz"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	view.ClearSelection()
	if got, want := Text(view), "abcde fghi\nxyz"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if view.Commits() != 3 {
		t.Errorf("Expected 3 commits, got %d", view.Commits())
	}
}

func TestText_Caret(t *testing.T) {
	doc, view := setup(t, `<div id="a">abcde fghi</div>`, layout.Options{Width: 40, CharWidth: 8, LineHeight: 16})
	a := firstText(doc, "a")

	tests := []struct {
		name   string
		offset int
		aff    editing.Affinity
		want   string
	}{
		{"inside the first line", 2, editing.Downstream, "ab|cde \nfghi"},
		{"wrap stop downstream", 6, editing.Downstream, "abcde \n|fghi"},
		{"wrap stop upstream", 6, editing.Upstream, "abcde |\nfghi"},
		{"end of text", 10, editing.Downstream, "abcde \nfghi|"},
	}
	for _, tt := range tests {
		view.SetCaret(editing.NewPosition(a, tt.offset), tt.aff, true)
		if got := Text(view); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}

	view.SetCaret(editing.NewPosition(a, 2), editing.Downstream, false)
	if got, want := Text(view), "abcde \nfghi"; got != want {
		t.Errorf("Expected a hidden caret to paint nothing, got %q", got)
	}
}

func TestText_RTLAndAtomic(t *testing.T) {
	_, view := setup(t, `<div dir="rtl">abc</div><div>x<img>y</div>`, layout.Options{Width: 80, CharWidth: 8, LineHeight: 16})
	if got, want := Text(view), "       abc\nx□y"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
