package editing

import (
	"errors"
	"testing"

	"github.com/chrisuehlinger/selectionkit/dom"
)

const shadowFixture = `<div id="host"><template shadowrootmode="open"><p id="inner">in</p><slot></slot></template><span id="light">light</span><b slot="missing">x</b></div>`

func parseFixture(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	return doc
}

type shadowNodes struct {
	host, root, inner, innerText, slot, light, lightText, unassigned, unassignedText *dom.Node
}

func shadowParts(t *testing.T, doc *dom.Document) shadowNodes {
	t.Helper()
	host := doc.GetElementByID("host")
	sr := host.ShadowRoot()
	if sr == nil {
		t.Fatal("Expected a shadow root on #host")
	}
	inner := sr.GetElementByID("inner").AsNode()
	light := doc.GetElementByID("light").AsNode()
	return shadowNodes{
		host:           host.AsNode(),
		root:           sr.AsNode(),
		inner:          inner,
		innerText:      inner.FirstChild(),
		slot:           inner.NextSibling(),
		light:          light,
		lightText:      light.FirstChild(),
		unassigned:     light.NextSibling(),
		unassignedText: light.NextSibling().FirstChild(),
	}
}

func TestComparePositions(t *testing.T) {
	doc := parseFixture(t, shadowFixture)
	n := shadowParts(t, doc)

	tests := []struct {
		name   string
		a, b   Position
		space  TreeSpace
		expect int
	}{
		{"same text node", NewPosition(n.innerText, 1), NewPosition(n.innerText, 2), AuthoredTree, -1},
		{"equal", NewPosition(n.innerText, 1), NewPosition(n.innerText, 1), FlatTree, 0},
		{"before node equals parent offset", BeforeNodePosition(n.light), NewPosition(n.host, 0), AuthoredTree, 0},
		{"after node", AfterNodePosition(n.light), BeforeNodePosition(n.light), AuthoredTree, 1},
		{"shadow content before light content", NewPosition(n.innerText, 0), NewPosition(n.lightText, 0), AuthoredTree, -1},
		{"flat host start before shadow content", NewPosition(n.host, 0), NewPosition(n.innerText, 0), FlatTree, -1},
		{"authored host start after shadow content", NewPosition(n.host, 0), NewPosition(n.innerText, 0), AuthoredTree, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComparePositions(tt.a, tt.b, tt.space)
			if err != nil {
				t.Fatalf("ComparePositions failed: %v", err)
			}
			if got != tt.expect {
				t.Errorf("Expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestComparePositions_WrongDocument(t *testing.T) {
	a := parseFixture(t, `<p>a</p>`)
	b := parseFixture(t, `<p>b</p>`)
	pa := NewPosition(a.Body().AsNode(), 0)
	pb := NewPosition(b.Body().AsNode(), 0)

	_, err := ComparePositions(pa, pb, AuthoredTree)
	var domErr *dom.DOMError
	if !errors.As(err, &domErr) {
		t.Fatalf("Expected a DOMError, got %v", err)
	}
	if domErr.Name != "WrongDocumentError" {
		t.Errorf("Expected WrongDocumentError, got %s", domErr.Name)
	}
	if _, err := ComparePositions(Position{}, pa, AuthoredTree); err == nil {
		t.Error("Expected an error comparing a null position")
	}
}

func TestPosition_Accessors(t *testing.T) {
	doc := parseFixture(t, `<div id="a">abc</div>`)
	div := doc.GetElementByID("a").AsNode()
	text := div.FirstChild()

	p := AfterNodePosition(text)
	if p.ContainerIn(AuthoredTree) != div {
		t.Errorf("Expected the container to be the div, got %v", p.ContainerIn(AuthoredTree))
	}
	if p.OffsetIn(AuthoredTree) != 1 {
		t.Errorf("Expected offset 1, got %d", p.OffsetIn(AuthoredTree))
	}
	if got := p.ToOffsetInAnchor(AuthoredTree); got != NewPosition(div, 1) {
		t.Errorf("Expected div[1], got %v", got)
	}
	if got := LastPositionInNode(text, FlatTree); got != NewPosition(text, 3) {
		t.Errorf("Expected the end of the text, got %v", got)
	}
	if !(Position{}).IsNull() || NewPosition(nil, 3) != (Position{}) {
		t.Error("Expected the zero position to be null")
	}
	if got, want := NewPosition(div, 0).String(), "DIV#a[0]"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if got, want := BeforeNodePosition(text).String(), `before("abc")`; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestProjectPosition(t *testing.T) {
	doc := parseFixture(t, shadowFixture)
	n := shadowParts(t, doc)

	tests := []struct {
		name     string
		in       Position
		from, to TreeSpace
		expect   Position
	}{
		{"same space is identity", NewPosition(n.host, 1), AuthoredTree, AuthoredTree, NewPosition(n.host, 1)},
		{"text in both trees", NewPosition(n.lightText, 2), AuthoredTree, FlatTree, NewPosition(n.lightText, 2)},
		{"host offset goes through the light child", NewPosition(n.host, 0), AuthoredTree, FlatTree, BeforeNodePosition(n.light)},
		{"shadow root maps to the host", NewPosition(n.root, 1), AuthoredTree, FlatTree, NewPosition(n.host, 1)},
		{"slot offset goes through the assigned node", NewPosition(n.slot, 0), FlatTree, AuthoredTree, BeforeNodePosition(n.light)},
		{"unassigned child falls back to the host", NewPosition(n.unassignedText, 0), AuthoredTree, FlatTree, NewPosition(n.host, 0)},
		{"before an unassigned node falls back", BeforeNodePosition(n.unassigned), AuthoredTree, FlatTree, NewPosition(n.host, 0)},
		{"before a node in both trees", BeforeNodePosition(n.inner), AuthoredTree, FlatTree, BeforeNodePosition(n.inner)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProjectPosition(tt.in, tt.from, tt.to); got != tt.expect {
				t.Errorf("Expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestProjectedPair_LazyFlatCopy(t *testing.T) {
	doc := parseFixture(t, shadowFixture)
	n := shadowParts(t, doc)

	var pair ProjectedPair
	pair.Clear()
	if !pair.In(FlatTree).IsNone() || pair.In(FlatTree).Space() != FlatTree {
		t.Fatal("Expected an empty flat selection after Clear")
	}

	pair.Set(CreateVisibleSelection(NewSelectionBuilder(AuthoredTree).Collapse(NewPosition(n.host, 0)).Build(), nil), true)
	if got := pair.In(FlatTree).Start(); got != BeforeNodePosition(n.light) {
		t.Errorf("Expected the flat start before the light child, got %v", got)
	}

	pair.SetAuthored(visibleSelectionWithoutValidation(NewPosition(n.innerText, 1), NewPosition(n.innerText, 1), AuthoredTree))
	if !pair.flatStale {
		t.Error("Expected SetAuthored to mark the flat copy stale")
	}
	if got := pair.In(FlatTree).Start(); got != NewPosition(n.innerText, 1) {
		t.Errorf("Expected the flat copy to be recomputed, got %v", got)
	}
	if pair.flatStale {
		t.Error("Expected the flat copy to be fresh after In")
	}
}

func TestSelectionBuilder(t *testing.T) {
	doc := parseFixture(t, `<div id="a">abc</div>`)
	div := doc.GetElementByID("a").AsNode()
	text := div.FirstChild()

	sel := NewSelectionBuilder(AuthoredTree).Extend(NewPosition(text, 2)).Build()
	if sel.Type() != CaretSelection || sel.Base() != NewPosition(text, 2) {
		t.Errorf("Expected Extend without a base to collapse, got %v", sel.Type())
	}

	sel = NewSelectionBuilderFrom(sel).Extend(NewPosition(text, 0)).SetIsDirectional(true).SetAffinity(Upstream).Build()
	if sel.Start() != NewPosition(text, 0) || sel.End() != NewPosition(text, 2) {
		t.Errorf("Expected start 0 and end 2, got %v and %v", sel.Start(), sel.End())
	}
	if sel.IsBaseFirst() {
		t.Error("Expected the base to come after the extent")
	}
	if !sel.IsDirectional() || sel.Affinity() != Upstream {
		t.Error("Expected the directional flag and affinity to be kept")
	}

	sel = NewSelectionBuilder(AuthoredTree).SelectAllChildren(div).Build()
	if sel.Base() != NewPosition(div, 0) || sel.Extent() != NewPosition(div, 1) {
		t.Errorf("Expected div[0]..div[1], got %v..%v", sel.Base(), sel.Extent())
	}

	sel = NewSelectionBuilderFrom(sel).SetBaseAndExtent(Position{}, NewPosition(text, 1)).Build()
	if !sel.IsNone() {
		t.Error("Expected a null base to clear the selection")
	}
}

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		name   string
		expect Granularity
		ok     bool
	}{
		{"character", Character, true},
		{"word", Word, true},
		{"lineboundary", LineBoundary, true},
		{"documentboundary", DocumentBoundary, true},
		{"Word", Character, false},
		{"page", Character, false},
	}
	for _, tt := range tests {
		got, ok := ParseGranularity(tt.name)
		if got != tt.expect || ok != tt.ok {
			t.Errorf("ParseGranularity(%q): expected (%v, %v), got (%v, %v)", tt.name, tt.expect, tt.ok, got, ok)
		}
	}
	if !ParagraphBoundary.IsBoundary() || Paragraph.IsBoundary() {
		t.Error("Expected only boundary granularities to report IsBoundary")
	}
	if Sentence.String() != "sentence" {
		t.Errorf("Expected sentence, got %s", Sentence)
	}
}

func TestCreateVisibleSelection_Degrades(t *testing.T) {
	doc := parseFixture(t, `<div id="a">ab</div>`)
	other := parseFixture(t, `<div id="b">cd</div>`)
	ab := doc.GetElementByID("a").AsNode().FirstChild()
	cd := other.GetElementByID("b").AsNode().FirstChild()
	detached := doc.CreateTextNode("loose")

	tests := []struct {
		name         string
		base, extent Position
		expectType   SelectionType
		expectStart  Position
	}{
		{"extent in another document", NewPosition(ab, 1), NewPosition(cd, 1), CaretSelection, NewPosition(ab, 1)},
		{"base not connected", NewPosition(detached, 1), NewPosition(ab, 2), CaretSelection, NewPosition(ab, 2)},
		{"neither endpoint valid", NewPosition(detached, 0), NewPosition(detached, 1), NoSelection, Position{}},
		{"offset past the end is clamped", NewPosition(ab, 0), NewPosition(ab, 99), RangeSelection, NewPosition(ab, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewSelectionBuilder(AuthoredTree).SetBaseAndExtent(tt.base, tt.extent).Build()
			vs := CreateVisibleSelection(sel, nil)
			if vs.Type() != tt.expectType {
				t.Fatalf("Expected %v, got %v", tt.expectType, vs.Type())
			}
			if vs.Start() != tt.expectStart {
				t.Errorf("Expected start %v, got %v", tt.expectStart, vs.Start())
			}
		})
	}

	clamped := CreateVisibleSelection(NewSelectionBuilder(AuthoredTree).SetBaseAndExtent(NewPosition(ab, 0), NewPosition(ab, 99)).Build(), nil)
	if clamped.End() != NewPosition(ab, 2) {
		t.Errorf("Expected the end clamped to 2, got %v", clamped.End())
	}
}

func TestCreateVisibleSelection_EditingBoundaries(t *testing.T) {
	doc := parseFixture(t, `<div id="a">ab<span id="e" contenteditable>cd</span>ef</div>`)
	span := doc.GetElementByID("e").AsNode()
	ab := span.PreviousSibling()
	cd := span.FirstChild()
	ef := span.NextSibling()

	tests := []struct {
		name                 string
		base, extent         Position
		expectBase           Position
		expectExtent         Position
		expectStart          Position
		expectEnd            Position
	}{
		{
			"forward out of the editable root stops at its end",
			NewPosition(cd, 1), NewPosition(ef, 1),
			NewPosition(cd, 1), NewPosition(span, 1),
			NewPosition(cd, 1), NewPosition(span, 1),
		},
		{
			"backward out of the editable root stops at its start",
			NewPosition(cd, 1), NewPosition(ab, 1),
			NewPosition(cd, 1), NewPosition(span, 0),
			NewPosition(span, 0), NewPosition(cd, 1),
		},
		{
			"forward into the editable root stops before it",
			NewPosition(ab, 1), NewPosition(cd, 1),
			NewPosition(ab, 1), BeforeNodePosition(span),
			NewPosition(ab, 1), BeforeNodePosition(span),
		},
		{
			"backward into the editable root stops after it",
			NewPosition(ef, 1), NewPosition(cd, 1),
			NewPosition(ef, 1), AfterNodePosition(span),
			AfterNodePosition(span), NewPosition(ef, 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := CreateVisibleSelection(NewSelectionBuilder(AuthoredTree).SetBaseAndExtent(tt.base, tt.extent).Build(), nil)
			if vs.Base() != tt.expectBase || vs.Extent() != tt.expectExtent {
				t.Errorf("Expected base %v extent %v, got %v %v", tt.expectBase, tt.expectExtent, vs.Base(), vs.Extent())
			}
			if vs.Start() != tt.expectStart || vs.End() != tt.expectEnd {
				t.Errorf("Expected start %v end %v, got %v %v", tt.expectStart, tt.expectEnd, vs.Start(), vs.End())
			}
		})
	}
}

func TestVisibleSelection_ToRange(t *testing.T) {
	doc := parseFixture(t, `<div id="a">abc</div>`)
	div := doc.GetElementByID("a").AsNode()
	text := div.FirstChild()

	vs := CreateVisibleSelection(NewSelectionBuilder(AuthoredTree).SetBaseAndExtent(NewPosition(text, 2), AfterNodePosition(text)).Build(), nil)
	r, err := vs.ToRange()
	if err != nil {
		t.Fatalf("ToRange failed: %v", err)
	}
	if r.StartContainer() != text || r.StartOffset() != 2 {
		t.Errorf("Expected start (text, 2), got (%v, %d)", r.StartContainer(), r.StartOffset())
	}
	if r.EndContainer() != div || r.EndOffset() != 1 {
		t.Errorf("Expected end (div, 1), got (%v, %d)", r.EndContainer(), r.EndOffset())
	}

	if _, err := (VisibleSelection{}).ToRange(); err == nil {
		t.Error("Expected an error for an empty selection")
	}
}
