package layout

import (
	"testing"

	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/google/go-cmp/cmp"
)

func parse(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	return doc
}

func textOf(t *testing.T, doc *dom.Document, id string) *dom.Node {
	t.Helper()
	el := doc.GetElementByID(id)
	if el == nil {
		t.Fatalf("#%s not found", id)
	}
	for c := el.AsNode().FirstChild(); c != nil; c = c.NextSibling() {
		if c.IsText() {
			return c
		}
	}
	t.Fatalf("#%s has no text child", id)
	return nil
}

func pos(n *dom.Node, offset int) editing.Position {
	return editing.NewPosition(n, offset)
}

// narrow lays out five columns per line.
var narrow = Options{Width: 40, LineHeight: 16, CharWidth: 8}

func TestLayout_CharacterSteps(t *testing.T) {
	doc := parse(t, `<div id="a">abcde fghi</div><div id="b">xy</div>`)
	l := New(doc, Options{})
	a, b := textOf(t, doc, "a"), textOf(t, doc, "b")

	tests := []struct {
		name string
		got  editing.Position
		want editing.Position
	}{
		{"next inside text", l.NextPosition(pos(a, 5)), pos(a, 6)},
		{"next crosses block", l.NextPosition(pos(a, 10)), pos(b, 0)},
		{"next at document end", l.NextPosition(pos(b, 2)), editing.Position{}},
		{"previous crosses block", l.PreviousPosition(pos(b, 0)), pos(a, 10)},
		{"previous at document start", l.PreviousPosition(pos(a, 0)), editing.Position{}},
		{"start of document", l.StartOfDocument(pos(b, 1)), pos(a, 0)},
		{"end of document", l.EndOfDocument(pos(a, 1)), pos(b, 2)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
	if r := l.CharacterAfter(pos(a, 5)); r != ' ' {
		t.Errorf("Expected a space after offset 5, got %q", r)
	}
	if r := l.CharacterAfter(pos(a, 10)); r != 0 {
		t.Errorf("Expected no character at the block end, got %q", r)
	}
}

func TestLayout_CanonicalPosition(t *testing.T) {
	doc := parse(t, `<div id="a"><b id="b">ab</b>cd</div><div id="w">  ab   cd  </div><div id="h">x<span id="hidden" style="display:none">zz</span>y</div>`)
	l := New(doc, Options{})
	b := textOf(t, doc, "b")
	cd := b.ParentNode().NextSibling()
	w := textOf(t, doc, "w")
	hidden := textOf(t, doc, "hidden")

	tests := []struct {
		name string
		in   editing.Position
		want editing.Position
	}{
		{"text node boundary prefers the earlier node", pos(cd, 0), pos(b, 2)},
		{"stable on canonical input", pos(b, 2), pos(b, 2)},
		{"leading collapsed whitespace", pos(w, 0), pos(w, 2)},
		{"inside collapsed run", pos(w, 6), pos(w, 5)},
		{"trailing collapsed whitespace", pos(w, 11), pos(w, 9)},
		{"element offset", pos(doc.GetElementByID("a").AsNode(), 1), pos(b, 2)},
		{"not rendered", pos(hidden, 1), editing.Position{}},
	}
	for _, tt := range tests {
		if got := l.CanonicalPosition(tt.in); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}

	if got := l.MostForwardCaretPosition(pos(b, 2)); got != pos(cd, 0) {
		t.Errorf("Expected most forward (cd, 0), got %v", got)
	}
	if got := l.MostBackwardCaretPosition(pos(cd, 0)); got != pos(b, 2) {
		t.Errorf("Expected most backward (b, 2), got %v", got)
	}
}

func TestLayout_CanonicalKeepsEditableRegion(t *testing.T) {
	doc := parse(t, `<div id="a">ab<span id="e" contenteditable>cd</span></div>`)
	l := New(doc, Options{})
	e := textOf(t, doc, "e")
	ab := textOf(t, doc, "a")

	if got := l.CanonicalPosition(pos(e, 0)); got != pos(e, 0) {
		t.Errorf("Expected the editable position to stay inside the editable span, got %v", got)
	}
	if got := l.CanonicalPosition(pos(ab, 2)); got != pos(ab, 2) {
		t.Errorf("Expected (ab, 2), got %v", got)
	}
}

func TestLayout_EmptyBlockAndBreaks(t *testing.T) {
	doc := parse(t, `<div id="empty"></div><div id="a">ab<br>cd<br></div>`)
	l := New(doc, Options{})
	empty := doc.GetElementByID("empty").AsNode()
	ab := textOf(t, doc, "a")
	cd := ab.NextSibling().NextSibling()

	if got := l.CanonicalPosition(pos(empty, 0)); got != pos(empty, 0) {
		t.Errorf("Expected the empty block to keep its anchor, got %v", got)
	}
	if got := l.NextPosition(pos(empty, 0)); got != pos(ab, 0) {
		t.Errorf("Expected next position (ab, 0), got %v", got)
	}
	if got := l.NextPosition(pos(ab, 2)); got != pos(cd, 0) {
		t.Errorf("Expected the stop after <br> on the next line, got %v", got)
	}
	if got := l.LineCount(); got != 3 {
		t.Errorf("Expected 3 lines (the trailing <br> adds none), got %d", got)
	}
	if got := l.CaretBoundsOf(pos(cd, 0), editing.Downstream).Y; got != 32 {
		t.Errorf("Expected caret on the third line, got y=%d", got)
	}
}

func TestLayout_Wrapping(t *testing.T) {
	doc := parse(t, `<div id="a">abcde fghi</div>`)
	l := New(doc, narrow)
	a := textOf(t, doc, "a")

	if got := l.LineCount(); got != 2 {
		t.Fatalf("Expected 2 lines, got %d", got)
	}
	if diff := cmp.Diff(editing.Rect{X: 0, Y: 16, Width: 1, Height: 16}, l.CaretBoundsOf(pos(a, 6), editing.Downstream)); diff != "" {
		t.Errorf("Downstream wrap caret mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(editing.Rect{X: 48, Y: 0, Width: 1, Height: 16}, l.CaretBoundsOf(pos(a, 6), editing.Upstream)); diff != "" {
		t.Errorf("Upstream wrap caret mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name string
		got  editing.Position
		want editing.Position
	}{
		{"end of first line stops before the hanging space", l.EndOfLine(pos(a, 0), editing.Downstream), pos(a, 5)},
		{"start of second line", l.StartOfLine(pos(a, 8), editing.Downstream), pos(a, 6)},
		{"upstream wrap stop is on the first line", l.StartOfLine(pos(a, 6), editing.Upstream), pos(a, 0)},
		{"next line keeps x", l.NextLinePosition(pos(a, 2), editing.Downstream, 16), pos(a, 8)},
		{"previous line keeps x", l.PreviousLinePosition(pos(a, 8), editing.Downstream, 16), pos(a, 2)},
		{"previous line skips the wrap stop", l.PreviousLinePosition(pos(a, 10), editing.Downstream, 200), pos(a, 5)},
		{"no line after the last", l.NextLinePosition(pos(a, 8), editing.Downstream, 0), editing.Position{}},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestLayout_Words(t *testing.T) {
	doc := parse(t, `<div id="a">abcde fghi</div><div id="b">jk</div>`)
	l := New(doc, Options{})
	a, b := textOf(t, doc, "a"), textOf(t, doc, "b")

	tests := []struct {
		name string
		got  editing.Position
		want editing.Position
	}{
		{"next word ends the following word", l.NextWordPosition(pos(a, 5)), pos(a, 10)},
		{"next word inside a word", l.NextWordPosition(pos(a, 1)), pos(a, 5)},
		{"next word crosses block", l.NextWordPosition(pos(a, 10)), pos(b, 2)},
		{"previous word", l.PreviousWordPosition(pos(a, 7)), pos(a, 6)},
		{"previous word crosses block", l.PreviousWordPosition(pos(b, 0)), pos(a, 6)},
		{"start of word", l.StartOfWord(pos(a, 2), editing.NextWordIfOnBoundary), pos(a, 0)},
		{"end of word", l.EndOfWord(pos(a, 2), editing.NextWordIfOnBoundary), pos(a, 5)},
		{"previous side on a boundary", l.StartOfWord(pos(a, 5), editing.PreviousWordIfOnBoundary), pos(a, 0)},
		{"next side on a boundary", l.EndOfWord(pos(a, 5), editing.NextWordIfOnBoundary), pos(a, 6)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestLayout_Sentences(t *testing.T) {
	doc := parse(t, `<p id="a">Hello there. Bye now.</p>`)
	l := New(doc, Options{})
	a := textOf(t, doc, "a")

	tests := []struct {
		name string
		got  editing.Position
		want editing.Position
	}{
		{"start of sentence", l.StartOfSentence(pos(a, 15)), pos(a, 13)},
		{"end of sentence excludes trailing space", l.EndOfSentence(pos(a, 2)), pos(a, 12)},
		{"next sentence", l.NextSentencePosition(pos(a, 0)), pos(a, 12)},
		{"next sentence from an end", l.NextSentencePosition(pos(a, 12)), pos(a, 21)},
		{"previous sentence", l.PreviousSentencePosition(pos(a, 15)), pos(a, 13)},
		{"previous sentence from a start", l.PreviousSentencePosition(pos(a, 13)), pos(a, 0)},
		{"no sentence before the first", l.PreviousSentencePosition(pos(a, 0)), editing.Position{}},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestLayout_Paragraphs(t *testing.T) {
	doc := parse(t, `<p id="a">one two</p><p id="b">three</p>`)
	l := New(doc, Options{})
	a, b := textOf(t, doc, "a"), textOf(t, doc, "b")

	if got := l.StartOfParagraph(pos(a, 4)); got != pos(a, 0) {
		t.Errorf("Expected start of paragraph (a, 0), got %v", got)
	}
	if got := l.EndOfParagraph(pos(a, 4)); got != pos(a, 7) {
		t.Errorf("Expected end of paragraph (a, 7), got %v", got)
	}
	if got := l.NextParagraphPosition(pos(a, 1), 16); got != pos(b, 2) {
		t.Errorf("Expected next paragraph at x=16 to be (b, 2), got %v", got)
	}
	if got := l.PreviousParagraphPosition(pos(b, 1), 0); got != pos(a, 0) {
		t.Errorf("Expected previous paragraph (a, 0), got %v", got)
	}
	if got := l.NextParagraphPosition(pos(b, 1), 0); !got.IsNull() {
		t.Errorf("Expected no paragraph after the last, got %v", got)
	}
	if got := l.EnclosingBlock(pos(b, 1)); got != doc.GetElementByID("b").AsNode() {
		t.Errorf("Expected enclosing block #b, got %v", got)
	}
}

func TestLayout_Direction(t *testing.T) {
	doc := parse(t, `<div id="r" dir="rtl">abc</div><div id="auto" dir="auto">שלום</div><div id="l" dir="auto">abc</div><div id="s" style="direction: rtl">x</div>`)
	l := New(doc, Options{})

	tests := []struct {
		id   string
		want editing.Direction
	}{
		{"r", editing.RTL},
		{"auto", editing.RTL},
		{"l", editing.LTR},
		{"s", editing.RTL},
	}
	for _, tt := range tests {
		if got := l.DirectionOfEnclosingBlock(pos(textOf(t, doc, tt.id), 0)); got != tt.want {
			t.Errorf("#%s: expected %v, got %v", tt.id, tt.want, got)
		}
	}

	r := textOf(t, doc, "r")
	if got := l.CaretBoundsOf(pos(r, 0), editing.Downstream).X; got != 640 {
		t.Errorf("Expected the start of an rtl line at the right edge, got x=%d", got)
	}
}

func TestLayout_BidiLevels(t *testing.T) {
	doc := parse(t, `<div id="a">ab אב cd</div>`)
	l := New(doc, Options{})
	a := textOf(t, doc, "a")

	// "ab " is three bytes and each Hebrew letter two.
	before, after := l.BidiLevels(pos(a, 3))
	if before != 0 || after != 1 {
		t.Errorf("Expected levels 0/1 before the rtl run, got %d/%d", before, after)
	}
	if before, after := l.BidiLevels(pos(a, 0)); before != -1 || after != 0 {
		t.Errorf("Expected -1/0 at the block start, got %d/%d", before, after)
	}
	if got := l.BidiRunEdge(pos(a, 3), true); got != pos(a, 7) {
		t.Errorf("Expected the run to end at (a, 7), got %v", got)
	}
	if got := l.BidiRunEdge(pos(a, 7), false); got != pos(a, 3) {
		t.Errorf("Expected the run to start at (a, 3), got %v", got)
	}
}

func TestLayout_HitTest(t *testing.T) {
	doc := parse(t, `<div id="a">abcde fghi</div>`)
	l := New(doc, narrow)
	a := textOf(t, doc, "a")

	tests := []struct {
		name string
		pt   editing.Point
		want editing.HitTestResult
	}{
		{"inside a character", editing.Point{X: 17, Y: 20}, editing.HitTestResult{Position: pos(a, 8), Node: a}},
		{"rounds to the nearer stop", editing.Point{X: 13, Y: 4}, editing.HitTestResult{Position: pos(a, 2), Node: a}},
		{"past the end of a wrapped line", editing.Point{X: 100, Y: 4}, editing.HitTestResult{Position: pos(a, 6), Affinity: editing.Upstream}},
		{"below all lines", editing.Point{X: 0, Y: 500}, editing.HitTestResult{Position: pos(a, 6)}},
	}
	for _, tt := range tests {
		got := l.HitTest(tt.pt)
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

func TestLayout_InvalidatesOnMutation(t *testing.T) {
	doc := parse(t, `<div id="a">abc</div>`)
	l := New(doc, Options{})
	a := textOf(t, doc, "a")
	if l.NeedsLayout() {
		t.Fatal("Expected a clean layout after New")
	}
	a.AsText().AppendData("def")
	if !l.NeedsLayout() {
		t.Fatal("Expected the mutation to dirty the layout")
	}
	if got := l.EndOfParagraph(pos(a, 0)); got != pos(a, 6) {
		t.Errorf("Expected the query to see the new text, got %v", got)
	}
	if l.NeedsLayout() {
		t.Error("Expected the query to bring the layout up to date")
	}
}
