package editing

import "github.com/chrisuehlinger/selectionkit/dom"

// Direction is the inline base direction of a block.
type Direction int

const (
	LTR Direction = iota
	RTL
)

func (d Direction) String() string {
	if d == RTL {
		return "rtl"
	}
	return "ltr"
}

// Point is a location in layout coordinates.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned rectangle in layout coordinates.
type Rect struct {
	X, Y, Width, Height int
}

// IsEmpty reports whether the rectangle has no area and no position.
func (r Rect) IsEmpty() bool {
	return r == Rect{}
}

// Union returns the smallest rectangle containing r and o. Empty
// rectangles are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1 := max(r.X+r.Width, o.X+o.Width)
	y1 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// WordSide picks the word when a position sits exactly between two words.
type WordSide int

const (
	NextWordIfOnBoundary WordSide = iota
	PreviousWordIfOnBoundary
)

// HitTestResult is the outcome of mapping a point to content.
type HitTestResult struct {
	// Position is the caret position nearest the point.
	Position Position
	// Affinity disambiguates Position at a line wrap.
	Affinity Affinity
	// Node is the innermost node under the point, nil outside any content.
	Node *dom.Node
}

// Layout answers the geometric and segmentation questions the selection
// engine asks. All positions are in the flat tree. A null result means the
// position is not rendered.
type Layout interface {
	// NeedsLayout reports whether the tree changed since the last Update.
	NeedsLayout() bool
	// Update brings the layout up to date with the tree.
	Update()

	// CanonicalPosition returns the preferred representative of the caret
	// position equivalent to p.
	CanonicalPosition(p Position) Position
	// MostForwardCaretPosition returns the last DOM position equivalent to p.
	MostForwardCaretPosition(p Position) Position
	// MostBackwardCaretPosition returns the first DOM position equivalent to p.
	MostBackwardCaretPosition(p Position) Position

	NextPosition(p Position) Position
	PreviousPosition(p Position) Position
	// CharacterAfter returns the first rune after p in its block, or 0.
	CharacterAfter(p Position) rune

	NextWordPosition(p Position) Position
	PreviousWordPosition(p Position) Position
	StartOfWord(p Position, side WordSide) Position
	EndOfWord(p Position, side WordSide) Position

	NextSentencePosition(p Position) Position
	PreviousSentencePosition(p Position) Position
	StartOfSentence(p Position) Position
	EndOfSentence(p Position) Position

	StartOfLine(p Position, a Affinity) Position
	EndOfLine(p Position, a Affinity) Position
	// NextLinePosition returns the position on the following line nearest
	// to x, or null on the last line.
	NextLinePosition(p Position, a Affinity, x int) Position
	// PreviousLinePosition returns the position on the preceding line
	// nearest to x, or null on the first line.
	PreviousLinePosition(p Position, a Affinity, x int) Position

	StartOfParagraph(p Position) Position
	EndOfParagraph(p Position) Position
	NextParagraphPosition(p Position, x int) Position
	PreviousParagraphPosition(p Position, x int) Position

	StartOfDocument(p Position) Position
	EndOfDocument(p Position) Position

	// CaretBoundsOf returns the caret rectangle for p, empty when p is
	// not rendered.
	CaretBoundsOf(p Position, a Affinity) Rect
	// DirectionOfEnclosingBlock returns the base direction of p's block.
	DirectionOfEnclosingBlock(p Position) Direction
	// EnclosingBlock returns the block element laying out p.
	EnclosingBlock(p Position) *dom.Node
	// BidiLevels returns the embedding levels of the characters before and
	// after p, -1 at a block edge.
	BidiLevels(p Position) (before, after int)
	// BidiRunEdge returns the edge of the bidi run adjacent to p: the run
	// after p when forward, the run before p otherwise.
	BidiRunEdge(p Position, forward bool) Position

	HitTest(pt Point) HitTestResult
}
