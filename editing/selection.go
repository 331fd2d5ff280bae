package editing

import "github.com/chrisuehlinger/selectionkit/dom"

// Affinity disambiguates a position at a line wrap: Upstream resolves to the
// end of the earlier line, Downstream to the start of the next.
type Affinity int

const (
	Downstream Affinity = iota
	Upstream
)

func (a Affinity) String() string {
	if a == Upstream {
		return "upstream"
	}
	return "downstream"
}

// SelectionType classifies a selection.
type SelectionType int

const (
	NoSelection SelectionType = iota
	CaretSelection
	RangeSelection
)

func (t SelectionType) String() string {
	switch t {
	case CaretSelection:
		return "Caret"
	case RangeSelection:
		return "Range"
	}
	return "None"
}

// Granularity is the unit a movement or expansion step operates on.
type Granularity int

const (
	Character Granularity = iota
	Word
	Sentence
	Line
	Paragraph
	SentenceBoundary
	LineBoundary
	ParagraphBoundary
	DocumentBoundary
)

var granularityNames = [...]string{
	"character", "word", "sentence", "line", "paragraph",
	"sentenceboundary", "lineboundary", "paragraphboundary", "documentboundary",
}

func (g Granularity) String() string {
	if int(g) < len(granularityNames) {
		return granularityNames[g]
	}
	return "unknown"
}

// ParseGranularity maps the names used by Selection.modify to a Granularity.
func ParseGranularity(name string) (Granularity, bool) {
	for i, n := range granularityNames {
		if n == name {
			return Granularity(i), true
		}
	}
	return Character, false
}

// IsBoundary reports whether g moves to a boundary rather than by a unit.
func (g Granularity) IsBoundary() bool {
	switch g {
	case SentenceBoundary, LineBoundary, ParagraphBoundary, DocumentBoundary:
		return true
	}
	return false
}

// Selection is a candidate selection in one tree space, before validation.
type Selection struct {
	base          Position
	extent        Position
	affinity      Affinity
	isDirectional bool
	granularity   Granularity
	space         TreeSpace
}

// Base returns the anchor endpoint.
func (s Selection) Base() Position { return s.base }

// Extent returns the moving endpoint.
func (s Selection) Extent() Position { return s.extent }

// Affinity returns the selection affinity.
func (s Selection) Affinity() Affinity { return s.affinity }

// IsDirectional reports whether base/extent order is significant.
func (s Selection) IsDirectional() bool { return s.isDirectional }

// Granularity returns the granularity the selection was built with.
func (s Selection) Granularity() Granularity { return s.granularity }

// Space returns the tree space the positions are expressed in.
func (s Selection) Space() TreeSpace { return s.space }

// IsNone reports whether the selection is empty.
func (s Selection) IsNone() bool { return s.base.IsNull() }

// IsBaseFirst reports whether base <= extent.
func (s Selection) IsBaseFirst() bool {
	return comparePositions(s.base, s.extent, s.space) <= 0
}

// Start returns the earlier endpoint.
func (s Selection) Start() Position {
	if s.IsBaseFirst() {
		return s.base
	}
	return s.extent
}

// End returns the later endpoint.
func (s Selection) End() Position {
	if s.IsBaseFirst() {
		return s.extent
	}
	return s.base
}

// Type classifies the selection.
func (s Selection) Type() SelectionType {
	switch {
	case s.base.IsNull():
		return NoSelection
	case s.base == s.extent:
		return CaretSelection
	}
	return RangeSelection
}

// SelectionBuilder builds a Selection.
type SelectionBuilder struct {
	sel Selection
}

// NewSelectionBuilder returns a builder for a selection in space.
func NewSelectionBuilder(space TreeSpace) *SelectionBuilder {
	return &SelectionBuilder{sel: Selection{space: space}}
}

// NewSelectionBuilderFrom returns a builder starting from sel.
func NewSelectionBuilderFrom(sel Selection) *SelectionBuilder {
	return &SelectionBuilder{sel: sel}
}

// Collapse places a caret at p.
func (b *SelectionBuilder) Collapse(p Position) *SelectionBuilder {
	b.sel.base = p
	b.sel.extent = p
	return b
}

// Extend moves the extent to p, collapsing when there is no base.
func (b *SelectionBuilder) Extend(p Position) *SelectionBuilder {
	if b.sel.base.IsNull() {
		return b.Collapse(p)
	}
	b.sel.extent = p
	return b
}

// SetBaseAndExtent sets both endpoints. A null base clears the selection.
func (b *SelectionBuilder) SetBaseAndExtent(base, extent Position) *SelectionBuilder {
	if base.IsNull() {
		b.sel.base, b.sel.extent = Position{}, Position{}
		return b
	}
	if extent.IsNull() {
		extent = base
	}
	b.sel.base = base
	b.sel.extent = extent
	return b
}

// SelectAllChildren selects the contents of n.
func (b *SelectionBuilder) SelectAllChildren(n *dom.Node) *SelectionBuilder {
	return b.SetBaseAndExtent(FirstPositionInNode(n), LastPositionInNode(n, b.sel.space))
}

// SetAffinity sets the affinity.
func (b *SelectionBuilder) SetAffinity(a Affinity) *SelectionBuilder {
	b.sel.affinity = a
	return b
}

// SetIsDirectional sets whether base/extent order is significant.
func (b *SelectionBuilder) SetIsDirectional(directional bool) *SelectionBuilder {
	b.sel.isDirectional = directional
	return b
}

// SetGranularity records the granularity the selection was built with.
func (b *SelectionBuilder) SetGranularity(g Granularity) *SelectionBuilder {
	b.sel.granularity = g
	return b
}

// Build returns the selection.
func (b *SelectionBuilder) Build() Selection {
	return b.sel
}
