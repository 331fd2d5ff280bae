package editing

import (
	"fmt"

	"github.com/chrisuehlinger/selectionkit/dom"
)

// VisibleSelection is a validated selection in one tree space. Start and
// End are ordered and, when it was created through CreateVisibleSelection,
// canonical caret positions.
type VisibleSelection struct {
	base          Position
	extent        Position
	start         Position
	end           Position
	affinity      Affinity
	isDirectional bool
	baseIsFirst   bool
	space         TreeSpace
}

// CreateVisibleSelection validates sel and canonicalizes its endpoints with
// layout. Endpoints in another document or outside the tree degrade the
// selection to a caret at the valid endpoint, or to None.
func CreateVisibleSelection(sel Selection, layout Layout) VisibleSelection {
	space := sel.space
	base, extent, ok := validateEndpoints(sel.base, sel.extent, space)
	if !ok {
		return VisibleSelection{space: space}
	}
	isCaret := base == extent

	fb := ProjectPosition(base, space, FlatTree)
	fe := ProjectPosition(extent, space, FlatTree)
	if fb.IsNull() || fe.IsNull() {
		return VisibleSelection{space: space}
	}
	baseIsFirst := comparePositions(fb, fe, FlatTree) <= 0
	if !isCaret {
		fe = adjustForEditingBoundaries(fb, fe, baseIsFirst)
	}

	start, end := fb, fe
	if !baseIsFirst {
		start, end = fe, fb
	}
	start = canonicalize(layout, start)
	if isCaret {
		end = start
	} else {
		end = canonicalize(layout, end)
		if comparePositions(start, end, FlatTree) > 0 {
			end = start
		}
	}
	if space == AuthoredTree {
		start = ProjectPosition(start, FlatTree, AuthoredTree)
		end = ProjectPosition(end, FlatTree, AuthoredTree)
	}

	vs := VisibleSelection{
		start:         start,
		end:           end,
		affinity:      sel.affinity,
		isDirectional: sel.isDirectional,
		baseIsFirst:   baseIsFirst,
		space:         space,
	}
	switch {
	case start == end:
		vs.base, vs.extent = start, start
		vs.baseIsFirst = true
	case baseIsFirst:
		vs.base, vs.extent = start, end
	default:
		vs.base, vs.extent = end, start
	}
	return vs
}

// visibleSelectionWithoutValidation orders base and extent without checking
// or canonicalizing them.
func visibleSelectionWithoutValidation(base, extent Position, space TreeSpace) VisibleSelection {
	if base.IsNull() {
		return VisibleSelection{space: space}
	}
	if extent.IsNull() {
		extent = base
	}
	vs := VisibleSelection{base: base, extent: extent, space: space}
	vs.baseIsFirst = comparePositions(base, extent, space) <= 0
	if vs.baseIsFirst {
		vs.start, vs.end = base, extent
	} else {
		vs.start, vs.end = extent, base
	}
	return vs
}

func validateEndpoints(base, extent Position, space TreeSpace) (Position, Position, bool) {
	baseOK, extentOK := isValidPosition(base, space), isValidPosition(extent, space)
	if baseOK && extentOK && base.Document() != extent.Document() {
		extentOK = false
	}
	switch {
	case baseOK && extentOK:
	case baseOK:
		extent = base
	case extentOK:
		base = extent
	default:
		return Position{}, Position{}, false
	}
	return clampPosition(base, space), clampPosition(extent, space), true
}

func isValidPosition(p Position, space TreeSpace) bool {
	if p.IsNull() || !p.IsConnected() {
		return false
	}
	container := p.ContainerIn(space)
	return container != nil && dom.InTree(space.Tree(), container)
}

func clampPosition(p Position, space TreeSpace) Position {
	if p.kind != OffsetInAnchor {
		return p
	}
	if p.offset < 0 {
		p.offset = 0
	}
	if length := dom.TreeLength(space.Tree(), p.anchor); p.offset > length {
		p.offset = length
	}
	return p
}

// adjustForEditingBoundaries keeps a range from straddling an editable
// root. An extent outside the base's root is pulled to the root's edge; an
// extent inside a root the base is not in is pushed out of that root.
func adjustForEditingBoundaries(base, extent Position, baseIsFirst bool) Position {
	baseRoot := editableRootOf(base)
	extentRoot := editableRootOf(extent)
	if baseRoot == extentRoot {
		return extent
	}
	if baseRoot != nil {
		if dom.IsInclusiveAncestor(dom.Flat, baseRoot, extent.ContainerIn(FlatTree)) {
			return extent
		}
		if baseIsFirst {
			return LastPositionInNode(baseRoot, FlatTree)
		}
		return FirstPositionInNode(baseRoot)
	}
	if baseIsFirst {
		return BeforeNodePosition(extentRoot)
	}
	return AfterNodePosition(extentRoot)
}

func editableRootOf(p Position) *dom.Node {
	root := dom.RootEditableElement(p.ContainerIn(FlatTree))
	if root == nil {
		return nil
	}
	return root.AsNode()
}

func canonicalize(layout Layout, p Position) Position {
	if layout == nil {
		return p
	}
	if c := layout.CanonicalPosition(p); !c.IsNull() {
		return c
	}
	return p
}

// Base returns the anchor endpoint.
func (vs VisibleSelection) Base() Position { return vs.base }

// Extent returns the moving endpoint.
func (vs VisibleSelection) Extent() Position { return vs.extent }

// Start returns the earlier endpoint.
func (vs VisibleSelection) Start() Position { return vs.start }

// End returns the later endpoint.
func (vs VisibleSelection) End() Position { return vs.end }

// Affinity returns the caret affinity.
func (vs VisibleSelection) Affinity() Affinity { return vs.affinity }

// IsDirectional reports whether base/extent order is significant.
func (vs VisibleSelection) IsDirectional() bool { return vs.isDirectional }

// IsBaseFirst reports whether base is the start.
func (vs VisibleSelection) IsBaseFirst() bool { return vs.baseIsFirst }

// Space returns the tree space of the positions.
func (vs VisibleSelection) Space() TreeSpace { return vs.space }

// Type classifies the selection.
func (vs VisibleSelection) Type() SelectionType {
	switch {
	case vs.base.IsNull():
		return NoSelection
	case vs.start == vs.end:
		return CaretSelection
	}
	return RangeSelection
}

func (vs VisibleSelection) IsNone() bool { return vs.Type() == NoSelection }
func (vs VisibleSelection) IsCaret() bool { return vs.Type() == CaretSelection }
func (vs VisibleSelection) IsRange() bool { return vs.Type() == RangeSelection }

// Equal reports whether both selections have the same endpoints, affinity
// and direction in the same space.
func (vs VisibleSelection) Equal(o VisibleSelection) bool {
	return vs == o
}

// AsSelection returns a candidate selection with the same endpoints.
func (vs VisibleSelection) AsSelection() Selection {
	return Selection{
		base:          vs.base,
		extent:        vs.extent,
		affinity:      vs.affinity,
		isDirectional: vs.isDirectional,
		space:         vs.space,
	}
}

// ToRange returns the selection as a static range in the authored tree.
func (vs VisibleSelection) ToRange() (*dom.Range, error) {
	if vs.IsNone() {
		return nil, dom.ErrInvalidState("The selection is empty.")
	}
	start := ProjectPosition(vs.start, vs.space, AuthoredTree).ToOffsetInAnchor(AuthoredTree)
	end := ProjectPosition(vs.end, vs.space, AuthoredTree).ToOffsetInAnchor(AuthoredTree)
	if start.IsNull() || end.IsNull() {
		return nil, dom.ErrInvalidState("The selection has no authored boundary points.")
	}
	r := dom.NewRange(start.Document())
	if err := r.SetStart(start.Anchor(), start.Offset()); err != nil {
		return nil, err
	}
	if err := r.SetEnd(end.Anchor(), end.Offset()); err != nil {
		return nil, err
	}
	return r, nil
}

func (vs VisibleSelection) String() string {
	switch vs.Type() {
	case CaretSelection:
		return fmt.Sprintf("Caret(%s, %s)", vs.start, vs.affinity)
	case RangeSelection:
		return fmt.Sprintf("Range(%s, %s)", vs.start, vs.end)
	}
	return "None"
}
