// Package editing implements the selection engine: positions, the selection
// model kept in both tree spaces, the editor that commits and repairs it, the
// modifier that computes keyboard movement, the gesture controller, the
// pending appearance commit and the caret blink timer.
package editing

import (
	"fmt"

	"github.com/chrisuehlinger/selectionkit/dom"
)

// AnchorKind tells how a Position refers to the tree.
type AnchorKind int

const (
	// OffsetInAnchor is an offset into the anchor's children or data.
	OffsetInAnchor AnchorKind = iota
	// BeforeNode is the boundary just before the anchor in its parent.
	BeforeNode
	// AfterNode is the boundary just after the anchor in its parent.
	AfterNode
)

// TreeSpace selects the node tree positions are resolved in.
type TreeSpace int

const (
	// AuthoredTree is the shadow-including node tree.
	AuthoredTree TreeSpace = iota
	// FlatTree is the flattened rendering tree.
	FlatTree
)

// Tree returns the traversal for the space.
func (s TreeSpace) Tree() dom.Tree {
	if s == FlatTree {
		return dom.Flat
	}
	return dom.Authored
}

// Other returns the opposite tree space.
func (s TreeSpace) Other() TreeSpace {
	if s == FlatTree {
		return AuthoredTree
	}
	return FlatTree
}

func (s TreeSpace) String() string {
	if s == FlatTree {
		return "flat"
	}
	return "authored"
}

// Position is an anchor into the document. The zero value is the null
// position.
type Position struct {
	anchor *dom.Node
	offset int
	kind   AnchorKind
}

// NewPosition returns the position at offset inside node.
func NewPosition(node *dom.Node, offset int) Position {
	if node == nil {
		return Position{}
	}
	return Position{anchor: node, offset: offset}
}

// BeforeNodePosition returns the position just before n.
func BeforeNodePosition(n *dom.Node) Position {
	if n == nil {
		return Position{}
	}
	return Position{anchor: n, kind: BeforeNode}
}

// AfterNodePosition returns the position just after n.
func AfterNodePosition(n *dom.Node) Position {
	if n == nil {
		return Position{}
	}
	return Position{anchor: n, kind: AfterNode}
}

// FirstPositionInNode returns the position at the start of n.
func FirstPositionInNode(n *dom.Node) Position {
	return NewPosition(n, 0)
}

// LastPositionInNode returns the position at the end of n in space.
func LastPositionInNode(n *dom.Node, space TreeSpace) Position {
	if n == nil {
		return Position{}
	}
	return NewPosition(n, dom.TreeLength(space.Tree(), n))
}

// IsNull reports whether p is the null position.
func (p Position) IsNull() bool {
	return p.anchor == nil
}

// Anchor returns the anchor node.
func (p Position) Anchor() *dom.Node {
	return p.anchor
}

// Kind returns the anchor kind.
func (p Position) Kind() AnchorKind {
	return p.kind
}

// Offset returns the raw offset. It is only meaningful for OffsetInAnchor.
func (p Position) Offset() int {
	return p.offset
}

// Document returns the document owning the anchor.
func (p Position) Document() *dom.Document {
	if p.anchor == nil {
		return nil
	}
	return p.anchor.OwnerDocument()
}

// IsConnected reports whether the anchor is in an active document.
func (p Position) IsConnected() bool {
	return p.anchor != nil && p.anchor.IsConnected()
}

// ContainerIn returns the node the boundary point lies in within space.
func (p Position) ContainerIn(space TreeSpace) *dom.Node {
	if p.anchor == nil {
		return nil
	}
	if p.kind == OffsetInAnchor {
		return p.anchor
	}
	return space.Tree().Parent(p.anchor)
}

// OffsetIn returns the boundary offset within ContainerIn(space).
func (p Position) OffsetIn(space TreeSpace) int {
	switch p.kind {
	case BeforeNode:
		return space.Tree().Index(p.anchor)
	case AfterNode:
		return space.Tree().Index(p.anchor) + 1
	}
	return p.offset
}

// ToOffsetInAnchor returns the same boundary point expressed as an offset
// into its container in space.
func (p Position) ToOffsetInAnchor(space TreeSpace) Position {
	if p.kind == OffsetInAnchor || p.anchor == nil {
		return p
	}
	container := p.ContainerIn(space)
	if container == nil {
		return Position{}
	}
	return NewPosition(container, p.OffsetIn(space))
}

// Equal reports whether p and o are the same anchor, kind and offset.
func (p Position) Equal(o Position) bool {
	return p == o
}

func (p Position) String() string {
	if p.anchor == nil {
		return "null"
	}
	name := p.anchor.NodeName()
	if p.anchor.IsText() {
		name = fmt.Sprintf("%q", p.anchor.NodeValue())
	} else if el := p.anchor.AsElement(); el != nil && el.Id() != "" {
		name += "#" + el.Id()
	}
	switch p.kind {
	case BeforeNode:
		return "before(" + name + ")"
	case AfterNode:
		return "after(" + name + ")"
	}
	return fmt.Sprintf("%s[%d]", name, p.offset)
}

// ComparePositions orders a and b in space. Positions from different
// documents are not comparable and yield dom.ErrWrongDocument.
func ComparePositions(a, b Position, space TreeSpace) (int, error) {
	if a.IsNull() || b.IsNull() {
		return 0, dom.ErrWrongDocument("A null position cannot be compared.")
	}
	if a.Document() != b.Document() {
		return 0, dom.ErrWrongDocument("The positions are in different documents.")
	}
	if a.anchor == b.anchor && a.kind == b.kind {
		switch a.kind {
		case OffsetInAnchor:
			return compareInts(a.offset, b.offset), nil
		default:
			return 0, nil
		}
	}
	ac, bc := a.ContainerIn(space), b.ContainerIn(space)
	if ac == nil || bc == nil {
		return 0, dom.ErrWrongDocument("The position has no container in the " + space.String() + " tree.")
	}
	return dom.ComparePoints(space.Tree(), ac, a.OffsetIn(space), bc, b.OffsetIn(space))
}

// comparePositions is ComparePositions with incomparable positions treated
// as equal.
func comparePositions(a, b Position, space TreeSpace) int {
	cmp, err := ComparePositions(a, b, space)
	if err != nil {
		return 0
	}
	return cmp
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
