package dom

import "strings"

// Range constants for compareBoundaryPoints
const (
	StartToStart = 0
	StartToEnd   = 1
	EndToEnd     = 2
	EndToStart   = 3
)

// Range is a pair of boundary points in the authored tree. It is static: it
// does not follow mutations, so holders check IsValid before use.
type Range struct {
	startContainer *Node
	startOffset    int
	endContainer   *Node
	endOffset      int
	ownerDocument  *Document
}

// NewRange creates a new Range with both boundary points set to the document.
func NewRange(doc *Document) *Range {
	return &Range{
		startContainer: doc.AsNode(),
		endContainer:   doc.AsNode(),
		ownerDocument:  doc,
	}
}

// StartContainer returns the node where the range starts.
func (r *Range) StartContainer() *Node {
	return r.startContainer
}

// StartOffset returns the offset within the start container.
func (r *Range) StartOffset() int {
	return r.startOffset
}

// EndContainer returns the node where the range ends.
func (r *Range) EndContainer() *Node {
	return r.endContainer
}

// EndOffset returns the offset within the end container.
func (r *Range) EndOffset() int {
	return r.endOffset
}

// OwnerDocument returns the document the range was created for.
func (r *Range) OwnerDocument() *Document {
	return r.ownerDocument
}

// Collapsed returns true if start and end are the same point.
func (r *Range) Collapsed() bool {
	return r.startContainer == r.endContainer && r.startOffset == r.endOffset
}

// CommonAncestorContainer returns the deepest node that contains both boundary points.
func (r *Range) CommonAncestorContainer() *Node {
	startAncestors := make(map[*Node]bool)
	for node := r.startContainer; node != nil; node = Authored.Parent(node) {
		startAncestors[node] = true
	}
	for node := r.endContainer; node != nil; node = Authored.Parent(node) {
		if startAncestors[node] {
			return node
		}
	}
	return nil
}

func (r *Range) checkBoundary(node *Node, offset int) error {
	if node == nil {
		return ErrNotFound("Node is null")
	}
	if node.ownerDoc != r.ownerDocument {
		return ErrWrongDocument("The node is not in the range's document.")
	}
	if offset < 0 || offset > node.Length() {
		return ErrIndexSize("The offset is out of range.")
	}
	return nil
}

// SetStart sets the start boundary point of the range.
func (r *Range) SetStart(node *Node, offset int) error {
	if err := r.checkBoundary(node, offset); err != nil {
		return err
	}
	r.startContainer = node
	r.startOffset = offset

	// If start is after end, or in another tree, collapse to start
	if cmp, err := r.comparePoints(r.startContainer, r.startOffset, r.endContainer, r.endOffset); err != nil || cmp > 0 {
		r.endContainer = r.startContainer
		r.endOffset = r.startOffset
	}
	return nil
}

// SetEnd sets the end boundary point of the range.
func (r *Range) SetEnd(node *Node, offset int) error {
	if err := r.checkBoundary(node, offset); err != nil {
		return err
	}
	r.endContainer = node
	r.endOffset = offset

	// If end is before start, or in another tree, collapse to end
	if cmp, err := r.comparePoints(r.startContainer, r.startOffset, r.endContainer, r.endOffset); err != nil || cmp > 0 {
		r.startContainer = r.endContainer
		r.startOffset = r.endOffset
	}
	return nil
}

// Collapse collapses the range to one of its boundary points.
// If toStart is true, collapses to the start; otherwise to the end.
func (r *Range) Collapse(toStart bool) {
	if toStart {
		r.endContainer = r.startContainer
		r.endOffset = r.startOffset
	} else {
		r.startContainer = r.endContainer
		r.startOffset = r.endOffset
	}
}

// SelectNode sets the range to contain the given node and its contents.
func (r *Range) SelectNode(node *Node) error {
	if node == nil {
		return ErrNotFound("Node is null")
	}
	parent := node.parentNode
	if parent == nil {
		return ErrInvalidNodeType("The node has no parent.")
	}
	index := node.Index()
	r.startContainer = parent
	r.startOffset = index
	r.endContainer = parent
	r.endOffset = index + 1
	return nil
}

// SelectNodeContents sets the range to contain the contents of the given node.
func (r *Range) SelectNodeContents(node *Node) error {
	if node == nil {
		return ErrNotFound("Node is null")
	}
	r.startContainer = node
	r.startOffset = 0
	r.endContainer = node
	r.endOffset = node.Length()
	return nil
}

// CompareBoundaryPoints compares the boundary points of two ranges.
// Returns -1, 0, or 1 depending on whether the first point is before, equal to, or after the second.
func (r *Range) CompareBoundaryPoints(how int, sourceRange *Range) (int, error) {
	if sourceRange == nil {
		return 0, ErrNotFound("Source range is null")
	}
	if r.ownerDocument != sourceRange.ownerDocument {
		return 0, ErrWrongDocument("The two Ranges are not in the same tree.")
	}

	var thisContainer, sourceContainer *Node
	var thisOffset, sourceOffset int

	switch how {
	case StartToStart:
		thisContainer, thisOffset = r.startContainer, r.startOffset
		sourceContainer, sourceOffset = sourceRange.startContainer, sourceRange.startOffset
	case StartToEnd:
		thisContainer, thisOffset = r.endContainer, r.endOffset
		sourceContainer, sourceOffset = sourceRange.startContainer, sourceRange.startOffset
	case EndToEnd:
		thisContainer, thisOffset = r.endContainer, r.endOffset
		sourceContainer, sourceOffset = sourceRange.endContainer, sourceRange.endOffset
	case EndToStart:
		thisContainer, thisOffset = r.startContainer, r.startOffset
		sourceContainer, sourceOffset = sourceRange.endContainer, sourceRange.endOffset
	default:
		return 0, ErrNotSupported("Invalid comparison type")
	}

	return r.comparePoints(thisContainer, thisOffset, sourceContainer, sourceOffset)
}

// comparePoints compares two boundary points in the authored tree.
func (r *Range) comparePoints(nodeA *Node, offsetA int, nodeB *Node, offsetB int) (int, error) {
	return ComparePoints(Authored, nodeA, offsetA, nodeB, offsetB)
}

// CloneRange returns a copy of this range.
func (r *Range) CloneRange() *Range {
	clone := *r
	return &clone
}

// IsValid reports whether both boundary points are still usable: their
// containers are connected to the range's document and the offsets are in
// bounds.
func (r *Range) IsValid() bool {
	for _, p := range [2]struct {
		node   *Node
		offset int
	}{{r.startContainer, r.startOffset}, {r.endContainer, r.endOffset}} {
		if p.node == nil || p.node.ownerDoc != r.ownerDocument || !p.node.IsConnected() {
			return false
		}
		if p.offset < 0 || p.offset > p.node.Length() {
			return false
		}
	}
	cmp, err := r.comparePoints(r.startContainer, r.startOffset, r.endContainer, r.endOffset)
	return err == nil && cmp <= 0
}

// ToString returns the text content of the range.
func (r *Range) ToString() string {
	if r.Collapsed() {
		return ""
	}

	// If range is within a single text node
	if r.startContainer == r.endContainer && r.startContainer.nodeType == TextNode {
		return r.startContainer.data[r.startOffset:r.endOffset]
	}

	root := r.CommonAncestorContainer()
	if root == nil {
		return ""
	}

	var sb strings.Builder
	for n := root; n != nil; n = NextNode(Authored, n, root) {
		if n.nodeType != TextNode {
			continue
		}
		start, end := 0, len(n.data)
		if n == r.startContainer {
			start = r.startOffset
		} else if cmp, _ := r.comparePoints(n, 0, r.startContainer, r.startOffset); cmp < 0 {
			continue
		}
		if n == r.endContainer {
			end = r.endOffset
		} else if cmp, _ := r.comparePoints(n, 0, r.endContainer, r.endOffset); cmp >= 0 {
			break
		}
		if start < end {
			sb.WriteString(n.data[start:end])
		}
	}
	return sb.String()
}

// ComparePoint returns -1, 0 or 1 depending on whether the point is before,
// inside or after the range.
func (r *Range) ComparePoint(node *Node, offset int) (int, error) {
	if err := r.checkBoundary(node, offset); err != nil {
		return 0, err
	}
	if cmp, err := r.comparePoints(node, offset, r.startContainer, r.startOffset); err != nil {
		return 0, err
	} else if cmp < 0 {
		return -1, nil
	}
	if cmp, err := r.comparePoints(node, offset, r.endContainer, r.endOffset); err != nil {
		return 0, err
	} else if cmp > 0 {
		return 1, nil
	}
	return 0, nil
}

// IntersectsNode reports whether any part of node lies inside the range.
func (r *Range) IntersectsNode(node *Node) bool {
	if node == nil || node.ownerDoc != r.ownerDocument {
		return false
	}
	parent := Authored.Parent(node)
	if parent == nil {
		return true // rootNode
	}

	offset := Authored.Index(node)

	// Compare node's start to range's end
	if cmp, err := r.comparePoints(parent, offset, r.endContainer, r.endOffset); err != nil || cmp >= 0 {
		return false
	}

	// Compare node's end to range's start
	if cmp, err := r.comparePoints(parent, offset+1, r.startContainer, r.startOffset); err != nil || cmp <= 0 {
		return false
	}

	return true
}
