package dom

// Tree is a view over the node graph. The two implementations differ in how
// they treat shadow roots and slots.
type Tree interface {
	Parent(n *Node) *Node
	FirstChild(n *Node) *Node
	LastChild(n *Node) *Node
	NextSibling(n *Node) *Node
	PreviousSibling(n *Node) *Node
	// ChildAt returns the child a boundary point (n, index) refers to.
	ChildAt(n *Node, index int) *Node
	// Index returns the offset of n in its parent. A shadow root sits at -1
	// in the authored tree.
	Index(n *Node) int
	ChildCount(n *Node) int
}

// Authored is the shadow-including node tree. A shadow root's parent is its
// host and it comes before the host's light children; boundary offsets in a
// host count light children only.
var Authored Tree = authoredTree{}

// Flat is the flattened tree: shadow contents replace the host's children,
// slots are replaced by their assigned nodes (or fallback content), and
// unassigned light children are absent.
var Flat Tree = flatTree{}

type authoredTree struct{}

func (authoredTree) Parent(n *Node) *Node {
	return n.ShadowIncludingParent()
}

func (authoredTree) FirstChild(n *Node) *Node {
	if n.elementData != nil && n.elementData.shadow != nil {
		return n.elementData.shadow.node
	}
	return n.firstChild
}

func (authoredTree) LastChild(n *Node) *Node {
	if n.lastChild == nil && n.elementData != nil && n.elementData.shadow != nil {
		return n.elementData.shadow.node
	}
	return n.lastChild
}

func (authoredTree) NextSibling(n *Node) *Node {
	if n.shadowRoot != nil {
		if n.shadowRoot.host == nil {
			return nil
		}
		return n.shadowRoot.host.AsNode().firstChild
	}
	return n.nextSibling
}

func (authoredTree) PreviousSibling(n *Node) *Node {
	if n.prevSibling == nil && n.parentNode != nil {
		if data := n.parentNode.elementData; data != nil && data.shadow != nil {
			return data.shadow.node
		}
	}
	return n.prevSibling
}

func (authoredTree) ChildAt(n *Node, index int) *Node {
	return n.ChildAt(index)
}

func (authoredTree) Index(n *Node) int {
	if n.shadowRoot != nil {
		return -1
	}
	return n.Index()
}

func (authoredTree) ChildCount(n *Node) int {
	return n.ChildCount()
}

type flatTree struct{}

// flatChildren returns the children of n in the flat tree.
func flatChildren(n *Node) []*Node {
	if n.elementData != nil && n.elementData.shadow != nil {
		return lightChildren(n.elementData.shadow.node)
	}
	if isActiveSlot(n) {
		if assigned := n.AsElement().AssignedNodes(); len(assigned) > 0 {
			return assigned
		}
	}
	return lightChildren(n)
}

func lightChildren(n *Node) []*Node {
	var children []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		children = append(children, c)
	}
	return children
}

// isActiveSlot reports whether n is a slot inside a hosted shadow tree.
func isActiveSlot(n *Node) bool {
	if !n.IsElement() || n.elementData.localName != "slot" {
		return false
	}
	sr := n.containingShadowRoot()
	return sr != nil && sr.host != nil
}

// hasFlatChildrenOfItsOwn reports whether n's flat children are exactly its
// light children.
func hasFlatChildrenOfItsOwn(n *Node) bool {
	if n.elementData != nil && n.elementData.shadow != nil {
		return false
	}
	if isActiveSlot(n) && len(n.AsElement().AssignedNodes()) > 0 {
		return false
	}
	return true
}

func (flatTree) Parent(n *Node) *Node {
	if n.shadowRoot != nil {
		return nil
	}
	parent := n.parentNode
	if parent == nil {
		return nil
	}
	if parent.shadowRoot != nil {
		if parent.shadowRoot.host == nil {
			return nil
		}
		return parent.shadowRoot.host.AsNode()
	}
	if parent.elementData != nil && parent.elementData.shadow != nil {
		if slot := n.AssignedSlot(); slot != nil {
			return slot.AsNode()
		}
		return nil
	}
	if isActiveSlot(parent) && len(parent.AsElement().AssignedNodes()) > 0 {
		// Fallback content is not rendered once nodes are assigned.
		return nil
	}
	return parent
}

func (t flatTree) FirstChild(n *Node) *Node {
	if hasFlatChildrenOfItsOwn(n) {
		return n.firstChild
	}
	children := flatChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func (t flatTree) LastChild(n *Node) *Node {
	if hasFlatChildrenOfItsOwn(n) {
		return n.lastChild
	}
	children := flatChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[len(children)-1]
}

func (t flatTree) NextSibling(n *Node) *Node {
	parent := t.Parent(n)
	if parent == nil {
		return nil
	}
	if hasFlatChildrenOfItsOwn(parent) {
		return n.nextSibling
	}
	children := flatChildren(parent)
	for i, c := range children {
		if c == n && i+1 < len(children) {
			return children[i+1]
		}
	}
	return nil
}

func (t flatTree) PreviousSibling(n *Node) *Node {
	parent := t.Parent(n)
	if parent == nil {
		return nil
	}
	if hasFlatChildrenOfItsOwn(parent) {
		return n.prevSibling
	}
	children := flatChildren(parent)
	for i, c := range children {
		if c == n && i > 0 {
			return children[i-1]
		}
	}
	return nil
}

func (t flatTree) ChildAt(n *Node, index int) *Node {
	if hasFlatChildrenOfItsOwn(n) {
		return n.ChildAt(index)
	}
	children := flatChildren(n)
	if index < 0 || index >= len(children) {
		return nil
	}
	return children[index]
}

func (t flatTree) Index(n *Node) int {
	parent := t.Parent(n)
	if parent == nil {
		return 0
	}
	if hasFlatChildrenOfItsOwn(parent) {
		return n.Index()
	}
	for i, c := range flatChildren(parent) {
		if c == n {
			return i
		}
	}
	return 0
}

func (t flatTree) ChildCount(n *Node) int {
	if hasFlatChildrenOfItsOwn(n) {
		return n.ChildCount()
	}
	return len(flatChildren(n))
}

// SameChildren reports whether n has the same children in both trees, so
// offsets into n mean the same thing in either.
func SameChildren(n *Node) bool {
	return hasFlatChildrenOfItsOwn(n)
}

// TreeLength returns the boundary-point length of n in tree.
func TreeLength(tree Tree, n *Node) int {
	switch n.nodeType {
	case TextNode, CommentNode:
		return len(n.data)
	}
	return tree.ChildCount(n)
}

// InTree reports whether n takes part in tree: its chain of parents in tree
// reaches a document.
func InTree(tree Tree, n *Node) bool {
	for c := n; c != nil; c = tree.Parent(c) {
		if c.nodeType == DocumentNode {
			return true
		}
	}
	return false
}

// IsInclusiveAncestor reports whether ancestor is n or one of its parents
// in tree.
func IsInclusiveAncestor(tree Tree, ancestor, n *Node) bool {
	for c := n; c != nil; c = tree.Parent(c) {
		if c == ancestor {
			return true
		}
	}
	return false
}

// ComparePoints compares the boundary points (a, ao) and (b, bo) in tree
// order, returning -1, 0 or 1. Points without a common root are reported
// with ErrWrongDocument.
func ComparePoints(tree Tree, a *Node, ao int, b *Node, bo int) (int, error) {
	if a == b {
		return compareInts(ao, bo), nil
	}

	// Is a an ancestor of b?
	if child := childTowards(tree, a, b); child != nil {
		if tree.Index(child) < ao {
			return 1, nil
		}
		return -1, nil
	}

	// Is b an ancestor of a?
	if child := childTowards(tree, b, a); child != nil {
		if tree.Index(child) < bo {
			return -1, nil
		}
		return 1, nil
	}

	return compareSiblingOrder(tree, a, b)
}

// childTowards returns the child of ancestor on the path to n, or nil when
// ancestor is not a proper ancestor of n.
func childTowards(tree Tree, ancestor, n *Node) *Node {
	for c := n; c != nil; {
		parent := tree.Parent(c)
		if parent == ancestor {
			return c
		}
		c = parent
	}
	return nil
}

// compareSiblingOrder compares two nodes neither of which contains the other.
func compareSiblingOrder(tree Tree, a, b *Node) (int, error) {
	var ancestorsA []*Node
	for c := a; c != nil; c = tree.Parent(c) {
		ancestorsA = append(ancestorsA, c)
	}
	depth := make(map[*Node]int, len(ancestorsA))
	for i, c := range ancestorsA {
		depth[c] = i
	}

	prevB := b
	for c := b; c != nil; c = tree.Parent(c) {
		if i, ok := depth[c]; ok {
			if i == 0 || c == b {
				break
			}
			childA := ancestorsA[i-1]
			return compareInts(tree.Index(childA), tree.Index(prevB)), nil
		}
		prevB = c
	}
	return 0, ErrWrongDocument("The nodes are not in the same tree.")
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

// NextNode returns the pre-order successor of n in tree, staying inside
// stayWithin when it is not nil.
func NextNode(tree Tree, n, stayWithin *Node) *Node {
	if c := tree.FirstChild(n); c != nil {
		return c
	}
	return NextSkippingChildren(tree, n, stayWithin)
}

// NextSkippingChildren returns the pre-order successor of n that is not one
// of its descendants.
func NextSkippingChildren(tree Tree, n, stayWithin *Node) *Node {
	for c := n; c != nil && c != stayWithin; c = tree.Parent(c) {
		if next := tree.NextSibling(c); next != nil {
			return next
		}
	}
	return nil
}

// PreviousNode returns the pre-order predecessor of n in tree, staying
// inside stayWithin when it is not nil.
func PreviousNode(tree Tree, n, stayWithin *Node) *Node {
	if n == stayWithin {
		return nil
	}
	prev := tree.PreviousSibling(n)
	if prev == nil {
		return tree.Parent(n)
	}
	for {
		last := tree.LastChild(prev)
		if last == nil {
			return prev
		}
		prev = last
	}
}
