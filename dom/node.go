package dom

import (
	"strings"
)

// Node represents a node in the document tree. Document, Element and Text are
// defined over the same underlying struct so conversions are free.
type Node struct {
	nodeType   NodeType
	nodeName   string
	ownerDoc   *Document
	parentNode *Node

	// First/last child and sibling pointers for efficient traversal
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// Character data for Text and Comment nodes.
	data string

	// Type-specific data (only one will be non-nil based on nodeType)
	elementData  *elementData
	documentData *documentData

	// Set on the fragment node backing a ShadowRoot.
	shadowRoot *ShadowRoot
}

// elementData holds data specific to Element nodes.
type elementData struct {
	localName  string
	attributes []Attr
	shadow     *ShadowRoot
	style      map[string]string
}

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// newNode creates a new node with the given type and name.
func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the name of the node.
// For elements, this is the tag name in uppercase.
// For text nodes, this is "#text".
func (n *Node) NodeName() string {
	return n.nodeName
}

// NodeValue returns the character data of text and comment nodes, and the
// empty string for everything else.
func (n *Node) NodeValue() string {
	switch n.nodeType {
	case TextNode, CommentNode:
		return n.data
	}
	return ""
}

// OwnerDocument returns the Document that owns this node.
// For Document nodes, this returns the document itself.
func (n *Node) OwnerDocument() *Document {
	return n.ownerDoc
}

// ParentNode returns the parent of this node. A shadow root has no parent;
// use ShadowIncludingParent to reach its host.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ParentElement returns the parent Element, or nil if the parent is not an element.
func (n *Node) ParentElement() *Element {
	if n.parentNode != nil && n.parentNode.nodeType == ElementNode {
		return (*Element)(n.parentNode)
	}
	return nil
}

// ShadowIncludingParent returns the parent node, or the host element when n
// is a shadow root.
func (n *Node) ShadowIncludingParent() *Node {
	if n.shadowRoot != nil {
		return n.shadowRoot.host.AsNode()
	}
	return n.parentNode
}

// FirstChild returns the first child node, or nil if there are no children.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child node, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// PreviousSibling returns the previous sibling node, or nil if this is the first child.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// NextSibling returns the next sibling node, or nil if this is the last child.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// HasChildNodes returns true if this node has any child nodes.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.firstChild; c != nil; c = c.nextSibling {
		count++
	}
	return count
}

// ChildAt returns the child at index, or nil when out of range.
func (n *Node) ChildAt(index int) *Node {
	if index < 0 {
		return nil
	}
	c := n.firstChild
	for ; c != nil && index > 0; index-- {
		c = c.nextSibling
	}
	return c
}

// Index returns the position of n among its siblings.
func (n *Node) Index() int {
	i := 0
	for c := n.prevSibling; c != nil; c = c.prevSibling {
		i++
	}
	return i
}

// Length returns the DOM length of the node: the byte length of character
// data, or the number of children.
func (n *Node) Length() int {
	switch n.nodeType {
	case TextNode, CommentNode:
		return len(n.data)
	}
	return n.ChildCount()
}

// IsText reports whether n is a Text node.
func (n *Node) IsText() bool {
	return n != nil && n.nodeType == TextNode
}

// IsElement reports whether n is an Element node.
func (n *Node) IsElement() bool {
	return n != nil && n.nodeType == ElementNode
}

// IsShadowRoot reports whether n backs a ShadowRoot.
func (n *Node) IsShadowRoot() bool {
	return n != nil && n.shadowRoot != nil
}

// AsElement returns n as an Element, or nil if it is not one.
func (n *Node) AsElement() *Element {
	if n.IsElement() {
		return (*Element)(n)
	}
	return nil
}

// AsText returns n as a Text, or nil if it is not one.
func (n *Node) AsText() *Text {
	if n.IsText() {
		return (*Text)(n)
	}
	return nil
}

// AsShadowRoot returns the ShadowRoot backed by n, if any.
func (n *Node) AsShadowRoot() *ShadowRoot {
	return n.shadowRoot
}

// GetRootNode returns the root of the node's tree, crossing shadow
// boundaries when shadowIncluding is set.
func (n *Node) GetRootNode(shadowIncluding bool) *Node {
	root := n
	for {
		parent := root.parentNode
		if parent == nil && shadowIncluding {
			parent = root.ShadowIncludingParent()
		}
		if parent == nil {
			return root
		}
		root = parent
	}
}

// IsConnected returns true if the node's shadow-including root is an active
// document.
func (n *Node) IsConnected() bool {
	root := n.GetRootNode(true)
	return root.nodeType == DocumentNode && (*Document)(root).IsActive()
}

// Contains reports whether other is an inclusive descendant of n in the
// light tree.
func (n *Node) Contains(other *Node) bool {
	for c := other; c != nil; c = c.parentNode {
		if c == n {
			return true
		}
	}
	return false
}

// IsShadowIncludingInclusiveAncestorOf reports whether n is other or one of
// its shadow-including ancestors.
func (n *Node) IsShadowIncludingInclusiveAncestorOf(other *Node) bool {
	for c := other; c != nil; c = c.ShadowIncludingParent() {
		if c == n {
			return true
		}
	}
	return false
}

// TextContent returns the text content of the node and its light descendants.
func (n *Node) TextContent() string {
	switch n.nodeType {
	case DocumentNode:
		return ""
	case TextNode, CommentNode:
		return n.data
	default:
		var sb strings.Builder
		n.collectTextContent(&sb)
		return sb.String()
	}
}

func (n *Node) collectTextContent(sb *strings.Builder) {
	for child := n.firstChild; child != nil; child = child.nextSibling {
		switch child.nodeType {
		case TextNode:
			sb.WriteString(child.data)
		case ElementNode, DocumentFragmentNode:
			child.collectTextContent(sb)
		}
	}
}

// AppendChild adds a node to the end of the list of children of this node.
// For error-returning version, use AppendChildWithError.
func (n *Node) AppendChild(child *Node) *Node {
	result, _ := n.AppendChildWithError(child)
	return result
}

// AppendChildWithError adds a node to the end of the list of children of this node.
// Returns an error if the operation violates hierarchy constraints.
func (n *Node) AppendChildWithError(child *Node) (*Node, error) {
	return n.InsertBeforeWithError(child, nil)
}

// InsertBefore inserts a node before a reference child node.
// If refChild is nil, the node is appended to the end.
// For error-returning version, use InsertBeforeWithError.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	result, _ := n.InsertBeforeWithError(newChild, refChild)
	return result
}

// InsertBeforeWithError inserts a node before a reference child node.
// If refChild is nil, the node is appended to the end.
func (n *Node) InsertBeforeWithError(newChild, refChild *Node) (*Node, error) {
	if err := n.validatePreInsertion(newChild, refChild); err != nil {
		return nil, err
	}
	if newChild == refChild {
		return newChild, nil
	}
	if newChild.parentNode != nil {
		newChild.parentNode.RemoveChild(newChild)
	}
	n.insertBefore(newChild, refChild)
	return newChild, nil
}

// validatePreInsertion implements the subset of the pre-insertion checks the
// tree relies on.
func (n *Node) validatePreInsertion(node, child *Node) error {
	if node == nil {
		return ErrNotFound("The node to be inserted is null.")
	}
	if !n.canHaveChildren() {
		return ErrHierarchyRequest("The operation would yield an incorrect node tree.")
	}
	if node.IsShadowIncludingInclusiveAncestorOf(n) {
		return ErrHierarchyRequest("The new child element contains the parent.")
	}
	if child != nil && child.parentNode != n {
		return ErrNotFound("The node before which the new node is to be inserted is not a child of this node.")
	}
	switch node.nodeType {
	case DocumentNode:
		return ErrHierarchyRequest("Documents cannot be inserted.")
	case TextNode:
		if n.nodeType == DocumentNode {
			return ErrHierarchyRequest("Cannot insert Text node as a direct child of Document.")
		}
	}
	if node.shadowRoot != nil {
		return ErrHierarchyRequest("Shadow roots cannot be inserted.")
	}
	return nil
}

// canHaveChildren returns true if this node can have child nodes.
func (n *Node) canHaveChildren() bool {
	switch n.nodeType {
	case DocumentNode, DocumentFragmentNode, ElementNode:
		return true
	default:
		return false
	}
}

// insertBefore links newChild before refChild without validation.
func (n *Node) insertBefore(newChild, refChild *Node) {
	if newChild.nodeType == DocumentFragmentNode {
		for c := newChild.firstChild; c != nil; {
			next := c.nextSibling
			newChild.unlink(c)
			n.insertBefore(c, refChild)
			c = next
		}
		return
	}

	newChild.parentNode = n
	if refChild == nil {
		newChild.prevSibling = n.lastChild
		newChild.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		n.lastChild = newChild
	} else {
		newChild.nextSibling = refChild
		newChild.prevSibling = refChild.prevSibling
		if refChild.prevSibling != nil {
			refChild.prevSibling.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		refChild.prevSibling = newChild
	}

	if n.isHostOrSlotContext() {
		n.notifyShadowTreeChanged()
	}
}

// RemoveChild removes child from this node. Observers of a connected
// document are told before the node leaves the tree.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil || child.parentNode != n {
		return nil, ErrNotFound("The node to be removed is not a child of this node.")
	}
	if doc := n.ownerDoc; doc != nil && n.IsConnected() {
		doc.notifyNodeWillBeRemoved(child)
	}
	// An observer may already have moved the node.
	if child.parentNode != n {
		return child, nil
	}
	hostContext := n.isHostOrSlotContext()
	n.unlink(child)
	if hostContext {
		n.notifyShadowTreeChanged()
	}
	return child, nil
}

// Remove removes this node from its parent.
func (n *Node) Remove() {
	if n.parentNode != nil {
		n.parentNode.RemoveChild(n)
	}
}

// RemoveAllChildren removes every child of n, telling observers once for the
// whole container.
func (n *Node) RemoveAllChildren() {
	if n.firstChild == nil {
		return
	}
	if doc := n.ownerDoc; doc != nil && n.IsConnected() {
		doc.notifyChildrenWillBeRemoved(n)
	}
	hostContext := n.isHostOrSlotContext()
	for n.firstChild != nil {
		n.unlink(n.firstChild)
	}
	if hostContext {
		n.notifyShadowTreeChanged()
	}
}

func (n *Node) unlink(c *Node) {
	if c.prevSibling != nil {
		c.prevSibling.nextSibling = c.nextSibling
	} else {
		n.firstChild = c.nextSibling
	}
	if c.nextSibling != nil {
		c.nextSibling.prevSibling = c.prevSibling
	} else {
		n.lastChild = c.prevSibling
	}
	c.parentNode = nil
	c.prevSibling = nil
	c.nextSibling = nil
}

// Normalize removes empty text nodes and merges adjacent text nodes in the
// subtree rooted at n.
func (n *Node) Normalize() {
	for child := n.firstChild; child != nil; {
		next := child.nextSibling
		if child.nodeType != TextNode {
			child.Normalize()
			child = next
			continue
		}
		if len(child.data) == 0 {
			n.RemoveChild(child)
			child = next
			continue
		}
		for next != nil && next.nodeType == TextNode {
			following := next.nextSibling
			offset := len(child.data)
			child.data += next.data
			if doc := n.ownerDoc; doc != nil && n.IsConnected() {
				doc.notifyTextNodesMerged(next, offset)
			}
			n.RemoveChild(next)
			next = following
		}
		child = next
	}
}

// isHostOrSlotContext reports whether changing n's children changes the
// flat tree through slot assignment.
func (n *Node) isHostOrSlotContext() bool {
	if n.elementData != nil && n.elementData.shadow != nil {
		return true
	}
	return n.IsElement() && n.elementData.localName == "slot" && n.containingShadowRoot() != nil
}

func (n *Node) notifyShadowTreeChanged() {
	host := n.AsElement()
	if host == nil || host.ShadowRoot() == nil {
		if sr := n.containingShadowRoot(); sr != nil {
			host = sr.host
		}
	}
	if host == nil || n.ownerDoc == nil || !host.AsNode().IsConnected() {
		return
	}
	n.ownerDoc.notifyShadowTreeChanged(host)
}

// containingShadowRoot returns the shadow root whose tree contains n.
func (n *Node) containingShadowRoot() *ShadowRoot {
	return n.GetRootNode(false).shadowRoot
}

// ContainingShadowRoot returns the shadow root whose tree contains n, or nil
// when n lives in the document tree.
func (n *Node) ContainingShadowRoot() *ShadowRoot {
	return n.containingShadowRoot()
}
