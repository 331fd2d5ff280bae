package dom

// ShadowRootMode indicates whether the shadow root is open or closed.
type ShadowRootMode string

const (
	// ShadowRootModeOpen means the shadow root's internal features are accessible
	// from script, e.g. using Element.shadowRoot.
	ShadowRootModeOpen ShadowRootMode = "open"
	// ShadowRootModeClosed means the shadow root's internal features are inaccessible
	// from script.
	ShadowRootModeClosed ShadowRootMode = "closed"
)

// ShadowRoot represents a shadow root in the document tree.
// A shadow root is the root of a shadow tree. It is a DocumentFragment-like
// node that encapsulates a subtree rendered in place of its host's children.
type ShadowRoot struct {
	node *Node // Underlying node (uses DocumentFragmentNode type)
	mode ShadowRootMode
	host *Element
}

// newShadowRoot creates a new shadow root for the given host element.
func newShadowRoot(host *Element, mode ShadowRootMode) *ShadowRoot {
	node := newNode(DocumentFragmentNode, "#document-fragment", host.AsNode().ownerDoc)
	sr := &ShadowRoot{
		node: node,
		mode: mode,
		host: host,
	}
	// Back-reference so tree walks can tell a shadow root from a fragment.
	node.shadowRoot = sr
	return sr
}

// AsNode returns the underlying Node.
func (sr *ShadowRoot) AsNode() *Node {
	return sr.node
}

// Mode returns the mode of this shadow root ("open" or "closed").
func (sr *ShadowRoot) Mode() ShadowRootMode {
	return sr.mode
}

// Host returns the element that hosts this shadow root, or nil once detached.
func (sr *ShadowRoot) Host() *Element {
	return sr.host
}

// GetElementByID returns the first element in the shadow tree with the given id.
func (sr *ShadowRoot) GetElementByID(id string) *Element {
	return findElementByID(sr.node, id)
}

// Append appends nodes or strings to this shadow root.
func (sr *ShadowRoot) Append(nodes ...interface{}) {
	for _, item := range nodes {
		switch v := item.(type) {
		case *Node:
			sr.node.AppendChild(v)
		case *Element:
			sr.node.AppendChild(v.AsNode())
		case *Text:
			sr.node.AppendChild(v.AsNode())
		case string:
			sr.node.AppendChild(sr.node.ownerDoc.CreateTextNode(v))
		}
	}
}

// slots returns the slot elements of the shadow tree in tree order.
func (sr *ShadowRoot) slots() []*Element {
	var result []*Element
	for n := sr.node.firstChild; n != nil; n = nextInSubtree(n, sr.node) {
		if el := n.AsElement(); el != nil && el.LocalName() == "slot" {
			result = append(result, el)
		}
	}
	return result
}

// slotFor returns the first slot whose name matches the slot name of
// the light child, or nil.
func (sr *ShadowRoot) slotFor(child *Node) *Element {
	name := slotNameOf(child)
	for _, slot := range sr.slots() {
		if slot.GetAttribute("name") == name {
			return slot
		}
	}
	return nil
}

// slotNameOf returns the name of the slot a light child asks for.
func slotNameOf(n *Node) string {
	if el := n.AsElement(); el != nil {
		return el.GetAttribute("slot")
	}
	return ""
}

// AssignedSlot returns the slot a host's light child is rendered in, or nil
// when the child is not assigned.
func (n *Node) AssignedSlot() *Element {
	parent := n.parentNode
	if parent == nil || !parent.IsElement() {
		return nil
	}
	sr := parent.AsElement().ShadowRoot()
	if sr == nil {
		return nil
	}
	if n.nodeType != ElementNode && n.nodeType != TextNode {
		return nil
	}
	return sr.slotFor(n)
}

// AssignedNodes returns the light children of the host assigned to this slot.
func (e *Element) AssignedNodes() []*Node {
	if e.LocalName() != "slot" {
		return nil
	}
	sr := e.AsNode().containingShadowRoot()
	if sr == nil || sr.host == nil {
		return nil
	}
	var assigned []*Node
	for c := sr.host.AsNode().firstChild; c != nil; c = c.nextSibling {
		if c.nodeType != ElementNode && c.nodeType != TextNode {
			continue
		}
		if sr.slotFor(c) == e {
			assigned = append(assigned, c)
		}
	}
	return assigned
}

// nextInSubtree returns the pre-order successor of n that stays within root.
func nextInSubtree(n, root *Node) *Node {
	if n.firstChild != nil {
		return n.firstChild
	}
	for c := n; c != nil && c != root; c = c.parentNode {
		if c.nextSibling != nil {
			return c.nextSibling
		}
	}
	return nil
}
