package dom

// MutationObserver receives synchronous notifications about tree mutations
// that can invalidate positions held outside the tree. Observers are
// registered per document; the document never keeps any other reference to
// them.
type MutationObserver interface {
	// OnTextReplaced is called after count bytes at offset in node were
	// replaced by newLength bytes.
	OnTextReplaced(node *Node, offset, oldLength, newLength int)

	// OnTextNodeSplit is called after oldNode was split; the new node is
	// oldNode's next sibling and oldNode keeps the prefix.
	OnTextNodeSplit(oldNode *Node)

	// OnTextNodesMerged is called before removedNode leaves the tree, after
	// its data was appended to its previous sibling at offset.
	OnTextNodesMerged(removedNode *Node, offset int)

	// OnNodeWillBeRemoved is called before node is removed from its parent.
	OnNodeWillBeRemoved(node *Node)

	// OnChildrenWillBeRemoved is called before all children of container
	// are removed.
	OnChildrenWillBeRemoved(container *Node)

	// OnShadowTreeChanged is called after a shadow root was attached to or
	// detached from host, or slot assignment under host changed.
	OnShadowTreeChanged(host *Element)

	// OnDocumentDetached is called when the document is detached.
	OnDocumentDetached(doc *Document)
}

// AddObserver registers an observer for this document.
func (d *Document) AddObserver(o MutationObserver) {
	if o == nil {
		return
	}
	data := d.AsNode().documentData
	for _, existing := range data.observers {
		if existing == o {
			return
		}
	}
	data.observers = append(data.observers, o)
}

// RemoveObserver unregisters an observer.
func (d *Document) RemoveObserver(o MutationObserver) {
	data := d.AsNode().documentData
	for i, existing := range data.observers {
		if existing == o {
			data.observers = append(data.observers[:i:i], data.observers[i+1:]...)
			return
		}
	}
}

// observerSnapshot copies the observer list so callbacks may unregister.
func (d *Document) observerSnapshot() []MutationObserver {
	return append([]MutationObserver(nil), d.AsNode().documentData.observers...)
}

func (d *Document) notifyTextReplaced(node *Node, offset, oldLength, newLength int) {
	for _, o := range d.observerSnapshot() {
		o.OnTextReplaced(node, offset, oldLength, newLength)
	}
}

func (d *Document) notifyTextNodeSplit(oldNode *Node) {
	for _, o := range d.observerSnapshot() {
		o.OnTextNodeSplit(oldNode)
	}
}

func (d *Document) notifyTextNodesMerged(removedNode *Node, offset int) {
	for _, o := range d.observerSnapshot() {
		o.OnTextNodesMerged(removedNode, offset)
	}
}

func (d *Document) notifyNodeWillBeRemoved(node *Node) {
	for _, o := range d.observerSnapshot() {
		o.OnNodeWillBeRemoved(node)
	}
}

func (d *Document) notifyChildrenWillBeRemoved(container *Node) {
	for _, o := range d.observerSnapshot() {
		o.OnChildrenWillBeRemoved(container)
	}
}

func (d *Document) notifyShadowTreeChanged(host *Element) {
	for _, o := range d.observerSnapshot() {
		o.OnShadowTreeChanged(host)
	}
}
