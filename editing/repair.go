package editing

import "github.com/chrisuehlinger/selectionkit/dom"

// Repairs run synchronously from the document's mutation notifications, so
// the committed positions never point into a removed subtree or past the
// end of a text node.

func (e *SelectionEditor) didUpdateCharacterData(node *dom.Node, offset, oldLength, newLength int) {
	e.repair(nil, func(p Position) Position {
		return positionAfterTextReplacement(p, node, offset, oldLength, newLength)
	})
}

func (e *SelectionEditor) didSplitTextNode(oldNode *dom.Node) {
	next := oldNode.NextSibling()
	parent := oldNode.ParentNode()
	if next == nil || parent == nil {
		return
	}
	prefix := oldNode.Length()
	index := oldNode.Index()
	e.repair(nil, func(p Position) Position {
		if p.kind != OffsetInAnchor {
			return p
		}
		switch {
		case p.anchor == oldNode && p.offset > prefix:
			return NewPosition(next, p.offset-prefix)
		case p.anchor == parent && p.offset > index:
			return NewPosition(parent, p.offset+1)
		}
		return p
	})
}

func (e *SelectionEditor) didMergeTextNodes(removed *dom.Node, offset int) {
	prev := removed.PreviousSibling()
	parent := removed.ParentNode()
	if prev == nil || parent == nil {
		return
	}
	index := removed.Index()
	e.repair(nil, func(p Position) Position {
		if p.kind != OffsetInAnchor {
			return p
		}
		switch {
		case p.anchor == removed:
			return NewPosition(prev, offset+p.offset)
		case p.anchor == parent && p.offset == index:
			return NewPosition(prev, offset)
		}
		return p
	})
}

func (e *SelectionEditor) nodeWillBeRemoved(node *dom.Node) {
	if !node.IsConnected() {
		return
	}
	e.repair(node, func(p Position) Position {
		return positionForNodeRemoval(p, node)
	})
}

func (e *SelectionEditor) nodeChildrenWillBeRemoved(container *dom.Node) {
	if !container.IsConnected() {
		return
	}
	e.repair(container, func(p Position) Position {
		if p.anchor == container && p.kind == OffsetInAnchor {
			return FirstPositionInNode(container)
		}
		if inLightSubtree(container, p.anchor) {
			return FirstPositionInNode(container)
		}
		return p
	})
}

func (e *SelectionEditor) didChangeShadowTree() {
	if e.pair.In(AuthoredTree).IsNone() {
		return
	}
	e.pair.MarkFlatStale()
	e.pending.MarkDirty()
}

func (e *SelectionEditor) documentDetached() {
	e.generation++
	e.pair.Clear()
	e.logicalRange = nil
	if e.onDetach != nil {
		e.onDetach()
	}
}

// repair maps every committed position through update. When node is set
// the repair is for a removal and an unchanged selection that intersects
// node still needs its highlight cleared.
func (e *SelectionEditor) repair(node *dom.Node, update func(Position) Position) {
	vs := e.pair.In(AuthoredTree)
	if vs.IsNone() || !e.isActive() {
		return
	}
	// Base and extent are start and end in some order, so mapping the
	// ordered pair covers both.
	start, end := update(vs.start), update(vs.end)
	if start == vs.start && end == vs.end {
		if node != nil && selectionIntersectsNode(vs, node) {
			e.pending.MarkRenderTreeDirty()
		}
		return
	}
	next := orderedSelection(start, end, vs.baseIsFirst)
	e.pending.MarkRenderTreeDirty()
	next.isDirectional = vs.isDirectional
	if next.IsCaret() {
		next.affinity = vs.affinity
	}
	if !next.start.IsConnected() || !next.end.IsConnected() {
		next = VisibleSelection{space: AuthoredTree}
	}
	e.commitRepaired(vs, next)
}

func orderedSelection(start, end Position, baseIsFirst bool) VisibleSelection {
	if baseIsFirst {
		return visibleSelectionWithoutValidation(start, end, AuthoredTree)
	}
	return visibleSelectionWithoutValidation(end, start, AuthoredTree)
}

func positionAfterTextReplacement(p Position, node *dom.Node, offset, oldLength, newLength int) Position {
	if p.kind != OffsetInAnchor || p.anchor != node {
		return p
	}
	pos := p.offset
	switch {
	case pos >= offset && pos <= offset+oldLength:
		pos = offset
	case pos > offset+oldLength:
		pos += newLength - oldLength
	}
	if length := node.Length(); pos > length {
		pos = length
	}
	return NewPosition(node, pos)
}

// positionForNodeRemoval returns where p ends up once node leaves the tree.
func positionForNodeRemoval(p Position, node *dom.Node) Position {
	if p.IsNull() {
		return p
	}
	if node.IsShadowRoot() {
		if node.IsShadowIncludingInclusiveAncestorOf(p.anchor) {
			return FirstPositionInNode(node.AsShadowRoot().Host().AsNode())
		}
		return p
	}
	parent := node.ShadowIncludingParent()
	if parent == nil {
		return p
	}
	index := node.Index()
	if p.kind != OffsetInAnchor {
		if node.IsShadowIncludingInclusiveAncestorOf(p.anchor) {
			return NewPosition(parent, index)
		}
		return p
	}
	if p.anchor == parent && p.offset > index {
		return NewPosition(parent, p.offset-1)
	}
	if node.IsShadowIncludingInclusiveAncestorOf(p.anchor) {
		return NewPosition(parent, index)
	}
	return p
}

// inLightSubtree reports whether n is inside one of container's light
// children, as opposed to its shadow tree.
func inLightSubtree(container, n *dom.Node) bool {
	for c := n; c != nil; c = c.ShadowIncludingParent() {
		if c.ShadowIncludingParent() == container {
			return !c.IsShadowRoot()
		}
	}
	return false
}

func selectionIntersectsNode(vs VisibleSelection, node *dom.Node) bool {
	if !vs.IsRange() {
		return false
	}
	before, after := BeforeNodePosition(node), AfterNodePosition(node)
	return comparePositions(before, vs.end, AuthoredTree) < 0 &&
		comparePositions(after, vs.start, AuthoredTree) > 0
}
