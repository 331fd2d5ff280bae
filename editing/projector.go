package editing

import "github.com/chrisuehlinger/selectionkit/dom"

// ProjectPosition maps p from one tree space to the equivalent boundary
// point in the other. Points with no counterpart, such as inside an
// unassigned light child, fall back to the start of the nearest ancestor
// present in the target tree.
func ProjectPosition(p Position, from, to TreeSpace) Position {
	if p.IsNull() || from == to {
		return p
	}
	fromTree, toTree := from.Tree(), to.Tree()

	if p.kind != OffsetInAnchor {
		if dom.InTree(toTree, p.anchor) && toTree.Parent(p.anchor) != nil {
			return p
		}
		return projectFallback(p.anchor, fromTree, toTree)
	}

	n := p.anchor
	if n.IsShadowRoot() && to == FlatTree {
		host := n.AsShadowRoot().Host().AsNode()
		if dom.InTree(toTree, host) {
			return NewPosition(host, p.offset)
		}
		return projectFallback(host, fromTree, toTree)
	}
	if !n.IsElement() && !n.IsShadowRoot() || dom.SameChildren(n) {
		if dom.InTree(toTree, n) {
			return p
		}
		return projectFallback(n, fromTree, toTree)
	}

	// A host or an active slot: children differ between the trees, so go
	// through the child the offset points at.
	if child := fromTree.ChildAt(n, p.offset); child != nil {
		if dom.InTree(toTree, child) && toTree.Parent(child) != nil {
			return BeforeNodePosition(child)
		}
		return projectFallback(child, fromTree, toTree)
	}
	if last := fromTree.LastChild(n); last != nil && dom.InTree(toTree, last) && toTree.Parent(last) != nil {
		return AfterNodePosition(last)
	}
	if dom.InTree(toTree, n) {
		return LastPositionInNode(n, to)
	}
	return projectFallback(n, fromTree, toTree)
}

func projectFallback(n *dom.Node, fromTree, toTree dom.Tree) Position {
	for a := n; a != nil; a = fromTree.Parent(a) {
		if dom.InTree(toTree, a) {
			return FirstPositionInNode(a)
		}
	}
	return Position{}
}

// Project maps every position of sel into the other tree space and
// restores start/end ordering there.
func Project(sel VisibleSelection, from, to TreeSpace) VisibleSelection {
	if sel.IsNone() || from == to {
		return sel
	}
	out := sel
	out.space = to
	out.base = ProjectPosition(sel.base, from, to)
	out.extent = ProjectPosition(sel.extent, from, to)
	out.start = ProjectPosition(sel.start, from, to)
	out.end = ProjectPosition(sel.end, from, to)
	if out.base.IsNull() || out.start.IsNull() {
		return VisibleSelection{space: to}
	}
	if comparePositions(out.start, out.end, to) > 0 {
		out.start, out.end = out.end, out.start
	}
	out.baseIsFirst = comparePositions(out.base, out.extent, to) <= 0
	if out.start == out.end {
		out.base, out.extent = out.start, out.start
	}
	return out
}

// projectBaseExtent projects only base and extent, without canonicalizing
// the result.
func projectBaseExtent(sel VisibleSelection, from, to TreeSpace) VisibleSelection {
	if sel.IsNone() || from == to {
		return sel
	}
	out := visibleSelectionWithoutValidation(ProjectPosition(sel.base, from, to), ProjectPosition(sel.extent, from, to), to)
	out.affinity = sel.affinity
	out.isDirectional = sel.isDirectional
	return out
}

// ProjectedPair keeps the committed selection in both tree spaces. The flat
// copy is recomputed lazily after repairs or shadow tree changes.
type ProjectedPair struct {
	authored  VisibleSelection
	flat      VisibleSelection
	flatStale bool
}

// Set stores vs as the selection of its own space and projects it into the
// other. With adjust false only base and extent are projected.
func (p *ProjectedPair) Set(vs VisibleSelection, adjust bool) {
	project := Project
	if !adjust {
		project = projectBaseExtent
	}
	if vs.space == FlatTree {
		p.flat = vs
		p.authored = project(vs, FlatTree, AuthoredTree)
	} else {
		p.authored = vs
		p.flat = project(vs, AuthoredTree, FlatTree)
	}
	p.flatStale = false
}

// SetAuthored replaces the authored selection and marks the flat copy stale.
func (p *ProjectedPair) SetAuthored(vs VisibleSelection) {
	p.authored = vs
	p.flatStale = true
}

// MarkFlatStale forces the flat copy to be recomputed on next access.
func (p *ProjectedPair) MarkFlatStale() {
	p.flatStale = true
}

// In returns the selection in space.
func (p *ProjectedPair) In(space TreeSpace) VisibleSelection {
	if space == AuthoredTree {
		return p.authored
	}
	if p.flatStale {
		p.flat = Project(p.authored, AuthoredTree, FlatTree)
		p.flatStale = false
	}
	if p.flat.IsNone() {
		return VisibleSelection{space: FlatTree}
	}
	return p.flat
}

// Clear drops both selections.
func (p *ProjectedPair) Clear() {
	*p = ProjectedPair{flat: VisibleSelection{space: FlatTree}}
}
