package js

import (
	"strings"

	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/dop251/goja"
)

// boundary is a script-visible boundary point with its offset in tree
// units.
type boundary struct {
	node   *dom.Node
	offset int
}

// toScriptOffset converts a tree offset into the units script sees.
func toScriptOffset(node *dom.Node, offset int) int {
	if node.IsText() {
		return dom.ByteOffsetToUTF16Offset(node.NodeValue(), offset)
	}
	return offset
}

// positionFromScript validates a script boundary point and converts it to a
// position. It throws IndexSizeError for offsets past the end of node.
func (b *DOMBinder) positionFromScript(node *dom.Node, offset uint32) editing.Position {
	if node.IsText() {
		data := node.NodeValue()
		if int(offset) > dom.UTF16Length(data) {
			b.throwIndexSizeError()
		}
		return editing.NewPosition(node, dom.UTF16OffsetToByteOffset(data, int(offset)))
	}
	if int(offset) > node.ChildCount() {
		b.throwIndexSizeError()
	}
	return editing.NewPosition(node, int(offset))
}

// BindSelection returns the Selection object of state. The same object is
// returned on every call.
func (b *DOMBinder) BindSelection(state *editing.SelectionState) *goja.Object {
	if b.selection != nil {
		return b.selection
	}
	vm := b.runtime.vm
	doc := state.Document()
	sel := vm.NewObject()
	sel.SetPrototype(b.selectionProto)
	b.selection = sel

	// endpoints returns the anchor and focus script sees. They come from the
	// range script set while it is valid, else from the visible selection.
	endpoints := func() (anchor, focus boundary, ok bool) {
		r := state.FirstRange()
		if r == nil {
			return boundary{}, boundary{}, false
		}
		start := boundary{r.StartContainer(), r.StartOffset()}
		end := boundary{r.EndContainer(), r.EndOffset()}
		if state.ComputeVisibleSelectionInDOMTree().IsBaseFirst() {
			return start, end, true
		}
		return end, start, true
	}

	// inDocument reports whether node may hold a boundary of this
	// selection. Nodes of other documents are ignored.
	inDocument := func(node *dom.Node) bool {
		return node == doc.AsNode() || node.OwnerDocument() == doc
	}

	nodeArg := func(call goja.FunctionCall, i int, method string) *dom.Node {
		if len(call.Arguments) <= i || goja.IsNull(call.Arguments[i]) || goja.IsUndefined(call.Arguments[i]) {
			return nil
		}
		node := b.getGoNode(call.Arguments[i])
		if node == nil {
			panic(vm.NewTypeError("Failed to execute '%s' on 'Selection': parameter %d is not of type 'Node'.", method, i+1))
		}
		return node
	}
	offsetArg := func(call goja.FunctionCall, i int) uint32 {
		if len(call.Arguments) <= i {
			return 0
		}
		return toUint32(call.Arguments[i])
	}

	// commit sets base and extent as a script would and records the exact
	// range so reading it back returns the same boundary points.
	commit := func(base, extent editing.Position, directional bool) {
		state.SetSelection(editing.NewSelectionBuilder(editing.AuthoredTree).
			SetBaseAndExtent(base, extent).
			SetIsDirectional(directional).
			Build(), editing.SetSelectionOptions{})
		if state.IsNone() {
			return
		}
		c, err := editing.ComparePositions(base, extent, editing.AuthoredTree)
		if err != nil {
			return
		}
		start, end := base, extent
		if c > 0 {
			start, end = extent, base
		}
		r := dom.NewRange(doc)
		if r.SetStart(start.Anchor(), start.Offset()) != nil || r.SetEnd(end.Anchor(), end.Offset()) != nil {
			return
		}
		state.SetLogicalRange(r)
	}

	getter := func(name string, fn func() goja.Value) {
		sel.DefineAccessorProperty(name, vm.ToValue(func(goja.FunctionCall) goja.Value {
			return fn()
		}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	point := func(pick func(anchor, focus boundary) boundary) (goja.Value, goja.Value) {
		anchor, focus, ok := endpoints()
		if !ok {
			return goja.Null(), vm.ToValue(0)
		}
		p := pick(anchor, focus)
		return b.BindNode(p.node), vm.ToValue(toScriptOffset(p.node, p.offset))
	}
	nodeOf := func(pick func(anchor, focus boundary) boundary) func() goja.Value {
		return func() goja.Value {
			n, _ := point(pick)
			return n
		}
	}
	offsetOf := func(pick func(anchor, focus boundary) boundary) func() goja.Value {
		return func() goja.Value {
			_, o := point(pick)
			return o
		}
	}
	anchorOf := func(a, _ boundary) boundary { return a }
	focusOf := func(_, f boundary) boundary { return f }

	getter("anchorNode", nodeOf(anchorOf))
	getter("anchorOffset", offsetOf(anchorOf))
	getter("focusNode", nodeOf(focusOf))
	getter("focusOffset", offsetOf(focusOf))
	getter("isCollapsed", func() goja.Value {
		r := state.FirstRange()
		return vm.ToValue(r == nil || r.Collapsed())
	})
	getter("rangeCount", func() goja.Value {
		if state.IsNone() {
			return vm.ToValue(0)
		}
		return vm.ToValue(1)
	})
	getter("type", func() goja.Value {
		return vm.ToValue(state.ComputeVisibleSelectionInDOMTree().Type().String())
	})
	getter("direction", func() goja.Value {
		vs := state.ComputeVisibleSelectionInDOMTree()
		switch {
		case !vs.IsRange() || !vs.IsDirectional():
			return vm.ToValue("none")
		case vs.IsBaseFirst():
			return vm.ToValue("forward")
		}
		return vm.ToValue("backward")
	})

	collapse := func(call goja.FunctionCall) goja.Value {
		node := nodeArg(call, 0, "collapse")
		if node == nil {
			state.Clear()
			return goja.Undefined()
		}
		p := b.positionFromScript(node, offsetArg(call, 1))
		if inDocument(node) {
			commit(p, p, false)
		}
		return goja.Undefined()
	}
	sel.Set("collapse", collapse)
	sel.Set("setPosition", collapse)

	sel.Set("extend", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "extend", "Selection")
		node := nodeArg(call, 0, "extend")
		if node == nil {
			panic(vm.NewTypeError("Failed to execute 'extend' on 'Selection': parameter 1 is not of type 'Node'."))
		}
		anchor, _, ok := endpoints()
		if !ok {
			b.throwDOMError(dom.ErrInvalidState("This Selection object doesn't have any Ranges."))
		}
		p := b.positionFromScript(node, offsetArg(call, 1))
		if inDocument(node) {
			commit(editing.NewPosition(anchor.node, anchor.offset), p, true)
		}
		return goja.Undefined()
	})

	sel.Set("setBaseAndExtent", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 4, "setBaseAndExtent", "Selection")
		anchorNode := nodeArg(call, 0, "setBaseAndExtent")
		focusNode := nodeArg(call, 2, "setBaseAndExtent")
		if anchorNode == nil || focusNode == nil {
			state.Clear()
			return goja.Undefined()
		}
		base := b.positionFromScript(anchorNode, offsetArg(call, 1))
		extent := b.positionFromScript(focusNode, offsetArg(call, 3))
		if inDocument(anchorNode) && inDocument(focusNode) {
			commit(base, extent, true)
		}
		return goja.Undefined()
	})

	sel.Set("selectAllChildren", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "selectAllChildren", "Selection")
		node := nodeArg(call, 0, "selectAllChildren")
		if node == nil || !inDocument(node) {
			return goja.Undefined()
		}
		commit(editing.NewPosition(node, 0), editing.NewPosition(node, node.ChildCount()), false)
		return goja.Undefined()
	})

	collapseTo := func(name string, toStart bool) {
		sel.Set(name, func(goja.FunctionCall) goja.Value {
			r := state.FirstRange()
			if r == nil {
				b.throwDOMError(dom.ErrInvalidState("There is no selection to collapse."))
			}
			p := editing.NewPosition(r.EndContainer(), r.EndOffset())
			if toStart {
				p = editing.NewPosition(r.StartContainer(), r.StartOffset())
			}
			commit(p, p, false)
			return goja.Undefined()
		})
	}
	collapseTo("collapseToStart", true)
	collapseTo("collapseToEnd", false)

	removeAll := func(goja.FunctionCall) goja.Value {
		state.Clear()
		return goja.Undefined()
	}
	sel.Set("removeAllRanges", removeAll)
	sel.Set("empty", removeAll)

	sel.Set("selectAll", func(goja.FunctionCall) goja.Value {
		state.SelectAll()
		return goja.Undefined()
	})

	sel.Set("getRangeAt", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "getRangeAt", "Selection")
		r := state.FirstRange()
		if call.Arguments[0].ToInteger() != 0 || r == nil {
			b.throwIndexSizeError()
		}
		return b.BindRange(r)
	})

	sel.Set("addRange", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "addRange", "Selection")
		r := b.getGoRange(call.Arguments[0])
		if r == nil {
			panic(vm.NewTypeError("Failed to execute 'addRange' on 'Selection': parameter 1 is not of type 'Range'."))
		}
		// Only one range is supported; adding to a non-empty selection is
		// ignored.
		if !state.IsNone() || r.OwnerDocument() != doc {
			return goja.Undefined()
		}
		commit(editing.NewPosition(r.StartContainer(), r.StartOffset()),
			editing.NewPosition(r.EndContainer(), r.EndOffset()), false)
		return goja.Undefined()
	})

	sel.Set("containsNode", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "containsNode", "Selection")
		node := nodeArg(call, 0, "containsNode")
		r := state.FirstRange()
		if node == nil || r == nil {
			return vm.ToValue(false)
		}
		allowPartial := len(call.Arguments) > 1 && call.Arguments[1].ToBoolean()
		if allowPartial {
			return vm.ToValue(r.IntersectsNode(node))
		}
		parent := node.ParentNode()
		if parent == nil {
			return vm.ToValue(false)
		}
		before, err1 := r.ComparePoint(parent, node.Index())
		after, err2 := r.ComparePoint(parent, node.Index()+1)
		return vm.ToValue(err1 == nil && err2 == nil && before == 0 && after == 0)
	})

	sel.Set("modify", func(call goja.FunctionCall) goja.Value {
		arg := func(i int) string {
			if len(call.Arguments) <= i {
				return ""
			}
			return strings.ToLower(call.Arguments[i].String())
		}
		alter, ok := parseAlter(arg(0))
		if !ok {
			return goja.Undefined()
		}
		direction, ok := parseDirection(arg(1))
		if !ok {
			return goja.Undefined()
		}
		granularity, ok := editing.ParseGranularity(arg(2))
		if !ok {
			return goja.Undefined()
		}
		state.ModifyBySystem(alter, direction, granularity)
		return goja.Undefined()
	})

	sel.Set("toString", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(state.SelectedText(editing.DefaultTextBehavior))
	})

	return sel
}

func parseAlter(s string) (editing.SelectionAlteration, bool) {
	switch s {
	case "move":
		return editing.AlterMove, true
	case "extend":
		return editing.AlterExtend, true
	}
	return editing.AlterMove, false
}

func parseDirection(s string) (editing.SelectionDirection, bool) {
	switch s {
	case "forward":
		return editing.DirectionForward, true
	case "backward":
		return editing.DirectionBackward, true
	case "left":
		return editing.DirectionLeft, true
	case "right":
		return editing.DirectionRight, true
	}
	return editing.DirectionForward, false
}

// BindRange returns a script object for r. Offsets are converted on every
// read, so edits to the text are reflected.
func (b *DOMBinder) BindRange(r *dom.Range) *goja.Object {
	vm := b.runtime.vm
	obj := vm.NewObject()
	obj.SetPrototype(b.rangeProto)
	obj.Set("_goRange", r)

	getter := func(name string, fn func() goja.Value) {
		obj.DefineAccessorProperty(name, vm.ToValue(func(goja.FunctionCall) goja.Value {
			return fn()
		}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	getter("startContainer", func() goja.Value { return b.BindNode(r.StartContainer()) })
	getter("startOffset", func() goja.Value {
		return vm.ToValue(toScriptOffset(r.StartContainer(), r.StartOffset()))
	})
	getter("endContainer", func() goja.Value { return b.BindNode(r.EndContainer()) })
	getter("endOffset", func() goja.Value {
		return vm.ToValue(toScriptOffset(r.EndContainer(), r.EndOffset()))
	})
	getter("collapsed", func() goja.Value { return vm.ToValue(r.Collapsed()) })
	getter("commonAncestorContainer", func() goja.Value { return b.nodeOrNull(r.CommonAncestorContainer()) })

	setBoundary := func(name string, set func(*dom.Node, int) error) {
		obj.Set(name, func(call goja.FunctionCall) goja.Value {
			b.requireArgs(call, 2, name, "Range")
			node := b.getGoNode(call.Arguments[0])
			if node == nil {
				panic(vm.NewTypeError("Failed to execute '%s' on 'Range': parameter 1 is not of type 'Node'.", name))
			}
			p := b.positionFromScript(node, toUint32(call.Arguments[1]))
			if err := set(p.Anchor(), p.Offset()); err != nil {
				b.throwError(err)
			}
			return goja.Undefined()
		})
	}
	setBoundary("setStart", r.SetStart)
	setBoundary("setEnd", r.SetEnd)

	obj.Set("collapse", func(call goja.FunctionCall) goja.Value {
		r.Collapse(len(call.Arguments) > 0 && call.Arguments[0].ToBoolean())
		return goja.Undefined()
	})
	obj.Set("selectNodeContents", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "selectNodeContents", "Range")
		node := b.getGoNode(call.Arguments[0])
		if node == nil {
			panic(vm.NewTypeError("Failed to execute 'selectNodeContents' on 'Range': parameter 1 is not of type 'Node'."))
		}
		if err := r.SelectNodeContents(node); err != nil {
			b.throwError(err)
		}
		return goja.Undefined()
	})
	obj.Set("cloneRange", func(goja.FunctionCall) goja.Value {
		return b.BindRange(r.CloneRange())
	})
	obj.Set("toString", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(r.ToString())
	})
	return obj
}

func (b *DOMBinder) getGoRange(v goja.Value) *dom.Range {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil {
		return nil
	}
	if rv := obj.Get("_goRange"); rv != nil {
		if r, ok := rv.Export().(*dom.Range); ok {
			return r
		}
	}
	return nil
}
