package js

import (
	"errors"

	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/dop251/goja"
)

// toUint32 converts a JavaScript value to an unsigned 32-bit integer per Web IDL.
func toUint32(v goja.Value) uint32 {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	num := v.ToFloat()
	if num != num {
		return 0
	}
	return uint32(int64(num) & 0xFFFFFFFF)
}

// DOMBinder binds document nodes to JavaScript objects.
type DOMBinder struct {
	runtime *Runtime
	nodeMap map[*dom.Node]*goja.Object // same JS object for the same node

	// Prototype objects for instanceof checks
	nodeProto         *goja.Object
	elementProto      *goja.Object
	textProto         *goja.Object
	documentProto     *goja.Object
	shadowRootProto   *goja.Object
	domExceptionProto *goja.Object
	selectionProto    *goja.Object
	rangeProto        *goja.Object

	selection *goja.Object
}

// NewDOMBinder creates a new DOM binder for the given runtime.
func NewDOMBinder(runtime *Runtime) *DOMBinder {
	b := &DOMBinder{
		runtime: runtime,
		nodeMap: make(map[*dom.Node]*goja.Object),
	}
	b.setupPrototypes()
	return b
}

// reset forgets every binding.
func (b *DOMBinder) reset() {
	b.nodeMap = make(map[*dom.Node]*goja.Object)
	b.selection = nil
}

// defineInterface creates an illegal-to-construct interface object with the
// given prototype and installs it as a global.
func (b *DOMBinder) defineInterface(name string, proto, parent *goja.Object) *goja.Object {
	vm := b.runtime.vm
	if parent != nil {
		proto.SetPrototype(parent)
	}
	ctor := vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		panic(vm.NewTypeError("Illegal constructor"))
	}).ToObject(vm)
	ctor.Set("prototype", proto)
	proto.Set("constructor", ctor)
	vm.Set(name, ctor)
	return ctor
}

// setupPrototypes creates the prototype chain for the bound interfaces.
func (b *DOMBinder) setupPrototypes() {
	vm := b.runtime.vm

	b.nodeProto = vm.NewObject()
	nodeCtor := b.defineInterface("Node", b.nodeProto, nil)
	nodeCtor.Set("ELEMENT_NODE", int(dom.ElementNode))
	nodeCtor.Set("TEXT_NODE", int(dom.TextNode))
	nodeCtor.Set("COMMENT_NODE", int(dom.CommentNode))
	nodeCtor.Set("DOCUMENT_NODE", int(dom.DocumentNode))
	nodeCtor.Set("DOCUMENT_FRAGMENT_NODE", int(dom.DocumentFragmentNode))

	b.elementProto = vm.NewObject()
	b.defineInterface("Element", b.elementProto, b.nodeProto)
	b.textProto = vm.NewObject()
	b.defineInterface("Text", b.textProto, b.nodeProto)
	b.documentProto = vm.NewObject()
	b.defineInterface("Document", b.documentProto, b.nodeProto)
	b.shadowRootProto = vm.NewObject()
	b.defineInterface("ShadowRoot", b.shadowRootProto, b.nodeProto)
	b.selectionProto = vm.NewObject()
	b.defineInterface("Selection", b.selectionProto, nil)
	b.rangeProto = vm.NewObject()
	b.defineInterface("Range", b.rangeProto, nil)

	// DOMException extends Error.
	b.domExceptionProto = vm.NewObject()
	errorProto := vm.Get("Error").ToObject(vm).Get("prototype").ToObject(vm)
	b.domExceptionProto.SetPrototype(errorProto)
	excCtor := vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		message, name := "", "Error"
		if len(call.Arguments) > 0 {
			message = call.Arguments[0].String()
		}
		if len(call.Arguments) > 1 {
			name = call.Arguments[1].String()
		}
		exc := call.This
		exc.Set("message", message)
		exc.Set("name", name)
		exc.Set("code", (&dom.DOMError{Name: name}).Code())
		return exc
	}).ToObject(vm)
	excCtor.Set("prototype", b.domExceptionProto)
	b.domExceptionProto.Set("constructor", excCtor)
	excCtor.Set("INDEX_SIZE_ERR", 1)
	excCtor.Set("HIERARCHY_REQUEST_ERR", 3)
	excCtor.Set("WRONG_DOCUMENT_ERR", 4)
	excCtor.Set("NOT_FOUND_ERR", 8)
	excCtor.Set("NOT_SUPPORTED_ERR", 9)
	excCtor.Set("INVALID_STATE_ERR", 11)
	vm.Set("DOMException", excCtor)
}

// createDOMException creates a DOMException through the global constructor
// so instanceof works.
func (b *DOMBinder) createDOMException(name, message string) *goja.Object {
	vm := b.runtime.vm
	if ctor, ok := goja.AssertConstructor(vm.Get("DOMException")); ok {
		if exc, err := ctor(nil, vm.ToValue(message), vm.ToValue(name)); err == nil {
			return exc
		}
	}
	exc := vm.NewObject()
	exc.Set("name", name)
	exc.Set("message", message)
	exc.Set("code", (&dom.DOMError{Name: name}).Code())
	return exc
}

// throwDOMError throws err as a DOMException.
func (b *DOMBinder) throwDOMError(err *dom.DOMError) {
	panic(b.runtime.vm.ToValue(b.createDOMException(err.Name, err.Message)))
}

func (b *DOMBinder) throwIndexSizeError() {
	b.throwDOMError(dom.ErrIndexSize("The index is not in the allowed range."))
}

// throwError rethrows a dom error as a DOMException and anything else as a
// plain Error.
func (b *DOMBinder) throwError(err error) {
	var de *dom.DOMError
	if errors.As(err, &de) {
		b.throwDOMError(de)
	}
	panic(b.runtime.vm.NewGoError(err))
}

// requireArgs throws a TypeError when fewer than n arguments were passed.
func (b *DOMBinder) requireArgs(call goja.FunctionCall, n int, method, iface string) {
	if len(call.Arguments) < n {
		panic(b.runtime.vm.NewTypeError("Failed to execute '%s' on '%s': %d argument(s) required, but only %d present.",
			method, iface, n, len(call.Arguments)))
	}
}

// BindDocument returns the document object, with getSelection left to the
// runtime.
func (b *DOMBinder) BindDocument(doc *dom.Document) *goja.Object {
	if doc == nil {
		return nil
	}
	node := doc.AsNode()
	if obj, ok := b.nodeMap[node]; ok {
		return obj
	}
	vm := b.runtime.vm
	obj := vm.NewObject()
	obj.SetPrototype(b.documentProto)
	b.nodeMap[node] = obj
	b.bindNodeProperties(obj, node)

	obj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "getElementById", "Document")
		return b.nodeOrNull(elementNode(doc.GetElementByID(call.Arguments[0].String())))
	})
	obj.DefineAccessorProperty("body", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return b.nodeOrNull(elementNode(doc.Body()))
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("documentElement", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return b.nodeOrNull(elementNode(doc.DocumentElement()))
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("activeElement", vm.ToValue(func(goja.FunctionCall) goja.Value {
		if el := doc.FocusedElement(); el != nil {
			return b.BindNode(el.AsNode())
		}
		return b.nodeOrNull(elementNode(doc.Body()))
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "createTextNode", "Document")
		return b.BindNode(doc.CreateTextNode(call.Arguments[0].String()))
	})
	obj.Set("createRange", func(goja.FunctionCall) goja.Value {
		return b.BindRange(doc.CreateRange())
	})
	return obj
}

func elementNode(el *dom.Element) *dom.Node {
	if el == nil {
		return nil
	}
	return el.AsNode()
}

func (b *DOMBinder) nodeOrNull(node *dom.Node) goja.Value {
	if node == nil {
		return goja.Null()
	}
	return b.BindNode(node)
}

// BindNode returns the cached object for node, creating it on first use.
func (b *DOMBinder) BindNode(node *dom.Node) *goja.Object {
	if node == nil {
		return nil
	}
	if obj, ok := b.nodeMap[node]; ok {
		return obj
	}
	if node.NodeType() == dom.DocumentNode {
		return b.BindDocument((*dom.Document)(node))
	}

	vm := b.runtime.vm
	obj := vm.NewObject()
	b.nodeMap[node] = obj
	b.bindNodeProperties(obj, node)

	switch {
	case node.IsElement():
		obj.SetPrototype(b.elementProto)
		b.bindElement(obj, node.AsElement())
	case node.IsText():
		obj.SetPrototype(b.textProto)
		b.bindText(obj, node.AsText())
	case node.IsShadowRoot():
		obj.SetPrototype(b.shadowRootProto)
		sr := node.AsShadowRoot()
		obj.Set("mode", string(sr.Mode()))
		obj.DefineAccessorProperty("host", vm.ToValue(func(goja.FunctionCall) goja.Value {
			return b.nodeOrNull(elementNode(sr.Host()))
		}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
		obj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
			b.requireArgs(call, 1, "getElementById", "ShadowRoot")
			return b.nodeOrNull(elementNode(sr.GetElementByID(call.Arguments[0].String())))
		})
	default:
		obj.SetPrototype(b.nodeProto)
	}
	return obj
}

// bindNodeProperties adds the Node interface and EventTarget methods.
func (b *DOMBinder) bindNodeProperties(obj *goja.Object, node *dom.Node) {
	vm := b.runtime.vm
	obj.Set("_goNode", node)
	b.runtime.events.BindEventTarget(obj)

	getter := func(name string, fn func() goja.Value) {
		obj.DefineAccessorProperty(name, vm.ToValue(func(goja.FunctionCall) goja.Value {
			return fn()
		}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}

	obj.Set("nodeType", int(node.NodeType()))
	obj.Set("nodeName", node.NodeName())
	getter("nodeValue", func() goja.Value {
		if node.IsText() {
			return vm.ToValue(node.NodeValue())
		}
		return goja.Null()
	})
	getter("textContent", func() goja.Value { return vm.ToValue(node.TextContent()) })
	getter("parentNode", func() goja.Value { return b.nodeOrNull(node.ParentNode()) })
	getter("parentElement", func() goja.Value { return b.nodeOrNull(elementNode(node.ParentElement())) })
	getter("previousSibling", func() goja.Value { return b.nodeOrNull(node.PreviousSibling()) })
	getter("nextSibling", func() goja.Value { return b.nodeOrNull(node.NextSibling()) })
	getter("firstChild", func() goja.Value { return b.nodeOrNull(node.FirstChild()) })
	getter("lastChild", func() goja.Value { return b.nodeOrNull(node.LastChild()) })
	getter("isConnected", func() goja.Value { return vm.ToValue(node.IsConnected()) })
	getter("childNodes", func() goja.Value {
		children := make([]interface{}, 0, node.ChildCount())
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			children = append(children, b.BindNode(c))
		}
		return vm.ToValue(children)
	})
	getter("ownerDocument", func() goja.Value {
		if node.NodeType() == dom.DocumentNode || node.OwnerDocument() == nil {
			return goja.Null()
		}
		return b.BindDocument(node.OwnerDocument())
	})

	obj.Set("hasChildNodes", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(node.HasChildNodes())
	})
	obj.Set("contains", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.ToValue(false)
		}
		other := b.getGoNode(call.Arguments[0])
		return vm.ToValue(other != nil && node.Contains(other))
	})
	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "appendChild", "Node")
		child := b.getGoNode(call.Arguments[0])
		if child == nil {
			panic(vm.NewTypeError("Failed to execute 'appendChild' on 'Node': parameter 1 is not of type 'Node'."))
		}
		if _, err := node.AppendChildWithError(child); err != nil {
			b.throwError(err)
		}
		return call.Arguments[0]
	})
	obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "removeChild", "Node")
		child := b.getGoNode(call.Arguments[0])
		if child == nil {
			panic(vm.NewTypeError("Failed to execute 'removeChild' on 'Node': parameter 1 is not of type 'Node'."))
		}
		if _, err := node.RemoveChild(child); err != nil {
			b.throwError(err)
		}
		return call.Arguments[0]
	})
	obj.Set("remove", func(goja.FunctionCall) goja.Value {
		node.Remove()
		return goja.Undefined()
	})
	obj.Set("normalize", func(goja.FunctionCall) goja.Value {
		node.Normalize()
		return goja.Undefined()
	})
}

func (b *DOMBinder) bindElement(obj *goja.Object, el *dom.Element) {
	vm := b.runtime.vm
	obj.Set("tagName", el.TagName())
	obj.Set("localName", el.LocalName())
	obj.DefineAccessorProperty("id", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(el.Id())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("shadowRoot", vm.ToValue(func(goja.FunctionCall) goja.Value {
		sr := el.ShadowRoot()
		if sr == nil || sr.Mode() != dom.ShadowRootModeOpen {
			return goja.Null()
		}
		return b.BindNode(sr.AsNode())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("isContentEditable", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(el.IsContentEditable())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "getAttribute", "Element")
		if v, ok := el.LookupAttribute(call.Arguments[0].String()); ok {
			return vm.ToValue(v)
		}
		return goja.Null()
	})
	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 2, "setAttribute", "Element")
		el.SetAttribute(call.Arguments[0].String(), call.Arguments[1].String())
		return goja.Undefined()
	})
	obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "removeAttribute", "Element")
		el.RemoveAttribute(call.Arguments[0].String())
		return goja.Undefined()
	})
	obj.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "hasAttribute", "Element")
		return vm.ToValue(el.HasAttribute(call.Arguments[0].String()))
	})
	obj.Set("focus", func(goja.FunctionCall) goja.Value {
		if el.IsFocusable() {
			el.AsNode().OwnerDocument().SetFocusedElement(el)
		}
		return goja.Undefined()
	})
}

// bindText adds the CharacterData and Text methods. Offsets are UTF-16 code
// units on this side and bytes in the tree.
func (b *DOMBinder) bindText(obj *goja.Object, text *dom.Text) {
	vm := b.runtime.vm

	// span converts a UTF-16 (offset, count) pair into bytes, throwing
	// IndexSizeError past the end.
	span := func(offset, count uint32) (int, int) {
		data := text.Data()
		if int(offset) > dom.UTF16Length(data) {
			b.throwIndexSizeError()
		}
		start := dom.UTF16OffsetToByteOffset(data, int(offset))
		end := dom.UTF16OffsetToByteOffset(data, int(offset)+int(count))
		return start, end - start
	}

	obj.DefineAccessorProperty("data", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(text.Data())
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			text.SetData(call.Arguments[0].String())
		}
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("length", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(dom.UTF16Length(text.Data()))
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("substringData", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 2, "substringData", "CharacterData")
		start, n := span(toUint32(call.Arguments[0]), toUint32(call.Arguments[1]))
		return vm.ToValue(text.Data()[start : start+n])
	})
	obj.Set("appendData", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "appendData", "CharacterData")
		text.AppendData(call.Arguments[0].String())
		return goja.Undefined()
	})
	obj.Set("insertData", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 2, "insertData", "CharacterData")
		start, _ := span(toUint32(call.Arguments[0]), 0)
		if err := text.InsertData(start, call.Arguments[1].String()); err != nil {
			b.throwError(err)
		}
		return goja.Undefined()
	})
	obj.Set("deleteData", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 2, "deleteData", "CharacterData")
		start, n := span(toUint32(call.Arguments[0]), toUint32(call.Arguments[1]))
		if err := text.DeleteData(start, n); err != nil {
			b.throwError(err)
		}
		return goja.Undefined()
	})
	obj.Set("replaceData", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 3, "replaceData", "CharacterData")
		start, n := span(toUint32(call.Arguments[0]), toUint32(call.Arguments[1]))
		if err := text.ReplaceData(start, n, call.Arguments[2].String()); err != nil {
			b.throwError(err)
		}
		return goja.Undefined()
	})
	obj.Set("splitText", func(call goja.FunctionCall) goja.Value {
		b.requireArgs(call, 1, "splitText", "Text")
		start, _ := span(toUint32(call.Arguments[0]), 0)
		tail, err := text.SplitText(start)
		if err != nil {
			b.throwError(err)
		}
		return b.BindNode(tail.AsNode())
	})
}

// getGoNode returns the node behind a bound object, or nil.
func (b *DOMBinder) getGoNode(v goja.Value) *dom.Node {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil {
		return nil
	}
	if gv := obj.Get("_goNode"); gv != nil && !goja.IsUndefined(gv) && !goja.IsNull(gv) {
		if node, ok := gv.Export().(*dom.Node); ok {
			return node
		}
	}
	return nil
}
