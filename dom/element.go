package dom

import (
	"strings"
)

// Element represents an element in the document tree.
type Element Node

// AsNode returns the underlying Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// TagName returns the tag name in uppercase.
func (e *Element) TagName() string {
	return e.AsNode().nodeName
}

// LocalName returns the local name of the element (lowercase for HTML).
func (e *Element) LocalName() string {
	return e.elementData.localName
}

// Id returns the id attribute value.
func (e *Element) Id() string {
	return e.GetAttribute("id")
}

// GetAttribute returns the value of the named attribute, or "" if absent.
func (e *Element) GetAttribute(name string) string {
	v, _ := e.LookupAttribute(name)
	return v
}

// LookupAttribute returns the value of the named attribute and whether it is present.
func (e *Element) LookupAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.elementData.attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute returns true if the element has the named attribute.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.LookupAttribute(name)
	return ok
}

// Attributes returns a copy of the element's attributes in document order.
func (e *Element) Attributes() []Attr {
	return append([]Attr(nil), e.elementData.attributes...)
}

// SetAttribute sets an attribute value, creating it if it doesn't exist.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	data := e.elementData
	found := false
	for i, a := range data.attributes {
		if a.Name == name {
			data.attributes[i].Value = value
			found = true
			break
		}
	}
	if !found {
		data.attributes = append(data.attributes, Attr{Name: name, Value: value})
	}
	e.attributeChanged(name)
}

// RemoveAttribute removes the named attribute.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	data := e.elementData
	for i, a := range data.attributes {
		if a.Name == name {
			data.attributes = append(data.attributes[:i], data.attributes[i+1:]...)
			e.attributeChanged(name)
			return
		}
	}
}

func (e *Element) attributeChanged(name string) {
	switch name {
	case "style":
		e.elementData.style = nil
	case "slot", "name":
		// Slot assignment depends on both attributes.
		if parent := e.AsNode().parentNode; parent != nil && parent.isHostOrSlotContext() {
			parent.notifyShadowTreeChanged()
		} else if e.LocalName() == "slot" && e.AsNode().containingShadowRoot() != nil {
			e.AsNode().notifyShadowTreeChanged()
		}
	}
}

// Style returns the value of an inline style property from the style
// attribute, lowercased and trimmed, or "" when not set.
func (e *Element) Style(property string) string {
	data := e.elementData
	if data.style == nil {
		data.style = parseInlineStyle(e.GetAttribute("style"))
	}
	return data.style[strings.ToLower(property)]
}

// parseInlineStyle splits a declaration block into property/value pairs.
func parseInlineStyle(cssText string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(cssText, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if name == "" {
			continue
		}
		props[name] = strings.ToLower(value)
	}
	return props
}

// ShadowRoot returns the shadow root attached to this element, or nil.
func (e *Element) ShadowRoot() *ShadowRoot {
	return e.elementData.shadow
}

// IsShadowHost reports whether a shadow root is attached.
func (e *Element) IsShadowHost() bool {
	return e.elementData.shadow != nil
}

// AttachShadow attaches a new shadow root to this element.
func (e *Element) AttachShadow(mode ShadowRootMode) (*ShadowRoot, error) {
	if !e.canAttachShadow() {
		return nil, ErrNotSupported("This element does not support attachShadow")
	}
	if e.elementData.shadow != nil {
		return nil, ErrNotSupported("Shadow root cannot be created on a host which already hosts a shadow tree.")
	}
	if mode != ShadowRootModeOpen && mode != ShadowRootModeClosed {
		return nil, ErrNotSupported("The provided value '" + string(mode) + "' is not a valid enum value of type ShadowRootMode.")
	}
	sr := newShadowRoot(e, mode)
	e.elementData.shadow = sr
	e.AsNode().notifyShadowTreeChanged()
	return sr, nil
}

// DetachShadow removes the attached shadow root. Observers are told the whole
// shadow tree is about to be removed before the flat tree changes.
func (e *Element) DetachShadow() {
	sr := e.elementData.shadow
	if sr == nil {
		return
	}
	n := e.AsNode()
	if doc := n.ownerDoc; doc != nil && n.IsConnected() {
		doc.notifyNodeWillBeRemoved(sr.AsNode())
	}
	e.elementData.shadow = nil
	sr.host = nil
	n.notifyShadowTreeChanged()
}

// canAttachShadow returns true if this element can have a shadow root attached.
// Valid shadow hosts are custom elements and a fixed set of HTML elements.
func (e *Element) canAttachShadow() bool {
	localName := e.LocalName()
	if strings.Contains(localName, "-") {
		return true
	}
	switch localName {
	case "article", "aside", "blockquote", "body", "div", "footer",
		"h1", "h2", "h3", "h4", "h5", "h6", "header", "main", "nav",
		"p", "section", "span":
		return true
	}
	return false
}

// IsTextControl reports whether the element is an input or textarea whose
// inner text behaves as a single atomic editable region.
func (e *Element) IsTextControl() bool {
	switch e.LocalName() {
	case "input", "textarea":
		return true
	}
	return false
}

// contentEditableState returns "true", "false", or "" (inherit).
func (e *Element) contentEditableState() string {
	v, ok := e.LookupAttribute("contenteditable")
	if !ok {
		if e.Style("-webkit-user-modify") == "read-write" {
			return "true"
		}
		return ""
	}
	switch strings.ToLower(v) {
	case "", "true", "plaintext-only":
		return "true"
	case "false":
		return "false"
	}
	return ""
}

// IsContentEditable reports whether the element's content is editable
// through an inherited contenteditable or -webkit-user-modify.
func (e *Element) IsContentEditable() bool {
	return IsEditable(e.AsNode())
}

// IsFocusable reports whether the element can receive focus.
func (e *Element) IsFocusable() bool {
	if e.HasAttribute("tabindex") || e.IsTextControl() {
		return true
	}
	switch e.LocalName() {
	case "button", "select":
		return true
	case "a":
		return e.HasAttribute("href")
	}
	if e.contentEditableState() == "true" {
		parent := e.AsNode().parentNode
		return parent == nil || !IsEditable(parent)
	}
	return false
}

// IsEditable reports whether content at n is editable: inside a text
// control, or under an element whose inherited contenteditable is true.
func IsEditable(n *Node) bool {
	for c := n; c != nil; c = c.parentNode {
		el := c.AsElement()
		if el == nil {
			continue
		}
		if el.IsTextControl() && c != n {
			return true
		}
		switch el.contentEditableState() {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return false
}

// RootEditableElement returns the highest editable ancestor of n that starts
// the editable region, or nil when n is not editable.
func RootEditableElement(n *Node) *Element {
	if !IsEditable(n) {
		return nil
	}
	if tc := EnclosingTextControl(n); tc != nil && tc.AsNode() != n {
		return tc
	}
	var root *Element
	for c := n; c != nil && IsEditable(c); c = c.parentNode {
		if el := c.AsElement(); el != nil {
			root = el
		}
	}
	return root
}

// EnclosingTextControl returns the input or textarea containing n.
func EnclosingTextControl(n *Node) *Element {
	for c := n; c != nil; c = c.parentNode {
		if el := c.AsElement(); el != nil && el.IsTextControl() {
			return el
		}
	}
	return nil
}

// UserSelect returns the effective user-select value for n: "none", "all",
// "text" or "auto". Values set on an ancestor apply to its descendants.
func UserSelect(n *Node) string {
	for c := n; c != nil; c = c.ShadowIncludingParent() {
		el := c.AsElement()
		if el == nil {
			continue
		}
		v := el.Style("user-select")
		if v == "" {
			v = el.Style("-webkit-user-select")
		}
		switch v {
		case "none", "all", "text":
			return v
		}
	}
	return "auto"
}

// UserSelectAllRoot returns the highest ancestor of n styled user-select:all,
// or nil.
func UserSelectAllRoot(n *Node) *Node {
	var root *Node
	for c := n; c != nil; c = c.ShadowIncludingParent() {
		el := c.AsElement()
		if el == nil {
			continue
		}
		v := el.Style("user-select")
		if v == "" {
			v = el.Style("-webkit-user-select")
		}
		switch v {
		case "all":
			root = c
		case "none", "text":
			return root
		}
	}
	return root
}
