package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Document represents the entire document.
type Document Node

// documentData holds data specific to Document nodes.
type documentData struct {
	active    bool
	observers []MutationObserver
	focused   *Element
}

// NewDocument creates a new empty, active Document.
func NewDocument() *Document {
	node := newNode(DocumentNode, "#document", nil)
	node.documentData = &documentData{active: true}
	doc := (*Document)(node)
	node.ownerDoc = doc
	return doc
}

// AsNode returns the underlying Node.
func (d *Document) AsNode() *Node {
	return (*Node)(d)
}

// IsActive reports whether the document is still attached.
func (d *Document) IsActive() bool {
	return d.AsNode().documentData.active
}

// Detach marks the document inactive and tells every observer. Observers
// must drop their references to the tree synchronously.
func (d *Document) Detach() {
	data := d.AsNode().documentData
	if !data.active {
		return
	}
	data.active = false
	data.focused = nil
	for _, o := range d.observerSnapshot() {
		o.OnDocumentDetached(d)
	}
}

// DocumentElement returns the root element.
func (d *Document) DocumentElement() *Element {
	for c := d.AsNode().firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// Body returns the body element, or nil.
func (d *Document) Body() *Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for c := root.AsNode().firstChild; c != nil; c = c.nextSibling {
		if el := c.AsElement(); el != nil && el.LocalName() == "body" {
			return el
		}
	}
	return nil
}

// CreateElement creates a new element with the given tag name.
func (d *Document) CreateElement(tagName string) *Element {
	localName := strings.ToLower(tagName)
	node := newNode(ElementNode, strings.ToUpper(localName), d)
	node.elementData = &elementData{localName: localName}
	return (*Element)(node)
}

// CreateTextNode creates a new Text node.
func (d *Document) CreateTextNode(data string) *Node {
	node := newNode(TextNode, "#text", d)
	node.data = data
	return node
}

// CreateComment creates a new Comment node.
func (d *Document) CreateComment(data string) *Node {
	node := newNode(CommentNode, "#comment", d)
	node.data = data
	return node
}

// CreateRange creates a new Range collapsed at the start of the document.
func (d *Document) CreateRange() *Range {
	return NewRange(d)
}

// GetElementByID returns the first element in the document tree with the
// given id.
func (d *Document) GetElementByID(id string) *Element {
	return findElementByID(d.AsNode(), id)
}

func findElementByID(root *Node, id string) *Element {
	if id == "" {
		return nil
	}
	for n := root.firstChild; n != nil; n = nextInSubtree(n, root) {
		if el := n.AsElement(); el != nil && el.Id() == id {
			return el
		}
	}
	return nil
}

// FocusedElement returns the element that has focus, or nil.
func (d *Document) FocusedElement() *Element {
	return d.AsNode().documentData.focused
}

// SetFocusedElement moves focus to el; nil clears focus.
func (d *Document) SetFocusedElement(el *Element) {
	d.AsNode().documentData.focused = el
}

// ParseHTML parses an HTML string and returns a Document. A <template>
// element carrying a shadowrootmode attribute becomes a shadow root attached
// to its parent.
func ParseHTML(htmlContent string) (*Document, error) {
	doc := NewDocument()

	// Parse using golang.org/x/net/html
	netDoc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	// Convert the parsed tree to our DOM structure
	convertHTMLTree(netDoc, doc.AsNode(), doc)

	return doc, nil
}

// convertHTMLTree converts an html.Node tree to our DOM tree.
func convertHTMLTree(src *html.Node, parent *Node, doc *Document) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		var node *Node

		switch c.Type {
		case html.TextNode:
			node = doc.CreateTextNode(c.Data)

		case html.ElementNode:
			if c.Data == "template" && attachDeclarativeShadow(c, parent, doc) {
				continue
			}
			el := doc.CreateElement(c.Data)
			for _, attr := range c.Attr {
				el.elementData.attributes = append(el.elementData.attributes, Attr{Name: attr.Key, Value: attr.Val})
			}
			node = el.AsNode()

		case html.CommentNode:
			node = doc.CreateComment(c.Data)

		case html.DocumentNode:
			// Don't create a new document node, just process children
			convertHTMLTree(c, parent, doc)
			continue

		default:
			continue
		}

		parent.AppendChild(node)
		// Process children
		if c.Type == html.ElementNode {
			convertHTMLTree(c, node, doc)
		}
	}
}

// attachDeclarativeShadow turns <template shadowrootmode> into a shadow root
// on parent. It returns false when the template is an ordinary one.
func attachDeclarativeShadow(tmpl *html.Node, parent *Node, doc *Document) bool {
	var mode string
	for _, attr := range tmpl.Attr {
		if attr.Key == "shadowrootmode" {
			mode = strings.ToLower(attr.Val)
		}
	}
	host := parent.AsElement()
	if mode == "" || host == nil {
		return false
	}
	sr, err := host.AttachShadow(ShadowRootMode(mode))
	if err != nil {
		return false
	}
	convertHTMLTree(tmpl, sr.AsNode(), doc)
	return true
}
