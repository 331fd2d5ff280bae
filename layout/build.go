package layout

import (
	"strings"

	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/rivo/uniseg"
)

// blockElements is the user-agent display table: elements laid out as
// blocks. Everything else is inline.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "dd": true, "details": true, "dialog": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "html": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "summary": true,
	"table": true, "tr": true, "td": true, "th": true, "textarea": true,
	"ul": true,
}

// unrenderedElements never generate boxes.
var unrenderedElements = map[string]bool{
	"head": true, "script": true, "style": true, "template": true,
	"title": true, "meta": true, "link": true, "noscript": true,
}

type cellKind int

const (
	textCell cellKind = iota
	breakCell
	atomicCell
)

// cell is one caret step: a grapheme cluster, a forced break or an atomic
// inline.
type cell struct {
	kind  cellKind
	text  string
	node  *dom.Node
	start editing.Position
	end   editing.Position
	width int
	// space marks a collapsible space.
	space bool
	// br marks a break from a <br> element.
	br    bool
	level int
}

type line struct {
	start, end int
	// soft is set when the line ends at a wrap rather than a break or the
	// end of the block.
	soft bool
}

// block is a run of inline content laid out together: the content of a
// block element, or an anonymous run between child blocks.
type block struct {
	node     *dom.Node
	explicit bool
	first    editing.Position
	last     editing.Position
	cells    []cell
	lines    []line
	rtl      bool
	lineBase int

	byteStart []int
	text      string
	words     []segment
	sentences []segment
}

type segment struct {
	start, end int
	isWord     bool
	// trimmedEnd excludes trailing whitespace.
	trimmedEnd int
}

func (b *block) stops() int {
	return len(b.cells) + 1
}

type builder struct {
	blocks []*block
	open   *block
	opts   Options
}

func (bl *builder) build(doc *dom.Document) []*block {
	root := doc.AsNode()
	for c := dom.Flat.FirstChild(root); c != nil; c = dom.Flat.NextSibling(c) {
		if el := c.AsElement(); el != nil && !isHidden(el) {
			bl.layoutBlock(c)
		}
	}
	bl.flush()
	line := 0
	for _, b := range bl.blocks {
		bl.finish(b)
		b.lineBase = line
		line += len(b.lines)
	}
	return bl.blocks
}

// layoutBlock lays out the block element n and its descendants.
func (bl *builder) layoutBlock(n *dom.Node) {
	bl.flush()
	before := len(bl.blocks)
	nested := bl.inline(n, n, false)
	bl.flush()
	created := len(bl.blocks) - before

	switch {
	case created == 0 && !nested:
		bl.blocks = append(bl.blocks, &block{
			node:     n,
			explicit: true,
			first:    editing.NewPosition(n, 0),
			last:     editing.NewPosition(n, dom.Flat.ChildCount(n)),
		})
	case created == 1 && !nested:
		b := bl.blocks[before]
		b.explicit = true
		b.first = editing.NewPosition(n, 0)
		b.last = editing.NewPosition(n, dom.Flat.ChildCount(n))
	}
}

// inline lays out the children of n, which is inside the block element
// blockNode. It reports whether a nested block was laid out.
func (bl *builder) inline(n, blockNode *dom.Node, pre bool) bool {
	pre = pre || preformatted(n)
	nested := false
	for c := dom.Flat.FirstChild(n); c != nil; c = dom.Flat.NextSibling(c) {
		if c.IsText() {
			bl.text(c, blockNode, pre)
			continue
		}
		el := c.AsElement()
		if el == nil || isHidden(el) {
			continue
		}
		if isBlock(el) {
			bl.layoutBlock(c)
			nested = true
			continue
		}
		switch el.LocalName() {
		case "br":
			bl.breakAt(c, blockNode, editing.BeforeNodePosition(c), editing.AfterNodePosition(c), false)
		case "img", "input":
			bl.atomic(c, blockNode)
		default:
			if bl.inline(c, blockNode, pre) {
				nested = true
			}
		}
	}
	return nested
}

func (bl *builder) current(blockNode *dom.Node, first editing.Position) *block {
	if bl.open == nil || bl.open.node != blockNode {
		bl.flush()
		bl.open = &block{node: blockNode, first: first}
	}
	return bl.open
}

func (bl *builder) text(n, blockNode *dom.Node, pre bool) {
	data := n.NodeValue()
	b := bl.current(blockNode, editing.NewPosition(n, 0))
	b.last = editing.NewPosition(n, len(data))

	offset := 0
	state := -1
	rest := data
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		start, end := offset, offset+len(cluster)
		offset = end

		if pre && (cluster == "\n" || cluster == "\r\n") {
			bl.breakAt(n, blockNode, editing.NewPosition(n, start), editing.NewPosition(n, end), true)
			continue
		}
		if !pre && isCollapsible(cluster) {
			if len(b.cells) == 0 {
				continue
			}
			if last := b.cells[len(b.cells)-1]; last.space || last.kind == breakCell {
				continue
			}
			cluster = " "
		}
		b.cells = append(b.cells, cell{
			kind:  textCell,
			text:  cluster,
			node:  n,
			start: editing.NewPosition(n, start),
			end:   editing.NewPosition(n, end),
			width: max(1, uniseg.StringWidth(cluster)),
			space: !pre && cluster == " ",
		})
	}
}

func (bl *builder) breakAt(n, blockNode *dom.Node, start, end editing.Position, preformatted bool) {
	b := bl.current(blockNode, start)
	b.last = end
	b.trimTrailingSpace()
	b.cells = append(b.cells, cell{
		kind:  breakCell,
		text:  "\n",
		node:  n,
		start: start.ToOffsetInAnchor(editing.FlatTree),
		end:   end.ToOffsetInAnchor(editing.FlatTree),
		br:    !preformatted,
	})
}

func (bl *builder) atomic(n, blockNode *dom.Node) {
	start, end := editing.BeforeNodePosition(n), editing.AfterNodePosition(n)
	b := bl.current(blockNode, start)
	b.last = end
	b.cells = append(b.cells, cell{
		kind:  atomicCell,
		text:  "\uFFFC",
		node:  n,
		start: start.ToOffsetInAnchor(editing.FlatTree),
		end:   end.ToOffsetInAnchor(editing.FlatTree),
		width: 1,
	})
}

// flush closes the open anonymous block, dropping it when it has no cells.
func (bl *builder) flush() {
	b := bl.open
	if b == nil {
		return
	}
	bl.open = nil
	b.trimTrailingSpace()
	// A trailing <br> does not start a new line.
	if n := len(b.cells); n > 0 && b.cells[n-1].br {
		b.cells = b.cells[:n-1]
		b.trimTrailingSpace()
	}
	if len(b.cells) == 0 {
		return
	}
	b.first = b.first.ToOffsetInAnchor(editing.FlatTree)
	b.last = b.last.ToOffsetInAnchor(editing.FlatTree)
	bl.blocks = append(bl.blocks, b)
}

func (b *block) trimTrailingSpace() {
	for n := len(b.cells); n > 0 && b.cells[n-1].kind == textCell && b.cells[n-1].space; n = len(b.cells) {
		b.cells = b.cells[:n-1]
	}
}

// finish computes the text, segmentation, direction and lines of b.
func (bl *builder) finish(b *block) {
	var sb strings.Builder
	b.byteStart = make([]int, len(b.cells))
	for i, c := range b.cells {
		b.byteStart[i] = sb.Len()
		sb.WriteString(c.text)
	}
	b.text = sb.String()
	b.rtl = blockDirection(b) == editing.RTL
	b.words = segmentWords(b)
	b.sentences = segmentSentences(b)
	assignLevels(b)
	b.lines = wrap(b, bl.opts.columns())
}

func isBlock(el *dom.Element) bool {
	switch el.Style("display") {
	case "block", "list-item", "flex", "grid", "table":
		return true
	case "inline", "inline-block", "contents":
		return false
	}
	return blockElements[el.LocalName()]
}

func isHidden(el *dom.Element) bool {
	if unrenderedElements[el.LocalName()] || el.HasAttribute("hidden") {
		return true
	}
	return el.Style("display") == "none"
}

func preformatted(n *dom.Node) bool {
	el := n.AsElement()
	if el == nil {
		return false
	}
	switch el.Style("white-space") {
	case "pre", "pre-wrap", "break-spaces":
		return true
	case "normal", "nowrap":
		return false
	}
	switch el.LocalName() {
	case "pre", "textarea":
		return true
	}
	return false
}

func isCollapsible(cluster string) bool {
	for _, r := range cluster {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
		default:
			return false
		}
	}
	return true
}

// rendered reports whether n generates boxes: it is in the flat tree and no
// inclusive flat ancestor is hidden.
func rendered(n *dom.Node) bool {
	if n == nil || !dom.InTree(dom.Flat, n) {
		return false
	}
	for c := n; c != nil; c = dom.Flat.Parent(c) {
		if el := c.AsElement(); el != nil && isHidden(el) {
			return false
		}
	}
	return true
}
