package editing

import (
	"strings"
	"unicode"

	"github.com/chrisuehlinger/selectionkit/dom"
)

// TextBehavior controls how PlainText serializes content.
type TextBehavior struct {
	// EmitsObjectReplacementCharacter writes U+FFFC for images and form
	// controls.
	EmitsObjectReplacementCharacter bool
	// SkipsUnselectable leaves out text styled user-select:none.
	SkipsUnselectable bool
	// CollapsesWhitespace collapses whitespace runs the way layout does
	// and drops whitespace-only text between blocks.
	CollapsesWhitespace bool
}

// DefaultTextBehavior is what selection.toString() uses.
var DefaultTextBehavior = TextBehavior{SkipsUnselectable: true, CollapsesWhitespace: true}

// PlainText returns the rendered text between two flat-tree positions.
// Content layout does not render is skipped; a newline separates blocks.
// With CollapsesWhitespace, text outside the range still decides which
// spaces inside it collapse.
func PlainText(layout Layout, start, end Position, behavior TextBehavior) string {
	if start.IsNull() || end.IsNull() || comparePositions(start, end, FlatTree) >= 0 {
		return ""
	}
	w := &textWriter{collapse: behavior.CollapsesWhitespace}
	root := start.Document().AsNode()
	var lastBlock *dom.Node

	for n := dom.NextNode(dom.Flat, root, root); n != nil; n = dom.NextNode(dom.Flat, n, root) {
		beforeEnd := comparePositions(BeforeNodePosition(n), end, FlatTree) < 0
		if !beforeEnd && !w.awaitingSpace() {
			break
		}
		if behavior.SkipsUnselectable && dom.UserSelect(n) == "none" {
			continue
		}
		switch {
		case n.IsText():
			length := n.Length()
			from, to := 0, length
			switch {
			case comparePositions(NewPosition(n, length), start, FlatTree) <= 0:
				from = length
			case start.anchor == n && start.kind == OffsetInAnchor:
				from = start.offset
			}
			switch {
			case !beforeEnd:
				to = 0
			case end.anchor == n && end.kind == OffsetInAnchor:
				to = end.offset
			}
			if !w.collapse && from >= to {
				continue
			}
			if w.collapse && n.AsText().IsWhitespace() {
				continue
			}
			if layout != nil && layout.CanonicalPosition(NewPosition(n, 0)).IsNull() {
				continue
			}
			if layout != nil {
				block := layout.EnclosingBlock(NewPosition(n, 0))
				if lastBlock != nil && block != lastBlock {
					w.blockBreak(from < to)
				}
				lastBlock = block
			}
			w.text(n.NodeValue(), from, to)
		case n.IsElement():
			inside := isInside(n, start, end)
			switch n.AsElement().LocalName() {
			case "br":
				w.lineBreak(inside)
			case "img", "input":
				if behavior.EmitsObjectReplacementCharacter {
					w.object('\uFFFC', inside)
				}
			}
		}
	}
	return w.sb.String()
}

func isInside(n *dom.Node, start, end Position) bool {
	return comparePositions(BeforeNodePosition(n), start, FlatTree) >= 0 &&
		comparePositions(AfterNodePosition(n), end, FlatTree) <= 0
}

// textWriter serializes text runs. When collapsing, a space is held back
// until content follows it on the same line, and is dropped at a line or
// block end.
type textWriter struct {
	sb       strings.Builder
	collapse bool
	// last is the previous rendered rune, selected or not; 0 at a line start.
	last    rune
	lastOut rune
	// pending is a held space; pendingIn records whether it was selected.
	pending   bool
	pendingIn bool
}

// awaitingSpace reports whether a selected space still waits to learn if
// layout renders it.
func (w *textWriter) awaitingSpace() bool {
	return w.pending && w.pendingIn
}

// text writes s[from:to]; the rest of s only provides context.
func (w *textWriter) text(s string, from, to int) {
	if !w.collapse {
		w.write(s[from:to])
		return
	}
	for i, r := range s {
		selected := i >= from && i < to
		if unicode.IsSpace(r) {
			if w.last != 0 && !w.pending {
				w.pending, w.pendingIn = true, selected
			}
			continue
		}
		w.object(r, selected)
	}
}

// object writes one rendered, non-space rune.
func (w *textWriter) object(r rune, selected bool) {
	if w.awaitingSpace() {
		w.writeRune(' ')
	}
	w.pending = false
	w.last = r
	if selected {
		w.writeRune(r)
	}
}

// blockBreak separates blocks unless a line break already ends the text.
func (w *textWriter) blockBreak(selected bool) {
	w.pending = false
	w.last = 0
	if selected && w.sb.Len() > 0 && w.lastOut != '\n' {
		w.writeRune('\n')
	}
}

func (w *textWriter) lineBreak(selected bool) {
	w.pending = false
	w.last = 0
	if selected && w.sb.Len() > 0 {
		w.writeRune('\n')
	}
}

func (w *textWriter) write(s string) {
	if s == "" {
		return
	}
	w.sb.WriteString(s)
	w.lastOut = rune(s[len(s)-1])
}

func (w *textWriter) writeRune(r rune) {
	w.sb.WriteRune(r)
	w.lastOut = r
}
