package layout

import (
	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
)

func (l *Layout) CanonicalPosition(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	return l.position(pt, p)
}

func (l *Layout) MostForwardCaretPosition(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	return l.forward(pt)
}

func (l *Layout) MostBackwardCaretPosition(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	return l.backward(pt)
}

// NextPosition returns the next caret stop, crossing into the next block
// at the end of a block. It is null at the end of the document.
func (l *Layout) NextPosition(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	next, ok := l.next(pt)
	if !ok {
		return editing.Position{}
	}
	return l.position(next, p)
}

func (l *Layout) PreviousPosition(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	prev, ok := l.prev(pt)
	if !ok {
		return editing.Position{}
	}
	return l.position(prev, p)
}

func (l *Layout) CharacterAfter(p editing.Position) rune {
	pt, ok := l.locate(p)
	if !ok {
		return 0
	}
	b := l.blocks[pt.block]
	if pt.stop >= len(b.cells) {
		return 0
	}
	for _, r := range b.cells[pt.stop].text {
		return r
	}
	return 0
}

// NextWordPosition moves to the end of the next word.
func (l *Layout) NextWordPosition(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	b := l.blocks[pt.block]
	for _, s := range b.words {
		if s.isWord && s.end > pt.stop {
			return l.position(point{pt.block, s.end}, p)
		}
	}
	if pt.stop < len(b.cells) {
		return l.position(point{pt.block, len(b.cells)}, p)
	}
	if pt.block+1 >= len(l.blocks) {
		return editing.Position{}
	}
	nb := l.blocks[pt.block+1]
	for _, s := range nb.words {
		if s.isWord {
			return l.position(point{pt.block + 1, s.end}, p)
		}
	}
	return l.position(point{pt.block + 1, len(nb.cells)}, p)
}

// PreviousWordPosition moves to the start of the previous word.
func (l *Layout) PreviousWordPosition(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	b := l.blocks[pt.block]
	for i := len(b.words) - 1; i >= 0; i-- {
		if s := b.words[i]; s.isWord && s.start < pt.stop {
			return l.position(point{pt.block, s.start}, p)
		}
	}
	if pt.stop > 0 {
		return l.position(point{pt.block, 0}, p)
	}
	if pt.block == 0 {
		return editing.Position{}
	}
	pb := l.blocks[pt.block-1]
	for i := len(pb.words) - 1; i >= 0; i-- {
		if pb.words[i].isWord {
			return l.position(point{pt.block - 1, pb.words[i].start}, p)
		}
	}
	return l.position(point{pt.block - 1, 0}, p)
}

// wordAt returns the segment of segs around stop, preferring the one after
// stop on a boundary unless side says otherwise.
func wordAt(segs []segment, stop int, side editing.WordSide) (segment, bool) {
	for _, s := range segs {
		if side == editing.NextWordIfOnBoundary && s.start <= stop && stop < s.end {
			return s, true
		}
		if side == editing.PreviousWordIfOnBoundary && s.start < stop && stop <= s.end {
			return s, true
		}
	}
	return segment{}, false
}

func (l *Layout) StartOfWord(p editing.Position, side editing.WordSide) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	if s, ok := wordAt(l.blocks[pt.block].words, pt.stop, side); ok {
		pt.stop = s.start
	}
	return l.position(pt, p)
}

func (l *Layout) EndOfWord(p editing.Position, side editing.WordSide) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	if s, ok := wordAt(l.blocks[pt.block].words, pt.stop, side); ok {
		pt.stop = s.end
	}
	return l.position(pt, p)
}

func sentenceAt(segs []segment, stop int) (segment, bool) {
	for _, s := range segs {
		if s.start <= stop && stop < s.end {
			return s, true
		}
	}
	if n := len(segs); n > 0 && stop == segs[n-1].end {
		return segs[n-1], true
	}
	return segment{}, false
}

func (l *Layout) StartOfSentence(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	if s, ok := sentenceAt(l.blocks[pt.block].sentences, pt.stop); ok {
		pt.stop = s.start
	}
	return l.position(pt, p)
}

// EndOfSentence returns the end of the sentence around p, before its
// trailing whitespace.
func (l *Layout) EndOfSentence(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	if s, ok := sentenceAt(l.blocks[pt.block].sentences, pt.stop); ok {
		pt.stop = s.trimmedEnd
	}
	return l.position(pt, p)
}

func (l *Layout) NextSentencePosition(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	for bi := pt.block; bi < len(l.blocks); bi++ {
		for _, s := range l.blocks[bi].sentences {
			if s.isWord && (bi > pt.block || s.trimmedEnd > pt.stop) {
				return l.position(point{bi, s.trimmedEnd}, p)
			}
		}
	}
	return editing.Position{}
}

func (l *Layout) PreviousSentencePosition(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	for bi := pt.block; bi >= 0; bi-- {
		segs := l.blocks[bi].sentences
		for i := len(segs) - 1; i >= 0; i-- {
			if s := segs[i]; s.isWord && (bi < pt.block || s.start < pt.stop) {
				return l.position(point{bi, s.start}, p)
			}
		}
	}
	return editing.Position{}
}

// lineOf returns the index in b.lines of the line holding stop. At a wrap
// the stop ends the earlier line for Upstream and starts the next one for
// Downstream.
func lineOf(b *block, stop int, a editing.Affinity) int {
	for i, ln := range b.lines {
		if stop < ln.start || stop > ln.maxStop(b) {
			continue
		}
		if stop == ln.end && ln.soft && a == editing.Downstream && i+1 < len(b.lines) {
			continue
		}
		return i
	}
	return len(b.lines) - 1
}

// maxStop is the last stop a caret can take on the line.
func (ln line) maxStop(b *block) int {
	if ln.end > ln.start && b.cells[ln.end-1].kind == breakCell {
		return ln.end - 1
	}
	return ln.end
}

func (l *Layout) StartOfLine(p editing.Position, a editing.Affinity) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	b := l.blocks[pt.block]
	pt.stop = b.lines[lineOf(b, pt.stop, a)].start
	return l.position(pt, p)
}

// EndOfLine returns the last stop of the line. A line ending at a wrap ends
// before its hanging space.
func (l *Layout) EndOfLine(p editing.Position, a editing.Affinity) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	b := l.blocks[pt.block]
	ln := b.lines[lineOf(b, pt.stop, a)]
	pt.stop = ln.maxStop(b)
	if ln.soft && pt.stop > ln.start && b.cells[pt.stop-1].space {
		pt.stop--
	}
	return l.position(pt, p)
}

// lineStops returns the stops a vertical move may land on for the line:
// a wrap stop belongs to the following line.
func lineStops(b *block, ln line) (from, to int) {
	to = ln.maxStop(b)
	if ln.soft && to > ln.start {
		to--
	}
	return ln.start, to
}

func (l *Layout) nearestStop(bi, li, x int) point {
	b := l.blocks[bi]
	from, to := lineStops(b, b.lines[li])
	best, bestDist := from, -1
	for s := from; s <= to; s++ {
		d := abs(l.stopX(b, b.lines[li], s) - x)
		if bestDist < 0 || d < bestDist {
			best, bestDist = s, d
		}
	}
	return point{bi, best}
}

func (l *Layout) NextLinePosition(p editing.Position, a editing.Affinity, x int) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	b := l.blocks[pt.block]
	li := lineOf(b, pt.stop, a)
	switch {
	case li+1 < len(b.lines):
		return l.position(l.nearestStop(pt.block, li+1, x), p)
	case pt.block+1 < len(l.blocks):
		return l.position(l.nearestStop(pt.block+1, 0, x), p)
	}
	return editing.Position{}
}

func (l *Layout) PreviousLinePosition(p editing.Position, a editing.Affinity, x int) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	b := l.blocks[pt.block]
	li := lineOf(b, pt.stop, a)
	switch {
	case li > 0:
		return l.position(l.nearestStop(pt.block, li-1, x), p)
	case pt.block > 0:
		pb := l.blocks[pt.block-1]
		return l.position(l.nearestStop(pt.block-1, len(pb.lines)-1, x), p)
	}
	return editing.Position{}
}

func (l *Layout) StartOfParagraph(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	return l.position(point{pt.block, 0}, p)
}

func (l *Layout) EndOfParagraph(p editing.Position) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	return l.position(point{pt.block, len(l.blocks[pt.block].cells)}, p)
}

func (l *Layout) NextParagraphPosition(p editing.Position, x int) editing.Position {
	pt, ok := l.locate(p)
	if !ok || pt.block+1 >= len(l.blocks) {
		return editing.Position{}
	}
	return l.position(l.nearestStop(pt.block+1, 0, x), p)
}

func (l *Layout) PreviousParagraphPosition(p editing.Position, x int) editing.Position {
	pt, ok := l.locate(p)
	if !ok || pt.block == 0 {
		return editing.Position{}
	}
	pb := l.blocks[pt.block-1]
	return l.position(l.nearestStop(pt.block-1, len(pb.lines)-1, x), p)
}

func (l *Layout) StartOfDocument(p editing.Position) editing.Position {
	if _, ok := l.locate(p); !ok {
		return editing.Position{}
	}
	first, _ := l.bounds()
	return l.position(first, p)
}

func (l *Layout) EndOfDocument(p editing.Position) editing.Position {
	if _, ok := l.locate(p); !ok {
		return editing.Position{}
	}
	_, last := l.bounds()
	return l.position(last, p)
}

// stopX returns the x of the caret at stop on ln.
func (l *Layout) stopX(b *block, ln line, stop int) int {
	col := 0
	for _, c := range b.cells[ln.start:min(stop, len(b.cells))] {
		col += c.width
	}
	x := col * l.opts.CharWidth
	if b.rtl {
		return l.opts.Width - x
	}
	return x
}

func (l *Layout) CaretBoundsOf(p editing.Position, a editing.Affinity) editing.Rect {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Rect{}
	}
	b := l.blocks[pt.block]
	li := lineOf(b, pt.stop, a)
	return editing.Rect{
		X:      l.stopX(b, b.lines[li], pt.stop),
		Y:      (b.lineBase + li) * l.opts.LineHeight,
		Width:  1,
		Height: l.opts.LineHeight,
	}
}

func (l *Layout) DirectionOfEnclosingBlock(p editing.Position) editing.Direction {
	pt, ok := l.locate(p)
	if !ok || !l.blocks[pt.block].rtl {
		return editing.LTR
	}
	return editing.RTL
}

func (l *Layout) EnclosingBlock(p editing.Position) *dom.Node {
	pt, ok := l.locate(p)
	if !ok {
		return nil
	}
	return l.blocks[pt.block].node
}

func (l *Layout) BidiLevels(p editing.Position) (before, after int) {
	pt, ok := l.locate(p)
	if !ok {
		return -1, -1
	}
	b := l.blocks[pt.block]
	before, after = -1, -1
	if pt.stop > 0 {
		before = b.cells[pt.stop-1].level
	}
	if pt.stop < len(b.cells) {
		after = b.cells[pt.stop].level
	}
	return before, after
}

// BidiRunEdge returns the far edge of the run of cells at least as deep as
// the one next to p.
func (l *Layout) BidiRunEdge(p editing.Position, forward bool) editing.Position {
	pt, ok := l.locate(p)
	if !ok {
		return editing.Position{}
	}
	b := l.blocks[pt.block]
	s := pt.stop
	if forward {
		if s >= len(b.cells) {
			return editing.Position{}
		}
		level := b.cells[s].level
		for s < len(b.cells) && b.cells[s].level >= level {
			s++
		}
	} else {
		if s == 0 {
			return editing.Position{}
		}
		level := b.cells[s-1].level
		for s > 0 && b.cells[s-1].level >= level {
			s--
		}
	}
	return l.position(point{pt.block, s}, p)
}

// HitTest maps pt to the nearest caret stop. Points above or below all
// lines resolve to the first or last line with no node.
func (l *Layout) HitTest(pt editing.Point) editing.HitTestResult {
	l.ensure()
	total := l.LineCount()
	if total == 0 {
		return editing.HitTestResult{}
	}
	outside := pt.Y < 0 || pt.Y >= total*l.opts.LineHeight || pt.X < 0 || pt.X > l.opts.Width
	gl := min(max(pt.Y/l.opts.LineHeight, 0), total-1)

	bi := 0
	for i, b := range l.blocks {
		if gl >= b.lineBase && gl < b.lineBase+len(b.lines) {
			bi = i
			break
		}
	}
	b := l.blocks[bi]
	li := gl - b.lineBase
	ln := b.lines[li]

	best, bestDist := ln.start, -1
	for s := ln.start; s <= ln.maxStop(b); s++ {
		d := abs(l.stopX(b, ln, s) - pt.X)
		if bestDist < 0 || d < bestDist {
			best, bestDist = s, d
		}
	}
	res := editing.HitTestResult{
		Position: l.backward(point{bi, best}),
		Affinity: editing.Downstream,
	}
	if best == ln.end && ln.soft {
		res.Affinity = editing.Upstream
	}
	if outside {
		return res
	}
	res.Node = b.node
	for s := ln.start; s < ln.end; s++ {
		x0, x1 := l.stopX(b, ln, s), l.stopX(b, ln, s+1)
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		if pt.X >= x0 && pt.X < x1 {
			res.Node = b.cells[s].node
			break
		}
	}
	return res
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
