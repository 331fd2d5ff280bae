package layout

import (
	"sort"
	"strings"
	"unicode"

	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/bidi"
)

// wrap breaks the cells of b into lines no wider than columns, breaking at
// line-break opportunities and anywhere when a word does not fit. Spaces
// hang at the end of a line.
func wrap(b *block, columns int) []line {
	canBreak := breakOpportunities(b)
	var lines []line
	start, col, lastBreak := 0, 0, -1
	for i, c := range b.cells {
		if c.kind == breakCell {
			lines = append(lines, line{start: start, end: i + 1})
			start, col, lastBreak = i+1, 0, -1
			continue
		}
		if i > start && canBreak[i] {
			lastBreak = i
		}
		if c.space {
			col += c.width
			continue
		}
		if col+c.width > columns && i > start {
			brk := lastBreak
			if brk <= start {
				brk = i
			}
			lines = append(lines, line{start: start, end: brk, soft: true})
			col = 0
			for _, w := range b.cells[brk:i] {
				col += w.width
			}
			start, lastBreak = brk, -1
		}
		col += c.width
	}
	return append(lines, line{start: start, end: len(b.cells)})
}

// breakOpportunities reports for each cell whether a line may break before
// it.
func breakOpportunities(b *block) []bool {
	at := make(map[int]bool)
	offset := 0
	state := -1
	rest := b.text
	for len(rest) > 0 {
		var cluster string
		var boundaries int
		cluster, rest, boundaries, state = uniseg.StepString(rest, state)
		offset += len(cluster)
		if boundaries&uniseg.MaskLine != uniseg.LineDontBreak {
			at[offset] = true
		}
	}
	out := make([]bool, len(b.cells))
	for i := range b.cells {
		out[i] = i > 0 && at[b.byteStart[i]]
	}
	return out
}

// stopAtByte returns the stop at byte offset off of the block text.
func (b *block) stopAtByte(off int) int {
	return sort.SearchInts(b.byteStart, off)
}

func segmentWords(b *block) []segment {
	var segs []segment
	offset := 0
	state := -1
	rest := b.text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		start := offset
		offset += len(word)
		segs = append(segs, segment{
			start:      b.stopAtByte(start),
			end:        b.stopAtByte(offset),
			isWord:     strings.IndexFunc(word, isWordRune) >= 0,
			trimmedEnd: b.stopAtByte(offset),
		})
	}
	return segs
}

func segmentSentences(b *block) []segment {
	var segs []segment
	offset := 0
	state := -1
	rest := b.text
	for len(rest) > 0 {
		var sentence string
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		start := offset
		offset += len(sentence)
		trimmed := strings.TrimRightFunc(sentence, unicode.IsSpace)
		segs = append(segs, segment{
			start:      b.stopAtByte(start),
			end:        b.stopAtByte(offset),
			isWord:     trimmed != "",
			trimmedEnd: b.stopAtByte(start + len(trimmed)),
		})
	}
	return segs
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

type strength int

const (
	neutral strength = iota
	strongL
	strongR
)

func classify(s string) strength {
	props, _ := bidi.LookupString(s)
	switch props.Class() {
	case bidi.L:
		return strongL
	case bidi.R, bidi.AL:
		return strongR
	}
	return neutral
}

// blockDirection resolves dir and direction on the block and its
// ancestors. dir=auto takes the direction of the first strong character.
func blockDirection(b *block) editing.Direction {
	for n := b.node; n != nil; n = dom.Flat.Parent(n) {
		el := n.AsElement()
		if el == nil {
			continue
		}
		switch strings.ToLower(el.GetAttribute("dir")) {
		case "rtl":
			return editing.RTL
		case "ltr":
			return editing.LTR
		case "auto":
			for _, c := range b.cells {
				switch classify(c.text) {
				case strongR:
					return editing.RTL
				case strongL:
					return editing.LTR
				}
			}
			return editing.LTR
		}
		switch el.Style("direction") {
		case "rtl":
			return editing.RTL
		case "ltr":
			return editing.LTR
		}
	}
	return editing.LTR
}

// assignLevels gives each cell an embedding level. Strong characters
// against the base direction are one level deeper; neutrals between two
// runs of the same level take that level, others take the base level.
func assignLevels(b *block) {
	base := 0
	if b.rtl {
		base = 1
	}
	strongLevel := func(s strength) int {
		switch {
		case s == strongR && base == 0:
			return 1
		case s == strongL && base == 1:
			return 2
		}
		return base
	}

	levels := make([]int, len(b.cells))
	kinds := make([]strength, len(b.cells))
	for i, c := range b.cells {
		if c.kind == textCell {
			kinds[i] = classify(c.text)
		}
		levels[i] = -1
		if kinds[i] != neutral {
			levels[i] = strongLevel(kinds[i])
		}
	}
	for i := range levels {
		if levels[i] >= 0 {
			continue
		}
		prev, next := base, base
		for j := i - 1; j >= 0; j-- {
			if levels[j] >= 0 && kinds[j] != neutral {
				prev = levels[j]
				break
			}
		}
		for j := i + 1; j < len(levels); j++ {
			if kinds[j] != neutral {
				next = strongLevel(kinds[j])
				break
			}
		}
		if prev == next {
			levels[i] = prev
		} else {
			levels[i] = base
		}
	}
	for i := range b.cells {
		b.cells[i].level = levels[i]
	}
}
