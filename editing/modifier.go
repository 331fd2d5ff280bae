package editing

import (
	"math"

	"github.com/chrisuehlinger/selectionkit/dom"
)

// NoXPosForVerticalNavigation marks the remembered caret x as unset.
const NoXPosForVerticalNavigation = math.MinInt32

// SelectionAlteration is whether a modification moves the caret or extends
// the selection.
type SelectionAlteration int

const (
	AlterMove SelectionAlteration = iota
	AlterExtend
)

// SelectionDirection is the direction of a modification. Left and Right are
// visual and depend on the block direction for character and word steps; Up
// and Down are Backward and Forward.
type SelectionDirection int

const (
	DirectionForward SelectionDirection = iota
	DirectionBackward
	DirectionLeft
	DirectionRight
	DirectionUp
	DirectionDown
)

// VerticalDirection is the direction of a page-wise modification.
type VerticalDirection int

const (
	Up VerticalDirection = iota
	Down
)

// SelectionModifier computes the selection that results from a keyboard
// modification of a flat-tree selection. It never commits anything.
type SelectionModifier struct {
	layout   Layout
	behavior Behavior
	current  VisibleSelection
	sel      Selection
	xPos     int
}

// NewSelectionModifier returns a modifier for current, a flat-tree
// selection. xPos is the remembered x for vertical movement.
func NewSelectionModifier(layout Layout, behavior Behavior, current VisibleSelection, xPos int) *SelectionModifier {
	return &SelectionModifier{
		layout:   layout,
		behavior: behavior,
		current:  current,
		sel:      current.AsSelection(),
		xPos:     xPos,
	}
}

// Selection returns the modified selection.
func (m *SelectionModifier) Selection() VisibleSelection {
	return CreateVisibleSelection(m.sel, m.layout)
}

// XPosForVerticalNavigation returns the x to keep for the next vertical
// movement.
func (m *SelectionModifier) XPosForVerticalNavigation() int {
	return m.xPos
}

// Modify applies one step of granularity in direction. It returns false
// when the selection cannot move, for example at the document edge or in
// content that is not rendered.
func (m *SelectionModifier) Modify(alter SelectionAlteration, direction SelectionDirection, granularity Granularity) bool {
	if m.current.IsNone() {
		return false
	}
	m.willBeModified(alter, direction)

	var pos Position
	forward := m.isLogicallyForward(direction, granularity)
	if alter == AlterMove {
		pos = m.modifyMoving(direction, granularity, forward)
	} else {
		pos = m.modifyExtending(direction, granularity, forward)
	}
	if pos.IsNull() {
		return false
	}

	affinity := Downstream
	if granularity == LineBoundary && forward {
		affinity = Upstream
	}
	b := NewSelectionBuilderFrom(m.sel).SetAffinity(affinity).
		SetIsDirectional(m.behavior.NonDirectionalSelectionIsDirectional || alter == AlterExtend).
		SetGranularity(Character)
	switch {
	case alter == AlterMove:
		b.Collapse(pos)
	case m.behavior.ExtendByBoundaryGrows && granularity.IsBoundary():
		// The boundary was found from the far side, so the near side anchors.
		base := m.current.end
		if forward {
			base = m.current.start
		}
		b.SetBaseAndExtent(base, pos)
	default:
		b.Extend(pos)
	}
	m.sel = b.Build()

	if granularity != Line && granularity != Paragraph {
		m.xPos = NoXPosForVerticalNavigation
	}
	return true
}

// ModifyVertically moves by whole lines until the caret has travelled
// distance, as for page up and page down.
func (m *SelectionModifier) ModifyVertically(alter SelectionAlteration, distance int, direction VerticalDirection) bool {
	if m.current.IsNone() || distance <= 0 {
		return false
	}
	if direction == Up {
		m.willBeModified(alter, DirectionBackward)
	} else {
		m.willBeModified(alter, DirectionForward)
	}

	var pos Position
	switch {
	case alter == AlterExtend:
		pos = m.sel.extent
	case direction == Up:
		pos = m.current.start
	default:
		pos = m.current.end
	}
	x := m.lineDirectionPoint(pos)
	startY := m.layout.CaretBoundsOf(pos, m.current.affinity).Y

	var result Position
	for p := pos; ; {
		var next Position
		if direction == Up {
			next = m.layout.PreviousLinePosition(p, Downstream, x)
		} else {
			next = m.layout.NextLinePosition(p, Downstream, x)
		}
		if next.IsNull() || next == p {
			break
		}
		p = next
		delta := m.layout.CaretBoundsOf(p, Downstream).Y - startY
		if delta < 0 {
			delta = -delta
		}
		if delta > distance {
			break
		}
		result = p
		if delta == distance {
			break
		}
	}
	if result.IsNull() {
		return false
	}

	b := NewSelectionBuilderFrom(m.sel).SetAffinity(Downstream).
		SetIsDirectional(m.behavior.NonDirectionalSelectionIsDirectional || alter == AlterExtend)
	if alter == AlterMove {
		b.Collapse(result)
	} else {
		b.Extend(result)
	}
	m.sel = b.Build()
	return true
}

// willBeModified reorients base and extent before an extension so the
// user-visible selection grows from the right end.
func (m *SelectionModifier) willBeModified(alter SelectionAlteration, direction SelectionDirection) {
	if alter != AlterExtend || m.current.IsNone() {
		return
	}
	var baseIsStart bool
	if m.current.IsDirectional() {
		baseIsStart = m.current.IsBaseFirst()
	} else {
		switch direction {
		case DirectionRight:
			baseIsStart = m.directionOfSelection() == LTR
		case DirectionForward, DirectionDown:
			baseIsStart = true
		case DirectionLeft:
			baseIsStart = m.directionOfSelection() == RTL
		case DirectionBackward, DirectionUp:
			baseIsStart = false
		}
	}
	if baseIsStart {
		m.sel.base, m.sel.extent = m.current.start, m.current.end
	} else {
		m.sel.base, m.sel.extent = m.current.end, m.current.start
	}
}

// isLogicallyForward resolves a visual direction. Only character and word
// steps follow the block direction; everything else maps right to forward.
func (m *SelectionModifier) isLogicallyForward(direction SelectionDirection, granularity Granularity) bool {
	switch direction {
	case DirectionForward, DirectionDown:
		return true
	case DirectionBackward, DirectionUp:
		return false
	}
	visual := granularity == Character || granularity == Word
	rtl := visual && m.layout.DirectionOfEnclosingBlock(m.sel.extent) == RTL
	if direction == DirectionRight {
		return !rtl
	}
	return rtl
}

func (m *SelectionModifier) directionOfSelection() Direction {
	startDir := m.layout.DirectionOfEnclosingBlock(m.current.start)
	endDir := m.layout.DirectionOfEnclosingBlock(m.current.end)
	if startDir == endDir {
		return startDir
	}
	return LTR
}

func (m *SelectionModifier) startForPlatform() Position {
	if m.behavior.ExtendByBoundaryGrows {
		return m.current.start
	}
	return m.sel.extent
}

func (m *SelectionModifier) endForPlatform() Position {
	if m.behavior.ExtendByBoundaryGrows {
		return m.current.end
	}
	return m.sel.extent
}

func (m *SelectionModifier) modifyMoving(direction SelectionDirection, granularity Granularity, forward bool) Position {
	if granularity == Character && m.current.IsRange() {
		if direction == DirectionLeft || direction == DirectionRight {
			if (direction == DirectionRight) == (m.directionOfSelection() == LTR) {
				return m.current.end
			}
			return m.current.start
		}
		if forward {
			return m.current.end
		}
		return m.current.start
	}
	var pos Position
	if forward {
		pos = m.moveForward(granularity)
	} else {
		pos = m.moveBackward(granularity)
	}
	return m.absorbUserSelectAll(pos, forward)
}

func (m *SelectionModifier) moveForward(granularity Granularity) Position {
	l := m.layout
	switch granularity {
	case Character:
		return l.NextPosition(m.sel.extent)
	case Word:
		return l.NextWordPosition(m.sel.extent)
	case Sentence:
		return l.NextSentencePosition(m.sel.extent)
	case Line:
		pos := m.current.end
		if m.current.IsRange() && pos == l.StartOfLine(pos, Downstream) {
			return pos
		}
		return l.NextLinePosition(pos, m.current.affinity, m.lineDirectionPoint(pos))
	case Paragraph:
		pos := m.current.end
		return l.NextParagraphPosition(pos, m.lineDirectionPoint(pos))
	}
	return m.forwardBoundary(granularity, m.endForPlatform())
}

func (m *SelectionModifier) moveBackward(granularity Granularity) Position {
	l := m.layout
	switch granularity {
	case Character:
		return l.PreviousPosition(m.sel.extent)
	case Word:
		return l.PreviousWordPosition(m.sel.extent)
	case Sentence:
		return l.PreviousSentencePosition(m.sel.extent)
	case Line:
		pos := m.current.start
		return l.PreviousLinePosition(pos, m.current.affinity, m.lineDirectionPoint(pos))
	case Paragraph:
		pos := m.current.start
		return l.PreviousParagraphPosition(pos, m.lineDirectionPoint(pos))
	}
	return m.backwardBoundary(granularity, m.startForPlatform())
}

func (m *SelectionModifier) modifyExtending(direction SelectionDirection, granularity Granularity, forward bool) Position {
	l := m.layout
	extent := m.sel.extent
	var pos Position
	switch granularity {
	case Character:
		if forward {
			pos = l.NextPosition(extent)
		} else {
			pos = l.PreviousPosition(extent)
		}
	case Word:
		if forward {
			pos = l.NextWordPosition(extent)
		} else {
			pos = l.PreviousWordPosition(extent)
		}
	case Sentence:
		if forward {
			pos = l.NextSentencePosition(extent)
		} else {
			pos = l.PreviousSentencePosition(extent)
		}
	case Line, Paragraph:
		x := m.lineDirectionPoint(extent)
		switch {
		case granularity == Line && forward:
			pos = l.NextLinePosition(extent, m.current.affinity, x)
		case granularity == Line:
			pos = l.PreviousLinePosition(extent, m.current.affinity, x)
		case forward:
			pos = l.NextParagraphPosition(extent, x)
		default:
			pos = l.PreviousParagraphPosition(extent, x)
		}
	default:
		if forward {
			pos = m.forwardBoundary(granularity, m.endForPlatform())
		} else {
			pos = m.backwardBoundary(granularity, m.startForPlatform())
		}
	}
	if !m.behavior.SnapExtendToAtomicRegions {
		return pos
	}
	return m.absorbUserSelectAll(pos, forward)
}

func (m *SelectionModifier) forwardBoundary(granularity Granularity, pos Position) Position {
	l := m.layout
	switch granularity {
	case SentenceBoundary:
		return l.EndOfSentence(pos)
	case LineBoundary:
		return l.EndOfLine(pos, m.current.affinity)
	case ParagraphBoundary:
		return l.EndOfParagraph(pos)
	case DocumentBoundary:
		if root := editableRootOf(pos); root != nil {
			return canonicalize(l, LastPositionInNode(root, FlatTree))
		}
		return l.EndOfDocument(pos)
	}
	return Position{}
}

func (m *SelectionModifier) backwardBoundary(granularity Granularity, pos Position) Position {
	l := m.layout
	switch granularity {
	case SentenceBoundary:
		return l.StartOfSentence(pos)
	case LineBoundary:
		return l.StartOfLine(pos, m.current.affinity)
	case ParagraphBoundary:
		return l.StartOfParagraph(pos)
	case DocumentBoundary:
		if root := editableRootOf(pos); root != nil {
			return canonicalize(l, FirstPositionInNode(root))
		}
		return l.StartOfDocument(pos)
	}
	return Position{}
}

// lineDirectionPoint returns the remembered x for vertical movement,
// taking it from pos the first time.
func (m *SelectionModifier) lineDirectionPoint(pos Position) int {
	if m.xPos == NoXPosForVerticalNavigation {
		m.xPos = m.layout.CaretBoundsOf(pos, m.current.affinity).X
	}
	return m.xPos
}

// absorbUserSelectAll moves pos out of a user-select:all region, past its
// far edge in the direction of travel.
func (m *SelectionModifier) absorbUserSelectAll(pos Position, forward bool) Position {
	if pos.IsNull() {
		return pos
	}
	return absorbUserSelectAll(m.layout, pos, forward)
}

func absorbUserSelectAll(layout Layout, pos Position, forward bool) Position {
	root := dom.UserSelectAllRoot(pos.ContainerIn(FlatTree))
	if root == nil {
		return pos
	}
	var edge Position
	if forward {
		edge = AfterNodePosition(root)
		if p := layout.MostForwardCaretPosition(edge); !p.IsNull() {
			edge = p
		}
	} else {
		edge = BeforeNodePosition(root)
		if p := layout.MostBackwardCaretPosition(edge); !p.IsNull() {
			edge = p
		}
	}
	return edge
}
