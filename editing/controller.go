package editing

import (
	"strings"
	"time"
	"unicode"

	"github.com/chrisuehlinger/selectionkit/dom"
	"go.uber.org/zap"
)

// SelectionControllerState tracks how far the current gesture got.
type SelectionControllerState int

const (
	NotStarted SelectionControllerState = iota
	PlacedCaret
	Extended
)

func (s SelectionControllerState) String() string {
	switch s {
	case PlacedCaret:
		return "PlacedCaret"
	case Extended:
		return "Extended"
	}
	return "NotStarted"
}

// MouseButton identifies the pressed button.
type MouseButton int

const (
	LeftButton MouseButton = iota
	MiddleButton
	RightButton
)

// MouseEvent is a pointer event in layout coordinates.
type MouseEvent struct {
	Point  Point
	Button MouseButton
	// ClickCount is the platform click count. Zero lets the controller
	// classify multi-clicks from Time and Point.
	ClickCount int
	Shift      bool
	// Time is the event timestamp from an arbitrary epoch.
	Time time.Duration
}

// SelectionController turns pointer and touch gestures into selections.
type SelectionController struct {
	state *SelectionState

	selectionState                     SelectionControllerState
	mouseDownMayStartSelect            bool
	mouseDownWasSingleClickInSelection bool
	selectStartDispatched              bool
	granularity                        Granularity
	pressHit                           HitTestResult

	lastClickPoint Point
	lastClickTime  time.Duration
	lastClickCount int
}

func newSelectionController(state *SelectionState) *SelectionController {
	return &SelectionController{state: state}
}

// State returns the gesture state.
func (c *SelectionController) State() SelectionControllerState {
	return c.selectionState
}

// MouseDownMayStartSelect reports whether the last press may start a drag
// selection.
func (c *SelectionController) MouseDownMayStartSelect() bool {
	return c.mouseDownMayStartSelect
}

func (c *SelectionController) reset() {
	c.selectionState = NotStarted
	c.mouseDownMayStartSelect = false
	c.mouseDownWasSingleClickInSelection = false
	c.selectStartDispatched = false
	c.granularity = Character
	c.state.caret.Suspend(false)
}

// notifySelectionChanged follows a user-triggered commit.
func (c *SelectionController) notifySelectionChanged(t SelectionType) {
	switch t {
	case NoSelection:
		c.selectionState = NotStarted
	case CaretSelection:
		c.selectionState = PlacedCaret
	default:
		c.selectionState = Extended
	}
}

// classifyClick returns the click count of a press, using the platform
// count when given.
func (c *SelectionController) classifyClick(ev MouseEvent) int {
	count := ev.ClickCount
	if count <= 0 {
		b := c.state.behavior
		count = 1
		if c.lastClickCount > 0 &&
			ev.Time-c.lastClickTime <= b.MultiClickInterval &&
			abs(ev.Point.X-c.lastClickPoint.X) <= b.MultiClickSlop &&
			abs(ev.Point.Y-c.lastClickPoint.Y) <= b.MultiClickSlop {
			count = c.lastClickCount + 1
		}
		if count > 3 {
			count = 3
		}
	}
	c.lastClickCount = count
	c.lastClickTime = ev.Time
	c.lastClickPoint = ev.Point
	return count
}

// HandleMousePress handles a button press. It returns true when the press
// changed the selection.
func (c *SelectionController) HandleMousePress(ev MouseEvent) bool {
	count := c.classifyClick(ev)
	c.mouseDownMayStartSelect = false
	c.mouseDownWasSingleClickInSelection = false
	c.selectStartDispatched = false
	if ev.Button != LeftButton {
		return false
	}

	hit := c.state.layout.HitTest(ev.Point)
	c.pressHit = hit
	if hit.Node == nil || !canStartSelection(hit.Node) {
		return false
	}
	c.mouseDownMayStartSelect = true
	c.state.caret.Suspend(true)

	switch count {
	case 1:
		return c.handleSingleClick(hit, ev.Shift)
	case 2:
		return c.handleDoubleClick(hit)
	default:
		return c.handleTripleClick(hit)
	}
}

func (c *SelectionController) handleSingleClick(hit HitTestResult, shift bool) bool {
	c.granularity = Character
	vs := c.state.ComputeVisibleSelectionInFlatTree()
	pos := hit.Position
	if pos.IsNull() {
		return false
	}

	if shift && !vs.IsNone() {
		return c.extendToHit(vs, hit)
	}
	if vs.IsRange() && !shift && positionInSelection(vs, pos) {
		// Pressing inside a range leaves it alone until release, so it can
		// be dragged.
		c.mouseDownWasSingleClickInSelection = true
		return false
	}
	caret := NewSelectionBuilder(FlatTree).Collapse(pos).SetAffinity(hit.Affinity).Build()
	return c.updateSelectionForMouseDown(hit.Node, caret, Character, false)
}

// extendToHit handles shift-click: a directional selection keeps its base,
// otherwise the endpoint farther from the click becomes the base.
func (c *SelectionController) extendToHit(vs VisibleSelection, hit HitTestResult) bool {
	pos := hit.Position
	base := vs.base
	if !vs.isDirectional && !c.state.behavior.NonDirectionalSelectionIsDirectional {
		switch {
		case comparePositions(pos, vs.start, FlatTree) <= 0:
			base = vs.end
		case comparePositions(pos, vs.end, FlatTree) >= 0:
			base = vs.start
		default:
			toStart := len(PlainText(nil, vs.start, pos, TextBehavior{}))
			toEnd := len(PlainText(nil, pos, vs.end, TextBehavior{}))
			if toStart <= toEnd {
				base = vs.end
			} else {
				base = vs.start
			}
		}
	}
	granularity := c.state.granularity
	sel := c.expand(base, pos, granularity)
	sel.affinity = hit.Affinity
	return c.updateSelectionForMouseDown(hit.Node, sel, granularity, true)
}

func (c *SelectionController) handleDoubleClick(hit HitTestResult) bool {
	vs := c.state.ComputeVisibleSelectionInFlatTree()
	if c.selectionState == Extended && vs.IsRange() {
		return false
	}
	return c.selectClosestWord(hit, false)
}

func (c *SelectionController) handleTripleClick(hit HitTestResult) bool {
	vs := c.state.ComputeVisibleSelectionInFlatTree()
	if c.selectionState == Extended && vs.IsRange() && c.state.granularity == Paragraph {
		return false
	}
	pos := hit.Position
	if pos.IsNull() {
		return false
	}
	l := c.state.layout
	start, end := l.StartOfParagraph(pos), l.EndOfParagraph(pos)
	if start.IsNull() || end.IsNull() {
		return false
	}
	// Include the paragraph break so the selection covers the whole line.
	if next := l.NextPosition(end); !next.IsNull() {
		end = next
	}
	sel := NewSelectionBuilder(FlatTree).SetBaseAndExtent(start, end).SetGranularity(Paragraph).Build()
	c.granularity = Paragraph
	return c.updateSelectionForMouseDown(hit.Node, sel, Paragraph, false)
}

// selectClosestWord selects the word at hit. For touch, empty or
// whitespace-only words are rejected.
func (c *SelectionController) selectClosestWord(hit HitTestResult, touch bool) bool {
	pos := hit.Position
	if pos.IsNull() {
		return false
	}
	l := c.state.layout
	start := l.StartOfWord(pos, NextWordIfOnBoundary)
	end := l.EndOfWord(pos, NextWordIfOnBoundary)
	if start == end {
		start = l.StartOfWord(pos, PreviousWordIfOnBoundary)
		end = l.EndOfWord(pos, PreviousWordIfOnBoundary)
	}
	if start.IsNull() || end.IsNull() {
		return false
	}
	if touch && strings.TrimSpace(PlainText(l, start, end, TextBehavior{})) == "" {
		return false
	}
	if !touch && c.state.behavior.SelectTrailingWhitespace {
		for {
			r := l.CharacterAfter(end)
			if r == 0 || r == '\n' || !unicode.IsSpace(r) {
				break
			}
			next := l.NextPosition(end)
			if next.IsNull() || next == end {
				break
			}
			end = next
		}
	}
	sel := NewSelectionBuilder(FlatTree).SetBaseAndExtent(start, end).SetGranularity(Word).Build()
	c.granularity = Word
	return c.updateSelectionForMouseDown(hit.Node, sel, Word, false)
}

// updateSelectionForMouseDown dispatches the cancelable start notification
// and commits sel.
func (c *SelectionController) updateSelectionForMouseDown(target *dom.Node, sel Selection, granularity Granularity, adjustBidi bool) bool {
	if !c.dispatchSelectStart(target) {
		return false
	}
	return c.state.commitGesture(sel, granularity, adjustBidi)
}

func (c *SelectionController) dispatchSelectStart(target *dom.Node) bool {
	if c.selectStartDispatched {
		return true
	}
	doc := c.state.doc
	ok := c.state.host.SelectionWillStart(target)
	if !doc.IsActive() {
		return false
	}
	if !ok {
		c.state.logger.Debug("selection start canceled", zap.String("target", target.NodeName()))
		c.reset()
		return false
	}
	c.selectStartDispatched = true
	return true
}

// HandleMouseDrag extends the selection to the dragged point.
func (c *SelectionController) HandleMouseDrag(ev MouseEvent) bool {
	if !c.mouseDownMayStartSelect {
		return false
	}
	hit := c.state.layout.HitTest(ev.Point)
	if hit.Node == nil || hit.Position.IsNull() {
		return false
	}
	if c.selectionState != Extended && !c.dispatchSelectStart(hit.Node) {
		return false
	}

	vs := c.state.ComputeVisibleSelectionInFlatTree()
	var base Position
	if (c.selectionState != Extended && c.mouseDownWasSingleClickInSelection) || vs.IsNone() {
		base = c.pressHit.Position
		c.mouseDownWasSingleClickInSelection = false
	} else {
		base = vs.base
	}
	if base.IsNull() {
		return false
	}
	target := hit.Position
	layout := c.state.layout

	forward := comparePositions(base, target, FlatTree) <= 0
	if dom.UserSelectAllRoot(target.ContainerIn(FlatTree)) != nil {
		target = absorbUserSelectAll(layout, target, forward)
	}
	if baseRoot := dom.UserSelectAllRoot(base.ContainerIn(FlatTree)); baseRoot != nil &&
		baseRoot != dom.UserSelectAllRoot(target.ContainerIn(FlatTree)) {
		base = absorbUserSelectAll(layout, base, !forward)
	}

	sel := c.expand(base, target, c.granularity)
	sel.affinity = hit.Affinity
	changed := c.state.commitGesture(sel, c.granularity, true)
	if c.state.ComputeVisibleSelectionInFlatTree().IsRange() {
		c.selectionState = Extended
	}
	return changed
}

// expand builds the selection from base to extent, growing both ends to
// granularity. The original unit at base stays selected when dragging back
// across it.
func (c *SelectionController) expand(base, extent Position, granularity Granularity) Selection {
	b := NewSelectionBuilder(FlatTree).SetGranularity(granularity)
	if granularity != Word && granularity != Paragraph {
		return b.SetBaseAndExtent(base, extent).Build()
	}
	l := c.state.layout
	baseIsFirst := comparePositions(base, extent, FlatTree) <= 0
	start, end := base, extent
	if !baseIsFirst {
		start, end = extent, base
	}
	if granularity == Word {
		start, end = l.StartOfWord(start, NextWordIfOnBoundary), l.EndOfWord(end, PreviousWordIfOnBoundary)
	} else {
		start, end = l.StartOfParagraph(start), l.EndOfParagraph(end)
	}
	if baseIsFirst {
		return b.SetBaseAndExtent(start, end).Build()
	}
	return b.SetBaseAndExtent(end, start).Build()
}

// HandleMouseRelease ends the gesture. It returns true when the release
// changed the selection.
func (c *SelectionController) HandleMouseRelease(ev MouseEvent) bool {
	defer c.state.caret.Suspend(false)

	hit := c.state.layout.HitTest(ev.Point)
	if c.mouseDownMayStartSelect && c.selectionState == Extended && hit.Node == nil {
		// Released outside any content: the drag is abandoned.
		c.reset()
		return false
	}

	handled := false
	if c.mouseDownWasSingleClickInSelection && c.selectionState != Extended {
		if pos := c.pressHit.Position; !pos.IsNull() {
			caret := NewSelectionBuilder(FlatTree).Collapse(pos).SetAffinity(c.pressHit.Affinity).Build()
			handled = c.state.commitGesture(caret, Character, false)
		}
	}
	c.mouseDownMayStartSelect = false
	c.mouseDownWasSingleClickInSelection = false
	return handled
}

// HandleTap places a caret at pt.
func (c *SelectionController) HandleTap(pt Point) bool {
	c.selectStartDispatched = false
	hit := c.state.layout.HitTest(pt)
	if hit.Node == nil || hit.Position.IsNull() || !canStartSelection(hit.Node) {
		return false
	}
	caret := NewSelectionBuilder(FlatTree).Collapse(hit.Position).SetAffinity(hit.Affinity).Build()
	c.granularity = Character
	return c.updateSelectionForMouseDown(hit.Node, caret, Character, false)
}

// HandleLongPress selects the word at pt.
func (c *SelectionController) HandleLongPress(pt Point) bool {
	c.selectStartDispatched = false
	hit := c.state.layout.HitTest(pt)
	if hit.Node == nil || !canStartSelection(hit.Node) {
		return false
	}
	return c.selectClosestWord(hit, true)
}

// HandleGestureSelect selects between two points, as when dragging touch
// selection handles.
func (c *SelectionController) HandleGestureSelect(from, to Point) bool {
	c.selectStartDispatched = false
	layout := c.state.layout
	fromHit, toHit := layout.HitTest(from), layout.HitTest(to)
	if fromHit.Node == nil || toHit.Node == nil || fromHit.Position.IsNull() || toHit.Position.IsNull() {
		return false
	}
	if !canStartSelection(fromHit.Node) {
		return false
	}
	sel := NewSelectionBuilder(FlatTree).
		SetBaseAndExtent(fromHit.Position, toHit.Position).
		SetAffinity(toHit.Affinity).
		Build()
	if !c.updateSelectionForMouseDown(fromHit.Node, sel, Character, true) {
		return false
	}
	if c.state.ComputeVisibleSelectionInFlatTree().IsRange() {
		c.selectionState = Extended
	}
	return true
}

func canStartSelection(n *dom.Node) bool {
	return dom.UserSelect(n) != "none"
}

func positionInSelection(vs VisibleSelection, p Position) bool {
	return comparePositions(vs.start, p, FlatTree) <= 0 && comparePositions(p, vs.end, FlatTree) <= 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
