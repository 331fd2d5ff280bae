package editing

import (
	"github.com/chrisuehlinger/selectionkit/dom"
	"go.uber.org/zap"
)

// Option configures a SelectionState.
type Option func(*SelectionState)

// WithBehavior sets the platform behavior switches.
func WithBehavior(b Behavior) Option {
	return func(s *SelectionState) { s.behavior = b }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *SelectionState) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScheduler sets the timer source of the caret blink.
func WithScheduler(sch Scheduler) Option {
	return func(s *SelectionState) { s.scheduler = sch }
}

// SelectionState is the selection of one document: the committed
// selection, the caches that survive between modifications, the gesture
// controller, the caret and the pending appearance.
type SelectionState struct {
	doc       *dom.Document
	layout    Layout
	host      Host
	behavior  Behavior
	logger    *zap.Logger
	scheduler Scheduler

	editor     *SelectionEditor
	pending    *PendingSelection
	caret      *CaretBlink
	controller *SelectionController

	granularity Granularity
	xPos        int
	// bidiAnchor is the base before the last bidi adjustment; it replaces
	// bidiAdjustedBase when a gesture extends from it again.
	bidiAnchor       Position
	bidiAdjustedBase Position
}

// NewSelectionState creates the selection of doc and registers it as a
// mutation observer. host may be nil.
func NewSelectionState(doc *dom.Document, layout Layout, host Host, opts ...Option) *SelectionState {
	s := &SelectionState{
		doc:      doc,
		layout:   layout,
		host:     host,
		behavior: DefaultBehavior(),
		logger:   zap.NewNop(),
		xPos:     NoXPosForVerticalNavigation,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.host == nil {
		s.host = NopHost{}
	}

	s.editor = newSelectionEditor(doc, layout, s.host, s.behavior, s.logger)
	s.caret = NewCaretBlink(s.scheduler, s.behavior.CaretBlinkInterval)
	s.pending = newPendingSelection(s.editor, s.caret)
	s.editor.pending = s.pending
	s.editor.onCommit = s.didCommit
	s.editor.onDetach = s.didDetach
	s.caret.OnToggle(s.pending.MarkDirty)
	s.controller = newSelectionController(s)

	doc.AddObserver(s)
	return s
}

func (s *SelectionState) Document() *dom.Document { return s.doc }
func (s *SelectionState) Layout() Layout { return s.layout }
func (s *SelectionState) Behavior() Behavior { return s.behavior }
func (s *SelectionState) Controller() *SelectionController { return s.controller }
func (s *SelectionState) Caret() *CaretBlink { return s.caret }
func (s *SelectionState) Pending() *PendingSelection { return s.pending }

// Generation increments on every committed change.
func (s *SelectionState) Generation() uint64 {
	return s.editor.Generation()
}

func (s *SelectionState) didCommit(opts SetSelectionOptions) {
	s.granularity = opts.Granularity
	s.xPos = NoXPosForVerticalNavigation
	s.bidiAnchor, s.bidiAdjustedBase = Position{}, Position{}
	s.updateCaret()
	if opts.UserTriggered {
		s.controller.notifySelectionChanged(s.editor.Selection(FlatTree).Type())
	}
}

func (s *SelectionState) didDetach() {
	s.caret.Stop()
	s.controller.reset()
	s.logger.Debug("selection detached with document")
}

// updateCaret blinks the caret only for a caret in editable content.
func (s *SelectionState) updateCaret() {
	vs := s.editor.Selection(FlatTree)
	if !vs.IsCaret() || !isEditablePosition(vs.start) {
		s.caret.Stop()
		return
	}
	if s.caret.IsActive() {
		s.caret.CaretRectChanged()
	} else {
		s.caret.Start()
	}
}

func isEditablePosition(p Position) bool {
	c := p.ContainerIn(FlatTree)
	if c == nil {
		return false
	}
	if el := c.AsElement(); el != nil && el.IsTextControl() {
		return true
	}
	return dom.IsEditable(c)
}

// SetSelection validates and commits sel in the space it was built for.
func (s *SelectionState) SetSelection(sel Selection, opts SetSelectionOptions) bool {
	return s.editor.SetSelection(sel, opts)
}

// SetSelectionInFlatTree commits a flat-tree candidate.
func (s *SelectionState) SetSelectionInFlatTree(sel Selection, opts SetSelectionOptions) bool {
	sel.space = FlatTree
	return s.editor.SetSelection(sel, opts)
}

// SetSelectionAndEndTyping commits sel as a user would, closing the
// current typing command.
func (s *SelectionState) SetSelectionAndEndTyping(sel Selection) bool {
	return s.editor.SetSelection(sel, SetSelectionOptions{
		CloseTyping:      true,
		ClearTypingStyle: true,
		UserTriggered:    true,
	})
}

// ComputeVisibleSelectionInDOMTree returns the authored selection.
func (s *SelectionState) ComputeVisibleSelectionInDOMTree() VisibleSelection {
	return s.editor.Selection(AuthoredTree)
}

// ComputeVisibleSelectionInFlatTree returns the flat selection.
func (s *SelectionState) ComputeVisibleSelectionInFlatTree() VisibleSelection {
	return s.editor.Selection(FlatTree)
}

func (s *SelectionState) IsNone() bool { return s.ComputeVisibleSelectionInDOMTree().IsNone() }
func (s *SelectionState) IsCaret() bool { return s.ComputeVisibleSelectionInDOMTree().IsCaret() }
func (s *SelectionState) IsRange() bool { return s.ComputeVisibleSelectionInDOMTree().IsRange() }

func (s *SelectionState) Start() Position { return s.ComputeVisibleSelectionInDOMTree().Start() }
func (s *SelectionState) End() Position { return s.ComputeVisibleSelectionInDOMTree().End() }
func (s *SelectionState) Base() Position { return s.ComputeVisibleSelectionInDOMTree().Base() }
func (s *SelectionState) Extent() Position { return s.ComputeVisibleSelectionInDOMTree().Extent() }

// Granularity returns the granularity of the gesture that made the
// selection.
func (s *SelectionState) Granularity() Granularity {
	return s.granularity
}

// XPosForVerticalNavigation returns the x remembered across vertical
// movements.
func (s *SelectionState) XPosForVerticalNavigation() int {
	return s.xPos
}

// SetLogicalRange records the range a script set. It must be called right
// after the commit that selected it.
func (s *SelectionState) SetLogicalRange(r *dom.Range) {
	s.editor.SetLogicalRange(r)
}

// FirstRange returns the recorded logical range while it is still valid,
// otherwise the range of the visible selection. It is nil for None.
func (s *SelectionState) FirstRange() *dom.Range {
	if r := s.editor.LogicalRange(); r != nil {
		if r.IsValid() {
			return r.CloneRange()
		}
		s.logger.Debug("logical range is stale; using the visible selection")
	}
	vs := s.ComputeVisibleSelectionInDOMTree()
	if vs.IsNone() {
		return nil
	}
	r, err := vs.ToRange()
	if err != nil {
		s.logger.Debug("selection has no range", zap.Error(err))
		return nil
	}
	return r
}

// SelectedText returns the text of the selection.
func (s *SelectionState) SelectedText(behavior TextBehavior) string {
	vs := s.ComputeVisibleSelectionInFlatTree()
	if !vs.IsRange() {
		return ""
	}
	return PlainText(s.layout, vs.start, vs.end, behavior)
}

// BoundingRect returns the union of the caret rectangles at both ends of
// the selection.
func (s *SelectionState) BoundingRect() Rect {
	vs := s.ComputeVisibleSelectionInFlatTree()
	switch {
	case vs.IsNone():
		return Rect{}
	case vs.IsCaret():
		return s.layout.CaretBoundsOf(vs.start, vs.affinity)
	}
	return s.layout.CaretBoundsOf(vs.start, Downstream).Union(s.layout.CaretBoundsOf(vs.end, Upstream))
}

// Clear removes the selection.
func (s *SelectionState) Clear() {
	s.editor.SetSelection(NewSelectionBuilder(AuthoredTree).Build(), SetSelectionOptions{})
}

// SelectAll selects the contents of the editable root holding the
// selection, or of the whole document.
func (s *SelectionState) SelectAll() {
	var root *dom.Node
	if vs := s.ComputeVisibleSelectionInDOMTree(); !vs.IsNone() {
		if el := dom.RootEditableElement(vs.start.ContainerIn(AuthoredTree)); el != nil {
			root = el.AsNode()
		} else if tc := dom.EnclosingTextControl(vs.start.ContainerIn(AuthoredTree)); tc != nil {
			root = tc.AsNode()
		}
	}
	selectsDocument := root == nil
	if root == nil {
		if body := s.doc.Body(); body != nil {
			root = body.AsNode()
		} else if de := s.doc.DocumentElement(); de != nil {
			root = de.AsNode()
		} else {
			return
		}
	}
	if dom.UserSelect(root) == "none" {
		return
	}
	sel := NewSelectionBuilder(AuthoredTree).SelectAllChildren(root).Build()
	s.editor.SetSelection(sel, SetSelectionOptions{
		CloseTyping:      true,
		ClearTypingStyle: true,
		UserTriggered:    true,
	})
	if selectsDocument && s.behavior.FrameFullSelection {
		if fh, ok := s.host.(FrameHost); ok {
			fh.SelectFrameElementInParent()
		}
	}
}

// Modify applies a keyboard modification and commits the result as a user
// action. It returns false when the selection could not move.
func (s *SelectionState) Modify(alter SelectionAlteration, direction SelectionDirection, granularity Granularity) bool {
	return s.modify(alter, direction, granularity, true)
}

// ModifyBySystem is Modify for script-driven modifications.
func (s *SelectionState) ModifyBySystem(alter SelectionAlteration, direction SelectionDirection, granularity Granularity) bool {
	return s.modify(alter, direction, granularity, false)
}

func (s *SelectionState) modify(alter SelectionAlteration, direction SelectionDirection, granularity Granularity, userTriggered bool) bool {
	vs := s.ComputeVisibleSelectionInFlatTree()
	if vs.IsNone() {
		return false
	}
	m := NewSelectionModifier(s.layout, s.behavior, vs, s.xPos)
	if !m.Modify(alter, direction, granularity) {
		s.logger.Debug("modification not handled",
			zap.Int("alter", int(alter)),
			zap.Int("direction", int(direction)),
			zap.Stringer("granularity", granularity))
		return false
	}
	s.commitModified(m, userTriggered)
	if granularity == Line || granularity == Paragraph {
		s.xPos = m.XPosForVerticalNavigation()
	}
	return true
}

// ModifyVertically moves or extends by distance layout units, as for page
// up and page down.
func (s *SelectionState) ModifyVertically(alter SelectionAlteration, distance int, direction VerticalDirection) bool {
	vs := s.ComputeVisibleSelectionInFlatTree()
	if vs.IsNone() {
		return false
	}
	m := NewSelectionModifier(s.layout, s.behavior, vs, s.xPos)
	if !m.ModifyVertically(alter, distance, direction) {
		return false
	}
	s.commitModified(m, true)
	s.xPos = m.XPosForVerticalNavigation()
	return true
}

func (s *SelectionState) commitModified(m *SelectionModifier, userTriggered bool) {
	s.editor.SetSelection(m.Selection().AsSelection(), SetSelectionOptions{
		CloseTyping:      true,
		ClearTypingStyle: true,
		UserTriggered:    userTriggered,
	})
}

// adjustForBidi applies bidi boundary adjustment to a gesture candidate.
// When the candidate starts from a base the previous adjustment moved, the
// unadjusted base is used instead so repeated drags do not drift.
func (s *SelectionState) adjustForBidi(candidate Selection) (Selection, Position, Position) {
	if !s.bidiAnchor.IsNull() && candidate.base == s.bidiAdjustedBase {
		candidate.base = s.bidiAnchor
	}
	adjusted := AdjustBidiBoundaries(candidate, s.layout)
	if adjusted.base != candidate.base {
		return adjusted, candidate.base, adjusted.base
	}
	return adjusted, Position{}, Position{}
}

// commitGesture commits a selection built by the gesture controller,
// keeping the bidi anchor computed for it.
func (s *SelectionState) commitGesture(candidate Selection, granularity Granularity, adjustBidi bool) bool {
	var anchor, adjustedBase Position
	if adjustBidi {
		candidate, anchor, adjustedBase = s.adjustForBidi(candidate)
	}
	changed := s.editor.SetSelection(candidate, SetSelectionOptions{
		CloseTyping:      true,
		ClearTypingStyle: true,
		UserTriggered:    true,
		Granularity:      granularity,
	})
	if !anchor.IsNull() {
		s.bidiAnchor = anchor
		s.bidiAdjustedBase = s.ComputeVisibleSelectionInFlatTree().Base()
		if s.bidiAdjustedBase.IsNull() {
			s.bidiAdjustedBase = adjustedBase
		}
	}
	return changed
}

// DidFocus places a caret at the start of el's editable content when focus
// moves into editable content the selection is not already in.
func (s *SelectionState) DidFocus(el *dom.Element) {
	if el == nil || (!el.IsContentEditable() && !el.IsTextControl()) {
		return
	}
	root := el.AsNode()
	if !el.IsTextControl() {
		if r := dom.RootEditableElement(root); r != nil {
			root = r.AsNode()
		}
	}
	vs := s.ComputeVisibleSelectionInDOMTree()
	if !vs.IsNone() && root.IsShadowIncludingInclusiveAncestorOf(vs.start.ContainerIn(AuthoredTree)) {
		return
	}
	s.editor.SetSelection(NewSelectionBuilder(AuthoredTree).Collapse(FirstPositionInNode(root)).Build(),
		SetSelectionOptions{DoNotSetFocus: true})
}

// DidBlur clears a selection in non-editable content when focus leaves.
func (s *SelectionState) DidBlur() {
	vs := s.ComputeVisibleSelectionInFlatTree()
	if vs.IsNone() || isEditablePosition(vs.start) {
		return
	}
	s.editor.SetSelection(NewSelectionBuilder(AuthoredTree).Build(), SetSelectionOptions{DoNotSetFocus: true})
}

// CommitAppearance pushes the selection to view if it changed and layout
// is clean.
func (s *SelectionState) CommitAppearance(view RenderView) bool {
	return s.pending.Commit(view)
}

// CaretVisible reports whether the caret is currently painted.
func (s *SelectionState) CaretVisible() bool {
	return s.caret.IsVisible()
}

// Mutation observer callbacks delegate to the editor.

func (s *SelectionState) OnTextReplaced(node *dom.Node, offset, oldLength, newLength int) {
	s.editor.didUpdateCharacterData(node, offset, oldLength, newLength)
}

func (s *SelectionState) OnTextNodeSplit(oldNode *dom.Node) {
	s.editor.didSplitTextNode(oldNode)
}

func (s *SelectionState) OnTextNodesMerged(removedNode *dom.Node, offset int) {
	s.editor.didMergeTextNodes(removedNode, offset)
}

func (s *SelectionState) OnNodeWillBeRemoved(node *dom.Node) {
	s.editor.nodeWillBeRemoved(node)
}

func (s *SelectionState) OnChildrenWillBeRemoved(container *dom.Node) {
	s.editor.nodeChildrenWillBeRemoved(container)
}

func (s *SelectionState) OnShadowTreeChanged(host *dom.Element) {
	s.editor.didChangeShadowTree()
}

func (s *SelectionState) OnDocumentDetached(doc *dom.Document) {
	s.editor.documentDetached()
}
