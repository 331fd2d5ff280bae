package editing

import (
	"github.com/chrisuehlinger/selectionkit/dom"
	"go.uber.org/zap"
)

// SetSelectionOptions control the side effects of a commit.
type SetSelectionOptions struct {
	CloseTyping              bool
	ClearTypingStyle         bool
	DoNotSetFocus            bool
	DoNotUpdateAppearance    bool
	DoNotAdjustFlattenedTree bool
	UserTriggered            bool
	// Granularity is the unit the selection was expanded with; it is kept
	// for later shift-click and drag extensions.
	Granularity Granularity
}

// SelectionEditor owns the committed selection. It validates candidates,
// keeps the authored and flat copies in sync, and repairs them when the
// tree mutates.
type SelectionEditor struct {
	doc      *dom.Document
	layout   Layout
	host     Host
	behavior Behavior
	logger   *zap.Logger
	pending  *PendingSelection

	pair         ProjectedPair
	generation   uint64
	logicalRange *dom.Range

	// onCommit runs after a new selection is stored and before any host
	// notification.
	onCommit func(opts SetSelectionOptions)
	// onDetach runs once the document is detached.
	onDetach func()
}

func newSelectionEditor(doc *dom.Document, layout Layout, host Host, behavior Behavior, logger *zap.Logger) *SelectionEditor {
	e := &SelectionEditor{
		doc:      doc,
		layout:   layout,
		host:     host,
		behavior: behavior,
		logger:   logger,
	}
	e.pair.Clear()
	return e
}

// Selection returns the committed selection in space.
func (e *SelectionEditor) Selection(space TreeSpace) VisibleSelection {
	return e.pair.In(space)
}

// Generation increments on every committed change.
func (e *SelectionEditor) Generation() uint64 {
	return e.generation
}

// LogicalRange returns the range recorded by SetLogicalRange, or nil.
func (e *SelectionEditor) LogicalRange() *dom.Range {
	return e.logicalRange
}

// SetLogicalRange records the exact range a script set, so reading it back
// returns the same boundary points even if canonicalization moved them.
func (e *SelectionEditor) SetLogicalRange(r *dom.Range) {
	e.logicalRange = r
}

func (e *SelectionEditor) isActive() bool {
	return e.doc != nil && e.doc.IsActive()
}

// aborted reports whether a host callback detached the document or
// committed another selection since gen.
func (e *SelectionEditor) aborted(gen uint64) bool {
	return !e.isActive() || e.generation != gen
}

// SetSelection validates sel and commits it. It returns false when the
// selection did not change or the document is inactive.
func (e *SelectionEditor) SetSelection(sel Selection, opts SetSelectionOptions) bool {
	if !e.isActive() {
		return false
	}
	if e.behavior.NonDirectionalSelectionIsDirectional && !sel.IsNone() {
		sel.isDirectional = true
	}
	vs := CreateVisibleSelection(sel, e.layout)
	if vs == e.pair.In(sel.space) {
		// vs was canonicalized against the current layout; the other tree
		// space is projected again since its positions may have shifted.
		e.pair.Set(vs, !opts.DoNotAdjustFlattenedTree)
		if !opts.DoNotUpdateAppearance {
			e.pending.MarkDirty()
		}
		e.host.SelectionOffsetsChanged()
		return false
	}

	old := e.pair.In(AuthoredTree)
	e.generation++
	gen := e.generation
	e.pair.Set(vs, !opts.DoNotAdjustFlattenedTree)
	e.logicalRange = nil
	e.logger.Debug("selection committed",
		zap.Stringer("selection", vs),
		zap.Stringer("space", vs.space),
		zap.Bool("userTriggered", opts.UserTriggered))

	if e.onCommit != nil {
		e.onCommit(opts)
	}
	if !opts.DoNotUpdateAppearance {
		e.pending.MarkDirty()
	}

	if opts.CloseTyping {
		e.host.CloseTyping()
		if e.aborted(gen) {
			e.logger.Debug("selection commit superseded", zap.String("after", "CloseTyping"))
			return true
		}
	}
	if opts.ClearTypingStyle {
		e.host.ClearTypingStyle()
		if e.aborted(gen) {
			e.logger.Debug("selection commit superseded", zap.String("after", "ClearTypingStyle"))
			return true
		}
	}
	if !opts.DoNotSetFocus {
		e.setFocusedNodeIfNeeded()
		if e.aborted(gen) {
			e.logger.Debug("selection commit superseded", zap.String("after", "FocusChanged"))
			return true
		}
	}
	e.notifySelectionChanged(old.start, opts.UserTriggered, gen)
	return true
}

// notifySelectionChanged sends the post-commit notifications in order,
// stopping as soon as one of them supersedes the commit.
func (e *SelectionEditor) notifySelectionChanged(oldStart Position, userTriggered bool, gen uint64) {
	e.host.SelectionChanged(oldStart, userTriggered)
	if e.aborted(gen) {
		return
	}
	e.host.AccessibilitySelectionChanged(e.pair.In(AuthoredTree).extent.ContainerIn(AuthoredTree))
	if e.aborted(gen) {
		return
	}
	e.host.CompositorSelectionChanged()
	if e.aborted(gen) {
		return
	}
	e.host.EnqueueSelectionChange()
}

// setFocusedNodeIfNeeded moves focus to the nearest focusable ancestor of
// the selection start, or clears it when there is none.
func (e *SelectionEditor) setFocusedNodeIfNeeded() {
	vs := e.pair.In(AuthoredTree)
	if vs.IsNone() {
		return
	}
	for n := vs.start.ContainerIn(AuthoredTree); n != nil; n = n.ShadowIncludingParent() {
		el := n.AsElement()
		if el == nil || !el.IsFocusable() {
			continue
		}
		if e.doc.FocusedElement() != el {
			e.doc.SetFocusedElement(el)
			e.host.FocusChanged(el)
		}
		return
	}
	if e.doc.FocusedElement() != nil {
		e.doc.SetFocusedElement(nil)
		e.host.FocusChanged(nil)
	}
}

// commitRepaired stores a selection computed by a mutation repair. It skips
// validation and canonicalization but notifies like any other commit.
func (e *SelectionEditor) commitRepaired(old, next VisibleSelection) {
	e.generation++
	gen := e.generation
	e.pair.SetAuthored(next)
	e.logicalRange = nil
	e.logger.Debug("selection repaired", zap.Stringer("from", old), zap.Stringer("to", next))

	if e.onCommit != nil {
		e.onCommit(SetSelectionOptions{DoNotSetFocus: true})
	}
	e.pending.MarkDirty()
	e.notifySelectionChanged(old.start, false, gen)
}
