package editing

import (
	"time"

	"github.com/chrisuehlinger/selectionkit/dom"
)

// Host receives the notifications a committed selection change produces.
// Callbacks run synchronously and may mutate the document or the selection;
// the engine rechecks its state after each one.
type Host interface {
	// SelectionWillStart is the cancelable notification sent before a
	// gesture starts a selection at target. Returning false cancels it.
	SelectionWillStart(target *dom.Node) bool
	// SelectionChanged is sent after a commit with the previous start.
	SelectionChanged(oldStart Position, userTriggered bool)
	// AccessibilitySelectionChanged is sent with the new focus node.
	AccessibilitySelectionChanged(node *dom.Node)
	// CompositorSelectionChanged asks for the highlight to be repainted.
	CompositorSelectionChanged()
	// EnqueueSelectionChange queues the asynchronous selectionchange event.
	EnqueueSelectionChange()
	// SelectionOffsetsChanged is the lightweight notification sent when a
	// commit did not change the selection.
	SelectionOffsetsChanged()
	// CloseTyping ends the current typing command.
	CloseTyping()
	// ClearTypingStyle drops the pending typing style.
	ClearTypingStyle()
	// FocusChanged is sent after the focused element moved with the
	// selection. el is nil when focus was cleared.
	FocusChanged(el *dom.Element)
}

// FrameHost is implemented by hosts embedded in a parent frame. When a
// selection covers the whole document the engine asks the host to select
// the owning frame element in the parent.
type FrameHost interface {
	Host
	SelectFrameElementInParent() bool
}

// NopHost is a Host that ignores every notification and allows every
// selection to start.
type NopHost struct{}

func (NopHost) SelectionWillStart(*dom.Node) bool { return true }
func (NopHost) SelectionChanged(Position, bool) {}
func (NopHost) AccessibilitySelectionChanged(*dom.Node) {}
func (NopHost) CompositorSelectionChanged() {}
func (NopHost) EnqueueSelectionChange() {}
func (NopHost) SelectionOffsetsChanged() {}
func (NopHost) CloseTyping() {}
func (NopHost) ClearTypingStyle() {}
func (NopHost) FocusChanged(*dom.Element) {}

// RenderView displays the committed selection highlight.
type RenderView interface {
	SetSelection(start, end Position)
	ClearSelection()
}

// CaretView is implemented by render views that also paint the caret.
type CaretView interface {
	RenderView
	SetCaret(p Position, a Affinity, visible bool)
}

// Scheduler runs fn every interval until the returned cancel func is
// called.
type Scheduler interface {
	Repeat(interval time.Duration, fn func()) (cancel func())
}
