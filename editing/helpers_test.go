package editing_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/chrisuehlinger/selectionkit/layout"
)

// recordingHost logs every notification and lets a test hook into them.
type recordingHost struct {
	events        []string
	cancelStart   bool
	startTargets  []*dom.Node
	onChanged     func()
	onCloseTyping func()
}

func (h *recordingHost) SelectionWillStart(target *dom.Node) bool {
	h.startTargets = append(h.startTargets, target)
	h.events = append(h.events, "willstart")
	return !h.cancelStart
}

func (h *recordingHost) SelectionChanged(oldStart editing.Position, userTriggered bool) {
	h.events = append(h.events, fmt.Sprintf("changed user=%v", userTriggered))
	if h.onChanged != nil {
		h.onChanged()
	}
}

func (h *recordingHost) AccessibilitySelectionChanged(*dom.Node) {
	h.events = append(h.events, "a11y")
}

func (h *recordingHost) CompositorSelectionChanged() {
	h.events = append(h.events, "compositor")
}

func (h *recordingHost) EnqueueSelectionChange() {
	h.events = append(h.events, "selectionchange")
}

func (h *recordingHost) SelectionOffsetsChanged() {
	h.events = append(h.events, "offsets")
}

func (h *recordingHost) CloseTyping() {
	h.events = append(h.events, "closetyping")
	if h.onCloseTyping != nil {
		h.onCloseTyping()
	}
}

func (h *recordingHost) ClearTypingStyle() {
	h.events = append(h.events, "cleartypingstyle")
}

func (h *recordingHost) FocusChanged(el *dom.Element) {
	if el == nil {
		h.events = append(h.events, "focus none")
		return
	}
	h.events = append(h.events, "focus "+el.LocalName())
}

func (h *recordingHost) count(event string) int {
	n := 0
	for _, e := range h.events {
		if e == event {
			n++
		}
	}
	return n
}

func (h *recordingHost) reset() {
	h.events = nil
	h.startTargets = nil
}

// fakeScheduler collects repeating timers and fires them on demand.
type fakeScheduler struct {
	timers []*fakeTimer
}

type fakeTimer struct {
	interval time.Duration
	fn       func()
	canceled bool
}

func (s *fakeScheduler) Repeat(interval time.Duration, fn func()) func() {
	t := &fakeTimer{interval: interval, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.canceled = true }
}

func (s *fakeScheduler) fire() {
	for _, t := range s.timers {
		if !t.canceled {
			t.fn()
		}
	}
}

func (s *fakeScheduler) active() int {
	n := 0
	for _, t := range s.timers {
		if !t.canceled {
			n++
		}
	}
	return n
}

type fixture struct {
	doc    *dom.Document
	layout *layout.Layout
	state  *editing.SelectionState
	host   *recordingHost
}

func newFixture(t *testing.T, src string, lo layout.Options, opts ...editing.Option) *fixture {
	t.Helper()
	doc, err := dom.ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	l := layout.New(doc, lo)
	host := &recordingHost{}
	return &fixture{
		doc:    doc,
		layout: l,
		state:  editing.NewSelectionState(doc, l, host, opts...),
		host:   host,
	}
}

func (f *fixture) text(t *testing.T, id string) *dom.Node {
	t.Helper()
	el := f.doc.GetElementByID(id)
	if el == nil {
		t.Fatalf("#%s not found", id)
	}
	for c := el.AsNode().FirstChild(); c != nil; c = c.NextSibling() {
		if c.IsText() {
			return c
		}
	}
	t.Fatalf("#%s has no text child", id)
	return nil
}

func (f *fixture) node(t *testing.T, id string) *dom.Node {
	t.Helper()
	el := f.doc.GetElementByID(id)
	if el == nil {
		t.Fatalf("#%s not found", id)
	}
	return el.AsNode()
}

func (f *fixture) caret(p editing.Position) {
	f.state.SetSelection(editing.NewSelectionBuilder(editing.AuthoredTree).Collapse(p).Build(), editing.SetSelectionOptions{})
}

func (f *fixture) selectRange(base, extent editing.Position) {
	f.state.SetSelection(editing.NewSelectionBuilder(editing.AuthoredTree).SetBaseAndExtent(base, extent).Build(), editing.SetSelectionOptions{})
}

func pos(n *dom.Node, offset int) editing.Position {
	return editing.NewPosition(n, offset)
}

// span describes a selection for comparison.
type span struct {
	Base, Extent editing.Position
	Type         editing.SelectionType
}

func spanOf(vs editing.VisibleSelection) span {
	return span{Base: vs.Base(), Extent: vs.Extent(), Type: vs.Type()}
}

// narrow lays out five columns per line.
var narrow = layout.Options{Width: 40, LineHeight: 16, CharWidth: 8}

const shadowFixture = `<div id="host"><template shadowrootmode="open"><p id="inner">in</p><slot></slot></template><span id="light">light</span><b slot="missing">x</b></div>`

func mustParse(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	return doc
}
