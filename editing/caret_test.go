package editing_test

import (
	"testing"
	"time"

	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/chrisuehlinger/selectionkit/layout"
)

func TestCaretBlink(t *testing.T) {
	sch := &fakeScheduler{}
	c := editing.NewCaretBlink(sch, 500*time.Millisecond)
	toggles := 0
	c.OnToggle(func() { toggles++ })

	if c.IsVisible() || c.IsActive() {
		t.Fatal("Expected a new caret to be stopped")
	}
	c.Start()
	if !c.IsVisible() || sch.active() != 1 {
		t.Fatalf("Expected a visible caret with one timer, got visible=%v timers=%d", c.IsVisible(), sch.active())
	}
	if sch.timers[0].interval != 500*time.Millisecond {
		t.Errorf("Expected a 500ms interval, got %v", sch.timers[0].interval)
	}

	sch.fire()
	if c.IsVisible() || toggles != 1 {
		t.Errorf("Expected the first tick to hide the caret, got visible=%v toggles=%d", c.IsVisible(), toggles)
	}
	sch.fire()
	if !c.IsVisible() || toggles != 2 {
		t.Errorf("Expected the second tick to show the caret, got visible=%v toggles=%d", c.IsVisible(), toggles)
	}

	sch.fire()
	c.CaretRectChanged()
	if !c.IsVisible() {
		t.Error("Expected a moved caret to be shown immediately")
	}
	if sch.active() != 1 || len(sch.timers) != 2 {
		t.Errorf("Expected the timer to be restarted, got %d active of %d", sch.active(), len(sch.timers))
	}

	c.Stop()
	if c.IsVisible() || sch.active() != 0 {
		t.Error("Expected Stop to hide the caret and cancel the timer")
	}
}

func TestCaretBlink_Suspend(t *testing.T) {
	sch := &fakeScheduler{}
	c := editing.NewCaretBlink(sch, time.Second)
	c.Start()

	c.Suspend(true)
	sch.fire()
	if !c.IsVisible() {
		t.Error("Expected a suspended caret to stay visible")
	}
	c.Suspend(false)
	if !c.IsVisible() {
		t.Error("Expected the caret to be visible when resumed")
	}
	sch.fire()
	if c.IsVisible() {
		t.Error("Expected blinking to resume")
	}
}

func TestCaretBlink_NoTimer(t *testing.T) {
	tests := []struct {
		name      string
		scheduler editing.Scheduler
		interval  time.Duration
	}{
		{"nil scheduler", nil, time.Second},
		{"zero interval", &fakeScheduler{}, 0},
	}
	for _, tt := range tests {
		c := editing.NewCaretBlink(tt.scheduler, tt.interval)
		c.Start()
		if !c.IsVisible() {
			t.Errorf("%s: expected a solid caret", tt.name)
		}
		if sch, ok := tt.scheduler.(*fakeScheduler); ok && sch.active() != 0 {
			t.Errorf("%s: expected no timer, got %d", tt.name, sch.active())
		}
	}
}

func TestState_CaretFollowsEditability(t *testing.T) {
	sch := &fakeScheduler{}
	f := newFixture(t, `<div id="e" contenteditable>ab</div><div id="p">cd</div>`, layout.Options{}, editing.WithScheduler(sch))
	e, p := f.text(t, "e"), f.text(t, "p")

	f.caret(pos(e, 1))
	if !f.state.CaretVisible() {
		t.Error("Expected a caret in editable content to be visible")
	}
	f.caret(pos(p, 1))
	if f.state.CaretVisible() || sch.active() != 0 {
		t.Error("Expected no caret in static content")
	}
	f.caret(pos(e, 2))
	if !f.state.CaretVisible() || sch.active() != 1 {
		t.Errorf("Expected the blink to restart, got %d timers", sch.active())
	}

	f.state.Pending().Commit(layout.NewView(f.layout))
	sch.fire()
	if !f.state.Pending().IsDirty() {
		t.Error("Expected a blink tick to schedule a repaint")
	}
}

func TestState_DidFocusAndBlur(t *testing.T) {
	f := newFixture(t, `<div id="a">xy</div><div id="e" contenteditable><b id="b">ab</b></div>`, layout.Options{})
	a, b := f.text(t, "a"), f.text(t, "b")
	editable := f.doc.GetElementByID("e")

	f.state.DidFocus(f.doc.GetElementByID("a"))
	if !f.state.IsNone() {
		t.Error("Expected focusing static content to leave the selection alone")
	}

	f.state.DidFocus(editable)
	if got := f.state.Start(); got != pos(b, 0) {
		t.Errorf("Expected a caret at the start of the editable root, got %v", got)
	}
	if f.host.count("focus div") != 0 {
		t.Error("Expected DidFocus not to move focus again")
	}

	f.caret(pos(b, 1))
	f.state.DidFocus(editable)
	if got := f.state.Start(); got != pos(b, 1) {
		t.Errorf("Expected a selection already inside the root to be kept, got %v", got)
	}

	f.state.DidBlur()
	if f.state.IsNone() {
		t.Error("Expected blur to keep a selection in editable content")
	}
	f.selectRange(pos(a, 0), pos(a, 2))
	f.state.DidBlur()
	if !f.state.IsNone() {
		t.Errorf("Expected blur to clear a static selection, got %v", f.state.ComputeVisibleSelectionInDOMTree())
	}
}
