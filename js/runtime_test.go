package js

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source for the timers.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRuntimeBasic(t *testing.T) {
	r := NewRuntime()

	result, err := r.Execute("1 + 2")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ToInteger() != 3 {
		t.Errorf("Expected 3, got %v", result.ToInteger())
	}
}

func TestRuntimeErrors(t *testing.T) {
	r := NewRuntime()
	var reported []error
	r.SetOnError(func(err error) { reported = append(reported, err) })

	if _, err := r.Execute("this is not javascript"); err == nil {
		t.Fatal("Expected a syntax error")
	}
	if _, err := r.Execute("throw new Error('boom')"); err == nil {
		t.Fatal("Expected a thrown error")
	}
	if err := r.ExecuteScript("var ok = 1;", "ok.js"); err != nil {
		t.Fatalf("ExecuteScript failed: %v", err)
	}

	if len(r.Errors()) != 2 {
		t.Errorf("Expected 2 recorded errors, got %d", len(r.Errors()))
	}
	if len(reported) != 2 {
		t.Errorf("Expected 2 reported errors, got %d", len(reported))
	}
	r.ClearErrors()
	if len(r.Errors()) != 0 {
		t.Errorf("Expected no errors after clearing, got %d", len(r.Errors()))
	}
}

func TestRuntimeConsole(t *testing.T) {
	var out bytes.Buffer
	r := NewRuntime(WithConsole(&out))

	if _, err := r.Execute(`
		console.log("a", 1, null, undefined);
		console.warn("careful");
		console.assert(true, "hidden");
		console.assert(false, "shown");
	`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := "a 1 null undefined\n[WARN] careful\n[ASSERT] shown\n"
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
}

func TestRuntimeGetSelectionBeforeAttach(t *testing.T) {
	r := NewRuntime()
	result, err := r.Execute("getSelection() === null")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.ToBoolean() {
		t.Error("Expected no selection before Attach")
	}
}

func TestTimers(t *testing.T) {
	clock := newFakeClock()
	r := NewRuntime(WithClock(clock.now))

	if _, err := r.Execute(`
		var log = [];
		setTimeout(function() { log.push("late"); }, 50);
		setTimeout(function(x) { log.push("early " + x); }, 10, "arg");
		var cleared = setTimeout(function() { log.push("cleared"); }, 10);
		clearTimeout(cleared);
	`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	check := func(want string) {
		t.Helper()
		v, err := r.Execute("log.join(',')")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if v.String() != want {
			t.Errorf("Expected %q, got %q", want, v.String())
		}
	}

	r.Drain()
	check("")

	clock.advance(10 * time.Millisecond)
	r.Drain()
	check("early arg")

	clock.advance(40 * time.Millisecond)
	r.Drain()
	check("early arg,late")

	if r.HasPendingWork() {
		t.Error("Expected no pending work after both timeouts fired")
	}
}

func TestTimersInterval(t *testing.T) {
	clock := newFakeClock()
	r := NewRuntime(WithClock(clock.now))

	if _, err := r.Execute(`
		var ticks = 0;
		var id = setInterval(function() {
			ticks++;
			if (ticks === 3) clearInterval(id);
		}, 0);
	`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		clock.advance(4 * time.Millisecond)
		r.Drain()
	}

	v, _ := r.Execute("ticks")
	if v.ToInteger() != 3 {
		t.Errorf("Expected 3 ticks, got %d", v.ToInteger())
	}
	if r.HasPendingWork() {
		t.Error("Expected the interval to be cleared")
	}
}

func TestMicrotasksRunBeforeTimers(t *testing.T) {
	clock := newFakeClock()
	r := NewRuntime(WithClock(clock.now))

	if _, err := r.Execute(`
		var order = [];
		setTimeout(function() { order.push("timeout"); }, 0);
		queueMicrotask(function() {
			order.push("micro1");
			queueMicrotask(function() { order.push("micro2"); });
		});
	`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	r.Drain()

	v, _ := r.Execute("order.join(',')")
	if got := v.String(); got != "micro1,micro2,timeout" {
		t.Errorf("Expected microtasks before the timeout, got %q", got)
	}
}

func TestCallbackErrorsAreRecorded(t *testing.T) {
	clock := newFakeClock()
	r := NewRuntime(WithClock(clock.now))

	if _, err := r.Execute(`
		setTimeout(function() { throw new Error("in timer"); }, 0);
		setTimeout(function() { globalThis.after = true; }, 0);
	`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	r.Drain()

	errs := r.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "in timer") {
		t.Errorf("Expected the timer error to be recorded, got %v", errs)
	}
	v, _ := r.Execute("after")
	if !v.ToBoolean() {
		t.Error("Expected later timers to run after a failing one")
	}
}

func TestScheduler(t *testing.T) {
	clock := newFakeClock()
	r := NewRuntime(WithClock(clock.now))

	ticks := 0
	cancel := r.Scheduler().Repeat(500*time.Millisecond, func() { ticks++ })

	clock.advance(499 * time.Millisecond)
	r.Drain()
	if ticks != 0 {
		t.Errorf("Expected no tick before the interval, got %d", ticks)
	}
	clock.advance(time.Millisecond)
	r.Drain()
	clock.advance(500 * time.Millisecond)
	r.Drain()
	if ticks != 2 {
		t.Errorf("Expected 2 ticks, got %d", ticks)
	}

	cancel()
	clock.advance(time.Second)
	r.Drain()
	if ticks != 2 || r.HasPendingWork() {
		t.Errorf("Expected the canceled repeat to stop, got %d ticks", ticks)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	r := NewRuntime()
	if _, err := r.Execute("setTimeout(function() {}, 60000)"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != context.DeadlineExceeded {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

func TestRunReturnsWhenIdle(t *testing.T) {
	r := NewRuntime()
	if _, err := r.Execute("var done = false; setTimeout(function() { done = true; }, 1)"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	v, _ := r.Execute("done")
	if !v.ToBoolean() {
		t.Error("Expected the timeout to have run")
	}
}
