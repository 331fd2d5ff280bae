package editing

import "time"

// CaretBlink toggles caret visibility on a repeating timer. The caret is
// shown solid while suspended, for example during a drag.
type CaretBlink struct {
	scheduler Scheduler
	interval  time.Duration
	onToggle  func()

	running   bool
	visible   bool
	suspended bool
	cancel    func()
}

// NewCaretBlink returns a stopped blink timer. A zero interval or nil
// scheduler keeps the caret solid.
func NewCaretBlink(scheduler Scheduler, interval time.Duration) *CaretBlink {
	return &CaretBlink{scheduler: scheduler, interval: interval}
}

// OnToggle registers fn to run whenever visibility changes on a tick.
func (c *CaretBlink) OnToggle(fn func()) {
	c.onToggle = fn
}

// Start shows the caret and starts blinking. It is a no-op when running.
func (c *CaretBlink) Start() {
	if c.running {
		return
	}
	c.running = true
	c.visible = true
	c.schedule()
}

// Stop hides the caret and cancels the timer.
func (c *CaretBlink) Stop() {
	c.cancelTimer()
	c.running = false
	c.visible = false
}

// IsActive reports whether a caret is being shown.
func (c *CaretBlink) IsActive() bool {
	return c.running
}

// IsVisible reports whether the caret is currently painted.
func (c *CaretBlink) IsVisible() bool {
	return c.running && (c.visible || c.suspended)
}

// Suspend keeps the caret solid while suspended is true.
func (c *CaretBlink) Suspend(suspended bool) {
	c.suspended = suspended
	if !suspended {
		c.visible = true
	}
}

// Tick toggles visibility. It is the timer callback.
func (c *CaretBlink) Tick() {
	if !c.running || c.suspended {
		return
	}
	c.visible = !c.visible
	if c.onToggle != nil {
		c.onToggle()
	}
}

// CaretRectChanged restarts the blink cycle from the visible phase so a
// moved caret is shown immediately.
func (c *CaretBlink) CaretRectChanged() {
	if !c.running {
		return
	}
	c.cancelTimer()
	c.visible = true
	c.schedule()
}

func (c *CaretBlink) schedule() {
	if c.scheduler == nil || c.interval <= 0 {
		return
	}
	c.cancel = c.scheduler.Repeat(c.interval, c.Tick)
}

func (c *CaretBlink) cancelTimer() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
