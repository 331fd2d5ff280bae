package js

import (
	"sync"
)

// task is a queued callback in the event loop.
type task struct {
	fn func()
}

// eventLoop holds the microtask and macrotask queues of a Runtime.
type eventLoop struct {
	microtasks []task
	macrotasks []task
	mu         sync.Mutex
}

func newEventLoop() *eventLoop {
	return &eventLoop{
		microtasks: make([]task, 0),
		macrotasks: make([]task, 0),
	}
}

// queueMicrotask adds a microtask. Microtasks run before the next
// macrotask.
func (el *eventLoop) queueMicrotask(fn func()) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.microtasks = append(el.microtasks, task{fn: fn})
}

// queueMacrotask adds a macrotask.
func (el *eventLoop) queueMacrotask(fn func()) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.macrotasks = append(el.macrotasks, task{fn: fn})
}

// drainMicrotasks runs microtasks until the queue is empty, including the
// ones queued while draining.
func (el *eventLoop) drainMicrotasks() {
	for {
		el.mu.Lock()
		if len(el.microtasks) == 0 {
			el.mu.Unlock()
			return
		}
		t := el.microtasks[0]
		el.microtasks = el.microtasks[1:]
		el.mu.Unlock()

		t.fn()
	}
}

// runOnce drains the microtasks, fires the due timers and then runs one
// macrotask. It returns true if work remains.
func (el *eventLoop) runOnce(r *Runtime) bool {
	el.drainMicrotasks()
	r.timers.process()
	el.drainMicrotasks()

	el.mu.Lock()
	if len(el.macrotasks) > 0 {
		t := el.macrotasks[0]
		el.macrotasks = el.macrotasks[1:]
		el.mu.Unlock()

		t.fn()
		el.drainMicrotasks()
		return true
	}
	el.mu.Unlock()

	return el.hasPending() || r.timers.hasPending()
}

// hasPending returns true if any task is queued.
func (el *eventLoop) hasPending() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return len(el.microtasks) > 0 || len(el.macrotasks) > 0
}

// clear drops every queued task.
func (el *eventLoop) clear() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.microtasks = el.microtasks[:0]
	el.macrotasks = el.macrotasks[:0]
}
