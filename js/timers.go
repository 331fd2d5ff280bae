package js

import (
	"sort"
	"sync"
	"time"
)

// timer is a scheduled setTimeout, setInterval or caret blink callback.
type timer struct {
	id       int
	fn       func()
	dueTime  time.Time
	interval time.Duration // 0 for a one-shot timer
	cleared  bool
}

// timerManager owns the timers of a Runtime.
type timerManager struct {
	timers map[int]*timer
	nextID int
	now    func() time.Time
	mu     sync.Mutex
}

func newTimerManager(now func() time.Time) *timerManager {
	if now == nil {
		now = time.Now
	}
	return &timerManager{
		timers: make(map[int]*timer),
		nextID: 1,
		now:    now,
	}
}

func (tm *timerManager) add(fn func(), delay, interval time.Duration) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	id := tm.nextID
	tm.nextID++
	tm.timers[id] = &timer{
		id:       id,
		fn:       fn,
		dueTime:  tm.now().Add(delay),
		interval: interval,
	}
	return id
}

// setTimeout schedules a one-time callback.
func (tm *timerManager) setTimeout(fn func(), delay time.Duration) int {
	return tm.add(fn, delay, 0)
}

// setInterval schedules a recurring callback.
func (tm *timerManager) setInterval(fn func(), interval time.Duration) int {
	return tm.add(fn, interval, interval)
}

// clearTimer clears a timer by ID.
func (tm *timerManager) clearTimer(id int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if t, ok := tm.timers[id]; ok {
		t.cleared = true
		delete(tm.timers, id)
	}
}

// process runs every timer that is due, earliest first.
func (tm *timerManager) process() {
	tm.mu.Lock()
	now := tm.now()
	var due []*timer
	for _, t := range tm.timers {
		if !t.cleared && !now.Before(t.dueTime) {
			due = append(due, t)
		}
	}
	tm.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if !due[i].dueTime.Equal(due[j].dueTime) {
			return due[i].dueTime.Before(due[j].dueTime)
		}
		return due[i].id < due[j].id
	})

	// Callbacks run outside the lock; they may add or clear timers.
	for _, t := range due {
		tm.mu.Lock()
		cleared := t.cleared
		tm.mu.Unlock()
		if cleared {
			continue
		}

		t.fn()

		tm.mu.Lock()
		if t.interval > 0 && !t.cleared {
			t.dueTime = tm.now().Add(t.interval)
		} else {
			delete(tm.timers, t.id)
		}
		tm.mu.Unlock()
	}
}

// hasPending returns true if there are any pending timers.
func (tm *timerManager) hasPending() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.timers) > 0
}

// hasDue returns true if a timer is due now.
func (tm *timerManager) hasDue() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	now := tm.now()
	for _, t := range tm.timers {
		if !t.cleared && !now.Before(t.dueTime) {
			return true
		}
	}
	return false
}

// nextDueTime returns the time until the next timer is due. It is 0 when no
// timer is pending or one is already due.
func (tm *timerManager) nextDueTime() time.Duration {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	now := tm.now()
	var minDuration time.Duration = -1
	for _, t := range tm.timers {
		if t.cleared {
			continue
		}
		d := t.dueTime.Sub(now)
		if d <= 0 {
			return 0
		}
		if minDuration < 0 || d < minDuration {
			minDuration = d
		}
	}
	if minDuration < 0 {
		return 0
	}
	return minDuration
}

// scheduler exposes the timers to the caret blink.
type scheduler struct {
	tm *timerManager
}

func (s scheduler) Repeat(interval time.Duration, fn func()) func() {
	id := s.tm.setInterval(fn, interval)
	return func() { s.tm.clearTimer(id) }
}
