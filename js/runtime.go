// Package js exposes a document's selection to scripts. It uses the goja
// JavaScript engine (pure Go ES5.1+ implementation) with a small event loop
// whose timers also drive the caret blink.
package js

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock sets the time source of the timers.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) { r.now = now }
}

// WithConsole sets where console output goes. The default is stdout.
func WithConsole(w io.Writer) Option {
	return func(r *Runtime) { r.console = w }
}

// Runtime wraps a goja runtime bound to one document's selection. It is
// the editing.Host of that selection.
type Runtime struct {
	vm        *goja.Runtime
	logger    *zap.Logger
	now       func() time.Time
	console   io.Writer
	timers    *timerManager
	eventLoop *eventLoop
	binder    *DOMBinder
	events    *EventBinder

	state    *editing.SelectionState
	document *goja.Object
	// selectionChangeQueued coalesces selectionchange events until the
	// queued one has been dispatched.
	selectionChangeQueued bool

	mu      sync.Mutex
	errMu   sync.Mutex
	errors  []error
	onError func(error)
}

// NewRuntime creates a runtime with console, timers and event
// constructors installed. Call Attach to bind a selection.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		vm:        goja.New(),
		logger:    zap.NewNop(),
		console:   os.Stdout,
		eventLoop: newEventLoop(),
		errors:    make([]error, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.timers = newTimerManager(r.now)
	r.binder = NewDOMBinder(r)
	r.events = NewEventBinder(r)

	r.setupConsole()
	r.setupTimers()
	r.setupWindow()
	r.events.SetupEventConstructors()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Scheduler returns the timer source to pass to editing.WithScheduler.
func (r *Runtime) Scheduler() editing.Scheduler {
	return scheduler{tm: r.timers}
}

// Attach binds state and its document to the script globals document and
// getSelection. state must have been created with this runtime as its
// host.
func (r *Runtime) Attach(state *editing.SelectionState) {
	r.state = state
	r.document = r.binder.BindDocument(state.Document())
	r.vm.Set("document", r.document)

	getSelection := func(goja.FunctionCall) goja.Value {
		return r.binder.BindSelection(state)
	}
	r.vm.Set("getSelection", getSelection)
	r.document.Set("getSelection", getSelection)
	r.logger.Debug("runtime attached to document")
}

// Detach drops the bound document and any queued work. Scripts that still
// hold node objects keep them but see no further events.
func (r *Runtime) Detach() {
	r.eventLoop.clear()
	r.events.ClearTargets()
	r.binder.reset()
	r.state = nil
	r.document = nil
	r.selectionChangeQueued = false
	r.vm.Set("document", goja.Null())
	r.vm.Set("getSelection", func(goja.FunctionCall) goja.Value { return goja.Null() })
}

func (r *Runtime) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// SetOnError sets a callback for script errors.
func (r *Runtime) SetOnError(handler func(error)) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.onError = handler
}

func (r *Runtime) recordError(err error) {
	r.errMu.Lock()
	r.errors = append(r.errors, err)
	handler := r.onError
	r.errMu.Unlock()

	r.logger.Debug("script error", zap.Error(err))
	if handler != nil {
		handler(err)
	}
}

// Execute runs code and returns its completion value.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.recordError(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.recordError(err)
	}
	return result, err
}

// ExecuteScript compiles code under the name src and runs it.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.recordError(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.recordError(err)
		return err
	}
	if _, err = r.vm.RunProgram(program); err != nil {
		r.recordError(err)
	}
	return err
}

// call invokes a script callback, recording its error instead of
// returning it.
func (r *Runtime) call(what string, fn goja.Callable, this goja.Value, args ...goja.Value) {
	defer func() {
		if p := recover(); p != nil {
			r.recordError(fmt.Errorf("%s: panic: %v", what, p))
		}
	}()
	if _, err := fn(this, args...); err != nil {
		r.recordError(fmt.Errorf("%s: %w", what, err))
	}
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.errors = r.errors[:0]
}

// RunEventLoop runs one turn of the event loop. It returns true if more
// work is pending.
func (r *Runtime) RunEventLoop() bool {
	return r.eventLoop.runOnce(r)
}

// Drain runs queued tasks and due timers until nothing is runnable without
// waiting.
func (r *Runtime) Drain() {
	for {
		r.eventLoop.runOnce(r)
		if !r.eventLoop.hasPending() && !r.timers.hasDue() {
			return
		}
	}
}

// Run runs the event loop until no work is pending or ctx is done.
func (r *Runtime) Run(ctx context.Context) error {
	for r.HasPendingWork() {
		r.Drain()
		if !r.HasPendingWork() {
			return nil
		}
		wait := time.NewTimer(r.timers.nextDueTime())
		select {
		case <-ctx.Done():
			wait.Stop()
			return ctx.Err()
		case <-wait.C:
		}
	}
	return nil
}

// HasPendingWork returns true if there are timers or callbacks waiting.
func (r *Runtime) HasPendingWork() bool {
	return r.timers.hasPending() || r.eventLoop.hasPending()
}

func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()
	for _, level := range []struct{ name, prefix string }{
		{"log", ""},
		{"info", "[INFO] "},
		{"warn", "[WARN] "},
		{"error", "[ERROR] "},
		{"debug", "[DEBUG] "},
	} {
		prefix := level.prefix
		console.Set(level.name, func(call goja.FunctionCall) goja.Value {
			fmt.Fprintln(r.console, prefix+formatArgs(call.Arguments))
			return goja.Undefined()
		})
	}

	console.Set("assert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || !call.Arguments[0].ToBoolean() {
			args := "Assertion failed"
			if len(call.Arguments) > 1 {
				args = formatArgs(call.Arguments[1:])
			}
			fmt.Fprintln(r.console, "[ASSERT]", args)
		}
		return goja.Undefined()
	})
	r.vm.Set("console", console)
}

// setupTimers creates setTimeout, setInterval, clearTimeout and
// clearInterval.
func (r *Runtime) setupTimers() {
	schedule := func(name string, repeat bool) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 1 {
				return goja.Undefined()
			}
			callback, ok := goja.AssertFunction(call.Arguments[0])
			if !ok {
				return goja.Undefined()
			}
			delay := int64(0)
			if len(call.Arguments) > 1 {
				delay = call.Arguments[1].ToInteger()
			}
			if delay < 0 {
				delay = 0
			}
			var args []goja.Value
			if len(call.Arguments) > 2 {
				args = call.Arguments[2:]
			}
			fn := func() { r.call(name, callback, goja.Undefined(), args...) }

			var id int
			if repeat {
				// Minimum interval of 4ms.
				id = r.timers.setInterval(fn, time.Duration(max(delay, 4))*time.Millisecond)
			} else {
				id = r.timers.setTimeout(fn, time.Duration(delay)*time.Millisecond)
			}
			return r.vm.ToValue(id)
		}
	}
	clearTimer := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		r.timers.clearTimer(int(call.Arguments[0].ToInteger()))
		return goja.Undefined()
	}

	r.vm.Set("setTimeout", schedule("setTimeout", false))
	r.vm.Set("setInterval", schedule("setInterval", true))
	r.vm.Set("clearTimeout", clearTimer)
	r.vm.Set("clearInterval", clearTimer)
}

// setupWindow makes the global object the window.
func (r *Runtime) setupWindow() {
	window := r.vm.GlobalObject()
	r.vm.Set("window", window)
	r.vm.Set("self", window)
	r.vm.Set("globalThis", window)

	r.vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		callback, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		r.eventLoop.queueMicrotask(func() { r.call("queueMicrotask", callback, goja.Undefined()) })
		return goja.Undefined()
	})

	// Until Attach, there is no selection.
	r.vm.Set("getSelection", func(goja.FunctionCall) goja.Value {
		return goja.Null()
	})
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	result := ""
	for i, arg := range args {
		if i > 0 {
			result += " "
		}
		result += formatValue(arg)
	}
	return result
}

func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
