package js

import (
	"sync"

	"github.com/dop251/goja"
)

// EventPhase represents the phase of event dispatch.
type EventPhase int

const (
	EventPhaseNone      EventPhase = 0
	EventPhaseCapturing EventPhase = 1
	EventPhaseAtTarget  EventPhase = 2
	EventPhaseBubbling  EventPhase = 3
)

// eventListener represents a registered event listener.
type eventListener struct {
	id       int
	callback goja.Callable
	value    goja.Value // compared with SameAs on removal
	options  listenerOptions
}

// listenerOptions represents addEventListener options.
type listenerOptions struct {
	capture bool
	once    bool
	passive bool
}

// EventTarget manages event listeners for a target.
type EventTarget struct {
	listeners map[string][]eventListener
	nextID    int
	mu        sync.RWMutex
}

// NewEventTarget creates a new EventTarget.
func NewEventTarget() *EventTarget {
	return &EventTarget{
		listeners: make(map[string][]eventListener),
	}
}

// AddEventListener registers an event listener. Registering the same
// callback twice for one phase is a no-op.
func (et *EventTarget) AddEventListener(eventType string, callback goja.Callable, value goja.Value, opts listenerOptions) {
	et.mu.Lock()
	defer et.mu.Unlock()

	for _, l := range et.listeners[eventType] {
		if l.value.SameAs(value) && l.options.capture == opts.capture {
			return
		}
	}

	et.nextID++
	et.listeners[eventType] = append(et.listeners[eventType], eventListener{
		id:       et.nextID,
		callback: callback,
		value:    value,
		options:  opts,
	})
}

// RemoveEventListener unregisters an event listener.
func (et *EventTarget) RemoveEventListener(eventType string, value goja.Value, capture bool) {
	et.mu.Lock()
	defer et.mu.Unlock()

	listeners := et.listeners[eventType]
	for i, l := range listeners {
		if l.value.SameAs(value) && l.options.capture == capture {
			et.listeners[eventType] = append(listeners[:i:i], listeners[i+1:]...)
			return
		}
	}
}

// HasEventListeners returns true if there are any listeners for the event type.
func (et *EventTarget) HasEventListeners(eventType string) bool {
	et.mu.RLock()
	defer et.mu.RUnlock()
	return len(et.listeners[eventType]) > 0
}

// invoke runs the listeners of one target for phase. It returns false if a
// listener stopped immediate propagation.
func (et *EventTarget) invoke(r *Runtime, this, event *goja.Object, phase EventPhase) bool {
	et.mu.RLock()
	eventType := event.Get("type").String()
	listeners := append([]eventListener(nil), et.listeners[eventType]...)
	et.mu.RUnlock()

	for _, l := range listeners {
		if phase == EventPhaseCapturing && !l.options.capture {
			continue
		}
		if phase == EventPhaseBubbling && l.options.capture {
			continue
		}
		if l.options.once {
			et.removeID(eventType, l.id)
		}

		r.call(eventType+" listener", l.callback, this, event)

		if flag(event, "_stopImmediate") {
			return false
		}
	}
	return true
}

func (et *EventTarget) removeID(eventType string, id int) {
	et.mu.Lock()
	defer et.mu.Unlock()
	listeners := et.listeners[eventType]
	for i, l := range listeners {
		if l.id == id {
			et.listeners[eventType] = append(listeners[:i:i], listeners[i+1:]...)
			return
		}
	}
}

func flag(obj *goja.Object, name string) bool {
	v := obj.Get(name)
	return v != nil && v.ToBoolean()
}

// EventBinder adds event handling to JS objects.
type EventBinder struct {
	runtime   *Runtime
	targetMap map[*goja.Object]*EventTarget
	mu        sync.RWMutex
}

// NewEventBinder creates a new event binder.
func NewEventBinder(runtime *Runtime) *EventBinder {
	return &EventBinder{
		runtime:   runtime,
		targetMap: make(map[*goja.Object]*EventTarget),
	}
}

// GetOrCreateTarget gets or creates an EventTarget for a JS object.
func (eb *EventBinder) GetOrCreateTarget(obj *goja.Object) *EventTarget {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if target, ok := eb.targetMap[obj]; ok {
		return target
	}
	target := NewEventTarget()
	eb.targetMap[obj] = target
	return target
}

func (eb *EventBinder) lookupTarget(obj *goja.Object) *EventTarget {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.targetMap[obj]
}

// parseListenerOptions reads the third argument of addEventListener, which
// is either a capture boolean or an options object.
func (eb *EventBinder) parseListenerOptions(args []goja.Value) listenerOptions {
	var opts listenerOptions
	if len(args) < 3 || goja.IsUndefined(args[2]) || goja.IsNull(args[2]) {
		return opts
	}
	arg := args[2]
	opt, ok := arg.(*goja.Object)
	if !ok {
		opts.capture = arg.ToBoolean()
		return opts
	}
	opts.capture = flag(opt, "capture")
	opts.once = flag(opt, "once")
	opts.passive = flag(opt, "passive")
	return opts
}

// BindEventTarget adds EventTarget interface methods to a JS object.
func (eb *EventBinder) BindEventTarget(obj *goja.Object) {
	vm := eb.runtime.vm

	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		callback, ok := goja.AssertFunction(call.Arguments[1])
		if !ok {
			return goja.Undefined()
		}
		eb.GetOrCreateTarget(obj).AddEventListener(call.Arguments[0].String(), callback, call.Arguments[1], eb.parseListenerOptions(call.Arguments))
		return goja.Undefined()
	})

	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		if target := eb.lookupTarget(obj); target != nil {
			target.RemoveEventListener(call.Arguments[0].String(), call.Arguments[1], eb.parseListenerOptions(call.Arguments).capture)
		}
		return goja.Undefined()
	})

	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.ToValue(true)
		}
		event, ok := call.Arguments[0].(*goja.Object)
		if !ok {
			return vm.ToValue(true)
		}
		return vm.ToValue(eb.DispatchAlongPath(event, []*goja.Object{obj}))
	})
}

// DispatchAlongPath dispatches event at path[0], capturing from the last
// entry inward and bubbling back out when the event bubbles. It returns
// false if a listener canceled the event.
func (eb *EventBinder) DispatchAlongPath(event *goja.Object, path []*goja.Object) bool {
	if len(path) == 0 {
		return true
	}
	r := eb.runtime
	event.Set("target", path[0])
	event.Set("_stopPropagation", false)
	event.Set("_stopImmediate", false)
	event.Set("composedPath", func(goja.FunctionCall) goja.Value {
		out := make([]interface{}, len(path))
		for i, obj := range path {
			out[i] = obj
		}
		return r.vm.ToValue(out)
	})

	visit := func(obj *goja.Object, phase EventPhase) bool {
		event.Set("currentTarget", obj)
		event.Set("eventPhase", int(phase))
		if target := eb.lookupTarget(obj); target != nil {
			target.invoke(r, obj, event, phase)
		}
		return !flag(event, "_stopPropagation")
	}

	func() {
		for i := len(path) - 1; i > 0; i-- {
			if !visit(path[i], EventPhaseCapturing) {
				return
			}
		}
		if !visit(path[0], EventPhaseAtTarget) {
			return
		}
		if !flag(event, "bubbles") {
			return
		}
		for _, obj := range path[1:] {
			if !visit(obj, EventPhaseBubbling) {
				return
			}
		}
	}()

	event.Set("currentTarget", goja.Null())
	event.Set("eventPhase", int(EventPhaseNone))
	return !flag(event, "defaultPrevented")
}

// CreateEvent creates a new Event object.
func (eb *EventBinder) CreateEvent(eventType string, options map[string]interface{}) *goja.Object {
	vm := eb.runtime.vm
	event := vm.NewObject()

	event.Set("type", eventType)
	event.Set("target", goja.Null())
	event.Set("currentTarget", goja.Null())
	event.Set("eventPhase", int(EventPhaseNone))
	event.Set("bubbles", false)
	event.Set("cancelable", false)
	event.Set("composed", false)
	event.Set("defaultPrevented", false)
	event.Set("isTrusted", false)
	event.Set("timeStamp", float64(eb.runtime.clock().UnixMilli()))
	event.Set("_stopPropagation", false)
	event.Set("_stopImmediate", false)

	for _, key := range []string{"bubbles", "cancelable", "composed", "detail"} {
		if v, ok := options[key]; ok {
			event.Set(key, v)
		}
	}

	event.Set("preventDefault", func(goja.FunctionCall) goja.Value {
		if flag(event, "cancelable") {
			event.Set("defaultPrevented", true)
		}
		return goja.Undefined()
	})
	event.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		event.Set("_stopPropagation", true)
		return goja.Undefined()
	})
	event.Set("stopImmediatePropagation", func(goja.FunctionCall) goja.Value {
		event.Set("_stopPropagation", true)
		event.Set("_stopImmediate", true)
		return goja.Undefined()
	})
	event.Set("composedPath", func(goja.FunctionCall) goja.Value {
		return vm.ToValue([]interface{}{})
	})

	event.Set("NONE", int(EventPhaseNone))
	event.Set("CAPTURING_PHASE", int(EventPhaseCapturing))
	event.Set("AT_TARGET", int(EventPhaseAtTarget))
	event.Set("BUBBLING_PHASE", int(EventPhaseBubbling))

	return event
}

// SetupEventConstructors installs the Event and CustomEvent constructors.
func (eb *EventBinder) SetupEventConstructors() {
	vm := eb.runtime.vm

	construct := func(call goja.ConstructorCall, withDetail bool) *goja.Object {
		eventType := ""
		if len(call.Arguments) > 0 {
			eventType = call.Arguments[0].String()
		}
		options := make(map[string]interface{})
		var detail goja.Value = goja.Null()
		if len(call.Arguments) > 1 {
			if opt, ok := call.Arguments[1].(*goja.Object); ok {
				for _, key := range []string{"bubbles", "cancelable", "composed"} {
					if v := opt.Get(key); v != nil && !goja.IsUndefined(v) {
						options[key] = v.ToBoolean()
					}
				}
				if v := opt.Get("detail"); v != nil && !goja.IsUndefined(v) {
					detail = v
				}
			}
		}
		event := eb.CreateEvent(eventType, options)
		if withDetail {
			event.Set("detail", detail)
		}
		return event
	}

	vm.Set("Event", func(call goja.ConstructorCall) *goja.Object {
		return construct(call, false)
	})
	vm.Set("CustomEvent", func(call goja.ConstructorCall) *goja.Object {
		return construct(call, true)
	})
}

// ClearTargets clears all event target registrations.
func (eb *EventBinder) ClearTargets() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.targetMap = make(map[*goja.Object]*EventTarget)
}
