package js

import (
	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

var _ editing.Host = (*Runtime)(nil)

// SelectionWillStart dispatches a cancelable selectstart event at target.
func (r *Runtime) SelectionWillStart(target *dom.Node) bool {
	if r.document == nil || target == nil {
		return true
	}
	event := r.events.CreateEvent("selectstart", map[string]interface{}{
		"bubbles":    true,
		"cancelable": true,
	})
	event.Set("isTrusted", true)
	ok := r.events.DispatchAlongPath(event, r.eventPath(target))
	if !ok {
		r.logger.Debug("selectstart canceled by script", zap.String("target", target.NodeName()))
	}
	return ok
}

// eventPath returns the bound objects from target up to the document.
// Nodes scripts never saw cannot have listeners and are skipped.
func (r *Runtime) eventPath(target *dom.Node) []*goja.Object {
	var path []*goja.Object
	for n := target; n != nil; n = n.ShadowIncludingParent() {
		if obj, ok := r.binder.nodeMap[n]; ok {
			path = append(path, obj)
		}
	}
	if len(path) == 0 || path[len(path)-1] != r.document {
		path = append(path, r.document)
	}
	return path
}

func (r *Runtime) SelectionChanged(oldStart editing.Position, userTriggered bool) {
	r.logger.Debug("selection changed",
		zap.Stringer("oldStart", oldStart),
		zap.Bool("userTriggered", userTriggered))
}

func (r *Runtime) AccessibilitySelectionChanged(*dom.Node) {}

func (r *Runtime) CompositorSelectionChanged() {}

// EnqueueSelectionChange queues one selectionchange event as a macrotask.
// Further changes before it runs are folded into it.
func (r *Runtime) EnqueueSelectionChange() {
	if r.document == nil || r.selectionChangeQueued {
		return
	}
	r.selectionChangeQueued = true
	r.eventLoop.queueMacrotask(func() {
		r.selectionChangeQueued = false
		event := r.events.CreateEvent("selectionchange", nil)
		event.Set("isTrusted", true)
		r.events.DispatchAlongPath(event, []*goja.Object{r.document})
	})
}

func (r *Runtime) SelectionOffsetsChanged() {}

func (r *Runtime) CloseTyping() {}

func (r *Runtime) ClearTypingStyle() {}

func (r *Runtime) FocusChanged(el *dom.Element) {
	if el == nil {
		r.logger.Debug("focus cleared")
		return
	}
	r.logger.Debug("focus moved with selection", zap.String("element", el.TagName()))
}
