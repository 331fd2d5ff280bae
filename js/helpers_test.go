package js

import (
	"testing"

	"github.com/chrisuehlinger/selectionkit/dom"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/chrisuehlinger/selectionkit/layout"
)

type scriptFixture struct {
	doc   *dom.Document
	state *editing.SelectionState
	rt    *Runtime
	clock *fakeClock
}

// newScriptFixture parses src and attaches a runtime as the host of its
// selection.
func newScriptFixture(t *testing.T, src string) *scriptFixture {
	t.Helper()
	doc, err := dom.ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	clock := newFakeClock()
	rt := NewRuntime(WithClock(clock.now))
	state := editing.NewSelectionState(doc, layout.New(doc, layout.Options{}), rt,
		editing.WithScheduler(rt.Scheduler()))
	rt.Attach(state)
	return &scriptFixture{doc: doc, state: state, rt: rt, clock: clock}
}

// eval runs code and fails the test on a script error.
func (f *scriptFixture) eval(t *testing.T, code string) interface{} {
	t.Helper()
	v, err := f.rt.Execute(code)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	return v.Export()
}

func (f *scriptFixture) text(t *testing.T, id string) *dom.Node {
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
