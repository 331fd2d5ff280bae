package dom

import (
	"errors"
	"fmt"
	"testing"
)

func TestDOMErrorKinds(t *testing.T) {
	doc := NewDocument()
	text := doc.CreateTextNode("abc")

	err := text.AsText().InsertData(9, "x")
	wrapped := fmt.Errorf("edit: %w", err)
	if !errors.Is(wrapped, ErrIndexSize("")) {
		t.Errorf("Expected an IndexSizeError, got %v", err)
	}
	if errors.Is(wrapped, ErrInvalidState("")) {
		t.Error("Expected names to distinguish error kinds")
	}

	var de *DOMError
	if !errors.As(wrapped, &de) || de.Code() != 1 {
		t.Errorf("Expected legacy code 1, got %v", de)
	}
	if got := ErrInvalidNodeType("x").Code(); got != 24 {
		t.Errorf("Expected code 24, got %d", got)
	}

	if got := ErrWrongDocument("x").Code(); got != 4 {
		t.Errorf("Expected code 4, got %d", got)
	}
}

func TestComparePointsWrongDocument(t *testing.T) {
	a := NewDocument().CreateTextNode("a")
	b := NewDocument().CreateTextNode("b")
	_, err := ComparePoints(Authored, a, 0, b, 0)
	if !errors.Is(err, ErrWrongDocument("")) {
		t.Errorf("Expected a WrongDocumentError, got %v", err)
	}
}
