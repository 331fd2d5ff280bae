package dom

import "fmt"

// DOMError is a DOM exception: a name from the DOMException names table and
// a message.
type DOMError struct {
	Name    string
	Message string
}

func (e *DOMError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is matches any DOMError with the same name, so errors.Is(err,
// ErrIndexSize("")) tests the kind of failure.
func (e *DOMError) Is(target error) bool {
	t, ok := target.(*DOMError)
	return ok && t.Name == e.Name
}

// legacyCodes holds the DOMException code constants for names that have one.
var legacyCodes = map[string]int{
	"IndexSizeError":        1,
	"HierarchyRequestError": 3,
	"WrongDocumentError":    4,
	"NotFoundError":         8,
	"NotSupportedError":     9,
	"InvalidStateError":     11,
	"InvalidNodeTypeError":  24,
}

// Code returns the legacy DOMException code, or 0.
func (e *DOMError) Code() int { return legacyCodes[e.Name] }

func newError(name, message string) *DOMError {
	return &DOMError{Name: name, Message: message}
}

// ErrHierarchyRequest: the insertion would produce an invalid tree.
func ErrHierarchyRequest(message string) *DOMError { return newError("HierarchyRequestError", message) }

// ErrNotFound: a referenced node is missing.
func ErrNotFound(message string) *DOMError { return newError("NotFoundError", message) }

func ErrNotSupported(message string) *DOMError { return newError("NotSupportedError", message) }

// ErrInvalidState: the object is in a state that forbids the call, such as
// an empty selection.
func ErrInvalidState(message string) *DOMError { return newError("InvalidStateError", message) }

// ErrIndexSize: an offset is past the length of its node.
func ErrIndexSize(message string) *DOMError { return newError("IndexSizeError", message) }

// ErrWrongDocument: the nodes or positions belong to different trees.
func ErrWrongDocument(message string) *DOMError { return newError("WrongDocumentError", message) }

func ErrInvalidNodeType(message string) *DOMError { return newError("InvalidNodeTypeError", message) }
