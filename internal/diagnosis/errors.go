package diagnosis

import (
	"errors"
	"fmt"
)

// ErrDecodeAmbiguity marks a reply that did not match the requested shape.
// The result degrades to GradeUnknown with the raw text kept in Detail.
var ErrDecodeAmbiguity = errors.New("reply did not match the expected format")

// CollaboratorError wraps a failed call to the text-generation provider for
// a single node. It never aborts the pass.
type CollaboratorError struct {
	Node string
	Err  error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("diagnosing %q: %v", e.Node, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// InputError reports a structure that cannot be diagnosed at all.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid structure: %v", e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }
