package diagnosis

import (
	"errors"
	"time"

	"github.com/abhisek/critree/internal/store"
)

// ResultFromEvent rebuilds a result from its audit-log record so past runs
// can be shown with the same panels as live ones.
func ResultFromEvent(e store.DiagnosisEvent) Result {
	r := Result{
		Position:   e.Position,
		Node:       e.Node,
		Path:       e.Path,
		Children:   e.Children,
		Grade:      Grade(e.Grade),
		GradeText:  e.GradeText,
		Summary:    e.Summary,
		Suggestion: e.Suggestion,
		Example:    e.Example,
		Detail:     e.Detail,
		Raw:        e.Raw,
		Advisory:   Advisory(e.Advisory),
		Latency:    time.Duration(e.LatencyMs) * time.Millisecond,
	}
	switch {
	case e.ErrorMessage == "":
	case e.ErrorMessage == ErrDecodeAmbiguity.Error():
		r.Err = ErrDecodeAmbiguity
	default:
		r.Err = errors.New(e.ErrorMessage)
	}
	return r
}
