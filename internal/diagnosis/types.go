package diagnosis

import (
	"fmt"
	"strings"
	"time"
)

// Grade is the coarse severity assigned to a diagnosed node.
type Grade string

const (
	GradeGood    Grade = "good"
	GradeWarn    Grade = "warn"
	GradeDanger  Grade = "danger"
	GradeUnknown Grade = "unknown"
	GradeError   Grade = "error"
)

// Format selects the reply shape requested from the model and the decoder
// applied to its reply.
type Format string

const (
	FormatTags      Format = "tags"
	FormatDelimited Format = "delimited"
	FormatJSON      Format = "json"
)

// ParseFormat validates a format name. The empty string selects tags.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTags, nil
	case FormatTags, FormatDelimited, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want tags, delimited or json)", s)
}

// Result is the outcome for one diagnosed node. It is immutable once
// returned and is never reused across runs.
type Result struct {
	// Position is the index of the node in the run's target order.
	Position int
	Node     string
	Path     []string
	Children []string

	Grade      Grade
	GradeText  string
	Summary    string
	Suggestion string
	Example    string
	Detail     string

	// Raw is the reply exactly as received.
	Raw string

	// Advisory is the local cardinality signal. It is never merged into
	// Grade.
	Advisory Advisory

	// Err is ErrDecodeAmbiguity or a *CollaboratorError when the result
	// was degraded.
	Err     error
	Latency time.Duration
}
