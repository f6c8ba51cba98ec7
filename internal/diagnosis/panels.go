package diagnosis

import "strings"

// PanelKind identifies what a panel shows; renderers pick styles by kind.
type PanelKind string

const (
	PanelGrade      PanelKind = "grade"
	PanelSummary    PanelKind = "summary"
	PanelSuggestion PanelKind = "suggestion"
	PanelExample    PanelKind = "example"
	PanelDetail     PanelKind = "detail"
	PanelAdvisory   PanelKind = "advisory"
	PanelError      PanelKind = "error"
)

// Panel is one rendered block of a result.
type Panel struct {
	Kind  PanelKind
	Title string
	Body  string
}

// Panels selects the panels to show for r, in display order. Empty fields
// and a "none provided" example are left out. The cardinality advisory is
// always its own panel.
func Panels(r Result) []Panel {
	var out []Panel
	add := func(kind PanelKind, title, body string) {
		if strings.TrimSpace(body) != "" {
			out = append(out, Panel{Kind: kind, Title: title, Body: body})
		}
	}

	switch r.Grade {
	case GradeError:
		add(PanelGrade, "Grade", string(r.Grade))
		add(PanelError, "Request failed", r.Detail)
	case GradeUnknown:
		add(PanelGrade, "Grade", string(r.Grade))
		if r.Err != nil {
			add(PanelDetail, "Unparsed response", r.Detail)
		} else {
			add(PanelSummary, "Summary", r.Summary)
			add(PanelSuggestion, "Suggestion", r.Suggestion)
			if !IsNoneProvided(r.Example) {
				add(PanelExample, "Example", r.Example)
			}
			add(PanelDetail, "Detail", r.Detail)
		}
	default:
		add(PanelGrade, "Grade", string(r.Grade))
		add(PanelSummary, "Summary", r.Summary)
		add(PanelSuggestion, "Suggestion", r.Suggestion)
		if !IsNoneProvided(r.Example) {
			add(PanelExample, "Example", r.Example)
		}
		add(PanelDetail, "Detail", r.Detail)
	}

	add(PanelAdvisory, "Cardinality", string(r.Advisory))
	return out
}

// IsNoneProvided reports whether an example text means no example was given.
func IsNoneProvided(example string) bool {
	text := strings.ToLower(strings.TrimSpace(example))
	if text == "" {
		return true
	}
	text = strings.Trim(text, `"'.`)
	for _, m := range noneExact {
		if text == m {
			return true
		}
	}
	for _, m := range noneSubstrings {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
