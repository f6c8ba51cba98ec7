package diagnosis

import (
	"bytes"
	"text/template"
)

// PromptInput is what BuildPrompt embeds into the template.
type PromptInput struct {
	Goal     string
	Parent   string
	Children []string
	Format   Format
}

const systemPrompt = `You are a decision analysis consultant who reviews criteria hierarchies used for weighted multi-criteria decisions (AHP style). You critique one parent item and its child items at a time. Be direct and specific, and answer only in the requested format.`

var promptTemplate = template.Must(template.New("diagnosis").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Decision goal: {{.Goal}}
Parent item: {{.Parent}}
Child items ({{len .Children}}):
{{range $i, $c := .Children}}{{inc $i}}. {{$c}}
{{end}}
Review whether the child items are a sound breakdown of the parent item along three dimensions:
1. Independence: no child item causes, or is strongly correlated with, another child item.
2. Mutual exclusivity and collective exhaustiveness: the child items do not overlap in meaning, and together they cover the parent item without critical gaps.
3. Cardinality: 3 to 7 child items can be compared by a person. Fewer than 2 leaves nothing to compare; more than 7 causes cognitive overload and dilutes the weights.
Point out duplicate labels if there are any.

{{if eq .Format "delimited"}}Answer on a single line with exactly four fields separated by "|":
grade|summary|suggestion|detail
grade is one of: good, warn, danger. Do not use "|" inside a field.
{{else if eq .Format "json"}}Answer with a JSON object with the fields grade (one of good, warn, danger), summary, suggestion, example and detail. Set example to "none" if no change is needed.
{{else}}Answer in exactly this format:
[GRADE] one of good, warn, danger
[SUMMARY] one-sentence verdict
[SUGGESTION] the most important improvement
[EXAMPLE] an improved list of child items, or "none" if no change is needed
[DETAIL] your reasoning for each of the three dimensions
{{end}}`))

// BuildPrompt renders the user prompt for one parent and its children.
// Children are embedded in order and without deduplication.
func BuildPrompt(in PromptInput) (string, error) {
	if in.Format == "" {
		in.Format = FormatTags
	}
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SystemPrompt returns the fixed system instruction sent with every prompt.
func SystemPrompt() string {
	return systemPrompt
}
