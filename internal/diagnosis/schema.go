package diagnosis

import "github.com/abhisek/critree/internal/llm"

// DiagnosisSchema defines the JSON reply requested in FormatJSON.
var DiagnosisSchema = &llm.Schema{
	Name:        "criteria-diagnosis",
	Description: "Critique of one parent item and its child items in a criteria hierarchy",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"grade": map[string]any{
				"type":        "string",
				"enum":        []any{"good", "warn", "danger"},
				"description": "Overall severity of the problems found",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "One-sentence verdict",
			},
			"suggestion": map[string]any{
				"type":        "string",
				"description": "The most important improvement",
			},
			"example": map[string]any{
				"type":        "string",
				"description": "An improved list of child items, or \"none\" if no change is needed",
			},
			"detail": map[string]any{
				"type":        "string",
				"description": "Reasoning for independence, exclusivity/exhaustiveness and cardinality",
			},
		},
		"required":             []any{"grade", "summary", "suggestion", "example", "detail"},
		"additionalProperties": false,
	},
}
