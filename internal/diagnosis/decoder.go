package diagnosis

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Decode extracts the diagnosis fields from a reply in the given format.
// It never fails: an unrecognized reply yields GradeUnknown with the full
// text in Detail and Err set to ErrDecodeAmbiguity.
func Decode(raw string, format Format) Result {
	switch format {
	case FormatDelimited:
		return DecodeDelimited(raw)
	case FormatJSON:
		return DecodeJSON(raw)
	}
	return DecodeTags(raw)
}

const (
	tagGrade      = "GRADE"
	tagSummary    = "SUMMARY"
	tagSuggestion = "SUGGESTION"
	tagExample    = "EXAMPLE"
	tagDetail     = "DETAIL"
)

var tagPattern = regexp.MustCompile(`(?i)\[(GRADE|SUMMARY|SUGGESTION|EXAMPLE|DETAIL)\]`)

// DecodeTags decodes the bracket-tag form. Each tag is located by its first
// occurrence independently, so tag order in the reply does not matter. A
// field runs to the next recognized tag or the end of the text.
func DecodeTags(raw string) Result {
	matches := tagPattern.FindAllStringSubmatchIndex(raw, -1)

	fields := make(map[string]string, 5)
	for i, m := range matches {
		name := strings.ToUpper(raw[m[2]:m[3]])
		if _, seen := fields[name]; seen {
			continue
		}
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		fields[name] = strings.TrimSpace(raw[m[1]:end])
	}

	gradeText, ok := fields[tagGrade]
	if !ok {
		return unparsed(raw)
	}
	return Result{
		Grade:      Classify(gradeText),
		GradeText:  gradeText,
		Summary:    fields[tagSummary],
		Suggestion: fields[tagSuggestion],
		Example:    fields[tagExample],
		Detail:     fields[tagDetail],
		Raw:        raw,
	}
}

// DecodeDelimited decodes the single-line "grade|summary|suggestion|detail"
// form. Extra delimiters stay inside detail.
func DecodeDelimited(raw string) Result {
	parts := strings.SplitN(strings.TrimSpace(raw), "|", 4)
	if len(parts) < 4 {
		return unparsed(raw)
	}
	gradeText := strings.TrimSpace(parts[0])
	return Result{
		Grade:      Classify(gradeText),
		GradeText:  gradeText,
		Summary:    strings.TrimSpace(parts[1]),
		Suggestion: strings.TrimSpace(parts[2]),
		Detail:     strings.TrimSpace(parts[3]),
		Raw:        raw,
	}
}

type jsonReply struct {
	Grade      *string `json:"grade"`
	Summary    string  `json:"summary"`
	Suggestion string  `json:"suggestion"`
	Example    string  `json:"example"`
	Detail     string  `json:"detail"`
}

// DecodeJSON decodes a structured reply. Markdown code fences around the
// object are tolerated.
func DecodeJSON(raw string) Result {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")

	var reply jsonReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &reply); err != nil || reply.Grade == nil {
		return unparsed(raw)
	}
	gradeText := strings.TrimSpace(*reply.Grade)
	return Result{
		Grade:      Classify(gradeText),
		GradeText:  gradeText,
		Summary:    strings.TrimSpace(reply.Summary),
		Suggestion: strings.TrimSpace(reply.Suggestion),
		Example:    strings.TrimSpace(reply.Example),
		Detail:     strings.TrimSpace(reply.Detail),
		Raw:        raw,
	}
}

func unparsed(raw string) Result {
	return Result{
		Grade:  GradeUnknown,
		Detail: raw,
		Raw:    raw,
		Err:    ErrDecodeAmbiguity,
	}
}
