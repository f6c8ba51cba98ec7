package diagnosis

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type fields struct {
	GradeText, Summary, Suggestion, Example, Detail string
	Grade                                           Grade
}

func fieldsOf(r Result) fields {
	return fields{r.GradeText, r.Summary, r.Suggestion, r.Example, r.Detail, r.Grade}
}

func TestDecodeTags_AnyOrder(t *testing.T) {
	want := fields{
		GradeText:  "warn",
		Summary:    "Cost and price overlap.",
		Suggestion: "Merge them.",
		Example:    "Total cost, Quality",
		Detail:     "Independence: ...\nMECE: ...",
		Grade:      GradeWarn,
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"declared order", "[GRADE] warn\n[SUMMARY] Cost and price overlap.\n[SUGGESTION] Merge them.\n[EXAMPLE] Total cost, Quality\n[DETAIL] Independence: ...\nMECE: ..."},
		{"reversed", "[DETAIL]Independence: ...\nMECE: ...\n[EXAMPLE] Total cost, Quality [SUGGESTION] Merge them. [SUMMARY]\n Cost and price overlap. [GRADE] warn"},
		{"shuffled with preamble", "Here is my review.\n[SUMMARY] Cost and price overlap.\n[GRADE]   warn  \n[DETAIL] Independence: ...\nMECE: ...\n[SUGGESTION] Merge them.\n[EXAMPLE] Total cost, Quality\n"},
		{"lowercase tags", "[grade] warn [summary] Cost and price overlap. [suggestion] Merge them. [example] Total cost, Quality [detail] Independence: ...\nMECE: ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeTags(tt.raw)
			if diff := cmp.Diff(want, fieldsOf(got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			if got.Raw != tt.raw {
				t.Error("raw text not retained")
			}
			if got.Err != nil {
				t.Errorf("unexpected err %v", got.Err)
			}
		})
	}
}

func TestDecodeTags_EmptyField(t *testing.T) {
	got := DecodeTags("[GRADE] good [SUMMARY][SUGGESTION] keep it")
	if got.Summary != "" {
		t.Errorf("summary = %q, want empty", got.Summary)
	}
	if got.Suggestion != "keep it" || got.Grade != GradeGood {
		t.Errorf("unexpected result %+v", fieldsOf(got))
	}
	if got.Example != "" || got.Detail != "" {
		t.Errorf("absent tags must decode to empty text, got %+v", fieldsOf(got))
	}
}

func TestDecodeTags_FirstOccurrenceWins(t *testing.T) {
	got := DecodeTags("[GRADE] danger [SUMMARY] first [GRADE] good [SUMMARY] second")
	if got.GradeText != "danger" || got.Summary != "first" {
		t.Errorf("unexpected result %+v", fieldsOf(got))
	}
}

func TestDecodeTags_MissingGradeFallsBack(t *testing.T) {
	raws := []string{
		"The criteria look fine overall, but cost is vague.",
		"[SUMMARY] fine [DETAIL] but no grade tag",
		"",
		"GRADE: good",
	}
	for _, raw := range raws {
		got := DecodeTags(raw)
		if got.Grade != GradeUnknown {
			t.Errorf("%q: grade = %q, want unknown", raw, got.Grade)
		}
		if got.Detail != raw {
			t.Errorf("%q: detail = %q, want full raw text", raw, got.Detail)
		}
		if !errors.Is(got.Err, ErrDecodeAmbiguity) {
			t.Errorf("%q: err = %v, want ErrDecodeAmbiguity", raw, got.Err)
		}
	}
}

func TestDecodeDelimited(t *testing.T) {
	got := DecodeDelimited("  danger | too many items | cluster them | detail with | a pipe\n")
	want := fields{
		GradeText:  "danger",
		Summary:    "too many items",
		Suggestion: "cluster them",
		Detail:     "detail with | a pipe",
		Grade:      GradeDanger,
	}
	if diff := cmp.Diff(want, fieldsOf(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDelimited_TooFewParts(t *testing.T) {
	raw := "good|fine|none"
	got := DecodeDelimited(raw)
	if got.Grade != GradeUnknown || got.Detail != raw || !errors.Is(got.Err, ErrDecodeAmbiguity) {
		t.Errorf("unexpected fallback %+v", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	got := DecodeJSON("```json\n{\"grade\":\"good\",\"summary\":\"s\",\"suggestion\":\"g\",\"example\":\"none\",\"detail\":\"d\"}\n```")
	want := fields{GradeText: "good", Summary: "s", Suggestion: "g", Example: "none", Detail: "d", Grade: GradeGood}
	if diff := cmp.Diff(want, fieldsOf(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	for _, raw := range []string{`{"summary":"no grade"}`, `not json`} {
		got := DecodeJSON(raw)
		if got.Grade != GradeUnknown || got.Detail != raw {
			t.Errorf("%q: unexpected fallback %+v", raw, got)
		}
	}
}

func TestDecode_DispatchesByFormat(t *testing.T) {
	raw := "warn|a|b|c"
	if got := Decode(raw, FormatDelimited); got.Grade != GradeWarn {
		t.Errorf("delimited: grade = %q", got.Grade)
	}
	if got := Decode(raw, FormatTags); got.Grade != GradeUnknown {
		t.Errorf("tags: grade = %q, want unknown", got.Grade)
	}
}

func TestDecode_DuplicatesPreserved(t *testing.T) {
	raw := "[GRADE] warn [EXAMPLE] Unit Price, Unit Price"
	got := DecodeTags(raw)
	if diff := cmp.Diff("Unit Price, Unit Price", got.Example, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("example changed: %s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTags, "TAGS": FormatTags, "delimited": FormatDelimited, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
