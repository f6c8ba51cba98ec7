package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/diagnosis"
)

func TestMenuSkipsDisabled(t *testing.T) {
	fired := ""
	m := NewMenu([]MenuItem{
		{Label: "A", Disabled: true},
		{Label: "B", Action: func() tea.Cmd { fired = "B"; return nil }},
		{Label: "C", Disabled: true},
		{Label: "D", Action: func() tea.Cmd { fired = "D"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item selected, got %d", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Errorf("expected down to skip disabled item, got %d", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if fired != "D" {
		t.Errorf("expected D action, got %q", fired)
	}
}

func TestPasswordInputMasks(t *testing.T) {
	in := NewPasswordInput("API key", "")
	for _, r := range "secret" {
		in, _ = in.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	if in.Value() != "secret" {
		t.Fatalf("expected value to be kept, got %q", in.Value())
	}
	if strings.Contains(in.View(), "secret") {
		t.Error("password input rendered the key in clear text")
	}
}

func TestPassTrack_CounterAndCells(t *testing.T) {
	p := PassTrack{
		Grades: []diagnosis.Grade{diagnosis.GradeGood, diagnosis.GradeDanger},
		Total:  4,
		Width:  40,
	}
	out := p.View()
	if !strings.Contains(out, "2/4") {
		t.Errorf("expected counter 2/4 in %q", out)
	}
	if w := lipgloss.Width(out); w > 40 {
		t.Errorf("track width %d exceeds 40", w)
	}
}

func TestPassTrack_EmptyPass(t *testing.T) {
	out := PassTrack{Width: 20}.View()
	if !strings.Contains(out, "0/0") {
		t.Errorf("expected 0/0 counter, got %q", out)
	}
}

func TestRenderResult_SuppressesNoneExample(t *testing.T) {
	r := diagnosis.Result{
		Node:       "Efficiency",
		Path:       []string{"Goal", "Efficiency"},
		Children:   []string{"Speed", "Accuracy"},
		Grade:      diagnosis.GradeWarn,
		Summary:    "Speed and accuracy overlap",
		Suggestion: "Split accuracy into precision and recall",
		Example:    "none",
		Detail:     "details here",
	}
	out := RenderResult(r, 60)

	for _, want := range []string{"Efficiency", "WARN", "Speed and accuracy overlap", "Suggestion", "compares: Speed, Accuracy"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(out, "Example") {
		t.Error("expected none example to be suppressed")
	}
}

func TestRenderResult_AdvisoryPanel(t *testing.T) {
	r := diagnosis.Result{
		Node:     "Cost",
		Children: []string{"Licence"},
		Grade:    diagnosis.GradeGood,
		Summary:  "ok",
		Advisory: diagnosis.AdvisorySingleItem,
	}
	out := RenderResult(r, 60)
	if !strings.Contains(out, string(diagnosis.AdvisorySingleItem)) {
		t.Error("expected advisory panel")
	}
}
