package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(MinWidth-1, MinHeight) {
		t.Error("narrow terminal should be too small")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("minimum size should fit")
	}
}

func TestRenderHeader_ContainsTitleAndStatus(t *testing.T) {
	h := RenderHeader("Builder", "openai · gpt-4o", 100)
	for _, want := range []string{"critree", "Builder", "openai · gpt-4o"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q:\n%s", want, h)
		}
	}
}

func TestRenderFooter_JoinsHints(t *testing.T) {
	f := RenderFooter([]KeyHint{{"enter", "select"}, {"esc", "back"}}, 80)
	if !strings.Contains(f, "enter") || !strings.Contains(f, "back") {
		t.Errorf("footer missing hints:\n%s", f)
	}
}

func TestRenderFrame_FillsHeight(t *testing.T) {
	out := RenderFrame("H", "body", "F", 40, 12)
	if got := lipgloss.Height(out); got != 12 {
		t.Errorf("frame height = %d, want 12", got)
	}
}
