package builder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/critree/internal/llm"
	"github.com/abhisek/critree/internal/router"
	"github.com/abhisek/critree/internal/screens/results"
	"github.com/abhisek/critree/internal/session"
	"github.com/abhisek/critree/internal/tree"
	"github.com/abhisek/critree/internal/tree/importer"
)

func newBuilder(opts ...tree.Option) *BuilderScreen {
	cfg := llm.DefaultConfig()
	cfg.Provider = llm.ProviderMock
	b := New(session.New(session.Options{LLM: cfg, Builder: opts}))
	b.Init()
	return b
}

func typeText(b *BuilderScreen, s string) {
	for _, r := range s {
		b.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func press(b *BuilderScreen, code rune, mod tea.KeyMod) tea.Cmd {
	_, cmd := b.Update(tea.KeyPressMsg{Code: code, Mod: mod})
	return cmd
}

func TestFormBuildsStructure(t *testing.T) {
	b := newBuilder()

	typeText(b, "Adopt AI")
	press(b, tea.KeyTab, 0)
	typeText(b, "Efficiency")
	press(b, tea.KeyTab, 0) // first sub slot of Efficiency
	typeText(b, "Speed")
	press(b, tea.KeyTab, 0)
	typeText(b, "Accuracy")
	press(b, tea.KeyTab, 0)
	press(b, tea.KeyTab, 0) // criterion 2
	typeText(b, "Cost")

	got := tree.Outline(b.Structure())
	want := tree.Outline(&tree.Structure{Goal: tree.NewNode("Adopt AI",
		tree.NewNode("Efficiency", tree.NewNode("Speed"), tree.NewNode("Accuracy")),
		tree.NewNode("Cost"),
	)})
	if got != want {
		t.Errorf("structure mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSubSlotsHiddenUnderBlankCriterion(t *testing.T) {
	b := newBuilder()
	// goal + 3 criterion slots
	if n := len(b.fields()); n != 4 {
		t.Fatalf("expected 4 fields, got %d", n)
	}
	press(b, tea.KeyTab, 0)
	typeText(b, "A")
	// criterion A now exposes its 3 sub slots
	if n := len(b.fields()); n != 7 {
		t.Errorf("expected 7 fields, got %d", n)
	}
}

func TestGrowRespectsCapacity(t *testing.T) {
	b := newBuilder()

	press(b, 'n', tea.ModCtrl) // goal: 4th criterion slot would exceed 3
	if !strings.Contains(b.notice, "maximum of 3") {
		t.Errorf("expected capacity notice, got %q", b.notice)
	}
	if n := b.builder.SlotCount(tree.GoalParent); n != 3 {
		t.Errorf("slot count changed to %d", n)
	}
}

func TestGrowUnbounded(t *testing.T) {
	b := newBuilder(tree.Unbounded())
	typeText(b, "Goal")

	press(b, 'n', tea.ModCtrl)
	if n := b.builder.SlotCount(tree.GoalParent); n != 4 {
		t.Fatalf("expected 4 criterion slots, got %d", n)
	}
	if b.focus != (field{parent: tree.GoalParent, slot: 3}) {
		t.Errorf("expected focus on the new slot, got %+v", b.focus)
	}

	typeText(b, "D")
	press(b, 'n', tea.ModCtrl) // sub slot under criterion 4
	if n := b.builder.SlotCount(tree.Parent(3)); n != 4 {
		t.Errorf("expected 4 sub slots, got %d", n)
	}
	if b.builder.Goal() != "Goal" || b.builder.Criterion(3) != "D" {
		t.Error("growing touched existing values")
	}
}

func TestGrowNeedsNamedCriterion(t *testing.T) {
	b := newBuilder(tree.Unbounded())
	press(b, tea.KeyTab, 0)
	press(b, 'n', tea.ModCtrl)
	if !strings.Contains(b.notice, "Name the criterion") {
		t.Errorf("expected notice, got %q", b.notice)
	}
}

func TestRunRequiresGoal(t *testing.T) {
	b := newBuilder()
	if cmd := press(b, 'r', tea.ModCtrl); cmd != nil {
		t.Error("expected no navigation without a goal")
	}
	if !strings.Contains(b.notice, "Enter a goal") {
		t.Errorf("expected goal notice, got %q", b.notice)
	}

	typeText(b, "   ")
	if cmd := press(b, 'r', tea.ModCtrl); cmd != nil {
		t.Error("expected whitespace goal to be rejected")
	}
}

func TestRunPushesResults(t *testing.T) {
	b := newBuilder()
	typeText(b, "Goal")

	cmd := press(b, 'r', tea.ModCtrl)
	if cmd == nil {
		t.Fatal("expected navigation")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*results.ResultsScreen); !ok {
		t.Errorf("expected results screen for the mock provider, got %T", msg.Screen)
	}
}

func TestSaveWritesYAML(t *testing.T) {
	b := newBuilder()
	b.saveDir = t.TempDir()
	typeText(b, "Pick a Laptop!")
	press(b, tea.KeyTab, 0)
	typeText(b, "Battery")

	press(b, 's', tea.ModCtrl)
	path := filepath.Join(b.saveDir, "pick-a-laptop.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected saved file: %v (notice %q)", err, b.notice)
	}
	st, err := importer.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := st.Criteria()[0].Label; got != "Battery" {
		t.Errorf("expected Battery, got %q", got)
	}
}

func TestViewShowsAdvisories(t *testing.T) {
	b := newBuilder()
	typeText(b, "Goal")
	press(b, tea.KeyTab, 0)
	typeText(b, "Only")

	view := b.View(120, 40)
	if !strings.Contains(view, "cannot compare, single item") {
		t.Error("expected single-item advisory in preview")
	}
}
