package tree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func labels(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Label
	}
	return out
}

func TestBuild_RoundTrip(t *testing.T) {
	b := NewBuilder()
	b.SetGoal("G")
	if _, err := b.AddCriterion("A"); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if _, err := b.AddCriterion("B"); err != nil {
		t.Fatalf("add B: %v", err)
	}
	for _, sub := range []string{"A1", "A2"} {
		if err := b.AddSubCriterion("A", sub); err != nil {
			t.Fatalf("add %s: %v", sub, err)
		}
	}

	s := b.Build()
	if s.Goal.Label != "G" {
		t.Errorf("goal = %q, want G", s.Goal.Label)
	}
	if diff := cmp.Diff([]string{"A", "B"}, labels(s.Criteria())); diff != "" {
		t.Errorf("criteria mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A1", "A2"}, s.SubCriteria(0)); diff != "" {
		t.Errorf("A children mismatch (-want +got):\n%s", diff)
	}
	if got := len(s.SubCriteria(1)); got != 0 {
		t.Errorf("B has %d children, want 0", got)
	}

	var diagnosed []string
	for _, tg := range s.Targets() {
		diagnosed = append(diagnosed, tg.Parent())
	}
	if diff := cmp.Diff([]string{"G", "A"}, diagnosed); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_FiltersBlanks(t *testing.T) {
	b := NewBuilder()
	b.SetGoal("  Pick a laptop ")
	_ = b.SetCriterion(0, "Cost")
	_ = b.SetCriterion(1, "   ")
	_ = b.SetCriterion(2, "Weight")
	_ = b.SetSubCriterion(0, 0, "")
	_ = b.SetSubCriterion(0, 1, "Price")
	_ = b.SetSubCriterion(1, 0, "orphan")

	s := b.Build()
	if s.Goal.Label != "Pick a laptop" {
		t.Errorf("goal = %q", s.Goal.Label)
	}
	if diff := cmp.Diff([]string{"Cost", "Weight"}, labels(s.Criteria())); diff != "" {
		t.Errorf("criteria mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Price"}, s.SubCriteria(0)); diff != "" {
		t.Errorf("Cost children mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_PreservesDuplicates(t *testing.T) {
	b := NewBuilder()
	b.SetGoal("Buy a car")
	_, _ = b.AddCriterion("Cost")
	_ = b.AddSubCriterion("Cost", "Unit Price")
	_ = b.AddSubCriterion("Cost", "Unit Price")

	s := b.Build()
	if diff := cmp.Diff([]string{"Unit Price", "Unit Price"}, s.SubCriteria(0)); diff != "" {
		t.Errorf("duplicates collapsed (-want +got):\n%s", diff)
	}
}

func TestAddSubCriterionAt_DuplicateCriteria(t *testing.T) {
	b := NewBuilder()
	b.SetGoal("Buy a car")
	for _, sub := range []string{"A", "B"} {
		slot, err := b.AddCriterion("Cost")
		if err != nil {
			t.Fatalf("add Cost: %v", err)
		}
		if err := b.AddSubCriterionAt(slot, sub); err != nil {
			t.Fatalf("add %s: %v", sub, err)
		}
	}

	s := b.Build()
	got := [][]string{s.SubCriteria(0), s.SubCriteria(1)}
	if diff := cmp.Diff([][]string{{"A"}, {"B"}}, got); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestAddCriterion_BoundedRejectsPastCapacity(t *testing.T) {
	b := NewBuilder()
	for _, l := range []string{"A", "B", "C"} {
		if _, err := b.AddCriterion(l); err != nil {
			t.Fatalf("add %s: %v", l, err)
		}
	}
	_, err := b.AddCriterion("D")
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if got := len(b.Build().Criteria()); got != 3 {
		t.Errorf("got %d criteria, want 3", got)
	}
}

func TestAddCriterion_UnboundedAppends(t *testing.T) {
	b := NewBuilder(Unbounded())
	for i := 0; i < 10; i++ {
		if _, err := b.AddCriterion(string(rune('A' + i))); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if got := len(b.Build().Criteria()); got != 10 {
		t.Errorf("got %d criteria, want 10", got)
	}
	if got := b.SlotCount(GoalParent); got != 10 {
		t.Errorf("slot count = %d, want 10", got)
	}
}

func TestAddSubCriterion_UnknownParent(t *testing.T) {
	b := NewBuilder()
	_, _ = b.AddCriterion("A")
	err := b.AddSubCriterion("Z", "z1")
	if !errors.Is(err, ErrUnknownParent) {
		t.Fatalf("expected ErrUnknownParent, got %v", err)
	}
}

func TestAddSubCriterionAt_BlankSlot(t *testing.T) {
	b := NewBuilder()
	err := b.AddSubCriterionAt(1, "x")
	if !errors.Is(err, ErrUnknownParent) {
		t.Fatalf("expected ErrUnknownParent, got %v", err)
	}
}

func TestGrow_AppendsWithoutClearing(t *testing.T) {
	b := NewBuilder(Unbounded(), WithInitialSlots(2))
	_ = b.SetCriterion(0, "A")
	_ = b.SetSubCriterion(0, 0, "A1")
	_ = b.SetSubCriterion(0, 1, "A2")

	before := b.SlotCount(Parent(0))
	if err := b.Grow(Parent(0)); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if got := b.SlotCount(Parent(0)); got != before+1 {
		t.Errorf("slot count = %d, want %d", got, before+1)
	}
	if b.SubCriterion(0, 0) != "A1" || b.SubCriterion(0, 1) != "A2" {
		t.Error("grow cleared existing sibling values")
	}
	if b.SubCriterion(0, 2) != "" {
		t.Error("new slot should be empty")
	}
	// Other parents are unaffected.
	if got := b.SlotCount(GoalParent); got != 2 {
		t.Errorf("goal slot count = %d, want 2", got)
	}
}

func TestGrow_BoundedStopsAtCapacity(t *testing.T) {
	b := NewBuilder(WithCapacity(4), WithInitialSlots(3))
	if err := b.Grow(GoalParent); err != nil {
		t.Fatalf("first grow: %v", err)
	}
	if err := b.Grow(GoalParent); !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if got := b.SlotCount(GoalParent); got != 4 {
		t.Errorf("slot count = %d, want 4", got)
	}
}

func TestGrow_UnknownCriterionSlot(t *testing.T) {
	b := NewBuilder()
	if err := b.Grow(Parent(7)); !errors.Is(err, ErrSlotRange) {
		t.Fatalf("expected ErrSlotRange, got %v", err)
	}
}

func TestSetSubCriterion_OutOfRange(t *testing.T) {
	b := NewBuilder()
	if err := b.SetSubCriterion(0, 3, "x"); !errors.Is(err, ErrSlotRange) {
		t.Fatalf("expected ErrSlotRange, got %v", err)
	}
	if err := b.SetCriterion(-1, "x"); !errors.Is(err, ErrSlotRange) {
		t.Fatalf("expected ErrSlotRange, got %v", err)
	}
}

func TestInitialSlotsClampedToCapacity(t *testing.T) {
	b := NewBuilder(WithCapacity(2), WithInitialSlots(5))
	if got := b.SlotCount(GoalParent); got != 2 {
		t.Errorf("slot count = %d, want 2", got)
	}
}
