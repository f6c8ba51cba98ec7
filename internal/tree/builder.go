package tree

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultCapacity is the per-parent slot limit of a bounded builder.
	DefaultCapacity = 3

	// DefaultInitialSlots is the number of empty slots each parent starts with.
	DefaultInitialSlots = 3
)

var (
	// ErrCapacity is returned when a bounded parent has no room for another slot.
	ErrCapacity = errors.New("slot capacity reached")

	// ErrUnknownParent is returned when a sub-criterion targets no filled criterion.
	ErrUnknownParent = errors.New("unknown parent criterion")

	// ErrSlotRange is returned for a slot index outside the parent's slot count.
	ErrSlotRange = errors.New("slot index out of range")
)

// Parent identifies a node whose child slots the builder tracks.
// GoalParent is the goal; any value >= 0 is a criterion slot index.
type Parent int

const GoalParent Parent = -1

func (p Parent) String() string {
	if p == GoalParent {
		return "goal"
	}
	return fmt.Sprintf("criterion %d", int(p)+1)
}

// Option configures a Builder.
type Option func(*Builder)

// WithCapacity bounds the number of slots per parent. Zero means unbounded.
func WithCapacity(n int) Option {
	return func(b *Builder) {
		if n < 0 {
			n = 0
		}
		b.capacity = n
	}
}

// Unbounded removes the per-parent slot limit.
func Unbounded() Option {
	return WithCapacity(0)
}

// WithInitialSlots sets how many empty slots each parent starts with.
func WithInitialSlots(n int) Option {
	return func(b *Builder) {
		if n < 1 {
			n = 1
		}
		b.initial = n
	}
}

// Builder collects a goal, criteria and sub-criteria slot by slot.
//
// Slot counts live in an explicit per-parent map and only ever grow through
// Grow. Values are kept verbatim; blanks are dropped by Build and duplicate
// labels pass through untouched.
type Builder struct {
	capacity int
	initial  int

	goal     string
	slots    map[Parent]int
	criteria []string
	subs     [][]string
}

// NewBuilder creates a Builder. Without options it is bounded at
// DefaultCapacity with DefaultInitialSlots per parent.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		capacity: DefaultCapacity,
		initial:  DefaultInitialSlots,
		slots:    make(map[Parent]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.capacity > 0 && b.initial > b.capacity {
		b.initial = b.capacity
	}
	return b
}

// Capacity returns the per-parent slot limit, or 0 when unbounded.
func (b *Builder) Capacity() int {
	return b.capacity
}

// SetGoal sets the goal text.
func (b *Builder) SetGoal(goal string) {
	b.goal = goal
}

// Goal returns the goal text as entered.
func (b *Builder) Goal() string {
	return b.goal
}

// SlotCount returns how many input slots the parent currently has.
func (b *Builder) SlotCount(p Parent) int {
	if n, ok := b.slots[p]; ok {
		return n
	}
	return b.initial
}

// CanGrow reports whether Grow(p) would succeed.
func (b *Builder) CanGrow(p Parent) bool {
	return b.capacity == 0 || b.SlotCount(p) < b.capacity
}

// Grow appends exactly one empty slot to the parent. Existing values are
// never touched.
func (b *Builder) Grow(p Parent) error {
	if p != GoalParent && (int(p) < 0 || int(p) >= b.SlotCount(GoalParent)) {
		return fmt.Errorf("grow %s: %w", p, ErrSlotRange)
	}
	if !b.CanGrow(p) {
		return fmt.Errorf("grow %s: %w (max %d)", p, ErrCapacity, b.capacity)
	}
	b.slots[p] = b.SlotCount(p) + 1
	return nil
}

// SetCriterion stores the value of a criterion slot.
func (b *Builder) SetCriterion(slot int, label string) error {
	if slot < 0 || slot >= b.SlotCount(GoalParent) {
		return fmt.Errorf("criterion slot %d: %w", slot, ErrSlotRange)
	}
	b.ensureCriterion(slot)
	b.criteria[slot] = label
	return nil
}

// Criterion returns the value of a criterion slot, or "" if never set.
func (b *Builder) Criterion(slot int) string {
	if slot < 0 || slot >= len(b.criteria) {
		return ""
	}
	return b.criteria[slot]
}

// SetSubCriterion stores the value of a sub-criterion slot under the
// criterion at index crit.
func (b *Builder) SetSubCriterion(crit, slot int, label string) error {
	if crit < 0 || crit >= b.SlotCount(GoalParent) {
		return fmt.Errorf("criterion slot %d: %w", crit, ErrSlotRange)
	}
	if slot < 0 || slot >= b.SlotCount(Parent(crit)) {
		return fmt.Errorf("sub-criterion slot %d of %s: %w", slot, Parent(crit), ErrSlotRange)
	}
	b.ensureCriterion(crit)
	for len(b.subs[crit]) <= slot {
		b.subs[crit] = append(b.subs[crit], "")
	}
	b.subs[crit][slot] = label
	return nil
}

// SubCriterion returns the value of a sub-criterion slot, or "" if never set.
func (b *Builder) SubCriterion(crit, slot int) string {
	if crit < 0 || crit >= len(b.subs) || slot < 0 || slot >= len(b.subs[crit]) {
		return ""
	}
	return b.subs[crit][slot]
}

// AddCriterion places label in the first blank criterion slot, growing the
// goal's slots when all are filled, and returns the slot it used. Bounded
// builders reject it past capacity.
func (b *Builder) AddCriterion(label string) (int, error) {
	slot := b.firstBlank(GoalParent)
	if slot < 0 {
		if err := b.Grow(GoalParent); err != nil {
			return -1, fmt.Errorf("add criterion %q: %w", label, err)
		}
		slot = b.SlotCount(GoalParent) - 1
	}
	if err := b.SetCriterion(slot, label); err != nil {
		return -1, err
	}
	return slot, nil
}

// AddSubCriterion places label under the first criterion whose label matches
// parentLabel. Use AddSubCriterionAt when labels may repeat.
func (b *Builder) AddSubCriterion(parentLabel, label string) error {
	want := strings.TrimSpace(parentLabel)
	for i := 0; i < b.SlotCount(GoalParent); i++ {
		if v := strings.TrimSpace(b.Criterion(i)); v != "" && v == want {
			return b.AddSubCriterionAt(i, label)
		}
	}
	return fmt.Errorf("add sub-criterion %q: %w %q", label, ErrUnknownParent, parentLabel)
}

// AddSubCriterionAt places label in the first blank sub-criterion slot of the
// criterion at index crit, growing that criterion's slots when all are filled.
func (b *Builder) AddSubCriterionAt(crit int, label string) error {
	if strings.TrimSpace(b.Criterion(crit)) == "" {
		return fmt.Errorf("add sub-criterion %q: %w at slot %d", label, ErrUnknownParent, crit)
	}
	slot := b.firstBlank(Parent(crit))
	if slot < 0 {
		if err := b.Grow(Parent(crit)); err != nil {
			return fmt.Errorf("add sub-criterion %q: %w", label, err)
		}
		slot = b.SlotCount(Parent(crit)) - 1
	}
	return b.SetSubCriterion(crit, slot, label)
}

// Build returns the structure with blank entries filtered out. Order is
// preserved and duplicates are kept. Sub-criteria of a blank criterion are
// dropped with it.
func (b *Builder) Build() *Structure {
	goal := &Node{Label: strings.TrimSpace(b.goal)}

	for i := 0; i < b.SlotCount(GoalParent); i++ {
		label := strings.TrimSpace(b.Criterion(i))
		if label == "" {
			continue
		}
		crit := &Node{Label: label}
		for j := 0; j < b.SlotCount(Parent(i)); j++ {
			if sub := strings.TrimSpace(b.SubCriterion(i, j)); sub != "" {
				crit.Children = append(crit.Children, &Node{Label: sub})
			}
		}
		goal.Children = append(goal.Children, crit)
	}

	return &Structure{Goal: goal}
}

func (b *Builder) firstBlank(p Parent) int {
	for i := 0; i < b.SlotCount(p); i++ {
		var v string
		if p == GoalParent {
			v = b.Criterion(i)
		} else {
			v = b.SubCriterion(int(p), i)
		}
		if strings.TrimSpace(v) == "" {
			return i
		}
	}
	return -1
}

func (b *Builder) ensureCriterion(slot int) {
	for len(b.criteria) <= slot {
		b.criteria = append(b.criteria, "")
		b.subs = append(b.subs, nil)
	}
}
