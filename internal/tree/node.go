package tree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyGoal is returned by Validate when the goal label is blank.
var ErrEmptyGoal = errors.New("goal is empty")

// Node is one labeled node of a criteria tree.
type Node struct {
	Label    string
	Children []*Node
}

// NewNode creates a node with the given children.
func NewNode(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// ChildLabels returns the labels of the direct children in order.
func (n *Node) ChildLabels() []string {
	labels := make([]string, len(n.Children))
	for i, c := range n.Children {
		labels[i] = c.Label
	}
	return labels
}

// HasChildren reports whether n has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Structure is a finalized criteria tree rooted at the goal node.
type Structure struct {
	Goal *Node
}

// Validate checks that the structure has a non-blank goal.
func (s *Structure) Validate() error {
	if s == nil || s.Goal == nil || strings.TrimSpace(s.Goal.Label) == "" {
		return ErrEmptyGoal
	}
	return nil
}

// Criteria returns the top-level criteria in input order.
func (s *Structure) Criteria() []*Node {
	if s == nil || s.Goal == nil {
		return nil
	}
	return s.Goal.Children
}

// SubCriteria returns the sub-criterion labels of the i-th criterion.
func (s *Structure) SubCriteria(i int) []string {
	crit := s.Criteria()
	if i < 0 || i >= len(crit) {
		return nil
	}
	return crit[i].ChildLabels()
}

// Depth returns the number of levels in the tree, counting the goal.
func (s *Structure) Depth() int {
	if s == nil || s.Goal == nil {
		return 0
	}
	return depth(s.Goal)
}

func depth(n *Node) int {
	max := 0
	for _, c := range n.Children {
		if d := depth(c); d > max {
			max = d
		}
	}
	return max + 1
}

// Target is a node selected for diagnosis together with its ancestry.
type Target struct {
	Node *Node
	// Path holds the labels from the goal down to Node, inclusive.
	Path []string
}

// Parent returns the label of the diagnosed node.
func (t Target) Parent() string {
	return t.Node.Label
}

// IsGoal reports whether the target is the goal node.
func (t Target) IsGoal() bool {
	return len(t.Path) == 1
}

// Targets lists the nodes to diagnose in breadth-first order. The goal is
// always first, even without criteria; every other node is included only
// when it has children.
func (s *Structure) Targets() []Target {
	if s == nil || s.Goal == nil {
		return nil
	}

	targets := []Target{{Node: s.Goal, Path: []string{s.Goal.Label}}}
	queue := []Target{targets[0]}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, child := range cur.Node.Children {
			path := make([]string, len(cur.Path)+1)
			copy(path, cur.Path)
			path[len(cur.Path)] = child.Label

			t := Target{Node: child, Path: path}
			if child.HasChildren() {
				targets = append(targets, t)
			}
			queue = append(queue, t)
		}
	}
	return targets
}

// Walk visits every node depth-first in input order. level is 0 for the goal.
func (s *Structure) Walk(fn func(n *Node, level int)) {
	if s == nil || s.Goal == nil {
		return
	}
	walk(s.Goal, 0, fn)
}

func walk(n *Node, level int, fn func(*Node, int)) {
	fn(n, level)
	for _, c := range n.Children {
		walk(c, level+1, fn)
	}
}

// Outline renders the structure as an indented text outline.
func Outline(s *Structure) string {
	if s == nil || s.Goal == nil {
		return ""
	}

	var b strings.Builder
	s.Walk(func(n *Node, level int) {
		if level == 0 {
			fmt.Fprintf(&b, "Goal: %s\n", n.Label)
			if !n.HasChildren() {
				b.WriteString("  (no criteria)\n")
			}
			return
		}
		indent := strings.Repeat("  ", level-1)
		marker := "-"
		if level > 1 {
			marker = "└"
		}
		fmt.Fprintf(&b, "%s%s %s\n", indent, marker, n.Label)
		if level == 1 && !n.HasChildren() {
			fmt.Fprintf(&b, "%s  (no sub-criteria)\n", indent)
		}
	})
	return b.String()
}
