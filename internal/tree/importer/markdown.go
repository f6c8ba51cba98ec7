package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/abhisek/critree/internal/tree"
)

// parseMarkdown reads an outline document:
//
//	# Choose a laptop
//	- Cost
//	  - Unit price
//	  - Warranty
//	- Portability
func parseMarkdown(source string, data []byte) (*tree.Structure, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(data))

	var goal *tree.Node
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if goal == nil && node.Level == 1 {
				goal = &tree.Node{Label: inlineText(node, data)}
			}
		case *ast.List:
			if goal == nil {
				return nil, &ErrInvalidInput{
					Source: source,
					Line:   lineOf(node, data),
					Err:    errors.New("list appears before the goal heading"),
				}
			}
			children, err := listNodes(source, node, data)
			if err != nil {
				return nil, err
			}
			goal.Children = append(goal.Children, children...)
		}
	}

	if goal == nil {
		return nil, &ErrInvalidInput{Source: source, Err: fmt.Errorf("no level-1 heading for the goal")}
	}
	return &tree.Structure{Goal: goal}, nil
}

// listNodes converts list items, recursing into nested lists. An item with
// no text is skipped unless it has nested items, which is an error.
func listNodes(source string, list *ast.List, src []byte) ([]*tree.Node, error) {
	var out []*tree.Node
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		li, ok := item.(*ast.ListItem)
		if !ok {
			continue
		}

		n := &tree.Node{}
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.TextBlock, *ast.Paragraph:
				if n.Label == "" {
					n.Label = inlineText(c, src)
				}
			case *ast.List:
				children, err := listNodes(source, c, src)
				if err != nil {
					return nil, err
				}
				n.Children = append(n.Children, children...)
			}
		}
		if n.Label == "" {
			if len(n.Children) > 0 {
				return nil, &ErrInvalidInput{
					Source: source,
					Line:   lineOf(li, src),
					Err:    errors.New("list item has nested items but no label"),
				}
			}
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	collectText(n, src, &b)
	return strings.TrimSpace(b.String())
}

func collectText(n ast.Node, src []byte, b *strings.Builder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(util.UnescapePunctuations(t.Segment.Value(src)))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			collectText(c, src, b)
		}
	}
}

// lineOf returns the 1-based line of the first text segment under n.
func lineOf(n ast.Node, src []byte) int {
	var start = -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			start = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if start < 0 {
		return 0
	}
	return strings.Count(string(src[:start]), "\n") + 1
}
