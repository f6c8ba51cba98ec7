package importtree

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/router"
	"github.com/abhisek/critree/internal/screen"
	"github.com/abhisek/critree/internal/screens/credential"
	"github.com/abhisek/critree/internal/session"
	"github.com/abhisek/critree/internal/tree"
	"github.com/abhisek/critree/internal/tree/importer"
	"github.com/abhisek/critree/internal/ui/components"
	"github.com/abhisek/critree/internal/ui/layout"
	"github.com/abhisek/critree/internal/ui/theme"
)

// ImportScreen loads a structure document and previews it before running.
type ImportScreen struct {
	sess      *session.Session
	input     components.TextInput
	structure *tree.Structure
	errMsg    string
}

var _ screen.Screen = (*ImportScreen)(nil)
var _ screen.KeyHintProvider = (*ImportScreen)(nil)

// New creates the import screen. A non-empty path is loaded immediately.
func New(sess *session.Session, path string) *ImportScreen {
	s := &ImportScreen{
		sess:  sess,
		input: components.NewTextInput("File", "tree.yaml, tree.json or outline.md", 0),
	}
	if path != "" {
		s.input.SetValue(path)
		s.load()
	}
	return s
}

func (s *ImportScreen) Title() string {
	return "Import Tree"
}

func (s *ImportScreen) KeyHints() []layout.KeyHint {
	if s.structure != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Diagnose"},
			{Key: "Ctrl+O", Description: "Other file"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Load"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ImportScreen) Init() tea.Cmd {
	if s.structure != nil {
		return nil
	}
	return s.input.Focus()
}

// Structure returns the loaded structure, or nil.
func (s *ImportScreen) Structure() *tree.Structure {
	return s.structure
}

func (s *ImportScreen) load() {
	path := strings.TrimSpace(s.input.Value())
	if path == "" {
		s.errMsg = "Enter a file path."
		return
	}
	st, err := importer.Load(path)
	if err != nil {
		s.structure = nil
		s.errMsg = describe(err)
		return
	}
	s.structure = st
	s.errMsg = ""
	s.input.Blur()
}

func describe(err error) string {
	var inv *importer.ErrInvalidInput
	if errors.As(err, &inv) && inv.Line > 0 {
		return fmt.Sprintf("%s line %d: %v", inv.Source, inv.Line, inv.Err)
	}
	return err.Error()
}

func (s *ImportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter":
			if s.structure == nil {
				s.load()
				return s, nil
			}
			next := credential.Start(s.sess, s.structure)
			return s, router.Go(next)
		case "ctrl+o":
			s.structure = nil
			return s, s.input.Focus()
		}
	}

	if s.structure != nil {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ImportScreen) View(width, height int) string {
	cw := width - 6
	var sections []string
	sections = append(sections, s.input.View())

	if s.errMsg != "" {
		sections = append(sections, "", theme.Failure.Width(cw).Render(s.errMsg))
	}

	if s.structure != nil {
		head := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
		sections = append(sections, "", head.Render("Structure"),
			lipgloss.NewStyle().Foreground(theme.Text).Render(strings.TrimRight(tree.Outline(s.structure), "\n")))

		targets := s.structure.Targets()
		sections = append(sections, "", head.Render(fmt.Sprintf("Will diagnose %d nodes", len(targets))))
		for _, t := range targets {
			line := fmt.Sprintf("• %s (%d)", strings.Join(t.Path, " › "), len(t.Node.Children))
			if adv := diagnosis.CheckCardinality(len(t.Node.Children)); adv != diagnosis.AdvisoryNone {
				line += "  " + theme.Notice.Render(string(adv))
			}
			sections = append(sections, line)
		}
	} else {
		sections = append(sections, "", theme.Hint.Render(
			"JSON/YAML use {name, sub_criteria}; Markdown uses a # goal heading and nested bullets."))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(sections, "\n"))
}
