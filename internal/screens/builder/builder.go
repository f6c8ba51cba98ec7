package builder

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
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

// field addresses one slot of the form.
type field struct {
	parent tree.Parent // GoalParent for criteria, criterion index for sub-criteria
	slot   int         // -1 for the goal itself
}

func (f field) isGoal() bool { return f.parent == tree.GoalParent && f.slot < 0 }

func (f field) label() string {
	switch {
	case f.isGoal():
		return "Goal"
	case f.parent == tree.GoalParent:
		return fmt.Sprintf("Criterion %d", f.slot+1)
	}
	return fmt.Sprintf("  Sub %d.%d", int(f.parent)+1, f.slot+1)
}

// BuilderScreen is the goal/criteria/sub-criteria form. It edits one slot at
// a time through a single text input; every other slot is read from the
// tree builder, which owns the slot counts.
type BuilderScreen struct {
	sess    *session.Session
	builder *tree.Builder
	input   components.TextInput
	focus   field
	notice  string
	saveDir string
}

var _ screen.Screen = (*BuilderScreen)(nil)
var _ screen.KeyHintProvider = (*BuilderScreen)(nil)

// New creates an empty form.
func New(sess *session.Session) *BuilderScreen {
	b := &BuilderScreen{
		sess:    sess,
		builder: sess.NewBuilder(),
		input:   components.NewTextInput("", "", 120),
		focus:   field{parent: tree.GoalParent, slot: -1},
		saveDir: ".",
	}
	b.load()
	return b
}

func (b *BuilderScreen) Title() string {
	return "New Diagnosis"
}

func (b *BuilderScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab/↑↓", Description: "Move"},
		{Key: "Ctrl+N", Description: "Add slot"},
		{Key: "Ctrl+S", Description: "Save"},
		{Key: "Ctrl+R", Description: "Diagnose"},
		{Key: "Esc", Description: "Back"},
	}
}

func (b *BuilderScreen) Init() tea.Cmd {
	return b.input.Focus()
}

// fields lists the visible slots in form order. Sub-criterion slots appear
// only under a non-blank criterion.
func (b *BuilderScreen) fields() []field {
	out := []field{{parent: tree.GoalParent, slot: -1}}
	for i := 0; i < b.builder.SlotCount(tree.GoalParent); i++ {
		out = append(out, field{parent: tree.GoalParent, slot: i})
		if strings.TrimSpace(b.value(field{parent: tree.GoalParent, slot: i})) == "" {
			continue
		}
		for j := 0; j < b.builder.SlotCount(tree.Parent(i)); j++ {
			out = append(out, field{parent: tree.Parent(i), slot: j})
		}
	}
	return out
}

func (b *BuilderScreen) value(f field) string {
	switch {
	case f.isGoal():
		return b.builder.Goal()
	case f.parent == tree.GoalParent:
		return b.builder.Criterion(f.slot)
	}
	return b.builder.SubCriterion(int(f.parent), f.slot)
}

// commit writes the input back into the focused slot.
func (b *BuilderScreen) commit() {
	v := b.input.Value()
	switch {
	case b.focus.isGoal():
		b.builder.SetGoal(v)
	case b.focus.parent == tree.GoalParent:
		_ = b.builder.SetCriterion(b.focus.slot, v)
	default:
		_ = b.builder.SetSubCriterion(int(b.focus.parent), b.focus.slot, v)
	}
}

// load copies the focused slot into the input.
func (b *BuilderScreen) load() {
	b.input.SetValue(b.value(b.focus))
	b.input.Model.CursorEnd()
}

func (b *BuilderScreen) move(delta int) {
	b.commit()
	fields := b.fields()
	idx := 0
	for i, f := range fields {
		if f == b.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)
	b.focus = fields[idx]
	b.load()
}

// grow adds a slot below the focused one: a criterion under the goal, a
// sub-criterion under a criterion, a sibling under a sub-criterion.
func (b *BuilderScreen) grow() {
	b.commit()
	parent := b.focus.parent
	if !b.focus.isGoal() && b.focus.parent == tree.GoalParent {
		parent = tree.Parent(b.focus.slot)
		if strings.TrimSpace(b.value(b.focus)) == "" {
			b.notice = "Name the criterion before adding sub-criteria."
			return
		}
	}

	if err := b.builder.Grow(parent); err != nil {
		if errors.Is(err, tree.ErrCapacity) {
			b.notice = fmt.Sprintf("%s already has the maximum of %d slots.", parentName(parent), b.builder.Capacity())
		} else {
			b.notice = err.Error()
		}
		return
	}

	b.focus = field{parent: parent, slot: b.builder.SlotCount(parent) - 1}
	b.notice = ""
	b.load()
}

func parentName(p tree.Parent) string {
	if p == tree.GoalParent {
		return "The goal"
	}
	return fmt.Sprintf("Criterion %d", int(p)+1)
}

// Structure returns the structure the form currently describes.
func (b *BuilderScreen) Structure() *tree.Structure {
	b.commit()
	return b.builder.Build()
}

func (b *BuilderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			b.move(1)
			return b, nil
		case "shift+tab", "up":
			b.move(-1)
			return b, nil
		case "ctrl+n":
			b.grow()
			return b, nil
		case "ctrl+s":
			b.save()
			return b, nil
		case "ctrl+r":
			st := b.Structure()
			if err := st.Validate(); err != nil {
				b.notice = "Enter a goal before running the diagnosis."
				return b, nil
			}
			next := credential.Start(b.sess, st)
			return b, router.Go(next)
		}
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	b.commit()
	return b, cmd
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func (b *BuilderScreen) save() {
	st := b.Structure()
	if err := st.Validate(); err != nil {
		b.notice = "Enter a goal before saving."
		return
	}
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(st.Goal.Label), "-"), "-")
	if slug == "" {
		slug = "criteria"
	}
	path := filepath.Join(b.saveDir, slug+".yaml")
	if err := importer.Save(st, path); err != nil {
		b.notice = err.Error()
		return
	}
	b.notice = "Saved to " + path
}

func (b *BuilderScreen) View(width, height int) string {
	formWidth := width / 2
	if layout.IsCompactWidth(width) {
		formWidth = width - 4
	}

	var rows []string
	for _, f := range b.fields() {
		name := lipgloss.NewStyle().Width(14).Foreground(theme.TextDim)
		if f == b.focus {
			rows = append(rows, name.Foreground(theme.Primary).Bold(true).Render(f.label())+b.input.View())
			continue
		}
		v := b.value(f)
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if strings.TrimSpace(v) == "" {
			v = "…"
			style = style.Foreground(theme.Border)
		}
		rows = append(rows, name.Render(f.label())+"  "+style.Render(v))
	}

	if b.builder.Capacity() > 0 {
		rows = append(rows, "", theme.Hint.Render(
			fmt.Sprintf("Up to %d slots per parent.", b.builder.Capacity())))
	}
	if b.notice != "" {
		rows = append(rows, "", theme.Notice.Render(b.notice))
	}

	form := lipgloss.NewStyle().Width(formWidth).Padding(1, 2).Render(strings.Join(rows, "\n"))
	if layout.IsCompactWidth(width) {
		return form
	}

	preview := lipgloss.NewStyle().Width(width-formWidth-2).Padding(1, 2).
		Render(renderPreview(b.builder.Build()))
	return lipgloss.JoinHorizontal(lipgloss.Top, form, preview)
}

// renderPreview shows the built structure and the advisory each target will
// carry.
func renderPreview(st *tree.Structure) string {
	head := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	if st.Validate() != nil {
		return head.Render("Structure") + "\n" + theme.Hint.Render("Start with a goal.")
	}

	var b strings.Builder
	b.WriteString(head.Render("Structure") + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(tree.Outline(st)))

	b.WriteString("\n" + head.Render("Will diagnose") + "\n")
	for _, t := range st.Targets() {
		line := fmt.Sprintf("• %s (%d)", t.Parent(), len(t.Node.Children))
		if adv := diagnosis.CheckCardinality(len(t.Node.Children)); adv != diagnosis.AdvisoryNone {
			line += "  " + theme.Notice.Render(string(adv))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
