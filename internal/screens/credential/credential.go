package credential

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/llm"
	"github.com/abhisek/critree/internal/router"
	"github.com/abhisek/critree/internal/screen"
	"github.com/abhisek/critree/internal/screens/results"
	"github.com/abhisek/critree/internal/session"
	"github.com/abhisek/critree/internal/tree"
	"github.com/abhisek/critree/internal/ui/components"
	"github.com/abhisek/critree/internal/ui/layout"
	"github.com/abhisek/critree/internal/ui/theme"
)

// Start returns the screen that begins diagnosing structure: the results
// screen when the secret store has a key, otherwise the credential prompt.
func Start(sess *session.Session, structure *tree.Structure) screen.Screen {
	if sess.NeedsCredential() {
		return New(sess, structure)
	}
	return results.New(sess, structure)
}

// CredentialScreen asks for an API key in a masked field. The key is only
// used for this process.
type CredentialScreen struct {
	sess      *session.Session
	structure *tree.Structure
	input     components.TextInput
	errMsg    string
}

var _ screen.Screen = (*CredentialScreen)(nil)
var _ screen.KeyHintProvider = (*CredentialScreen)(nil)

// New creates the credential prompt for the session's provider.
func New(sess *session.Session, structure *tree.Structure) *CredentialScreen {
	return &CredentialScreen{
		sess:      sess,
		structure: structure,
		input:     components.NewPasswordInput("API key", "paste your key"),
	}
}

func (c *CredentialScreen) Title() string {
	return "API Key"
}

func (c *CredentialScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (c *CredentialScreen) Init() tea.Cmd {
	return c.input.Focus()
}

func (c *CredentialScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		if err := c.sess.SetCredential(c.input.Value()); err != nil {
			c.errMsg = "Enter a key to continue."
			return c, nil
		}
		next := results.New(c.sess, c.structure)
		return c, router.Swap(next)
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if c.input.Value() != "" {
		c.errMsg = ""
	}
	return c, cmd
}

func (c *CredentialScreen) View(width, height int) string {
	provider := c.sess.Provider()
	cw := width - 8
	if cw > 72 {
		cw = 72
	}

	text := lipgloss.NewStyle().Foreground(theme.Text).Width(cw)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Width(cw)

	sections := []string{
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
			Render(fmt.Sprintf("No %s API key found", provider)),
		"",
		text.Render("The secret store has no key for this provider. " +
			"Type one below to use it for this session only."),
		"",
		c.input.View(),
		"",
		dim.Render(fmt.Sprintf("To skip this step next time, set %s or run `critree auth set-key --provider %s`.",
			llm.KeyEnvVar(provider), provider)),
	}
	if c.errMsg != "" {
		sections = append(sections, "", theme.Failure.Render(c.errMsg))
	}

	card := theme.Card.Padding(1, 2).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
