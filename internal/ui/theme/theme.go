// Package theme holds the critree palette and the few shared styles built
// on it.
package theme

import "charm.land/lipgloss/v2"

// Palette. Greens for the tree, warm tones for warnings.
var (
	Primary   = lipgloss.Color("#4ADE80")
	Secondary = lipgloss.Color("#2DD4BF")
	Accent    = lipgloss.Color("#FB923C")
	Success   = lipgloss.Color("#22C55E")
	Warning   = lipgloss.Color("#FACC15")
	Error     = lipgloss.Color("#EF4444")
	Text      = lipgloss.Color("#E7E5E4")
	TextDim   = lipgloss.Color("#A8A29E")
	BgDark    = lipgloss.Color("#1C1917")
	BgCard    = lipgloss.Color("#292524")
	Border    = lipgloss.Color("#44403C")
)

// Grade colors. Unknown and error stay distinct so a failed call is never
// read as an unparsed reply.
var (
	GradeGood    = Success
	GradeWarn    = Warning
	GradeDanger  = Error
	GradeUnknown = TextDim
	GradeError   = Accent
)

var (
	Hint    = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Notice  = lipgloss.NewStyle().Foreground(Warning)
	Failure = lipgloss.NewStyle().Foreground(Error).Bold(true)

	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgDark).
			Bold(true).
			Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)
