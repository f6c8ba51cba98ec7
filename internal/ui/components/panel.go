package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/ui/theme"
)

// GradeColor maps a grade to its theme color.
func GradeColor(g diagnosis.Grade) color.Color {
	switch g {
	case diagnosis.GradeGood:
		return theme.GradeGood
	case diagnosis.GradeWarn:
		return theme.GradeWarn
	case diagnosis.GradeDanger:
		return theme.GradeDanger
	case diagnosis.GradeError:
		return theme.GradeError
	}
	return theme.GradeUnknown
}

// GradeIcon returns a one-cell marker for a grade.
func GradeIcon(g diagnosis.Grade) string {
	switch g {
	case diagnosis.GradeGood:
		return "●"
	case diagnosis.GradeWarn:
		return "▲"
	case diagnosis.GradeDanger:
		return "■"
	case diagnosis.GradeError:
		return "✗"
	}
	return "?"
}

// GradeBadge renders the grade as a colored label.
func GradeBadge(g diagnosis.Grade) string {
	return lipgloss.NewStyle().
		Foreground(GradeColor(g)).
		Bold(true).
		Render(fmt.Sprintf("%s %s", GradeIcon(g), strings.ToUpper(string(g))))
}

// RenderPanel renders one panel as a bordered card. The border takes the
// grade color for grade and error panels.
func RenderPanel(p diagnosis.Panel, grade diagnosis.Grade, width int) string {
	border := theme.Border
	titleColor := theme.Secondary
	body := p.Body

	switch p.Kind {
	case diagnosis.PanelGrade:
		border = GradeColor(grade)
		titleColor = GradeColor(grade)
		body = GradeBadge(grade)
	case diagnosis.PanelError:
		border = theme.GradeError
		titleColor = theme.GradeError
	case diagnosis.PanelAdvisory:
		titleColor = theme.Warning
		body = theme.Notice.Render("⚠ " + body)
	}

	title := lipgloss.NewStyle().Foreground(titleColor).Bold(true).Render(p.Title)
	if width < 10 {
		width = 10
	}
	return theme.Card.
		BorderForeground(border).
		Width(width).
		Render(title + "\n" + body)
}

// RenderResult renders the heading and every panel of a result.
func RenderResult(r diagnosis.Result, width int) string {
	heading := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
		Render(fmt.Sprintf("%d. %s", r.Position+1, r.Node))
	if len(r.Path) > 1 {
		heading += lipgloss.NewStyle().Foreground(theme.TextDim).
			Render("  " + strings.Join(r.Path, " › "))
	}

	parts := []string{heading}
	if len(r.Children) > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.TextDim).
			Render("compares: "+strings.Join(r.Children, ", ")))
	}
	for _, p := range diagnosis.Panels(r) {
		parts = append(parts, RenderPanel(p, r.Grade, width))
	}
	return strings.Join(parts, "\n")
}
