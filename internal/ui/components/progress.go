package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/ui/theme"
)

// PassTrack shows how far a diagnosis pass has got: one cell per target,
// finished cells colored by their grade, followed by a done/total counter.
type PassTrack struct {
	Grades []diagnosis.Grade
	Total  int
	Width  int
}

// View renders the track. When there are more targets than columns the
// cells are scaled down proportionally.
func (p PassTrack) View() string {
	counter := fmt.Sprintf(" %d/%d", len(p.Grades), p.Total)
	cells := max(p.Width-lipgloss.Width(counter), 4)
	if p.Total <= 0 {
		return theme.ProgressFilled.Render(strings.Repeat(" ", cells)) + counter
	}

	per := max(cells/p.Total, 1)
	var sb strings.Builder
	for i := range p.Total {
		if per*i >= cells {
			break
		}
		block := strings.Repeat(" ", per)
		if i < len(p.Grades) {
			sb.WriteString(lipgloss.NewStyle().Background(GradeColor(p.Grades[i])).Render(block))
		} else {
			sb.WriteString(theme.ProgressEmpty.Render(block))
		}
	}
	return sb.String() + lipgloss.NewStyle().Foreground(theme.TextDim).Render(counter)
}
