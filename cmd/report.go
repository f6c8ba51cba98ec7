package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/abhisek/critree/internal/diagnosis"
)

var gradeOrder = []diagnosis.Grade{
	diagnosis.GradeDanger,
	diagnosis.GradeWarn,
	diagnosis.GradeGood,
	diagnosis.GradeUnknown,
	diagnosis.GradeError,
}

func gradeColor(g diagnosis.Grade) *color.Color {
	switch g {
	case diagnosis.GradeGood:
		return color.New(color.FgGreen, color.Bold)
	case diagnosis.GradeWarn:
		return color.New(color.FgYellow, color.Bold)
	case diagnosis.GradeDanger:
		return color.New(color.FgRed, color.Bold)
	case diagnosis.GradeError:
		return color.New(color.FgMagenta, color.Bold)
	}
	return color.New(color.FgHiBlack, color.Bold)
}

// reporter prints diagnosis results for the terminal. Detail panels are
// markdown and go through glamour.
type reporter struct {
	w  io.Writer
	md *glamour.TermRenderer
}

func newReporter(w io.Writer, styled bool) *reporter {
	style := "notty"
	if styled {
		style = "dark"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(88),
	)
	if err != nil {
		md = nil
	}
	return &reporter{w: w, md: md}
}

func (rp *reporter) markdown(s string) string {
	if rp.md == nil {
		return s
	}
	out, err := rp.md.Render(s)
	if err != nil {
		return s
	}
	return strings.Trim(out, "\n")
}

func (rp *reporter) result(r diagnosis.Result) {
	head := color.New(color.Bold).Sprintf("%d. %s", r.Position+1, r.Node)
	if len(r.Path) > 1 {
		head += color.New(color.Faint).Sprintf("  %s", strings.Join(r.Path, " › "))
	}
	fmt.Fprintln(rp.w, head)
	if len(r.Children) > 0 {
		fmt.Fprintln(rp.w, color.New(color.Faint).Sprint("   compares: "+strings.Join(r.Children, ", ")))
	}

	for _, p := range diagnosis.Panels(r) {
		switch p.Kind {
		case diagnosis.PanelGrade:
			fmt.Fprintf(rp.w, "   %s %s", "Grade:", gradeColor(r.Grade).Sprint(strings.ToUpper(p.Body)))
			if r.GradeText != "" && !strings.EqualFold(r.GradeText, p.Body) {
				fmt.Fprintf(rp.w, "  (%s)", r.GradeText)
			}
			fmt.Fprintln(rp.w)
		case diagnosis.PanelDetail:
			fmt.Fprintf(rp.w, "   %s\n", color.New(color.Underline).Sprint(p.Title))
			fmt.Fprintln(rp.w, indent(rp.markdown(p.Body), "   "))
		case diagnosis.PanelAdvisory:
			fmt.Fprintf(rp.w, "   %s %s\n", color.YellowString("⚠"), p.Body)
		case diagnosis.PanelError:
			fmt.Fprintf(rp.w, "   %s %s\n", color.RedString(p.Title+":"), p.Body)
		default:
			fmt.Fprintf(rp.w, "   %s %s\n", color.New(color.Bold).Sprint(p.Title+":"), p.Body)
		}
	}
	fmt.Fprintln(rp.w)
}

// tally prints "N danger · N good" style totals in severity order.
func (rp *reporter) tally(results []diagnosis.Result) {
	fmt.Fprintln(rp.w, tallyLine(results, func(g diagnosis.Grade, s string) string {
		return gradeColor(g).Sprint(s)
	}))
}

func tallyLine(results []diagnosis.Result, paint func(diagnosis.Grade, string) string) string {
	counts := make(map[diagnosis.Grade]int)
	for _, r := range results {
		counts[r.Grade]++
	}
	return joinCounts(counts, paint)
}

// gradeSummary renders a stored run's grade tally, uncolored.
func gradeSummary(grades map[string]int) string {
	counts := make(map[diagnosis.Grade]int, len(grades))
	for g, n := range grades {
		counts[diagnosis.Grade(g)] = n
	}
	return joinCounts(counts, func(_ diagnosis.Grade, s string) string { return s })
}

func joinCounts(counts map[diagnosis.Grade]int, paint func(diagnosis.Grade, string) string) string {
	var parts []string
	for _, g := range gradeOrder {
		if n := counts[g]; n > 0 {
			parts = append(parts, paint(g, fmt.Sprintf("%d %s", n, g)))
		}
	}
	if len(parts) == 0 {
		return "no nodes diagnosed"
	}
	return strings.Join(parts, " · ")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
