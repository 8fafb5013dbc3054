package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// renderScorecardModal shows the full criterion-by-criterion review for the
// latest scored answer, including the per-criterion explanations the inline
// summary omits.
func (a AppView) renderScorecardModal() string {
	modalWidth := a.width - 10
	if modalWidth > 76 {
		modalWidth = 76
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Scorecard — " + a.scorecardQuestion)

	// Column widths derive from display width, not byte length
	maxCat := 0
	for _, item := range a.scorecardItems {
		if w := runewidth.StringWidth(item.Category); w > maxCat {
			maxCat = w
		}
	}

	var lines []string
	lines = append(lines, strings.Repeat(" ", modalWidth))

	for _, item := range a.scorecardItems {
		marker := FailStyle.Render("✗")
		if item.Passed() {
			marker = PassStyle.Render("✓")
		}

		category := runewidth.FillRight(item.Category, maxCat)
		score := fmt.Sprintf("%.1f / %.1f", item.Score, item.MaxScore)
		if item.PassScore != nil {
			score += DimStyle.Render(fmt.Sprintf("  (pass %.1f)", *item.PassScore))
		}

		lines = append(lines, fmt.Sprintf(" %s %s  %s", marker, category, score))

		// Show the explanation matching the outcome
		explanation := item.Feedback.Wrong
		if item.Passed() {
			explanation = item.Feedback.Correct
		}
		if explanation != "" {
			wrapped := lipgloss.NewStyle().
				Foreground(dimColor).
				Width(modalWidth - maxCat - 6).
				Render(explanation)
			for _, l := range strings.Split(wrapped, "\n") {
				lines = append(lines, strings.Repeat(" ", maxCat+5)+l)
			}
		}
		lines = append(lines, "")
	}

	if a.scorecardVerdict != nil {
		if *a.scorecardVerdict {
			lines = append(lines, " "+PassStyle.Render("Overall: Correct"))
		} else {
			lines = append(lines, " "+FailStyle.Render("Overall: Not yet correct"))
		}
		lines = append(lines, "")
	}

	bodySection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(modalWidth).
		Render(strings.Join(lines, "\n"))

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(FormatFooter("Esc", "Close"))

	content := strings.Join([]string{titleSection, bodySection, footerSection}, "\n")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}
