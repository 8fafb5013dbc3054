package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"qtui/api"
)

// handleNavigatorKeys drives the question navigator modal.
func (a AppView) handleNavigatorKeys(msg tea.KeyMsg) (AppView, tea.Cmd) {
	// Filter mode captures all printable keys
	if a.navFilterMode {
		switch msg.String() {
		case "esc":
			a.navFilterMode = false
			a.navFilterInput.SetValue("")
			a.filteredQuestions = nil
			return a, nil
		case "enter":
			a.navFilterMode = false
			return a, nil
		default:
			var cmd tea.Cmd
			a.navFilterInput, cmd = a.navFilterInput.Update(msg)

			filterValue := a.navFilterInput.Value()
			if filterValue == "" {
				a.filteredQuestions = nil
			} else {
				questions := a.dataModel.Task.Questions
				targets := make([]string, len(questions))
				for i, q := range questions {
					targets[i] = q.Title
				}

				matches := fuzzy.Find(filterValue, targets)
				a.filteredQuestions = make([]api.Question, len(matches))
				for i, match := range matches {
					a.filteredQuestions[i] = questions[match.Index]
				}
			}

			list := a.navigatorList()
			if a.selectedNavIdx >= len(list) && len(list) > 0 {
				a.selectedNavIdx = len(list) - 1
			}
			return a, cmd
		}
	}

	switch msg.String() {
	case "/":
		a.navFilterMode = true
		a.navFilterInput.Focus()
		return a, textinput.Blink

	case "esc", "tab":
		a.showNavigator = false
		a.navFilterInput.SetValue("")
		a.filteredQuestions = nil
		return a, nil

	case "up", "k":
		if a.selectedNavIdx > 0 {
			a.selectedNavIdx--
		}
		return a, nil

	case "down", "j":
		if a.selectedNavIdx < len(a.navigatorList())-1 {
			a.selectedNavIdx++
		}
		return a, nil

	case "enter":
		list := a.navigatorList()
		if a.selectedNavIdx < len(list) {
			a.showNavigator = false
			a.navFilterInput.SetValue("")
			a.filteredQuestions = nil
			return a.requestNavigate(list[a.selectedNavIdx].ID)
		}
		return a, nil
	}

	return a, nil
}

func (a AppView) navigatorList() []api.Question {
	if a.navFilterInput.Value() != "" {
		return a.filteredQuestions
	}
	if a.dataModel.Task == nil {
		return nil
	}
	return a.dataModel.Task.Questions
}

func (a AppView) renderNavigator() string {
	modalWidth := a.width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}
	modalHeight := a.height - 6

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Questions")

	list := a.navigatorList()

	var header string
	if a.navFilterMode {
		header = a.navFilterInput.View()
	} else {
		total := 0
		if a.dataModel.Task != nil {
			total = len(a.dataModel.Task.Questions)
		}
		if len(list) == total {
			header = fmt.Sprintf("%d questions", total)
		} else {
			header = fmt.Sprintf("%d of %d questions", len(list), total)
		}
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	var lines []string
	maxLines := modalHeight - 8

	if len(list) == 0 {
		emptyMsg := "No questions"
		if a.navFilterMode {
			emptyMsg = "No matches found"
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(list)

		if len(list) > maxLines {
			if a.selectedNavIdx < maxLines/2 {
				endIdx = maxLines
			} else if a.selectedNavIdx >= len(list)-maxLines/2 {
				startIdx = len(list) - maxLines
			} else {
				startIdx = a.selectedNavIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(list); i++ {
			q := list[i]

			indicator := "  "
			if i == a.selectedNavIdx {
				indicator = "▶ "
			}

			status := "  "
			if q.Completed {
				status = PassStyle.Render("✓") + " "
			} else if a.dataModel.IsAiResponding(q.ID) {
				status = SelectedStyle.Render("●") + " "
			}

			title := q.Title
			if i == a.selectedNavIdx {
				title = SelectedStyle.Render(title)
			}

			line := fmt.Sprintf("%s%s%s %s", indicator, status, title, DimStyle.Render("("+q.InputType+")"))
			lines = append(lines, line)
		}
	}

	listSection := lipgloss.NewStyle().
		Width(modalWidth).
		Height(maxLines).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	footer := FormatFooter("j/k", "Navigate", "Enter", "Open", "/", "Filter", "Esc", "Close")
	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := lipgloss.JoinVertical(lipgloss.Left, titleSection, headerSection, listSection, footerSection)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}
