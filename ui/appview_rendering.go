package ui

import (
	"fmt"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"qtui/api"
	"qtui/config"
	appmodel "qtui/model"
)

func (a AppView) renderChatView() string {
	q := a.dataModel.CurrentQuestion()

	title := "No task loaded"
	if q != nil {
		title = fmt.Sprintf("%s  %s", TitleStyle.Render(q.Title), DimStyle.Render(a.questionPosition()))
		if q.Completed {
			title += "  " + PassStyle.Render("✓ completed")
		}
	}

	separator := DimStyle.Render(strings.Repeat("─", a.width))

	input := a.textarea.View()
	if a.audioPathMode {
		input = a.audioPathInput.View() + "\n" + DimStyle.Render("Enter the path of a raw PCM recording") + "\n"
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		title,
		separator,
		a.viewport.View(),
		input,
		a.statusBar(),
	)
}

func (a AppView) statusBar() string {
	var parts []string

	if a.dataModel.Offline() {
		parts = append(parts, SelectedStyle.Render("offline"))
	}
	if a.statusNotice != "" {
		parts = append(parts, a.statusNotice)
	}

	footer := FormatFooter(
		"Enter", "Submit",
		"Tab", "Questions",
		"^P/^N", "Prev/Next",
		"^R", "Retry",
		"^O", "Scorecard",
		"^C", "Quit",
	)
	parts = append(parts, footer)

	return StatusStyle.Render(strings.Join(parts, "  ·  "))
}

func (a *AppView) updateViewportContent(gotoBottom bool) {
	q := a.dataModel.CurrentQuestion()
	if q == nil {
		a.viewport.SetContent("")
		return
	}

	var content strings.Builder

	// Question prompt leads the transcript
	content.WriteString(AIStyle.Render(q.Prompt))
	content.WriteString("\n\n")

	history := a.dataModel.History(q.ID)
	for _, msg := range history {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		switch {
		case msg.Sender == appmodel.SenderUser:
			content.WriteString(fmt.Sprintf("%s %s\n", timestamp, UserStyle.Render("You")))
			if msg.Type == appmodel.TypeAudio {
				content.WriteString(DimStyle.Render("  [audio answer]") + "\n\n")
			} else {
				for _, line := range strings.Split(msg.Content, "\n") {
					content.WriteString("  " + line + "\n")
				}
				content.WriteString("\n")
			}

		case msg.IsError:
			content.WriteString(fmt.Sprintf("%s %s\n", timestamp, ErrorStyle.Render("Error")))
			content.WriteString("  " + ErrorStyle.Render(msg.Content) + "\n\n")

		default:
			content.WriteString(fmt.Sprintf("%s %s\n", timestamp, AIStyle.Render("AI")))
			rendered := msg.Rendered
			if rendered == "" {
				rendered = msg.Content
			}
			if rendered != "" {
				content.WriteString(rendered)
				if !strings.HasSuffix(rendered, "\n") {
					content.WriteString("\n")
				}
			}
			if len(msg.Scorecard) > 0 {
				content.WriteString(a.renderScorecardSummary(msg.Scorecard, msg.IsCorrect))
			}
			content.WriteString("\n")
		}
	}

	// Waiting line while a submission is in flight without feedback yet
	if a.dataModel.Submitting[q.ID] {
		content.WriteString(fmt.Sprintf("%s %s Waiting for review...\n",
			DimStyle.Render(time.Now().Format("[15:04]")), a.loadingSpinner.View()))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// renderScorecardSummary is the inline one-line-per-criterion view shown
// under a reviewed answer. Ctrl+O opens the full detail modal.
func (a AppView) renderScorecardSummary(items []api.ScorecardItem, isCorrect *bool) string {
	var b strings.Builder

	b.WriteString(DimStyle.Render("  ── scorecard ──") + "\n")
	for _, item := range items {
		marker := FailStyle.Render("✗")
		if item.Passed() {
			marker = PassStyle.Render("✓")
		}
		b.WriteString(fmt.Sprintf("  %s %s  %s\n", marker, item.Category,
			DimStyle.Render(fmt.Sprintf("%.1f/%.1f", item.Score, item.MaxScore))))
	}

	if isCorrect != nil {
		if *isCorrect {
			b.WriteString("  " + PassStyle.Render("Correct") + "\n")
		} else {
			b.WriteString("  " + FailStyle.Render("Not yet correct") + "\n")
		}
	}

	return b.String()
}

func (a AppView) renderMarkdownAsync(questionID, messageID, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		startTime := time.Now()

		// Disable autolink so terminal emulators handle URL detection
		defaultExt := markdown.Extensions()
		customExt := defaultExt &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] markdown rendered in %v (%d chars)", time.Since(startTime), len(content))
		}

		return appmodel.MarkdownRenderedMsg{
			QuestionID: questionID,
			MessageID:  messageID,
			Rendered:   string(rendered),
		}
	}
}
