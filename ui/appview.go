package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qtui/api"
	appmodel "qtui/model"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	// Loading spinner (bubbles/spinner)
	loadingSpinner spinner.Model

	// Question navigator
	showNavigator     bool
	selectedNavIdx    int
	navFilterMode     bool
	navFilterInput    textinput.Model
	filteredQuestions []api.Question

	// Exam submission confirmation
	confirmation ConfirmationState

	// Audio answer path input
	audioPathMode  bool
	audioPathInput textinput.Model

	// Code draft state: questions whose draft has been requested already
	draftRequested map[string]bool

	// Scorecard detail modal
	showScorecard     bool
	scorecardItems    []api.ScorecardItem
	scorecardVerdict  *bool
	scorecardQuestion string

	// Startup/data errors surfaced in the status line
	statusNotice string

	// Task load failure (fatal for the session)
	loadError string
}

func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Type your answer here..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter submits (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	navFilterInput := textinput.New()
	navFilterInput.Prompt = "Filter: "
	navFilterInput.CharLimit = 64

	audioPathInput := textinput.New()
	audioPathInput.Prompt = "PCM file: "
	audioPathInput.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	return AppView{
		dataModel:      dataModel,
		textarea:       ta,
		viewport:       vp,
		loadingSpinner: sp,
		navFilterInput: navFilterInput,
		audioPathInput: audioPathInput,
		draftRequested: make(map[string]bool),
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.dataModel.LoadTask(),
		a.dataModel.LoadHistory(),
	)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Fatal load error
	// 2. Exam confirmation
	// 3. Question navigator
	// 4. Scorecard detail
	// 5. Main chat view

	if a.loadError != "" {
		modal := NewErrorModal("Failed to Load Task", a.loadError)
		modal.width = a.width
		modal.height = a.height
		return modal.View()
	}

	if a.confirmation.Active {
		return RenderConfirmationModal(a.confirmation, a.width, a.height)
	}

	if a.showNavigator {
		return a.renderNavigator()
	}

	if a.showScorecard {
		return a.renderScorecardModal()
	}

	return a.renderChatView()
}

// enterQuestion refreshes the input area and viewport after navigation and
// kicks off a draft load for code questions.
func (a AppView) enterQuestion() (AppView, tea.Cmd) {
	q := a.dataModel.CurrentQuestion()
	if q == nil {
		return a, nil
	}

	a.audioPathMode = false
	a.audioPathInput.SetValue("")
	a.textarea.Reset()
	a.textarea.Placeholder = inputPlaceholder(q)
	a.updateViewportContent(true)

	var cmd tea.Cmd
	if q.InputType == appmodel.TypeCode && !a.draftRequested[q.ID] {
		a.draftRequested[q.ID] = true
		cmd = a.dataModel.LoadDraft(q.ID)
	}
	return a, cmd
}

func inputPlaceholder(q *api.Question) string {
	switch q.InputType {
	case appmodel.TypeAudio:
		return "Press Ctrl+A to submit a recorded answer..."
	case appmodel.TypeCode:
		return "Write your code here..."
	default:
		return "Type your answer here..."
	}
}

func (a AppView) questionPosition() string {
	if a.dataModel.Task == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", a.dataModel.CurrentIndex+1, len(a.dataModel.Task.Questions))
}
