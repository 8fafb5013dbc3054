package ui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	appmodel "qtui/model"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Update spinner FIRST so TickMsg keeps the waiting indicator animated
	if q := a.dataModel.CurrentQuestion(); q != nil && a.dataModel.IsAiResponding(q.ID) {
		if _, ok := msg.(spinner.TickMsg); ok {
			a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
			cmds = append(cmds, cmd)
			a.updateViewportContent(false)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for title (1), separator (1), textarea (3), status bar (1)
		a.viewport.Width = a.width
		a.viewport.Height = a.height - 6
		a.textarea.SetWidth(a.width)

		a.ready = true
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		return a.handleKey(msg, cmds)

	case appmodel.TaskLoadedMsg,
		appmodel.HistoryLoadedMsg,
		appmodel.DraftLoadedMsg,
		appmodel.DraftSavedMsg,
		appmodel.AudioHydratedMsg,
		appmodel.TurnPersistedMsg,
		appmodel.MarkdownRenderedMsg:
		return a.handleDataMessage(msg)

	case appmodel.StreamOpenedMsg,
		appmodel.StreamFeedbackMsg,
		appmodel.StreamDoneMsg,
		appmodel.StreamErrorMsg,
		appmodel.ExamConfirmRequiredMsg,
		appmodel.AudioReadyMsg,
		appmodel.AudioErrorMsg:
		return a.handleStreamMessage(msg)
	}

	// Forward everything else to the viewport (mouse wheel, etc.)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Always-global quit
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// Confirmation modal captures everything
	if a.confirmation.Active {
		state := a.confirmation
		switch msg.String() {
		case "y", "Y", "enter":
			a.confirmation = ConfirmationState{}
			if state.Kind == confirmNavigate {
				view, cmd := a.performNavigate(state.NavTarget)
				return view, cmd
			}
			submitCmd := a.dataModel.ConfirmPending(state.QuestionID)
			a.updateViewportContent(true)
			return a, tea.Batch(submitCmd, a.loadingSpinner.Tick)
		case "n", "N", "esc":
			a.confirmation = ConfirmationState{}
			if state.Kind == confirmExamSubmit {
				a.dataModel.CancelPending(state.QuestionID)
			}
			return a, nil
		}
		return a, nil
	}

	if a.showNavigator {
		view, cmd := a.handleNavigatorKeys(msg)
		return view, cmd
	}

	if a.showScorecard {
		switch msg.String() {
		case "esc", "q", "enter", "ctrl+o":
			a.showScorecard = false
		}
		return a, nil
	}

	if a.audioPathMode {
		switch msg.String() {
		case "esc":
			a.audioPathMode = false
			a.audioPathInput.SetValue("")
			return a, nil
		case "enter":
			path := strings.TrimSpace(a.audioPathInput.Value())
			a.audioPathMode = false
			a.audioPathInput.SetValue("")
			if path == "" {
				return a, nil
			}
			a.updateViewportContent(true)
			return a, tea.Batch(a.dataModel.SubmitAudioFile(path), a.loadingSpinner.Tick)
		default:
			a.audioPathInput, cmd = a.audioPathInput.Update(msg)
			return a, cmd
		}
	}

	switch msg.String() {
	case "tab":
		if a.dataModel.Task != nil {
			a.showNavigator = true
			a.selectedNavIdx = a.dataModel.CurrentIndex
		}
		return a, nil

	case "ctrl+p":
		return a.requestNavigateDelta(-1)

	case "ctrl+n":
		return a.requestNavigateDelta(1)

	case "ctrl+r":
		retryCmd := a.dataModel.Retry()
		if retryCmd != nil {
			a.updateViewportContent(true)
			return a, tea.Batch(retryCmd, a.loadingSpinner.Tick)
		}
		return a, nil

	case "ctrl+y":
		// Copy the latest AI feedback for the current question
		if q := a.dataModel.CurrentQuestion(); q != nil {
			history := a.dataModel.History(q.ID)
			for i := len(history) - 1; i >= 0; i-- {
				if history[i].Sender == appmodel.SenderAI && !history[i].IsError {
					clipboard.WriteAll(history[i].Content)
					break
				}
			}
		}
		return a, nil

	case "ctrl+a":
		q := a.dataModel.CurrentQuestion()
		if q != nil && q.InputType == appmodel.TypeAudio && !a.dataModel.Offline() && a.dataModel.CanSubmit(q.ID) {
			a.audioPathMode = true
			a.audioPathInput.Focus()
			return a, textinput.Blink
		}
		return a, nil

	case "ctrl+s":
		q := a.dataModel.CurrentQuestion()
		if q != nil && q.InputType == appmodel.TypeCode {
			return a, a.dataModel.SaveDraft(q.ID, a.textarea.Value())
		}
		return a, nil

	case "ctrl+o":
		// Scorecard detail for the latest reviewed answer
		if q := a.dataModel.CurrentQuestion(); q != nil {
			history := a.dataModel.History(q.ID)
			for i := len(history) - 1; i >= 0; i-- {
				if len(history[i].Scorecard) > 0 {
					a.showScorecard = true
					a.scorecardItems = history[i].Scorecard
					a.scorecardVerdict = history[i].IsCorrect
					a.scorecardQuestion = q.Title
					break
				}
			}
		}
		return a, nil

	case "enter":
		return a.submitFromTextarea()
	}

	a.textarea, cmd = a.textarea.Update(msg)
	return a, tea.Batch(append(cmds, cmd)...)
}

func (a AppView) submitFromTextarea() (tea.Model, tea.Cmd) {
	q := a.dataModel.CurrentQuestion()
	if q == nil {
		return a, nil
	}

	msgType := appmodel.TypeText
	if q.InputType == appmodel.TypeCode {
		msgType = appmodel.TypeCode
	}
	if q.InputType == appmodel.TypeAudio {
		// Audio answers go through the Ctrl+A pipeline
		return a, nil
	}

	content := a.textarea.Value()
	submitCmd := a.dataModel.Submit(content, msgType)
	if submitCmd == nil {
		return a, nil
	}

	a.textarea.Reset()
	a.updateViewportContent(true)
	return a, tea.Batch(submitCmd, a.loadingSpinner.Tick)
}

// enterQuestionModel adapts enterQuestion to the tea.Model return shape.
func (a AppView) enterQuestionModel() (tea.Model, tea.Cmd) {
	view, cmd := a.enterQuestion()
	return view, cmd
}

func (a AppView) requestNavigateDelta(delta int) (tea.Model, tea.Cmd) {
	if a.dataModel.Task == nil {
		return a, nil
	}
	target := a.dataModel.CurrentIndex + delta
	if target < 0 || target >= len(a.dataModel.Task.Questions) {
		return a, nil
	}
	view, cmd := a.requestNavigate(a.dataModel.Task.Questions[target].ID)
	return view, cmd
}

// requestNavigate moves to another question, asking for confirmation first
// when the current question's review is still streaming. The stream itself is
// never cancelled either way.
func (a AppView) requestNavigate(targetID string) (AppView, tea.Cmd) {
	q := a.dataModel.CurrentQuestion()
	if q == nil || q.ID == targetID {
		return a, nil
	}

	if a.dataModel.IsAiResponding(q.ID) {
		a.confirmation = ConfirmationState{
			Active:     true,
			Kind:       confirmNavigate,
			Title:      "Leave This Question?",
			Message:    "The review is still streaming.\nIt will continue in the background.",
			QuestionID: q.ID,
			NavTarget:  targetID,
		}
		return a, nil
	}

	return a.performNavigate(targetID)
}

// performNavigate switches questions, saving any code in the editor as a
// draft on the way out.
func (a AppView) performNavigate(targetID string) (AppView, tea.Cmd) {
	var cmds []tea.Cmd

	if q := a.dataModel.CurrentQuestion(); q != nil &&
		q.InputType == appmodel.TypeCode && strings.TrimSpace(a.textarea.Value()) != "" {
		cmds = append(cmds, a.dataModel.SaveDraft(q.ID, a.textarea.Value()))
	}

	a.dataModel.NavigateTo(targetID)
	view, cmd := a.enterQuestion()
	cmds = append(cmds, cmd)
	return view, tea.Batch(cmds...)
}
