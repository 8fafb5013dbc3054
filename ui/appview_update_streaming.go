package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"qtui/config"
	appmodel "qtui/model"
)

// handleStreamMessage handles all submission and review stream messages.
// Stream state is keyed per question, so answers keep streaming while the
// user reads other questions.
func (a AppView) handleStreamMessage(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appmodel.ExamConfirmRequiredMsg:
		a.confirmation = ConfirmationState{
			Active:     true,
			Kind:       confirmExamSubmit,
			Title:      "Submit Exam Answer?",
			Message:    "Exam answers are final and cannot be changed\nafter submission.",
			QuestionID: msg.QuestionID,
		}
		return a, nil

	case appmodel.StreamOpenedMsg:
		// Arm the wait command; it re-arms itself after every event
		return a, appmodel.WaitForStream(msg.Events)

	case appmodel.StreamFeedbackMsg:
		if msg.First {
			// First feedback ends the waiting state for this question
			delete(a.dataModel.Submitting, msg.QuestionID)
			a.dataModel.AppendMessage(msg.QuestionID, appmodel.NewAIMessage(msg.Content))
		} else {
			// Cumulative replacement: each event carries the full text so far
			a.dataModel.ReplaceLastAIContent(msg.QuestionID, msg.Content)
		}
		a.refreshIfCurrent(msg.QuestionID)

		if events, ok := a.dataModel.StreamChannel(msg.QuestionID); ok {
			return a, appmodel.WaitForStream(events)
		}
		return a, nil

	case appmodel.StreamDoneMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] stream done for question %s (feedback=%v scorecard=%d)",
				msg.QuestionID, msg.HadFeedback, len(msg.Scorecard))
		}

		if !msg.HadFeedback && len(msg.Scorecard) == 0 {
			// A stream that produced neither feedback nor a scorecard leaves
			// the transcript untouched; nothing is persisted either
			a.dataModel.ClearTransient(msg.QuestionID)
			a.refreshIfCurrent(msg.QuestionID)
			return a, nil
		}

		if !msg.HadFeedback {
			// Scorecard-only review still needs an AI message to attach to
			a.dataModel.AppendMessage(msg.QuestionID, appmodel.NewAIMessage(""))
		}
		a.dataModel.AttachScorecard(msg.QuestionID, msg.Scorecard, msg.IsCorrect)

		isComplete := msg.IsCorrect != nil && *msg.IsCorrect
		q := a.dataModel.QuestionByID(msg.QuestionID)
		if q != nil && q.TaskType == appmodel.TaskTypeExam {
			isComplete = true
		}
		if isComplete {
			a.dataModel.MarkCompleted(msg.QuestionID)
		}

		a.dataModel.ClearTransient(msg.QuestionID)
		a.refreshIfCurrent(msg.QuestionID)

		cmds := []tea.Cmd{a.dataModel.PersistTurn(msg.QuestionID, isComplete)}

		// A reviewed code answer invalidates the saved draft
		if q != nil && q.InputType == appmodel.TypeCode {
			cmds = append(cmds, a.dataModel.DeleteDraft(msg.QuestionID))
		}

		history := a.dataModel.History(msg.QuestionID)
		if len(history) > 0 && msg.HadFeedback {
			cmds = append(cmds, a.renderMarkdownAsync(msg.QuestionID, history[len(history)-1].ID, msg.Feedback))
		}
		return a, tea.Batch(cmds...)

	case appmodel.StreamErrorMsg:
		a.dataModel.ClearTransient(msg.QuestionID)
		a.dataModel.AppendMessage(msg.QuestionID, appmodel.ReviewErrorMessage())
		a.refreshIfCurrent(msg.QuestionID)
		return a, nil

	case appmodel.AudioReadyMsg:
		submitCmd := a.dataModel.SubmitAudio(msg)
		a.refreshIfCurrent(msg.QuestionID)
		return a, submitCmd

	case appmodel.AudioErrorMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] audio pipeline failed for question %s: %v", msg.QuestionID, msg.Err)
		}
		a.dataModel.AbortAudio(msg.QuestionID)
		a.statusNotice = "Audio submission failed"
		a.refreshIfCurrent(msg.QuestionID)
		return a, nil
	}

	return a, nil
}

// refreshIfCurrent re-renders the viewport when the event belongs to the
// question on screen.
func (a *AppView) refreshIfCurrent(questionID string) {
	if q := a.dataModel.CurrentQuestion(); q != nil && q.ID == questionID {
		a.updateViewportContent(true)
	}
}
