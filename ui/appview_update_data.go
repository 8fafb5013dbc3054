package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"qtui/config"
	appmodel "qtui/model"
)

// handleDataMessage handles task, history, draft and persistence results.
func (a AppView) handleDataMessage(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appmodel.TaskLoadedMsg:
		if msg.Err != nil {
			a.loadError = msg.Err.Error()
			return a, nil
		}
		a.dataModel.Task = msg.Task
		a.dataModel.CurrentIndex = 0
		return a.enterQuestionModel()

	case appmodel.HistoryLoadedMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] history load failed: %v", msg.Err)
			}
			a.statusNotice = "Could not load history"
			return a, nil
		}
		a.dataModel.Histories = msg.Histories
		if msg.FromCache {
			a.statusNotice = "History loaded from local cache"
		}
		a.updateViewportContent(true)

		// Hydrate audio payloads and render cached markdown lazily
		var cmds []tea.Cmd
		for questionID, history := range msg.Histories {
			for _, m := range history {
				if m.Type == appmodel.TypeAudio && m.AudioUUID != "" && m.AudioData == "" {
					if cmd := a.dataModel.HydrateAudio(questionID, m.ID, m.AudioUUID); cmd != nil {
						cmds = append(cmds, cmd)
					}
				}
				if m.Sender == appmodel.SenderAI && !m.IsError && m.Content != "" {
					cmds = append(cmds, a.renderMarkdownAsync(questionID, m.ID, m.Content))
				}
			}
		}
		return a, tea.Batch(cmds...)

	case appmodel.DraftLoadedMsg:
		if msg.Err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[UI] draft load failed for question %s: %v", msg.QuestionID, msg.Err)
		}
		// Install the draft only while its question is still on screen and
		// the editor is untouched
		q := a.dataModel.CurrentQuestion()
		if msg.Code != "" && q != nil && q.ID == msg.QuestionID && a.textarea.Value() == "" {
			a.textarea.SetValue(msg.Code)
		}
		return a, nil

	case appmodel.DraftSavedMsg:
		if msg.Err != nil {
			a.statusNotice = "Draft save failed"
		} else {
			a.statusNotice = "Draft saved"
		}
		return a, nil

	case appmodel.AudioHydratedMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] audio hydration failed for message %s: %v", msg.MessageID, msg.Err)
			}
			return a, nil
		}
		history := a.dataModel.Histories[msg.QuestionID]
		for i := range history {
			if history[i].ID == msg.MessageID {
				history[i].AudioData = msg.Base64WAV
				break
			}
		}
		return a, nil

	case appmodel.TurnPersistedMsg:
		if msg.Err != nil {
			// Persistence failure never disturbs the transcript
			a.statusNotice = "Sync failed; answer kept locally"
		}
		return a, nil

	case appmodel.MarkdownRenderedMsg:
		// Keyed by message id: the history may have been truncated and
		// regrown (retry) while the render was in flight
		history := a.dataModel.Histories[msg.QuestionID]
		for i := range history {
			if history[i].ID == msg.MessageID {
				history[i].Rendered = msg.Rendered
				a.refreshIfCurrent(msg.QuestionID)
				break
			}
		}
		return a, nil
	}

	return a, nil
}
