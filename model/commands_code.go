package model

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"qtui/config"
)

// LoadDraft restores a saved code draft, preferring the local store and
// falling back to the backend copy.
func (m *Model) LoadDraft(questionID string) tea.Cmd {
	client := m.Client
	drafts := m.Drafts

	return func() tea.Msg {
		if drafts != nil {
			code, err := drafts.Load(questionID)
			if err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[drafts] local load failed for question %s: %v", questionID, err)
			}
			if code != "" {
				return DraftLoadedMsg{QuestionID: questionID, Code: code}
			}
		}

		if client == nil {
			return DraftLoadedMsg{QuestionID: questionID}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		code, err := client.FetchCodeDraft(ctx, questionID)
		return DraftLoadedMsg{QuestionID: questionID, Code: code, Err: err}
	}
}

// SaveDraft writes a code draft to the local store and mirrors it to the
// backend, best-effort.
func (m *Model) SaveDraft(questionID, code string) tea.Cmd {
	client := m.Client
	drafts := m.Drafts

	return func() tea.Msg {
		if drafts != nil {
			if err := drafts.Save(questionID, code); err != nil {
				return DraftSavedMsg{QuestionID: questionID, Err: err}
			}
		}

		if client == nil {
			return DraftSavedMsg{QuestionID: questionID}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := client.SaveCodeDraft(ctx, questionID, code); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[drafts] backend save failed for question %s: %v", questionID, err)
		}
		return DraftSavedMsg{QuestionID: questionID}
	}
}

// DeleteDraft discards the draft after a successful code submission.
func (m *Model) DeleteDraft(questionID string) tea.Cmd {
	client := m.Client
	drafts := m.Drafts

	return func() tea.Msg {
		if drafts != nil {
			if err := drafts.Delete(questionID); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[drafts] local delete failed for question %s: %v", questionID, err)
			}
		}

		if client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := client.DeleteCodeDraft(ctx, questionID); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[drafts] backend delete failed for question %s: %v", questionID, err)
			}
		}

		return nil
	}
}
