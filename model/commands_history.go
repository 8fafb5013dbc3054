package model

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"qtui/api"
	"qtui/config"
	"qtui/storage"
)

// LoadTask fetches the question set, or reads it from the configured local
// task file in offline mode.
func (m *Model) LoadTask() tea.Cmd {
	client := m.Client
	offline := m.Offline()
	taskFile := m.Config.TaskFile

	return func() tea.Msg {
		if offline {
			if taskFile == "" {
				return TaskLoadedMsg{Err: fmt.Errorf("offline mode requires a task_file")}
			}
			data, err := os.ReadFile(config.ExpandPath(taskFile))
			if err != nil {
				return TaskLoadedMsg{Err: fmt.Errorf("failed to read task file: %w", err)}
			}
			var task api.Task
			if err := json.Unmarshal(data, &task); err != nil {
				return TaskLoadedMsg{Err: fmt.Errorf("failed to parse task file: %w", err)}
			}
			return TaskLoadedMsg{Task: &task}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		task, err := client.FetchTask(ctx)
		return TaskLoadedMsg{Task: task, Err: err}
	}
}

// LoadHistory hydrates per-question chat history from the backend, falling
// back to the local cache when the backend is unreachable. In offline mode
// only the cache is consulted.
func (m *Model) LoadHistory() tea.Cmd {
	client := m.Client
	cache := m.HistoryCache
	offline := m.Offline()

	return func() tea.Msg {
		if offline {
			return loadFromCache(cache, nil)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		entries, err := client.FetchHistory(ctx)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[history] fetch failed, trying cache: %v", err)
			}
			return loadFromCache(cache, err)
		}

		histories := make(map[string][]ChatMessage)
		for _, entry := range entries {
			msg := messageFromEntry(entry)
			histories[entry.QuestionID] = append(histories[entry.QuestionID], msg)
		}

		return HistoryLoadedMsg{Histories: histories}
	}
}

func loadFromCache(cache *storage.HistoryCache, fetchErr error) tea.Msg {
	if cache == nil {
		return HistoryLoadedMsg{Err: fetchErr}
	}

	stored, err := cache.History()
	if err != nil {
		if fetchErr != nil {
			return HistoryLoadedMsg{Err: fetchErr}
		}
		return HistoryLoadedMsg{Err: err}
	}

	histories := make(map[string][]ChatMessage, len(stored))
	for questionID, msgs := range stored {
		histories[questionID] = fromStored(msgs)
	}
	return HistoryLoadedMsg{Histories: histories, FromCache: true}
}

func messageFromEntry(entry api.HistoryEntry) ChatMessage {
	if entry.Role == "assistant" {
		msg := ParseAssistantContent(entry.Content)
		msg.ID = entry.ID
		msg.Timestamp = entry.CreatedAt
		return msg
	}

	msg := ChatMessage{
		ID:        entry.ID,
		Content:   entry.Content,
		Sender:    SenderUser,
		Timestamp: entry.CreatedAt,
		Type:      entry.ResponseType,
	}
	if entry.ResponseType == TypeAudio {
		// Audio entries store the file uuid; the payload is hydrated lazily
		msg.AudioUUID = entry.Content
	}
	return msg
}

// ParseAssistantContent decodes the JSON-encoded assistant payload of a
// history entry. Parse failure falls back to treating the content as plain
// feedback text.
func ParseAssistantContent(content string) ChatMessage {
	var payload api.AssistantPayload
	err := json.Unmarshal([]byte(content), &payload)
	if err != nil || (payload.Feedback == "" && len(payload.Scorecard) == 0 && payload.IsCorrect == nil) {
		return NewAIMessage(content)
	}

	for i := range payload.Scorecard {
		payload.Scorecard[i].Clamp()
	}

	msg := NewAIMessage(payload.Feedback)
	msg.Scorecard = payload.Scorecard
	msg.IsCorrect = payload.IsCorrect
	return msg
}

// HydrateAudio downloads the WAV payload of a cached audio message,
// best-effort.
func (m *Model) HydrateAudio(questionID, messageID, fileUUID string) tea.Cmd {
	client := m.Client
	if client == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		data, err := client.DownloadAudio(ctx, fileUUID)
		if err != nil {
			return AudioHydratedMsg{QuestionID: questionID, MessageID: messageID, Err: err}
		}

		return AudioHydratedMsg{
			QuestionID: questionID,
			MessageID:  messageID,
			Base64WAV:  base64.StdEncoding.EncodeToString(data),
		}
	}
}

// PersistTurn writes the question's history through to the local cache and
// sends the trailing turn to the backend, best-effort. A persistence failure
// is logged and never rolled back into message state.
func (m *Model) PersistTurn(questionID string, isComplete bool) tea.Cmd {
	client := m.Client
	cache := m.HistoryCache
	userID := m.Config.UserID

	snapshot := make([]ChatMessage, len(m.Histories[questionID]))
	copy(snapshot, m.Histories[questionID])

	return func() tea.Msg {
		if cache != nil {
			if err := cache.ReplaceQuestion(questionID, toStored(questionID, snapshot)); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[history] cache write failed for question %s: %v", questionID, err)
			}
		}

		if client == nil {
			return TurnPersistedMsg{QuestionID: questionID}
		}

		records := trailingTurnRecords(snapshot)
		if len(records) == 0 {
			return TurnPersistedMsg{QuestionID: questionID}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := client.PersistTurn(ctx, api.PersistTurnRequest{
			UserID:     userID,
			QuestionID: questionID,
			Messages:   records,
			IsComplete: isComplete,
		})
		if err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[history] persist failed for question %s: %v", questionID, err)
		}
		return TurnPersistedMsg{QuestionID: questionID, Err: err}
	}
}

// cacheSnapshot writes a question's history to the local cache only.
func (m *Model) cacheSnapshot(questionID string) tea.Cmd {
	cache := m.HistoryCache
	if cache == nil {
		return nil
	}

	snapshot := make([]ChatMessage, len(m.Histories[questionID]))
	copy(snapshot, m.Histories[questionID])

	return func() tea.Msg {
		err := cache.ReplaceQuestion(questionID, toStored(questionID, snapshot))
		if err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[history] cache write failed for question %s: %v", questionID, err)
		}
		return TurnPersistedMsg{QuestionID: questionID, Err: err}
	}
}

// trailingTurnRecords extracts the last completed user/AI turn as persistence
// records. Synthetic error messages never form a turn.
func trailingTurnRecords(history []ChatMessage) []api.TurnRecord {
	aiIdx := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == SenderAI && !history[i].IsError {
			aiIdx = i
			break
		}
	}
	if aiIdx < 1 || history[aiIdx-1].Sender != SenderUser {
		return nil
	}

	userMsg := history[aiIdx-1]
	aiMsg := history[aiIdx]

	userContent := userMsg.Content
	if userMsg.Type == TypeAudio {
		userContent = userMsg.AudioUUID
	}

	payload, err := json.Marshal(api.AssistantPayload{
		Feedback:  aiMsg.Content,
		Scorecard: aiMsg.Scorecard,
		IsCorrect: aiMsg.IsCorrect,
	})
	if err != nil {
		return nil
	}

	return []api.TurnRecord{
		{
			ID:           userMsg.ID,
			Role:         "user",
			Content:      userContent,
			ResponseType: userMsg.Type,
			CreatedAt:    userMsg.Timestamp,
		},
		{
			ID:           aiMsg.ID,
			Role:         "assistant",
			Content:      string(payload),
			ResponseType: aiMsg.Type,
			CreatedAt:    aiMsg.Timestamp,
		},
	}
}

func toStored(questionID string, history []ChatMessage) []storage.StoredMessage {
	stored := make([]storage.StoredMessage, 0, len(history))
	for _, msg := range history {
		if msg.IsError {
			continue
		}

		var scorecardJSON string
		if len(msg.Scorecard) > 0 {
			if data, err := json.Marshal(msg.Scorecard); err == nil {
				scorecardJSON = string(data)
			}
		}

		stored = append(stored, storage.StoredMessage{
			ID:            msg.ID,
			QuestionID:    questionID,
			Role:          msg.Sender,
			Content:       msg.Content,
			ResponseType:  msg.Type,
			AudioUUID:     msg.AudioUUID,
			ScorecardJSON: scorecardJSON,
			IsCorrect:     msg.IsCorrect,
			CreatedAt:     msg.Timestamp,
		})
	}
	return stored
}

func fromStored(stored []storage.StoredMessage) []ChatMessage {
	history := make([]ChatMessage, 0, len(stored))
	for _, s := range stored {
		msg := ChatMessage{
			ID:        s.ID,
			Content:   s.Content,
			Sender:    s.Role,
			Timestamp: s.CreatedAt,
			Type:      s.ResponseType,
			AudioUUID: s.AudioUUID,
			IsCorrect: s.IsCorrect,
			Rendered:  s.Content,
		}
		if s.ScorecardJSON != "" {
			var items []api.ScorecardItem
			if err := json.Unmarshal([]byte(s.ScorecardJSON), &items); err == nil {
				msg.Scorecard = items
			}
		}
		history = append(history, msg)
	}
	return history
}
