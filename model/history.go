package model

import "qtui/api"

// History returns the message list for a question (nil when empty).
func (m *Model) History(questionID string) []ChatMessage {
	return m.Histories[questionID]
}

// AppendMessage adds a message to a question's history.
func (m *Model) AppendMessage(questionID string, msg ChatMessage) {
	m.Histories[questionID] = append(m.Histories[questionID], msg)
}

// LastMessage returns a pointer to the last message of a question's history,
// or nil when the history is empty.
func (m *Model) LastMessage(questionID string) *ChatMessage {
	history := m.Histories[questionID]
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}

// ReplaceLastAIContent overwrites the content of the trailing AI message.
// Streamed feedback is cumulative, so the value replaces rather than appends.
func (m *Model) ReplaceLastAIContent(questionID, content string) {
	last := m.LastMessage(questionID)
	if last == nil || last.Sender != SenderAI {
		return
	}
	last.Content = content
	last.Rendered = content
}

// AttachScorecard attaches the buffered scorecard and correctness flag to the
// trailing AI message once the stream has ended.
func (m *Model) AttachScorecard(questionID string, scorecard []api.ScorecardItem, isCorrect *bool) {
	last := m.LastMessage(questionID)
	if last == nil || last.Sender != SenderAI {
		return
	}
	last.Scorecard = scorecard
	last.IsCorrect = isCorrect
}

// RemoveTrailingTurn drops the most recent user message and everything after
// it, returning a copy of the removed user message for resubmission. Reports
// false when the history holds no user message.
//
// Truncating to the last user message (rather than popping exactly two
// entries) keeps retry well-defined when an error message sits between the
// user message and the retry.
func (m *Model) RemoveTrailingTurn(questionID string) (ChatMessage, bool) {
	history := m.Histories[questionID]

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == SenderUser {
			removed := history[i]
			m.Histories[questionID] = history[:i]
			return removed, true
		}
	}

	return ChatMessage{}, false
}
