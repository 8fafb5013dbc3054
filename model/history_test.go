package model

import (
	"testing"

	"qtui/config"
)

func newTestModel(offline bool) *Model {
	cfg := &config.Config{Offline: offline, UserID: "user-1", TaskID: "task-1"}
	return NewModel(cfg, nil, nil, nil, "test")
}

func TestRemoveTrailingTurn(t *testing.T) {
	tests := []struct {
		name       string
		history    []ChatMessage
		expectOK   bool
		expectLeft int
		expectType string
	}{
		{
			name:       "empty history",
			history:    nil,
			expectOK:   false,
			expectLeft: 0,
		},
		{
			name: "complete turn removed entirely",
			history: []ChatMessage{
				NewUserMessage("answer", TypeText),
				NewAIMessage("feedback"),
			},
			expectOK:   true,
			expectLeft: 0,
			expectType: TypeText,
		},
		{
			name: "user message without reply removed",
			history: []ChatMessage{
				NewUserMessage("answer", TypeCode),
			},
			expectOK:   true,
			expectLeft: 0,
			expectType: TypeCode,
		},
		{
			name: "error message after user message removed too",
			history: []ChatMessage{
				NewUserMessage("first", TypeText),
				NewAIMessage("first feedback"),
				NewUserMessage("second", TypeText),
				ReviewErrorMessage(),
			},
			expectOK:   true,
			expectLeft: 2,
			expectType: TypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(false)
			m.Histories["q1"] = tt.history

			removed, ok := m.RemoveTrailingTurn("q1")
			if ok != tt.expectOK {
				t.Fatalf("ok = %v, want %v", ok, tt.expectOK)
			}
			if len(m.Histories["q1"]) != tt.expectLeft {
				t.Errorf("history length = %d, want %d", len(m.Histories["q1"]), tt.expectLeft)
			}
			if ok && removed.Type != tt.expectType {
				t.Errorf("removed type = %q, want %q", removed.Type, tt.expectType)
			}
		})
	}
}

func TestReplaceLastAIContent(t *testing.T) {
	m := newTestModel(false)
	m.AppendMessage("q1", NewUserMessage("answer", TypeText))
	m.AppendMessage("q1", NewAIMessage("partial"))

	m.ReplaceLastAIContent("q1", "partial plus more")

	last := m.LastMessage("q1")
	if last.Content != "partial plus more" {
		t.Errorf("content = %q", last.Content)
	}

	// A trailing user message is never overwritten
	m.AppendMessage("q1", NewUserMessage("followup", TypeText))
	m.ReplaceLastAIContent("q1", "should not land")
	if m.LastMessage("q1").Content != "followup" {
		t.Error("user message was overwritten")
	}
}

func TestParseAssistantContent(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		expectFeedback string
		expectItems    int
	}{
		{
			name:           "structured payload",
			content:        `{"feedback":"well done","scorecard":[{"category":"A","score":5,"max_score":2}]}`,
			expectFeedback: "well done",
			expectItems:    1,
		},
		{
			name:           "plain text fallback",
			content:        "just plain feedback",
			expectFeedback: "just plain feedback",
			expectItems:    0,
		},
		{
			name:           "json that is not a payload",
			content:        `{"something":"else"}`,
			expectFeedback: `{"something":"else"}`,
			expectItems:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ParseAssistantContent(tt.content)
			if msg.Content != tt.expectFeedback {
				t.Errorf("feedback = %q, want %q", msg.Content, tt.expectFeedback)
			}
			if len(msg.Scorecard) != tt.expectItems {
				t.Errorf("scorecard items = %d, want %d", len(msg.Scorecard), tt.expectItems)
			}
			if tt.expectItems > 0 && msg.Scorecard[0].Score != msg.Scorecard[0].MaxScore {
				t.Error("decoded score not clamped to max")
			}
		})
	}
}
