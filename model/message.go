package model

import (
	"time"

	"github.com/google/uuid"

	"qtui/api"
)

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

const (
	TypeText  = "text"
	TypeAudio = "audio"
	TypeCode  = "code"
)

// ChatMessage is one entry of a question's conversation.
type ChatMessage struct {
	ID        string
	Content   string
	Sender    string // SenderUser | SenderAI
	Timestamp time.Time
	Type      string // TypeText | TypeAudio | TypeCode

	// AudioData holds the base64 WAV payload of an audio answer; for audio
	// messages Content carries the file uuid instead of text.
	AudioData string
	AudioUUID string

	// Scorecard is attached only once the review stream has ended.
	Scorecard []api.ScorecardItem
	IsCorrect *bool

	// IsError marks a locally synthesized failure message. Never persisted.
	IsError bool

	// Rendered caches the terminal-markdown rendering of AI feedback.
	Rendered string
}

func NewUserMessage(content, msgType string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		Content:   content,
		Sender:    SenderUser,
		Timestamp: time.Now(),
		Type:      msgType,
	}
}

func NewAIMessage(content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		Content:   content,
		Sender:    SenderAI,
		Timestamp: time.Now(),
		Type:      TypeText,
		Rendered:  content,
	}
}

func NewErrorMessage(content string) ChatMessage {
	msg := NewAIMessage(content)
	msg.IsError = true
	return msg
}

// DeriveIsCorrect reports whether every scorecard criterion passed.
func DeriveIsCorrect(items []api.ScorecardItem) bool {
	for _, item := range items {
		if !item.Passed() {
			return false
		}
	}
	return true
}
