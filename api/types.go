package api

import "time"

// HistoryEntry is one row from GET /chat/user/{userId}/task/{taskId}.
// Assistant entries carry a JSON-encoded AssistantPayload in Content.
type HistoryEntry struct {
	ID           string    `json:"id"`
	Role         string    `json:"role"` // "user" | "assistant"
	Content      string    `json:"content"`
	ResponseType string    `json:"response_type"` // "text" | "audio" | "code"
	QuestionID   string    `json:"question_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// AssistantPayload is the structured content of an assistant history entry.
type AssistantPayload struct {
	Feedback  string          `json:"feedback"`
	Scorecard []ScorecardItem `json:"scorecard,omitempty"`
	IsCorrect *bool           `json:"is_correct,omitempty"`
}

// ScorecardFeedback holds the per-criterion explanation strings.
type ScorecardFeedback struct {
	Correct string `json:"correct"`
	Wrong   string `json:"wrong"`
}

// ScorecardItem is one graded criterion of an AI review.
type ScorecardItem struct {
	Category  string            `json:"category"`
	Score     float64           `json:"score"`
	MaxScore  float64           `json:"max_score"`
	PassScore *float64          `json:"pass_score,omitempty"`
	Feedback  ScorecardFeedback `json:"feedback"`
}

// Clamp enforces 0 <= Score <= MaxScore on decoded items.
func (s *ScorecardItem) Clamp() {
	if s.Score < 0 {
		s.Score = 0
	}
	if s.MaxScore >= 0 && s.Score > s.MaxScore {
		s.Score = s.MaxScore
	}
}

// Passed reports whether this criterion met its pass threshold.
// Without an explicit pass score, only a full score passes.
func (s ScorecardItem) Passed() bool {
	if s.PassScore != nil {
		return s.Score >= *s.PassScore
	}
	return s.Score >= s.MaxScore
}

// Chunk is one decoded line of the newline-delimited /ai/chat response.
// Every field is independently optional; feedback values are cumulative
// replacements, not deltas.
type Chunk struct {
	Feedback  *string         `json:"feedback,omitempty"`
	Scorecard []ScorecardItem `json:"scorecard,omitempty"`
	IsCorrect *bool           `json:"is_correct,omitempty"`
	Done      bool            `json:"done,omitempty"`
}

// TurnMessage is the minimal role/content pair sent as chat_history context.
type TurnMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SubmitRequest is the body of POST /ai/chat.
type SubmitRequest struct {
	UserResponse string        `json:"user_response"`
	ResponseType string        `json:"response_type"`
	QuestionID   string        `json:"question_id"`
	UserID       string        `json:"user_id"`
	TaskID       string        `json:"task_id"`
	TaskType     string        `json:"task_type"`
	ChatHistory  []TurnMessage `json:"chat_history,omitempty"`
}

// TurnRecord is one message of a persisted turn (POST /chat/).
type TurnRecord struct {
	ID           string    `json:"id"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	ResponseType string    `json:"response_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// PersistTurnRequest is the body of POST /chat/.
type PersistTurnRequest struct {
	UserID     string       `json:"user_id"`
	QuestionID string       `json:"question_id"`
	Messages   []TurnRecord `json:"messages"`
	IsComplete bool         `json:"is_complete"`
}

// Question is a single task question as served by GET /task/{taskId}.
type Question struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Prompt    string `json:"prompt"`
	InputType string `json:"input_type"` // "text" | "audio" | "code"
	TaskType  string `json:"task_type"`  // "quiz" | "exam"
	Completed bool   `json:"completed"`
}

// Task is the question set the learner works through.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	TaskType  string     `json:"task_type"`
	Questions []Question `json:"questions"`
}

// CodeDraft is the body of the code draft endpoints.
type CodeDraft struct {
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
	Code       string `json:"code"`
}

// PresignedURL is the response of POST /file/presigned-url/create and
// GET /file/presigned-url/get.
type PresignedURL struct {
	UUID string `json:"uuid"`
	URL  string `json:"url"`
}
