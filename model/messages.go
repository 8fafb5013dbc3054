package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"qtui/api"
)

type TaskLoadedMsg struct {
	Task *api.Task
	Err  error
}

type HistoryLoadedMsg struct {
	Histories map[string][]ChatMessage
	FromCache bool
	Err       error
}

// StreamOpenedMsg hands the event channel of a freshly opened answer stream
// to the UI, which arms a wait command on it.
type StreamOpenedMsg struct {
	QuestionID string
	Events     <-chan tea.Msg
}

// StreamFeedbackMsg carries the current cumulative feedback text. First marks
// the transition out of the waiting state: the consumer inserts the AI
// message on First and replaces its content otherwise.
type StreamFeedbackMsg struct {
	QuestionID string
	Content    string
	First      bool
}

type StreamDoneMsg struct {
	QuestionID  string
	Feedback    string
	HadFeedback bool
	Scorecard   []api.ScorecardItem
	IsCorrect   *bool
}

type StreamErrorMsg struct {
	QuestionID string
	Err        error
}

// ExamConfirmRequiredMsg signals that a submission was staged and the exam
// confirmation prompt should be shown.
type ExamConfirmRequiredMsg struct {
	QuestionID string
}

// AudioReadyMsg reports a converted and uploaded audio answer, ready to
// submit.
type AudioReadyMsg struct {
	QuestionID string
	Base64WAV  string
	FileUUID   string
}

// AudioErrorMsg reports a failed conversion or upload; the submission is
// aborted without touching the history.
type AudioErrorMsg struct {
	QuestionID string
	Err        error
}

// AudioHydratedMsg carries a downloaded audio payload for a history message.
type AudioHydratedMsg struct {
	QuestionID string
	MessageID  string
	Base64WAV  string
	Err        error
}

type TurnPersistedMsg struct {
	QuestionID string
	Err        error
}

type DraftLoadedMsg struct {
	QuestionID string
	Code       string
	Err        error
}

type DraftSavedMsg struct {
	QuestionID string
	Err        error
}

type MarkdownRenderedMsg struct {
	QuestionID string
	MessageID  string
	Rendered   string
}
