package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"qtui/api"
	"qtui/config"
	"qtui/storage"
)

// PendingSubmission is an exam answer staged behind the confirmation prompt.
type PendingSubmission struct {
	Content   string
	Type      string
	AudioData string
	AudioUUID string
}

// Model holds the core application data and business logic state.
type Model struct {
	// Core dependencies
	Config       *config.Config
	Client       *api.Client // nil in offline mode
	HistoryCache *storage.HistoryCache
	Drafts       *storage.DraftStore

	// Application data
	Task         *api.Task
	CurrentIndex int
	Histories    map[string][]ChatMessage

	// Per-question runtime state (keyed by question id, independent across
	// questions)
	Submitting  map[string]bool
	Responding  map[string]bool
	PendingExam map[string]PendingSubmission
	streams     map[string]<-chan tea.Msg

	// Application metadata
	Version string
}

// NewModel creates the core model. Client may be nil (offline mode).
func NewModel(cfg *config.Config, client *api.Client, cache *storage.HistoryCache, drafts *storage.DraftStore, version string) *Model {
	return &Model{
		Config:       cfg,
		Client:       client,
		HistoryCache: cache,
		Drafts:       drafts,
		Histories:    make(map[string][]ChatMessage),
		Submitting:   make(map[string]bool),
		Responding:   make(map[string]bool),
		PendingExam:  make(map[string]PendingSubmission),
		streams:      make(map[string]<-chan tea.Msg),
		Version:      version,
	}
}

func (m *Model) Offline() bool {
	return m.Config.Offline || m.Client == nil
}

// CurrentQuestion returns the question at the navigator index, or nil before
// the task has loaded.
func (m *Model) CurrentQuestion() *api.Question {
	if m.Task == nil || m.CurrentIndex < 0 || m.CurrentIndex >= len(m.Task.Questions) {
		return nil
	}
	return &m.Task.Questions[m.CurrentIndex]
}

// QuestionByID locates a question in the loaded task.
func (m *Model) QuestionByID(id string) *api.Question {
	if m.Task == nil {
		return nil
	}
	for i := range m.Task.Questions {
		if m.Task.Questions[i].ID == id {
			return &m.Task.Questions[i]
		}
	}
	return nil
}

// CanSubmit reports whether a new submission may start for a question. Only
// one submission is in flight per question at a time.
func (m *Model) CanSubmit(questionID string) bool {
	return !m.Submitting[questionID] && !m.Responding[questionID]
}

// IsAiResponding reports whether a review stream is open for the question.
func (m *Model) IsAiResponding(questionID string) bool {
	return m.Responding[questionID]
}

// ClearTransient resets the in-flight flags and any staged exam submission
// for a question, making retry possible after a failure.
func (m *Model) ClearTransient(questionID string) {
	delete(m.Submitting, questionID)
	delete(m.Responding, questionID)
	delete(m.PendingExam, questionID)
	delete(m.streams, questionID)
}

// StreamChannel returns the open event channel for a question, if any.
func (m *Model) StreamChannel(questionID string) (<-chan tea.Msg, bool) {
	ch, ok := m.streams[questionID]
	return ch, ok
}

// MarkCompleted flags a question as answered with finality (exam submissions
// and fully correct quiz answers).
func (m *Model) MarkCompleted(questionID string) {
	if q := m.QuestionByID(questionID); q != nil {
		q.Completed = true
	}
}

// Navigate moves the navigator index, clamped to the question list.
func (m *Model) Navigate(delta int) {
	if m.Task == nil {
		return
	}
	next := m.CurrentIndex + delta
	if next < 0 {
		next = 0
	}
	if next > len(m.Task.Questions)-1 {
		next = len(m.Task.Questions) - 1
	}
	m.CurrentIndex = next
}

// NavigateTo jumps the navigator index to a question id.
func (m *Model) NavigateTo(questionID string) {
	if m.Task == nil {
		return
	}
	for i := range m.Task.Questions {
		if m.Task.Questions[i].ID == questionID {
			m.CurrentIndex = i
			return
		}
	}
}
