package model

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"qtui/api"
	"qtui/audio"
	"qtui/config"
)

const (
	TaskTypeQuiz = "quiz"
	TaskTypeExam = "exam"
)

// ExamSubmittedMessage is the fixed confirmation shown when an exam answer is
// accepted without review (offline mode short-circuit).
const ExamSubmittedMessage = "Your answer has been submitted. You will be notified once it has been reviewed."

// reviewErrorMessage is the single synthetic chat message shown for any
// transport, status or stream failure.
const reviewErrorMessage = "Sorry, something went wrong while reviewing your answer. Please try again."

// Submit starts a submission for the current question.
//
// Empty or whitespace-only text/code content is rejected without side
// effects, as is a question with a submission already in flight. Exam-type
// questions are staged behind an explicit confirmation step; everything else
// submits immediately.
func (m *Model) Submit(content, msgType string) tea.Cmd {
	q := m.CurrentQuestion()
	if q == nil {
		return nil
	}
	if msgType != TypeAudio && strings.TrimSpace(content) == "" {
		return nil
	}
	if !m.CanSubmit(q.ID) {
		return nil
	}

	sub := PendingSubmission{Content: content, Type: msgType}

	if q.TaskType == TaskTypeExam {
		m.PendingExam[q.ID] = sub
		questionID := q.ID
		return func() tea.Msg {
			return ExamConfirmRequiredMsg{QuestionID: questionID}
		}
	}

	return m.submitNow(q, sub)
}

// ConfirmPending submits the staged exam answer for a question.
func (m *Model) ConfirmPending(questionID string) tea.Cmd {
	sub, ok := m.PendingExam[questionID]
	if !ok {
		return nil
	}
	delete(m.PendingExam, questionID)

	q := m.QuestionByID(questionID)
	if q == nil {
		return nil
	}
	return m.submitNow(q, sub)
}

// CancelPending discards a staged exam answer without side effects.
func (m *Model) CancelPending(questionID string) {
	delete(m.PendingExam, questionID)
}

// Retry drops the trailing turn of the current question and resubmits the
// removed user message with its original content and modality. No-op while a
// submission is in flight, when the history holds no user message, or on an
// offline quiz question (where nothing could be resubmitted).
func (m *Model) Retry() tea.Cmd {
	q := m.CurrentQuestion()
	if q == nil {
		return nil
	}
	if !m.CanSubmit(q.ID) {
		return nil
	}
	// Offline quiz submissions are disabled, so retry must not truncate a
	// cached transcript it cannot resubmit
	if m.Offline() && q.TaskType != TaskTypeExam {
		return nil
	}

	removed, ok := m.RemoveTrailingTurn(q.ID)
	if !ok {
		return nil
	}

	return m.submitNow(q, PendingSubmission{
		Content:   removed.Content,
		Type:      removed.Type,
		AudioData: removed.AudioData,
		AudioUUID: removed.AudioUUID,
	})
}

func (m *Model) submitNow(q *api.Question, sub PendingSubmission) tea.Cmd {
	userMsg := NewUserMessage(sub.Content, sub.Type)
	if sub.Type == TypeAudio {
		// Audio answers carry the payload in AudioData; Content holds the
		// file uuid reference instead of text
		userMsg.Content = sub.AudioUUID
		userMsg.AudioData = sub.AudioData
		userMsg.AudioUUID = sub.AudioUUID
	}

	if m.Offline() {
		// Offline exam submissions are final without review; everything else
		// stays a no-op (the submit affordance is disabled)
		if q.TaskType != TaskTypeExam {
			return nil
		}
		m.AppendMessage(q.ID, userMsg)
		m.AppendMessage(q.ID, NewAIMessage(ExamSubmittedMessage))
		m.MarkCompleted(q.ID)
		return m.cacheSnapshot(q.ID)
	}

	chatHistory := buildTurnHistory(m.History(q.ID))
	m.AppendMessage(q.ID, userMsg)
	m.Submitting[q.ID] = true
	m.Responding[q.ID] = true

	return m.openStream(q, sub, chatHistory)
}

// buildTurnHistory converts prior messages into the chat_history context sent
// with a submission. Synthetic error messages are never sent.
func buildTurnHistory(history []ChatMessage) []api.TurnMessage {
	var turns []api.TurnMessage
	for _, msg := range history {
		if msg.IsError {
			continue
		}
		role := "user"
		if msg.Sender == SenderAI {
			role = "assistant"
		}
		content := msg.Content
		if msg.Type == TypeAudio && msg.Sender == SenderUser {
			content = msg.AudioUUID
		}
		turns = append(turns, api.TurnMessage{Role: role, Content: content})
	}
	return turns
}

func (m *Model) openStream(q *api.Question, sub PendingSubmission, chatHistory []api.TurnMessage) tea.Cmd {
	client := m.Client

	userResponse := sub.Content
	if sub.Type == TypeAudio {
		userResponse = sub.AudioData
	}

	req := api.SubmitRequest{
		UserResponse: userResponse,
		ResponseType: sub.Type,
		QuestionID:   q.ID,
		UserID:       client.UserID(),
		TaskID:       client.TaskID(),
		TaskType:     q.TaskType,
		ChatHistory:  chatHistory,
	}

	events := make(chan tea.Msg, 8)
	m.streams[q.ID] = events
	questionID := q.ID

	return func() tea.Msg {
		go func() {
			defer close(events)

			if config.DebugLog != nil {
				config.DebugLog.Printf("[chat] opening answer stream for question %s", questionID)
			}

			rec := NewReconciler(questionID)
			// No deadline: a hung stream keeps the responding indicator
			// active until the user navigates away or retries
			err := client.StreamAnswer(context.Background(), req, func(chunk api.Chunk) error {
				if msg, ok := rec.Apply(chunk); ok {
					events <- msg
				}
				return nil
			})
			if err != nil {
				if config.DebugLog != nil {
					config.DebugLog.Printf("[chat] stream failed for question %s: %v", questionID, err)
				}
				events <- StreamErrorMsg{QuestionID: questionID, Err: err}
				return
			}

			events <- rec.Finish()
		}()

		return StreamOpenedMsg{QuestionID: questionID, Events: events}
	}
}

// WaitForStream returns a command that delivers the next event of an open
// answer stream. The consumer re-arms it after every delivered event.
func WaitForStream(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// ReviewErrorMessage builds the synthetic AI failure message appended when a
// stream or submission fails.
func ReviewErrorMessage() ChatMessage {
	return NewErrorMessage(reviewErrorMessage)
}

// SubmitAudioFile runs the audio answer pipeline for the current question:
// read raw PCM, resample, encode WAV, upload. Any failure aborts the
// submission before a user message is appended.
func (m *Model) SubmitAudioFile(path string) tea.Cmd {
	q := m.CurrentQuestion()
	if q == nil {
		return nil
	}
	if !m.CanSubmit(q.ID) || m.Offline() {
		return nil
	}

	m.Submitting[q.ID] = true

	client := m.Client
	sourceRate := m.Config.AudioSourceRate
	targetRate := m.Config.AudioTargetRate
	questionID := q.ID

	return func() tea.Msg {
		pcm, err := os.ReadFile(path)
		if err != nil {
			return AudioErrorMsg{QuestionID: questionID, Err: fmt.Errorf("failed to read PCM file: %w", err)}
		}

		wav, err := audio.ConvertPCM(pcm, sourceRate, targetRate)
		if err != nil {
			return AudioErrorMsg{QuestionID: questionID, Err: err}
		}

		fileUUID, err := client.UploadAudio(context.Background(), wav)
		if err != nil {
			return AudioErrorMsg{QuestionID: questionID, Err: err}
		}

		return AudioReadyMsg{
			QuestionID: questionID,
			Base64WAV:  base64.StdEncoding.EncodeToString(wav),
			FileUUID:   fileUUID,
		}
	}
}

// SubmitAudio turns a converted-and-uploaded audio answer into a submission,
// honoring the exam confirmation step.
func (m *Model) SubmitAudio(msg AudioReadyMsg) tea.Cmd {
	q := m.QuestionByID(msg.QuestionID)
	if q == nil {
		return nil
	}

	// The pipeline flag is released; submitNow raises it again
	delete(m.Submitting, q.ID)

	sub := PendingSubmission{
		Type:      TypeAudio,
		AudioData: msg.Base64WAV,
		AudioUUID: msg.FileUUID,
	}

	if q.TaskType == TaskTypeExam {
		m.PendingExam[q.ID] = sub
		questionID := q.ID
		return func() tea.Msg {
			return ExamConfirmRequiredMsg{QuestionID: questionID}
		}
	}

	return m.submitNow(q, sub)
}

// AbortAudio resets the submitting flag after a failed conversion or upload.
// No user or AI message was appended; the answer was never sent.
func (m *Model) AbortAudio(questionID string) {
	delete(m.Submitting, questionID)
}
