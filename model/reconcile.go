package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"qtui/api"
)

// Reconciler folds the chunks of one streamed answer review into updates for
// a single AI message.
//
// Feedback values replace the previous content (the backend streams
// cumulative text, not deltas). The scorecard is buffered and only released
// by Finish, so an incomplete report is never shown mid-stream. One
// Reconciler exists per in-flight question; states never interfere across
// questions.
type Reconciler struct {
	questionID string

	content     string
	hadFeedback bool
	scorecard   []api.ScorecardItem
	isCorrect   *bool
}

func NewReconciler(questionID string) *Reconciler {
	return &Reconciler{questionID: questionID}
}

// Apply consumes one decoded chunk. It returns a StreamFeedbackMsg when the
// chunk carried feedback; scorecard and correctness fields are buffered
// silently.
func (r *Reconciler) Apply(chunk api.Chunk) (tea.Msg, bool) {
	if len(chunk.Scorecard) > 0 {
		r.scorecard = chunk.Scorecard
	}
	if chunk.IsCorrect != nil {
		r.isCorrect = chunk.IsCorrect
	}

	if chunk.Feedback == nil {
		return nil, false
	}

	first := !r.hadFeedback
	r.hadFeedback = true
	r.content = *chunk.Feedback

	return StreamFeedbackMsg{
		QuestionID: r.questionID,
		Content:    r.content,
		First:      first,
	}, true
}

// Finish releases the buffered stream outcome. The correctness flag prefers
// an explicit is_correct from the stream; otherwise it is derived from the
// scorecard, and stays nil when neither was present.
func (r *Reconciler) Finish() StreamDoneMsg {
	isCorrect := r.isCorrect
	if isCorrect == nil && len(r.scorecard) > 0 {
		derived := DeriveIsCorrect(r.scorecard)
		isCorrect = &derived
	}

	return StreamDoneMsg{
		QuestionID:  r.questionID,
		Feedback:    r.content,
		HadFeedback: r.hadFeedback,
		Scorecard:   r.scorecard,
		IsCorrect:   isCorrect,
	}
}
