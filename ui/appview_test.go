package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"qtui/api"
	"qtui/config"
	appmodel "qtui/model"
)

func newTestView(questions ...api.Question) AppView {
	cfg := &config.Config{Offline: true, UserID: "user-1", TaskID: "task-1"}
	m := appmodel.NewModel(cfg, nil, nil, nil, "test")
	m.Task = &api.Task{ID: "task-1", Title: "Test Task", Questions: questions}
	return NewAppView(m)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func asView(t *testing.T, m tea.Model) AppView {
	t.Helper()
	view, ok := m.(AppView)
	if !ok {
		t.Fatalf("Update returned %T, want AppView", m)
	}
	return view
}

func TestExamConfirmModalOpensAndCancelDiscardsStaged(t *testing.T) {
	view := newTestView(
		api.Question{ID: "q1", Title: "One", InputType: "text", TaskType: "exam"},
	)

	// Staging happens in the data model before the prompt appears
	view.dataModel.PendingExam["q1"] = appmodel.PendingSubmission{Content: "answer", Type: "text"}

	next, _ := view.Update(appmodel.ExamConfirmRequiredMsg{QuestionID: "q1"})
	view = asView(t, next)

	if !view.confirmation.Active {
		t.Fatal("confirmation modal not active after ExamConfirmRequiredMsg")
	}
	if view.confirmation.Kind != confirmExamSubmit {
		t.Errorf("confirmation kind = %q, want %q", view.confirmation.Kind, confirmExamSubmit)
	}

	next, _ = view.Update(keyRune('n'))
	view = asView(t, next)

	if view.confirmation.Active {
		t.Error("confirmation modal still active after cancel")
	}
	if _, staged := view.dataModel.PendingExam["q1"]; staged {
		t.Error("cancel left the exam submission staged")
	}
}

func TestExamConfirmAcceptSubmitsStaged(t *testing.T) {
	view := newTestView(
		api.Question{ID: "q1", Title: "One", InputType: "text", TaskType: "exam"},
	)
	view.dataModel.PendingExam["q1"] = appmodel.PendingSubmission{Content: "answer", Type: "text"}

	next, _ := view.Update(appmodel.ExamConfirmRequiredMsg{QuestionID: "q1"})
	view = asView(t, next)

	next, _ = view.Update(keyRune('y'))
	view = asView(t, next)

	if view.confirmation.Active {
		t.Error("confirmation modal still active after accept")
	}
	if _, staged := view.dataModel.PendingExam["q1"]; staged {
		t.Error("accept did not consume the staged submission")
	}
}

func TestNavigateWhileStreamingAsksForConfirmation(t *testing.T) {
	view := newTestView(
		api.Question{ID: "q1", Title: "One", InputType: "text", TaskType: "quiz"},
		api.Question{ID: "q2", Title: "Two", InputType: "text", TaskType: "quiz"},
	)
	view.dataModel.Responding["q1"] = true

	next, _ := view.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	view = asView(t, next)

	if !view.confirmation.Active {
		t.Fatal("expected a confirmation prompt while the review is streaming")
	}
	if view.confirmation.Kind != confirmNavigate {
		t.Errorf("confirmation kind = %q, want %q", view.confirmation.Kind, confirmNavigate)
	}
	if view.confirmation.NavTarget != "q2" {
		t.Errorf("nav target = %q, want q2", view.confirmation.NavTarget)
	}
	if view.dataModel.CurrentIndex != 0 {
		t.Error("navigation happened before confirmation")
	}

	next, _ = view.Update(keyRune('y'))
	view = asView(t, next)

	if view.dataModel.CurrentIndex != 1 {
		t.Errorf("current index = %d after confirm, want 1", view.dataModel.CurrentIndex)
	}
	if !view.dataModel.IsAiResponding("q1") {
		t.Error("navigating away cancelled the stream")
	}
}

func TestNavigateConfirmationDeclinedStaysPut(t *testing.T) {
	view := newTestView(
		api.Question{ID: "q1", Title: "One", InputType: "text", TaskType: "quiz"},
		api.Question{ID: "q2", Title: "Two", InputType: "text", TaskType: "quiz"},
	)
	view.dataModel.Responding["q1"] = true

	next, _ := view.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	view = asView(t, next)

	next, _ = view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	view = asView(t, next)

	if view.confirmation.Active {
		t.Error("confirmation modal still active after decline")
	}
	if view.dataModel.CurrentIndex != 0 {
		t.Errorf("current index = %d after decline, want 0", view.dataModel.CurrentIndex)
	}
}

func TestNavigateWithoutStreamMovesImmediately(t *testing.T) {
	view := newTestView(
		api.Question{ID: "q1", Title: "One", InputType: "text", TaskType: "quiz"},
		api.Question{ID: "q2", Title: "Two", InputType: "text", TaskType: "quiz"},
	)

	next, _ := view.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	view = asView(t, next)

	if view.confirmation.Active {
		t.Error("unexpected confirmation prompt with no open stream")
	}
	if view.dataModel.CurrentIndex != 1 {
		t.Errorf("current index = %d, want 1", view.dataModel.CurrentIndex)
	}

	// First question is out of range going backwards twice
	next, _ = view.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	view = asView(t, next)
	next, _ = view.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	view = asView(t, next)

	if view.dataModel.CurrentIndex != 0 {
		t.Errorf("current index = %d, want 0", view.dataModel.CurrentIndex)
	}
}

func TestStreamErrorAppendsOneErrorMessage(t *testing.T) {
	view := newTestView(
		api.Question{ID: "q1", Title: "One", InputType: "text", TaskType: "quiz"},
	)
	m := view.dataModel
	m.AppendMessage("q1", appmodel.NewUserMessage("answer", appmodel.TypeText))
	m.Submitting["q1"] = true
	m.Responding["q1"] = true

	next, _ := view.Update(appmodel.StreamErrorMsg{QuestionID: "q1", Err: errors.New("connection reset")})
	view = asView(t, next)

	history := m.History("q1")
	if len(history) != 2 {
		t.Fatalf("history length = %d after stream error, want 2", len(history))
	}
	last := history[1]
	if last.Sender != appmodel.SenderAI || !last.IsError {
		t.Errorf("trailing message sender=%q isError=%v, want AI error message", last.Sender, last.IsError)
	}
	if m.IsAiResponding("q1") {
		t.Error("question still marked responding after stream error")
	}
	if !m.CanSubmit("q1") {
		t.Error("stream error did not re-enable submission")
	}
}

func TestStreamWithoutFeedbackInsertsNoMessage(t *testing.T) {
	view := newTestView(
		api.Question{ID: "q1", Title: "One", InputType: "text", TaskType: "quiz"},
	)
	m := view.dataModel
	m.AppendMessage("q1", appmodel.NewUserMessage("answer", appmodel.TypeText))
	m.Submitting["q1"] = true
	m.Responding["q1"] = true

	next, cmd := view.Update(appmodel.StreamDoneMsg{QuestionID: "q1", HadFeedback: false})
	view = asView(t, next)

	history := m.History("q1")
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1 (the user message only)", len(history))
	}
	if history[0].Sender != appmodel.SenderUser {
		t.Error("the surviving message is not the user's")
	}
	if m.IsAiResponding("q1") {
		t.Error("question still marked responding after an empty stream")
	}
	if cmd != nil {
		t.Error("empty stream scheduled a persistence command")
	}
}

func TestScorecardOnlyStreamAnchorsEmptyMessage(t *testing.T) {
	view := newTestView(
		api.Question{ID: "q1", Title: "One", InputType: "text", TaskType: "quiz"},
	)
	m := view.dataModel
	m.AppendMessage("q1", appmodel.NewUserMessage("answer", appmodel.TypeText))
	m.Submitting["q1"] = true
	m.Responding["q1"] = true

	correct := true
	items := []api.ScorecardItem{{Category: "Accuracy", Score: 2, MaxScore: 2}}
	next, _ := view.Update(appmodel.StreamDoneMsg{
		QuestionID:  "q1",
		HadFeedback: false,
		Scorecard:   items,
		IsCorrect:   &correct,
	})
	view = asView(t, next)

	history := m.History("q1")
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	last := history[1]
	if last.Sender != appmodel.SenderAI || last.Content != "" {
		t.Errorf("anchor message sender=%q content=%q, want empty AI message", last.Sender, last.Content)
	}
	if len(last.Scorecard) != 1 {
		t.Errorf("scorecard not attached: %d items", len(last.Scorecard))
	}
	if last.IsCorrect == nil || !*last.IsCorrect {
		t.Error("correctness flag not attached")
	}
}
