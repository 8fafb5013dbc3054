package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		baseURL     string
		expectError bool
	}{
		{
			name:        "default URL when empty",
			baseURL:     "",
			expectError: false,
		},
		{
			name:        "http URL",
			baseURL:     "http://localhost:8000",
			expectError: false,
		},
		{
			name:        "https URL with trailing slash",
			baseURL:     "https://backend.example.com/",
			expectError: false,
		},
		{
			name:        "unsupported scheme",
			baseURL:     "ftp://backend.example.com",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.baseURL, "u", "t")
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.baseURL == "" {
				t.Error("baseURL not defaulted")
			}
		})
	}
}

func TestFetchTask(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/task/task-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Task{
			ID:       "task-1",
			Title:    "Networking Basics",
			TaskType: "quiz",
			Questions: []Question{
				{ID: "q1", Title: "TCP vs UDP", InputType: "text", TaskType: "quiz"},
			},
		})
	})

	task, err := client.FetchTask(context.Background())
	if err != nil {
		t.Fatalf("FetchTask failed: %v", err)
	}
	if len(task.Questions) != 1 || task.Questions[0].ID != "q1" {
		t.Errorf("task not decoded: %+v", task)
	}
}

func TestFetchHistory(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/user/user-1/task/task-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]HistoryEntry{
			{ID: "m1", Role: "user", Content: "my answer", ResponseType: "text", QuestionID: "q1"},
			{ID: "m2", Role: "assistant", Content: `{"feedback":"good"}`, ResponseType: "text", QuestionID: "q1"},
		})
	})

	entries, err := client.FetchHistory(context.Background())
	if err != nil {
		t.Fatalf("FetchHistory failed: %v", err)
	}
	if len(entries) != 2 || entries[1].Role != "assistant" {
		t.Errorf("history not decoded: %+v", entries)
	}
}

func TestPersistTurn(t *testing.T) {
	var got PersistTurnRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
	})

	err := client.PersistTurn(context.Background(), PersistTurnRequest{
		UserID:     "user-1",
		QuestionID: "q1",
		Messages: []TurnRecord{
			{ID: "m1", Role: "user", Content: "answer", ResponseType: "text"},
		},
		IsComplete: true,
	})
	if err != nil {
		t.Fatalf("PersistTurn failed: %v", err)
	}
	if got.QuestionID != "q1" || !got.IsComplete || len(got.Messages) != 1 {
		t.Errorf("request body not sent as expected: %+v", got)
	}
}

func TestCodeDraftRoundtrip(t *testing.T) {
	saved := map[string]string{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/code/":
			var draft CodeDraft
			json.NewDecoder(r.Body).Decode(&draft)
			saved[draft.QuestionID] = draft.Code
		case r.Method == http.MethodGet && r.URL.Path == "/code/user/user-1/question/q1":
			json.NewEncoder(w).Encode(CodeDraft{UserID: "user-1", QuestionID: "q1", Code: saved["q1"]})
		case r.Method == http.MethodDelete && r.URL.Path == "/code/user/user-1/question/q1":
			delete(saved, "q1")
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	if err := client.SaveCodeDraft(context.Background(), "q1", "print('hi')"); err != nil {
		t.Fatalf("SaveCodeDraft failed: %v", err)
	}

	code, err := client.FetchCodeDraft(context.Background(), "q1")
	if err != nil {
		t.Fatalf("FetchCodeDraft failed: %v", err)
	}
	if code != "print('hi')" {
		t.Errorf("draft roundtrip mismatch: %q", code)
	}

	if err := client.DeleteCodeDraft(context.Background(), "q1"); err != nil {
		t.Fatalf("DeleteCodeDraft failed: %v", err)
	}
	if _, ok := saved["q1"]; ok {
		t.Error("draft not deleted on server")
	}
}

func TestUploadAudioFallsBackToLocal(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/file/presigned-url/create":
			http.Error(w, "presigning disabled", http.StatusNotImplemented)
		case "/file/upload-local":
			json.NewEncoder(w).Encode(map[string]string{"uuid": "file-123"})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	uuid, err := client.UploadAudio(context.Background(), []byte("RIFFdata"))
	if err != nil {
		t.Fatalf("UploadAudio failed: %v", err)
	}
	if uuid != "file-123" {
		t.Errorf("unexpected uuid: %q", uuid)
	}
}
