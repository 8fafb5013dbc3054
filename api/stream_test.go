package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "user-1", "task-1")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, srv
}

func collectChunks(t *testing.T, client *Client) []Chunk {
	t.Helper()

	var chunks []Chunk
	err := client.StreamAnswer(context.Background(), SubmitRequest{QuestionID: "q1"}, func(chunk Chunk) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamAnswer failed: %v", err)
	}
	return chunks
}

func TestStreamAnswerCumulativeFeedback(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ai/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"feedback":"A"}` + "\n"))
		w.Write([]byte(`{"feedback":"AB"}` + "\n"))
		w.Write([]byte(`{"feedback":"AB","scorecard":[{"category":"Accuracy","score":2,"max_score":2}]}` + "\n"))
	})

	chunks := collectChunks(t, client)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if *chunks[0].Feedback != "A" || *chunks[1].Feedback != "AB" {
		t.Errorf("feedback chunks arrived out of order: %q, %q", *chunks[0].Feedback, *chunks[1].Feedback)
	}
	if len(chunks[2].Scorecard) != 1 || chunks[2].Scorecard[0].Category != "Accuracy" {
		t.Errorf("scorecard chunk not decoded: %+v", chunks[2].Scorecard)
	}
}

func TestStreamAnswerSkipsMalformedLines(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feedback":"first"}` + "\n"))
		w.Write([]byte("{not json at all\n"))
		w.Write([]byte("\n"))
		w.Write([]byte(`{"feedback":"second"}` + "\n"))
	})

	chunks := collectChunks(t, client)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks after skipping garbage, got %d", len(chunks))
	}
	if *chunks[1].Feedback != "second" {
		t.Errorf("decoding did not resume after malformed line: %q", *chunks[1].Feedback)
	}
}

func TestStreamAnswerTrailingLineWithoutNewline(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feedback":"partial"}`)) // no trailing newline
	})

	chunks := collectChunks(t, client)

	if len(chunks) != 1 || *chunks[0].Feedback != "partial" {
		t.Fatalf("trailing line without newline was not decoded: %+v", chunks)
	}
}

func TestStreamAnswerStopsAtDoneMarker(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feedback":"all"}` + "\n"))
		w.Write([]byte(`{"done":true}` + "\n"))
		w.Write([]byte(`{"feedback":"ignored"}` + "\n"))
	})

	chunks := collectChunks(t, client)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks before done, got %d", len(chunks))
	}
	if !chunks[1].Done {
		t.Error("done marker not decoded")
	}
}

func TestStreamAnswerNonSuccessStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "review backend unavailable", http.StatusBadGateway)
	})

	err := client.StreamAnswer(context.Background(), SubmitRequest{}, nil)
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error does not mention status: %v", err)
	}
}

func TestStreamAnswerCallbackErrorAborts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feedback":"a"}` + "\n"))
		w.Write([]byte(`{"feedback":"b"}` + "\n"))
	})

	calls := 0
	err := client.StreamAnswer(context.Background(), SubmitRequest{}, func(chunk Chunk) error {
		calls++
		return context.Canceled
	})
	if err != context.Canceled {
		t.Fatalf("callback error not returned unchanged: %v", err)
	}
	if calls != 1 {
		t.Errorf("stream continued after callback error: %d calls", calls)
	}
}

func TestStreamAnswerClampsScores(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"scorecard":[{"category":"A","score":5,"max_score":2},{"category":"B","score":-1,"max_score":2}]}` + "\n"))
	})

	chunks := collectChunks(t, client)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if got := chunks[0].Scorecard[0].Score; got != 2 {
		t.Errorf("score above max not clamped: %v", got)
	}
	if got := chunks[0].Scorecard[1].Score; got != 0 {
		t.Errorf("negative score not clamped: %v", got)
	}
}
