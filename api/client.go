// Package api is the client for the course platform backend: chat history,
// streamed answer review, turn persistence, audio files and code drafts.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	userID     string
	taskID     string
}

func NewClient(baseURL, userID, taskID string) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL scheme: %q", parsed.Scheme)
	}

	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		taskID:     taskID,
	}, nil
}

func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) TaskID() string {
	return c.taskID
}

// FetchTask loads the question set for the configured task.
func (c *Client) FetchTask(ctx context.Context) (*Task, error) {
	var task Task
	if err := c.getJSON(ctx, fmt.Sprintf("/task/%s", c.taskID), &task); err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	return &task, nil
}

// FetchHistory loads the persisted chat history for the configured user/task.
func (c *Client) FetchHistory(ctx context.Context) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	path := fmt.Sprintf("/chat/user/%s/task/%s", c.userID, c.taskID)
	if err := c.getJSON(ctx, path, &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch chat history: %w", err)
	}
	return entries, nil
}

// PersistTurn stores one completed user/assistant turn. Callers treat this as
// best-effort; a failure is never rolled back into local message state.
func (c *Client) PersistTurn(ctx context.Context, req PersistTurnRequest) error {
	if err := c.postJSON(ctx, "/chat/", req, nil); err != nil {
		return fmt.Errorf("failed to persist turn: %w", err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.FetchTask(ctx)
	return err
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// checkStatus maps non-2xx responses to errors carrying a short body excerpt.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	body := strings.TrimSpace(string(excerpt))
	if body == "" {
		return fmt.Errorf("backend returned %s", resp.Status)
	}
	return fmt.Errorf("backend returned %s: %s", resp.Status, body)
}
