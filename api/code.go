package api

import (
	"context"
	"fmt"
)

// FetchCodeDraft loads the server-side code draft for a question. A missing
// draft is reported as an error by the backend and surfaces here unchanged.
func (c *Client) FetchCodeDraft(ctx context.Context, questionID string) (string, error) {
	var draft CodeDraft
	path := fmt.Sprintf("/code/user/%s/question/%s", c.userID, questionID)
	if err := c.getJSON(ctx, path, &draft); err != nil {
		return "", fmt.Errorf("failed to fetch code draft: %w", err)
	}
	return draft.Code, nil
}

// SaveCodeDraft upserts the server-side code draft for a question.
func (c *Client) SaveCodeDraft(ctx context.Context, questionID, code string) error {
	draft := CodeDraft{
		UserID:     c.userID,
		QuestionID: questionID,
		Code:       code,
	}
	if err := c.postJSON(ctx, "/code/", draft, nil); err != nil {
		return fmt.Errorf("failed to save code draft: %w", err)
	}
	return nil
}

// DeleteCodeDraft removes the server-side code draft for a question.
func (c *Client) DeleteCodeDraft(ctx context.Context, questionID string) error {
	path := fmt.Sprintf("/code/user/%s/question/%s", c.userID, questionID)
	if err := c.delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete code draft: %w", err)
	}
	return nil
}
