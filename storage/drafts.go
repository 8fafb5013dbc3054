package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Draft is a locally saved code answer in progress.
type Draft struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	Code       string    `json:"code"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DraftStore persists code drafts as JSON files, one per question. Drafts are
// synced to the backend separately; this store keeps them available offline.
type DraftStore struct {
	draftsDir string
}

func NewDraftStore(dataDir string) (*DraftStore, error) {
	draftsDir := filepath.Join(dataDir, "drafts")

	// 0700 - user-only access
	if err := os.MkdirAll(draftsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create drafts directory: %w", err)
	}

	return &DraftStore{
		draftsDir: draftsDir,
	}, nil
}

func (ds *DraftStore) path(questionID string) string {
	return filepath.Join(ds.draftsDir, fmt.Sprintf("%s.json", questionID))
}

// Save writes the draft for a question, replacing any previous draft.
func (ds *DraftStore) Save(questionID, code string) error {
	draft := Draft{
		ID:         uuid.New().String(),
		QuestionID: questionID,
		Code:       code,
		UpdatedAt:  time.Now(),
	}

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	// 0600 - drafts contain answer content
	if err := os.WriteFile(ds.path(questionID), data, 0600); err != nil {
		return fmt.Errorf("failed to write draft file: %w", err)
	}

	return nil
}

// Load returns the saved draft code for a question, or ("", nil) when no
// draft exists.
func (ds *DraftStore) Load(questionID string) (string, error) {
	data, err := os.ReadFile(ds.path(questionID))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read draft file: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return "", fmt.Errorf("failed to unmarshal draft: %w", err)
	}

	return draft.Code, nil
}

// Delete removes the draft for a question. Missing drafts are not an error.
func (ds *DraftStore) Delete(questionID string) error {
	err := os.Remove(ds.path(questionID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
