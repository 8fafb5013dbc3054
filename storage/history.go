package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

// StoredMessage is a persisted chat message in the local cache. Locally
// synthesized error messages are never written here.
type StoredMessage struct {
	ID            string
	QuestionID    string
	Role          string // "user" | "ai"
	Content       string
	ResponseType  string // "text" | "audio" | "code"
	AudioUUID     string
	ScorecardJSON string
	IsCorrect     *bool
	CreatedAt     time.Time
}

// HistoryCache is a sqlite-backed write-through cache of completed turns.
// It hydrates the UI when the backend is unreachable and is the only store
// in offline mode.
type HistoryCache struct {
	db *sql.DB
}

func NewHistoryCache(dataDir string) (*HistoryCache, error) {
	dbPath := filepath.Join(dataDir, "history.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cache := &HistoryCache{db: db}

	if err := cache.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cache, nil
}

func (hc *HistoryCache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		question_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		response_type TEXT NOT NULL,
		audio_uuid TEXT,
		scorecard TEXT,
		is_correct INTEGER,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_question ON messages(question_id, seq);
	`

	_, err := hc.db.Exec(schema)
	return err
}

// ReplaceQuestion overwrites the cached history of one question with the
// given snapshot, atomically. Retry truncation is reflected by simply writing
// the new snapshot.
func (hc *HistoryCache) ReplaceQuestion(questionID string, msgs []StoredMessage) error {
	tx, err := hc.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE question_id = ?`, questionID); err != nil {
		return fmt.Errorf("failed to clear question history: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (id, question_id, seq, role, content, response_type, audio_uuid, scorecard, is_correct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range msgs {
		var isCorrect interface{}
		if msg.IsCorrect != nil {
			if *msg.IsCorrect {
				isCorrect = 1
			} else {
				isCorrect = 0
			}
		}
		_, err := stmt.Exec(msg.ID, questionID, i, msg.Role, msg.Content, msg.ResponseType,
			msg.AudioUUID, msg.ScorecardJSON, isCorrect, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	return tx.Commit()
}

// History loads the full cache, keyed by question id and ordered by insertion.
func (hc *HistoryCache) History() (map[string][]StoredMessage, error) {
	rows, err := hc.db.Query(`
		SELECT id, question_id, role, content, response_type, audio_uuid, scorecard, is_correct, created_at
		FROM messages ORDER BY question_id, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	histories := make(map[string][]StoredMessage)
	for rows.Next() {
		var msg StoredMessage
		var audioUUID, scorecard sql.NullString
		var isCorrect sql.NullInt64

		err := rows.Scan(&msg.ID, &msg.QuestionID, &msg.Role, &msg.Content, &msg.ResponseType,
			&audioUUID, &scorecard, &isCorrect, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg.AudioUUID = audioUUID.String
		msg.ScorecardJSON = scorecard.String
		if isCorrect.Valid {
			v := isCorrect.Int64 != 0
			msg.IsCorrect = &v
		}

		histories[msg.QuestionID] = append(histories[msg.QuestionID], msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return histories, nil
}

// Question loads the cached history of a single question.
func (hc *HistoryCache) Question(questionID string) ([]StoredMessage, error) {
	all, err := hc.History()
	if err != nil {
		return nil, err
	}
	return all[questionID], nil
}

// QuestionIDs lists the question ids present in the cache.
func (hc *HistoryCache) QuestionIDs() ([]string, error) {
	all, err := hc.History()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (hc *HistoryCache) Close() error {
	return hc.db.Close()
}
