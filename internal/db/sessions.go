package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campaign/internal/models"
)

// SessionStore keeps session documents in the campaign_session table.
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

func (s *SessionStore) Load(ctx context.Context, key string) (models.Session, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM campaign_session WHERE session_key = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(doc), &session); err != nil {
		return models.Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE campaign_session SET updated_at = ? WHERE session_key = ?`, s.now().UnixNano(), key); err != nil {
		return models.Session{}, false, fmt.Errorf("touch session: %w", err)
	}
	return session, true, nil
}

func (s *SessionStore) Save(ctx context.Context, key string, session models.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO campaign_session (session_key, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_key) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
	`, key, string(doc), s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM campaign_session WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	cutoff := s.now().Add(-idle).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM campaign_session WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
