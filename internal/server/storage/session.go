package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateSession replaces any session the user already holds, one session per user
func (s *Store) CreateSession(ctx context.Context, record SessionRecord) error {
	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, record.UserID); err != nil {
			return fmt.Errorf("failed to delete existing session: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (session_id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
			record.SessionID, record.UserID, record.CreatedAt, record.ExpiresAt,
		); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
}

// GetSession retrieves a session by id
func (s *Store) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	var session SessionRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, created_at, expires_at FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&session.SessionID, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		return nil, noRows(err)
	}
	return &session, nil
}

// DeleteSessionByUserID ends the user's session
func (s *Store) DeleteSessionByUserID(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes expired sessions
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// IsSessionValid reports whether the session belongs to userID and has not expired
func (s *Store) IsSessionValid(ctx context.Context, sessionID, userID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE session_id = ? AND user_id = ? AND expires_at > ?`,
		sessionID, userID, time.Now().UTC(),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
