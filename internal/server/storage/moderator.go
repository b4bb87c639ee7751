package storage

import (
	"context"
	"time"
)

// GrantModerator lets moderatorID read playerID's characters and rolls. Granting twice is a no-op.
func (s *Store) GrantModerator(ctx context.Context, moderatorID, playerID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO moderator_grants (moderator_id, player_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(moderator_id, player_id) DO NOTHING`,
		moderatorID, playerID, time.Now().UTC(),
	)
	return err
}

// RevokeModerator removes a grant
func (s *Store) RevokeModerator(ctx context.Context, moderatorID, playerID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM moderator_grants WHERE moderator_id = ? AND player_id = ?`, moderatorID, playerID)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// IsModeratorOf reports whether a grant exists
func (s *Store) IsModeratorOf(ctx context.Context, moderatorID, playerID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM moderator_grants WHERE moderator_id = ? AND player_id = ?`,
		moderatorID, playerID,
	).Scan(&n)
	return n > 0, err
}

// ListGrants returns every grant, oldest first
func (s *Store) ListGrants(ctx context.Context) ([]GrantRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT moderator_id, player_id, created_at FROM moderator_grants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []GrantRecord
	for rows.Next() {
		var g GrantRecord
		if err := rows.Scan(&g.ModeratorID, &g.PlayerID, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
