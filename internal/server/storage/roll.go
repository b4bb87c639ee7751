package storage

import (
	"context"
	"fmt"
	"strings"
)

// Roll window bounds
const (
	MinRollLimit     = 1
	MaxRollLimit     = 200
	DefaultRollLimit = 20
)

// RollQuery selects a window of the roll log. UserID empty means every user (admin only).
type RollQuery struct {
	UserID      string
	CharacterID string
	AfterID     int64
	Limit       int
}

// ClampRollLimit bounds limit to [MinRollLimit, MaxRollLimit]
func ClampRollLimit(limit int) int {
	return min(max(limit, MinRollLimit), MaxRollLimit)
}

// AppendRoll adds a roll to the log and returns its id
func (s *Store) AppendRoll(ctx context.Context, r RollRecord) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO rolls (user_id, character_id, dice, total, fear, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.CharacterID, r.Dice, r.Total, r.Fear, r.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("append roll: %w", err)
	}
	return result.LastInsertId()
}

// RecentRolls returns the matching rolls, most recent first
func (s *Store) RecentRolls(ctx context.Context, q RollQuery) ([]RollRecord, error) {
	var (
		where []string
		args  []any
	)
	if q.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, q.UserID)
	}
	if q.CharacterID != "" {
		where = append(where, "character_id = ?")
		args = append(args, q.CharacterID)
	}
	if q.AfterID > 0 {
		where = append(where, "roll_id > ?")
		args = append(args, q.AfterID)
	}

	query := `SELECT roll_id, user_id, character_id, dice, total, fear, created_at FROM rolls`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY roll_id DESC LIMIT ?"
	args = append(args, ClampRollLimit(q.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rolls := []RollRecord{}
	for rows.Next() {
		var r RollRecord
		if err := rows.Scan(&r.RollID, &r.UserID, &r.CharacterID, &r.Dice, &r.Total, &r.Fear, &r.CreatedAt); err != nil {
			return nil, err
		}
		rolls = append(rolls, r)
	}
	return rolls, rows.Err()
}
