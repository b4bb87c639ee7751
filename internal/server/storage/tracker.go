package storage

import (
	"context"
	"database/sql"
	"fmt"

	"charforge/internal/server/character"
)

func trackerColumn(t character.Tracker) (string, error) {
	switch t {
	case character.TrackerHP:
		return "hp", nil
	case character.TrackerStress:
		return "stress", nil
	case character.TrackerHope:
		return "hope", nil
	case character.TrackerArmor:
		return "armor_marked", nil
	default:
		return "", fmt.Errorf("unknown tracker %q", t)
	}
}

// trackerValue returns the stored value of one tracker
func (s *Store) trackerValue(ctx context.Context, characterID string, t character.Tracker) (int, error) {
	col, err := trackerColumn(t)
	if err != nil {
		return 0, err
	}
	var v int
	err = s.db.QueryRowContext(ctx, `SELECT `+col+` FROM character_stats WHERE character_id = ?`, characterID).Scan(&v)
	if err != nil {
		return 0, noRows(err)
	}
	return v, nil
}

// SetTracker writes a tracker value directly. The caller clamps.
func (s *Store) SetTracker(ctx context.Context, characterID string, t character.Tracker, value int) error {
	col, err := trackerColumn(t)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `UPDATE character_stats SET `+col+` = ? WHERE character_id = ?`, value, characterID)
	if err != nil {
		return fmt.Errorf("set %s: %w", t, err)
	}
	return expectRow(result)
}

// ApplyTracker reads the current value, computes the next one with fn and stores it,
// all in one transaction so concurrent clicks do not interleave.
func (s *Store) ApplyTracker(ctx context.Context, characterID string, t character.Tracker, fn func(current int) int) (int, error) {
	col, err := trackerColumn(t)
	if err != nil {
		return 0, err
	}
	var next int
	err = s.withTx(ctx, nil, func(tx *sql.Tx) error {
		var current int
		if err := tx.QueryRowContext(ctx,
			`SELECT `+col+` FROM character_stats WHERE character_id = ?`, characterID).Scan(&current); err != nil {
			return noRows(err)
		}
		next = fn(current)
		if _, err := tx.ExecContext(ctx,
			`UPDATE character_stats SET `+col+` = ? WHERE character_id = ?`, next, characterID); err != nil {
			return fmt.Errorf("apply %s: %w", t, err)
		}
		return nil
	})
	return next, err
}

// EnqueueTrackerWrite schedules a tracker write on the async writer. It reports false
// when the write was dropped because the store is degraded or the queue is full.
func (s *Store) EnqueueTrackerWrite(characterID string, t character.Tracker, value int) bool {
	col, err := trackerColumn(t)
	if err != nil {
		return false
	}
	return s.enqueue(func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE character_stats SET `+col+` = ? WHERE character_id = ?`, value, characterID)
		return err
	})
}
