package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Account types
const (
	AccountPermanent = "permanent"
	AccountTemp      = "temp"
)

// ErrUserExists is returned when a username or email is already taken
var ErrUserExists = errors.New("username or email already exists")

// UserLimits defines registration constraints
type UserLimits struct {
	MaxUsers       int
	PermanentSlots int
	TempTTL        time.Duration
}

// DefaultUserLimits returns the default registration limits
func DefaultUserLimits() UserLimits {
	return UserLimits{
		MaxUsers:       500,
		PermanentSlots: 50,
		TempTTL:        7 * 24 * time.Hour,
	}
}

const userColumns = `user_id, username, COALESCE(email, ''), password_hash, account_type, created_at, expires_at, last_login_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*UserRecord, error) {
	var u UserRecord
	err := row.Scan(
		&u.UserID, &u.Username, &u.Email,
		&u.PasswordHash, &u.AccountType, &u.CreatedAt,
		&u.ExpiresAt, &u.LastLoginAt,
	)
	if err != nil {
		return nil, noRows(err)
	}
	return &u, nil
}

// UserCounts returns current user counts by account type
func (s *Store) UserCounts(ctx context.Context) (total, permanent, temp int, err error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN account_type = 'permanent' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN account_type = 'temp' THEN 1 ELSE 0 END), 0)
	FROM users`

	err = s.db.QueryRowContext(ctx, query).Scan(&total, &permanent, &temp)
	return
}

// OldestTempUser returns the oldest temporary user, a candidate for replacement
func (s *Store) OldestTempUser(ctx context.Context) (*UserRecord, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE account_type = 'temp' ORDER BY created_at ASC LIMIT 1`
	return scanUser(s.db.QueryRowContext(ctx, query))
}

// DeleteExpiredTempUsers removes temporary users past their expiry
func (s *Store) DeleteExpiredTempUsers(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM users WHERE account_type = 'temp' AND expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CreateUser inserts a user, checking uniqueness in the same transaction
func (s *Store) CreateUser(ctx context.Context, record UserRecord) error {
	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		query := `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE`
		args := []any{record.Username}
		if record.Email != "" {
			query += ` OR email = ? COLLATE NOCASE`
			args = append(args, record.Email)
		}

		var count int
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return ErrUserExists
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO users (
			user_id, username, email, password_hash, account_type, created_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.UserID, record.Username, nullIfEmpty(record.Email),
			record.PasswordHash, record.AccountType, record.CreatedAt, record.ExpiresAt,
		)
		return err
	})
}

// DeleteUser removes a user and, by cascade, their characters, sessions and grants
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// PromoteToPermanent upgrades a temp user to permanent
func (s *Store) PromoteToPermanent(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET account_type = 'permanent', expires_at = NULL WHERE user_id = ?`, userID)
	return err
}

// UpdateUserPassword replaces the stored password hash
func (s *Store) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	return s.updateUserField(ctx, "password_hash", userID, passwordHash)
}

// UpdateUserEmail replaces the email, empty clears it
func (s *Store) UpdateUserEmail(ctx context.Context, userID, email string) error {
	return s.updateUserField(ctx, "email", userID, nullIfEmpty(email))
}

// UpdateUserUsername renames a user
func (s *Store) UpdateUserUsername(ctx context.Context, userID, username string) error {
	return s.updateUserField(ctx, "username", userID, username)
}

// UpdateUserLastLogin records a successful login
func (s *Store) UpdateUserLastLogin(ctx context.Context, userID string, at time.Time) error {
	if err := s.updateUserField(ctx, "last_login_at", userID, at); err != nil {
		return fmt.Errorf("failed to update last login for user %s: %w", userID, err)
	}
	return nil
}

// column is always one of the fixed names above
func (s *Store) updateUserField(ctx context.Context, column, userID string, value any) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET `+column+` = ? WHERE user_id = ?`, value, userID)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// ListUsers returns all users, newest first
func (s *Store) ListUsers(ctx context.Context) ([]UserRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetUserByUsername looks a user up case-insensitively
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*UserRecord, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username))
}

// GetUserByEmail looks a user up case-insensitively
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
}

// GetUserByID looks a user up by id
func (s *Store) GetUserByID(ctx context.Context, userID string) (*UserRecord, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID))
}

// expectRow turns a zero-row update or delete into ErrNotFound
func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
