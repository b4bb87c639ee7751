package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charforge/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = storage.ErrUserExists
	ErrUserLimit          = errors.New("user limit reached")
	ErrSessionExpired     = errors.New("session expired or revoked")
)

// User represents a registered user account
type User struct {
	UserID      string
	Username    string
	Email       string
	AccountType string
	CreatedAt   time.Time
}

func userFromRecord(r *storage.UserRecord) *User {
	return &User{
		UserID:      r.UserID,
		Username:    r.Username,
		Email:       r.Email,
		AccountType: r.AccountType,
		CreatedAt:   r.CreatedAt,
	}
}

// CreateUser registers an account. The first PermanentSlots accounts are permanent,
// later ones are temporary and expire after TempTTL.
func (s *Service) CreateUser(ctx context.Context, username, email, password string) (*User, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	total, permanent, _, err := s.store.UserCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if total >= s.limits.MaxUsers {
		return nil, ErrUserLimit
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	record := storage.UserRecord{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		AccountType:  storage.AccountPermanent,
		CreatedAt:    now,
	}
	if permanent >= s.limits.PermanentSlots {
		expires := now.Add(s.limits.TempTTL)
		record.AccountType = storage.AccountTemp
		record.ExpiresAt = &expires
	}

	if err := s.store.CreateUser(ctx, record); err != nil {
		return nil, err
	}
	return userFromRecord(&record), nil
}

// AuthenticateUser verifies credentials given a username or an email
func (s *Service) AuthenticateUser(ctx context.Context, identifier, password string) (*User, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	var (
		record *storage.UserRecord
		err    error
	)
	if strings.Contains(identifier, "@") {
		record, err = s.store.GetUserByEmail(ctx, identifier)
	} else {
		record, err = s.store.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		// Hash anyway so unknown users cost the same as bad passwords
		auth.HashPassword(password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(password, record.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	return userFromRecord(record), nil
}

// UpdateLastLogin stamps the login time
func (s *Service) UpdateLastLogin(ctx context.Context, userID string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	return s.store.UpdateUserLastLogin(ctx, userID, s.now())
}

// GetUserByID retrieves user information
func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	record, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return userFromRecord(record), nil
}

// IssueToken opens a session for the user and returns a JWT bound to it
func (s *Service) IssueToken(ctx context.Context, userID string) (string, time.Time, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	session := storage.SessionRecord{
		SessionID: uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	claims := map[string]any{
		"username": user.Username,
		"sid":      session.SessionID,
	}
	token, err := auth.GenerateHS256Token(s.jwtSecret, userID, claims, SessionTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, session.ExpiresAt, nil
}

// ValidateToken verifies the JWT signature and that its session is still open
func (s *Service) ValidateToken(ctx context.Context, token string) (string, map[string]any, error) {
	userID, claims, err := auth.ValidateHS256Token(s.jwtSecret, token)
	if err != nil {
		return "", nil, err
	}
	if s.store == nil {
		return userID, claims, nil
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", nil, ErrSessionExpired
	}
	ok, err := s.store.IsSessionValid(ctx, sid, userID)
	if err != nil {
		return "", nil, fmt.Errorf("session lookup: %w", err)
	}
	if !ok {
		return "", nil, ErrSessionExpired
	}
	return userID, claims, nil
}

// Logout closes the user's session, invalidating outstanding tokens
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	return s.store.DeleteSessionByUserID(ctx, userID)
}
