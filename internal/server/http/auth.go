package http

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"

	"charforge/internal/server/core"
	"charforge/internal/server/service"

	"github.com/gofiber/fiber/v2"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{1,40}$`)

// RegisterRequest defines the user registration payload
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=40"`
	Email    string `json:"email" validate:"omitempty,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest accepts a username or an email as identifier
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token       string    `json:"token"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	AccountType string    `json:"accountType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type UserResponse struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	AccountType string    `json:"accountType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RegisterHandler creates an account and signs it in
func (h *HTTPHandler) RegisterHandler(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", err.Error())
	}

	if !usernameRegex.MatchString(req.Username) {
		return badRequest(c, "invalid username format",
			"username must be 1-40 characters, alphanumeric and underscore only")
	}
	if req.Email != "" && !emailRegex.MatchString(req.Email) {
		return badRequest(c, "invalid email format", "email must be a valid email address")
	}
	if err := validatePassword(req.Password); err != nil {
		return badRequest(c, "weak password", err.Error())
	}

	// Case-insensitive identities
	req.Username = strings.ToLower(req.Username)
	req.Email = strings.ToLower(req.Email)

	user, err := h.svc.CreateUser(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			return c.Status(fiber.StatusConflict).JSON(core.ErrorResponse{
				Error:   "user already exists",
				Code:    core.ErrInvalidRequest,
				Details: "username or email already taken",
			})
		case errors.Is(err, service.ErrUserLimit):
			return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
				Error: "registration closed",
				Code:  core.ErrResourceLimit,
			})
		default:
			return serviceFailure(c, "failed to create user", err)
		}
	}

	return h.issueToken(c, fiber.StatusCreated, user)
}

// validatePassword requires 8-128 characters with a letter and a number
func validatePassword(password string) error {
	const (
		minPasswordLength = 8
		maxPasswordLength = 128
	)
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLength)
	}

	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsNumber(r):
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return fmt.Errorf("password must contain at least one letter and one number")
	}
	return nil
}

// LoginHandler authenticates and opens a fresh session
func (h *HTTPHandler) LoginHandler(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", err.Error())
	}

	user, err := h.svc.AuthenticateUser(c.Context(), strings.ToLower(req.Identifier), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrStorageDisabled) {
			return serviceFailure(c, "login unavailable", err)
		}
		// Same answer for unknown user and bad password
		return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
			Error: "invalid credentials",
			Code:  core.ErrUnauthorized,
		})
	}

	if err := h.svc.UpdateLastLogin(c.Context(), user.UserID); err != nil {
		log.Printf("login: last login update for %s: %v", user.UserID, err)
	}

	return h.issueToken(c, fiber.StatusOK, user)
}

func (h *HTTPHandler) issueToken(c *fiber.Ctx, status int, user *service.User) error {
	token, expiresAt, err := h.svc.IssueToken(c.Context(), user.UserID)
	if err != nil {
		return serviceFailure(c, "failed to generate token", err)
	}
	return c.Status(status).JSON(AuthResponse{
		Token:       token,
		UserID:      user.UserID,
		Username:    user.Username,
		Email:       user.Email,
		AccountType: user.AccountType,
		ExpiresAt:   expiresAt,
	})
}

// GetCurrentUserHandler returns the authenticated account
func (h *HTTPHandler) GetCurrentUserHandler(c *fiber.Ctx) error {
	user, err := h.svc.GetUserByID(c.Context(), currentUser(c))
	if err != nil {
		if errors.Is(err, service.ErrStorageDisabled) {
			return serviceFailure(c, "user lookup unavailable", err)
		}
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "user not found",
			Code:  core.ErrNotFound,
		})
	}

	return c.JSON(UserResponse{
		UserID:      user.UserID,
		Username:    user.Username,
		Email:       user.Email,
		AccountType: user.AccountType,
		CreatedAt:   user.CreatedAt,
	})
}

// LogoutHandler closes the caller's session
func (h *HTTPHandler) LogoutHandler(c *fiber.Ctx) error {
	if err := h.svc.Logout(c.Context(), currentUser(c)); err != nil {
		return serviceFailure(c, "logout failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// serviceFailure reports a disabled store as 503 and anything else as 500
func serviceFailure(c *fiber.Ctx, message string, err error) error {
	if errors.Is(err, service.ErrStorageDisabled) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
			Error: "storage disabled",
			Code:  core.ErrStorageDisabled,
		})
	}
	log.Printf("http: %s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: message,
		Code:  core.ErrInternalError,
	})
}
