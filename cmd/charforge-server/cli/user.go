package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"charforge/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
	"golang.org/x/term"
)

const minPasswordLength = 8

func runUser(subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return runUserAdd(args)
	case "delete":
		return runUserDelete(args)
	case "set-password":
		return runUserSetPassword(args)
	case "set-hash":
		return runUserSetHash(args)
	case "set-email":
		return runUserSetEmail(args)
	case "set-username":
		return runUserSetUsername(args)
	case "promote":
		return runUserPromote(args)
	case "list":
		return runUserList(args)
	default:
		return fmt.Errorf("unknown user subcommand: %s", subcommand)
	}
}

// passwordFrom returns the flag value or, with interactive set, a prompted password
func passwordFrom(flagValue string, interactive bool, prompt string) (string, error) {
	switch {
	case interactive && flagValue != "":
		return "", errors.New("cannot use -interactive with -password")
	case interactive:
		fmt.Print(prompt)
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		flagValue = string(pw)
	case flagValue == "":
		return "", errors.New("password required: use -password or -interactive")
	}
	if len(flagValue) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return flagValue, nil
}

// lookupUser resolves a username on an open store
func lookupUser(store *storage.Store, username string) (*storage.UserRecord, error) {
	user, err := store.GetUserByUsername(context.Background(), strings.ToLower(username))
	if err != nil {
		return nil, fmt.Errorf("user not found: %s", username)
	}
	return user, nil
}

func runUserAdd(args []string) error {
	cmd := newCommand("user add")
	username := cmd.fs.String("username", "", "Username (required)")
	email := cmd.fs.String("email", "", "Email address (optional)")
	password := cmd.fs.String("password", "", "Password (optional, will prompt with -interactive)")
	hash := cmd.fs.String("hash", "", "Pre-computed password hash (optional)")
	interactive := cmd.fs.Bool("interactive", false, "Interactive password prompt")
	temp := cmd.fs.Bool("temp", false, "Create as temporary user (default: permanent)")
	if err := cmd.parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("username required")
	}

	var passwordHash string
	if *hash != "" {
		if *password != "" || *interactive {
			return errors.New("cannot combine -hash with -password or -interactive")
		}
		if err := auth.ValidatePHCHashFormat(*hash); err != nil {
			return fmt.Errorf("invalid hash format: %w", err)
		}
		passwordHash = *hash
	} else {
		pw, err := passwordFrom(*password, *interactive, "Enter password: ")
		if err != nil {
			return err
		}
		if passwordHash, err = auth.HashPassword(pw); err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now().UTC()
	record := storage.UserRecord{
		UserID:       uuid.NewString(),
		Username:     strings.ToLower(*username),
		Email:        strings.ToLower(*email),
		PasswordHash: passwordHash,
		AccountType:  storage.AccountPermanent,
		CreatedAt:    now,
	}
	if *temp {
		expiry := now.Add(storage.DefaultUserLimits().TempTTL)
		record.AccountType = storage.AccountTemp
		record.ExpiresAt = &expiry
	}

	if err := store.CreateUser(context.Background(), record); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID: %s\n", record.UserID)
	fmt.Printf("  Username: %s\n", record.Username)
	fmt.Printf("  Type: %s\n", record.AccountType)
	if record.Email != "" {
		fmt.Printf("  Email: %s\n", record.Email)
	}
	return nil
}

func runUserDelete(args []string) error {
	cmd := newCommand("user delete")
	username := cmd.fs.String("username", "", "Username to delete")
	userID := cmd.fs.String("id", "", "User ID to delete")
	if err := cmd.parse(args); err != nil {
		return err
	}
	if (*username == "") == (*userID == "") {
		return errors.New("specify exactly one of -username or -id")
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	targetID := *userID
	if targetID == "" {
		user, err := lookupUser(store, *username)
		if err != nil {
			return err
		}
		targetID = user.UserID
	}

	if err := store.DeleteUser(context.Background(), targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("User deleted with their characters and rolls: %s\n", targetID)
	return nil
}

func runUserSetPassword(args []string) error {
	cmd := newCommand("user set-password")
	username := cmd.fs.String("username", "", "Username (required)")
	password := cmd.fs.String("password", "", "New password")
	interactive := cmd.fs.Bool("interactive", false, "Interactive password prompt")
	if err := cmd.parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("username required")
	}

	pw, err := passwordFrom(*password, *interactive, "Enter new password: ")
	if err != nil {
		return err
	}
	passwordHash, err := auth.HashPassword(pw)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return updateUser(cmd, *username, "password", func(store *storage.Store, id string) error {
		return store.UpdateUserPassword(context.Background(), id, passwordHash)
	})
}

func runUserSetHash(args []string) error {
	cmd := newCommand("user set-hash")
	username := cmd.fs.String("username", "", "Username (required)")
	hash := cmd.fs.String("hash", "", "Password hash (required)")
	if err := cmd.parse(args); err != nil {
		return err
	}
	if *username == "" || *hash == "" {
		return errors.New("-username and -hash required")
	}
	if err := auth.ValidatePHCHashFormat(*hash); err != nil {
		return fmt.Errorf("invalid hash format: %w", err)
	}

	return updateUser(cmd, *username, "password hash", func(store *storage.Store, id string) error {
		return store.UpdateUserPassword(context.Background(), id, *hash)
	})
}

func runUserSetEmail(args []string) error {
	cmd := newCommand("user set-email")
	username := cmd.fs.String("username", "", "Username (required)")
	email := cmd.fs.String("email", "", "New email address (required)")
	if err := cmd.parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return errors.New("-username and -email required")
	}

	return updateUser(cmd, *username, "email", func(store *storage.Store, id string) error {
		return store.UpdateUserEmail(context.Background(), id, strings.ToLower(*email))
	})
}

func runUserSetUsername(args []string) error {
	cmd := newCommand("user set-username")
	current := cmd.fs.String("current", "", "Current username (required)")
	next := cmd.fs.String("new", "", "New username (required)")
	if err := cmd.parse(args); err != nil {
		return err
	}
	if *current == "" || *next == "" {
		return errors.New("-current and -new required")
	}

	return updateUser(cmd, *current, "username", func(store *storage.Store, id string) error {
		return store.UpdateUserUsername(context.Background(), id, strings.ToLower(*next))
	})
}

func runUserPromote(args []string) error {
	cmd := newCommand("user promote")
	username := cmd.fs.String("username", "", "Username (required)")
	if err := cmd.parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("username required")
	}

	return updateUser(cmd, *username, "account type", func(store *storage.Store, id string) error {
		return store.PromoteToPermanent(context.Background(), id)
	})
}

// updateUser opens the store, resolves username and applies fn
func updateUser(cmd *command, username, what string, fn func(*storage.Store, string) error) error {
	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := lookupUser(store, username)
	if err != nil {
		return err
	}
	if err := fn(store, user.UserID); err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}

	fmt.Printf("Updated %s for user: %s\n", what, user.Username)
	return nil
}

func runUserList(args []string) error {
	cmd := newCommand("user list")
	if err := cmd.parse(args); err != nil {
		return err
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "User ID\tUsername\tType\tEmail\tCreated\tExpires\tLast Login")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, u := range users {
		email := u.Email
		if email == "" {
			email = "(none)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			short(u.UserID),
			u.Username,
			u.AccountType,
			email,
			u.CreatedAt.Format("2006-01-02 15:04"),
			formatOptional(u.ExpiresAt, "never"),
			formatOptional(u.LastLoginAt, "never"),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal users: %d\n", len(users))
	return nil
}

func formatOptional(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format("2006-01-02 15:04")
}
