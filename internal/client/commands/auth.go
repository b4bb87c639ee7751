package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"charforge/internal/client/api"
	"charforge/internal/client/display"

	"golang.org/x/term"
)

func (r *Registry) registerAuthCommands() {
	r.Register(&Command{
		Name:        "register",
		ShortName:   "r",
		Description: "Register a new user",
		Usage:       "register",
		Handler:     registerHandler,
	})
	r.Register(&Command{
		Name:        "login",
		ShortName:   "l",
		Description: "Login with credentials",
		Usage:       "login",
		Handler:     loginHandler,
	})
	r.Register(&Command{
		Name:        "logout",
		ShortName:   "o",
		Description: "End the session on the server",
		Usage:       "logout",
		Handler:     logoutHandler,
	})
	r.Register(&Command{
		Name:        "whoami",
		ShortName:   "i",
		Description: "Show current user",
		Usage:       "whoami",
		Handler:     whoamiHandler,
	})
	r.addGroup("Auth Commands", "register", "login", "logout", "whoami")
}

// stdin is shared so buffered input is not lost between prompts
var stdin = bufio.NewScanner(os.Stdin)

func prompt(label string) string {
	fmt.Print(display.Yellow + label + display.Reset)
	stdin.Scan()
	return strings.TrimSpace(stdin.Text())
}

func readPassword(label string) (string, error) {
	fmt.Print(display.Yellow + label + display.Reset)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func registerHandler(s Session, args []string) error {
	username := prompt("Username: ")
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	email := prompt("Email (optional): ")

	resp, err := s.GetClient().Register(username, password, email)
	if err != nil {
		return err
	}
	signedIn(s, resp, "Registered")
	return nil
}

func loginHandler(s Session, args []string) error {
	identifier := prompt("Username or Email: ")
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	resp, err := s.GetClient().Login(identifier, password)
	if err != nil {
		return err
	}
	signedIn(s, resp, "Logged in")
	return nil
}

func signedIn(s Session, resp *api.AuthResponse, what string) {
	s.SetAuth(resp.UserID, resp.Username, resp.Token)
	fmt.Printf("%s%s successfully%s\n", display.Green, what, display.Reset)
	fmt.Printf("User ID: %s\n", resp.UserID)
	fmt.Printf("Username: %s (%s)\n", resp.Username, resp.AccountType)
	fmt.Printf("Session expires: %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
}

func logoutHandler(s Session, args []string) error {
	if s.GetAuthToken() != "" {
		if err := s.GetClient().Logout(); err != nil {
			fmt.Printf("%sServer logout failed, clearing local session anyway%s\n", display.Yellow, display.Reset)
		}
	}
	s.SetAuth("", "", "")
	fmt.Printf("%sLogged out%s\n", display.Green, display.Reset)
	return nil
}

func whoamiHandler(s Session, args []string) error {
	if s.GetAuthToken() == "" {
		fmt.Printf("%sNot authenticated%s\n", display.Yellow, display.Reset)
		return nil
	}

	user, err := s.GetClient().GetCurrentUser()
	if err != nil {
		return err
	}

	fmt.Printf("%sCurrent User:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  User ID:  %s\n", user.UserID)
	fmt.Printf("  Username: %s\n", user.Username)
	fmt.Printf("  Account:  %s\n", user.AccountType)
	if user.Email != "" {
		fmt.Printf("  Email:    %s\n", user.Email)
	}
	fmt.Printf("  Created:  %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
