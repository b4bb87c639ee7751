package commands

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"charforge/internal/client/display"
)

const apiPrefix = "/api/v1"

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "status",
		ShortName:   ".",
		Description: "Show server health, storage state and session",
		Usage:       "status",
		Handler:     statusHandler,
	})
	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set the server URL",
		Usage:       "url [host:port|http(s)://host:port]",
		Handler:     urlHandler,
	})
	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send a raw API request; relative paths go under " + apiPrefix,
		Usage:       "raw <method> <path> [json-body]",
		Handler:     rawRequestHandler,
	})
	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func statusHandler(s Session, args []string) error {
	fmt.Printf("%sServer%s %s\n", display.Cyan, display.Reset, s.GetAPIBaseURL())
	resp, err := s.GetClient().Health()
	if err != nil {
		fmt.Printf("  %sunreachable%s\n", display.Red, display.Reset)
	} else {
		fmt.Printf("  Status:  %s\n", resp.Status)
		fmt.Printf("  Time:    %s\n", time.Unix(resp.Time, 0).Format("2006-01-02 15:04:05"))
		fmt.Printf("  Storage: %s\n", storageLine(resp.Storage))
	}

	fmt.Printf("%sSession%s\n", display.Cyan, display.Reset)
	user := "-"
	if s.GetAuthToken() != "" {
		user = fmt.Sprintf("%s (%s)", s.GetUsername(), s.GetUserID())
	}
	fmt.Printf("  User:      %s\n", user)
	fmt.Printf("  Character: %s\n", orDash(s.GetCurrentCharacter()))
	if p := s.GetWatchedPlayer(); p != "" {
		fmt.Printf("  Watching:  %s after roll #%d\n", p, s.GetLastRollID())
	}
	return err
}

// storageLine colors the server's storage state and says what it means for writes
func storageLine(state string) string {
	switch state {
	case "ok":
		return display.Green + "ok" + display.Reset
	case "degraded":
		return display.Yellow + "degraded" + display.Reset + " (deferred tracker saves are dropped)"
	case "disabled":
		return display.Red + "disabled" + display.Reset + " (characters and rolls unavailable)"
	case "":
		return "-"
	default:
		return state
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Printf("Current server URL: %s\n", s.GetAPIBaseURL())
		return nil
	}

	base, err := normalizeBaseURL(args[0])
	if err != nil {
		return err
	}
	s.SetAPIBaseURL(base)

	fmt.Printf("%sServer URL set to: %s%s\n", display.Cyan, base, display.Reset)
	return nil
}

// normalizeBaseURL accepts host:port or a full http(s) URL and drops trailing slashes
func normalizeBaseURL(raw string) (string, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL: %s", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func rawRequestHandler(s Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}
	return s.GetClient().RawRequest(strings.ToUpper(args[0]), apiPath(args[1]), strings.Join(args[2:], " "))
}

// apiPath leaves absolute paths alone and roots the rest under the API prefix
func apiPath(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return apiPrefix + "/" + p
}

func clearHandler(s Session, args []string) error {
	fmt.Print("\033[H\033[2J")
	return nil
}
