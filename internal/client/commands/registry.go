// Package commands implements the debug client's REPL commands.
package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"charforge/internal/client/api"
	"charforge/internal/client/display"
)

// Session is the client state the commands read and update
type Session interface {
	GetAPIBaseURL() string
	SetAPIBaseURL(string)
	GetClient() *api.Client
	IsVerbose() bool
	SetAuth(userID, username, token string)
	GetUserID() string
	GetUsername() string
	GetAuthToken() string
	GetCurrentCharacter() string
	SetCurrentCharacter(id, name string)
	GetWatchedPlayer() string
	SetWatchedPlayer(string)
	GetLastRollID() int64
	SetLastRollID(int64)
}

var (
	errNotLoggedIn = errors.New("not logged in (use register or login)")
	errNoCharacter = errors.New("no current character (use build, list or use)")
	errNoWatched   = errors.New("no watched player (use poll <playerId>)")
)

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  Session
	commands map[string]*Command
	groups   []group
}

type group struct {
	title string
	names []string
}

func NewRegistry(session Session) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
	}

	r.registerCharacterCommands()
	r.registerRollCommands()
	r.registerAuthCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})
	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     exitHandler,
	})
	r.groups = append(r.groups, group{"Utility Commands", []string{"status", "url", "raw", "clear", "help", "exit"}})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// addGroup lists commands under a help heading
func (r *Registry) addGroup(title string, names ...string) {
	r.groups = append(r.groups, group{title, names})
}

func (r *Registry) Execute(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd, exists := r.commands[parts[0]]
	if !exists {
		fmt.Printf("%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		fmt.Printf("Type 'help' for available commands\n")
		return
	}

	r.session.GetClient().SetVerbose(r.session.IsVerbose())

	if err := cmd.Handler(r.session, parts[1:]); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			// already printed by the client
			return
		}
		fmt.Printf("%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
}

func (r *Registry) helpHandler(s Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Printf("\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Printf("Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Printf("Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Printf("\n%sAvailable Commands:%s\n", display.Cyan, display.Reset)
	for _, g := range r.groups {
		fmt.Printf("\n%s%s:%s\n", display.Yellow, g.title, display.Reset)
		for _, name := range g.names {
			cmd, ok := r.commands[name]
			if !ok {
				continue
			}
			shortPart := "    "
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
			}
			fmt.Printf("  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	fmt.Printf("\nType 'help <command>' for detailed usage\n")
	fmt.Printf("Add '-v' to any command for verbose output\n")
	return nil
}

func exitHandler(s Session, args []string) error {
	fmt.Printf("%sGoodbye!%s\n", display.Cyan, display.Reset)
	os.Exit(0)
	return nil
}

func requireLogin(s Session) error {
	if s.GetAuthToken() == "" {
		return errNotLoggedIn
	}
	return nil
}

// characterArg returns the explicit id argument or the current character
func characterArg(s Session, args []string, pos int) (string, error) {
	if len(args) > pos {
		return args[pos], nil
	}
	if id := s.GetCurrentCharacter(); id != "" {
		return id, nil
	}
	return "", errNoCharacter
}
