// Package main implements an interactive debugging client for the character builder API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"charforge/internal/client/commands"
	"charforge/internal/client/display"
	"charforge/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "API base URL")
	flag.Parse()

	s := session.New(strings.TrimRight(*apiURL, "/"))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("charforge"),
		HistoryFile:     ".charforge_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sCharforge Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		s.Verbose = strings.HasSuffix(line, " -v")
		line = strings.TrimSuffix(line, " -v")

		registry.Execute(line)
	}
}

// buildPrompt shows the user, the current character and the watched player
func buildPrompt(s *session.Session) string {
	var parts []string
	if s.Username != "" {
		parts = append(parts, display.Magenta+s.Username+display.Reset)
	}
	if s.CurrentCharacter != "" {
		name := s.CharacterName
		if name == "" {
			name = s.CurrentCharacter[:min(8, len(s.CurrentCharacter))]
		}
		parts = append(parts, display.White+name+display.Reset)
	}
	if s.WatchedPlayer != "" {
		parts = append(parts, fmt.Sprintf("%swatch:%s#%d%s", display.Blue, s.WatchedPlayer[:min(8, len(s.WatchedPlayer))], s.LastRollID, display.Reset))
	}

	prompt := "charforge"
	if len(parts) > 0 {
		prompt += display.Yellow + " [" + display.Reset + strings.Join(parts, display.Yellow+" - "+display.Reset) + display.Yellow + "]"
	}
	return display.Prompt(prompt)
}
