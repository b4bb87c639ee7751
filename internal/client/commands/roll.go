package commands

import (
	"fmt"
	"strconv"
	"strings"

	"charforge/internal/client/api"
	"charforge/internal/client/display"
)

var traitNames = map[string]bool{
	"agility": true, "strength": true, "finesse": true,
	"instinct": true, "presence": true, "knowledge": true,
}

func (r *Registry) registerRollCommands() {
	r.Register(&Command{
		Name:        "roll",
		ShortName:   "d",
		Description: "Duality roll (2d12), optionally with a trait and modifier",
		Usage:       "roll [trait] [+/-modifier] [label ...]",
		Handler:     rollHandler,
	})
	r.Register(&Command{
		Name:        "damage",
		ShortName:   "dmg",
		Description: "Roll a dice expression such as 2d8+3",
		Usage:       "damage <expression> [label ...]",
		Handler:     damageHandler,
	})
	r.Register(&Command{
		Name:        "rolls",
		ShortName:   "h",
		Description: "Show recent rolls for the current character (or 'all')",
		Usage:       "rolls [all] [limit]",
		Handler:     rollsHandler,
	})
	r.Register(&Command{
		Name:        "poll",
		ShortName:   "p",
		Description: "Long-poll a moderated player's new rolls",
		Usage:       "poll [playerId]",
		Handler:     pollHandler,
	})
	r.addGroup("Roll Commands", "roll", "damage", "rolls", "poll")
}

func rollHandler(s Session, args []string) error {
	if err := requireLogin(s); err != nil {
		return err
	}
	id, err := characterArg(s, nil, 0)
	if err != nil {
		return err
	}

	req := &api.DualityRollRequest{}
	rest := args
	if len(rest) > 0 && traitNames[strings.ToLower(rest[0])] {
		req.Trait = strings.ToLower(rest[0])
		rest = rest[1:]
	}
	if len(rest) > 0 {
		if mod, err := strconv.Atoi(rest[0]); err == nil {
			req.Modifier = mod
			rest = rest[1:]
		}
	}
	req.Label = strings.Join(rest, " ")

	resp, err := s.GetClient().RollDuality(id, req)
	if err != nil {
		return err
	}
	printRoll(resp)
	return nil
}

func damageHandler(s Session, args []string) error {
	if err := requireLogin(s); err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: damage <expression> [label ...]")
	}
	id, err := characterArg(s, nil, 0)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().RollStandard(id, &api.StandardRollRequest{
		Expression: args[0],
		Label:      strings.Join(args[1:], " "),
	})
	if err != nil {
		return err
	}
	printRoll(resp)
	return nil
}

func printRoll(r *api.RollResponse) {
	label := ""
	if r.Label != "" {
		label = " " + display.Cyan + r.Label + display.Reset
	}
	fmt.Printf("%s%s%s %v %s = %s%d%s %s%s\n",
		display.Yellow, r.Dice, display.Reset,
		r.Rolls, display.Signed(r.Modifier),
		display.White, r.Total, display.Reset,
		display.Outcome(r.Outcome), label)
}

func rollsHandler(s Session, args []string) error {
	if err := requireLogin(s); err != nil {
		return err
	}

	characterID := s.GetCurrentCharacter()
	limit := 0
	for _, a := range args {
		if a == "all" {
			characterID = ""
			continue
		}
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("usage: rolls [all] [limit]")
		}
		limit = n
	}

	resp, err := s.GetClient().RecentRolls(characterID, limit)
	if err != nil {
		return err
	}
	printHistory(resp.Rolls)
	return nil
}

func printHistory(rolls []api.RollEntry) {
	if len(rolls) == 0 {
		fmt.Println("No rolls")
		return
	}
	for _, r := range rolls {
		fmt.Printf("  #%-5d %s  %-8s %4d  %s  %s\n",
			r.RollID, r.CreatedAt.Local().Format("15:04:05"), r.Dice, r.Total,
			display.Outcome(display.FearOutcome(r.Fear)), shortID(r.CharacterID))
	}
}

// pollHandler waits for rolls newer than the last one seen for the watched player
func pollHandler(s Session, args []string) error {
	if err := requireLogin(s); err != nil {
		return err
	}
	if len(args) > 0 {
		s.SetWatchedPlayer(args[0])
	}
	player := s.GetWatchedPlayer()
	if player == "" {
		return errNoWatched
	}

	after := s.GetLastRollID()
	fmt.Printf("%sWaiting for rolls after #%d...%s\n", display.Cyan, after, display.Reset)
	resp, err := s.GetClient().PollRolls(player, after, true)
	if err != nil {
		return err
	}
	if len(resp.Rolls) == 0 {
		fmt.Println("No new rolls (timed out)")
		return nil
	}
	for _, r := range resp.Rolls {
		s.SetLastRollID(r.RollID)
	}
	printHistory(resp.Rolls)
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
