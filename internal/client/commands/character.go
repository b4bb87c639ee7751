package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"charforge/internal/client/api"
	"charforge/internal/client/display"
)

func (r *Registry) registerCharacterCommands() {
	r.Register(&Command{
		Name:        "build",
		ShortName:   "b",
		Description: "Submit a character build from a JSON file",
		Usage:       "build <file.json>",
		Handler:     buildHandler,
	})
	r.Register(&Command{
		Name:        "list",
		ShortName:   "ls",
		Description: "List your characters",
		Usage:       "list",
		Handler:     listHandler,
	})
	r.Register(&Command{
		Name:        "use",
		ShortName:   "u",
		Description: "Set the current character",
		Usage:       "use <characterId>",
		Handler:     useHandler,
	})
	r.Register(&Command{
		Name:        "sheet",
		ShortName:   "s",
		Description: "Show a character sheet (moderators: sheet -m <id>)",
		Usage:       "sheet [-m] [characterId]",
		Handler:     sheetHandler,
	})
	r.Register(&Command{
		Name:        "tracker",
		ShortName:   "t",
		Description: "Set a tracker (hp, stress, hope, armor)",
		Usage:       "tracker <name> <value> [defer]",
		Handler:     trackerHandler,
	})
	r.Register(&Command{
		Name:        "click",
		ShortName:   "k",
		Description: "Click a tracker box (same box clears one)",
		Usage:       "click <name> <index>",
		Handler:     clickHandler,
	})
	r.Register(&Command{
		Name:        "traits",
		ShortName:   "tr",
		Description: "Show remaining trait values for a partial assignment",
		Usage:       "traits [value ...]",
		Handler:     traitsHandler,
	})
	r.addGroup("Character Commands", "build", "list", "use", "sheet", "tracker", "click", "traits")
}

func buildHandler(s Session, args []string) error {
	if err := requireLogin(s); err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: build <file.json>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read build file: %w", err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%s is not valid JSON", args[0])
	}

	resp, err := s.GetClient().SubmitBuild(api.BuildPayload(data))
	if err != nil {
		return err
	}

	s.SetCurrentCharacter(resp.CharacterID, "")
	fmt.Printf("%sCharacter created: %s%s\n", display.Green, resp.CharacterID, display.Reset)
	return nil
}

func listHandler(s Session, args []string) error {
	if err := requireLogin(s); err != nil {
		return err
	}
	resp, err := s.GetClient().ListCharacters()
	if err != nil {
		return err
	}
	if len(resp.Characters) == 0 {
		fmt.Println("No characters yet")
		return nil
	}

	for _, ch := range resp.Characters {
		marker := " "
		if ch.CharacterID == s.GetCurrentCharacter() {
			marker = display.Green + "*" + display.Reset
		}
		fmt.Printf("%s %s  %-20s lvl %-2d %s\n", marker, ch.CharacterID, ch.Name, ch.Level, ch.ClassID)
	}
	if s.GetCurrentCharacter() == "" && len(resp.Characters) == 1 {
		only := resp.Characters[0]
		s.SetCurrentCharacter(only.CharacterID, only.Name)
	}
	return nil
}

func useHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: use <characterId>")
	}
	s.SetCurrentCharacter(args[0], "")
	fmt.Printf("%sCurrent character: %s%s\n", display.Cyan, args[0], display.Reset)
	return nil
}

func sheetHandler(s Session, args []string) error {
	if err := requireLogin(s); err != nil {
		return err
	}

	moderator := len(args) > 0 && args[0] == "-m"
	if moderator {
		args = args[1:]
	}
	id, err := characterArg(s, args, 0)
	if err != nil {
		return err
	}

	c := s.GetClient()
	var sheet *api.SheetResponse
	if moderator {
		sheet, err = c.ModeratorSheet(id)
	} else {
		sheet, err = c.GetSheet(id)
	}
	if err != nil {
		return err
	}

	if !moderator && id == s.GetCurrentCharacter() {
		s.SetCurrentCharacter(id, sheet.Name)
	}
	display.RenderSheet(toDisplaySheet(sheet))
	return nil
}

func toDisplaySheet(sh *api.SheetResponse) display.Sheet {
	out := display.Sheet{
		Name:        sh.Name,
		Pronouns:    sh.Pronouns,
		Level:       sh.Level,
		HeritageID:  sh.HeritageID,
		CommunityID: sh.CommunityID,
		ClassID:     sh.ClassID,
		SubclassID:  sh.SubclassID,
		Evasion:     sh.Evasion,
		ArmorScore:  sh.ArmorScore,
		Traits:      sh.Traits,
	}
	for _, t := range sh.Trackers {
		out.Trackers = append(out.Trackers, display.TrackerLine{Name: t.Tracker, Value: t.Value, Max: t.Max})
	}
	for _, e := range sh.Experiences {
		out.Experiences = append(out.Experiences, fmt.Sprintf("%s %s", e.Label, display.Signed(e.Modifier)))
	}
	for _, w := range sh.Weapons {
		out.Weapons = append(out.Weapons, fmt.Sprintf("%s (%s)", w.WeaponID, w.Slot))
	}
	if sh.ArmorID != "" {
		out.Weapons = append(out.Weapons, sh.ArmorID+" (armor)")
	}
	for _, it := range sh.Inventory {
		out.Inventory = append(out.Inventory, fmt.Sprintf("%s x%d", it.Name, it.Amount))
	}
	return out
}

func trackerHandler(s Session, args []string) error {
	if err := requireLogin(s); err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: tracker <name> <value> [defer]")
	}
	id, err := characterArg(s, nil, 0)
	if err != nil {
		return err
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("value must be an integer")
	}
	deferred := len(args) > 2 && strings.EqualFold(args[2], "defer")

	t, err := s.GetClient().SetTracker(id, strings.ToLower(args[0]), value, deferred)
	if err != nil {
		return err
	}
	suffix := ""
	if deferred {
		suffix = " (saving shortly)"
	}
	fmt.Printf("  %-7s %s%s\n", t.Tracker, display.Dots(t.Value, t.Max), suffix)
	return nil
}

func clickHandler(s Session, args []string) error {
	if err := requireLogin(s); err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: click <name> <index>")
	}
	id, err := characterArg(s, nil, 0)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("index must be an integer")
	}

	t, err := s.GetClient().ClickTracker(id, strings.ToLower(args[0]), index)
	if err != nil {
		return err
	}
	fmt.Printf("  %-7s %s\n", t.Tracker, display.Dots(t.Value, t.Max))
	return nil
}

func traitsHandler(s Session, args []string) error {
	assigned := make([]int, 0, len(args))
	for _, a := range args {
		v, err := strconv.Atoi(strings.TrimPrefix(a, "+"))
		if err != nil {
			return fmt.Errorf("trait values must be integers: %q", a)
		}
		assigned = append(assigned, v)
	}

	resp, err := s.GetClient().TraitOptions(assigned)
	if err != nil {
		return err
	}
	if !resp.Valid {
		fmt.Printf("%sAssignment cannot be completed from the pool +2 +1 +1 +0 +0 -1%s\n", display.Red, display.Reset)
		return nil
	}
	remaining := make([]string, len(resp.Remaining))
	for i, v := range resp.Remaining {
		remaining[i] = display.Signed(v)
	}
	if resp.Complete {
		fmt.Printf("%sAll six traits assigned%s\n", display.Green, display.Reset)
		return nil
	}
	fmt.Printf("Remaining: %s\n", strings.Join(remaining, " "))
	return nil
}
