// Package cli implements the `db` administration subcommands of the server binary.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"charforge/internal/server/character"
	"charforge/internal/server/dice"
	"charforge/internal/server/storage"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return errors.New("subcommand required: init, delete, seed, stats, rolls, user, grant, revoke, grants")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "seed":
		return runSeed(args[1:])
	case "stats":
		return runStats(args[1:])
	case "rolls":
		return runRolls(args[1:])
	case "user":
		if len(args) < 2 {
			return errors.New("user subcommand required: add, delete, set-password, set-email, set-username, promote, list")
		}
		return runUser(args[1], args[2:])
	case "grant":
		return runGrant(args[1:], true)
	case "revoke":
		return runGrant(args[1:], false)
	case "grants":
		return runGrants(args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// command is a parsed subcommand with its -path flag
type command struct {
	fs   *flag.FlagSet
	path *string
}

func newCommand(name string) *command {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &command{fs: fs, path: fs.String("path", "", "Database file path (required)")}
}

func (c *command) parse(args []string) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if *c.path == "" {
		return errors.New("database path required")
	}
	return nil
}

func (c *command) open() (*storage.Store, error) {
	store, err := storage.NewStore(*c.path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string) error {
	cmd := newCommand("init")
	if err := cmd.parse(args); err != nil {
		return err
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("Database initialized at: %s\n", *cmd.path)
	return nil
}

func runDelete(args []string) error {
	cmd := newCommand("delete")
	if err := cmd.parse(args); err != nil {
		return err
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Printf("Database deleted: %s\n", *cmd.path)
	return nil
}

// runStats prints account and character totals
func runStats(args []string) error {
	cmd := newCommand("stats")
	if err := cmd.parse(args); err != nil {
		return err
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	total, permanent, temp, err := store.UserCounts(ctx)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	characters, err := store.CountCharacters(ctx)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Printf("Users: %d (%d permanent, %d temp)\n", total, permanent, temp)
	fmt.Printf("Characters: %d\n", characters)
	return nil
}

// runSeed loads a catalog JSON document (classes, subclasses, heritages, communities,
// armors, weapons). Existing ids are updated in place.
func runSeed(args []string) error {
	cmd := newCommand("seed")
	file := cmd.fs.String("file", "", "Catalog JSON file (required)")
	if err := cmd.parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("catalog file required")
	}

	seed, err := readSeed(*file)
	if err != nil {
		return err
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := store.SeedCatalog(context.Background(), seed); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	fmt.Printf("Catalog seeded: %d classes, %d subclasses, %d heritages, %d communities, %d armors, %d weapons\n",
		len(seed.Classes), len(seed.Subclasses), len(seed.Heritages),
		len(seed.Communities), len(seed.Armors), len(seed.Weapons))
	return nil
}

func readSeed(path string) (character.CatalogSeed, error) {
	var seed character.CatalogSeed
	f, err := os.Open(path)
	if err != nil {
		return seed, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return seed, fmt.Errorf("invalid catalog file: %w", err)
	}
	for _, w := range seed.Weapons {
		if w.Slot != character.SlotPrimary && w.Slot != character.SlotSecondary {
			return seed, fmt.Errorf("weapon %s: slot must be %q or %q", w.ID, character.SlotPrimary, character.SlotSecondary)
		}
	}
	return seed, nil
}

func runRolls(args []string) error {
	cmd := newCommand("rolls")
	username := cmd.fs.String("username", "", "Only rolls by this user (optional)")
	characterID := cmd.fs.String("characterId", "", "Only rolls for this character (optional)")
	limit := cmd.fs.Int("limit", storage.DefaultRollLimit, "Maximum rolls to show (1-200)")
	if err := cmd.parse(args); err != nil {
		return err
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	q := storage.RollQuery{CharacterID: *characterID, Limit: *limit}
	if *username != "" {
		user, err := store.GetUserByUsername(ctx, strings.ToLower(*username))
		if err != nil {
			return fmt.Errorf("user not found: %s", *username)
		}
		q.UserID = user.UserID
	}

	rolls, err := store.RecentRolls(ctx, q)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(rolls) == 0 {
		fmt.Println("No rolls found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Roll\tUser\tCharacter\tDice\tTotal\tOutcome\tTime")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, r := range rolls {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.RollID,
			short(r.UserID),
			short(r.CharacterID),
			r.Dice,
			r.Total,
			outcome(r.Fear),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Printf("\nShowing %d roll(s)\n", len(rolls))
	return nil
}

func outcome(fear *int) string {
	if o := dice.OutcomeFromFlag(fear); o != dice.OutcomeNeutral {
		return o.String()
	}
	return "-"
}

// runGrant adds or removes a moderator grant between two usernames
func runGrant(args []string, grant bool) error {
	name := "revoke"
	if grant {
		name = "grant"
	}
	cmd := newCommand(name)
	moderator := cmd.fs.String("moderator", "", "Moderator username (required)")
	player := cmd.fs.String("player", "", "Player username (required)")
	if err := cmd.parse(args); err != nil {
		return err
	}
	if *moderator == "" || *player == "" {
		return errors.New("-moderator and -player required")
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	mod, err := store.GetUserByUsername(ctx, strings.ToLower(*moderator))
	if err != nil {
		return fmt.Errorf("user not found: %s", *moderator)
	}
	pl, err := store.GetUserByUsername(ctx, strings.ToLower(*player))
	if err != nil {
		return fmt.Errorf("user not found: %s", *player)
	}
	if mod.UserID == pl.UserID {
		return errors.New("moderator and player must differ")
	}

	if grant {
		if err := store.GrantModerator(ctx, mod.UserID, pl.UserID); err != nil {
			return fmt.Errorf("failed to grant: %w", err)
		}
		fmt.Printf("%s can now read %s's characters and rolls\n", mod.Username, pl.Username)
		return nil
	}
	if err := store.RevokeModerator(ctx, mod.UserID, pl.UserID); err != nil {
		return fmt.Errorf("failed to revoke: %w", err)
	}
	fmt.Printf("Grant revoked: %s -> %s\n", mod.Username, pl.Username)
	return nil
}

func runGrants(args []string) error {
	cmd := newCommand("grants")
	if err := cmd.parse(args); err != nil {
		return err
	}

	store, err := cmd.open()
	if err != nil {
		return err
	}
	defer store.Close()

	grants, err := store.ListGrants(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list grants: %w", err)
	}
	if len(grants) == 0 {
		fmt.Println("No moderator grants")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Moderator\tPlayer\tGranted")
	for _, g := range grants {
		fmt.Fprintf(w, "%s\t%s\t%s\n", g.ModeratorID, g.PlayerID, g.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	return nil
}

func short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
