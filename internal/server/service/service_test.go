package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"charforge/internal/server/character"
	"charforge/internal/server/core"
	"charforge/internal/server/dice"
	"charforge/internal/server/storage"
)

var testSecret = []byte("test-secret-minimum-32-characters-long")

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "svc.db"), false)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	require.NoError(t, store.SeedCatalog(context.Background(), character.CatalogSeed{
		Classes:     []character.ClassInfo{{ID: "ranger", Name: "Ranger", StartingHP: 6, StartingEvasion: 12}},
		Subclasses:  []character.NamedEntry{{ID: "beastbound", Name: "Beastbound", ClassID: "ranger"}},
		Heritages:   []character.NamedEntry{{ID: "elf", Name: "Elf"}},
		Communities: []character.NamedEntry{{ID: "wanderborne", Name: "Wanderborne"}},
		Armors:      []character.Armor{{ID: "leather", Name: "Leather", BaseScore: 3, MajorThreshold: 6, SevereThreshold: 13}},
		Weapons: []character.Weapon{
			{ID: "shortbow", Name: "Shortbow", Trait: "agility", Range: "far", Damage: "d6+3", Slot: character.SlotPrimary},
		},
	}))

	svc := New(store, testSecret, 200*time.Millisecond)
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return svc, store
}

func newUser(t *testing.T, svc *Service, name string) string {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), name, "", "password1")
	require.NoError(t, err)
	return u.UserID
}

func intp(v int) *int { return &v }

func buildRequest() core.BuildRequest {
	return core.BuildRequest{
		Basics: core.BasicsInput{Name: "Marlowe", Level: 1, ClassID: "ranger", SubclassID: "beastbound", HeritageID: "elf"},
		Traits: core.TraitsInput{
			Agility: intp(2), Strength: intp(1), Finesse: intp(1),
			Instinct: intp(0), Presence: intp(0), Knowledge: intp(-1),
		},
		Defense:     core.DefenseInput{ArmorID: "leather"},
		Gear:        core.GearInput{PrimaryWeaponID: "shortbow"},
		Experiences: []core.ExperienceInput{{Label: "Sailor"}, {Label: "Sailor"}},
		Inventory:   []core.InventoryInput{{Name: "Rope", Amount: 2}, {Name: "rope", Amount: 3}},
	}
}

func countCharacters(t *testing.T, store *storage.Store) int {
	n, err := store.CountCharacters(context.Background())
	require.NoError(t, err)
	return n
}

func TestSubmitBuildAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	alice := newUser(t, svc, "alice")

	id, err := svc.SubmitBuild(ctx, alice, buildRequest())
	require.NoError(t, err)

	sheet, err := svc.GetSheet(ctx, alice, id)
	require.NoError(t, err)
	require.Equal(t, 12, sheet.Evasion)
	require.Equal(t, 3, sheet.ArmorScore)
	require.Equal(t, "hp", sheet.Trackers[0].Tracker)
	require.Equal(t, 6, sheet.Trackers[0].Value)
	require.Len(t, sheet.Experiences, 1)
	require.Equal(t, []core.InventoryEntry{{Name: "Rope", Amount: 5}}, sheet.Inventory)
	require.Equal(t, []core.WeaponEntry{{Slot: "primary", WeaponID: "shortbow"}}, sheet.Weapons)
	require.Equal(t, 2, sheet.Traits["agility"])
}

func TestSubmitBuildRejectsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	alice := newUser(t, svc, "alice")

	req := buildRequest()
	req.Traits.Knowledge = intp(2)
	_, err := svc.SubmitBuild(ctx, alice, req)
	require.ErrorIs(t, err, core.ErrValidation)

	req = buildRequest()
	req.Basics.Level = 0
	_, err = svc.SubmitBuild(ctx, alice, req)
	require.ErrorIs(t, err, core.ErrValidation)

	req = buildRequest()
	req.Basics.ClassID = "bard"
	req.Basics.SubclassID = ""
	_, err = svc.SubmitBuild(ctx, alice, req)
	require.ErrorIs(t, err, core.ErrMissing)

	req = buildRequest()
	req.Gear.SecondaryWeaponID = "greatsword"
	_, err = svc.SubmitBuild(ctx, alice, req)
	require.ErrorIs(t, err, core.ErrMissing)

	require.Zero(t, countCharacters(t, store))
}

func TestSubmitBuildOwnershipChecks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	alice := newUser(t, svc, "alice")
	bob := newUser(t, svc, "bob")

	id, err := svc.SubmitBuild(ctx, alice, buildRequest())
	require.NoError(t, err)

	_, err = svc.GetSheet(ctx, bob, id)
	require.ErrorIs(t, err, core.ErrForbidden)
	_, err = svc.GetSheet(ctx, alice, "missing")
	require.ErrorIs(t, err, core.ErrMissing)

	list, err := svc.ListCharacters(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestTrackerOperations(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	alice := newUser(t, svc, "alice")
	id, err := svc.SubmitBuild(ctx, alice, buildRequest())
	require.NoError(t, err)

	resp, err := svc.SetTracker(ctx, alice, id, "hp", 15, false)
	require.NoError(t, err)
	require.Equal(t, 9, resp.Value)

	resp, err = svc.ClickTracker(ctx, alice, id, "hp", 9)
	require.NoError(t, err)
	require.Equal(t, 8, resp.Value)
	resp, err = svc.ClickTracker(ctx, alice, id, "hp", 9)
	require.NoError(t, err)
	require.Equal(t, 9, resp.Value)

	_, err = svc.SetTracker(ctx, alice, id, "gold", 1, false)
	require.ErrorIs(t, err, core.ErrValidation)

	resp, err = svc.SetTracker(ctx, alice, id, "stress", 2, true)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Value)
	resp, err = svc.SetTracker(ctx, alice, id, "stress", 3, true)
	require.NoError(t, err)
	require.Equal(t, 1, svc.saver.pendingCount())

	require.Eventually(t, func() bool {
		sheet, err := store.LoadSheet(ctx, id)
		return err == nil && sheet.Stats.Stress == 3
	}, 3*time.Second, 20*time.Millisecond)
}

func TestDeferredTrackerFlushedOnShutdown(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "flush.db")

	store, err := storage.NewStore(path, false)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	svc := New(store, testSecret, time.Second)
	alice := newUser(t, svc, "alice")
	req := buildRequest()
	req.Basics.ClassID, req.Basics.SubclassID, req.Basics.HeritageID = "", "", ""
	req.Defense.ArmorID, req.Gear.PrimaryWeaponID = "", ""
	id, err := svc.SubmitBuild(ctx, alice, req)
	require.NoError(t, err)

	_, err = svc.SetTracker(ctx, alice, id, "hope", 4, true)
	require.NoError(t, err)
	require.NoError(t, svc.Shutdown(2*time.Second))

	reopened, err := storage.NewStore(path, false)
	require.NoError(t, err)
	defer reopened.Close()
	sheet, err := reopened.LoadSheet(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 4, sheet.Stats.Hope)
}

func TestRollsScopedToUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	alice := newUser(t, svc, "alice")
	bob := newUser(t, svc, "bob")
	aliceChar, err := svc.SubmitBuild(ctx, alice, buildRequest())
	require.NoError(t, err)
	bobChar, err := svc.SubmitBuild(ctx, bob, buildRequest())
	require.NoError(t, err)

	res, err := dice.EvaluateDuality(7, 9, 1)
	require.NoError(t, err)
	roll, err := svc.RecordRoll(ctx, alice, aliceChar, res)
	require.NoError(t, err)
	require.Equal(t, 17, roll.Total)
	require.Equal(t, "fear", roll.Outcome)
	require.Equal(t, 1, *roll.Fear)

	_, err = svc.RecordRoll(ctx, bob, aliceChar, res)
	require.ErrorIs(t, err, core.ErrForbidden)
	_, err = svc.RecordRoll(ctx, bob, bobChar, res)
	require.NoError(t, err)

	rolls, err := svc.RecentRolls(ctx, alice, "", 10)
	require.NoError(t, err)
	require.Len(t, rolls, 1)
	require.Equal(t, roll.RollID, rolls[0].RollID)

	_, err = svc.RecentRolls(ctx, alice, bobChar, 10)
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestTraitValue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	alice := newUser(t, svc, "alice")
	id, err := svc.SubmitBuild(ctx, alice, buildRequest())
	require.NoError(t, err)

	v, err := svc.TraitValue(ctx, alice, id, "knowledge")
	require.NoError(t, err)
	require.Equal(t, -1, v)
}

func TestModeratorAccess(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	gm := newUser(t, svc, "gm")
	player := newUser(t, svc, "player")
	charID, err := svc.SubmitBuild(ctx, player, buildRequest())
	require.NoError(t, err)

	_, err = svc.ModeratorSheet(ctx, gm, charID)
	require.ErrorIs(t, err, core.ErrForbidden)
	_, err = svc.ModeratorRolls(ctx, gm, player, 0, 0, false)
	require.ErrorIs(t, err, core.ErrForbidden)

	require.NoError(t, store.GrantModerator(ctx, gm, player))

	sheet, err := svc.ModeratorSheet(ctx, gm, charID)
	require.NoError(t, err)
	require.Equal(t, player, sheet.OwnerID)

	rolls, err := svc.ModeratorRolls(ctx, gm, player, 0, 0, false)
	require.NoError(t, err)
	require.Empty(t, rolls)

	// times out with nothing new
	start := time.Now()
	rolls, err = svc.ModeratorRolls(ctx, gm, player, 0, 0, true)
	require.NoError(t, err)
	require.Empty(t, rolls)
	require.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestModeratorLongPollWakesOnRoll(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	svc.feed = NewRollFeed(5 * time.Second)
	gm := newUser(t, svc, "gm")
	player := newUser(t, svc, "player")
	charID, err := svc.SubmitBuild(ctx, player, buildRequest())
	require.NoError(t, err)
	require.NoError(t, store.GrantModerator(ctx, gm, player))

	type result struct {
		rolls []core.RollEntry
		err   error
	}
	done := make(chan result, 1)
	go func() {
		rolls, err := svc.ModeratorRolls(ctx, gm, player, 0, 10, true)
		done <- result{rolls, err}
	}()

	require.Eventually(t, func() bool { return svc.feed.waiting(player) == 1 }, time.Second, 5*time.Millisecond)

	res, err := dice.EvaluateDuality(9, 9, 0)
	require.NoError(t, err)
	_, err = svc.RecordRoll(ctx, player, charID, res)
	require.NoError(t, err)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		require.Len(t, r.rolls, 1)
		require.Equal(t, 0, *r.rolls[0].Fear)
	case <-time.After(3 * time.Second):
		t.Fatal("long poll did not wake")
	}
}

func TestStorageDisabled(t *testing.T) {
	svc := New(nil, testSecret, time.Second)
	require.Equal(t, "disabled", svc.GetStorageHealth())
	_, err := svc.SubmitBuild(context.Background(), "u", buildRequest())
	require.ErrorIs(t, err, ErrStorageDisabled)
}
