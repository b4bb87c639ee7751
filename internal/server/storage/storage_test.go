package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"charforge/internal/server/character"
)

var testSeed = character.CatalogSeed{
	Classes: []character.ClassInfo{
		{ID: "ranger", Name: "Ranger", StartingHP: 6, StartingEvasion: 12},
		{ID: "guardian", Name: "Guardian", StartingHP: 7, StartingEvasion: 9},
	},
	Subclasses: []character.NamedEntry{
		{ID: "beastbound", Name: "Beastbound", ClassID: "ranger"},
		{ID: "stalwart", Name: "Stalwart", ClassID: "guardian"},
	},
	Heritages:   []character.NamedEntry{{ID: "elf", Name: "Elf"}, {ID: "dwarf", Name: "Dwarf"}},
	Communities: []character.NamedEntry{{ID: "wanderborne", Name: "Wanderborne"}},
	Armors: []character.Armor{
		{ID: "leather", Name: "Leather Armor", BaseScore: 3, MajorThreshold: 6, SevereThreshold: 13, MinLevel: 1},
	},
	Weapons: []character.Weapon{
		{ID: "shortbow", Name: "Shortbow", Trait: "agility", Range: "far", Damage: "d6+3", Slot: character.SlotPrimary},
		{ID: "dagger", Name: "Small Dagger", Trait: "finesse", Range: "melee", Damage: "d8", Slot: character.SlotSecondary},
	},
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	require.NoError(t, s.InitDB())
	require.NoError(t, s.SeedCatalog(context.Background(), testSeed))
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, name string) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, s.CreateUser(context.Background(), UserRecord{
		UserID:       id,
		Username:     name,
		PasswordHash: "hash",
		AccountType:  AccountPermanent,
		CreatedAt:    time.Now().UTC(),
	}))
	return id
}

func sampleCharacter(ownerID string) NewCharacter {
	return NewCharacter{
		Character: CharacterRecord{
			CharacterID: uuid.NewString(),
			OwnerID:     ownerID,
			Name:        "Marlowe",
			Level:       1,
			ClassID:     "ranger",
			HeritageID:  "elf",
			Evasion:     12,
			ArmorScore:  3,
			CreatedAt:   time.Now().UTC(),
		},
		Stats:             StatsRecord{Agility: 2, Strength: 1, Finesse: 1, Instinct: 0, Presence: 0, Knowledge: -1, HP: 6},
		ArmorID:           "leather",
		PrimaryWeaponID:   "shortbow",
		SecondaryWeaponID: "dagger",
		Experiences:       []character.Experience{{Label: "Sailor", Modifier: 2}, {Label: "Thief", Modifier: 2}},
		Inventory:         []character.Item{{Name: "Rope", Description: "50ft", Amount: 5}},
	}
}

func TestCreateCharacterAndLoadSheet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createTestUser(t, s, "alice")

	nc := sampleCharacter(owner)
	require.NoError(t, s.CreateCharacter(ctx, nc))

	sheet, err := s.LoadSheet(ctx, nc.Character.CharacterID)
	require.NoError(t, err)
	require.Equal(t, "Marlowe", sheet.Character.Name)
	require.Equal(t, owner, sheet.Character.OwnerID)
	require.Equal(t, "ranger", sheet.Character.ClassID)
	require.Empty(t, sheet.Character.SubclassID)
	require.Equal(t, 2, sheet.Stats.Agility)
	require.Equal(t, 6, sheet.Stats.HP)
	require.Equal(t, "leather", sheet.ArmorID)
	require.Equal(t, []ExperienceRecord{{Label: "Sailor", Modifier: 2}, {Label: "Thief", Modifier: 2}}, sheet.Experiences)
	require.Equal(t, []WeaponRecord{
		{Slot: character.SlotPrimary, WeaponID: "shortbow"},
		{Slot: character.SlotSecondary, WeaponID: "dagger"},
	}, sheet.Weapons)
	require.Equal(t, []InventoryRecord{{Name: "Rope", Description: "50ft", Amount: 5}}, sheet.Inventory)

	owned, err := s.CharacterOwner(ctx, nc.Character.CharacterID)
	require.NoError(t, err)
	require.Equal(t, owner, owned)
}

func TestCreateCharacterSkipsMismatchedWeaponSlot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createTestUser(t, s, "alice")

	nc := sampleCharacter(owner)
	nc.PrimaryWeaponID = "dagger" // tagged secondary
	nc.SecondaryWeaponID = ""
	require.NoError(t, s.CreateCharacter(ctx, nc))

	sheet, err := s.LoadSheet(ctx, nc.Character.CharacterID)
	require.NoError(t, err)
	require.Empty(t, sheet.Weapons)
}

func TestCreateCharacterRollsBackOnChildFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createTestUser(t, s, "alice")

	_, err := s.db.Exec(`CREATE TRIGGER fail_inventory BEFORE INSERT ON character_inventory
		BEGIN SELECT RAISE(ABORT, 'inventory write failed'); END`)
	require.NoError(t, err)

	nc := sampleCharacter(owner)
	err = s.CreateCharacter(ctx, nc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "inventory")

	n, err := s.CountCharacters(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	for _, table := range []string{"character_stats", "character_armor", "character_experiences", "character_weapons"} {
		var rows int
		require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&rows))
		require.Zero(t, rows, table)
	}

	_, err = s.LoadSheet(ctx, nc.Character.CharacterID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCharactersScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	require.NoError(t, s.CreateCharacter(ctx, sampleCharacter(alice)))
	require.NoError(t, s.CreateCharacter(ctx, sampleCharacter(alice)))
	require.NoError(t, s.CreateCharacter(ctx, sampleCharacter(bob)))

	list, err := s.ListCharacters(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, c := range list {
		require.Equal(t, alice, c.OwnerID)
	}
}

func TestTrackers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	nc := sampleCharacter(createTestUser(t, s, "alice"))
	require.NoError(t, s.CreateCharacter(ctx, nc))
	id := nc.Character.CharacterID

	require.NoError(t, s.SetTracker(ctx, id, character.TrackerStress, 4))
	v, err := s.trackerValue(ctx, id, character.TrackerStress)
	require.NoError(t, err)
	require.Equal(t, 4, v)

	next, err := s.ApplyTracker(ctx, id, character.TrackerStress, func(cur int) int {
		return character.NextValue(cur, 4, character.StressMax)
	})
	require.NoError(t, err)
	require.Equal(t, 3, next)

	require.ErrorIs(t, s.SetTracker(ctx, "missing", character.TrackerHP, 1), ErrNotFound)
	_, err = s.trackerValue(ctx, "missing", character.TrackerHP)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnqueueTrackerWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	nc := sampleCharacter(createTestUser(t, s, "alice"))
	require.NoError(t, s.CreateCharacter(ctx, nc))
	id := nc.Character.CharacterID

	require.True(t, s.EnqueueTrackerWrite(id, character.TrackerHope, 5))
	require.Eventually(t, func() bool {
		v, err := s.trackerValue(ctx, id, character.TrackerHope)
		return err == nil && v == 5
	}, 2*time.Second, 10*time.Millisecond)
	require.True(t, s.IsHealthy())
}

func TestRecentRolls(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")
	ac := sampleCharacter(alice)
	bc := sampleCharacter(bob)
	require.NoError(t, s.CreateCharacter(ctx, ac))
	require.NoError(t, s.CreateCharacter(ctx, bc))

	fear := 1
	var lastID int64
	for i := 0; i < 5; i++ {
		id, err := s.AppendRoll(ctx, RollRecord{
			UserID: alice, CharacterID: ac.Character.CharacterID,
			Dice: "2d12", Total: 10 + i, Fear: &fear, CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		require.Greater(t, id, lastID)
		lastID = id
	}
	_, err := s.AppendRoll(ctx, RollRecord{
		UserID: bob, CharacterID: bc.Character.CharacterID, Dice: "1d20", Total: 3, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	rolls, err := s.RecentRolls(ctx, RollQuery{UserID: alice, Limit: 3})
	require.NoError(t, err)
	require.Len(t, rolls, 3)
	require.Equal(t, 14, rolls[0].Total)
	require.Equal(t, 12, rolls[2].Total)
	for _, r := range rolls {
		require.Equal(t, alice, r.UserID)
		require.NotNil(t, r.Fear)
	}

	rolls, err = s.RecentRolls(ctx, RollQuery{UserID: bob, Limit: 0})
	require.NoError(t, err)
	require.Len(t, rolls, 1)
	require.Nil(t, rolls[0].Fear)

	rolls, err = s.RecentRolls(ctx, RollQuery{UserID: alice, AfterID: lastID - 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, rolls, 1)
	require.Equal(t, lastID, rolls[0].RollID)
}

func TestClampRollLimit(t *testing.T) {
	require.Equal(t, 1, ClampRollLimit(-5))
	require.Equal(t, 1, ClampRollLimit(0))
	require.Equal(t, 50, ClampRollLimit(50))
	require.Equal(t, 200, ClampRollLimit(1000))
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c, err := s.ClassInfo(ctx, "guardian")
	require.NoError(t, err)
	require.Equal(t, 7, c.StartingHP)

	_, err = s.ClassInfo(ctx, "bard")
	require.ErrorIs(t, err, character.ErrUnknownEntry)
	_, err = s.Weapon(ctx, "greatsword")
	require.ErrorIs(t, err, character.ErrUnknownEntry)

	w, err := s.Weapon(ctx, "shortbow")
	require.NoError(t, err)
	require.Equal(t, character.SlotPrimary, w.Slot)

	subs, err := s.Subclasses(ctx, "ranger")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, "beastbound", subs[0].ID)

	heritages, err := s.Heritages(ctx)
	require.NoError(t, err)
	require.Equal(t, "dwarf", heritages[0].ID)

	// reseeding updates in place
	seed := testSeed
	seed.Classes = []character.ClassInfo{{ID: "guardian", Name: "Guardian", StartingHP: 8, StartingEvasion: 9}}
	require.NoError(t, s.SeedCatalog(ctx, seed))
	c, err = s.ClassInfo(ctx, "guardian")
	require.NoError(t, err)
	require.Equal(t, 8, c.StartingHP)
}

func TestUsersAndSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	id := createTestUser(t, s, "alice")

	err := s.CreateUser(ctx, UserRecord{
		UserID: uuid.NewString(), Username: "ALICE", PasswordHash: "x",
		AccountType: AccountTemp, CreatedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, ErrUserExists)

	u, err := s.GetUserByUsername(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, id, u.UserID)

	_, err = s.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	sid := uuid.NewString()
	require.NoError(t, s.CreateSession(ctx, SessionRecord{
		SessionID: sid, UserID: id, CreatedAt: time.Now().UTC(), ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))
	ok, err := s.IsSessionValid(ctx, sid, id)
	require.NoError(t, err)
	require.True(t, ok)

	// a new login replaces the old session
	sid2 := uuid.NewString()
	require.NoError(t, s.CreateSession(ctx, SessionRecord{
		SessionID: sid2, UserID: id, CreatedAt: time.Now().UTC(), ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))
	ok, err = s.IsSessionValid(ctx, sid, id)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.DeleteSessionByUserID(ctx, id))
	ok, err = s.IsSessionValid(ctx, sid2, id)
	require.NoError(t, err)
	require.False(t, ok)

	total, permanent, temp, err := s.UserCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, 1, permanent)
	require.Zero(t, temp)
}

func TestModeratorGrants(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	gm := createTestUser(t, s, "gm")
	player := createTestUser(t, s, "player")

	ok, err := s.IsModeratorOf(ctx, gm, player)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.GrantModerator(ctx, gm, player))
	require.NoError(t, s.GrantModerator(ctx, gm, player))
	ok, err = s.IsModeratorOf(ctx, gm, player)
	require.NoError(t, err)
	require.True(t, ok)

	grants, err := s.ListGrants(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 1)

	require.NoError(t, s.RevokeModerator(ctx, gm, player))
	require.ErrorIs(t, s.RevokeModerator(ctx, gm, player), ErrNotFound)
}
