package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"charforge/internal/server/character"
)

// NewCharacter is the full aggregate written by a build submission
type NewCharacter struct {
	Character         CharacterRecord
	Stats             StatsRecord
	ArmorID           string
	PrimaryWeaponID   string
	SecondaryWeaponID string
	Experiences       []character.Experience
	Inventory         []character.Item
}

// Sheet is a consistent read of a character aggregate
type Sheet struct {
	Character   CharacterRecord
	Stats       StatsRecord
	ArmorID     string
	Experiences []ExperienceRecord
	Weapons     []WeaponRecord
	Inventory   []InventoryRecord
}

// CreateCharacter inserts the character and replaces all of its child collections in one
// transaction. On any error nothing is written.
func (s *Store) CreateCharacter(ctx context.Context, nc NewCharacter) error {
	c := nc.Character
	id := c.CharacterID

	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO characters (
			character_id, owner_id, name, pronouns, level,
			heritage_id, class_id, subclass_id, community_id,
			evasion, armor_score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.OwnerID, c.Name, c.Pronouns, c.Level,
			nullIfEmpty(c.HeritageID), nullIfEmpty(c.ClassID), nullIfEmpty(c.SubclassID), nullIfEmpty(c.CommunityID),
			c.Evasion, c.ArmorScore, c.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert character: %w", err)
		}

		st := nc.Stats
		if _, err := tx.ExecContext(ctx, `INSERT INTO character_stats (
			character_id, agility, strength, finesse, instinct, presence, knowledge, hp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(character_id) DO UPDATE SET
			agility = excluded.agility, strength = excluded.strength, finesse = excluded.finesse,
			instinct = excluded.instinct, presence = excluded.presence, knowledge = excluded.knowledge,
			hp = excluded.hp`,
			id, st.Agility, st.Strength, st.Finesse, st.Instinct, st.Presence, st.Knowledge, st.HP,
		); err != nil {
			return fmt.Errorf("upsert stats: %w", err)
		}

		if nc.ArmorID != "" {
			if _, err := tx.ExecContext(ctx, `INSERT INTO character_armor (character_id, armor_id) VALUES (?, ?)
				ON CONFLICT(character_id) DO UPDATE SET armor_id = excluded.armor_id`,
				id, nc.ArmorID,
			); err != nil {
				return fmt.Errorf("upsert armor: %w", err)
			}
		}

		if err := replaceExperiences(ctx, tx, id, nc.Experiences); err != nil {
			return err
		}
		if err := replaceWeapons(ctx, tx, id, nc.PrimaryWeaponID, nc.SecondaryWeaponID); err != nil {
			return err
		}
		return replaceInventory(ctx, tx, id, nc.Inventory)
	})
}

func replaceExperiences(ctx context.Context, tx *sql.Tx, id string, exps []character.Experience) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM character_experiences WHERE character_id = ?`, id); err != nil {
		return fmt.Errorf("clear experiences: %w", err)
	}
	for i, e := range exps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO character_experiences (character_id, position, label, modifier) VALUES (?, ?, ?, ?)`,
			id, i, e.Label, e.Modifier,
		); err != nil {
			return fmt.Errorf("insert experience: %w", err)
		}
	}
	return nil
}

// replaceWeapons inserts a slot only when the catalog weapon carries the same slot tag
func replaceWeapons(ctx context.Context, tx *sql.Tx, id, primary, secondary string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM character_weapons WHERE character_id = ?`, id); err != nil {
		return fmt.Errorf("clear weapons: %w", err)
	}
	slots := []struct{ slot, weaponID string }{
		{character.SlotPrimary, primary},
		{character.SlotSecondary, secondary},
	}
	for _, sl := range slots {
		if sl.weaponID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO character_weapons (character_id, slot, weapon_id)
			SELECT ?, ?, id FROM catalog_weapons WHERE id = ? AND slot = ?`,
			id, sl.slot, sl.weaponID, sl.slot,
		); err != nil {
			return fmt.Errorf("insert %s weapon: %w", sl.slot, err)
		}
	}
	return nil
}

func replaceInventory(ctx context.Context, tx *sql.Tx, id string, items []character.Item) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM character_inventory WHERE character_id = ?`, id); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}
	for i, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO character_inventory (character_id, position, name, description, amount) VALUES (?, ?, ?, ?, ?)`,
			id, i, it.Name, it.Description, it.Amount,
		); err != nil {
			return fmt.Errorf("insert inventory item: %w", err)
		}
	}
	return nil
}

const characterColumns = `character_id, owner_id, name, pronouns, level,
	COALESCE(heritage_id, ''), COALESCE(class_id, ''), COALESCE(subclass_id, ''), COALESCE(community_id, ''),
	evasion, armor_score, created_at`

func scanCharacter(row rowScanner) (CharacterRecord, error) {
	var c CharacterRecord
	err := row.Scan(
		&c.CharacterID, &c.OwnerID, &c.Name, &c.Pronouns, &c.Level,
		&c.HeritageID, &c.ClassID, &c.SubclassID, &c.CommunityID,
		&c.Evasion, &c.ArmorScore, &c.CreatedAt,
	)
	return c, noRows(err)
}

// CharacterOwner returns the owning user id of a character
func (s *Store) CharacterOwner(ctx context.Context, characterID string) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM characters WHERE character_id = ?`, characterID).Scan(&owner)
	if err != nil {
		return "", noRows(err)
	}
	return owner, nil
}

// ListCharacters returns the characters owned by ownerID, newest first
func (s *Store) ListCharacters(ctx context.Context, ownerID string) ([]CharacterRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []CharacterRecord{}
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// CountCharacters counts every stored character
func (s *Store) CountCharacters(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&n)
	return n, err
}

// LoadSheet reads the whole aggregate inside one read-only transaction
func (s *Store) LoadSheet(ctx context.Context, characterID string) (*Sheet, error) {
	var sheet Sheet
	err := s.withTx(ctx, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		c, err := scanCharacter(tx.QueryRowContext(ctx,
			`SELECT `+characterColumns+` FROM characters WHERE character_id = ?`, characterID))
		if err != nil {
			return err
		}
		sheet.Character = c

		st := &sheet.Stats
		if err := tx.QueryRowContext(ctx, `SELECT character_id, agility, strength, finesse, instinct, presence, knowledge,
			hp, stress, hope, armor_marked FROM character_stats WHERE character_id = ?`, characterID,
		).Scan(&st.CharacterID, &st.Agility, &st.Strength, &st.Finesse, &st.Instinct, &st.Presence, &st.Knowledge,
			&st.HP, &st.Stress, &st.Hope, &st.ArmorMarked); err != nil {
			return fmt.Errorf("load stats: %w", noRows(err))
		}

		err = tx.QueryRowContext(ctx, `SELECT armor_id FROM character_armor WHERE character_id = ?`, characterID).
			Scan(&sheet.ArmorID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load armor: %w", err)
		}

		if sheet.Experiences, err = queryRows(ctx, tx,
			`SELECT label, modifier FROM character_experiences WHERE character_id = ? ORDER BY position`,
			characterID, func(r *sql.Rows) (ExperienceRecord, error) {
				var e ExperienceRecord
				return e, r.Scan(&e.Label, &e.Modifier)
			}); err != nil {
			return fmt.Errorf("load experiences: %w", err)
		}

		if sheet.Weapons, err = queryRows(ctx, tx,
			`SELECT slot, weapon_id FROM character_weapons WHERE character_id = ?
			ORDER BY CASE slot WHEN 'primary' THEN 0 ELSE 1 END`,
			characterID, func(r *sql.Rows) (WeaponRecord, error) {
				var w WeaponRecord
				return w, r.Scan(&w.Slot, &w.WeaponID)
			}); err != nil {
			return fmt.Errorf("load weapons: %w", err)
		}

		if sheet.Inventory, err = queryRows(ctx, tx,
			`SELECT name, description, amount FROM character_inventory WHERE character_id = ? ORDER BY position`,
			characterID, func(r *sql.Rows) (InventoryRecord, error) {
				var it InventoryRecord
				return it, r.Scan(&it.Name, &it.Description, &it.Amount)
			}); err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func queryRows[T any](ctx context.Context, tx *sql.Tx, query string, arg any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := tx.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
