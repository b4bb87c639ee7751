package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"charforge/internal/server/character"
)

// Store implements the read-only catalog the build engine depends on
var _ character.Catalog = (*Store)(nil)

func unknownEntry(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", kind, id, character.ErrUnknownEntry)
	}
	return err
}

// ClassInfo returns a class with its starting stats
func (s *Store) ClassInfo(ctx context.Context, id string) (character.ClassInfo, error) {
	var c character.ClassInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, starting_hp, starting_evasion, feature FROM catalog_classes WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.StartingHP, &c.StartingEvasion, &c.Feature)
	if err != nil {
		return character.ClassInfo{}, unknownEntry(err, "class", id)
	}
	return c, nil
}

// Armor returns an armor stat block
func (s *Store) Armor(ctx context.Context, id string) (character.Armor, error) {
	var a character.Armor
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, base_score, major_threshold, severe_threshold, feature, min_level
		FROM catalog_armors WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.BaseScore, &a.MajorThreshold, &a.SevereThreshold, &a.Feature, &a.MinLevel)
	if err != nil {
		return character.Armor{}, unknownEntry(err, "armor", id)
	}
	return a, nil
}

// Weapon returns a weapon stat block with its slot tag
func (s *Store) Weapon(ctx context.Context, id string) (character.Weapon, error) {
	var w character.Weapon
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, trait, weapon_range, damage, feature, slot FROM catalog_weapons WHERE id = ?`, id,
	).Scan(&w.ID, &w.Name, &w.Trait, &w.Range, &w.Damage, &w.Feature, &w.Slot)
	if err != nil {
		return character.Weapon{}, unknownEntry(err, "weapon", id)
	}
	return w, nil
}

// Heritages lists heritages by name
func (s *Store) Heritages(ctx context.Context) ([]character.NamedEntry, error) {
	return s.namedEntries(ctx, `SELECT id, name, '' FROM catalog_heritages ORDER BY name`)
}

// Communities lists communities by name
func (s *Store) Communities(ctx context.Context) ([]character.NamedEntry, error) {
	return s.namedEntries(ctx, `SELECT id, name, '' FROM catalog_communities ORDER BY name`)
}

// Subclasses lists the subclasses of a class, or all of them when classID is empty
func (s *Store) Subclasses(ctx context.Context, classID string) ([]character.NamedEntry, error) {
	if classID == "" {
		return s.namedEntries(ctx, `SELECT id, name, class_id FROM catalog_subclasses ORDER BY name`)
	}
	return s.namedEntries(ctx,
		`SELECT id, name, class_id FROM catalog_subclasses WHERE class_id = ? ORDER BY name`, classID)
}

func (s *Store) namedEntries(ctx context.Context, query string, args ...any) ([]character.NamedEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []character.NamedEntry{}
	for rows.Next() {
		var e character.NamedEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.ClassID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SeedCatalog upserts every entry of seed in one transaction
func (s *Store) SeedCatalog(ctx context.Context, seed character.CatalogSeed) error {
	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		for _, c := range seed.Classes {
			if _, err := tx.ExecContext(ctx, `INSERT INTO catalog_classes (id, name, starting_hp, starting_evasion, feature)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name, starting_hp = excluded.starting_hp,
					starting_evasion = excluded.starting_evasion, feature = excluded.feature`,
				c.ID, c.Name, c.StartingHP, c.StartingEvasion, c.Feature); err != nil {
				return fmt.Errorf("seed class %s: %w", c.ID, err)
			}
		}
		for _, e := range seed.Subclasses {
			if _, err := tx.ExecContext(ctx, `INSERT INTO catalog_subclasses (id, name, class_id) VALUES (?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name, class_id = excluded.class_id`,
				e.ID, e.Name, e.ClassID); err != nil {
				return fmt.Errorf("seed subclass %s: %w", e.ID, err)
			}
		}
		for _, e := range seed.Heritages {
			if _, err := tx.ExecContext(ctx, `INSERT INTO catalog_heritages (id, name) VALUES (?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name`, e.ID, e.Name); err != nil {
				return fmt.Errorf("seed heritage %s: %w", e.ID, err)
			}
		}
		for _, e := range seed.Communities {
			if _, err := tx.ExecContext(ctx, `INSERT INTO catalog_communities (id, name) VALUES (?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name`, e.ID, e.Name); err != nil {
				return fmt.Errorf("seed community %s: %w", e.ID, err)
			}
		}
		for _, a := range seed.Armors {
			if _, err := tx.ExecContext(ctx, `INSERT INTO catalog_armors
				(id, name, base_score, major_threshold, severe_threshold, feature, min_level)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name, base_score = excluded.base_score,
					major_threshold = excluded.major_threshold, severe_threshold = excluded.severe_threshold,
					feature = excluded.feature, min_level = excluded.min_level`,
				a.ID, a.Name, a.BaseScore, a.MajorThreshold, a.SevereThreshold, a.Feature, max(a.MinLevel, 1)); err != nil {
				return fmt.Errorf("seed armor %s: %w", a.ID, err)
			}
		}
		for _, w := range seed.Weapons {
			if _, err := tx.ExecContext(ctx, `INSERT INTO catalog_weapons
				(id, name, trait, weapon_range, damage, feature, slot)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name, trait = excluded.trait,
					weapon_range = excluded.weapon_range, damage = excluded.damage,
					feature = excluded.feature, slot = excluded.slot`,
				w.ID, w.Name, w.Trait, w.Range, w.Damage, w.Feature, w.Slot); err != nil {
				return fmt.Errorf("seed weapon %s: %w", w.ID, err)
			}
		}
		return nil
	})
}
