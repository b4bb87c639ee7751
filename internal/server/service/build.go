package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"charforge/internal/server/character"
	"charforge/internal/server/core"
	"charforge/internal/server/storage"
)

// SubmitBuild validates a build, resolves its catalog references and writes the whole
// aggregate atomically. It returns the new character id.
func (s *Service) SubmitBuild(ctx context.Context, userID string, req core.BuildRequest) (string, error) {
	if err := s.requireStore(); err != nil {
		return "", err
	}

	b, err := character.NewBuild(req)
	if err != nil {
		return "", err
	}

	nc, err := s.resolveBuild(ctx, b)
	if err != nil {
		return "", err
	}
	nc.Character.CharacterID = uuid.NewString()
	nc.Character.OwnerID = userID
	nc.Character.CreatedAt = s.now()

	if err := s.store.CreateCharacter(ctx, nc); err != nil {
		return "", core.Persistence("failed to save character", err)
	}
	return nc.Character.CharacterID, nil
}

// resolveBuild checks every referenced catalog id before anything is written and fills
// defaults from the class and armor blocks
func (s *Service) resolveBuild(ctx context.Context, b character.Build) (storage.NewCharacter, error) {
	var class character.ClassInfo
	if b.ClassID != "" {
		c, err := s.catalog.ClassInfo(ctx, b.ClassID)
		if err != nil {
			return storage.NewCharacter{}, catalogErr(err, "class", b.ClassID)
		}
		class = c
	}

	if b.SubclassID != "" {
		subs, err := s.catalog.Subclasses(ctx, b.ClassID)
		if err != nil {
			return storage.NewCharacter{}, core.Persistence("failed to read catalog", err)
		}
		if !character.ContainsEntry(subs, b.SubclassID) {
			return storage.NewCharacter{}, core.NotFound("subclass", b.SubclassID)
		}
	}

	if b.HeritageID != "" {
		list, err := s.catalog.Heritages(ctx)
		if err != nil {
			return storage.NewCharacter{}, core.Persistence("failed to read catalog", err)
		}
		if !character.ContainsEntry(list, b.HeritageID) {
			return storage.NewCharacter{}, core.NotFound("heritage", b.HeritageID)
		}
	}

	if b.CommunityID != "" {
		list, err := s.catalog.Communities(ctx)
		if err != nil {
			return storage.NewCharacter{}, core.Persistence("failed to read catalog", err)
		}
		if !character.ContainsEntry(list, b.CommunityID) {
			return storage.NewCharacter{}, core.NotFound("community", b.CommunityID)
		}
	}

	armorScore := b.ArmorScore
	if b.ArmorID != "" {
		armor, err := s.catalog.Armor(ctx, b.ArmorID)
		if err != nil {
			return storage.NewCharacter{}, catalogErr(err, "armor", b.ArmorID)
		}
		if armorScore == 0 {
			armorScore = armor.BaseScore
		}
	}

	for _, id := range []string{b.PrimaryID, b.SecondaryID} {
		if id == "" {
			continue
		}
		// slot tags are checked at insert time, a mismatch skips the slot
		if _, err := s.catalog.Weapon(ctx, id); err != nil {
			return storage.NewCharacter{}, catalogErr(err, "weapon", id)
		}
	}

	hp := character.Clamp(class.StartingHP, character.HPMax)
	if b.HP != nil {
		hp = *b.HP
	}
	evasion := class.StartingEvasion
	if b.Evasion != nil {
		evasion = *b.Evasion
	}

	t := b.Traits
	return storage.NewCharacter{
		Character: storage.CharacterRecord{
			Name:        b.Name,
			Pronouns:    b.Pronouns,
			Level:       b.Level,
			HeritageID:  b.HeritageID,
			ClassID:     b.ClassID,
			SubclassID:  b.SubclassID,
			CommunityID: b.CommunityID,
			Evasion:     evasion,
			ArmorScore:  armorScore,
		},
		Stats: storage.StatsRecord{
			Agility:   t.Agility,
			Strength:  t.Strength,
			Finesse:   t.Finesse,
			Instinct:  t.Instinct,
			Presence:  t.Presence,
			Knowledge: t.Knowledge,
			HP:        hp,
		},
		ArmorID:           b.ArmorID,
		PrimaryWeaponID:   b.PrimaryID,
		SecondaryWeaponID: b.SecondaryID,
		Experiences:       b.Experiences,
		Inventory:         b.Inventory,
	}, nil
}

func catalogErr(err error, resource, id string) error {
	if errors.Is(err, character.ErrUnknownEntry) {
		return core.NotFound(resource, id)
	}
	return core.Persistence("failed to read catalog", err)
}
