package service

import (
	"context"
	"errors"

	"charforge/internal/server/character"
	"charforge/internal/server/core"
	"charforge/internal/server/storage"
)

// authorizeOwner returns nil when userID owns characterID
func (s *Service) authorizeOwner(ctx context.Context, userID, characterID string) error {
	owner, err := s.characterOwner(ctx, characterID)
	if err != nil {
		return err
	}
	if owner != userID {
		return core.Forbidden("character", characterID)
	}
	return nil
}

func (s *Service) characterOwner(ctx context.Context, characterID string) (string, error) {
	if err := s.requireStore(); err != nil {
		return "", err
	}
	owner, err := s.store.CharacterOwner(ctx, characterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", core.NotFound("character", characterID)
		}
		return "", core.Persistence("failed to read character", err)
	}
	return owner, nil
}

// ListCharacters returns the caller's characters
func (s *Service) ListCharacters(ctx context.Context, userID string) ([]core.CharacterSummary, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	records, err := s.store.ListCharacters(ctx, userID)
	if err != nil {
		return nil, core.Persistence("failed to list characters", err)
	}

	list := make([]core.CharacterSummary, 0, len(records))
	for _, r := range records {
		list = append(list, core.CharacterSummary{
			CharacterID: r.CharacterID,
			Name:        r.Name,
			Pronouns:    r.Pronouns,
			Level:       r.Level,
			ClassID:     r.ClassID,
			CreatedAt:   r.CreatedAt,
		})
	}
	return list, nil
}

// GetSheet returns the full sheet of a character the caller owns
func (s *Service) GetSheet(ctx context.Context, userID, characterID string) (*core.CharacterSheetResponse, error) {
	if err := s.authorizeOwner(ctx, userID, characterID); err != nil {
		return nil, err
	}
	return s.loadSheet(ctx, characterID)
}

func (s *Service) loadSheet(ctx context.Context, characterID string) (*core.CharacterSheetResponse, error) {
	sheet, err := s.store.LoadSheet(ctx, characterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, core.NotFound("character", characterID)
		}
		return nil, core.Persistence("failed to load character", err)
	}
	return sheetResponse(sheet), nil
}

// TraitValue returns one stored trait modifier of a character the caller owns
func (s *Service) TraitValue(ctx context.Context, userID, characterID, trait string) (int, error) {
	sheet, err := s.GetSheet(ctx, userID, characterID)
	if err != nil {
		return 0, err
	}
	v, ok := sheet.Traits[trait]
	if !ok {
		return 0, core.Validation(core.FieldError{Field: "trait", Message: "unknown trait"})
	}
	return v, nil
}

func sheetResponse(sh *storage.Sheet) *core.CharacterSheetResponse {
	c, st := sh.Character, sh.Stats
	traits := character.Traits{
		Agility:   st.Agility,
		Strength:  st.Strength,
		Finesse:   st.Finesse,
		Instinct:  st.Instinct,
		Presence:  st.Presence,
		Knowledge: st.Knowledge,
	}

	resp := &core.CharacterSheetResponse{
		CharacterID: c.CharacterID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		Pronouns:    c.Pronouns,
		Level:       c.Level,
		HeritageID:  c.HeritageID,
		ClassID:     c.ClassID,
		SubclassID:  c.SubclassID,
		CommunityID: c.CommunityID,
		Evasion:     c.Evasion,
		ArmorScore:  c.ArmorScore,
		Traits:      traits.Map(),
		ArmorID:     sh.ArmorID,
		CreatedAt:   c.CreatedAt,
		Experiences: make([]core.ExperienceEntry, 0, len(sh.Experiences)),
		Weapons:     make([]core.WeaponEntry, 0, len(sh.Weapons)),
		Inventory:   make([]core.InventoryEntry, 0, len(sh.Inventory)),
	}

	values := map[character.Tracker]int{
		character.TrackerHP:     st.HP,
		character.TrackerStress: st.Stress,
		character.TrackerHope:   st.Hope,
		character.TrackerArmor:  st.ArmorMarked,
	}
	for _, t := range character.Trackers {
		resp.Trackers = append(resp.Trackers, core.TrackerResponse{
			Tracker: t.String(),
			Value:   values[t],
			Max:     t.Max(),
		})
	}

	for _, e := range sh.Experiences {
		resp.Experiences = append(resp.Experiences, core.ExperienceEntry{Label: e.Label, Modifier: e.Modifier})
	}
	for _, w := range sh.Weapons {
		resp.Weapons = append(resp.Weapons, core.WeaponEntry{Slot: w.Slot, WeaponID: w.WeaponID})
	}
	for _, it := range sh.Inventory {
		resp.Inventory = append(resp.Inventory, core.InventoryEntry{Name: it.Name, Description: it.Description, Amount: it.Amount})
	}
	return resp
}
