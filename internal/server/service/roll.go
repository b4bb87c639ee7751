package service

import (
	"context"

	"charforge/internal/server/core"
	"charforge/internal/server/dice"
	"charforge/internal/server/storage"
)

// RecordRoll appends a resolved roll to the caller's log and wakes moderators polling them
func (s *Service) RecordRoll(ctx context.Context, userID, characterID string, res dice.Result) (core.RollResponse, error) {
	if err := s.authorizeOwner(ctx, userID, characterID); err != nil {
		return core.RollResponse{}, err
	}

	fear := res.Outcome.FearFlag()
	id, err := s.store.AppendRoll(ctx, storage.RollRecord{
		UserID:      userID,
		CharacterID: characterID,
		Dice:        res.Dice,
		Total:       res.Total,
		Fear:        fear,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return core.RollResponse{}, core.Persistence("failed to record roll", err)
	}
	s.feed.Notify(userID, id)

	return core.RollResponse{
		RollID:      id,
		CharacterID: characterID,
		Dice:        res.Dice,
		Rolls:       res.Rolls,
		Modifier:    res.Modifier,
		Total:       res.Total,
		Fear:        fear,
		Outcome:     res.Outcome.String(),
	}, nil
}

// RecentRolls returns the caller's most recent rolls, optionally for one of their characters
func (s *Service) RecentRolls(ctx context.Context, userID, characterID string, limit int) ([]core.RollEntry, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if characterID != "" {
		if err := s.authorizeOwner(ctx, userID, characterID); err != nil {
			return nil, err
		}
	}
	return s.queryRolls(ctx, storage.RollQuery{UserID: userID, CharacterID: characterID, Limit: limit})
}

func (s *Service) queryRolls(ctx context.Context, q storage.RollQuery) ([]core.RollEntry, error) {
	records, err := s.store.RecentRolls(ctx, q)
	if err != nil {
		return nil, core.Persistence("failed to read rolls", err)
	}
	entries := make([]core.RollEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, core.RollEntry{
			RollID:      r.RollID,
			CharacterID: r.CharacterID,
			Dice:        r.Dice,
			Total:       r.Total,
			Fear:        r.Fear,
			CreatedAt:   r.CreatedAt,
		})
	}
	return entries, nil
}
