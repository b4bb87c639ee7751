package service

import (
	"context"

	"charforge/internal/server/core"
	"charforge/internal/server/storage"
)

// DefaultModeratorRollLimit is the window size of a moderator roll view
const DefaultModeratorRollLimit = 50

func (s *Service) authorizeModerator(ctx context.Context, moderatorID, playerID string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	ok, err := s.store.IsModeratorOf(ctx, moderatorID, playerID)
	if err != nil {
		return core.Persistence("failed to read grants", err)
	}
	if !ok {
		return core.Forbidden("player", playerID)
	}
	return nil
}

// ModeratorSheet returns a read-only sheet of a character owned by a player the caller moderates
func (s *Service) ModeratorSheet(ctx context.Context, moderatorID, characterID string) (*core.CharacterSheetResponse, error) {
	owner, err := s.characterOwner(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeModerator(ctx, moderatorID, owner); err != nil {
		if core.KindOf(err) == core.KindForbidden {
			return nil, core.Forbidden("character", characterID)
		}
		return nil, err
	}
	return s.loadSheet(ctx, characterID)
}

// ModeratorRolls returns a player's rolls newer than afterID. With wait set and nothing
// newer available it blocks until the player rolls or the feed times out.
func (s *Service) ModeratorRolls(ctx context.Context, moderatorID, playerID string, afterID int64, limit int, wait bool) ([]core.RollEntry, error) {
	if err := s.authorizeModerator(ctx, moderatorID, playerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultModeratorRollLimit
	}
	q := storage.RollQuery{UserID: playerID, AfterID: afterID, Limit: limit}

	var waiter *RollWaiter
	if wait {
		waiter = s.feed.Register(playerID, afterID)
		defer waiter.Done()
	}

	rolls, err := s.queryRolls(ctx, q)
	if err != nil || len(rolls) > 0 || waiter == nil {
		return rolls, err
	}

	if !waiter.Wait(ctx) {
		return rolls, nil
	}
	return s.queryRolls(ctx, q)
}
