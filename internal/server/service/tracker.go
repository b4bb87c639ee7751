package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"charforge/internal/server/character"
	"charforge/internal/server/core"
	"charforge/internal/server/storage"
)

func parseTracker(name string) (character.Tracker, error) {
	t, err := character.ParseTracker(name)
	if err != nil {
		return "", core.Validation(core.FieldError{Field: "tracker", Message: err.Error()})
	}
	return t, nil
}

// SetTracker stores value, clamped into the tracker's bounds. A deferred write is
// debounced per character and tracker and then handed to the async writer.
func (s *Service) SetTracker(ctx context.Context, userID, characterID, name string, value int, deferred bool) (core.TrackerResponse, error) {
	t, err := parseTracker(name)
	if err != nil {
		return core.TrackerResponse{}, err
	}
	if err := s.authorizeOwner(ctx, userID, characterID); err != nil {
		return core.TrackerResponse{}, err
	}

	value = character.Clamp(value, t.Max())
	resp := core.TrackerResponse{CharacterID: characterID, Tracker: t.String(), Value: value, Max: t.Max()}

	if deferred {
		characterID := strings.Clone(characterID)
		s.saver.Schedule(characterID+"/"+t.String(), func() {
			if !s.store.EnqueueTrackerWrite(characterID, t, value) {
				log.Printf("tracker: dropped deferred %s write for %s", t, characterID)
			}
		})
		return resp, nil
	}

	// a direct write supersedes any pending deferred one
	s.saver.Cancel(characterID + "/" + t.String())
	if err := s.store.SetTracker(ctx, characterID, t, value); err != nil {
		return core.TrackerResponse{}, trackerErr(err, characterID)
	}
	return resp, nil
}

// ClickTracker applies a dot click at the 1-based index to the stored value
func (s *Service) ClickTracker(ctx context.Context, userID, characterID, name string, index int) (core.TrackerResponse, error) {
	t, err := parseTracker(name)
	if err != nil {
		return core.TrackerResponse{}, err
	}
	if err := s.authorizeOwner(ctx, userID, characterID); err != nil {
		return core.TrackerResponse{}, err
	}

	s.saver.Cancel(characterID + "/" + t.String())
	next, err := s.store.ApplyTracker(ctx, characterID, t, func(current int) int {
		return character.NextValue(current, index, t.Max())
	})
	if err != nil {
		return core.TrackerResponse{}, trackerErr(err, characterID)
	}
	return core.TrackerResponse{CharacterID: characterID, Tracker: t.String(), Value: next, Max: t.Max()}, nil
}

func trackerErr(err error, characterID string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return core.NotFound("character", characterID)
	}
	return core.Persistence("failed to save tracker", err)
}
