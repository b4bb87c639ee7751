package processor

import (
	"charforge/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdSubmitBuild CommandType = iota
	CmdListCharacters
	CmdGetSheet
	CmdSetTracker
	CmdClickTracker
	CmdRollDuality
	CmdRollStandard
	CmdRecentRolls
	CmdTraitOptions
	CmdModeratorSheet
	CmdModeratorRolls
)

// Command is a unified structure for all processor operations. UserID is the
// authenticated caller and is required for everything except CmdTraitOptions.
type Command struct {
	Type        CommandType
	UserID      string
	CharacterID string
	Args        any
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

// TrackerArgs carries a set or click on one tracker
type TrackerArgs struct {
	Tracker  string
	Value    int
	Index    int
	Deferred bool
}

// RollQueryArgs selects the caller's recent rolls
type RollQueryArgs struct {
	CharacterID string
	Limit       int
}

// ModeratorRollsArgs selects a moderated player's rolls
type ModeratorRollsArgs struct {
	PlayerID string
	AfterID  int64
	Limit    int
	Wait     bool
}

func NewSubmitBuildCommand(userID string, req core.BuildRequest) Command {
	return Command{Type: CmdSubmitBuild, UserID: userID, Args: req}
}

func NewListCharactersCommand(userID string) Command {
	return Command{Type: CmdListCharacters, UserID: userID}
}

func NewGetSheetCommand(userID, characterID string) Command {
	return Command{Type: CmdGetSheet, UserID: userID, CharacterID: characterID}
}

func NewSetTrackerCommand(userID, characterID, tracker string, value int, deferred bool) Command {
	return Command{
		Type:        CmdSetTracker,
		UserID:      userID,
		CharacterID: characterID,
		Args:        TrackerArgs{Tracker: tracker, Value: value, Deferred: deferred},
	}
}

func NewClickTrackerCommand(userID, characterID, tracker string, index int) Command {
	return Command{
		Type:        CmdClickTracker,
		UserID:      userID,
		CharacterID: characterID,
		Args:        TrackerArgs{Tracker: tracker, Index: index},
	}
}

func NewDualityRollCommand(userID, characterID string, req core.DualityRollRequest) Command {
	return Command{Type: CmdRollDuality, UserID: userID, CharacterID: characterID, Args: req}
}

func NewStandardRollCommand(userID, characterID string, req core.StandardRollRequest) Command {
	return Command{Type: CmdRollStandard, UserID: userID, CharacterID: characterID, Args: req}
}

func NewRecentRollsCommand(userID, characterID string, limit int) Command {
	return Command{Type: CmdRecentRolls, UserID: userID, Args: RollQueryArgs{CharacterID: characterID, Limit: limit}}
}

func NewTraitOptionsCommand(assigned []int) Command {
	return Command{Type: CmdTraitOptions, Args: assigned}
}

func NewModeratorSheetCommand(moderatorID, characterID string) Command {
	return Command{Type: CmdModeratorSheet, UserID: moderatorID, CharacterID: characterID}
}

func NewModeratorRollsCommand(moderatorID string, args ModeratorRollsArgs) Command {
	return Command{Type: CmdModeratorRolls, UserID: moderatorID, Args: args}
}
