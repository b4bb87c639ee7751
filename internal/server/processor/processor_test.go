package processor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"charforge/internal/server/core"
	"charforge/internal/server/dice"
	"charforge/internal/server/service"
	"charforge/internal/server/storage"
)

type scriptedSource struct{ faces []int }

func (s *scriptedSource) Intn(int) int {
	v := s.faces[0]
	s.faces = s.faces[1:]
	return v - 1
}

func newTestProcessor(t *testing.T, faces ...int) (*Processor, *service.Service) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "proc.db"), false)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())

	svc := service.New(store, []byte("test-secret-minimum-32-characters-long"), time.Second)
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return NewWithResolver(svc, dice.NewResolverWithSource(&scriptedSource{faces: faces})), svc
}

func intp(v int) *int { return &v }

func validBuild() core.BuildRequest {
	return core.BuildRequest{
		Basics: core.BasicsInput{Name: "Marlowe", Level: 2},
		Traits: core.TraitsInput{
			Agility: intp(2), Strength: intp(1), Finesse: intp(1),
			Instinct: intp(0), Presence: intp(0), Knowledge: intp(-1),
		},
	}
}

func setup(t *testing.T, faces ...int) (*Processor, string, string) {
	t.Helper()
	p, svc := newTestProcessor(t, faces...)
	u, err := svc.CreateUser(context.Background(), "alice", "", "password1")
	require.NoError(t, err)

	resp := p.Execute(context.Background(), NewSubmitBuildCommand(u.UserID, validBuild()))
	require.True(t, resp.Success, "%+v", resp.Error)
	return p, u.UserID, resp.Data.(core.BuildResponse).CharacterID
}

func TestExecuteRequiresUser(t *testing.T) {
	p, _ := newTestProcessor(t)
	resp := p.Execute(context.Background(), NewListCharactersCommand(""))
	require.False(t, resp.Success)
	require.Equal(t, core.ErrUnauthorized, resp.Error.Code)
}

func TestSubmitBuildValidationFields(t *testing.T) {
	p, svc := newTestProcessor(t)
	u, err := svc.CreateUser(context.Background(), "alice", "", "password1")
	require.NoError(t, err)

	req := validBuild()
	req.Traits.Agility = nil
	resp := p.Execute(context.Background(), NewSubmitBuildCommand(u.UserID, req))
	require.False(t, resp.Success)
	require.Equal(t, core.ErrValidationFailed, resp.Error.Code)
	require.Equal(t, "traits.agility", resp.Error.Fields[0].Field)
	require.False(t, resp.Error.Retryable)
}

func TestDualityRollWithTrait(t *testing.T) {
	ctx := context.Background()
	p, userID, charID := setup(t, 7, 9)

	resp := p.Execute(ctx, NewDualityRollCommand(userID, charID, core.DualityRollRequest{
		Trait: "agility", Modifier: 1, Label: "Shoot",
	}))
	require.True(t, resp.Success, "%+v", resp.Error)

	roll := resp.Data.(core.RollResponse)
	require.Equal(t, 19, roll.Total)
	require.Equal(t, "fear", roll.Outcome)
	require.Equal(t, "Shoot", roll.Label)
	require.Equal(t, "2d12+3", roll.Dice)

	hist := p.Execute(ctx, NewRecentRollsCommand(userID, "", 10))
	require.True(t, hist.Success)
	require.Len(t, hist.Data.(core.RollHistoryResponse).Rolls, 1)
}

func TestStandardRollRejectsBeforeLogging(t *testing.T) {
	ctx := context.Background()
	p, userID, charID := setup(t, 4, 2)

	resp := p.Execute(ctx, NewStandardRollCommand(userID, charID, core.StandardRollRequest{Expression: "0d6"}))
	require.False(t, resp.Success)
	require.Equal(t, core.ErrInvalidDice, resp.Error.Code)

	resp = p.Execute(ctx, NewStandardRollCommand(userID, charID, core.StandardRollRequest{Expression: "2d6+3"}))
	require.True(t, resp.Success)
	roll := resp.Data.(core.RollResponse)
	require.Equal(t, 9, roll.Total)
	require.Nil(t, roll.Fear)
	require.Equal(t, "neutral", roll.Outcome)

	hist := p.Execute(ctx, NewRecentRollsCommand(userID, charID, 10))
	require.Len(t, hist.Data.(core.RollHistoryResponse).Rolls, 1)
}

func TestForbiddenReportedAsNotFound(t *testing.T) {
	ctx := context.Background()
	p, _, charID := setup(t)

	resp := p.Execute(ctx, NewGetSheetCommand("someone-else", charID))
	require.False(t, resp.Success)
	require.Equal(t, core.ErrNotFound, resp.Error.Code)
	require.Equal(t, "not found", resp.Error.Error)

	resp = p.Execute(ctx, NewClickTrackerCommand("someone-else", charID, "hp", 3))
	require.Equal(t, core.ErrNotFound, resp.Error.Code)
}

func TestTrackerCommands(t *testing.T) {
	ctx := context.Background()
	p, userID, charID := setup(t)

	resp := p.Execute(ctx, NewSetTrackerCommand(userID, charID, "hope", -4, false))
	require.True(t, resp.Success)
	require.Equal(t, 0, resp.Data.(core.TrackerResponse).Value)

	resp = p.Execute(ctx, NewClickTrackerCommand(userID, charID, "hope", 3))
	require.True(t, resp.Success)
	require.Equal(t, 3, resp.Data.(core.TrackerResponse).Value)
	require.Equal(t, 6, resp.Data.(core.TrackerResponse).Max)
}

func TestTraitOptions(t *testing.T) {
	p, _ := newTestProcessor(t)

	resp := p.Execute(context.Background(), NewTraitOptionsCommand([]int{2, 1}))
	require.True(t, resp.Success)
	opts := resp.Data.(core.TraitOptionsResponse)
	require.Equal(t, []int{1, 0, 0, -1}, opts.Remaining)
	require.True(t, opts.Valid)
	require.False(t, opts.Complete)

	resp = p.Execute(context.Background(), NewTraitOptionsCommand([]int{2, 2}))
	opts = resp.Data.(core.TraitOptionsResponse)
	require.False(t, opts.Valid)
	require.Empty(t, opts.Remaining)
}

func TestPersistenceErrorsAreRetryable(t *testing.T) {
	p, _ := newTestProcessor(t)

	resp := p.fromError(core.Persistence("failed to save tracker", errors.New("disk I/O error")))
	require.Equal(t, core.ErrPersistenceFailed, resp.Error.Code)
	require.True(t, resp.Error.Retryable)

	resp = p.fromError(core.NotFound("character", "c1"))
	require.Equal(t, core.ErrNotFound, resp.Error.Code)
	require.False(t, resp.Error.Retryable)
}
