package processor

import (
	"context"
	"errors"
	"log"

	"charforge/internal/server/character"
	"charforge/internal/server/core"
	"charforge/internal/server/dice"
	"charforge/internal/server/service"
)

// Processor validates command arguments, resolves dice and maps service results and
// errors onto ProcessorResponse
type Processor struct {
	svc      *service.Service
	resolver *dice.Resolver
}

// New creates a processor with a crypto-seeded dice resolver
func New(svc *service.Service) (*Processor, error) {
	resolver, err := dice.NewResolver()
	if err != nil {
		return nil, err
	}
	return NewWithResolver(svc, resolver), nil
}

// NewWithResolver creates a processor around an existing resolver
func NewWithResolver(svc *service.Service, resolver *dice.Resolver) *Processor {
	return &Processor{svc: svc, resolver: resolver}
}

func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	if cmd.Type != CmdTraitOptions && cmd.UserID == "" {
		return p.errorResponse("authentication required", core.ErrUnauthorized)
	}

	switch cmd.Type {
	case CmdSubmitBuild:
		return p.handleSubmitBuild(ctx, cmd)
	case CmdListCharacters:
		list, err := p.svc.ListCharacters(ctx, cmd.UserID)
		return p.result(core.CharacterListResponse{Characters: list}, err)
	case CmdGetSheet:
		sheet, err := p.svc.GetSheet(ctx, cmd.UserID, cmd.CharacterID)
		return p.result(sheet, err)
	case CmdSetTracker, CmdClickTracker:
		return p.handleTracker(ctx, cmd)
	case CmdRollDuality:
		return p.handleDuality(ctx, cmd)
	case CmdRollStandard:
		return p.handleStandard(ctx, cmd)
	case CmdRecentRolls:
		return p.handleRecentRolls(ctx, cmd)
	case CmdTraitOptions:
		return p.handleTraitOptions(cmd)
	case CmdModeratorSheet:
		sheet, err := p.svc.ModeratorSheet(ctx, cmd.UserID, cmd.CharacterID)
		return p.result(sheet, err)
	case CmdModeratorRolls:
		return p.handleModeratorRolls(ctx, cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

func (p *Processor) handleSubmitBuild(ctx context.Context, cmd Command) ProcessorResponse {
	req, ok := cmd.Args.(core.BuildRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	id, err := p.svc.SubmitBuild(ctx, cmd.UserID, req)
	if err != nil {
		return p.fromError(err)
	}
	return ProcessorResponse{Success: true, Data: core.BuildResponse{CharacterID: id}}
}

func (p *Processor) handleTracker(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(TrackerArgs)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	var (
		resp core.TrackerResponse
		err  error
	)
	if cmd.Type == CmdClickTracker {
		resp, err = p.svc.ClickTracker(ctx, cmd.UserID, cmd.CharacterID, args.Tracker, args.Index)
	} else {
		resp, err = p.svc.SetTracker(ctx, cmd.UserID, cmd.CharacterID, args.Tracker, args.Value, args.Deferred)
	}
	return p.result(resp, err)
}

// handleDuality adds the stored trait value, when a trait is named, to the request modifier
func (p *Processor) handleDuality(ctx context.Context, cmd Command) ProcessorResponse {
	req, ok := cmd.Args.(core.DualityRollRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	modifier := req.Modifier
	if req.Trait != "" {
		v, err := p.svc.TraitValue(ctx, cmd.UserID, cmd.CharacterID, req.Trait)
		if err != nil {
			return p.fromError(err)
		}
		modifier += v
	}

	roll, err := p.svc.RecordRoll(ctx, cmd.UserID, cmd.CharacterID, p.resolver.Duality(modifier))
	roll.Label = req.Label
	return p.result(roll, err)
}

func (p *Processor) handleStandard(ctx context.Context, cmd Command) ProcessorResponse {
	req, ok := cmd.Args.(core.StandardRollRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	res, err := p.resolver.Standard(req.Expression)
	if err != nil {
		return ProcessorResponse{Error: &core.ErrorResponse{
			Error:   "invalid dice expression",
			Code:    core.ErrInvalidDice,
			Details: err.Error(),
			Fields:  []core.FieldError{{Field: "expression", Message: err.Error()}},
		}}
	}

	roll, err := p.svc.RecordRoll(ctx, cmd.UserID, cmd.CharacterID, res)
	roll.Label = req.Label
	return p.result(roll, err)
}

func (p *Processor) handleRecentRolls(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(RollQueryArgs)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	rolls, err := p.svc.RecentRolls(ctx, cmd.UserID, args.CharacterID, args.Limit)
	return p.result(core.RollHistoryResponse{Rolls: rolls}, err)
}

func (p *Processor) handleModeratorRolls(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(ModeratorRollsArgs)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	rolls, err := p.svc.ModeratorRolls(ctx, cmd.UserID, args.PlayerID, args.AfterID, args.Limit, args.Wait)
	return p.result(core.RollHistoryResponse{Rolls: rolls}, err)
}

func (p *Processor) handleTraitOptions(cmd Command) ProcessorResponse {
	assigned, ok := cmd.Args.([]int)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	if len(assigned) > character.TraitCount {
		return p.errorResponse("too many assigned traits", core.ErrValidationFailed)
	}

	remaining, valid := character.RemainingTraitValues(assigned)
	if remaining == nil {
		remaining = []int{}
	}
	return ProcessorResponse{
		Success: true,
		Data: core.TraitOptionsResponse{
			Assigned:  assigned,
			Remaining: remaining,
			Complete:  len(assigned) == character.TraitCount,
			Valid:     valid,
		},
	}
}

func (p *Processor) result(data any, err error) ProcessorResponse {
	if err != nil {
		return p.fromError(err)
	}
	return ProcessorResponse{Success: true, Data: data}
}

// fromError maps engine errors onto error codes. Forbidden is reported as NOT_FOUND so
// callers cannot discover other users' ids.
func (p *Processor) fromError(err error) ProcessorResponse {
	if errors.Is(err, service.ErrStorageDisabled) {
		return p.errorResponse("storage disabled", core.ErrStorageDisabled)
	}

	var e *core.Error
	if !errors.As(err, &e) {
		log.Printf("processor: unexpected error: %v", err)
		return p.errorResponse("internal error", core.ErrInternalError)
	}

	resp := &core.ErrorResponse{Error: e.Message}
	switch e.Kind {
	case core.KindValidation:
		resp.Code = core.ErrValidationFailed
		resp.Details = e.FieldSummary()
		resp.Fields = e.Fields
	case core.KindNotFound:
		resp.Code = core.ErrNotFound
	case core.KindForbidden:
		resp.Error = "not found"
		resp.Code = core.ErrNotFound
	case core.KindPersistence:
		log.Printf("processor: %v", err)
		resp.Code = core.ErrPersistenceFailed
	default:
		log.Printf("processor: %v", err)
		resp.Code = core.ErrInternalError
	}
	resp.Retryable = e.Retryable()
	return ProcessorResponse{Error: resp}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}
