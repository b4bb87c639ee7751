package http

import (
	"strconv"
	"strings"

	"charforge/internal/server/core"
	"charforge/internal/server/processor"

	"github.com/gofiber/fiber/v2"
)

// TraitOptions reports which trait values are still free: GET /traits/options?assigned=2,1
func (h *HTTPHandler) TraitOptions(c *fiber.Ctx) error {
	assigned := []int{}
	if raw := strings.TrimSpace(c.Query("assigned")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return badRequest(c, "invalid assigned values", "assigned must be a comma separated list of integers")
			}
			assigned = append(assigned, v)
		}
	}

	resp := h.proc.Execute(c.Context(), processor.NewTraitOptionsCommand(assigned))
	return respond(c, resp, fiber.StatusOK)
}

// SubmitBuild persists a completed build form
func (h *HTTPHandler) SubmitBuild(c *fiber.Ctx) error {
	req, ok := validatedBody[core.BuildRequest](c)
	if !ok {
		return badRequest(c, "missing request body", "")
	}

	resp := h.proc.Execute(c.Context(), processor.NewSubmitBuildCommand(currentUser(c), *req))
	return respond(c, resp, fiber.StatusCreated)
}

func (h *HTTPHandler) ListCharacters(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.Context(), processor.NewListCharactersCommand(currentUser(c)))
	return respond(c, resp, fiber.StatusOK)
}

func (h *HTTPHandler) GetSheet(c *fiber.Ctx) error {
	characterID := c.Params("characterId")
	if !isValidUUID(characterID) {
		return invalidID(c, "character")
	}

	resp := h.proc.Execute(c.Context(), processor.NewGetSheetCommand(currentUser(c), characterID))
	return respond(c, resp, fiber.StatusOK)
}

// SetTracker writes a tracker value. With ?defer=true the write is coalesced and
// saved after a short delay.
func (h *HTTPHandler) SetTracker(c *fiber.Ctx) error {
	characterID := c.Params("characterId")
	if !isValidUUID(characterID) {
		return invalidID(c, "character")
	}
	req, ok := validatedBody[core.TrackerSetRequest](c)
	if !ok {
		return badRequest(c, "missing request body", "")
	}

	deferred := c.QueryBool("defer", false)
	cmd := processor.NewSetTrackerCommand(currentUser(c), characterID, c.Params("tracker"), *req.Value, deferred)
	status := fiber.StatusOK
	if deferred {
		status = fiber.StatusAccepted
	}
	return respond(c, h.proc.Execute(c.Context(), cmd), status)
}

// ClickTracker toggles the clicked box: same box clears one, another box sets it
func (h *HTTPHandler) ClickTracker(c *fiber.Ctx) error {
	characterID := c.Params("characterId")
	if !isValidUUID(characterID) {
		return invalidID(c, "character")
	}
	req, ok := validatedBody[core.TrackerClickRequest](c)
	if !ok {
		return badRequest(c, "missing request body", "")
	}

	cmd := processor.NewClickTrackerCommand(currentUser(c), characterID, c.Params("tracker"), req.Index)
	return respond(c, h.proc.Execute(c.Context(), cmd), fiber.StatusOK)
}
