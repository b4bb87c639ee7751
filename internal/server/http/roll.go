package http

import (
	"charforge/internal/server/core"
	"charforge/internal/server/processor"
	"charforge/internal/server/storage"

	"github.com/gofiber/fiber/v2"
)

// RollDuality rolls 2d12 for a character, optionally adding a trait
func (h *HTTPHandler) RollDuality(c *fiber.Ctx) error {
	characterID := c.Params("characterId")
	if !isValidUUID(characterID) {
		return invalidID(c, "character")
	}
	req, ok := validatedBody[core.DualityRollRequest](c)
	if !ok {
		return badRequest(c, "missing request body", "")
	}

	cmd := processor.NewDualityRollCommand(currentUser(c), characterID, *req)
	return respond(c, h.proc.Execute(c.Context(), cmd), fiber.StatusCreated)
}

// RollStandard rolls an NdS+M expression for a character
func (h *HTTPHandler) RollStandard(c *fiber.Ctx) error {
	characterID := c.Params("characterId")
	if !isValidUUID(characterID) {
		return invalidID(c, "character")
	}
	req, ok := validatedBody[core.StandardRollRequest](c)
	if !ok {
		return badRequest(c, "missing request body", "")
	}

	cmd := processor.NewStandardRollCommand(currentUser(c), characterID, *req)
	return respond(c, h.proc.Execute(c.Context(), cmd), fiber.StatusCreated)
}

// RecentRolls lists the caller's rolls, newest first: GET /rolls?characterId=&limit=
func (h *HTTPHandler) RecentRolls(c *fiber.Ctx) error {
	characterID := c.Query("characterId")
	if characterID != "" && !isValidUUID(characterID) {
		return invalidID(c, "character")
	}

	limit := c.QueryInt("limit", storage.DefaultRollLimit)
	cmd := processor.NewRecentRollsCommand(currentUser(c), characterID, limit)
	return respond(c, h.proc.Execute(c.Context(), cmd), fiber.StatusOK)
}
