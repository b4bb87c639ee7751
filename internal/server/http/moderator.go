package http

import (
	"strconv"

	"charforge/internal/server/processor"
	"charforge/internal/server/service"

	"github.com/gofiber/fiber/v2"
)

// ModeratorRolls lists a moderated player's rolls. With ?wait=true and no roll newer
// than ?after, the request is held until one arrives or the poll times out.
func (h *HTTPHandler) ModeratorRolls(c *fiber.Ctx) error {
	playerID := c.Params("playerId")
	if !isValidUUID(playerID) {
		return invalidID(c, "player")
	}

	var afterID int64
	if raw := c.Query("after"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return badRequest(c, "invalid after value", "after must be a non-negative roll ID")
		}
		afterID = v
	}

	args := processor.ModeratorRollsArgs{
		PlayerID: playerID,
		AfterID:  afterID,
		Limit:    c.QueryInt("limit", service.DefaultModeratorRollLimit),
		Wait:     c.QueryBool("wait", false),
	}
	resp := h.proc.Execute(c.Context(), processor.NewModeratorRollsCommand(currentUser(c), args))
	return respond(c, resp, fiber.StatusOK)
}

// ModeratorSheet shows a moderated player's character
func (h *HTTPHandler) ModeratorSheet(c *fiber.Ctx) error {
	characterID := c.Params("characterId")
	if !isValidUUID(characterID) {
		return invalidID(c, "character")
	}

	cmd := processor.NewModeratorSheetCommand(currentUser(c), characterID)
	return respond(c, h.proc.Execute(c.Context(), cmd), fiber.StatusOK)
}
