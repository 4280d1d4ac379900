package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interview/internal/services"
)

const defaultLeaderboardLimit = 10

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// HandleProgress handles GET /progress
func (h *ProgressHandler) HandleProgress(c *fiber.Ctx) error {
	candidateID := strings.TrimSpace(c.Query("candidate_id"))
	role := strings.TrimSpace(c.Query("role"))

	if candidateID == "" || role == "" {
		return badRequest(c, "candidate_id and role are required")
	}

	resp, err := h.progress.Progress(c.UserContext(), candidateID, role)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// HandleLeaderboard handles GET /leaderboard
func (h *ProgressHandler) HandleLeaderboard(c *fiber.Ctx) error {
	role := strings.TrimSpace(c.Query("role"))
	if role == "" {
		return badRequest(c, "role is required")
	}

	limit := c.QueryInt("limit", defaultLeaderboardLimit)
	if limit < 1 || limit > 100 {
		return badRequest(c, "limit must be between 1 and 100")
	}

	resp, err := h.progress.Leaderboard(c.UserContext(), role, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}
