package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/services"
)

type AgentHandler struct {
	agent services.AgentService
}

func NewAgentHandler(agent services.AgentService) *AgentHandler {
	return &AgentHandler{agent: agent}
}

// HandleAsk handles POST /agent/ask
func (h *AgentHandler) HandleAsk(c *fiber.Ctx) error {
	var req models.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	if strings.TrimSpace(req.Message) == "" {
		return badRequest(c, "message is required")
	}

	resp, err := h.agent.Ask(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}
