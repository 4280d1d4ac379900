package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/mock-interview/internal/services"
)

type ResultHandler struct {
	interviews services.InterviewService
}

func NewResultHandler(interviews services.InterviewService) *ResultHandler {
	return &ResultHandler{interviews: interviews}
}

// HandleGetResult handles GET /interview/result/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid evaluation ID format")
	}

	resp, err := h.interviews.Result(c.UserContext(), recordID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}
