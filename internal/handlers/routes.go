package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Interview *InterviewHandler
	Result    *ResultHandler
	Progress  *ProgressHandler
	Agent     *AgentHandler
}

// Register mounts every API route on api, normally the /api/v1 group.
func Register(api fiber.Router, h Handlers) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	interview := api.Group("/interview")
	interview.Post("/resume", h.Interview.HandleResume)
	interview.Post("/answer", h.Interview.HandleAnswer)
	interview.Get("/history", h.Interview.HandleHistory)
	interview.Get("/result/:id", h.Result.HandleGetResult)

	api.Get("/questions/sample", h.Interview.HandleSampleQuestion)
	api.Get("/progress", h.Progress.HandleProgress)
	api.Get("/leaderboard", h.Progress.HandleLeaderboard)
	api.Post("/agent/ask", h.Agent.HandleAsk)
}
