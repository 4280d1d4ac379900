package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/services"
)

type InterviewHandler struct {
	interviews  services.InterviewService
	storage     services.StorageService
	maxFileSize int64
	log         *zap.Logger
}

func NewInterviewHandler(
	interviews services.InterviewService,
	storage services.StorageService,
	maxFileSize int64,
	log *zap.Logger,
) *InterviewHandler {
	return &InterviewHandler{
		interviews:  interviews,
		storage:     storage,
		maxFileSize: maxFileSize,
		log:         log.Named("interview_handler"),
	}
}

// HandleResume handles POST /interview/resume
func (h *InterviewHandler) HandleResume(c *fiber.Ctx) error {
	candidateID := strings.TrimSpace(c.FormValue("candidate_id"))
	role := strings.TrimSpace(c.FormValue("target_role"))
	experience := strings.TrimSpace(c.FormValue("experience"))

	if candidateID == "" {
		return badRequest(c, "candidate_id is required")
	}
	if role == "" {
		return badRequest(c, "target_role is required")
	}
	if experience == "" {
		return badRequest(c, "experience is required")
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return badRequest(c, "resume file is required")
	}
	if file.Size > h.maxFileSize {
		return badRequest(c, fmt.Sprintf("resume file too large. Max size: %d bytes", h.maxFileSize))
	}

	path, err := h.storage.SaveResume(file, candidateID)
	if err != nil {
		return respondError(c, err)
	}
	defer func() {
		if err := h.storage.DeleteFile(path); err != nil {
			h.log.Warn("failed to remove resume", zap.String("path", path), zap.Error(err))
		}
	}()

	resp, err := h.interviews.StartWithResume(c.UserContext(), candidateID, path, role, experience)
	if err != nil {
		h.log.Error("resume screening failed", zap.String("candidate_id", candidateID), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// HandleAnswer handles POST /interview/answer
func (h *InterviewHandler) HandleAnswer(c *fiber.Ctx) error {
	var req models.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	req.CandidateID = strings.TrimSpace(req.CandidateID)
	if req.CandidateID == "" {
		return badRequest(c, "candidate_id is required")
	}
	if strings.TrimSpace(req.Answer) == "" {
		return badRequest(c, "answer is required")
	}

	resp, err := h.interviews.Answer(c.UserContext(), req.CandidateID, req.Answer)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// HandleHistory handles GET /interview/history
func (h *InterviewHandler) HandleHistory(c *fiber.Ctx) error {
	candidateID := strings.TrimSpace(c.Query("candidate_id"))
	if candidateID == "" {
		return badRequest(c, "candidate_id is required")
	}

	resp, err := h.interviews.History(c.UserContext(), candidateID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// HandleSampleQuestion handles GET /questions/sample
func (h *InterviewHandler) HandleSampleQuestion(c *fiber.Ctx) error {
	role := strings.TrimSpace(c.Query("role"))
	if role == "" {
		return badRequest(c, "role is required")
	}

	question, ok := h.interviews.SampleQuestion(c.UserContext(), role)
	if !ok {
		return c.JSON(fiber.Map{
			"question": "",
			"message":  services.ExhaustedMessage,
		})
	}

	return c.JSON(fiber.Map{"question": question})
}
