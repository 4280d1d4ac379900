package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/services"
)

// statusFor maps domain errors onto HTTP codes. Protocol violations are the
// caller's fault and come back as 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNoPendingQuestion),
		errors.Is(err, services.ErrQuestionLimitReached),
		errors.Is(err, services.ErrInterviewNotEligible),
		errors.Is(err, services.ErrResumeNotSubmitted):
		return fiber.StatusConflict
	case errors.Is(err, repositories.ErrSessionNotFound),
		errors.Is(err, repositories.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrRoleRequired),
		errors.Is(err, services.ErrInvalidResumeFile):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error": msg,
		"code":  code,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"code":  fiber.StatusBadRequest,
	})
}

// ErrorHandler renders errors that escape a handler in the same shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
