package api

import (
	"errors"
	"log/slog"

	"session-service/internal/service"

	"github.com/gofiber/fiber/v2"
)

// respondError translates service errors into the JSON error contract.
func respondError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	var conflict *service.SchedulingConflictError

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": verr.Fields})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":              "Session overlaps one of your existing sessions",
			"conflictingSession": conflict.Conflicting,
		})
	case errors.Is(err, service.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, service.ErrProfileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	case errors.Is(err, service.ErrAlreadyReserved):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Already booked"})
	case errors.Is(err, service.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "retryable": true})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	default:
		slog.ErrorContext(c.UserContext(), "Request failed", slog.String("path", c.Path()), slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
