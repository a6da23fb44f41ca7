package api

import (
	"strings"

	"session-service/internal/model"
	"session-service/internal/repository"
	"session-service/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	var request service.CreateSessionInput
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	request.CoachUserID = &identity.Subject

	created, err := h.sessionService.CreateSession(c.UserContext(), request)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	filter := repository.SessionFilter{
		Sport: queryParam(c, "sport"),
		Date:  queryParam(c, "date"),
		State: queryParam(c, "state"),
		City:  queryParam(c, "city"),
	}

	sessions, err := h.sessionService.FindSessions(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sessions)
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	session, err := h.sessionService.GetSession(c.UserContext(), sessionID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(session)
}

func (h *SessionHandler) BookSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	var request model.PlayerDetails
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	request.PlayerUserID = &identity.Subject

	booked, err := h.sessionService.ReserveSession(c.UserContext(), sessionID, request)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "session": booked})
}

func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	if err := h.sessionService.DeleteSession(c.UserContext(), sessionID, identity.Subject); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListMySessions returns a coach's published sessions or a player's bookings, depending on
// the caller's profile role.
func (h *SessionHandler) ListMySessions(c *fiber.Ctx) error {
	profile := GetProfile(c)
	if profile == nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Profile not set up"})
	}

	var sessions []model.Session
	var err error
	if profile.Role == model.RoleCoach {
		sessions, err = h.sessionService.ListCoachSessions(c.UserContext(), profile.ID)
	} else {
		sessions, err = h.sessionService.ListPlayerBookings(c.UserContext(), profile.ID)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sessions)
}

func queryParam(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}
