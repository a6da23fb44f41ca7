package api

import (
	"session-service/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type EnsureProfileRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  string  `json:"role"`
}

func (h *UserHandler) EnsureProfile(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var request EnsureProfileRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	email := identity.Email
	if email == "" {
		email = request.Email
	}
	name := request.Name
	if name == nil && identity.Name != "" {
		name = &identity.Name
	}

	profile, err := h.userService.EnsureProfile(c.UserContext(), service.EnsureProfileInput{
		ID:    identity.Subject,
		Email: email,
		Name:  name,
		Role:  request.Role,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	profile, err := h.userService.GetProfile(c.UserContext(), identity.Subject)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

type DeviceTokenRequest struct {
	DeviceToken string `json:"device_token"`
}

func (h *UserHandler) RegisterDeviceToken(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var request DeviceTokenRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.userService.RegisterDeviceToken(c.UserContext(), identity.Subject, request.DeviceToken); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Device token registered"})
}

type ReassignRoleRequest struct {
	Role string `json:"role"`
}

func (h *UserHandler) ReassignRole(c *fiber.Ctx) error {
	var request ReassignRoleRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.userService.ReassignRole(c.UserContext(), c.Params("id"), request.Role); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Role updated"})
}
