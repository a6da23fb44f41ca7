package api

import (
	"time"

	"session-service/internal/model"
	"session-service/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	RateLimitMax        int
	RateLimitExpiration time.Duration
}

func SetupRoutes(app *fiber.App, sessions service.SessionService, users service.UserService, cfg RouteConfig) {
	sessionHandler := NewSessionHandler(sessions)
	userHandler := NewUserHandler(users)

	v1 := app.Group("/v1")

	sessionRoutes := v1.Group("/sessions")
	sessionRoutes.Get("/", sessionHandler.ListSessions)
	sessionRoutes.Get("/:id", sessionHandler.GetSession)
	sessionRoutes.Post("/", AuthMiddleware(), RequireRole(users, model.RoleCoach), sessionHandler.CreateSession)
	sessionRoutes.Post("/:id/book",
		AuthMiddleware(),
		BookingLimiter(cfg.RateLimitMax, cfg.RateLimitExpiration),
		RequireRole(users, model.RolePlayer),
		sessionHandler.BookSession,
	)
	sessionRoutes.Delete("/:id", AuthMiddleware(), RequireRole(users, model.RoleCoach), sessionHandler.DeleteSession)

	userRoutes := v1.Group("/users")
	userRoutes.Get("/me", AuthMiddleware(), userHandler.GetMyProfile)
	userRoutes.Post("/me", AuthMiddleware(), userHandler.EnsureProfile)
	userRoutes.Get("/me/sessions", AuthMiddleware(), RequireRole(users, model.RoleCoach, model.RolePlayer), sessionHandler.ListMySessions)
	userRoutes.Post("/me/device-token", AuthMiddleware(), userHandler.RegisterDeviceToken)

	internal := v1.Group("/internal", InternalAuthMiddleware())
	internal.Put("/users/:id/role", userHandler.ReassignRole)
}
