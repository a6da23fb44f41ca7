package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"session-service/internal/api"
	"session-service/internal/events"
	"session-service/internal/repository"
	"session-service/internal/service"
	"session-service/internal/tracing"
	_ "session-service/migrations"
)

const serviceName = "session-service"

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalHandler(serviceName)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations()
		return
	}

	shutdownTracer, err := tracing.InitTracerProvider(context.Background(), serviceName, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	var sessionRepo repository.SessionRepository
	var userRepo repository.UserRepository

	switch os.Getenv("STORAGE_DRIVER") {
	case "memory":
		log.Println("Using in-memory storage; data is lost on restart.")
		sessionRepo = repository.NewMemorySessionRepository()
		userRepo = repository.NewMemoryUserRepository()
	default:
		db := connectDB()
		defer db.Close()
		sessionRepo = repository.NewPostgresSessionRepository(db)
		userRepo = repository.NewPostgresUserRepository(db)
	}

	var notifier service.Notifier = events.NopPublisher{}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		publisher, nc, err := events.NewNatsPublisher(natsURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Drain()
		notifier = publisher
		log.Println("Successfully connected to NATS.")
	} else {
		log.Println("NATS_URL not set, session events will not be published.")
	}

	sessionService := service.NewSessionService(sessionRepo, notifier)
	userService := service.NewUserService(userRepo)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": serviceName})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api.SetupRoutes(app, sessionService, userService, rateLimitConfig())

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8001"
	}

	log.Printf("Listening %s on port %s", serviceName, port)
	log.Fatal(app.Listen(":" + port))
}

func rateLimitConfig() api.RouteConfig {
	maxRequest, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_MAX"))
	if maxRequest == 0 {
		maxRequest = 100
	}
	expirationSec, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_EXPIRATION"))
	if expirationSec == 0 {
		expirationSec = 60
	}

	return api.RouteConfig{
		RateLimitMax:        maxRequest,
		RateLimitExpiration: time.Duration(expirationSec) * time.Second,
	}
}

func databaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)
}

func connectDB() *sqlx.DB {
	db, err := sqlx.Connect("pgx", databaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations() {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", databaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
