package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"session-service/internal/api"
	"session-service/internal/mailer"
	"session-service/internal/repository"
	"session-service/internal/worker"
)

func main() {
	godotenv.Load(".env.dev")

	api.SetupGlobalHandler("notification-worker")

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		log.Fatal("NATS_URL environment variable is not set")
	}

	var sender mailer.Sender = mailer.LogSender{}
	if cfg, ok := mailer.ConfigFromEnv(); ok {
		smtp, err := mailer.NewSMTPSender(cfg)
		if err != nil {
			log.Fatalf("Failed to configure SMTP: %v", err)
		}
		sender = smtp
	} else {
		log.Println("SMTP env not configured. Emails will be logged only.")
	}

	var pusher worker.Pusher
	apnsClient, err := worker.NewAPNsClientFromEnv()
	if err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}
	if apnsClient != nil {
		log.Println("APNs credentials found, push notifications enabled.")
		pusher = apnsClient
	} else {
		log.Println("APNs credentials not found or invalid. Worker will run in MOCK mode.")
	}

	var dedup worker.Deduper
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		rd, err := worker.NewRedisDeduper(redisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		if err := rd.Ping(context.Background()); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rd.Close()
		dedup = rd
	}

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"),
	)
	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	nc, err := nats.Connect(natsURL, nats.Name("notification-worker"))
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Drain()

	w := worker.New(sender, pusher, repository.NewPostgresUserRepository(db), dedup, os.Getenv("APNS_TOPIC"))
	if _, err := w.Subscribe(nc); err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	log.Println("Notification worker started, waiting for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down notification worker...")
}
