package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"session-service/internal/events"
	"session-service/internal/mailer"

	"github.com/nats-io/nats.go"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/token"
)

const QueueGroup = "notification-worker"

type TokenStore interface {
	GetDeviceTokens(ctx context.Context, userID string) ([]string, error)
}

type Pusher interface {
	Push(n *apns2.Notification) (*apns2.Response, error)
}

type Worker struct {
	mail   mailer.Sender
	pusher Pusher
	tokens TokenStore
	dedup  Deduper
	topic  string
}

// New builds a worker. A nil pusher runs push delivery in mock mode.
func New(mail mailer.Sender, pusher Pusher, tokens TokenStore, dedup Deduper, topic string) *Worker {
	if dedup == nil {
		dedup = AlwaysFirst{}
	}
	return &Worker{mail: mail, pusher: pusher, tokens: tokens, dedup: dedup, topic: topic}
}

func (w *Worker) Subscribe(nc *nats.Conn) (*nats.Subscription, error) {
	return nc.QueueSubscribe(events.SubjectSessionBooked, QueueGroup, func(msg *nats.Msg) {
		if err := w.HandleSessionBooked(context.Background(), msg.Data); err != nil {
			slog.Error("Failed to handle session booked event", slog.String("error", err.Error()))
		}
	})
}

// HandleSessionBooked emails the coach and pushes to their devices. The two channels fail
// independently; only undecodable payloads and dedup failures are returned.
func (w *Worker) HandleSessionBooked(ctx context.Context, data []byte) error {
	var event events.SessionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	first, err := w.dedup.FirstDelivery(ctx, event.EventID.String())
	if err != nil {
		return fmt.Errorf("dedup event %s: %w", event.EventID, err)
	}
	if !first {
		slog.InfoContext(ctx, "Skipping duplicate event", slog.String("event_id", event.EventID.String()))
		return nil
	}

	session := event.Session
	slog.InfoContext(ctx, "Event received: session booked",
		slog.String("event_id", event.EventID.String()),
		slog.String("session_id", session.ID.String()),
	)

	if err := w.mail.Send(ctx, mailer.BookingEmail(session)); err != nil {
		slog.ErrorContext(ctx, "Email send failed", slog.String("session_id", session.ID.String()), slog.String("error", err.Error()))
	}

	if session.CoachUserID == nil {
		return nil
	}
	w.pushToCoach(ctx, *session.CoachUserID, fmt.Sprintf("New booking for %s (%s, %s)", session.Sport, session.City, session.State))

	return nil
}

func (w *Worker) pushToCoach(ctx context.Context, coachID, alert string) {
	tokens, err := w.tokens.GetDeviceTokens(ctx, coachID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to retrieve device tokens", slog.String("user_id", coachID), slog.String("error", err.Error()))
		return
	}
	if len(tokens) == 0 {
		slog.InfoContext(ctx, "No device tokens found, no push sent", slog.String("user_id", coachID))
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"aps": map[string]string{"alert": alert, "sound": "default"},
	})

	for _, deviceToken := range tokens {
		notification := &apns2.Notification{
			DeviceToken: deviceToken,
			Topic:       w.topic,
			Payload:     payload,
		}

		if w.pusher == nil {
			slog.InfoContext(ctx, "SUCCESS (mock): push notification sent", slog.String("device_token", deviceToken))
			continue
		}

		res, err := w.pusher.Push(notification)
		switch {
		case err != nil:
			slog.ErrorContext(ctx, "FAILED to send notification", slog.String("error", err.Error()))
		case res.Sent():
			slog.InfoContext(ctx, "SUCCESS: notification sent", slog.String("apns_id", res.ApnsID))
		default:
			slog.WarnContext(ctx, "FAILED: notification not sent", slog.String("reason", res.Reason))
		}
	}
}

// NewAPNsClientFromEnv returns nil without error when credentials are missing, which puts
// push delivery in mock mode.
func NewAPNsClientFromEnv() (*apns2.Client, error) {
	authKeyPath := os.Getenv("APNS_AUTH_KEY_PATH")
	keyID := os.Getenv("APNS_KEY_ID")
	teamID := os.Getenv("APNS_TEAM_ID")

	if authKeyPath == "" || authKeyPath[0] == '#' || keyID == "" || teamID == "" {
		return nil, nil
	}

	authKey, err := token.AuthKeyFromFile(authKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{AuthKey: authKey, KeyID: keyID, TeamID: teamID})
	if os.Getenv("APNS_MODE") == "production" {
		return client.Production(), nil
	}
	return client.Development(), nil
}
