package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"session-service/internal/model"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectSessionCreated = "session.created"
	SubjectSessionBooked  = "session.booked"
	SubjectSessionDeleted = "session.deleted"
)

// SessionEvent is the payload on every session.* subject. EventID lets consumers drop
// redeliveries.
type SessionEvent struct {
	EventID    uuid.UUID     `json:"event_id"`
	EventType  string        `json:"event_type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Session    model.Session `json:"session"`
}

type conn interface {
	Publish(subject string, data []byte) error
}

type NatsPublisher struct {
	conn conn
	now  func() time.Time
}

func NewNatsPublisher(natsURL string) (*NatsPublisher, *nats.Conn, error) {
	nc, err := nats.Connect(natsURL, nats.Name("session-service"))
	if err != nil {
		return nil, nil, err
	}

	return NewPublisher(nc), nc, nil
}

func NewPublisher(c conn) *NatsPublisher {
	return &NatsPublisher{conn: c, now: time.Now}
}

func (p *NatsPublisher) PublishSessionCreated(ctx context.Context, session *model.Session) error {
	return p.publish(ctx, SubjectSessionCreated, session)
}

func (p *NatsPublisher) PublishSessionBooked(ctx context.Context, session *model.Session) error {
	return p.publish(ctx, SubjectSessionBooked, session)
}

func (p *NatsPublisher) PublishSessionDeleted(ctx context.Context, session *model.Session) error {
	return p.publish(ctx, SubjectSessionDeleted, session)
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, session *model.Session) error {
	event := SessionEvent{
		EventID:    uuid.New(),
		EventType:  subject,
		OccurredAt: p.now().UTC(),
		Session:    *session,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "Error marshalling event JSON", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		slog.ErrorContext(ctx, "Error publishing to NATS", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	slog.InfoContext(ctx, "Published event to NATS",
		slog.String("subject", subject),
		slog.String("event_id", event.EventID.String()),
		slog.String("session_id", session.ID.String()),
	)

	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSessionCreated(context.Context, *model.Session) error { return nil }
func (NopPublisher) PublishSessionBooked(context.Context, *model.Session) error  { return nil }
func (NopPublisher) PublishSessionDeleted(context.Context, *model.Session) error { return nil }
