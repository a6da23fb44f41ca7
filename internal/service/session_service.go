package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"session-service/internal/model"
	"session-service/internal/repository"
	"session-service/internal/schedule"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Notifier receives session lifecycle events once they are durable. Delivery is best effort.
type Notifier interface {
	PublishSessionCreated(ctx context.Context, session *model.Session) error
	PublishSessionBooked(ctx context.Context, session *model.Session) error
	PublishSessionDeleted(ctx context.Context, session *model.Session) error
}

// CreateSessionInput is what a coach submits when publishing a slot.
type CreateSessionInput struct {
	Date            string  `json:"date" validate:"required"`
	Time            string  `json:"time" validate:"required"`
	Duration        int     `json:"duration" validate:"required,gt=0"`
	Sport           string  `json:"sport" validate:"required"`
	State           string  `json:"state" validate:"required,statecode"`
	City            string  `json:"city" validate:"required"`
	Cost            float64 `json:"cost" validate:"required,gt=0"`
	CoachNote       string  `json:"coachNote" validate:"max=50"`
	CoachName       string  `json:"coachName" validate:"required"`
	CoachEmail      string  `json:"coachEmail" validate:"required,email"`
	CoachExperience string  `json:"coachExperience" validate:"required"`
	CoachUserID     *string `json:"-"`
}

type SessionService interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*model.Session, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*model.Session, error)
	FindSessions(ctx context.Context, filter repository.SessionFilter) ([]model.Session, error)
	ReserveSession(ctx context.Context, sessionID uuid.UUID, player model.PlayerDetails) (*model.Session, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID, coachUserID string) error
	ListCoachSessions(ctx context.Context, coachUserID string) ([]model.Session, error)
	ListPlayerBookings(ctx context.Context, playerUserID string) ([]model.Session, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	notifier    Notifier
	validate    *validator.Validate
	now         func() time.Time
}

func NewSessionService(repo repository.SessionRepository, notifier Notifier) SessionService {
	return &sessionService{
		sessionRepo: repo,
		notifier:    notifier,
		validate:    newValidator(),
		now:         time.Now,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, input CreateSessionInput) (*model.Session, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	day, err := parseSessionDate(input.Date)
	if err != nil {
		return nil, invalidField("date", "must be YYYY-MM-DD or an RFC 3339 timestamp")
	}
	dateStr := schedule.CanonicalDate(day)

	interval, err := schedule.NewInterval(dateStr, input.Time, input.Duration)
	if err != nil {
		return nil, invalidField("time", "must be HH:MM in 24-hour form")
	}

	session := &model.Session{
		Date:            day,
		DateStr:         &dateStr,
		Time:            input.Time,
		Duration:        input.Duration,
		Sport:           input.Sport,
		State:           input.State,
		City:            input.City,
		Cost:            input.Cost,
		CoachNote:       input.CoachNote,
		CoachName:       input.CoachName,
		CoachEmail:      input.CoachEmail,
		CoachExperience: input.CoachExperience,
		CoachUserID:     input.CoachUserID,
		CreatedAt:       s.now().UnixMilli(),
	}

	ownerKey := session.OwnerKey()
	sameDay, err := s.sessionRepo.ListByOwner(ctx, ownerKey, &dateStr)
	if err != nil {
		return nil, fmt.Errorf("list sessions for conflict check: %w", err)
	}

	if conflicting := DetectConflict(interval, dateStr, ownerKey, sameDay); conflicting != nil {
		sessionConflictsTotal.Inc()
		return nil, &SchedulingConflictError{Conflicting: conflicting}
	}

	created, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sessionsCreatedTotal.Inc()

	if err := s.notifier.PublishSessionCreated(ctx, created); err != nil {
		slog.WarnContext(ctx, "Failed to publish session created event", slog.String("session_id", created.ID.String()), slog.String("error", err.Error()))
	}

	return created, nil
}

func (s *sessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) FindSessions(ctx context.Context, filter repository.SessionFilter) ([]model.Session, error) {
	if filter.Date != nil && !schedule.IsDate(*filter.Date) {
		return nil, invalidField("date", "must be YYYY-MM-DD")
	}

	return s.sessionRepo.Find(ctx, filter)
}

func (s *sessionService) ReserveSession(ctx context.Context, sessionID uuid.UUID, player model.PlayerDetails) (*model.Session, error) {
	if err := validateStruct(s.validate, player); err != nil {
		sessionReservationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		sessionReservationsTotal.WithLabelValues(outcomeError).Inc()
		return nil, err
	}
	if session == nil {
		sessionReservationsTotal.WithLabelValues(outcomeNotFound).Inc()
		return nil, ErrSessionNotFound
	}
	if session.Booked {
		sessionReservationsTotal.WithLabelValues(outcomeTaken).Inc()
		return nil, ErrAlreadyReserved
	}

	booked, err := s.sessionRepo.Reserve(ctx, sessionID, player)
	if err != nil {
		if !errors.Is(err, repository.ErrPreconditionFailed) {
			sessionReservationsTotal.WithLabelValues(outcomeError).Inc()
			return nil, fmt.Errorf("reserve session: %w", err)
		}
		return nil, s.explainLostRace(ctx, sessionID)
	}
	sessionReservationsTotal.WithLabelValues(outcomeBooked).Inc()

	if err := s.notifier.PublishSessionBooked(ctx, booked); err != nil {
		slog.WarnContext(ctx, "Failed to publish session booked event", slog.String("session_id", booked.ID.String()), slog.String("error", err.Error()))
	}

	return booked, nil
}

// explainLostRace re-reads a session whose conditional update did not apply.
func (s *sessionService) explainLostRace(ctx context.Context, sessionID uuid.UUID) error {
	current, err := s.sessionRepo.FindByID(ctx, sessionID)
	switch {
	case err != nil:
		sessionReservationsTotal.WithLabelValues(outcomeError).Inc()
		return fmt.Errorf("re-read session after failed reservation: %w", err)
	case current == nil:
		sessionReservationsTotal.WithLabelValues(outcomeNotFound).Inc()
		return ErrSessionNotFound
	case current.Booked:
		sessionReservationsTotal.WithLabelValues(outcomeTaken).Inc()
		return ErrAlreadyReserved
	default:
		sessionReservationsTotal.WithLabelValues(outcomeConcurrent).Inc()
		return ErrConcurrentModification
	}
}

func (s *sessionService) DeleteSession(ctx context.Context, sessionID uuid.UUID, coachUserID string) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if !session.OwnedBy(coachUserID) {
		return ErrForbidden
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}

	if err := s.notifier.PublishSessionDeleted(ctx, session); err != nil {
		slog.WarnContext(ctx, "Failed to publish session deleted event", slog.String("session_id", session.ID.String()), slog.String("error", err.Error()))
	}

	return nil
}

func (s *sessionService) ListCoachSessions(ctx context.Context, coachUserID string) ([]model.Session, error) {
	return s.sessionRepo.ListByOwner(ctx, coachUserID, nil)
}

func (s *sessionService) ListPlayerBookings(ctx context.Context, playerUserID string) ([]model.Session, error) {
	return s.sessionRepo.ListByPlayer(ctx, playerUserID)
}

// parseSessionDate accepts a bare calendar day or a full timestamp, keeping only its UTC day.
func parseSessionDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if schedule.IsDate(raw) {
		return schedule.ParseDate(raw)
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", schedule.ErrMalformedTemporalInput, err)
	}
	return schedule.ParseDate(schedule.CanonicalDate(t))
}
