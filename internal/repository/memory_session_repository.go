package repository

import (
	"context"
	"sync"

	"session-service/internal/model"

	"github.com/google/uuid"
)

// memorySessionRepository keeps sessions in process. All mutations run under one lock,
// which makes Reserve a real compare-and-swap on the booked flag.
type memorySessionRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*model.Session
	order []uuid.UUID
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		byID: make(map[uuid.UUID]*model.Session),
	}
}

func (r *memorySessionRepository) Create(ctx context.Context, session *model.Session) (*model.Session, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	for r.byID[id] != nil {
		id = uuid.New()
	}

	session.ID = id
	session.Booked = false

	stored := *session
	r.byID[id] = &stored
	r.order = append(r.order, id)

	return session, nil
}

func (r *memorySessionRepository) FindByID(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[sessionID]
	if !ok {
		return nil, nil
	}

	out := *s
	return &out, nil
}

func (r *memorySessionRepository) Find(ctx context.Context, filter SessionFilter) ([]model.Session, error) {
	return r.collect(ctx, func(s *model.Session) bool {
		return matches(filter.Sport, s.Sport) &&
			matches(filter.State, s.State) &&
			matches(filter.City, s.City) &&
			(filter.Date == nil || (s.DateStr != nil && *s.DateStr == *filter.Date))
	})
}

func (r *memorySessionRepository) ListByOwner(ctx context.Context, ownerKey string, date *string) ([]model.Session, error) {
	return r.collect(ctx, func(s *model.Session) bool {
		return s.OwnerKey() == ownerKey && (date == nil || (s.DateStr != nil && *s.DateStr == *date))
	})
}

func (r *memorySessionRepository) ListByPlayer(ctx context.Context, playerUserID string) ([]model.Session, error) {
	return r.collect(ctx, func(s *model.Session) bool {
		return s.PlayerUserID != nil && *s.PlayerUserID == playerUserID
	})
}

func (r *memorySessionRepository) Reserve(ctx context.Context, sessionID uuid.UUID, player model.PlayerDetails) (*model.Session, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[sessionID]
	if !ok || s.Booked {
		return nil, ErrPreconditionFailed
	}

	updated := *s
	updated.ApplyReservation(player)
	r.byID[sessionID] = &updated

	out := updated
	return &out, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[sessionID]; !ok {
		return ErrNotFound
	}

	delete(r.byID, sessionID)
	for i, id := range r.order {
		if id == sessionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func (r *memorySessionRepository) collect(ctx context.Context, keep func(*model.Session) bool) ([]model.Session, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Session{}
	for _, id := range r.order {
		s := r.byID[id]
		if keep(s) {
			out = append(out, *s)
		}
	}

	return out, nil
}

func matches(want *string, got string) bool {
	return want == nil || *want == got
}
