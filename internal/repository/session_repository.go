package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"session-service/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// SessionFilter holds exact-match discovery constraints. Nil fields are ignored.
type SessionFilter struct {
	Sport *string
	Date  *string
	State *string
	City  *string
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) (*model.Session, error)
	FindByID(ctx context.Context, sessionID uuid.UUID) (*model.Session, error)
	Find(ctx context.Context, filter SessionFilter) ([]model.Session, error)
	ListByOwner(ctx context.Context, ownerKey string, date *string) ([]model.Session, error)
	ListByPlayer(ctx context.Context, playerUserID string) ([]model.Session, error)
	// Reserve records the player and flips booked from false to true in one step.
	// It returns ErrPreconditionFailed when no open session with that id exists.
	Reserve(ctx context.Context, sessionID uuid.UUID, player model.PlayerDetails) (*model.Session, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

const sessionColumns = `id, session_date, date_str, start_time, duration, sport, state, city, cost, booked,
		coach_note, coach_name, coach_email, coach_experience, coach_user_id,
		player_name, player_email, player_phone_number, player_age, player_skill,
		specific_goals, additional_comments, player_user_id, created_at`

type postgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, session *model.Session) (*model.Session, error) {
	query := `
		INSERT INTO sessions (session_date, date_str, start_time, duration, sport, state, city, cost, booked,
			coach_note, coach_name, coach_email, coach_experience, coach_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	row := r.db.QueryRowxContext(ctx, query,
		session.Date, session.DateStr, session.Time, session.Duration, session.Sport, session.State, session.City, session.Cost,
		session.CoachNote, session.CoachName, session.CoachEmail, session.CoachExperience, session.CoachUserID, session.CreatedAt,
	)
	if err := row.Scan(&session.ID); err != nil {
		return nil, err
	}

	session.Booked = false

	return session, nil
}

func (r *postgresSessionRepository) FindByID(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	var session model.Session
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	err := r.db.GetContext(ctx, &session, query, sessionID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) Find(ctx context.Context, filter SessionFilter) ([]model.Session, error) {
	var clauses []string
	var args []interface{}
	argId := 1

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, argId))
		args = append(args, *value)
		argId++
	}
	add("sport", filter.Sport)
	add("state", filter.State)
	add("city", filter.City)
	add("date_str", filter.Date)

	query := `SELECT ` + sessionColumns + ` FROM sessions`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY session_date ASC, start_time ASC"

	sessions := []model.Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *postgresSessionRepository) ListByOwner(ctx context.Context, ownerKey string, date *string) ([]model.Session, error) {
	var query string
	var args []interface{}

	if email, ok := strings.CutPrefix(ownerKey, "email:"); ok {
		query = `SELECT ` + sessionColumns + ` FROM sessions WHERE coach_user_id IS NULL AND lower(coach_email) = $1`
		args = append(args, email)
	} else {
		query = `SELECT ` + sessionColumns + ` FROM sessions WHERE coach_user_id = $1`
		args = append(args, ownerKey)
	}

	if date != nil {
		query += ` AND date_str = $2`
		args = append(args, *date)
	}
	query += " ORDER BY session_date ASC, start_time ASC"

	sessions := []model.Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *postgresSessionRepository) ListByPlayer(ctx context.Context, playerUserID string) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE player_user_id = $1 ORDER BY session_date DESC, start_time DESC`

	sessions := []model.Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, playerUserID); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *postgresSessionRepository) Reserve(ctx context.Context, sessionID uuid.UUID, player model.PlayerDetails) (*model.Session, error) {
	query := `
		UPDATE sessions
		SET player_name = $2, player_email = $3, player_phone_number = $4, player_age = $5, player_skill = $6,
			specific_goals = $7, additional_comments = $8, player_user_id = $9, booked = true
		WHERE id = $1 AND booked = false
		RETURNING ` + sessionColumns

	var session model.Session
	err := r.db.GetContext(ctx, &session, query, sessionID,
		player.PlayerName, player.PlayerEmail, player.PlayerPhoneNumber, player.PlayerAge, player.PlayerSkill,
		player.SpecificGoals, player.AdditionalComments, player.PlayerUserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreconditionFailed
		}
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}
