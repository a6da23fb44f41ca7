package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"session-service/internal/model"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	// Create inserts the profile unless one already exists for the id. It returns the
	// stored profile either way.
	Create(ctx context.Context, user *model.UserProfile) (*model.UserProfile, error)
	FindByID(ctx context.Context, id string) (*model.UserProfile, error)
	UpdateRole(ctx context.Context, id, role string) error
	RegisterDeviceToken(ctx context.Context, userID, token string) error
	GetDeviceTokens(ctx context.Context, userID string) ([]string, error)
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.UserProfile) (*model.UserProfile, error) {
	query := `
		INSERT INTO users (id, email, name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.Role); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, user.ID)
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id string) (*model.UserProfile, error) {
	var user model.UserProfile
	query := `SELECT id, email, name, role, created_at FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
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

func (r *postgresUserRepository) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	query := `
		INSERT INTO user_device_tokens (user_id, device_token)
		VALUES ($1, $2)
		ON CONFLICT (device_token) DO UPDATE SET user_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, userID, token)
	return err
}

func (r *postgresUserRepository) GetDeviceTokens(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	query := `SELECT device_token FROM user_device_tokens WHERE user_id = $1`
	err := r.db.SelectContext(ctx, &tokens, query, userID)
	return tokens, err
}

type memoryUserRepository struct {
	mu     sync.RWMutex
	users  map[string]model.UserProfile
	tokens map[string]string // device token -> user id
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		users:  make(map[string]model.UserProfile),
		tokens: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *model.UserProfile) (*model.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[user.ID]; ok {
		return &existing, nil
	}

	stored := *user
	stored.CreatedAt = time.Now().UTC()
	r.users[user.ID] = stored

	return &stored, nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id string) (*model.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memoryUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	r.users[id] = u
	return nil
}

func (r *memoryUserRepository) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = userID
	return nil
}

func (r *memoryUserRepository) GetDeviceTokens(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tokens []string
	for token, owner := range r.tokens {
		if owner == userID {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}
