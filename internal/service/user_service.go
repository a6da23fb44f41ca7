package service

import (
	"context"
	"errors"
	"fmt"

	"session-service/internal/model"
	"session-service/internal/repository"

	"github.com/go-playground/validator/v10"
)

type EnsureProfileInput struct {
	ID    string  `json:"-" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Name  *string `json:"name,omitempty"`
	Role  string  `json:"role" validate:"required,oneof=coach player"`
}

type UserService interface {
	// EnsureProfile creates the profile on first sign-in. An existing profile is returned
	// unchanged, so the role chosen first sticks.
	EnsureProfile(ctx context.Context, input EnsureProfileInput) (*model.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	ReassignRole(ctx context.Context, userID, role string) error
	RegisterDeviceToken(ctx context.Context, userID, token string) error
}

type userService struct {
	userRepo repository.UserRepository
	validate *validator.Validate
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo, validate: newValidator()}
}

func (s *userService) EnsureProfile(ctx context.Context, input EnsureProfileInput) (*model.UserProfile, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	profile, err := s.userRepo.Create(ctx, &model.UserProfile{
		ID:    input.ID,
		Email: input.Email,
		Name:  input.Name,
		Role:  input.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	return profile, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (s *userService) ReassignRole(ctx context.Context, userID, role string) error {
	if !model.ValidRole(role) {
		return invalidField("role", "must be one of: coach player")
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	return nil
}

func (s *userService) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	if token == "" {
		return invalidField("device_token", "is required")
	}
	return s.userRepo.RegisterDeviceToken(ctx, userID, token)
}
