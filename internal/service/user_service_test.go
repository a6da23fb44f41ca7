package service_test

import (
	"context"
	"testing"

	"session-service/internal/model"
	"session-service/internal/repository"
	"session-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfile_FirstRoleSticks(t *testing.T) {
	svc := service.NewUserService(repository.NewMemoryUserRepository())
	ctx := context.Background()

	p, err := svc.EnsureProfile(ctx, service.EnsureProfileInput{ID: "uid-1", Email: "a@x.com", Role: model.RoleCoach})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCoach, p.Role)

	p, err = svc.EnsureProfile(ctx, service.EnsureProfileInput{ID: "uid-1", Email: "a@x.com", Role: model.RolePlayer})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCoach, p.Role)
}

func TestEnsureProfile_RejectsUnknownRole(t *testing.T) {
	svc := service.NewUserService(repository.NewMemoryUserRepository())

	_, err := svc.EnsureProfile(context.Background(), service.EnsureProfileInput{ID: "uid-1", Email: "a@x.com", Role: "admin"})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestReassignRole(t *testing.T) {
	svc := service.NewUserService(repository.NewMemoryUserRepository())
	ctx := context.Background()

	require.ErrorIs(t, svc.ReassignRole(ctx, "missing", model.RoleCoach), service.ErrProfileNotFound)

	_, err := svc.EnsureProfile(ctx, service.EnsureProfileInput{ID: "uid-1", Email: "a@x.com", Role: model.RolePlayer})
	require.NoError(t, err)

	require.ErrorIs(t, svc.ReassignRole(ctx, "uid-1", "admin"), service.ErrValidation)
	require.NoError(t, svc.ReassignRole(ctx, "uid-1", model.RoleCoach))

	p, err := svc.GetProfile(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCoach, p.Role)
}

func TestGetProfile_Missing(t *testing.T) {
	svc := service.NewUserService(repository.NewMemoryUserRepository())

	_, err := svc.GetProfile(context.Background(), "nobody")
	require.ErrorIs(t, err, service.ErrProfileNotFound)
}

func TestRegisterDeviceToken(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := service.NewUserService(repo)
	ctx := context.Background()

	require.ErrorIs(t, svc.RegisterDeviceToken(ctx, "uid-1", ""), service.ErrValidation)
	require.NoError(t, svc.RegisterDeviceToken(ctx, "uid-1", "tok"))

	tokens, err := repo.GetDeviceTokens(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok"}, tokens)
}
