package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"session-service/internal/api"
	"session-service/internal/events"
	"session-service/internal/model"
	"session-service/internal/repository"
	"session-service/internal/service"

	"github.com/gofiber/fiber/v2"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type testApp struct {
	app   *fiber.App
	users service.UserService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("INTERNAL_SHARED_SECRET", "internal")

	users := service.NewUserService(repository.NewMemoryUserRepository())
	sessions := service.NewSessionService(repository.NewMemorySessionRepository(), events.NopPublisher{})

	app := fiber.New()
	api.SetupRoutes(app, sessions, users, api.RouteConfig{RateLimitMax: 100, RateLimitExpiration: time.Minute})

	return &testApp{app: app, users: users}
}

func (a *testApp) signIn(t *testing.T, sub, email, role string) string {
	t.Helper()
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = a.users.EnsureProfile(context.Background(), service.EnsureProfileInput{ID: sub, Email: email, Role: role})
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded, raw
}

func sessionBody(clock string) fiber.Map {
	return fiber.Map{
		"date":            "2026-02-01",
		"time":            clock,
		"duration":        60,
		"sport":           "tennis",
		"state":           "RI",
		"city":            "Providence",
		"cost":            45,
		"coachNote":       "bring water",
		"coachName":       "Alex",
		"coachEmail":      "alex@example.com",
		"coachExperience": "10 years",
	}
}

func bookingBody(age int) fiber.Map {
	return fiber.Map{
		"playerName":         "Sam",
		"playerEmail":        "sam@example.com",
		"playerPhoneNumber":  "5551234567",
		"playerAge":          age,
		"playerSkill":        "beginner",
		"specificGoals":      "footwork",
		"additionalComments": "",
	}
}

func TestSessionRoutes_CreateBookAndFind(t *testing.T) {
	a := newTestApp(t)
	coach := a.signIn(t, "coach-1", "alex@example.com", model.RoleCoach)
	player := a.signIn(t, "player-1", "sam@example.com", model.RolePlayer)

	status, created, _ := a.do(t, http.MethodPost, "/v1/sessions", coach, sessionBody("10:00"))
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "2026-02-01", created["date"])
	assert.Equal(t, "2026-02-01", created["dateStr"])
	assert.Equal(t, "coach-1", created["coachUserId"])
	assert.Equal(t, false, created["booked"])
	id := created["id"].(string)

	status, conflict, _ := a.do(t, http.MethodPost, "/v1/sessions", coach, sessionBody("10:30"))
	require.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, id, conflict["conflictingSession"].(map[string]interface{})["id"])

	status, body, _ := a.do(t, http.MethodPost, "/v1/sessions/"+id+"/book", player, bookingBody(-1))
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["details"], "playerAge")

	status, _, _ = a.do(t, http.MethodPost, "/v1/sessions/"+id+"/book", player, bookingBody(16))
	require.Equal(t, fiber.StatusOK, status)

	status, body, _ = a.do(t, http.MethodPost, "/v1/sessions/"+id+"/book", player, bookingBody(16))
	require.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Already booked", body["error"])

	status, _, raw := a.do(t, http.MethodGet, "/v1/sessions?date=2026-02-01&sport=tennis", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, true, list[0]["booked"])
	assert.Equal(t, "Sam", list[0]["playerName"])
	assert.Equal(t, "player-1", list[0]["playerUserId"])

	status, _, raw = a.do(t, http.MethodGet, "/v1/users/me/sessions", player, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list, 1)
}

func TestSessionRoutes_Authorization(t *testing.T) {
	a := newTestApp(t)
	coach := a.signIn(t, "coach-1", "alex@example.com", model.RoleCoach)
	otherCoach := a.signIn(t, "coach-2", "jo@example.com", model.RoleCoach)
	player := a.signIn(t, "player-1", "sam@example.com", model.RolePlayer)

	status, _, _ := a.do(t, http.MethodPost, "/v1/sessions", "", sessionBody("10:00"))
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, _ = a.do(t, http.MethodPost, "/v1/sessions", player, sessionBody("10:00"))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, created, _ := a.do(t, http.MethodPost, "/v1/sessions", coach, sessionBody("10:00"))
	require.Equal(t, fiber.StatusCreated, status)
	id := created["id"].(string)

	status, _, _ = a.do(t, http.MethodPost, "/v1/sessions/"+id+"/book", coach, bookingBody(16))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = a.do(t, http.MethodDelete, "/v1/sessions/"+id, otherCoach, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = a.do(t, http.MethodDelete, "/v1/sessions/"+id, coach, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _, _ = a.do(t, http.MethodGet, "/v1/sessions/"+id, "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestSessionRoutes_BadInput(t *testing.T) {
	a := newTestApp(t)

	status, _, _ := a.do(t, http.MethodGet, "/v1/sessions?date=02-01-2026", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = a.do(t, http.MethodGet, "/v1/sessions/not-a-uuid", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	coach := a.signIn(t, "coach-1", "alex@example.com", model.RoleCoach)
	body := sessionBody("10:00")
	body["state"] = "ZZ"
	status, decoded, _ := a.do(t, http.MethodPost, "/v1/sessions", coach, body)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, decoded["details"], "state")
}

func TestUserRoutes(t *testing.T) {
	a := newTestApp(t)

	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"sub":   "new-user",
		"email": "new@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	status, _, _ := a.do(t, http.MethodGet, "/v1/users/me", tok, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, profile, _ := a.do(t, http.MethodPost, "/v1/users/me", tok, fiber.Map{"role": "player"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "player", profile["role"])
	assert.Equal(t, "new@example.com", profile["email"])

	status, _, _ = a.do(t, http.MethodPost, "/v1/users/me/device-token", tok, fiber.Map{"device_token": "abc"})
	assert.Equal(t, fiber.StatusOK, status)

	req := httptest.NewRequest(http.MethodPut, "/v1/internal/users/new-user/role", bytes.NewReader([]byte(`{"role":"coach"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPut, "/v1/internal/users/new-user/role", bytes.NewReader([]byte(`{"role":"coach"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Secret", "internal")
	resp, err = a.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	status, profile, _ = a.do(t, http.MethodGet, "/v1/users/me", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "coach", profile["role"])
}

func TestBookingLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/book", api.BookingLimiter(2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/book", nil), -1)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, codes)
}
