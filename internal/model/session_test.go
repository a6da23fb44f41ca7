package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"session-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSession_DisplayDatePrefersCanonicalString(t *testing.T) {
	s := model.Session{
		Date:    time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		DateStr: strPtr("2026-02-01"),
	}
	assert.Equal(t, "2026-02-01", s.DisplayDate())
	assert.Equal(t, "2026-02-01", s.DateKey())

	legacy := model.Session{Date: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2026-02-01T00:00:00Z", legacy.DisplayDate())
	assert.Equal(t, "2026-02-01", legacy.DateKey())
}

func TestSession_MarshalJSONUsesContractFieldNames(t *testing.T) {
	coach := "coach-1"
	s := model.Session{
		DateStr:     strPtr("2026-02-01"),
		Time:        "10:00",
		Duration:    60,
		Sport:       "tennis",
		State:       "RI",
		City:        "Providence",
		Cost:        45,
		CoachName:   "A",
		CoachEmail:  "a@x.com",
		CoachUserID: &coach,
		CreatedAt:   1700000000000,
	}

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "2026-02-01", decoded["date"])
	assert.Equal(t, "2026-02-01", decoded["dateStr"])
	assert.Equal(t, false, decoded["booked"])
	assert.Equal(t, "coach-1", decoded["coachUserId"])
	assert.Equal(t, float64(1700000000000), decoded["createdAt"])
	assert.NotContains(t, decoded, "playerName")
}

func TestSession_ApplyReservation(t *testing.T) {
	s := model.Session{}
	assert.Nil(t, s.Player())

	s.ApplyReservation(model.PlayerDetails{
		PlayerName:        "P",
		PlayerEmail:       "p@x.com",
		PlayerPhoneNumber: "5551234567",
		PlayerAge:         16,
		PlayerSkill:       "beginner",
	})

	require.True(t, s.Booked)
	p := s.Player()
	require.NotNil(t, p)
	assert.Equal(t, "P", p.PlayerName)
	assert.Equal(t, 16, p.PlayerAge)
}

func TestSession_OwnerKey(t *testing.T) {
	id := "uid-7"
	assert.Equal(t, "uid-7", (&model.Session{CoachUserID: &id, CoachEmail: "x@y.z"}).OwnerKey())
	assert.Equal(t, "email:a@x.com", (&model.Session{CoachEmail: " A@X.com "}).OwnerKey())
}

func TestSession_UnmarshalJSONKeepsLegacyDay(t *testing.T) {
	legacy := model.Session{Date: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), Time: "10:00", Duration: 60}

	b, err := json.Marshal(legacy)
	require.NoError(t, err)

	var decoded model.Session
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Nil(t, decoded.DateStr)
	assert.Equal(t, "2026-02-01", decoded.DateKey())

	interval, err := decoded.Interval()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, interval.Duration())
}
