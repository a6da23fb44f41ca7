package model

import (
	"encoding/json"
	"strings"
	"time"

	"session-service/internal/schedule"

	"github.com/google/uuid"
)

type Session struct {
	ID uuid.UUID `db:"id" json:"id"`

	// Date is the richer timestamp form of the session day. DateStr is the canonical
	// YYYY-MM-DD mirror; records written before it existed leave it nil.
	Date     time.Time `db:"session_date" json:"-"`
	DateStr  *string   `db:"date_str" json:"dateStr,omitempty"`
	Time     string    `db:"start_time" json:"time"`
	Duration int       `db:"duration" json:"duration"`

	Sport string  `db:"sport" json:"sport"`
	State string  `db:"state" json:"state"`
	City  string  `db:"city" json:"city"`
	Cost  float64 `db:"cost" json:"cost"`

	Booked bool `db:"booked" json:"booked"`

	CoachNote       string  `db:"coach_note" json:"coachNote"`
	CoachName       string  `db:"coach_name" json:"coachName"`
	CoachEmail      string  `db:"coach_email" json:"coachEmail"`
	CoachExperience string  `db:"coach_experience" json:"coachExperience"`
	CoachUserID     *string `db:"coach_user_id" json:"coachUserId,omitempty"`

	PlayerName         *string `db:"player_name" json:"playerName,omitempty"`
	PlayerEmail        *string `db:"player_email" json:"playerEmail,omitempty"`
	PlayerPhoneNumber  *string `db:"player_phone_number" json:"playerPhoneNumber,omitempty"`
	PlayerAge          *int    `db:"player_age" json:"playerAge,omitempty"`
	PlayerSkill        *string `db:"player_skill" json:"playerSkill,omitempty"`
	SpecificGoals      *string `db:"specific_goals" json:"specificGoals,omitempty"`
	AdditionalComments *string `db:"additional_comments" json:"additionalComments,omitempty"`
	PlayerUserID       *string `db:"player_user_id" json:"playerUserId,omitempty"`

	// CreatedAt is epoch milliseconds.
	CreatedAt int64 `db:"created_at" json:"createdAt"`
}

// PlayerDetails is what a player supplies when reserving a session.
type PlayerDetails struct {
	PlayerName         string  `json:"playerName" validate:"required"`
	PlayerEmail        string  `json:"playerEmail" validate:"required,email"`
	PlayerPhoneNumber  string  `json:"playerPhoneNumber" validate:"required,min=7"`
	PlayerAge          int     `json:"playerAge" validate:"required,gt=0"`
	PlayerSkill        string  `json:"playerSkill" validate:"required"`
	SpecificGoals      string  `json:"specificGoals" validate:"max=50"`
	AdditionalComments string  `json:"additionalComments" validate:"max=50"`
	PlayerUserID       *string `json:"playerUserId,omitempty"`
}

// DisplayDate prefers the canonical date string and falls back to the timestamp for
// legacy records.
func (s *Session) DisplayDate() string {
	if s.DateStr != nil && *s.DateStr != "" {
		return *s.DateStr
	}
	if s.Date.IsZero() {
		return ""
	}
	return s.Date.UTC().Format(time.RFC3339)
}

// DateKey is the calendar day used for filtering and conflict detection.
func (s *Session) DateKey() string {
	if s.DateStr != nil && *s.DateStr != "" {
		return *s.DateStr
	}
	if s.Date.IsZero() {
		return ""
	}
	return schedule.CanonicalDate(s.Date)
}

func (s *Session) Interval() (schedule.Interval, error) {
	return schedule.NewInterval(s.DateKey(), s.Time, s.Duration)
}

// OwnerKey identifies the owning coach: the identity subject when known, otherwise the
// coach email.
func (s *Session) OwnerKey() string {
	if s.CoachUserID != nil && *s.CoachUserID != "" {
		return *s.CoachUserID
	}
	return "email:" + strings.ToLower(strings.TrimSpace(s.CoachEmail))
}

func (s *Session) OwnedBy(userID string) bool {
	return s.CoachUserID != nil && *s.CoachUserID == userID
}

// Player returns the recorded booking, or nil while the session is open.
func (s *Session) Player() *PlayerDetails {
	if !s.Booked || s.PlayerName == nil {
		return nil
	}

	p := &PlayerDetails{
		PlayerName:   *s.PlayerName,
		PlayerUserID: s.PlayerUserID,
	}
	if s.PlayerEmail != nil {
		p.PlayerEmail = *s.PlayerEmail
	}
	if s.PlayerPhoneNumber != nil {
		p.PlayerPhoneNumber = *s.PlayerPhoneNumber
	}
	if s.PlayerAge != nil {
		p.PlayerAge = *s.PlayerAge
	}
	if s.PlayerSkill != nil {
		p.PlayerSkill = *s.PlayerSkill
	}
	if s.SpecificGoals != nil {
		p.SpecificGoals = *s.SpecificGoals
	}
	if s.AdditionalComments != nil {
		p.AdditionalComments = *s.AdditionalComments
	}
	return p
}

// ApplyReservation records the player on the session and marks it booked.
func (s *Session) ApplyReservation(p PlayerDetails) {
	s.PlayerName = &p.PlayerName
	s.PlayerEmail = &p.PlayerEmail
	s.PlayerPhoneNumber = &p.PlayerPhoneNumber
	s.PlayerAge = &p.PlayerAge
	s.PlayerSkill = &p.PlayerSkill
	s.SpecificGoals = &p.SpecificGoals
	s.AdditionalComments = &p.AdditionalComments
	s.PlayerUserID = p.PlayerUserID
	s.Booked = true
}

func (s Session) MarshalJSON() ([]byte, error) {
	type plain Session
	return json.Marshal(struct {
		plain
		Date string `json:"date"`
	}{
		plain: plain(s),
		Date:  s.DisplayDate(),
	})
}

// UnmarshalJSON restores the timestamp from the serialized date so that records without
// a dateStr keep their calendar day.
func (s *Session) UnmarshalJSON(data []byte) error {
	type plain Session
	var aux struct {
		plain
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*s = Session(aux.plain)
	if aux.Date == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, aux.Date); err == nil {
		s.Date = t.UTC()
	} else if t, err := schedule.ParseDate(aux.Date); err == nil {
		s.Date = t
	}
	return nil
}
