package mailer

import (
	"fmt"
	"strings"

	"session-service/internal/model"
)

// BookingEmail tells a coach who booked their session and how to reach them.
func BookingEmail(s model.Session) Message {
	lines := []string{
		fmt.Sprintf("Hi %s,", s.CoachName),
		"",
		"A player booked your session:",
		"Sport: " + s.Sport,
	}
	if date := s.DateKey(); date != "" {
		lines = append(lines, "Date: "+date)
	}
	if s.Time != "" {
		lines = append(lines, "Time: "+s.Time)
	}
	lines = append(lines, fmt.Sprintf("Location: %s, %s", s.City, s.State))

	if p := s.Player(); p != nil {
		lines = append(lines,
			"",
			"Player details:",
			"Name: "+p.PlayerName,
			"Email: "+p.PlayerEmail,
			"Phone: "+p.PlayerPhoneNumber,
			fmt.Sprintf("Age: %d", p.PlayerAge),
			"Skill: "+p.PlayerSkill,
			"Goals: "+p.SpecificGoals,
			"Comments: "+p.AdditionalComments,
		)
	}

	lines = append(lines, "", "Please reach out to the player to coordinate before the session.")

	return Message{
		To:      s.CoachEmail,
		Subject: fmt.Sprintf("New booking for %s (%s, %s)", s.Sport, s.City, s.State),
		Body:    strings.Join(lines, "\n"),
	}
}
