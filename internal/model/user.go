package model

import (
	"time"
)

const (
	RoleCoach  = "coach"
	RolePlayer = "player"
)

// UserProfile is created on first sign-in. ID is the identity provider subject.
type UserProfile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      *string   `db:"name" json:"name,omitempty"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func ValidRole(role string) bool {
	return role == RoleCoach || role == RolePlayer
}
