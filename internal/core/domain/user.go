package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID   `json:"_id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	ProfileImage string      `json:"profileImg"`
	Organs       []uuid.UUID `json:"organs"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Owns reports whether pollID is in the user's owned-poll set.
func (u *User) Owns(pollID uuid.UUID) bool {
	for _, id := range u.Organs {
		if id == pollID {
			return true
		}
	}
	return false
}
