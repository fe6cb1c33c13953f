// Package account implements registration, login and profile lookup for the
// clinic staff and patient accounts.
package account

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

var validRoles = map[string]bool{
	RoleAdmin: true, RoleDoctor: true, RolePatient: true,
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool { return validRoles[role] }

type Account struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
