package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // Never expose password hash in JSON
	Gender          *string   `json:"gender,omitempty"`
	Address         *string   `json:"address,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	PhotoURL        *string   `json:"fotoProfile,omitempty"`
	PhotoKey        *string   `json:"-"`
	DonationHistory string    `json:"donationHistory"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewUser holds the fields accepted at registration.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Gender       string
	Address      string
}

// ProfileUpdate holds the mutable profile fields. Nil pointers are left untouched.
type ProfileUpdate struct {
	Location  string
	Latitude  *float64
	Longitude *float64
	PhotoURL  *string
	PhotoKey  *string
}
