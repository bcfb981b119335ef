package models

import (
	"time"

	"github.com/google/uuid"
)

// Sign-in providers. Password accounts use ProviderEmail and carry a
// bcrypt hash; OAuth accounts carry a (provider, provider_id) pair instead.
const (
	ProviderEmail = "email"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"`
	Provider     string    `json:"provider"`
	ProviderID   *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
