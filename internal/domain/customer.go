package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer owns accounts. The engine never inspects PasswordHash; credential
// checks belong to the auth layer, which hands the engine a verified customer id.
type Customer struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
