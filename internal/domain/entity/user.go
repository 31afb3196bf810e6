package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a requester account. Users create requests and chat with
// the worker who accepted them.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`    // Natural key for lookup and login.
	PasswordHash string    `json:"password,omitempty"` // bcrypt hash, never the plaintext.
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Worker represents a service provider account.
type Worker struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	PasswordHash   string     `json:"password,omitempty"`
	Role           WorkerRole `json:"role"`
	ProfilePicture string     `json:"profilePicture,omitempty"` // Reference (path or URL), optional.
	CreatedAt      time.Time  `json:"createdAt"`
}
