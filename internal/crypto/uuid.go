package crypto

import (
	"github.com/google/uuid"
)

// NewUUIDv7 generates a time-ordered UUID v7. Work IDs use it so that
// ordering by ID is ordering by creation time.
func NewUUIDv7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
