package models

import "time"

// Admin is the site administrator credential.
type Admin struct {
	ID           string    `json:"id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
