package utils

import "github.com/google/uuid"

// NewID returns a random uuid string for food states and logs.
func NewID() string {
	return uuid.NewString()
}
