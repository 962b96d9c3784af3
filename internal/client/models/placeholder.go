package models

import (
	"strings"

	"github.com/google/uuid"
)

// PlaceholderPrefix marks ids generated on the device before the server
// assigned a permanent one.
const PlaceholderPrefix = "temp_"

// NewPlaceholderID returns a fresh client-side id.
func NewPlaceholderID() string {
	return PlaceholderPrefix + uuid.NewString()
}

// IsPlaceholder reports whether id was generated locally.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}
