package utils

import "github.com/google/uuid"

// GenerateUUID returns a random v4 UUID string.
func GenerateUUID() string {
	return uuid.NewString()
}

// GenerateShortID returns the first eight hex digits of a fresh UUID.
func GenerateShortID() string {
	return uuid.NewString()[:8]
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
