package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomString returns a URL-safe random string built from the given
// number of random bytes.
func RandomString(bytes int) string {
	b := make([]byte, bytes)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// RandomPassword generates a replacement password for the forgot-password
// flow. 9 bytes encode to 12 characters.
func RandomPassword() string {
	return RandomString(9)
}
