// Package token generates random credentials for devices and user sessions.
package token

import (
	"crypto/rand"
	"encoding/hex"
)

// DeviceTokenLen is the character length of a device auth token.
const DeviceTokenLen = 64

// New returns a random hex string of n characters, n must be even.
func New(n int) string {
	buf := make([]byte, n/2)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return hex.EncodeToString(buf)
}

// NewDeviceToken returns a fresh 64 character device auth token.
// Rotation always generates a new value, tokens are never reused.
func NewDeviceToken() string {
	return New(DeviceTokenLen)
}

// NewSessionToken returns a browser/API session token.
func NewSessionToken() string {
	return New(40)
}
