package token

import (
	"encoding/hex"
	"testing"
)

func TestNewDeviceToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := NewDeviceToken()
		if len(tok) != 64 {
			t.Fatalf("device token length = %d, want 64", len(tok))
		}
		if _, err := hex.DecodeString(tok); err != nil {
			t.Fatalf("device token is not hex: %q", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true
	}
}

func TestNewSessionToken(t *testing.T) {
	tok := NewSessionToken()
	if len(tok) != 40 {
		t.Fatalf("session token length = %d, want 40", len(tok))
	}
	if _, err := hex.DecodeString(tok); err != nil {
		t.Fatalf("session token is not hex: %q", tok)
	}
}
