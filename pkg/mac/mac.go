// Package mac normalizes device MAC addresses so uniqueness checks and
// lookups are case and separator insensitive.
package mac

import (
	"regexp"
	"strings"
)

var validMAC = regexp.MustCompile("^[0-9a-f]{12}$")

// Normalize strips surrounding whitespace and common separators, lowercases.
// Accepts AA:BB:CC:DD:EE:FF, aa-bb-cc-dd-ee-ff, aabb.ccdd.eeff, aabbccddeeff.
func Normalize(mac string) string {
	mac = strings.TrimSpace(mac)
	mac = strings.ReplaceAll(mac, ":", "")
	mac = strings.ReplaceAll(mac, "-", "")
	mac = strings.ReplaceAll(mac, ".", "")
	return strings.ToLower(mac)
}

func IsValid(mac string) bool {
	return validMAC.MatchString(Normalize(mac))
}

// Canonical returns the storage format: uppercase with colons, AA:BB:CC:DD:EE:FF.
func Canonical(mac string) string {
	normalized := Normalize(mac)
	if len(normalized) != 12 {
		return mac
	}
	var parts []string
	for i := 0; i < 12; i += 2 {
		parts = append(parts, normalized[i:i+2])
	}
	return strings.ToUpper(strings.Join(parts, ":"))
}
