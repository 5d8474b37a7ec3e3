package utils

import (
	"strings"

	"golang.org/x/net/idna"
)

// CanonicalHostName returns a host name in the form written to the host file:
// trimmed, lowercased, without trailing dots, and converted to its IDNA
// ASCII form when it carries non-ASCII labels.
func CanonicalHostName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	if name == "" {
		return "", nil
	}
	return idna.Lookup.ToASCII(name)
}

// CanonicalKey normalizes a catalog key or user token: trimmed and lowercased.
func CanonicalKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
