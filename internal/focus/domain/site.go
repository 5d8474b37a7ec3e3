package domain

import (
	"fmt"
	"strings"
)

// Site is one blockable website.
//
// Notes:
// - ID is the lowercase token a user types ("youtube").
// - Host is the literal name written to the host file ("www.youtube.com"),
//   canonical and without a trailing dot (normalization handled by the catalog).
type Site struct {
	ID   string
	Host string
}

// NewSite constructs a Site and validates its fields.
func NewSite(id, host string) (Site, error) {
	s := Site{
		ID:   strings.TrimSpace(id),
		Host: strings.TrimSpace(host),
	}
	if err := s.Validate(); err != nil {
		return Site{}, err
	}
	return s, nil
}

// Validate checks the Site for required fields.
func (s Site) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("site id must not be empty")
	}
	if s.ID != strings.ToLower(s.ID) {
		return fmt.Errorf("site id %q must be lowercase", s.ID)
	}
	if s.Host == "" {
		return fmt.Errorf("site %q host must not be empty", s.ID)
	}
	if strings.ContainsAny(s.Host, " \t\r\n#") {
		return fmt.Errorf("site %q host %q contains whitespace or comment marker", s.ID, s.Host)
	}
	return nil
}
