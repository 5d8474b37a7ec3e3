package domain

import (
	"fmt"
	"strings"
)

// Preset is a named shortcut expanding to an ordered list of site IDs.
type Preset struct {
	Name  string
	Sites []string
}

// NewPreset constructs a Preset and validates its fields. The site list is copied.
func NewPreset(name string, sites []string) (Preset, error) {
	p := Preset{
		Name:  strings.TrimSpace(name),
		Sites: append([]string(nil), sites...),
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Validate checks the Preset for a lowercase name and a non-empty, duplicate-free site list.
func (p Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	if p.Name != strings.ToLower(p.Name) {
		return fmt.Errorf("preset name %q must be lowercase", p.Name)
	}
	if len(p.Sites) == 0 {
		return fmt.Errorf("preset %q must list at least one site", p.Name)
	}
	seen := make(map[string]struct{}, len(p.Sites))
	for _, id := range p.Sites {
		if id == "" {
			return fmt.Errorf("preset %q lists an empty site id", p.Name)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("preset %q lists site %q twice", p.Name, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
