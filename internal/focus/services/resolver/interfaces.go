package resolver

import "github.com/albibenni/focus/internal/focus/domain"

// Catalog is the read-only view of the site and preset tables the resolver needs.
type Catalog interface {
	Site(id string) (domain.Site, bool)
	IsPreset(name string) bool
	Expand(name string) ([]domain.Site, error)
}
