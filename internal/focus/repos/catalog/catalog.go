// Package catalog holds the fixed site and preset lookup tables. The tables
// are compiled into the binary as YAML, parsed once at start-up and never
// modified afterwards.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"

	"github.com/albibenni/focus/internal/focus/common/utils"
	"github.com/albibenni/focus/internal/focus/domain"
)

//go:embed catalog.yaml
var builtin []byte

// document mirrors catalog.yaml.
type document struct {
	Sites   []siteDoc   `koanf:"sites" validate:"required,min=1,dive"`
	Presets []presetDoc `koanf:"presets" validate:"dive"`
}

type siteDoc struct {
	ID   string `koanf:"id" validate:"required,lowercase,alphanum"`
	Host string `koanf:"host" validate:"required,hostname_rfc1123"`
}

type presetDoc struct {
	Name  string   `koanf:"name" validate:"required,lowercase,alphanum"`
	Sites []string `koanf:"sites" validate:"required,min=1,dive,required"`
}

// Catalog is an immutable pair of lookup tables keyed by lowercase identifier.
type Catalog struct {
	sites       map[string]domain.Site
	siteOrder   []string
	presets     map[string]domain.Preset
	presetOrder []string
}

// Default parses the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(builtin)
}

// Parse loads a catalog from YAML, validates it and canonicalizes every host.
func Parse(data []byte) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error parsing catalog: %w", err)
	}

	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("error unmarshalling catalog: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&doc); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}

	sites := make([]domain.Site, 0, len(doc.Sites))
	for _, sd := range doc.Sites {
		host, err := utils.CanonicalHostName(sd.Host)
		if err != nil {
			return nil, fmt.Errorf("site %q: invalid host %q: %w", sd.ID, sd.Host, err)
		}
		site, err := domain.NewSite(sd.ID, host)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	presets := make([]domain.Preset, 0, len(doc.Presets))
	for _, pd := range doc.Presets {
		p, err := domain.NewPreset(pd.Name, pd.Sites)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	return New(sites, presets)
}

// New builds a catalog from already constructed sites and presets. It fails
// when identifiers collide, when a preset name shadows a site or when a
// preset references a site the catalog does not contain.
func New(sites []domain.Site, presets []domain.Preset) (*Catalog, error) {
	c := &Catalog{
		sites:   make(map[string]domain.Site, len(sites)),
		presets: make(map[string]domain.Preset, len(presets)),
	}

	for _, s := range sites {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.sites[s.ID]; dup {
			return nil, fmt.Errorf("duplicate site id %q", s.ID)
		}
		c.sites[s.ID] = s
		c.siteOrder = append(c.siteOrder, s.ID)
	}

	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.presets[p.Name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		if _, shadow := c.sites[p.Name]; shadow {
			return nil, fmt.Errorf("preset %q shadows a site with the same id", p.Name)
		}
		for _, id := range p.Sites {
			if _, ok := c.sites[id]; !ok {
				return nil, fmt.Errorf("preset %q references unknown site %q", p.Name, id)
			}
		}
		c.presets[p.Name] = p
		c.presetOrder = append(c.presetOrder, p.Name)
	}

	return c, nil
}

// Site looks up a site by its lowercase identifier.
func (c *Catalog) Site(id string) (domain.Site, bool) {
	s, ok := c.sites[id]
	return s, ok
}

// IsPreset reports whether name is a known preset.
func (c *Catalog) IsPreset(name string) bool {
	_, ok := c.presets[name]
	return ok
}

// Expand returns the sites of the named preset in declared order.
// An unknown name returns ErrUnknownPreset.
func (c *Catalog) Expand(name string) ([]domain.Site, error) {
	p, ok := c.presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPreset, name)
	}
	out := make([]domain.Site, 0, len(p.Sites))
	for _, id := range p.Sites {
		out = append(out, c.sites[id])
	}
	return out, nil
}

// Sites returns every site in declared order.
func (c *Catalog) Sites() []domain.Site {
	out := make([]domain.Site, 0, len(c.siteOrder))
	for _, id := range c.siteOrder {
		out = append(out, c.sites[id])
	}
	return out
}

// Presets returns every preset in declared order.
func (c *Catalog) Presets() []domain.Preset {
	out := make([]domain.Preset, 0, len(c.presetOrder))
	for _, name := range c.presetOrder {
		p := c.presets[name]
		p.Sites = append([]string(nil), p.Sites...)
		out = append(out, p)
	}
	return out
}

// Hosts returns the host name of every site in declared order.
func (c *Catalog) Hosts() []string {
	out := make([]string, 0, len(c.siteOrder))
	for _, id := range c.siteOrder {
		out = append(out, c.sites[id].Host)
	}
	return out
}
