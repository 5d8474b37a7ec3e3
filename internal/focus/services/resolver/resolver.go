package resolver

import (
	"fmt"

	"github.com/albibenni/focus/internal/focus/common/log"
	"github.com/albibenni/focus/internal/focus/common/utils"
	"github.com/albibenni/focus/internal/focus/domain"
)

// Resolver turns caller tokens into the ordered set of hosts to block.
type Resolver struct {
	catalog Catalog
	logger  log.Logger
}

type Options struct {
	Catalog Catalog
	Logger  log.Logger
}

func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Resolver{
		catalog: opts.Catalog,
		logger:  logger,
	}
}

// Resolve maps tokens to hosts in first-seen order.
//
// Rules:
// - Tokens are trimmed and compared case-insensitively
// - A preset token adds its sites in the preset's declared order
// - A site token adds that site's host
// - Presets and sites are additive; a host is added once however often it is named
// - Unknown tokens are ignored
//
// The only error is ErrUnknownPreset, which means the catalog answered
// IsPreset and Expand inconsistently.
func (r *Resolver) Resolve(tokens []string) (domain.BlockSet, error) {
	var set domain.BlockSet

	for i, raw := range tokens {
		token := utils.CanonicalKey(raw)

		if r.catalog.IsPreset(token) {
			sites, err := r.catalog.Expand(token)
			if err != nil {
				return domain.BlockSet{}, fmt.Errorf("expanding preset %q: %w", token, err)
			}
			added := 0
			for _, s := range sites {
				if set.Add(s.Host) {
					added++
				}
			}
			r.logger.Debug(map[string]any{"index": i, "preset": token, "sites": len(sites), "added": added}, "resolve_preset")
			continue
		}

		if s, ok := r.catalog.Site(token); ok {
			if set.Add(s.Host) {
				r.logger.Debug(map[string]any{"index": i, "site": token, "host": s.Host}, "resolve_site")
			} else {
				r.logger.Debug(map[string]any{"index": i, "site": token, "host": s.Host}, "resolve_skip_duplicate")
			}
			continue
		}

		r.logger.Debug(map[string]any{"index": i, "token": raw}, "resolve_skip_unknown")
	}

	return set, nil
}
