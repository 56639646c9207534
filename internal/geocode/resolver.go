package geocode

import (
	"context"
	"fmt"
	"time"

	"github.com/hasancagrigungor/ravla/pkg/logger"
)

// Resolver answers (region, sub-region) lookups from the persistent cache
// first and only calls the provider on a miss. Provider failures and
// no-match answers are not cached, so a later run can retry them.
type Resolver struct {
	store    Store
	provider Provider
	limiter  *RateLimiter
	log      logger.Logger
}

func NewResolver(store Store, provider Provider, limiter *RateLimiter, log logger.Logger) *Resolver {
	return &Resolver{store: store, provider: provider, limiter: limiter, log: log}
}

// Resolve returns the entry for a region pair and whether it was served from
// the cache. A nil entry with a nil error means the provider had no match.
func (r *Resolver) Resolve(ctx context.Context, region, subRegion string) (*Entry, bool, error) {
	cached, err := r.store.Lookup(ctx, region, subRegion, r.provider.Name())
	if err != nil {
		return nil, false, fmt.Errorf("lookup geocode cache: %w", err)
	}
	if cached != nil {
		return cached, true, nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	loc, err := r.provider.Geocode(ctx, Query(region, subRegion))
	if err != nil {
		return nil, false, fmt.Errorf("geocode %q/%q: %w", region, subRegion, err)
	}
	if loc == nil {
		r.log.Warn("geocode produced no match",
			logger.String("region", region),
			logger.String("sub_region", subRegion),
		)
		return nil, false, nil
	}

	entry := Entry{
		Region:    region,
		SubRegion: subRegion,
		Address:   loc.Address,
		Lat:       loc.Lat,
		Lon:       loc.Lon,
		Provider:  r.provider.Name(),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.Upsert(ctx, entry); err != nil {
		return nil, false, fmt.Errorf("cache geocode result: %w", err)
	}
	return &entry, false, nil
}

// BatchResult summarizes a ResolveAll run.
type BatchResult struct {
	Entries   []Entry `json:"entries"`
	CacheHit  int     `json:"cache_hits"`
	Resolved  int     `json:"resolved"`
	Unmatched int     `json:"unmatched"`
}

// Pair is one (region, sub-region) key to resolve.
type Pair struct {
	Region    string `json:"region"`
	SubRegion string `json:"sub_region"`
}

// ResolveAll resolves each unique pair in order, stopping early when the
// context is canceled. Individual provider errors are logged and skipped so
// one flaky lookup does not abort a long warm run.
func (r *Resolver) ResolveAll(ctx context.Context, pairs []Pair) (*BatchResult, error) {
	seen := make(map[Pair]bool, len(pairs))
	result := &BatchResult{}

	for _, p := range pairs {
		if seen[p] {
			continue
		}
		seen[p] = true

		if err := ctx.Err(); err != nil {
			return result, err
		}

		entry, hit, err := r.Resolve(ctx, p.Region, p.SubRegion)
		if err != nil {
			if ctx.Err() != nil {
				return result, err
			}
			r.log.Error("geocode lookup failed",
				logger.String("region", p.Region),
				logger.String("sub_region", p.SubRegion),
				logger.Error(err),
			)
			continue
		}
		if entry == nil {
			result.Unmatched++
			continue
		}
		if hit {
			result.CacheHit++
		} else {
			result.Resolved++
		}
		result.Entries = append(result.Entries, *entry)
	}
	return result, nil
}
