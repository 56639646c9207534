package geocode

import (
	"context"
	"strings"
	"time"
)

// Location is one resolved coordinate pair with the provider's matched
// address text.
type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Provider resolves a free-text query to a location. A nil location with a
// nil error means the provider found no match.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, query string) (*Location, error)
}

// Entry is one cached geocode result keyed by (region, sub-region).
type Entry struct {
	Region    string    `json:"region"`
	SubRegion string    `json:"sub_region"`
	Address   string    `json:"address"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistent cache the resolver consults before calling a
// provider. Entries are keyed per provider, so a hit only counts when the
// same provider produced it. Lookup returns (nil, nil) on a miss.
type Store interface {
	Lookup(ctx context.Context, region, subRegion, provider string) (*Entry, error)
	Upsert(ctx context.Context, e Entry) error
}

// Query builds the provider query string for a region pair, scoped to
// Türkiye the way the source data always is.
func Query(region, subRegion string) string {
	parts := make([]string, 0, 3)
	if s := strings.TrimSpace(subRegion); s != "" {
		parts = append(parts, s)
	}
	if r := strings.TrimSpace(region); r != "" {
		parts = append(parts, r)
	}
	parts = append(parts, "Türkiye")
	return strings.Join(parts, ", ")
}
