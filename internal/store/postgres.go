package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hasancagrigungor/ravla/internal/config"
	"github.com/hasancagrigungor/ravla/internal/geocode"
)

// PostgresStore keeps the geocode cache in Postgres so several instances can
// share one cache.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPool(cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return pool, nil
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureTable(ctx context.Context) error {
	const stmt = `
		CREATE TABLE IF NOT EXISTS geocode_cache (
			region TEXT NOT NULL,
			sub_region TEXT NOT NULL,
			address TEXT NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			provider TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (region, sub_region, provider)
		);
	`
	_, err := s.pool.Exec(ctx, stmt)
	return err
}

// Lookup returns the entry a given provider produced for a pair. Rows from
// other providers do not count as hits.
func (s *PostgresStore) Lookup(ctx context.Context, region, subRegion, provider string) (*geocode.Entry, error) {
	const query = `
		SELECT region, sub_region, address, lat, lon, provider, created_at
		FROM geocode_cache
		WHERE region = $1 AND sub_region = $2 AND provider = $3;
	`
	var e geocode.Entry
	err := s.pool.QueryRow(ctx, query, region, subRegion, provider).Scan(
		&e.Region,
		&e.SubRegion,
		&e.Address,
		&e.Lat,
		&e.Lon,
		&e.Provider,
		&e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, e geocode.Entry) error {
	const query = `
		INSERT INTO geocode_cache (region, sub_region, address, lat, lon, provider, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (region, sub_region, provider) DO UPDATE
		SET address = EXCLUDED.address,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			created_at = EXCLUDED.created_at;
	`
	_, err := s.pool.Exec(ctx, query,
		e.Region,
		e.SubRegion,
		e.Address,
		e.Lat,
		e.Lon,
		e.Provider,
		e.CreatedAt,
	)
	return err
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
