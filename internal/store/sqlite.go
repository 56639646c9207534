package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hasancagrigungor/ravla/internal/geocode"
)

// SQLiteStore is the default geocode cache, a single-file database so the
// cache survives restarts without any external service.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// modernc sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.ensureTable(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureTable(ctx context.Context) error {
	const stmt = `
		CREATE TABLE IF NOT EXISTS geocode_cache (
			region TEXT NOT NULL,
			sub_region TEXT NOT NULL,
			address TEXT NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			provider TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (region, sub_region, provider)
		);
	`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

// Lookup returns the entry a given provider produced for a pair. Rows from
// other providers do not count as hits.
func (s *SQLiteStore) Lookup(ctx context.Context, region, subRegion, provider string) (*geocode.Entry, error) {
	const query = `
		SELECT region, sub_region, address, lat, lon, provider, created_at
		FROM geocode_cache
		WHERE region = ? AND sub_region = ? AND provider = ?;
	`
	var e geocode.Entry
	err := s.db.QueryRowContext(ctx, query, region, subRegion, provider).Scan(
		&e.Region,
		&e.SubRegion,
		&e.Address,
		&e.Lat,
		&e.Lon,
		&e.Provider,
		&e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, e geocode.Entry) error {
	const query = `
		INSERT INTO geocode_cache (region, sub_region, address, lat, lon, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (region, sub_region, provider) DO UPDATE
		SET address = excluded.address,
			lat = excluded.lat,
			lon = excluded.lon,
			created_at = excluded.created_at;
	`
	_, err := s.db.ExecContext(ctx, query,
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

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
