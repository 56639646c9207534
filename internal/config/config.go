package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Server  ServerConfig
	Ingest  IngestConfig
	Geocode GeocodeConfig
	SQLite  SQLiteConfig
	DB      PostgresConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type ServerConfig struct {
	Host string
	Port int
}

type IngestConfig struct {
	// Delimiter tried first for delimited uploads; sniffing kicks in when
	// the result looks wrong.
	Delimiter   string
	MaxUploadMB int
}

type GeocodeConfig struct {
	// Store selects the durable cache backend: "sqlite" or "postgres".
	Store            string
	Provider         string
	UserAgent        string
	ArcGISDelayMS    int
	NominatimDelayMS int
	TimeoutSeconds   int
}

type SQLiteConfig struct {
	Path string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "ravla"),
			Env:  getEnv("APP_ENV", "local"),
		},
		Server: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnvAsInt("HTTP_PORT", 8040),
		},
		Ingest: IngestConfig{
			Delimiter:   getEnv("INGEST_DELIMITER", ";"),
			MaxUploadMB: getEnvAsInt("INGEST_MAX_UPLOAD_MB", 64),
		},
		Geocode: GeocodeConfig{
			Store:            getEnv("GEOCODE_STORE", "sqlite"),
			Provider:         getEnv("GEOCODE_PROVIDER", "arcgis"),
			UserAgent:        getEnv("GEOCODE_USER_AGENT", "ravla-geocoder"),
			ArcGISDelayMS:    getEnvAsInt("GEOCODE_ARCGIS_DELAY_MS", 200),
			NominatimDelayMS: getEnvAsInt("GEOCODE_NOMINATIM_DELAY_MS", 1000),
			TimeoutSeconds:   getEnvAsInt("GEOCODE_TIMEOUT_SECONDS", 10),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "ravla.db"),
		},
		DB: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
	}

	return cfg, cfg.validate()
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

/* ================= helpers ================= */

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("HTTP_PORT is invalid")
	}
	if c.Ingest.Delimiter == "" {
		return fmt.Errorf("INGEST_DELIMITER is empty")
	}
	switch strings.ToLower(c.Geocode.Store) {
	case "sqlite":
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is empty")
		}
	case "postgres":
		if c.DB.Host == "" || c.DB.User == "" || c.DB.DBName == "" {
			return fmt.Errorf("database config is incomplete")
		}
	default:
		return fmt.Errorf("GEOCODE_STORE must be sqlite or postgres, got %q", c.Geocode.Store)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
