package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/hasancagrigungor/ravla/internal/config"
	"github.com/hasancagrigungor/ravla/internal/geocode"
	ginserver "github.com/hasancagrigungor/ravla/internal/infrastructure/http/gin"
	"github.com/hasancagrigungor/ravla/internal/ingest"
	"github.com/hasancagrigungor/ravla/internal/interfaces/http/handler"
	"github.com/hasancagrigungor/ravla/internal/interfaces/http/router"
	"github.com/hasancagrigungor/ravla/internal/report"
	"github.com/hasancagrigungor/ravla/internal/schema"
	"github.com/hasancagrigungor/ravla/internal/session"
	"github.com/hasancagrigungor/ravla/internal/store"
	"github.com/hasancagrigungor/ravla/pkg/logger"
)

func newGeocodeStore(cfg *config.Config) (geocode.Store, func(), error) {
	if strings.ToLower(cfg.Geocode.Store) == "postgres" {
		pool, err := store.NewPool(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		pg, err := store.NewPostgresStore(context.Background(), pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}

	sq, err := store.NewSQLiteStore(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, err
	}
	return sq, func() { sq.Close() }, nil
}

func newResolvers(cfg *config.Config, cache geocode.Store, zlog logger.Logger) map[string]*geocode.Resolver {
	timeout := time.Duration(cfg.Geocode.TimeoutSeconds) * time.Second
	return map[string]*geocode.Resolver{
		"arcgis": geocode.NewResolver(
			cache,
			geocode.NewArcGISClient(timeout),
			geocode.NewRateLimiter(time.Duration(cfg.Geocode.ArcGISDelayMS)*time.Millisecond),
			zlog,
		),
		"nominatim": geocode.NewResolver(
			cache,
			geocode.NewNominatimClient(cfg.Geocode.UserAgent, timeout),
			geocode.NewRateLimiter(time.Duration(cfg.Geocode.NominatimDelayMS)*time.Millisecond),
			zlog,
		),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	zlog, err := logger.NewZapLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zlog.Sync()

	cache, closeStore, err := newGeocodeStore(cfg)
	if err != nil {
		zlog.Fatal("geocode store init failed", logger.Error(err))
	}
	defer closeStore()

	sessions := session.NewManager()
	ingests := ingest.NewService(schema.DefaultAliases(), cfg.Ingest.Delimiter, zlog)
	reports := report.NewService(report.NewInMemoryCache())

	sessionHandler := handler.NewSessionHandler(sessions, ingests, reports, zlog)
	geocodeHandler := handler.NewGeocodeHandler(newResolvers(cfg, cache, zlog), cfg.Geocode.Provider, zlog)

	engine := ginserver.NewEngine()
	engine.MaxMultipartMemory = int64(cfg.Ingest.MaxUploadMB) << 20
	router.RegisterRoutes(engine, sessionHandler, geocodeHandler)

	zlog.Info("starting server",
		logger.String("addr", cfg.Server.Address()),
		logger.String("geocode_store", cfg.Geocode.Store),
	)
	server := ginserver.NewServer(cfg.Server, engine)
	if err := server.Run(); err != nil {
		zlog.Fatal("server run failed", logger.Error(err))
	}
}
