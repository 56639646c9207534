package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hasancagrigungor/ravla/internal/config"
	"github.com/hasancagrigungor/ravla/internal/geocode"
	"github.com/hasancagrigungor/ravla/internal/ingest"
	"github.com/hasancagrigungor/ravla/internal/schema"
	"github.com/hasancagrigungor/ravla/internal/store"
	"github.com/hasancagrigungor/ravla/pkg/logger"
)

// One-shot CLI that pre-fills the geocode cache from a delimited file of
// region pairs, so the first interactive map request does not pay for every
// provider call.
func main() {
	file := flag.String("file", "", "delimited file with region / sub-region columns")
	providerName := flag.String("provider", "", "geocode provider (arcgis or nominatim), overrides env")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *providerName == "" {
		*providerName = cfg.Geocode.Provider
	}

	zlog, err := logger.NewZapLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zlog.Sync()

	data, err := os.ReadFile(*file)
	if err != nil {
		zlog.Fatal("read input failed", logger.Error(err))
	}

	ingests := ingest.NewService(schema.DefaultAliases(), cfg.Ingest.Delimiter, zlog)
	res, err := ingests.IngestDelimited([]ingest.NamedFile{{Name: *file, Data: data}})
	if err != nil {
		zlog.Fatal("parse input failed", logger.Error(err))
	}

	pairs := make([]geocode.Pair, 0, len(res.Table.Rows))
	for _, r := range res.Table.Rows {
		if r.Region == "" && r.SubRegion == "" {
			continue
		}
		pairs = append(pairs, geocode.Pair{Region: r.Region, SubRegion: r.SubRegion})
	}
	if len(pairs) == 0 {
		zlog.Fatal("no region columns found in input")
	}

	cache, err := store.NewSQLiteStore(cfg.SQLite.Path)
	if err != nil {
		zlog.Fatal("open geocode cache failed", logger.Error(err))
	}
	defer cache.Close()

	timeout := time.Duration(cfg.Geocode.TimeoutSeconds) * time.Second
	var resolver *geocode.Resolver
	switch *providerName {
	case "arcgis":
		resolver = geocode.NewResolver(cache,
			geocode.NewArcGISClient(timeout),
			geocode.NewRateLimiter(time.Duration(cfg.Geocode.ArcGISDelayMS)*time.Millisecond),
			zlog,
		)
	case "nominatim":
		resolver = geocode.NewResolver(cache,
			geocode.NewNominatimClient(cfg.Geocode.UserAgent, timeout),
			geocode.NewRateLimiter(time.Duration(cfg.Geocode.NominatimDelayMS)*time.Millisecond),
			zlog,
		)
	default:
		zlog.Fatal("unknown provider", logger.String("provider", *providerName))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Info("warming geocode cache",
		logger.String("provider", *providerName),
		logger.Int("pairs", len(pairs)),
	)

	result, err := resolver.ResolveAll(ctx, pairs)
	if err != nil {
		zlog.Error("warm run interrupted", logger.Error(err))
	}
	zlog.Info("warm run finished",
		logger.Int("cache_hits", result.CacheHit),
		logger.Int("resolved", result.Resolved),
		logger.Int("unmatched", result.Unmatched),
	)
}
