package main

import (
	"fmt"
	"log/slog"
	"os"

	infracache "github.com/coinwatch/coinwatch/infra/cache"
	"github.com/coinwatch/coinwatch/infra/coingecko"
	"github.com/coinwatch/coinwatch/infra/cryptocompare"
	"github.com/coinwatch/coinwatch/infra/pairstore"
	infrawatch "github.com/coinwatch/coinwatch/infra/watchlist"
	"github.com/coinwatch/coinwatch/pkg/cache"
	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/coinwatch/coinwatch/pkg/config"
	"github.com/coinwatch/coinwatch/pkg/quotes"
	"github.com/coinwatch/coinwatch/pkg/rates"
	"github.com/coinwatch/coinwatch/pkg/watchlist"
	"github.com/coinwatch/coinwatch/webapi"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.Url), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	pairs := pairstore.New(db, logger)
	if err := pairs.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate pair store: %w", err)
	}

	var source quotes.Source
	switch cfg.Provider {
	case "cryptocompare":
		source = cryptocompare.New(cfg.CryptoCompare.ApiUrl, cfg.CryptoCompare.ApiKey, cfg.CryptoCompare.HTTPTimeout, logger)
	case "pairstore":
		source = pairs
	default:
		source = coingecko.New(cfg.CoinGecko.ApiUrl, cfg.CoinGecko.ApiKey, cfg.CoinGecko.HTTPTimeout, logger)
	}
	logger.Info("quote source selected", "provider", source.Name())

	cat := catalog.New(source, logger)

	var rateCache cache.RateCache
	if cfg.Redis.Enabled {
		rateCache = infracache.NewRedisCache(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Prefix, logger)
	} else {
		rateCache = infracache.NewMemoryCache()
	}

	engine := rates.New(source, cat, rateCache, rates.Config{
		TTL:           cfg.Rates.CacheTTL,
		PivotCoin:     cfg.Rates.PivotCoin,
		PivotVs:       cfg.Rates.PivotVs,
		ReferenceFiat: cfg.Rates.ReferenceFiat,
	}, logger)

	watchRepo := infrawatch.New(db)
	if err := watchRepo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate watchlist: %w", err)
	}
	watchSvc := watchlist.New(watchRepo, cat, logger)

	app := webapi.NewApp(webapi.Deps{
		Catalog:   cat,
		Engine:    engine,
		Watchlist: watchSvc,
		Logger:    logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "addr", addr)
	return app.Listen(addr)
}
