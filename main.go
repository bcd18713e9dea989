package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pokenft/pokenft/pokenft"
	"github.com/pokenft/pokenft/pokenft/auth"
	"github.com/pokenft/pokenft/pokenft/booster"
	"github.com/pokenft/pokenft/pokenft/catalog"
	"github.com/pokenft/pokenft/pokenft/chain"
	"github.com/pokenft/pokenft/pokenft/config"
	"github.com/pokenft/pokenft/pokenft/database"
	"github.com/pokenft/pokenft/pokenft/database/repositories"
	"github.com/pokenft/pokenft/pokenft/logger"
	"github.com/pokenft/pokenft/pokenft/services"
	"github.com/pokenft/pokenft/pokenft/web"
	"github.com/pokenft/pokenft/pokenft/web/handlers"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncDB := flag.Bool("sync-db", false, "Create database schema on startup")
	warmSets := flag.String("warm-sets", "", "Comma-separated set ids to preload into the catalog cache")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	customHandler := logger.NewHandler("PokeNFT")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting PokeNFT API",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("type", "sys"))

	cfg, err := pokenft.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Connecting to database...", slog.String("type", "db"))
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *shouldSyncDB {
		if err := db.InitializeSchema(ctx); err != nil {
			slog.Error("Failed to initialize schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("Database schema initialized", slog.String("type", "db"))
	}

	sets, err := catalog.LoadSetList(cfg.TCGAPI.SetsFile)
	if err != nil {
		slog.Error("Failed to load set list", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := catalog.NewClient(cfg.TCGAPI.BaseURL, cfg.TCGAPI.APIKey, cfg.TCGAPI.PageSize)
	catalogStore, err := catalog.NewStore(client, catalog.NewFileStore(cfg.TCGAPI.CacheFile), sets)
	if err != nil {
		slog.Error("Failed to create catalog store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *warmSets != "" {
		ids := strings.Split(*warmSets, ",")
		if err := catalogStore.Warm(ctx, ids); err != nil {
			slog.Warn("Catalog warmup incomplete", slog.String("error", err.Error()))
		}
	}

	boosterFee := cfg.Chain.BoosterFeeWei
	if boosterFee == 0 {
		boosterFee = config.DefaultBoosterFeeWei
	}
	redemptionFee := cfg.Chain.RedemptionFeeWei
	if redemptionFee == 0 {
		redemptionFee = config.DefaultRedemptionFeeWei
	}

	chainStore := repositories.NewChainStore(db.BunDB())
	ledger := chain.NewLedger(chainStore, chain.Params{
		Operator:      cfg.Chain.OperatorAddress,
		BoosterFee:    boosterFee,
		RedemptionFee: redemptionFee,
	}, catalogStore)
	market := chain.NewMarket(chainStore, cfg.Chain.MarketAddress)

	spaces, err := services.NewSpacesService(
		cfg.Spaces.Key,
		cfg.Spaces.Secret,
		cfg.Spaces.Region,
		cfg.Spaces.Bucket,
		cfg.Spaces.CardRoot,
		cfg.Spaces.Enabled,
	)
	if err != nil {
		slog.Error("Failed to create Spaces service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	webApp := &handlers.WebApp{
		Config:    cfg,
		Catalog:   catalogStore,
		Generator: booster.NewGenerator(catalogStore, cfg.Booster.CardsPerBooster),
		Ledger:    ledger,
		Market:    market,
		Spaces:    spaces,
		Auth:      auth.NewAdminSecret(cfg.Web.AdminSecret),
		Version:   version,
	}

	app := web.NewApp(webApp, strings.Join(cfg.Web.AllowOrigins, ","))

	address := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	slog.Info("Starting server", slog.String("type", "sys"), slog.String("address", address))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-c
	slog.Info("Shutting down...", slog.String("type", "sys"))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	db.Close()

	slog.Info("Shutdown complete", slog.String("type", "sys"))
}
