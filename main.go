package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/adapters/inventory"
	"github.com/ezz-ae/entrestate-engine/pkg/compiler"
	"github.com/ezz-ae/entrestate-engine/pkg/config"
	"github.com/ezz-ae/entrestate-engine/pkg/database"
	"github.com/ezz-ae/entrestate-engine/pkg/handlers"
	"github.com/ezz-ae/entrestate-engine/pkg/llm"
	"github.com/ezz-ae/entrestate-engine/pkg/logging"
	"github.com/ezz-ae/entrestate-engine/pkg/middleware"
	"github.com/ezz-ae/entrestate-engine/pkg/registry"
	"github.com/ezz-ae/entrestate-engine/pkg/scoring"
	"github.com/ezz-ae/entrestate-engine/pkg/services"
	"github.com/ezz-ae/entrestate-engine/pkg/tablespec"
	"github.com/ezz-ae/entrestate-engine/pkg/timetable"
)

// Version is set at build time via ldflags
var Version = "dev"

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("inventory", logging.SanitizeDSN(cfg.Inventory.ConnectionString())),
		zap.Bool("llm_enabled", cfg.LLM.Enabled),
		zap.Bool("cache_enabled", cfg.Cache.Enabled()),
		zap.Float64("market_blend", cfg.Scoring.MarketBlend))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.RunMigrations(cfg.Inventory.ConnectionString(), migrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	pool, err := database.NewPool(ctx, &cfg.Inventory)
	if err != nil {
		logger.Fatal("Failed to connect to inventory database", zap.Error(err))
	}
	defer pool.Close()

	cache, err := database.NewRedisClient(ctx, &cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	completer, err := llm.NewCompleter(&cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create completion client", zap.Error(err))
	}

	reg := registry.MustLoad()
	validator := tablespec.NewValidator(reg)
	enforcer := tablespec.NewEnforcer(reg)
	baseCompiler := compiler.New(reg, logger)
	assistedCompiler := compiler.NewAssisted(baseCompiler, completer, cfg.LLM.Timeout(), logger)

	source := inventory.NewPostgresSource(pool, logger)
	materializer := timetable.NewMaterializer(source, cfg.Inventory.QueryTimeout(), logger)
	timetables := timetable.NewService(materializer, cache, cfg.Cache.TTL(), logger)

	scorer := scoring.NewScorer(cfg.Scoring.MarketBlend, time.Now().UTC().Year())

	tableSpecService := services.NewTableSpecService(
		baseCompiler, assistedCompiler, validator, enforcer,
		services.NewStaticEntitlements(), logger)
	rankingService := services.NewRankingService(timetables, scorer, logger)

	// Which ranked inventory view this deployment carries is resolved
	// once here; the handler sees a single interface or nothing.
	var routedRanking services.RoutedRankingService
	if view, err := services.ResolveRankingView(ctx, pool, logger); err != nil {
		logger.Warn("routed ranking disabled", zap.Error(err))
	} else {
		routedRanking = services.NewRoutedRankingService(pool, view, cfg.Scoring.MarketBlend, logger)
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewTableSpecHandler(tableSpecService, logger).RegisterRoutes(mux)
	handlers.NewTimeTableHandler(tableSpecService, timetables, logger).RegisterRoutes(mux)
	handlers.NewRankHandler(tableSpecService, rankingService, routedRanking, logger).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting entrestate-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
