package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/arturoeanton/codelens-timemachine/internal/adapter/store"
	"github.com/arturoeanton/codelens-timemachine/internal/handler"
	"github.com/arturoeanton/codelens-timemachine/internal/logging"
	"github.com/arturoeanton/codelens-timemachine/internal/mcp"
	"github.com/arturoeanton/codelens-timemachine/internal/metrics"
	"github.com/arturoeanton/codelens-timemachine/internal/middleware"
	"github.com/arturoeanton/codelens-timemachine/internal/service"
	"github.com/arturoeanton/codelens-timemachine/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("Starting CodeLens TimeMachine",
		"port", cfg.Port,
		"database", cfg.DSN(),
		"mcp_enabled", cfg.MCPEnabled,
	)

	// ── Metrics ──────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// ── Database ─────────────────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := store.Open(ctx, cfg.DatabaseDialect, cfg.DatabaseURL, m, logger)
	if err != nil {
		cancel()
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if cfg.DatabaseAutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			cancel()
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}
	cancel()
	defer db.Close()

	slog.Info("database ready", "dialect", db.Dialect().ID)

	// ── Services ─────────────────────────────────────────────────────────
	periodService := service.NewPeriodService(db, m, logger, cfg.ResolveConcurrency)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "OPTIONS"},
	}))
	app.Use(middleware.RequestMetrics(m))

	systemHandler := handler.NewSystemHandler(cfg.AppName, db, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	systemHandler.Register(app)

	api := app.Group("/api/v1")

	periodHandler := handler.NewPeriodHandler(periodService)
	periodHandler.Register(api)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(periodService, cfg.MCPPort)
		go func() {
			if err := mcpServer.Start(); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
