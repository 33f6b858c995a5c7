package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/daybook/internal/app"
	"github.com/yungbote/daybook/internal/clients/redis"
	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/db"
	"github.com/yungbote/daybook/internal/handlers"
	"github.com/yungbote/daybook/internal/notesync"
	"github.com/yungbote/daybook/internal/observability"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/reconcile"
	"github.com/yungbote/daybook/internal/server"
	"github.com/yungbote/daybook/internal/services"
	"github.com/yungbote/daybook/internal/sweeper"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	cfg := app.LoadConfig(log)

	// Tracing
	shutdownTracing := observability.Init(context.Background(), log, observability.Config{
		ServiceName: cfg.OtelService,
		Environment: cfg.Environment,
		Version:     cfg.OtelVersion,
	})
	if shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}()
	}

	// Store
	dbService, err := db.NewService(log)
	if err != nil {
		log.Error("Store init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	conn := dbService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	set := repos.NewSet(conn, log)

	// Cache (optional)
	cache, err := redis.NewCache(log, cfg.RedisAddr, cfg.AggregateTTL)
	if err != nil {
		log.Warn("Cache init failed, running without cache", "error", err)
		cache = nil
	}
	if cache != nil {
		defer cache.Close()
	}

	// Engine
	reconciler := reconcile.New(conn, set, log)
	arbiter := notesync.New(conn, set, log)
	sw := sweeper.New(conn, set, cfg.SweepGrace, log)

	// Services
	log.Info("Setting up services from main...")
	archiveSvc := services.NewArchiveService(log, reconciler, cache, cfg.ReconcileParallelism)
	querySvc := services.NewQueryService(log, set, cache)
	mergeSvc := services.NewMergeBackService(log, arbiter, cache)
	maintenanceSvc := services.NewMaintenanceService(log, sw)

	// Handlers
	entryHandler := handlers.NewEntryHandler(log, archiveSvc, querySvc)
	entityHandler := handlers.NewEntityHandler(log, querySvc, mergeSvc)
	maintenanceHandler := handlers.NewMaintenanceHandler(log, maintenanceSvc)

	router := server.NewRouter(server.RouterConfig{
		ServiceName:        cfg.OtelService,
		EntryHandler:       entryHandler,
		EntityHandler:      entityHandler,
		MaintenanceHandler: maintenanceHandler,
	})

	log.Info("Starting server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
