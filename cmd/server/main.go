package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/mapacultural/eventos-sync/internal/cache"
	"github.com/mapacultural/eventos-sync/internal/config"
	"github.com/mapacultural/eventos-sync/internal/database"
	"github.com/mapacultural/eventos-sync/internal/handler"
	"github.com/mapacultural/eventos-sync/internal/mapacultural"
	"github.com/mapacultural/eventos-sync/internal/queue"
	"github.com/mapacultural/eventos-sync/internal/repository"
	"github.com/mapacultural/eventos-sync/internal/router"
	queue_publisher "github.com/mapacultural/eventos-sync/internal/service"
	engine "github.com/mapacultural/eventos-sync/internal/sync"
)

func main() {
	// Load .env if present; in containers the variables come from the
	// environment directly and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: when it is unreachable the cache layer degrades to
	// pass-through and every read hits MySQL.
	cch := cache.New(config.NewRedisClient())

	// Repositories over the shared connection pool.
	events := repository.NewEventRepo(db)
	languages := repository.NewLanguageRepo(db)
	seals := repository.NewSealRepo(db)
	stats := repository.NewStatsRepo(db)
	logs := repository.NewSyncLogRepo(db)

	// Sync engine: remote client, dimension resolver, batched writer.
	api := mapacultural.NewClient(cfg.APIBaseURL, cfg.APISeal, cfg.APITimeout)
	api.PageDelay = cfg.SyncPageDelay
	dims := engine.NewResolver(languages, seals)
	writer := engine.NewWriter(events, dims, cfg.SyncBatchSize)
	svc := engine.NewService(api, events, writer, dims, logs, cch, queue_publisher.PublishSyncCompleted)

	// Consume run-completion events into the sync log file served by the
	// logs endpoint. The consumer reconnects on its own; a missing broker
	// only disables the file trail.
	go func() {
		if err := queue.StartSyncLogConsumer(cfg.LogFile); err != nil {
			log.Printf("sync log consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.Register(e, router.Handlers{
		Events: &handler.EventHandler{Events: events, Languages: languages, Cache: cch},
		Seals:  &handler.SealHandler{Seals: seals, Cache: cch},
		Stats:  &handler.StatsHandler{Stats: stats, Logs: logs, Cache: cch},
		Sync:   &handler.SyncHandler{Svc: svc, Logs: logs},
		Logs:   &handler.LogsHandler{File: cfg.LogFile},
	})

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
