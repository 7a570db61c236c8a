package main // Entry point package

import (
	"context" // Carries the run deadline through the engine
	"flag"    // Command line flags
	"log"     // Logging library
	"time"    // Run timeout

	"github.com/joho/godotenv" // Loads .env files into the environment

	"github.com/mapacultural/eventos-sync/internal/cache"
	"github.com/mapacultural/eventos-sync/internal/config"
	"github.com/mapacultural/eventos-sync/internal/database"
	"github.com/mapacultural/eventos-sync/internal/mapacultural"
	"github.com/mapacultural/eventos-sync/internal/repository"
	queue_publisher "github.com/mapacultural/eventos-sync/internal/service"
	engine "github.com/mapacultural/eventos-sync/internal/sync"
)

// main runs one synchronization from the command line, for cron or manual
// use. With -selos it refreshes the seal catalog instead of the events.
func main() {
	selos := flag.Bool("selos", false, "sync the seal catalog instead of events")
	timeout := flag.Duration("timeout", 30*time.Minute, "abort the run after this duration")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	cch := cache.New(config.NewRedisClient())

	events := repository.NewEventRepo(db)
	languages := repository.NewLanguageRepo(db)
	seals := repository.NewSealRepo(db)
	logs := repository.NewSyncLogRepo(db)

	api := mapacultural.NewClient(cfg.APIBaseURL, cfg.APISeal, cfg.APITimeout)
	api.PageDelay = cfg.SyncPageDelay
	dims := engine.NewResolver(languages, seals)
	writer := engine.NewWriter(events, dims, cfg.SyncBatchSize)
	svc := engine.NewService(api, events, writer, dims, logs, cch, queue_publisher.PublishSyncCompleted)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *selos {
		stats, err := svc.SyncSeals(ctx)
		if err != nil {
			log.Fatalf("seal sync failed: %v", err)
		}
		log.Printf("seal sync done: novos=%d atualizados=%d erros=%d", stats.Novos, stats.Atualizados, stats.Erros)
		return
	}

	stats, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}
	log.Printf("sync done: total=%d novos=%d atualizados=%d erros=%d",
		stats.Total, stats.Novos, stats.Atualizados, stats.Erros)
}
