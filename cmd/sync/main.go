package main

import (
	"context"
	"flag"
	"log"
	"time"

	"catalog-assistant-be/internal/bootstrap"
	"catalog-assistant-be/internal/config"
	"catalog-assistant-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

// Manual sync entrypoint: refetches the catalog and rebuilds the vector index
// without going through the HTTP API. Meant for cron and first-time setup.
func main() {
	skipIndex := flag.Bool("skip-index", false, "only refresh the raw catalog caches, do not reindex")
	flag.Parse()

	cfg := config.Load()

	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		color.Yellow("DB_CONNECTION_STRING not set, indexing into memory (results are lost on exit)")
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	ctx := context.Background()

	color.Cyan("=== Catalog Sync ===")
	start := time.Now()

	stats, err := container.CatalogService.ForceSync(ctx)
	if err != nil {
		color.Red("Sync failed: %v", err)
		log.Fatal(err)
	}
	color.Green("Sync done in %s: %d formations, %d sessions",
		time.Since(start).Round(time.Second), stats.TotalFormations, stats.TotalSessions)

	if *skipIndex {
		return
	}

	color.Cyan("=== Vector Indexing ===")
	start = time.Now()

	runStats, err := container.IndexerService.IndexAllData(ctx)
	if err != nil {
		color.Red("Indexing failed: %v", err)
		log.Fatal(err)
	}
	color.Green("Indexing done in %s: %d formations, %d sessions (%d total)",
		time.Since(start).Round(time.Second), runStats.FormationsIndexed, runStats.SessionsIndexed, runStats.Total)
}
