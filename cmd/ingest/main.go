package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/MarkerAnn/wine-backend/internal/bootstrap"
	"github.com/MarkerAnn/wine-backend/internal/config"
	"github.com/MarkerAnn/wine-backend/pkg/database"
)

// Runs a full ingestion pass synchronously, without going through the REST
// queue. Useful for the initial index build and for cron-driven rebuilds.
func main() {
	force := flag.Bool("force", false, "re-embed wines that already carry a vector from the active model")
	batchSize := flag.Int("batch-size", 0, "wines per batch; 0 takes INGEST_BATCH_SIZE")
	flag.Parse()

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	// Ctrl+C cancels the context so the run finalizes as cancelled with its
	// counters intact instead of dying mid-batch.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	color.Cyan("🍷 Rebuilding wine embedding index (force=%v)\n", *force)

	run, runErr := container.IngestService.Rebuild(ctx, *force, *batchSize)
	if run != nil {
		color.Yellow("Run %s finished with status: %s", run.RunId, run.Status)
		color.Green("scanned=%d embedded=%d skipped=%d failed=%d", run.Scanned, run.Embedded, run.Skipped, run.Failed)
	}
	if runErr != nil {
		color.Red("Ingestion failed: %v", runErr)
		os.Exit(1)
	}
}
