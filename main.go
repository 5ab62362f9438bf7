package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jperrin/job-set-match/internal/analyzer"
	"github.com/jperrin/job-set-match/internal/api"
	"github.com/jperrin/job-set-match/internal/app"
	"github.com/jperrin/job-set-match/internal/config"
	"github.com/jperrin/job-set-match/internal/ledger"
	"github.com/jperrin/job-set-match/internal/llm"
	"github.com/jperrin/job-set-match/internal/offers"
	"github.com/jperrin/job-set-match/internal/prompts"
	"github.com/jperrin/job-set-match/internal/watch"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	ctx := context.Background()

	store, err := ledger.Open(cfg.DataFile)
	if err != nil {
		log.Fatalf("Failed to open analysis ledger: %v", err)
	}

	client, err := llm.NewVertexAIClient(ctx, cfg, prompts.LoadContext(cfg.ContextDir))
	if err != nil {
		log.Fatalf("Failed to create Vertex AI client: %v", err)
	}
	defer client.Close()

	manager := offers.NewManager(cfg.NewDir, cfg.InProgressDir, cfg.ArchivedDir, cfg.MaxFileSizeMB, cfg.CleanupDays)
	an := analyzer.New(client, cfg.TokenCost, cfg.MaxConcurrent)
	a := app.New(cfg, manager, store, an)

	manager.CleanupExpired()

	if cfg.WatchNewOffers {
		watcher := watch.New(cfg.NewDir, 2*time.Second, func(path string) {
			if _, err := a.ProcessNewOffers(ctx); err != nil {
				log.Printf("Failed to process new offers: %v", err)
			}
		})
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Watcher stopped: %v", err)
			}
		}()
	}

	server := api.NewServer(a)

	fmt.Printf("Starting Job Set & Match on port %s...\n", cfg.Port)
	fmt.Printf("Endpoints:\n")
	fmt.Printf("  POST /analyze - Analyze every PDF in the intake directory\n")
	fmt.Printf("  GET /analyses - List analyses in the current batch\n")
	fmt.Printf("  POST /export - Export the current batch to Excel\n")

	if err := http.ListenAndServe(":"+cfg.Port, server.Router()); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
