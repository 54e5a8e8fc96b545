package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/qs3c/bio_go_server/config"
	"github.com/qs3c/bio_go_server/internal/database"
	"github.com/qs3c/bio_go_server/internal/model"
	"github.com/qs3c/bio_go_server/internal/repository"
	"github.com/qs3c/bio_go_server/internal/service"
)

var (
	dryRun = flag.Bool("dry-run", true, "Dry run mode, only count expired usage counters")
	before = flag.String("before", "", "Prune counters dated before YYYY-MM-DD (default: retention cutoff)")
)

func main() {
	flag.Parse()

	log.Println("Starting usage cleanup task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Quota.Store == "redis" {
		log.Println("Quota store is redis, counters expire on their own. Nothing to do.")
		return
	}

	// 连接数据库
	db, err := database.NewDB(&cfg.Database, "release")
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	quotaService := service.NewQuotaService(repository.NewUsageRepository(db), cfg)

	cutoff := quotaService.RetentionCutoff()
	if *before != "" {
		if _, err := time.Parse(model.DateLayout, *before); err != nil {
			log.Fatalf("Invalid -before date %q: %v", *before, err)
		}
		cutoff = *before
	}

	rows, err := quotaService.PruneUsageBefore(context.Background(), cutoff, *dryRun)
	if err != nil {
		log.Fatalf("Failed to prune usage counters: %v", err)
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("Cutoff: %s", cutoff)
	if *dryRun {
		log.Printf("Expired counters: %d", rows)
		log.Println("DRY RUN MODE - nothing was deleted, run with -dry-run=false to delete")
	} else {
		log.Printf("Deleted counters: %d", rows)
	}
	log.Println(strings.Repeat("=", 60))
}
