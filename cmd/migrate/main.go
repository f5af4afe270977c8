package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/trailhead/trailhead-backend/internal/config"
	"github.com/trailhead/trailhead-backend/internal/database"
	"github.com/trailhead/trailhead-backend/internal/migration"
	pkglogger "github.com/trailhead/trailhead-backend/pkg/logger"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "config file path (default configs/config.<APP_ENV>.yaml)")
	dryRun := flag.Bool("dry-run", false, "list the tables that would be migrated without executing")
	verify := flag.Bool("verify", false, "check running scores against the vote tables")
	repair := flag.Bool("repair", false, "rewrite drifted running scores from the vote tables")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	dotenvFiles := config.LoadDotEnv()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	if *dryRun {
		log.Println("[dry-run] Would migrate:")
		for _, model := range migration.Models() {
			fmt.Printf("  - %T\n", model)
		}
		return
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := database.Open(cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	switch {
	case *verify:
		drifts, err := migration.VerifyScores(db)
		if err != nil {
			log.Fatalf("[verify] %v", err)
		}
		fmt.Println()
		fmt.Printf("%-14s %-38s %8s %8s\n", "TABLE", "ID", "STORED", "ACTUAL")
		for _, d := range drifts {
			fmt.Printf("%-14s %-38s %8d %8d\n", d.Table, d.ID, d.Stored, d.Actual)
		}
		fmt.Printf("\n%d drifted rows\n", len(drifts))
		if len(drifts) > 0 {
			os.Exit(1)
		}

	case *repair:
		n, err := migration.RepairScores(db)
		if err != nil {
			log.Fatalf("[repair] %v", err)
		}
		log.Printf("[repair] %d rows rewritten", n)

	default:
		start := time.Now()
		if err := migration.Run(db); err != nil {
			log.Fatalf("[migrate] FAILED: %v", err)
		}
		log.Printf("[migrate] Completed in %v", time.Since(start))
	}
}
