package main

import (
	"database/sql"
	"flag"

	_ "github.com/ClickHouse/clickhouse-go/v2" // ClickHouse driver
	"github.com/pressly/goose/v3"

	"github.com/navid-fn/ecomdash/configs"
	"github.com/navid-fn/ecomdash/internal/logger"
	"github.com/navid-fn/ecomdash/internal/migrations"
)

func main() {
	down := flag.Bool("down", false, "Roll back the latest migration instead of migrating up")
	flag.Parse()

	cfg := configs.AppLoad()
	log := logger.New(cfg.LogLevel)

	// Connect using native ClickHouse driver
	db, err := sql.Open("clickhouse", cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(log)
	if err := goose.SetDialect("clickhouse"); err != nil {
		log.Fatalf("Goose: failed to set dialect: %v", err)
	}

	if *down {
		log.Info("Rolling back latest migration...")
		if err := goose.Down(db, "."); err != nil {
			log.Fatalf("Goose rollback failed: %v", err)
		}
		log.Info("Rollback completed successfully")
		return
	}

	log.Info("Running database migrations...")
	if err := goose.Up(db, "."); err != nil {
		log.Fatalf("Goose migration failed: %v", err)
	}

	log.Info("Migrations completed successfully")
}
