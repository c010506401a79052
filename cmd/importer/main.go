package main

import (
	"context"
	"flag"
	"time"

	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/navid-fn/ecomdash/configs"
	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/logger"
	"github.com/navid-fn/ecomdash/internal/repository"
	"github.com/navid-fn/ecomdash/internal/storage"
)

func main() {
	cfg := configs.AppLoad()

	path := flag.String("file", cfg.Dataset.Path, "Merged order-line CSV to import")
	truncate := flag.Bool("truncate", false, "Empty the order_line table before importing")
	flag.Parse()

	log := logger.New(cfg.LogLevel)

	policy, err := dataset.ParsePolicy(cfg.Dataset.MalformedRows)
	if err != nil {
		log.Fatalf("Invalid MALFORMED_ROWS: %v", err)
	}

	table, err := dataset.Load(*path,
		dataset.WithDelimiter(cfg.Dataset.Delimiter),
		dataset.WithPolicy(policy),
		dataset.WithLogger(log),
	)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Infof("Read %d order lines from %s (%d dropped)", table.Len(), *path, table.Dropped())

	store, err := storage.NewClickHouseStorage(cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if *truncate {
		if err := store.Truncate(ctx); err != nil {
			log.Fatalf("Failed to truncate %s: %v", storage.Table, err)
		}
		log.Warnf("Truncated %s", storage.Table)
	}

	start := time.Now()
	batches := storage.Chunks(table.Rows(), cfg.Import.BatchSize)
	for i, batch := range batches {
		if err := store.CreateOrderLines(ctx, batch); err != nil {
			log.Fatalf("Failed to insert batch %d/%d: %v", i+1, len(batches), err)
		}
		log.Debugf("Inserted batch %d/%d (%d lines)", i+1, len(batches), len(batch))
	}

	db, err := gorm.Open(clickhouse.Open(cfg.DBDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	count, err := repository.NewGormOrderLineRepository(db).Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count imported rows: %v", err)
	}

	log.Infof("Imported %d order lines in %d batches in %s; %s now holds %d rows",
		table.Len(), len(batches), time.Since(start).Round(time.Millisecond), storage.Table, count)
}
