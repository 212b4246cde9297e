package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bookcatalog/internal/catalog"
	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/logging"
	"bookcatalog/internal/platform/pgdb"

	"go.uber.org/zap"
)

// seed copies a libros.json file into the libros table so the catalog
// can be served with CATALOG_SOURCE pointing at Postgres.
func main() {
	file := flag.String("file", "./libros.json", "catalog JSON file to import")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	books, err := catalog.FileSource{Path: *file}.Load(ctx)
	if err != nil {
		logger.Fatal("failed to read catalog", zap.String("file", *file), zap.Error(err))
	}

	pool, err := pgdb.Open(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := catalog.InsertBooks(ctx, pool, books); err != nil {
		logger.Fatal("failed to insert books", zap.Error(err))
	}

	var total int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM libros").Scan(&total); err != nil {
		logger.Warn("failed to count books", zap.Error(err))
	}
	logger.Info("seed finished", zap.Int("inserted", len(books)), zap.Int("total", total))
}
