package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	productrepo "storefront/internal/repository/product"
)

func main() {
	path := flag.String("file", "", "path to product CSV export")
	flag.Parse()

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if *path == "" {
		logger.Fatal("usage: importer -file products.csv")
	}

	f, err := os.Open(*path)
	if err != nil {
		logger.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	cfg := config.FromEnv()
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	repo := productrepo.NewPostgres(pool, logger)
	n, err := importer.NewCSVImporter(f, repo).Run(ctx)
	if err != nil {
		logger.Fatalf("import: %v", err)
	}
	logger.Printf("imported %d products", n)
}
