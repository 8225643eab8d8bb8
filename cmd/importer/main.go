package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jengzang/routesync/internal/config"
	"github.com/jengzang/routesync/internal/database"
	"github.com/jengzang/routesync/internal/importer"
	"github.com/jengzang/routesync/internal/repository"
	"github.com/jengzang/routesync/pkg/logger"
)

// Imports .fit activity files into the route database.
// Usage: importer [dir]  (defaults to IMPORT_DIR)
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	log := logger.InitLogger("routesync-importer", cfg.LogLevel)

	dir := cfg.ImportDir
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conn, err := database.Open(ctx, database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Error(ctx, "failed to open database", err)
		os.Exit(1)
	}
	defer conn.Close()

	res, err := importer.New(repository.NewRouteRepository(conn), log).ImportDir(ctx, dir)
	if err != nil {
		log.Error(ctx, "import failed", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d, failed %d\n", res.Imported, res.Failed)
	for _, e := range res.Errors {
		fmt.Println("  ", e)
	}
}
