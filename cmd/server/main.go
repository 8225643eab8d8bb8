package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jengzang/routesync/internal/api"
	"github.com/jengzang/routesync/internal/app"
	"github.com/jengzang/routesync/internal/config"
	"github.com/jengzang/routesync/internal/database"
	"github.com/jengzang/routesync/internal/importer"
	"github.com/jengzang/routesync/internal/middleware"
	"github.com/jengzang/routesync/internal/repository"
	"github.com/jengzang/routesync/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	// "server token <subject>" prints a bearer token for the rename endpoint
	if len(os.Args) == 3 && os.Args[1] == "token" {
		token, err := middleware.SignToken(cfg.JWTSecret, os.Args[2], 30*24*time.Hour)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to sign token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	log := logger.InitLogger("routesync", cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server stopped with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Init(ctx, database.Config{Path: cfg.DBPath}); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := repository.NewRouteRepository(database.GetDB())

	if _, err := os.Stat(cfg.ImportDir); err == nil {
		if _, err := importer.New(repo, log).ImportDir(ctx, cfg.ImportDir); err != nil {
			log.Warn(ctx, "startup import incomplete", "dir", cfg.ImportDir, "error", err.Error())
		}
	}

	a, err := app.New(repo, app.Options{
		DebounceWindow:  cfg.DebounceWindow,
		SyncInterval:    cfg.SyncInterval,
		LengthCacheSize: cfg.LengthCacheSize,
	}, log)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		// the API keeps serving whatever did load
		log.Error(ctx, "initial sync failed", err)
	}

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           api.SetupRouter(cfg, a, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting", "addr", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
