package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/go-graphql-catalog/internal/config"
	"github.com/llehouerou/go-graphql-catalog/internal/observability"
	"github.com/llehouerou/go-graphql-catalog/internal/resolver"
	"github.com/llehouerou/go-graphql-catalog/internal/server"
	"github.com/llehouerou/go-graphql-catalog/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	baseLogger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("catalog")

	seed, err := store.LoadSeedFile(cfg.Catalog.SeedFile)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	st, err := store.New(seed)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	logger.Info("catalog loaded",
		zap.String("seed_file", cfg.Catalog.SeedFile),
		zap.Int("products", len(seed.Products)),
		zap.Int("ingredients", len(seed.Ingredients)),
		zap.Int("suppliers", len(seed.Suppliers)),
	)

	schema, err := server.NewSchema(resolver.New(st, resolver.WithLogger(logger)), cfg.GraphQL, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.NewRouter(schema, st, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
