package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/html-comb/app/api"
	"github.com/lysyi3m/html-comb/app/cache"
	"github.com/lysyi3m/html-comb/app/cfg"
	"github.com/lysyi3m/html-comb/app/database"
	"github.com/lysyi3m/html-comb/app/feed"
	"github.com/lysyi3m/html-comb/app/site"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	if appConfig.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting HTML Comb server", "version", appConfig.Version)

	registry := site.NewRegistry(appConfig.SitesDir)
	if err := registry.Run(); err != nil {
		slog.Error("Failed to load site configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Site configurations loaded", "count", registry.GetSiteCount(), "dir", appConfig.SitesDir)

	store, err := openStore(appConfig)
	if err != nil {
		slog.Error("Failed to open page cache", "backend", appConfig.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Page cache ready", "backend", appConfig.CacheBackend)

	if appConfig.CacheMaxAge > 0 {
		janitor := cache.NewJanitor(store, appConfig.CacheMaxAge, appConfig.JanitorInterval)
		janitor.Start()
		defer janitor.Stop()
		slog.Info("Cache janitor started", "max_age", appConfig.CacheMaxAge, "interval", appConfig.JanitorInterval)
	}

	fetcher := feed.NewFetcher(&http.Client{}, appConfig.UserAgent)
	generator := feed.NewGenerator(cache.NewContentCache(store), fetcher, appConfig.ProbeConcurrency)
	renderer := feed.NewRenderer(appConfig.Version)

	pages, _ := store.(api.PageCounter)
	apiHandler := api.NewHandler(registry, generator, renderer, pages, appConfig.BaseUrl, appConfig.RequestTimeout)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:        ":" + appConfig.Port,
		Handler:     server,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("HTML Comb server shutdown complete")
}

func openStore(appConfig *cfg.Cfg) (cache.Store, error) {
	switch appConfig.CacheBackend {
	case cfg.CacheBackendMemory:
		return cache.NewMemoryStore(), nil
	case cfg.CacheBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := cache.NewRedisStore(ctx, appConfig.RedisAddr, appConfig.CacheMaxAge)
		if err != nil {
			return nil, err
		}
		return store, nil
	case cfg.CacheBackendPostgres:
		return openDatabase(database.DriverPostgres, database.PostgresDSN(
			appConfig.DBHost, appConfig.DBPort, appConfig.DBUser, appConfig.DBPassword, appConfig.DBName))
	default:
		return openDatabase(database.DriverSQLite, appConfig.CachePath)
	}
}

func openDatabase(driver, dsn string) (cache.Store, error) {
	db, err := database.NewConnection(driver, dsn)
	if err != nil {
		return nil, err
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations applied", "driver", driver, "version", version, "dirty", dirty)

	return database.NewPageRepository(db), nil
}
