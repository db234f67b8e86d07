// Package main is the entry point for the trip journal API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/mkowalczyk/triplog/internal/config"
	"github.com/mkowalczyk/triplog/internal/geocode"
	"github.com/mkowalczyk/triplog/internal/handler"
	"github.com/mkowalczyk/triplog/internal/images"
	"github.com/mkowalczyk/triplog/internal/middleware"
	"github.com/mkowalczyk/triplog/internal/notify"
	"github.com/mkowalczyk/triplog/internal/repo"
	"github.com/mkowalczyk/triplog/internal/service"
	"github.com/mkowalczyk/triplog/internal/session"
	"github.com/mkowalczyk/triplog/internal/weather"
	"github.com/mkowalczyk/triplog/migrations"
)

// maxBodyBytes caps request bodies; photo uploads are the largest payload.
const maxBodyBytes = 32 << 20

// changeCoalesceWindow is how long bursts of writes are batched before the
// live-update event goes out.
const changeCoalesceWindow = 300 * time.Millisecond

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// The database may still be starting alongside us; retry the first ping
	// with backoff before giving up.
	backoff := retry.WithMaxDuration(30*time.Second, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(cfg.DatabaseURL); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations up to date")

	// --- Stores and upstream clients ---------------------------------------
	imageStore, err := images.NewStore(cfg.ImageDir, cfg.ImageCacheBytes)
	if err != nil {
		slog.Error("failed to open image store", "error", err)
		os.Exit(1)
	}
	sessions := session.NewStore(cfg.SessionFile)

	hub := notify.NewHub(changeCoalesceWindow)
	defer hub.Close()

	weatherClient := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey)
	photon := geocode.NewPhotonClient(cfg.PhotonBaseURL)
	owm := geocode.NewOWMClient(cfg.GeocodeBaseURL, cfg.WeatherAPIKey)

	// --- Repos, services, handlers -----------------------------------------
	userRepo := repo.NewUserRepo(pool)
	tripRepo := repo.NewTripRepo(pool)
	imageRepo := repo.NewTripImageRepo(pool)

	authService := service.NewAuthService(userRepo)
	tripService := service.NewTripService(tripRepo, imageRepo, imageStore, weatherClient, owm, hub)
	weatherService := service.NewWeatherService(weatherClient, time.Local)
	exportService := service.NewExportService(tripRepo, imageRepo)

	server := handler.NewServer(
		authService,
		tripService,
		weatherService,
		exportService,
		photon,
		owm,
		hub,
		imageStore,
		sessions,
	)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS →
	// body size cap. The request ID must exist before the logger runs.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// No WriteTimeout: the /events stream stays open indefinitely. Read and
	// idle timeouts still guard against slowloris clients.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies any pending schema migrations from the embedded FS.
// goose needs database/sql, not a pgx pool, so it gets its own connection.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
