package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"seha.health/internal/auth"
	"seha.health/internal/config"
	"seha.health/internal/httpapi"
	"seha.health/internal/obs"
	"seha.health/internal/scheduling"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	_ = godotenv.Load()
	obs.Init()
	obs.InitBuildInfo("scheduling-api", version, commit)
	logger := obs.Named("scheduling-api")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	var (
		db    *sql.DB
		store scheduling.AppointmentStore
	)
	switch cfg.DBAdapter {
	case config.AdapterPostgres:
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("open postgres")
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		store = scheduling.NewSQLStore(db)
	case config.AdapterSQLite:
		db, err = sql.Open("sqlite", cfg.SQLiteFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("open sqlite")
		}
		store = scheduling.NewSQLStore(db)
	default:
		store = scheduling.NewMemoryStore()
	}

	verifier, err := buildVerifier(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("build verifier")
	}

	svc := scheduling.NewService(store)
	api := httpapi.NewSchedulingAPI(svc, verifier, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.RateLimit(api.Handler(), 50, 25),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info().Str("addr", cfg.Addr).Str("version", version).Msg("starting scheduling-api")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	logger.Info().Msg("stopped")
}

func buildVerifier(cfg config.Config) (auth.Verifier, error) {
	if cfg.VerifyStrategy == config.VerifyRemote {
		return auth.NewRemoteVerifier(cfg.AuthServiceURL, nil)
	}
	return auth.NewLocalVerifier(cfg.JWTSecret)
}
