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

	"seha.health/internal/assistant"
	"seha.health/internal/auth"
	"seha.health/internal/config"
	"seha.health/internal/httpapi"
	"seha.health/internal/obs"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	_ = godotenv.Load()
	obs.Init()
	obs.InitBuildInfo("assistant-api", version, commit)
	logger := obs.Named("assistant-api")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if cfg.AuthServiceURL == "" {
		logger.Fatal().Msg("SEHA_AUTH_SERVICE_URL is required")
	}

	var (
		db       *sql.DB
		sessions assistant.SessionStore
		messages assistant.MessageStore
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
		sessions, messages = assistant.NewSQLSessionStore(db), assistant.NewSQLMessageStore(db)
	case config.AdapterSQLite:
		db, err = sql.Open("sqlite", cfg.SQLiteFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("open sqlite")
		}
		sessions, messages = assistant.NewSQLSessionStore(db), assistant.NewSQLMessageStore(db)
	default:
		sessions, messages = assistant.NewMemorySessionStore(), assistant.NewMemoryMessageStore()
	}

	// This service never holds the signing secret; every token check
	// goes through the identity service.
	verifier, err := auth.NewRemoteVerifier(cfg.AuthServiceURL, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("build verifier")
	}

	svc := assistant.NewService(sessions, messages, nil)
	api := httpapi.NewAssistantAPI(svc, verifier, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.RateLimit(api.Handler(), 50, 25),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info().Str("addr", cfg.Addr).Str("version", version).Msg("starting assistant-api")

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
