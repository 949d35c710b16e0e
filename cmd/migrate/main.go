package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"seha.health/internal/config"
	"seha.health/internal/migrate"
)

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	var (
		service  = flag.String("service", "", "Service schema to migrate (auth, medical, scheduling, assistant)")
		adapter  = flag.String("adapter", os.Getenv("SEHA_DB_ADAPTER"), "Database adapter (postgres or sqlite)")
		dsn      = flag.String("dsn", os.Getenv("SEHA_PG_DSN"), "PostgreSQL DSN")
		sqliteDB = flag.String("sqlite", os.Getenv("SEHA_SQLITE_FILE"), "SQLite database file")
		root     = flag.String("migrations", "migrations", "Migrations root directory")
		seeds    = flag.String("seeds", "", "Path to SQL seeds")
	)
	flag.Parse()

	if *service == "" {
		log.Fatal("missing -service: one of auth, medical, scheduling, assistant")
	}
	switch *service {
	case "auth", "medical", "scheduling", "assistant":
	default:
		log.Fatalf("unknown service %q", *service)
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate -service <name> [up|down|seed|status]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		db  *sql.DB
		err error
	)
	switch *adapter {
	case config.AdapterSQLite:
		if *sqliteDB == "" {
			log.Fatal("missing sqlite file: provide via -sqlite or SEHA_SQLITE_FILE")
		}
		db, err = sql.Open("sqlite", *sqliteDB)
	case config.AdapterPostgres, "":
		if *dsn == "" {
			log.Fatal("missing DSN: provide via -dsn or SEHA_PG_DSN")
		}
		db, err = sql.Open("pgx", *dsn)
	default:
		log.Fatalf("unknown adapter %q", *adapter)
	}
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	dialect := config.AdapterPostgres
	if *adapter == config.AdapterSQLite {
		dialect = config.AdapterSQLite
	}
	migrationsPath := filepath.Join(*root, *service, dialect)

	mgr := migrate.NewManager(db, migrationsPath, *seeds)

	switch flag.Arg(0) {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}
