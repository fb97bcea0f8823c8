package main

import (
	"flag"
	"log"
	"os"

	"temix/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	source := flag.String("source", "file://db/migrations", "migration source")
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	m, err := migrate.New(*source, mustDatabaseURL())
	if err != nil {
		log.Fatalf("migration setup failed: %v", err)
	}

	if *down > 0 {
		if err := m.Steps(-*down); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("rollback failed: %v", err)
		}
		log.Printf("rolled back %d migration(s)", *down)
		return
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("temix schema is up to date")
}

func mustDatabaseURL() string {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	return dsn
}
