package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"temix/internal/config"
	"temix/internal/db"
	"temix/internal/server"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	sqlDB, err := conn.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle unavailable")
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)

	if err := db.Migrate(conn); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	srv := server.New(conn, cfg, log)
	log.Info().Str("addr", cfg.Addr).Msg("temix server listening")
	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
