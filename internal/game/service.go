package game

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Service implements the game core against the relational store. Every
// state transition runs as one transaction so multi-step updates (count
// responses then flip status, tally then advance) apply atomically.
type Service struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewService(conn *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{db: conn, log: logger}
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
