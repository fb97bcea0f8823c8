package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Room status values. Transitions are monotonic: WAITING -> PLAYING -> FINISHED.
const (
	RoomWaiting  = "WAITING"
	RoomPlaying  = "PLAYING"
	RoomFinished = "FINISHED"
)

// Round status values. Transitions are monotonic: SUBMITTING -> VOTING -> FINISHED.
const (
	RoundSubmitting = "SUBMITTING"
	RoundVoting     = "VOTING"
	RoundFinished   = "FINISHED"
)

const (
	VoteUp   = "UPVOTE"
	VoteDown = "DOWNVOTE"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"size:64;not null"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	ImageURL     string    `gorm:"size:512"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type Room struct {
	ID                 uint           `gorm:"primaryKey"`
	Name               string         `gorm:"size:64;not null"`
	JoinCode           string         `gorm:"size:12;uniqueIndex;not null"`
	Status             string         `gorm:"size:16;not null"`
	MaxPlayers         int            `gorm:"not null"`
	TotalRounds        int            `gorm:"not null"`
	UpvotesPerPlayer   int            `gorm:"not null"`
	DownvotesPerPlayer int            `gorm:"not null"`
	AllowedCategories  datatypes.JSON `gorm:"not null"`
	CreatorID          uuid.UUID      `gorm:"type:uuid;index;not null"`
	CreatedAt          time.Time      `gorm:"not null"`
	UpdatedAt          time.Time      `gorm:"not null"`
	Players            []RoomPlayer
	Rounds             []Round
	Events             []Event
}

// RoomPlayer links a user to a room and carries the cumulative score.
// JoinedAt doubles as the ranking tie-break: earliest join wins ties.
type RoomPlayer struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null;uniqueIndex:idx_room_players_room_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_players_room_user"`
	Score     int       `gorm:"not null;default:0"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Theme struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:140;not null"`
	Description string    `gorm:"size:280"`
	Category    string    `gorm:"size:16;index;not null"`
	IsSystem    bool      `gorm:"not null;default:false"`
	RoomID      *uint     `gorm:"index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Round struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null;uniqueIndex:idx_rounds_room_number"`
	Number    int       `gorm:"not null;uniqueIndex:idx_rounds_room_number"`
	ThemeID   uint      `gorm:"index;not null"`
	Status    string    `gorm:"size:16;not null"`
	StartedAt time.Time `gorm:"not null"`
	EndedAt   *time.Time
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Responses []Response
}

// Response carries denormalized vote counters so score reads stay O(1).
// The counters change in the same transaction as the vote rows.
type Response struct {
	ID          uint      `gorm:"primaryKey"`
	RoundID     uint      `gorm:"index;not null;uniqueIndex:idx_responses_round_user"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_responses_round_user"`
	Content     string    `gorm:"size:500;not null"`
	MediaURL    string    `gorm:"size:512"`
	Upvotes     int       `gorm:"not null;default:0"`
	Downvotes   int       `gorm:"not null;default:0"`
	SubmittedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Votes       []Vote
}

type Vote struct {
	ID         uint      `gorm:"primaryKey"`
	ResponseID uint      `gorm:"index;not null;uniqueIndex:idx_votes_response_voter"`
	VoterID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_response_voter"`
	RoundID    uint      `gorm:"index;not null"`
	Type       string    `gorm:"size:8;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    uint           `gorm:"index;not null"`
	RoundID   *uint          `gorm:"index"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
