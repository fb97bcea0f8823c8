package game

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"temix/internal/db"
)

const (
	minRoomNameLength = 3
	minRoomPlayers    = 2
	maxRoomPlayers    = 20
	minRoomRounds     = 3
	maxRoomRounds     = 15
	maxVoteBudget     = 5
)

type CreateRoomInput struct {
	Name               string
	MaxPlayers         int
	TotalRounds        int
	UpvotesPerPlayer   int
	DownvotesPerPlayer int
	AllowedCategories  []string
}

func validateCreateRoom(in CreateRoomInput) (CreateRoomInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if len(in.Name) < minRoomNameLength {
		return in, validationf("room name must be at least %d characters", minRoomNameLength)
	}
	if in.MaxPlayers < minRoomPlayers || in.MaxPlayers > maxRoomPlayers {
		return in, validationf("max players must be between %d and %d", minRoomPlayers, maxRoomPlayers)
	}
	if in.TotalRounds < minRoomRounds || in.TotalRounds > maxRoomRounds {
		return in, validationf("total rounds must be between %d and %d", minRoomRounds, maxRoomRounds)
	}
	if in.UpvotesPerPlayer < 1 || in.UpvotesPerPlayer > maxVoteBudget {
		return in, validationf("upvotes per player must be between 1 and %d", maxVoteBudget)
	}
	if in.DownvotesPerPlayer < 1 || in.DownvotesPerPlayer > maxVoteBudget {
		return in, validationf("downvotes per player must be between 1 and %d", maxVoteBudget)
	}
	if len(in.AllowedCategories) == 0 {
		return in, validationf("at least one category must be selected")
	}
	for _, category := range in.AllowedCategories {
		if !isValidCategory(category) {
			return in, validationf("unknown category: %s", category)
		}
	}
	return in, nil
}

// CreateRoom validates the configuration, generates a unique join code
// and creates the room in WAITING with the creator as its first member.
func (s *Service) CreateRoom(ctx context.Context, userID uuid.UUID, in CreateRoomInput) (*db.Room, error) {
	in, err := validateCreateRoom(in)
	if err != nil {
		return nil, err
	}
	categories, err := json.Marshal(in.AllowedCategories)
	if err != nil {
		return nil, err
	}

	var room db.Room
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := generateJoinCode(tx)
		if err != nil {
			return err
		}
		room = db.Room{
			Name:               in.Name,
			JoinCode:           code,
			Status:             db.RoomWaiting,
			MaxPlayers:         in.MaxPlayers,
			TotalRounds:        in.TotalRounds,
			UpvotesPerPlayer:   in.UpvotesPerPlayer,
			DownvotesPerPlayer: in.DownvotesPerPlayer,
			AllowedCategories:  categories,
			CreatorID:          userID,
		}
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		member := db.RoomPlayer{RoomID: room.ID, UserID: userID, JoinedAt: timeNowUTC()}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return appendEvent(tx, room.ID, nil, &userID, "room_created", map[string]any{
			"name":      room.Name,
			"join_code": room.JoinCode,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("room_id", room.ID).Str("join_code", room.JoinCode).Msg("room created")
	return &room, nil
}

// JoinRoom adds the user to the room identified by code. Joining a room
// the user already belongs to succeeds without a second membership; the
// (room_id, user_id) unique index closes the race between identical
// concurrent joins.
func (s *Service) JoinRoom(ctx context.Context, userID uuid.UUID, code string) (*db.Room, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, validationf("room code is required")
	}

	var room db.Room
	joined := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("join_code = ?", normalized).First(&room).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return notFoundf("room not found")
			}
			return err
		}
		var existing db.RoomPlayer
		err := tx.Where("room_id = ? AND user_id = ?", room.ID, userID).First(&existing).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		var members int64
		if err := tx.Model(&db.RoomPlayer{}).Where("room_id = ?", room.ID).Count(&members).Error; err != nil {
			return err
		}
		if members >= int64(room.MaxPlayers) {
			return conflictf("room is full")
		}
		if room.Status != db.RoomWaiting {
			return conflictf("game already started")
		}
		member := db.RoomPlayer{RoomID: room.ID, UserID: userID, JoinedAt: timeNowUTC()}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// lost the race to an identical join
			return nil
		}
		joined = true
		return appendEvent(tx, room.ID, nil, &userID, "player_joined", map[string]any{
			"join_code": room.JoinCode,
		})
	})
	if err != nil {
		return nil, err
	}
	if joined {
		s.log.Info().Uint("room_id", room.ID).Str("user_id", userID.String()).Msg("player joined")
	}
	return &room, nil
}

// StartGame transitions the room WAITING -> PLAYING and creates round 1
// in SUBMITTING, atomically. Only the creator may start, and only once.
func (s *Service) StartGame(ctx context.Context, userID uuid.UUID, roomID uint) (*db.Round, error) {
	var round db.Round
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room db.Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return notFoundf("room not found")
			}
			return err
		}
		if room.CreatorID != userID {
			return forbiddenf("only the host can start the game")
		}
		if room.Status != db.RoomWaiting {
			return conflictf("game already started")
		}
		var members int64
		if err := tx.Model(&db.RoomPlayer{}).Where("room_id = ?", room.ID).Count(&members).Error; err != nil {
			return err
		}
		if members < minRoomPlayers {
			return conflictf("need at least %d players to start", minRoomPlayers)
		}
		theme, err := pickRoundTheme(tx, &room, 1)
		if err != nil {
			return err
		}
		// Compare-and-swap on status: a concurrent start loses here.
		result := tx.Model(&db.Room{}).
			Where("id = ? AND status = ?", room.ID, db.RoomWaiting).
			Update("status", db.RoomPlaying)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflictf("game already started")
		}
		round = db.Round{
			RoomID:    room.ID,
			Number:    1,
			ThemeID:   theme.ID,
			Status:    db.RoundSubmitting,
			StartedAt: timeNowUTC(),
		}
		if err := tx.Create(&round).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return conflictf("game already started")
			}
			return err
		}
		return appendEvent(tx, room.ID, &round.ID, &userID, "game_started", map[string]any{
			"round": round.Number,
			"theme": theme.Title,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("room_id", roomID).Int("round", round.Number).Msg("game started")
	return &round, nil
}
