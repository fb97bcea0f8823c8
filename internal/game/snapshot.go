package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"temix/internal/db"
)

type RoomSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	JoinCode    string `json:"join_code"`
	Status      string `json:"status"`
	Players     int    `json:"players"`
	MaxPlayers  int    `json:"max_players"`
	TotalRounds int    `json:"total_rounds"`
	CreatorName string `json:"creator_name"`
}

type PlayerInfo struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

type ThemeInfo struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

type ResponseInfo struct {
	ID         uint      `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	MediaURL   string    `json:"media_url,omitempty"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
}

type RoundInfo struct {
	ID        uint           `json:"id"`
	Number    int            `json:"number"`
	Status    string         `json:"status"`
	Theme     ThemeInfo      `json:"theme"`
	Responses []ResponseInfo `json:"responses"`
}

type RoomSnapshot struct {
	ID                 uint         `json:"id"`
	Name               string       `json:"name"`
	JoinCode           string       `json:"join_code"`
	Status             string       `json:"status"`
	MaxPlayers         int          `json:"max_players"`
	TotalRounds        int          `json:"total_rounds"`
	UpvotesPerPlayer   int          `json:"upvotes_per_player"`
	DownvotesPerPlayer int          `json:"downvotes_per_player"`
	AllowedCategories  []string     `json:"allowed_categories"`
	CreatorID          uuid.UUID    `json:"creator_id"`
	Players            []PlayerInfo `json:"players"`
	CurrentRound       *RoundInfo   `json:"current_round,omitempty"`
}

// ListOpenRooms returns rooms still accepting players, newest first.
func (s *Service) ListOpenRooms(ctx context.Context) ([]RoomSummary, error) {
	conn := s.db.WithContext(ctx)
	var rooms []db.Room
	if err := conn.Where("status = ?", db.RoomWaiting).Order("id desc").Find(&rooms).Error; err != nil {
		return nil, err
	}
	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		var members int64
		if err := conn.Model(&db.RoomPlayer{}).Where("room_id = ?", room.ID).Count(&members).Error; err != nil {
			return nil, err
		}
		var creator db.User
		if err := conn.First(&creator, "id = ?", room.CreatorID).Error; err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		summaries = append(summaries, RoomSummary{
			ID:          room.ID,
			Name:        room.Name,
			JoinCode:    room.JoinCode,
			Status:      room.Status,
			Players:     int(members),
			MaxPlayers:  room.MaxPlayers,
			TotalRounds: room.TotalRounds,
			CreatorName: creator.Name,
		})
	}
	return summaries, nil
}

// GetRoom builds the full room snapshot clients poll for: configuration,
// members with scores, and the latest round with its responses.
func (s *Service) GetRoom(ctx context.Context, roomID uint) (*RoomSnapshot, error) {
	conn := s.db.WithContext(ctx)
	var room db.Room
	if err := conn.First(&room, roomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundf("room not found")
		}
		return nil, err
	}
	categories, err := allowedCategories(&room)
	if err != nil {
		return nil, err
	}
	players, err := s.roomPlayers(conn, room.ID)
	if err != nil {
		return nil, err
	}
	snapshot := &RoomSnapshot{
		ID:                 room.ID,
		Name:               room.Name,
		JoinCode:           room.JoinCode,
		Status:             room.Status,
		MaxPlayers:         room.MaxPlayers,
		TotalRounds:        room.TotalRounds,
		UpvotesPerPlayer:   room.UpvotesPerPlayer,
		DownvotesPerPlayer: room.DownvotesPerPlayer,
		AllowedCategories:  categories,
		CreatorID:          room.CreatorID,
		Players:            players,
	}

	var round db.Round
	err = conn.Where("room_id = ?", room.ID).Order("number desc").First(&round).Error
	if err == gorm.ErrRecordNotFound {
		return snapshot, nil
	}
	if err != nil {
		return nil, err
	}
	info, err := s.roundInfo(conn, &round)
	if err != nil {
		return nil, err
	}
	snapshot.CurrentRound = info
	return snapshot, nil
}

func (s *Service) roomPlayers(conn *gorm.DB, roomID uint) ([]PlayerInfo, error) {
	var members []db.RoomPlayer
	if err := conn.Where("room_id = ?", roomID).Order("joined_at asc, id asc").Find(&members).Error; err != nil {
		return nil, err
	}
	players := make([]PlayerInfo, 0, len(members))
	for _, member := range members {
		var user db.User
		if err := conn.First(&user, "id = ?", member.UserID).Error; err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		players = append(players, PlayerInfo{
			UserID:   member.UserID,
			Name:     user.Name,
			Score:    member.Score,
			JoinedAt: member.JoinedAt,
		})
	}
	return players, nil
}

func (s *Service) roundInfo(conn *gorm.DB, round *db.Round) (*RoundInfo, error) {
	var theme db.Theme
	if err := conn.First(&theme, round.ThemeID).Error; err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	var records []db.Response
	if err := conn.Where("round_id = ?", round.ID).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	responses := make([]ResponseInfo, 0, len(records))
	for _, record := range records {
		var author db.User
		if err := conn.First(&author, "id = ?", record.UserID).Error; err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		responses = append(responses, ResponseInfo{
			ID:         record.ID,
			UserID:     record.UserID,
			AuthorName: author.Name,
			Content:    record.Content,
			MediaURL:   record.MediaURL,
			Upvotes:    record.Upvotes,
			Downvotes:  record.Downvotes,
		})
	}
	return &RoundInfo{
		ID:        round.ID,
		Number:    round.Number,
		Status:    round.Status,
		Theme: ThemeInfo{
			Title:       theme.Title,
			Description: theme.Description,
			Category:    theme.Category,
		},
		Responses: responses,
	}, nil
}
