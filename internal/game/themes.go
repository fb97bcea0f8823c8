package game

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"temix/internal/db"
)

const (
	CategoryText  = "TEXT"
	CategoryImage = "IMAGE"
	CategoryVideo = "VIDEO"
	CategoryAudio = "AUDIO"
)

var validCategories = map[string]struct{}{
	CategoryText:  {},
	CategoryImage: {},
	CategoryVideo: {},
	CategoryAudio: {},
}

func isValidCategory(category string) bool {
	_, ok := validCategories[category]
	return ok
}

func allowedCategories(room *db.Room) ([]string, error) {
	var categories []string
	if err := json.Unmarshal(room.AllowedCategories, &categories); err != nil {
		return nil, fmt.Errorf("room %d has malformed categories: %w", room.ID, err)
	}
	return categories, nil
}

// categoryForRound rotates through the room's allowed categories so every
// selected category gets a turn.
func categoryForRound(room *db.Room, number int) (string, error) {
	categories, err := allowedCategories(room)
	if err != nil {
		return "", err
	}
	if len(categories) == 0 {
		return "", fmt.Errorf("room %d has no allowed categories", room.ID)
	}
	return categories[(number-1)%len(categories)], nil
}

// pickRoundTheme prefers a system theme the room has not used yet and
// falls back to a generated room-authored theme.
func pickRoundTheme(tx *gorm.DB, room *db.Room, number int) (*db.Theme, error) {
	category, err := categoryForRound(room, number)
	if err != nil {
		return nil, err
	}

	used := tx.Model(&db.Round{}).Select("theme_id").Where("room_id = ?", room.ID)
	var theme db.Theme
	err = tx.Where("is_system = ? AND category = ?", true, category).
		Where("id NOT IN (?)", used).
		Order("id asc").
		First(&theme).Error
	if err == nil {
		return &theme, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	roomID := room.ID
	theme = db.Theme{
		Title:       fmt.Sprintf("Round %d theme", number),
		Description: "Submit your best content!",
		Category:    category,
		IsSystem:    false,
		RoomID:      &roomID,
	}
	if err := tx.Create(&theme).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}
