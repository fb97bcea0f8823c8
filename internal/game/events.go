package game

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"temix/internal/db"
)

// appendEvent writes an audit-log row inside the caller's transaction so
// the log never records a transition that rolled back.
func appendEvent(tx *gorm.DB, roomID uint, roundID *uint, userID *uuid.UUID, eventType string, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		RoomID:  roomID,
		RoundID: roundID,
		UserID:  userID,
		Type:    eventType,
		Payload: datatypes.JSON(data),
	}
	return tx.Create(&event).Error
}

// ListEvents returns the room's audit trail in insertion order.
func (s *Service) ListEvents(ctx context.Context, roomID uint) ([]db.Event, error) {
	conn := s.db.WithContext(ctx)
	var room db.Room
	if err := conn.First(&room, roomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundf("room not found")
		}
		return nil, err
	}
	var events []db.Event
	if err := conn.Where("room_id = ?", roomID).Order("id asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
