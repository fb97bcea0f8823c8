package game

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"temix/internal/db"
)

type CloseResult struct {
	RoundNumber int
	RoomStatus  string
	NextRound   *db.Round
}

type Standing struct {
	Rank   int       `json:"rank"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Score  int       `json:"score"`
}

// CloseVoting is the host's explicit advancement trigger. In one
// transaction it finishes the round, folds each response's upvotes minus
// downvotes into its author's cumulative score, and either starts the
// next round or finishes the room when the configured count is reached.
func (s *Service) CloseVoting(ctx context.Context, userID uuid.UUID, roomID, roundID uint) (*CloseResult, error) {
	var result CloseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Exclusive lock on the round: in-flight votes hold a share lock,
		// so the tally below only starts once they have committed and no
		// later vote can slip in between tally and finish.
		var round db.Round
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&round, roundID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return notFoundf("round not found")
			}
			return err
		}
		if round.RoomID != roomID {
			return validationf("invalid round")
		}
		var room db.Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return notFoundf("room not found")
			}
			return err
		}
		if room.CreatorID != userID {
			return forbiddenf("only the host can close voting")
		}
		if round.Status == db.RoundSubmitting {
			return conflictf("round is not in voting")
		}
		now := timeNowUTC()
		// Compare-and-swap: a concurrent close loses here, so the tally
		// is applied exactly once.
		finish := tx.Model(&db.Round{}).
			Where("id = ? AND status = ?", round.ID, db.RoundVoting).
			Updates(map[string]any{"status": db.RoundFinished, "ended_at": now})
		if finish.Error != nil {
			return finish.Error
		}
		if finish.RowsAffected == 0 {
			return conflictf("voting already closed")
		}

		var responses []db.Response
		if err := tx.Where("round_id = ?", round.ID).Find(&responses).Error; err != nil {
			return err
		}
		for _, response := range responses {
			delta := response.Upvotes - response.Downvotes
			if delta == 0 {
				continue
			}
			err := tx.Model(&db.RoomPlayer{}).
				Where("room_id = ? AND user_id = ?", roomID, response.UserID).
				UpdateColumn("score", gorm.Expr("score + ?", delta)).Error
			if err != nil {
				return err
			}
		}
		if err := appendEvent(tx, roomID, &round.ID, &userID, "voting_closed", map[string]any{
			"round":     round.Number,
			"responses": len(responses),
		}); err != nil {
			return err
		}
		result.RoundNumber = round.Number

		if round.Number >= room.TotalRounds {
			finishRoom := tx.Model(&db.Room{}).
				Where("id = ? AND status = ?", roomID, db.RoomPlaying).
				Update("status", db.RoomFinished)
			if finishRoom.Error != nil {
				return finishRoom.Error
			}
			if finishRoom.RowsAffected == 0 {
				return conflictf("game already finished")
			}
			result.RoomStatus = db.RoomFinished
			return appendEvent(tx, roomID, &round.ID, nil, "game_finished", map[string]any{
				"rounds": round.Number,
			})
		}

		theme, err := pickRoundTheme(tx, &room, round.Number+1)
		if err != nil {
			return err
		}
		next := db.Round{
			RoomID:    roomID,
			Number:    round.Number + 1,
			ThemeID:   theme.ID,
			Status:    db.RoundSubmitting,
			StartedAt: now,
		}
		if err := tx.Create(&next).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return conflictf("voting already closed")
			}
			return err
		}
		result.RoomStatus = db.RoomPlaying
		result.NextRound = &next
		return appendEvent(tx, roomID, &next.ID, nil, "round_started", map[string]any{
			"round": next.Number,
			"theme": theme.Title,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Uint("room_id", roomID).
		Int("round", result.RoundNumber).
		Str("room_status", result.RoomStatus).
		Msg("voting closed")
	return &result, nil
}

// FinalRanking orders the room's players by cumulative score descending.
// Equal scores keep join order, earliest first.
func (s *Service) FinalRanking(ctx context.Context, roomID uint) ([]Standing, error) {
	conn := s.db.WithContext(ctx)
	var room db.Room
	if err := conn.First(&room, roomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundf("room not found")
		}
		return nil, err
	}
	var members []db.RoomPlayer
	err := conn.Where("room_id = ?", roomID).
		Order("score desc, joined_at asc, id asc").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	standings := make([]Standing, 0, len(members))
	for i, member := range members {
		var user db.User
		if err := conn.First(&user, "id = ?", member.UserID).Error; err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		standings = append(standings, Standing{
			Rank:   i + 1,
			UserID: member.UserID,
			Name:   user.Name,
			Score:  member.Score,
		})
	}
	return standings, nil
}
