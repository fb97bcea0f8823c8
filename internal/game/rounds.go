package game

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"temix/internal/db"
)

const maxContentLength = 500

type SubmitResult struct {
	Response     db.Response
	AllSubmitted bool
}

func validateMediaURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return validationf("invalid media url")
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return validationf("invalid media url")
	}
	return nil
}

// SubmitResponse records the player's submission for the round and, when
// every member has submitted, flips the round to VOTING. The count and
// the status flip happen in one transaction so two simultaneous final
// submissions cannot advance the round twice.
func (s *Service) SubmitResponse(ctx context.Context, userID uuid.UUID, roomID, roundID uint, content, mediaURL string) (*SubmitResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationf("content is required")
	}
	if len(content) > maxContentLength {
		return nil, validationf("content must be %d characters or fewer", maxContentLength)
	}
	mediaURL = strings.TrimSpace(mediaURL)

	var result SubmitResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock on the round serializes submissions, so the count
		// below always sees every earlier submission and the last one in
		// flips the round.
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
		var member db.RoomPlayer
		if err := tx.Where("room_id = ? AND user_id = ?", roomID, userID).First(&member).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return forbiddenf("you are not in this room")
			}
			return err
		}
		if round.Status != db.RoundSubmitting {
			return conflictf("round is not accepting submissions")
		}
		var existing int64
		if err := tx.Model(&db.Response{}).Where("round_id = ? AND user_id = ?", round.ID, userID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return conflictf("you already submitted a response")
		}
		if mediaURL != "" {
			var theme db.Theme
			if err := tx.First(&theme, round.ThemeID).Error; err != nil {
				return err
			}
			if theme.Category != CategoryText {
				if err := validateMediaURL(mediaURL); err != nil {
					return err
				}
			}
		}

		response := db.Response{
			RoundID:     round.ID,
			UserID:      userID,
			Content:     content,
			MediaURL:    mediaURL,
			SubmittedAt: timeNowUTC(),
		}
		if err := tx.Create(&response).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return conflictf("you already submitted a response")
			}
			return err
		}
		result.Response = response

		var submitted, members int64
		if err := tx.Model(&db.Response{}).Where("round_id = ?", round.ID).Count(&submitted).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.RoomPlayer{}).Where("room_id = ?", roomID).Count(&members).Error; err != nil {
			return err
		}
		if err := appendEvent(tx, roomID, &round.ID, &userID, "response_submitted", map[string]any{
			"response_id": response.ID,
		}); err != nil {
			return err
		}
		if submitted < members {
			return nil
		}
		result.AllSubmitted = true

		// Conditional update so two simultaneous final submissions
		// cannot flip the round twice.
		flip := tx.Model(&db.Round{}).
			Where("id = ? AND status = ?", round.ID, db.RoundSubmitting).
			Update("status", db.RoundVoting)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return nil
		}
		return appendEvent(tx, roomID, &round.ID, nil, "round_voting", map[string]any{
			"round": round.Number,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Uint("room_id", roomID).
		Uint("round_id", roundID).
		Bool("all_submitted", result.AllSubmitted).
		Msg("response submitted")
	return &result, nil
}
