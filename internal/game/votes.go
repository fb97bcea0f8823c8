package game

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"temix/internal/db"
)

// Vote actions reported back to the caller.
const (
	VoteActionCast      = "cast"
	VoteActionRetracted = "retracted"
	VoteActionSwitched  = "switched"
)

type VoteResult struct {
	Action        string
	UpvotesLeft   int
	DownvotesLeft int
}

func counterColumn(voteType string) string {
	if voteType == db.VoteUp {
		return "upvotes"
	}
	return "downvotes"
}

func budgetFor(room *db.Room, voteType string) int {
	if voteType == db.VoteUp {
		return room.UpvotesPerPlayer
	}
	return room.DownvotesPerPlayer
}

func budgetExhaustedMessage(voteType string) string {
	if voteType == db.VoteUp {
		return "no upvotes left"
	}
	return "no downvotes left"
}

func bumpCounter(tx *gorm.DB, responseID uint, voteType string, delta int) error {
	column := counterColumn(voteType)
	return tx.Model(&db.Response{}).
		Where("id = ?", responseID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func countVotes(tx *gorm.DB, roundID uint, voterID uuid.UUID, voteType string) (int64, error) {
	var count int64
	err := tx.Model(&db.Vote{}).
		Where("round_id = ? AND voter_id = ? AND type = ?", roundID, voterID, voteType).
		Count(&count).Error
	return count, err
}

// CastVote applies one bounded vote. Repeating the same vote retracts it;
// voting the other way on the same response switches, releasing the old
// budget unit and consuming one of the new type. The vote row and the
// response's denormalized counters change in the same transaction.
func (s *Service) CastVote(ctx context.Context, voterID uuid.UUID, roomID, roundID, responseID uint, voteType string) (*VoteResult, error) {
	if voteType != db.VoteUp && voteType != db.VoteDown {
		return nil, validationf("vote type must be UPVOTE or DOWNVOTE")
	}

	var result VoteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Share lock on the round: concurrent votes proceed, but a close
		// in flight drains them before tallying.
		var round db.Round
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&round, roundID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return notFoundf("round not found")
			}
			return err
		}
		if round.RoomID != roomID {
			return validationf("invalid round")
		}
		if round.Status != db.RoundVoting {
			return conflictf("round is not in voting")
		}
		var response db.Response
		if err := tx.First(&response, responseID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return notFoundf("response not found")
			}
			return err
		}
		if response.RoundID != round.ID {
			return validationf("invalid response")
		}
		// Locking the voter's membership row serializes their votes in
		// this room, so the budget count below cannot run twice before
		// either insert commits.
		var member db.RoomPlayer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ? AND user_id = ?", roomID, voterID).First(&member).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return forbiddenf("you are not in this room")
			}
			return err
		}
		if response.UserID == voterID {
			return forbiddenf("you cannot vote on your own response")
		}
		var room db.Room
		if err := tx.First(&room, roomID).Error; err != nil {
			return err
		}

		var existing db.Vote
		err := tx.Where("response_id = ? AND voter_id = ?", responseID, voterID).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			used, err := countVotes(tx, round.ID, voterID, voteType)
			if err != nil {
				return err
			}
			if used >= int64(budgetFor(&room, voteType)) {
				return conflictf("%s", budgetExhaustedMessage(voteType))
			}
			vote := db.Vote{
				ResponseID: responseID,
				VoterID:    voterID,
				RoundID:    round.ID,
				Type:       voteType,
			}
			if err := tx.Create(&vote).Error; err != nil {
				if db.IsUniqueViolation(err) {
					return conflictf("vote already submitted")
				}
				return err
			}
			if err := bumpCounter(tx, responseID, voteType, 1); err != nil {
				return err
			}
			result.Action = VoteActionCast
		case err != nil:
			return err
		case existing.Type == voteType:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := bumpCounter(tx, responseID, voteType, -1); err != nil {
				return err
			}
			result.Action = VoteActionRetracted
		default:
			used, err := countVotes(tx, round.ID, voterID, voteType)
			if err != nil {
				return err
			}
			if used >= int64(budgetFor(&room, voteType)) {
				return conflictf("%s", budgetExhaustedMessage(voteType))
			}
			if err := tx.Model(&db.Vote{}).Where("id = ?", existing.ID).Update("type", voteType).Error; err != nil {
				return err
			}
			if err := bumpCounter(tx, responseID, existing.Type, -1); err != nil {
				return err
			}
			if err := bumpCounter(tx, responseID, voteType, 1); err != nil {
				return err
			}
			result.Action = VoteActionSwitched
		}

		upUsed, err := countVotes(tx, round.ID, voterID, db.VoteUp)
		if err != nil {
			return err
		}
		downUsed, err := countVotes(tx, round.ID, voterID, db.VoteDown)
		if err != nil {
			return err
		}
		result.UpvotesLeft = room.UpvotesPerPlayer - int(upUsed)
		result.DownvotesLeft = room.DownvotesPerPlayer - int(downUsed)

		return appendEvent(tx, roomID, &round.ID, &voterID, "vote_"+result.Action, map[string]any{
			"response_id": responseID,
			"type":        voteType,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Uint("room_id", roomID).
		Uint("round_id", roundID).
		Uint("response_id", responseID).
		Str("action", result.Action).
		Msg("vote recorded")
	return &result, nil
}

// RecountVotes recomputes the denormalized counters from the vote rows.
// The counters are kept in step transactionally, so this is an integrity
// check and repair tool, not part of normal play. Only the host may run
// it.
func (s *Service) RecountVotes(ctx context.Context, userID uuid.UUID, roomID, roundID uint) (int, error) {
	repaired := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var round db.Round
		if err := tx.First(&round, roundID).Error; err != nil {
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
			return forbiddenf("only the host can recount votes")
		}
		var responses []db.Response
		if err := tx.Where("round_id = ?", round.ID).Find(&responses).Error; err != nil {
			return err
		}
		for _, response := range responses {
			var up, down int64
			if err := tx.Model(&db.Vote{}).Where("response_id = ? AND type = ?", response.ID, db.VoteUp).Count(&up).Error; err != nil {
				return err
			}
			if err := tx.Model(&db.Vote{}).Where("response_id = ? AND type = ?", response.ID, db.VoteDown).Count(&down).Error; err != nil {
				return err
			}
			if int(up) == response.Upvotes && int(down) == response.Downvotes {
				continue
			}
			updates := map[string]any{"upvotes": up, "downvotes": down}
			if err := tx.Model(&db.Response{}).Where("id = ?", response.ID).UpdateColumns(updates).Error; err != nil {
				return err
			}
			repaired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if repaired > 0 {
		s.log.Warn().Uint("round_id", roundID).Int("repaired", repaired).Msg("vote counters repaired")
	}
	return repaired, nil
}
