package game

import (
	"context"
	"testing"

	"temix/internal/db"
)

func TestCloseVotingOnlyHost(t *testing.T) {
	s := newTestService(t)
	room, roundID, users, _ := votingRoom(t, s)

	_, err := s.CloseVoting(context.Background(), users[1], room.ID, roundID)
	mustKind(t, err, KindForbidden)
}

func TestCloseVotingDuringSubmitting(t *testing.T) {
	s := newTestService(t)
	room, roundID, users := startedRoom(t, s, testRoomInput(), "Ada", "Ben")

	_, err := s.CloseVoting(context.Background(), users[0], room.ID, roundID)
	mustKind(t, err, KindConflict)
}

func TestCloseVotingTwice(t *testing.T) {
	s := newTestService(t)
	room, roundID, users, _ := votingRoom(t, s)

	if _, err := s.CloseVoting(context.Background(), users[0], room.ID, roundID); err != nil {
		t.Fatalf("first close: %v", err)
	}
	_, err := s.CloseVoting(context.Background(), users[0], room.ID, roundID)
	mustKind(t, err, KindConflict)
	if err.Error() != "voting already closed" {
		t.Fatalf("expected %q, got %q", "voting already closed", err.Error())
	}
}

func TestCloseVotingFoldsScores(t *testing.T) {
	s := newTestService(t)
	room, roundID, users, responses := votingRoom(t, s)

	// Ben's entry collects two upvotes, Cleo's one downvote
	if _, err := s.CastVote(context.Background(), users[0], room.ID, roundID, responses[users[1]], db.VoteUp); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := s.CastVote(context.Background(), users[2], room.ID, roundID, responses[users[1]], db.VoteUp); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := s.CastVote(context.Background(), users[1], room.ID, roundID, responses[users[2]], db.VoteDown); err != nil {
		t.Fatalf("vote: %v", err)
	}

	result, err := s.CloseVoting(context.Background(), users[0], room.ID, roundID)
	if err != nil {
		t.Fatalf("close voting: %v", err)
	}
	if result.RoundNumber != 1 || result.RoomStatus != db.RoomPlaying {
		t.Fatalf("expected round 1 closed with the room still playing, got %+v", result)
	}
	if result.NextRound == nil || result.NextRound.Number != 2 || result.NextRound.Status != db.RoundSubmitting {
		t.Fatalf("expected round 2 in SUBMITTING, got %#v", result.NextRound)
	}

	standings, err := s.FinalRanking(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(standings))
	}
	if standings[0].UserID != users[1] || standings[0].Score != 2 {
		t.Fatalf("expected Ben leading with 2, got %+v", standings[0])
	}
	if standings[2].UserID != users[2] || standings[2].Score != -1 {
		t.Fatalf("expected Cleo last with -1, got %+v", standings[2])
	}
}

func TestFullGameFinishesRoom(t *testing.T) {
	s := newTestService(t)
	in := testRoomInput()
	in.MaxPlayers = 2
	room, _, users := startedRoom(t, s, in, "Ada", "Ben")

	for round := 1; round <= in.TotalRounds; round++ {
		roundID := currentRoundID(t, s, room.ID)
		responses := submitAll(t, s, room.ID, roundID, users)
		// Ada upvotes Ben every round
		if _, err := s.CastVote(context.Background(), users[0], room.ID, roundID, responses[users[1]], db.VoteUp); err != nil {
			t.Fatalf("round %d vote: %v", round, err)
		}
		result, err := s.CloseVoting(context.Background(), users[0], room.ID, roundID)
		if err != nil {
			t.Fatalf("round %d close: %v", round, err)
		}
		if round < in.TotalRounds {
			if result.RoomStatus != db.RoomPlaying || result.NextRound == nil {
				t.Fatalf("round %d: expected a next round, got %+v", round, result)
			}
		} else {
			if result.RoomStatus != db.RoomFinished || result.NextRound != nil {
				t.Fatalf("final round: expected the room finished, got %+v", result)
			}
		}
	}

	snapshot, err := s.GetRoom(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if snapshot.Status != db.RoomFinished {
		t.Fatalf("expected FINISHED room, got %s", snapshot.Status)
	}

	standings, err := s.FinalRanking(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if standings[0].UserID != users[1] || standings[0].Score != in.TotalRounds {
		t.Fatalf("expected Ben winning with %d, got %+v", in.TotalRounds, standings[0])
	}
	if standings[0].Rank != 1 || standings[1].Rank != 2 {
		t.Fatalf("expected ranks 1 and 2, got %d and %d", standings[0].Rank, standings[1].Rank)
	}
}

func TestFinalRankingTieKeepsJoinOrder(t *testing.T) {
	s := newTestService(t)
	room, _, users, _ := votingRoom(t, s)

	standings, err := s.FinalRanking(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(standings))
	}
	for i, userID := range users {
		if standings[i].UserID != userID {
			t.Fatalf("tied standings must keep join order, got %+v", standings)
		}
		if standings[i].Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, standings[i].Rank)
		}
	}
}

func TestFinalRankingUnknownRoom(t *testing.T) {
	s := newTestService(t)
	_, err := s.FinalRanking(context.Background(), 404)
	mustKind(t, err, KindNotFound)
}
