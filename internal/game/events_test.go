package game

import (
	"context"
	"testing"
)

func TestListEventsRecordsGameFlow(t *testing.T) {
	s := newTestService(t)
	room, roundID, users := startedRoom(t, s, testRoomInput(), "Ada", "Ben")
	submitAll(t, s, room.ID, roundID, users)

	events, err := s.ListEvents(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	// room_created, player_joined, game_started, two submissions, round_voting
	want := []string{
		"room_created",
		"player_joined",
		"game_started",
		"response_submitted",
		"response_submitted",
		"round_voting",
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, event := range events {
		if event.Type != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], event.Type)
		}
	}
}

func TestListEventsUnknownRoom(t *testing.T) {
	s := newTestService(t)
	_, err := s.ListEvents(context.Background(), 404)
	mustKind(t, err, KindNotFound)
}
