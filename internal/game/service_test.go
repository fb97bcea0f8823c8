package game

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"temix/internal/db"
)

// newTestService opens a per-test in-memory sqlite database so unique
// constraints and transactions behave like the real store.
func newTestService(t *testing.T) *Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return NewService(conn, zerolog.Nop())
}

func registerTestUser(t *testing.T, s *Service, name string) uuid.UUID {
	t.Helper()
	email := strings.ToLower(name) + "@example.com"
	user, err := s.RegisterUser(context.Background(), name, email, "password1")
	if err != nil {
		t.Fatalf("register user %s: %v", name, err)
	}
	return user.ID
}

func testRoomInput(categories ...string) CreateRoomInput {
	if len(categories) == 0 {
		categories = []string{CategoryText}
	}
	return CreateRoomInput{
		Name:               "Friday Night",
		MaxPlayers:         4,
		TotalRounds:        3,
		UpvotesPerPlayer:   3,
		DownvotesPerPlayer: 1,
		AllowedCategories:  categories,
	}
}

func createTestRoom(t *testing.T, s *Service, creator uuid.UUID, in CreateRoomInput) *db.Room {
	t.Helper()
	room, err := s.CreateRoom(context.Background(), creator, in)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func mustKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected error kind %d, got %d (%v)", want, got, err)
	}
}

// submitAll pushes one response per member so the round flips to VOTING.
func submitAll(t *testing.T, s *Service, roomID, roundID uint, users []uuid.UUID) map[uuid.UUID]uint {
	t.Helper()
	responses := make(map[uuid.UUID]uint, len(users))
	for i, userID := range users {
		result, err := s.SubmitResponse(context.Background(), userID, roomID, roundID, fmt.Sprintf("entry %d", i+1), "")
		if err != nil {
			t.Fatalf("submit response for player %d: %v", i+1, err)
		}
		responses[userID] = result.Response.ID
		wantAll := i == len(users)-1
		if result.AllSubmitted != wantAll {
			t.Fatalf("expected all_submitted=%t after submission %d, got %t", wantAll, i+1, result.AllSubmitted)
		}
	}
	return responses
}

func currentRoundID(t *testing.T, s *Service, roomID uint) uint {
	t.Helper()
	snapshot, err := s.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if snapshot.CurrentRound == nil {
		t.Fatal("expected a current round")
	}
	return snapshot.CurrentRound.ID
}
