package server

import (
	"net/http"

	"temix/internal/game"
)

type createRoomRequest struct {
	Name               string   `json:"name"`
	MaxPlayers         int      `json:"max_players"`
	TotalRounds        int      `json:"total_rounds"`
	UpvotesPerPlayer   int      `json:"upvotes_per_player"`
	DownvotesPerPlayer int      `json:"downvotes_per_player"`
	AllowedCategories  []string `json:"allowed_categories"`
}

type joinRoomRequest struct {
	JoinCode string `json:"join_code"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	room, err := s.game.CreateRoom(r.Context(), userID, game.CreateRoomInput{
		Name:               req.Name,
		MaxPlayers:         req.MaxPlayers,
		TotalRounds:        req.TotalRounds,
		UpvotesPerPlayer:   req.UpvotesPerPlayer,
		DownvotesPerPlayer: req.DownvotesPerPlayer,
		AllowedCategories:  req.AllowedCategories,
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"room_id":   room.ID,
		"join_code": room.JoinCode,
	})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.game.ListOpenRooms(r.Context())
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req joinRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	room, err := s.game.JoinRoom(r.Context(), userID, req.JoinCode)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":   room.ID,
		"join_code": room.JoinCode,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	snapshot, err := s.game.GetRoom(r.Context(), roomID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	roomID, ok := pathID(r, "roomID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	round, err := s.game.StartGame(r.Context(), userID, roomID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"round_id": round.ID,
		"number":   round.Number,
		"status":   round.Status,
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	standings, err := s.game.FinalRanking(r.Context(), roomID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"standings": standings})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	events, err := s.game.ListEvents(r.Context(), roomID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	payload := make([]map[string]any, 0, len(events))
	for _, event := range events {
		payload = append(payload, map[string]any{
			"id":         event.ID,
			"type":       event.Type,
			"round_id":   event.RoundID,
			"user_id":    event.UserID,
			"payload":    event.Payload,
			"created_at": event.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": payload})
}
