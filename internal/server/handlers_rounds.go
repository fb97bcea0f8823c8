package server

import (
	"net/http"

	"github.com/google/uuid"
)

type submitResponseRequest struct {
	Content  string `json:"content"`
	MediaURL string `json:"media_url"`
}

type castVoteRequest struct {
	ResponseID uint   `json:"response_id"`
	Type       string `json:"type"`
}

// roundRequest pulls the authenticated user and both path IDs shared by
// the round endpoints.
func (s *Server) roundRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uint, uint, bool) {
	userID, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return uuid.Nil, 0, 0, false
	}
	roomID, ok := pathID(r, "roomID")
	if !ok {
		http.NotFound(w, r)
		return uuid.Nil, 0, 0, false
	}
	roundID, ok := pathID(r, "roundID")
	if !ok {
		http.NotFound(w, r)
		return uuid.Nil, 0, 0, false
	}
	return userID, roomID, roundID, true
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	userID, roomID, roundID, ok := s.roundRequest(w, r)
	if !ok {
		return
	}
	var req submitResponseRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.game.SubmitResponse(r.Context(), userID, roomID, roundID, req.Content, req.MediaURL)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"response_id":   result.Response.ID,
		"all_submitted": result.AllSubmitted,
	})
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID, roomID, roundID, ok := s.roundRequest(w, r)
	if !ok {
		return
	}
	var req castVoteRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.game.CastVote(r.Context(), userID, roomID, roundID, req.ResponseID, req.Type)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"action":         result.Action,
		"upvotes_left":   result.UpvotesLeft,
		"downvotes_left": result.DownvotesLeft,
	})
}

func (s *Server) handleCloseVoting(w http.ResponseWriter, r *http.Request) {
	userID, roomID, roundID, ok := s.roundRequest(w, r)
	if !ok {
		return
	}
	result, err := s.game.CloseVoting(r.Context(), userID, roomID, roundID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	payload := map[string]any{
		"round":       result.RoundNumber,
		"room_status": result.RoomStatus,
	}
	if result.NextRound != nil {
		payload["next_round"] = map[string]any{
			"round_id": result.NextRound.ID,
			"number":   result.NextRound.Number,
			"status":   result.NextRound.Status,
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRecountVotes(w http.ResponseWriter, r *http.Request) {
	userID, roomID, roundID, ok := s.roundRequest(w, r)
	if !ok {
		return
	}
	repaired, err := s.game.RecountVotes(r.Context(), userID, roomID, roundID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repaired": repaired})
}
