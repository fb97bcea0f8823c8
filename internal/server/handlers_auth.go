package server

import (
	"net/http"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.game.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.game.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	user, err := s.game.GetUser(r.Context(), userID)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"image_url": user.ImageURL,
	})
}
