package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"temix/internal/game"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeGameError maps domain error kinds to HTTP statuses. Conflicts are
// reported as 400 like other client mistakes so polling clients handle one
// failure shape. Unclassified errors stay opaque.
func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	switch game.KindOf(err) {
	case game.KindUnauthorized:
		writeError(w, http.StatusUnauthorized, err.Error())
	case game.KindForbidden:
		writeError(w, http.StatusForbidden, err.Error())
	case game.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case game.KindValidation, game.KindConflict:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request, name string) (uint, bool) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}
