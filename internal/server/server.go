package server

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"temix/internal/auth"
	"temix/internal/config"
	"temix/internal/game"
)

type Server struct {
	game *game.Service
	auth *auth.Provider
	cfg  config.Config
	log  zerolog.Logger
}

func New(conn *gorm.DB, cfg config.Config, log zerolog.Logger) *Server {
	return &Server{
		game: game.NewService(conn, log),
		auth: auth.NewProvider(cfg.TokenSecret, cfg.TokenTTL),
		cfg:  cfg,
		log:  log,
	}
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireUser)
	authed.HandleFunc("/users/profile", s.handleProfile).Methods(http.MethodGet)
	authed.HandleFunc("/rooms", s.handleCreateRoom).Methods(http.MethodPost)
	authed.HandleFunc("/rooms", s.handleListRooms).Methods(http.MethodGet)
	authed.HandleFunc("/rooms/join", s.handleJoinRoom).Methods(http.MethodPost)
	authed.HandleFunc("/rooms/{roomID}", s.handleGetRoom).Methods(http.MethodGet)
	authed.HandleFunc("/rooms/{roomID}/start", s.handleStartGame).Methods(http.MethodPost)
	authed.HandleFunc("/rooms/{roomID}/results", s.handleResults).Methods(http.MethodGet)
	authed.HandleFunc("/rooms/{roomID}/events", s.handleEvents).Methods(http.MethodGet)
	authed.HandleFunc("/rooms/{roomID}/rounds/{roundID}/responses", s.handleSubmitResponse).Methods(http.MethodPost)
	authed.HandleFunc("/rooms/{roomID}/rounds/{roundID}/votes", s.handleCastVote).Methods(http.MethodPost)
	authed.HandleFunc("/rooms/{roomID}/rounds/{roundID}/close", s.handleCloseVoting).Methods(http.MethodPost)
	authed.HandleFunc("/rooms/{roomID}/rounds/{roundID}/recount", s.handleRecountVotes).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(&panicLogger{log: s.log}))
	return recovery(cors(s.logRequests(router)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type panicLogger struct {
	log zerolog.Logger
}

func (p *panicLogger) Println(v ...any) {
	p.log.Error().Interface("panic", v).Msg("handler panicked")
}
