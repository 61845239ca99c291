package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/service"
	"github.com/hackmaze/quizmaze/game/session"
	"github.com/hackmaze/quizmaze/game/store"
	"github.com/hackmaze/quizmaze/transport/websocket"
)

// Server is the REST API server. Game state never appears raw on the
// wire; clients only see views and command outputs.
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	log     *logrus.Logger
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Game lifecycle
	api.HandleFunc("/games", s.handleCreateGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")

	// Play
	api.HandleFunc("/games/{id}/command", s.handleCommand).Methods("POST")
	api.HandleFunc("/games/{id}/view", s.handleView).Methods("GET")

	// Leaderboard and content
	api.HandleFunc("/scores", s.handleTopScores).Methods("GET")
	api.HandleFunc("/mazes", s.handleListMazes).Methods("GET")

	// WebSocket watchers
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP statuses: missing things are
// 404, a saved game that no longer matches its maze is a 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrVersionMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Game lifecycle handlers

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle string `json:"handle"`
		Maze   string `json:"maze,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	info, err := s.service.CreateGame(r.Context(), req.Handle, req.Maze)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	info, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// Play handlers

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req struct {
		Verb string   `json:"verb"`
		Args []string `json:"args,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Verb == "" {
		respondError(w, http.StatusBadRequest, "verb is required")
		return
	}

	out, err := s.service.Execute(r.Context(), gameID, engine.Command{Verb: req.Verb, Args: req.Args})
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastOutput(gameID, out)
	}

	s.log.WithFields(logrus.Fields{
		"game_id": gameID,
		"verb":    req.Verb,
		"pos":     out.View.Pos,
		"moves":   out.View.MoveCount,
	}).Debug("command executed")

	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	view, err := s.service.View(r.Context(), gameID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// Leaderboard and content handlers

func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 10
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	scores, err := s.service.TopScores(r.Context(), query.Get("maze_id"), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(scores),
		"scores": scores,
	})
}

func (s *Server) handleListMazes(w http.ResponseWriter, r *http.Request) {
	mazes, err := s.service.ListMazes(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, mazes)
}

// WebSocket handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "game parameter required", http.StatusBadRequest)
		return
	}

	// The game must exist before anyone can watch it.
	if _, err := s.service.GetGame(r.Context(), gameID); err != nil {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, gameID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
