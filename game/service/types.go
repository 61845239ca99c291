package service

import (
	"time"

	"github.com/hackmaze/quizmaze/game/engine"
)

// GameInfo describes one game to API clients.
type GameInfo struct {
	GameID         string          `json:"game_id"`
	PlayerID       string          `json:"player_id"`
	Handle         string          `json:"handle,omitempty"`
	MazeID         string          `json:"maze_id"`
	MazeVersion    string          `json:"maze_version"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	View           engine.GameView `json:"view"`
}

// MazeInfo describes one loadable maze.
type MazeInfo struct {
	// Name is the identifier to pass when creating a game.
	Name     string `json:"name"`
	Filename string `json:"filename,omitempty"`
	MazeID   string `json:"maze_id"`
	Version  string `json:"maze_version"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}
