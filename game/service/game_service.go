package service

import (
	"context"
	"time"

	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/maze"
	"github.com/hackmaze/quizmaze/game/store"
)

// GameService defines all game-related operations exposed to the
// presentation layers (REST, websocket, MCP, and the terminal client).
type GameService interface {
	// Game lifecycle
	CreateGame(ctx context.Context, handle, mazeName string) (*GameInfo, error)
	GetGame(ctx context.Context, gameID string) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)

	// Play
	Execute(ctx context.Context, gameID string, cmd engine.Command) (*engine.GameOutput, error)
	View(ctx context.Context, gameID string) (*engine.GameView, error)

	// Leaderboard and content
	TopScores(ctx context.Context, mazeID string, limit int) ([]*store.ScoreRecord, error)
	ListMazes(ctx context.Context) ([]*MazeInfo, error)
}

// SessionManager defines in-memory session storage. Get resumes a
// persisted game transparently when no live session exists for it.
type SessionManager interface {
	Create(player *store.PlayerRecord, m *maze.Maze) (*Session, error)
	Get(gameID string) (*Session, error)
	List() []*Session
	Delete(gameID string) error
	UpdateLastAccessed(gameID string) error
	Count() int
}

// MazeManager handles maze content loading.
type MazeManager interface {
	LoadMaze(name string) (*maze.Maze, error)
	ListMazes() ([]*MazeInfo, error)
	GetDefault() *maze.Maze
	// FindMaze locates loaded content by identity, for resuming saved
	// games whose records carry only maze id and version.
	FindMaze(mazeID, version string) (*maze.Maze, error)
}

// Session is one live game held in memory. The engine inside owns the
// game's mutable state; callers must serialize access per session.
type Session struct {
	GameID         string
	PlayerID       string
	Engine         *engine.Engine
	Maze           *maze.Maze
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
