package store

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

// Game status values stored on a GameRecord.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Timestamps are stored as RFC 3339 UTC strings so every record stays
// JSON-safe end to end.
const timeLayout = time.RFC3339

// FormatTime renders a timestamp the way records store it.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timeLayout)
}

// PlayerRecord identifies a player by an opaque id and a display handle.
type PlayerRecord struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	CreatedAt string `json:"created_at"`
}

// GameRecord is one persisted session. State is an opaque JSON-safe
// mapping owned by the engine; the repository stores and returns it
// without interpretation.
type GameRecord struct {
	ID          string         `json:"id"`
	PlayerID    string         `json:"player_id"`
	MazeID      string         `json:"maze_id"`
	MazeVersion string         `json:"maze_version"`
	Status      string         `json:"status"`
	State       map[string]any `json:"state"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// ScoreRecord is one completed run. Metrics is opaque to the
// repository, but TopScores sorts by its "moves" and "elapsed_seconds"
// keys when present.
type ScoreRecord struct {
	ID          string         `json:"id"`
	PlayerID    string         `json:"player_id"`
	GameID      string         `json:"game_id"`
	MazeID      string         `json:"maze_id"`
	MazeVersion string         `json:"maze_version"`
	Metrics     map[string]any `json:"metrics"`
	CreatedAt   string         `json:"created_at"`
}

// Repository is the durable store contract the engine consumes. The
// engine never assumes any particular storage technology behind it;
// implementations own serialization of the records.
type Repository interface {
	GetPlayer(id string) (*PlayerRecord, error)
	GetOrCreatePlayer(handle string) (*PlayerRecord, error)

	CreateGame(playerID, mazeID, mazeVersion string, initialState map[string]any) (*GameRecord, error)
	GetGame(gameID string) (*GameRecord, error)
	SaveGame(gameID string, state map[string]any, status string) (*GameRecord, error)

	RecordScore(playerID, gameID, mazeID, mazeVersion string, metrics map[string]any) (*ScoreRecord, error)
	// TopScores returns the best runs, fewest moves first, ties broken
	// by elapsed seconds and then recording time. An empty mazeID
	// matches every maze.
	TopScores(mazeID string, limit int) ([]*ScoreRecord, error)
}
