package engine

import (
	"github.com/hackmaze/quizmaze/game/maze"
)

// Command is the normalized intent produced by a presentation layer.
// The engine alone validates and interprets it.
type Command struct {
	Verb string   `json:"verb"`
	Args []string `json:"args"`
}

// PuzzleView is the projection of a pending puzzle shown to the player.
type PuzzleView struct {
	ID     string `json:"puzzle_id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// GameView is a read-only, UI-agnostic projection of the session state.
type GameView struct {
	Pos             maze.Position `json:"pos"`
	CellTitle       string        `json:"cell_title"`
	CellDescription string        `json:"cell_description"`
	AvailableMoves  []string      `json:"available_moves"`
	PendingPuzzle   *PuzzleView   `json:"pending_puzzle,omitempty"`
	IsComplete      bool          `json:"is_complete"`
	MoveCount       int           `json:"move_count"`
}

// GameOutput wraps the view with the user-facing messages produced by
// the last command, whether a persistence write occurred, and (for the
// quit verb) whether the presentation layer should end the session.
type GameOutput struct {
	View       GameView     `json:"view"`
	Messages   []string     `json:"messages"`
	DidPersist bool         `json:"did_persist"`
	ShouldQuit bool         `json:"should_quit,omitempty"`
	Map        *MapSnapshot `json:"map,omitempty"`
}

// MapSnapshot is a rendering-agnostic picture of the maze for the map
// verb. Presentation layers decide how to draw it.
type MapSnapshot struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Start  maze.Position `json:"start"`
	Exit   maze.Position `json:"exit"`
	Player maze.Position `json:"player"`
	Cells  []MapCell     `json:"cells"` // row-major
}

// MapCell describes one cell of a MapSnapshot. Open holds the walkable
// direction tokens; Gated the subset of those guarded by a gate.
type MapCell struct {
	Pos       maze.Position `json:"pos"`
	Open      []string      `json:"open"`
	Gated     []string      `json:"gated,omitempty"`
	HasPuzzle bool          `json:"has_puzzle,omitempty"`
}
