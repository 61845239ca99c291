package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hackmaze/quizmaze/game/maze"
	"github.com/hackmaze/quizmaze/game/puzzle"
	"github.com/hackmaze/quizmaze/game/store"
)

var (
	// ErrVersionMismatch is returned when a saved game does not belong
	// to the maze the engine was constructed with. Resuming against the
	// wrong maze must fail loudly instead of silently proceeding.
	ErrVersionMismatch = errors.New("saved game belongs to a different maze")
)

// User-facing messages. Invalid commands are an expected part of play:
// they surface as messages, never as errors, and never change state.
const (
	msgUnknownCommand   = "Unknown command."
	msgInvalidDirection = "Invalid direction."
	msgBlockedPath      = "Blocked path."
	msgPuzzleRequired   = "A gate bars the way. Solve its puzzle to pass."
	msgCellPuzzle       = "Something here demands an answer before you move on."
	msgSolvePending     = "Solve the pending puzzle first."
	msgNoPending        = "No pending puzzle."
	msgCorrect          = "Correct."
	msgIncorrect        = "Incorrect answer."
	msgSaved            = "Progress saved."
	msgAlreadyComplete  = "The run is already complete. Type 'quit' to leave."
	msgComplete         = "ACCESS GRANTED: you have reached root. Run complete!"
)

// Engine drives one session through its three logical states:
// exploring (no pending puzzle), blocked (a puzzle must be answered
// before moving), and complete (terminal). It owns the session's
// mutable state exclusively and processes one command at a time; it is
// not safe for concurrent use by multiple goroutines.
type Engine struct {
	maze     *maze.Maze
	puzzles  *puzzle.Registry
	repo     store.Repository
	playerID string
	gameID   string

	pos           maze.Position
	moveCount     int
	solvedGates   map[string]bool
	startedAt     time.Time
	endedAt       time.Time
	pendingPuzzle string
	visited       []maze.Position
	complete      bool
	scoreRecorded bool

	now func() time.Time
}

// New builds an engine for an existing game record, fresh or resumed.
// It refuses records saved for a different maze id or version, and it
// verifies that every gate and puzzle the maze references exists in the
// registry, so a registry miss can never surface mid-session.
func New(m *maze.Maze, puzzles *puzzle.Registry, repo store.Repository, playerID, gameID string) (*Engine, error) {
	if err := validatePuzzleRefs(m, puzzles); err != nil {
		return nil, err
	}

	rec, err := repo.GetGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	if rec.MazeID != m.ID() || rec.MazeVersion != m.Version() {
		return nil, fmt.Errorf("%w: record is for %s@%s, engine has %s@%s",
			ErrVersionMismatch, rec.MazeID, rec.MazeVersion, m.ID(), m.Version())
	}

	e := &Engine{
		maze:     m,
		puzzles:  puzzles,
		repo:     repo,
		playerID: playerID,
		gameID:   gameID,
		now:      time.Now,
	}
	e.decodeState(rec.State)

	if rec.Status == store.StatusCompleted {
		e.complete = true
		// The score for this record was written when it first
		// completed; never record it again on resume.
		e.scoreRecorded = true
	}

	return e, nil
}

func validatePuzzleRefs(m *maze.Maze, puzzles *puzzle.Registry) error {
	for _, cell := range m.Cells() {
		if cell.PuzzleID != "" && !puzzles.Has(cell.PuzzleID) {
			return fmt.Errorf("maze %s: cell %s: %w: %q", m.ID(), cell.Pos, puzzle.ErrNotFound, cell.PuzzleID)
		}
		for d, gateID := range cell.Gates() {
			if !puzzles.Has(gateID) {
				return fmt.Errorf("maze %s: edge (%s,%s): %w: %q", m.ID(), cell.Pos, d, puzzle.ErrNotFound, gateID)
			}
		}
	}
	return nil
}

// GameID returns the identifier of the session's game record.
func (e *Engine) GameID() string { return e.gameID }

// PlayerID returns the identifier of the owning player.
func (e *Engine) PlayerID() string { return e.playerID }

// View returns the current read-only projection of the session.
func (e *Engine) View() GameView {
	cell := e.mustCell(e.pos)

	moves := make([]string, 0, 4)
	for _, d := range e.maze.AvailableMoves(e.pos) {
		moves = append(moves, d.String())
	}

	return GameView{
		Pos:             e.pos,
		CellTitle:       cell.Title,
		CellDescription: cell.Description,
		AvailableMoves:  moves,
		PendingPuzzle:   e.pendingView(),
		IsComplete:      e.complete,
		MoveCount:       e.moveCount,
	}
}

// Handle dispatches one command and returns the resulting output. The
// returned error is reserved for data-integrity failures that should
// never occur on a validated maze; everything a player can cause is
// reported through GameOutput.Messages instead.
func (e *Engine) Handle(cmd Command) (GameOutput, error) {
	verb := strings.ToLower(strings.TrimSpace(cmd.Verb))

	switch verb {
	case "look":
		return e.output(), nil

	case "map":
		out := e.output()
		out.Map = e.mapSnapshot()
		return out, nil

	case "save":
		return e.handleSave(), nil

	case "quit":
		return e.handleQuit(), nil

	case "answer":
		return e.handleAnswer(cmd.Args)

	case "go":
		if len(cmd.Args) == 0 {
			return e.outputMsg(msgInvalidDirection), nil
		}
		return e.handleMove(cmd.Args[0]), nil

	case "n", "s", "e", "w":
		return e.handleMove(verb), nil

	default:
		return e.outputMsg(msgUnknownCommand), nil
	}
}

func (e *Engine) handleMove(token string) GameOutput {
	dir, ok := maze.ParseDirection(token)
	if !ok {
		return e.outputMsg(msgInvalidDirection)
	}
	if e.complete {
		return e.outputMsg(msgAlreadyComplete)
	}
	if e.pendingPuzzle != "" {
		return e.outputMsg(msgSolvePending)
	}

	next, ok := e.maze.NextPos(e.pos, dir)
	if !ok {
		return e.outputMsg(msgBlockedPath)
	}

	// An unsatisfied edge gate blocks the move before any state other
	// than the pending puzzle changes.
	if gateID, gated := e.maze.GateIDFor(e.pos, dir); gated && !e.solvedGates[gateID] {
		e.pendingPuzzle = gateID
		return e.outputMsg(msgPuzzleRequired)
	}

	e.pos = next
	e.moveCount++
	e.visited = append(e.visited, next)

	messages := []string{}
	if puzzleID, ok := e.maze.PuzzleIDAt(e.pos); ok && !e.solvedGates[puzzleID] {
		e.pendingPuzzle = puzzleID
		messages = append(messages, msgCellPuzzle)
	}

	finished, didPersist := e.finishIfAtExit(&messages)
	if !finished {
		if err := e.persist(store.StatusInProgress); err != nil {
			messages = append(messages, saveFailed(err))
		} else {
			didPersist = true
		}
	}

	out := e.output()
	out.Messages = messages
	out.DidPersist = didPersist
	return out
}

func (e *Engine) handleAnswer(args []string) (GameOutput, error) {
	if e.complete {
		return e.outputMsg(msgAlreadyComplete), nil
	}
	if e.pendingPuzzle == "" {
		return e.outputMsg(msgNoPending), nil
	}

	p, err := e.puzzles.Get(e.pendingPuzzle)
	if err != nil {
		// Unreachable on a validated maze; see New.
		return e.output(), err
	}

	answer := strings.TrimSpace(strings.Join(args, " "))
	if !p.Check(answer, e.encodeState()) {
		return e.outputMsg(msgIncorrect), nil
	}

	e.solvedGates[e.pendingPuzzle] = true
	e.pendingPuzzle = ""

	messages := []string{msgCorrect}

	// Solving the last blocker while already standing on the exit
	// completes the run.
	finished, didPersist := e.finishIfAtExit(&messages)
	if !finished {
		if err := e.persist(store.StatusInProgress); err != nil {
			messages = append(messages, saveFailed(err))
		} else {
			didPersist = true
		}
	}

	out := e.output()
	out.Messages = messages
	out.DidPersist = didPersist
	return out, nil
}

func (e *Engine) handleSave() GameOutput {
	status := store.StatusInProgress
	if e.complete {
		status = store.StatusCompleted
	}

	out := e.output()
	if err := e.persist(status); err != nil {
		out.Messages = []string{saveFailed(err)}
		return out
	}
	out.Messages = []string{msgSaved}
	out.DidPersist = true
	return out
}

// handleQuit autosaves and signals termination. If the save fails the
// session stays open so the player can retry; no progress is lost
// silently.
func (e *Engine) handleQuit() GameOutput {
	status := store.StatusInProgress
	if e.complete {
		status = store.StatusCompleted
	}

	out := e.output()
	if err := e.persist(status); err != nil {
		out.Messages = []string{saveFailed(err), "Quit aborted; try 'save' or 'quit' again."}
		return out
	}
	out.Messages = []string{msgSaved}
	out.DidPersist = true
	out.ShouldQuit = true
	return out
}

// finishIfAtExit transitions to the terminal complete state when the
// player stands on the exit with nothing pending. The score is recorded
// exactly once per session no matter how many commands follow.
func (e *Engine) finishIfAtExit(messages *[]string) (finished, persisted bool) {
	if e.pos != e.maze.Exit() || e.pendingPuzzle != "" {
		return false, false
	}

	if !e.complete {
		e.complete = true
		e.endedAt = e.now().UTC()
		*messages = append(*messages, msgComplete)
	}

	persisted = true
	if err := e.persist(store.StatusCompleted); err != nil {
		*messages = append(*messages, saveFailed(err))
		persisted = false
	}

	if !e.scoreRecorded {
		if _, err := e.repo.RecordScore(e.playerID, e.gameID, e.maze.ID(), e.maze.Version(), e.scoreMetrics()); err != nil {
			*messages = append(*messages, fmt.Sprintf("Score could not be recorded: %v", err))
		} else {
			e.scoreRecorded = true
		}
	}

	return true, persisted
}

func (e *Engine) scoreMetrics() map[string]any {
	elapsed := int(e.endedAt.Sub(e.startedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	return map[string]any{
		"moves":           e.moveCount,
		"elapsed_seconds": elapsed,
		"puzzles_solved":  len(e.solvedGates),
	}
}

func (e *Engine) persist(status string) error {
	_, err := e.repo.SaveGame(e.gameID, e.encodeState(), status)
	return err
}

func (e *Engine) pendingView() *PuzzleView {
	if e.pendingPuzzle == "" {
		return nil
	}
	p, err := e.puzzles.Get(e.pendingPuzzle)
	if err != nil {
		// Unreachable on a validated maze.
		return &PuzzleView{ID: e.pendingPuzzle}
	}
	return &PuzzleView{ID: p.ID, Title: p.Title, Prompt: p.Prompt}
}

func (e *Engine) mapSnapshot() *MapSnapshot {
	snap := &MapSnapshot{
		Width:  e.maze.Width(),
		Height: e.maze.Height(),
		Start:  e.maze.Start(),
		Exit:   e.maze.Exit(),
		Player: e.pos,
	}
	for _, cell := range e.maze.Cells() {
		mc := MapCell{Pos: cell.Pos, HasPuzzle: cell.PuzzleID != ""}
		for _, d := range e.maze.AvailableMoves(cell.Pos) {
			mc.Open = append(mc.Open, d.String())
			if _, gated := cell.GateID(d); gated {
				mc.Gated = append(mc.Gated, d.String())
			}
		}
		snap.Cells = append(snap.Cells, mc)
	}
	return snap
}

func (e *Engine) output() GameOutput {
	return GameOutput{View: e.View(), Messages: []string{}}
}

func (e *Engine) outputMsg(msg string) GameOutput {
	out := e.output()
	out.Messages = []string{msg}
	return out
}

// mustCell fetches the player's own cell. The engine only ever stands
// on in-bounds positions, so a failure here is a programming error.
func (e *Engine) mustCell(pos maze.Position) *maze.CellSpec {
	cell, err := e.maze.Cell(pos)
	if err != nil {
		panic(fmt.Sprintf("engine: player at impossible position %s: %v", pos, err))
	}
	return cell
}

func saveFailed(err error) string {
	return fmt.Sprintf("Save failed: %v", err)
}
