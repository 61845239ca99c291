package engine

import (
	"sort"
	"time"

	"github.com/hackmaze/quizmaze/game/maze"
	"github.com/hackmaze/quizmaze/game/store"
)

// The engine keeps its state in typed fields and converts to and from a
// generic JSON-safe mapping at exactly the repository boundary. The
// repository never sees the engine's internal representation.

// InitialState builds the opaque state for a brand-new session at the
// maze's start cell.
func InitialState(m *maze.Maze, startedAt time.Time) map[string]any {
	return map[string]any{
		"pos":            map[string]any{"row": m.Start().Row, "col": m.Start().Col},
		"move_count":     0,
		"solved_gates":   []string{},
		"started_at":     store.FormatTime(startedAt),
		"ended_at":       nil,
		"pending_puzzle": "",
		"visited":        []any{},
	}
}

// encodeState converts the engine's typed state to its JSON-safe form.
func (e *Engine) encodeState() map[string]any {
	gates := make([]string, 0, len(e.solvedGates))
	for id := range e.solvedGates {
		gates = append(gates, id)
	}
	sort.Strings(gates)

	visited := make([]any, 0, len(e.visited))
	for _, p := range e.visited {
		visited = append(visited, map[string]any{"row": p.Row, "col": p.Col})
	}

	var endedAt any
	if !e.endedAt.IsZero() {
		endedAt = store.FormatTime(e.endedAt)
	}

	return map[string]any{
		"pos":            map[string]any{"row": e.pos.Row, "col": e.pos.Col},
		"move_count":     e.moveCount,
		"solved_gates":   gates,
		"started_at":     store.FormatTime(e.startedAt),
		"ended_at":       endedAt,
		"pending_puzzle": e.pendingPuzzle,
		"visited":        visited,
	}
}

// decodeState restores typed state from its JSON-safe form. The
// conversion is total: missing or malformed fields fall back to safe
// defaults rather than failing, so older snapshots always load.
func (e *Engine) decodeState(state map[string]any) {
	e.pos = decodePos(state["pos"], e.maze.Start())
	e.moveCount = asInt(state["move_count"], 0)

	e.solvedGates = make(map[string]bool)
	if raw, ok := state["solved_gates"].([]any); ok {
		for _, v := range raw {
			if id, ok := v.(string); ok && id != "" {
				e.solvedGates[id] = true
			}
		}
	} else if ids, ok := state["solved_gates"].([]string); ok {
		for _, id := range ids {
			e.solvedGates[id] = true
		}
	}

	e.startedAt = asTime(state["started_at"], e.now())
	e.endedAt = asTime(state["ended_at"], time.Time{})

	e.pendingPuzzle = ""
	if id, ok := state["pending_puzzle"].(string); ok {
		e.pendingPuzzle = id
	}

	e.visited = nil
	if raw, ok := state["visited"].([]any); ok {
		for _, v := range raw {
			e.visited = append(e.visited, decodePos(v, e.maze.Start()))
		}
	}
}

func decodePos(v any, fallback maze.Position) maze.Position {
	m, ok := v.(map[string]any)
	if !ok {
		return fallback
	}
	return maze.Position{
		Row: asInt(m["row"], fallback.Row),
		Col: asInt(m["col"], fallback.Col),
	}
}

// asInt accepts the numeric types a JSON-safe map may carry: ints set
// in memory or float64 after a round trip through encoding/json.
func asInt(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return fallback
	}
}

func asTime(v any, fallback time.Time) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fallback
	}
	return t.UTC()
}
