package maze

import (
	"fmt"
)

// Definition is the JSON-authorable form of a maze. Maze layouts are
// hand-written files validated at load time; there is no generation.
type Definition struct {
	MazeID      string    `json:"maze_id"`
	MazeVersion string    `json:"maze_version"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Cells       []CellDef `json:"cells"`
}

// CellDef describes one cell of a Definition.
type CellDef struct {
	Row         int               `json:"row"`
	Col         int               `json:"col"`
	Kind        string            `json:"kind,omitempty"` // "start", "exit" or "" (normal)
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Blocked     []string          `json:"blocked,omitempty"` // direction tokens
	Puzzle      string            `json:"puzzle,omitempty"`
	Gates       map[string]string `json:"gates,omitempty"` // direction token -> gate id
}

// New builds an immutable Maze from a definition. It enforces the
// structural invariants: positive dimensions, exactly one cell per
// in-bounds position, exactly one Start and one Exit, and Start != Exit.
func New(def Definition) (*Maze, error) {
	if def.MazeID == "" {
		return nil, fmt.Errorf("maze definition: maze_id is required")
	}
	if def.MazeVersion == "" {
		return nil, fmt.Errorf("maze definition: maze_version is required")
	}
	if def.Width <= 0 || def.Height <= 0 {
		return nil, fmt.Errorf("maze definition: dimensions must be positive, got %dx%d", def.Width, def.Height)
	}

	m := &Maze{
		id:      def.MazeID,
		version: def.MazeVersion,
		width:   def.Width,
		height:  def.Height,
		cells:   make(map[Position]*CellSpec, def.Width*def.Height),
	}

	var startCount, exitCount int
	for _, cd := range def.Cells {
		pos := Position{Row: cd.Row, Col: cd.Col}
		if !m.InBounds(pos) {
			return nil, fmt.Errorf("maze definition: cell %s is outside the %dx%d grid", pos, def.Width, def.Height)
		}
		if _, dup := m.cells[pos]; dup {
			return nil, fmt.Errorf("maze definition: duplicate cell at %s", pos)
		}

		spec := &CellSpec{
			Pos:         pos,
			Title:       cd.Title,
			Description: cd.Description,
			PuzzleID:    cd.Puzzle,
			blocked:     make(map[Direction]bool, len(cd.Blocked)),
			gates:       make(map[Direction]string, len(cd.Gates)),
		}

		switch cd.Kind {
		case "", "normal":
			spec.Kind = KindNormal
		case "start":
			spec.Kind = KindStart
			startCount++
			m.start = pos
		case "exit":
			spec.Kind = KindExit
			exitCount++
			m.exit = pos
		default:
			return nil, fmt.Errorf("maze definition: cell %s has unknown kind %q", pos, cd.Kind)
		}

		for _, token := range cd.Blocked {
			d, ok := ParseDirection(token)
			if !ok {
				return nil, fmt.Errorf("maze definition: cell %s blocks unknown direction %q", pos, token)
			}
			spec.blocked[d] = true
		}
		for token, gateID := range cd.Gates {
			d, ok := ParseDirection(token)
			if !ok {
				return nil, fmt.Errorf("maze definition: cell %s gates unknown direction %q", pos, token)
			}
			if gateID == "" {
				return nil, fmt.Errorf("maze definition: cell %s has an empty gate id for %s", pos, d)
			}
			spec.gates[d] = gateID
		}

		m.cells[pos] = spec
	}

	if want := def.Width * def.Height; len(m.cells) != want {
		return nil, fmt.Errorf("maze definition: expected %d cells, got %d", want, len(m.cells))
	}
	if startCount != 1 {
		return nil, fmt.Errorf("maze definition: expected exactly one start cell, got %d", startCount)
	}
	if exitCount != 1 {
		return nil, fmt.Errorf("maze definition: expected exactly one exit cell, got %d", exitCount)
	}
	if m.start == m.exit {
		return nil, fmt.Errorf("maze definition: start and exit must be distinct cells")
	}

	return m, nil
}
