package maze

import (
	"errors"
	"fmt"
	"strings"
)

var ErrOutOfBounds = errors.New("position out of bounds")

// Direction is one of the four cardinal directions a player can move in.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// deltas maps each direction to its row/column offset. Row 0 is the top
// of the grid, so North decreases the row.
var deltas = [...]struct {
	token string
	long  string
	dRow  int
	dCol  int
}{
	North: {"N", "NORTH", -1, 0},
	South: {"S", "SOUTH", 1, 0},
	East:  {"E", "EAST", 0, 1},
	West:  {"W", "WEST", 0, -1},
}

// Directions returns all four directions in declaration order.
func Directions() [4]Direction {
	return [4]Direction{North, South, East, West}
}

// String returns the single-letter token for the direction.
func (d Direction) String() string {
	if d < North || d > West {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return deltas[d].token
}

// Delta returns the row and column offset for the direction.
func (d Direction) Delta() (dRow, dCol int) {
	return deltas[d].dRow, deltas[d].dCol
}

// ParseDirection resolves a token such as "n", "E" or "south" to a
// Direction. The second return value is false for unrecognized tokens.
func ParseDirection(token string) (Direction, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	for _, d := range Directions() {
		if t == deltas[d].token || t == deltas[d].long {
			return d, true
		}
	}
	return North, false
}

// Position is a row/column coordinate pair. Validity is always relative
// to a maze; a Position on its own is just a value.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the position one step away in the given direction.
func (p Position) Add(d Direction) Position {
	dRow, dCol := d.Delta()
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// CellKind classifies a cell within a maze. Every maze has exactly one
// Start and exactly one Exit cell.
type CellKind int

const (
	KindNormal CellKind = iota
	KindStart
	KindExit
)

func (k CellKind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindExit:
		return "exit"
	default:
		return "normal"
	}
}

// CellSpec describes a single grid cell. It is created during maze
// construction and never mutated afterwards.
type CellSpec struct {
	Pos         Position
	Kind        CellKind
	Title       string
	Description string
	PuzzleID    string

	blocked map[Direction]bool
	gates   map[Direction]string
}

// IsBlocked reports whether movement in direction d is physically
// impossible from this cell.
func (c *CellSpec) IsBlocked(d Direction) bool {
	return c.blocked[d]
}

// GateID returns the gate identifier guarding the edge in direction d,
// if any.
func (c *CellSpec) GateID(d Direction) (string, bool) {
	id, ok := c.gates[d]
	return id, ok
}

// Gates returns a copy of the direction-to-gate mapping for this cell.
func (c *CellSpec) Gates() map[Direction]string {
	out := make(map[Direction]string, len(c.gates))
	for d, id := range c.gates {
		out[d] = id
	}
	return out
}

// Maze is an immutable grid of cells. Instances are built once by New
// (or the BuildMinimal3x3 factory) and shared read-only between
// sessions, so no locking is required.
type Maze struct {
	id      string
	version string
	width   int
	height  int
	start   Position
	exit    Position
	cells   map[Position]*CellSpec
}

func (m *Maze) ID() string      { return m.id }
func (m *Maze) Version() string { return m.version }
func (m *Maze) Width() int      { return m.width }
func (m *Maze) Height() int     { return m.height }
func (m *Maze) Start() Position { return m.start }
func (m *Maze) Exit() Position  { return m.exit }

// InBounds reports whether pos lies inside the grid.
func (m *Maze) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < m.height && pos.Col >= 0 && pos.Col < m.width
}

// Cell returns the spec for an in-bounds position. Querying an
// out-of-bounds position is a caller bug and yields ErrOutOfBounds.
func (m *Maze) Cell(pos Position) (*CellSpec, error) {
	if !m.InBounds(pos) {
		return nil, fmt.Errorf("%w: %s in %dx%d maze", ErrOutOfBounds, pos, m.width, m.height)
	}
	return m.cells[pos], nil
}

// Cells returns every cell in row-major order.
func (m *Maze) Cells() []*CellSpec {
	out := make([]*CellSpec, 0, m.width*m.height)
	for row := 0; row < m.height; row++ {
		for col := 0; col < m.width; col++ {
			out = append(out, m.cells[Position{Row: row, Col: col}])
		}
	}
	return out
}

// AvailableMoves returns the directions that are physically walkable
// from pos: not blocked by a wall and not leading out of the grid.
// Gated edges are still available; enforcing gates is the engine's job,
// which keeps the maze free of any notion of solved state.
func (m *Maze) AvailableMoves(pos Position) []Direction {
	cell, err := m.Cell(pos)
	if err != nil {
		return nil
	}
	var moves []Direction
	for _, d := range Directions() {
		if cell.IsBlocked(d) {
			continue
		}
		if !m.InBounds(pos.Add(d)) {
			continue
		}
		moves = append(moves, d)
	}
	return moves
}

// NextPos returns the destination of moving from pos in direction d.
// Illegal moves are an expected outcome of exploration, so the failure
// mode is a false second return value rather than an error.
func (m *Maze) NextPos(pos Position, d Direction) (Position, bool) {
	cell, err := m.Cell(pos)
	if err != nil {
		return Position{}, false
	}
	if cell.IsBlocked(d) {
		return Position{}, false
	}
	next := pos.Add(d)
	if !m.InBounds(next) {
		return Position{}, false
	}
	return next, true
}

// PuzzleIDAt returns the puzzle attached to the cell at pos, if any.
func (m *Maze) PuzzleIDAt(pos Position) (string, bool) {
	cell, err := m.Cell(pos)
	if err != nil || cell.PuzzleID == "" {
		return "", false
	}
	return cell.PuzzleID, true
}

// GateIDFor returns the gate identifier required to cross the edge
// (pos, d), if the edge is gated.
func (m *Maze) GateIDFor(pos Position, d Direction) (string, bool) {
	cell, err := m.Cell(pos)
	if err != nil {
		return "", false
	}
	return cell.GateID(d)
}
