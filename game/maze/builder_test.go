package maze

import (
	"testing"
)

// bfs walks the maze over AvailableMoves, optionally skipping gated
// edges, and reports which positions are reachable from start.
func bfs(m *Maze, crossGates bool) map[Position]bool {
	seen := map[Position]bool{m.Start(): true}
	queue := []Position{m.Start()}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range m.AvailableMoves(cur) {
			if !crossGates {
				if _, gated := m.GateIDFor(cur, d); gated {
					continue
				}
			}
			next, ok := m.NextPos(cur, d)
			if !ok || seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return seen
}

func TestBuildMinimal3x3_StartAndExit(t *testing.T) {
	m := BuildMinimal3x3()

	if m.Width() != 3 || m.Height() != 3 {
		t.Fatalf("expected a 3x3 maze, got %dx%d", m.Width(), m.Height())
	}
	if m.Start() == m.Exit() {
		t.Fatal("start and exit must be distinct")
	}

	starts, exits := 0, 0
	for _, cell := range m.Cells() {
		switch cell.Kind {
		case KindStart:
			starts++
		case KindExit:
			exits++
		}
	}
	if starts != 1 || exits != 1 {
		t.Fatalf("expected exactly one start and one exit, got %d and %d", starts, exits)
	}
}

// Reachability invariant: ignoring gate state, the exit is reachable
// from the start.
func TestBuildMinimal3x3_ExitReachable(t *testing.T) {
	m := BuildMinimal3x3()
	if !bfs(m, true)[m.Exit()] {
		t.Fatal("exit is not reachable from start")
	}
}

// Gating invariant: at least one gate must be crossed to reach the exit.
func TestBuildMinimal3x3_GateIsRequired(t *testing.T) {
	m := BuildMinimal3x3()
	if bfs(m, false)[m.Exit()] {
		t.Fatal("exit is reachable without crossing any gate")
	}
}

func TestBuildMinimal3x3_Deterministic(t *testing.T) {
	a, b := BuildMinimal3x3(), BuildMinimal3x3()
	if a.ID() != b.ID() || a.Version() != b.Version() {
		t.Fatal("factory is not deterministic")
	}
	for _, cell := range a.Cells() {
		other, err := b.Cell(cell.Pos)
		if err != nil {
			t.Fatalf("Cell(%v): %v", cell.Pos, err)
		}
		if cell.Title != other.Title || cell.PuzzleID != other.PuzzleID || cell.Kind != other.Kind {
			t.Errorf("cell %v differs between builds", cell.Pos)
		}
		if len(a.AvailableMoves(cell.Pos)) != len(b.AvailableMoves(cell.Pos)) {
			t.Errorf("available moves at %v differ between builds", cell.Pos)
		}
	}
}

func TestBuildMinimal3x3_EveryCellReachable(t *testing.T) {
	m := BuildMinimal3x3()
	seen := bfs(m, true)
	for _, cell := range m.Cells() {
		if !seen[cell.Pos] {
			t.Errorf("cell %v (%s) is unreachable", cell.Pos, cell.Title)
		}
	}
}
