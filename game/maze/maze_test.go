package maze

import (
	"testing"
)

// twoByTwoDefinition returns a small valid definition used as a base for
// validation tests.
func twoByTwoDefinition() Definition {
	return Definition{
		MazeID:      "test-2x2",
		MazeVersion: "1",
		Width:       2,
		Height:      2,
		Cells: []CellDef{
			{Row: 0, Col: 0, Kind: "start", Title: "A"},
			{Row: 0, Col: 1, Title: "B"},
			{Row: 1, Col: 0, Title: "C"},
			{Row: 1, Col: 1, Kind: "exit", Title: "D"},
		},
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		token string
		want  Direction
		ok    bool
	}{
		{"n", North, true},
		{"N", North, true},
		{"north", North, true},
		{"SOUTH", South, true},
		{" e ", East, true},
		{"West", West, true},
		{"up", North, false},
		{"", North, false},
		{"ne", North, false},
	}

	for _, tt := range tests {
		got, ok := ParseDirection(tt.token)
		if ok != tt.ok {
			t.Errorf("ParseDirection(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestDirectionDeltas(t *testing.T) {
	for _, d := range Directions() {
		dRow, dCol := d.Delta()
		if dRow == 0 && dCol == 0 {
			t.Errorf("direction %v has a zero delta", d)
		}
		// Opposite deltas must cancel out pairwise.
		switch d {
		case North:
			sr, sc := South.Delta()
			if dRow+sr != 0 || dCol+sc != 0 {
				t.Error("North and South deltas do not cancel")
			}
		case East:
			wr, wc := West.Delta()
			if dRow+wr != 0 || dCol+wc != 0 {
				t.Error("East and West deltas do not cancel")
			}
		}
	}
}

func TestPositionAdd(t *testing.T) {
	p := Position{Row: 1, Col: 1}
	if got := p.Add(North); got != (Position{Row: 0, Col: 1}) {
		t.Errorf("Add(North) = %v", got)
	}
	if got := p.Add(East); got != (Position{Row: 1, Col: 2}) {
		t.Errorf("Add(East) = %v", got)
	}
}

func TestNew_ValidDefinition(t *testing.T) {
	m, err := New(twoByTwoDefinition())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if m.Start() != (Position{Row: 0, Col: 0}) {
		t.Errorf("unexpected start: %v", m.Start())
	}
	if m.Exit() != (Position{Row: 1, Col: 1}) {
		t.Errorf("unexpected exit: %v", m.Exit())
	}
	if len(m.Cells()) != 4 {
		t.Errorf("expected 4 cells, got %d", len(m.Cells()))
	}
}

func TestNew_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"missing maze id", func(d *Definition) { d.MazeID = "" }},
		{"missing version", func(d *Definition) { d.MazeVersion = "" }},
		{"zero width", func(d *Definition) { d.Width = 0 }},
		{"missing cell", func(d *Definition) { d.Cells = d.Cells[:3] }},
		{"duplicate cell", func(d *Definition) { d.Cells = append(d.Cells, d.Cells[0]) }},
		{"two starts", func(d *Definition) { d.Cells[1].Kind = "start" }},
		{"no exit", func(d *Definition) { d.Cells[3].Kind = "" }},
		{"unknown kind", func(d *Definition) { d.Cells[1].Kind = "portal" }},
		{"out of bounds cell", func(d *Definition) { d.Cells[1].Col = 7 }},
		{"bad blocked token", func(d *Definition) { d.Cells[1].Blocked = []string{"up"} }},
		{"bad gate token", func(d *Definition) { d.Cells[1].Gates = map[string]string{"x": "g"} }},
		{"empty gate id", func(d *Definition) { d.Cells[1].Gates = map[string]string{"E": ""} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := twoByTwoDefinition()
			tt.mutate(&def)
			if _, err := New(def); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCell_OutOfBounds(t *testing.T) {
	m := BuildMinimal3x3()
	for _, pos := range []Position{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
		if _, err := m.Cell(pos); err == nil {
			t.Errorf("Cell(%v): expected error", pos)
		}
	}
}

// NextPos(p, d) must be absent exactly when d is not in
// AvailableMoves(p), for every in-bounds position and direction.
func TestNextPosMatchesAvailableMoves(t *testing.T) {
	m := BuildMinimal3x3()
	for _, cell := range m.Cells() {
		available := make(map[Direction]bool)
		for _, d := range m.AvailableMoves(cell.Pos) {
			available[d] = true
		}
		for _, d := range Directions() {
			next, ok := m.NextPos(cell.Pos, d)
			if ok != available[d] {
				t.Errorf("%v %v: NextPos ok=%v but available=%v", cell.Pos, d, ok, available[d])
			}
			if ok && next != cell.Pos.Add(d) {
				t.Errorf("%v %v: NextPos = %v, want %v", cell.Pos, d, next, cell.Pos.Add(d))
			}
		}
	}
}

func TestGateAndPuzzleQueries(t *testing.T) {
	m := BuildMinimal3x3()

	if id, ok := m.GateIDFor(m.Start(), East); !ok || id != GateFirewall {
		t.Errorf("GateIDFor(start, E) = %q, %v", id, ok)
	}
	if _, ok := m.GateIDFor(m.Start(), South); ok {
		t.Error("GateIDFor(start, S): expected no gate")
	}

	if id, ok := m.PuzzleIDAt(Position{Row: 1, Col: 1}); !ok || id != PuzzleHoneypot {
		t.Errorf("PuzzleIDAt(1,1) = %q, %v", id, ok)
	}
	if _, ok := m.PuzzleIDAt(m.Start()); ok {
		t.Error("PuzzleIDAt(start): expected no puzzle")
	}

	// Gated edges stay physically available.
	found := false
	for _, d := range m.AvailableMoves(m.Start()) {
		if d == East {
			found = true
		}
	}
	if !found {
		t.Error("gated East edge should still be in AvailableMoves(start)")
	}
}
