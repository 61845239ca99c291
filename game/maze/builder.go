package maze

// Gate and puzzle identifiers used by the built-in maze. The puzzle
// registry ships matching entries for each of them.
const (
	GateFirewall   = "gate-firewall"
	GateRootAccess = "gate-root-access"
	PuzzleHoneypot = "puzzle-honeypot"
)

// MinimalDefinition returns the hand-authored layout of the built-in
// 3x3 maze. Walls are declared symmetrically on both sides of an edge.
//
// Layout (S start, X exit, ? cell puzzle, = gated edge):
//
//	S = .   .
//	|
//	.   ?   .
//	            =
//	.   .   X
func MinimalDefinition() Definition {
	return Definition{
		MazeID:      "hack-the-maze-3x3",
		MazeVersion: "1",
		Width:       3,
		Height:      3,
		Cells: []CellDef{
			{
				Row: 0, Col: 0, Kind: "start",
				Title:       "Terminal Foyer",
				Description: "A flickering login prompt hums on a CRT. Corridors lead east and south.",
				Gates:       map[string]string{"E": GateFirewall},
			},
			{
				Row: 0, Col: 1,
				Title:       "Proxy Corridor",
				Description: "Racks of forwarding proxies blink in the dark. The floor south has collapsed.",
				Blocked:     []string{"S"},
			},
			{
				Row: 0, Col: 2,
				Title:       "Cold Storage",
				Description: "Tape archives stacked to the ceiling. A ladder drops south.",
			},
			{
				Row: 1, Col: 0,
				Title:       "Server Aisle",
				Description: "Rows of humming servers. A sealed grate blocks the way down.",
				Blocked:     []string{"S"},
			},
			{
				Row: 1, Col: 1,
				Title:       "Honeypot Vault",
				Description: "Everything here is a decoy, and the decoys are watching you.",
				Blocked:     []string{"N", "S"},
				Puzzle:      PuzzleHoneypot,
			},
			{
				Row: 1, Col: 2,
				Title:       "Relay Junction",
				Description: "Fiber trunks converge at a locked maintenance hatch in the floor.",
				Gates:       map[string]string{"S": GateRootAccess},
			},
			{
				Row: 2, Col: 0,
				Title:       "Cable Trench",
				Description: "Knee-deep in legacy cabling. The ceiling grate is welded shut.",
				Blocked:     []string{"N"},
			},
			{
				Row: 2, Col: 1,
				Title:       "Backup Vault",
				Description: "Off-site backups that never made it off site.",
				Blocked:     []string{"N"},
			},
			{
				Row: 2, Col: 2, Kind: "exit",
				Title:       "Root Shell",
				Description: "A bare prompt with a # sigil. This is what you came for.",
			},
		},
	}
}

// BuildMinimal3x3 builds the built-in maze. Deterministic: every call
// yields an identical maze. The layout is covered by invariant tests
// (reachability from start to exit, and at least one gate that cannot
// be bypassed).
func BuildMinimal3x3() *Maze {
	m, err := New(MinimalDefinition())
	if err != nil {
		// The definition is static; failing to build it is a defect in
		// this package, not a runtime condition.
		panic("maze: built-in definition is invalid: " + err.Error())
	}
	return m
}
