package cli

import (
	"fmt"
	"strings"

	"github.com/hackmaze/quizmaze/game/engine"
)

// RenderView formats engine output for terminal display.
func RenderView(view *engine.GameView, messages []string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("--- %s ---", view.CellTitle))
	if view.CellDescription != "" {
		parts = append(parts, view.CellDescription)
	}
	parts = append(parts, fmt.Sprintf("Position: (%d, %d)  |  Moves: %d", view.Pos.Row, view.Pos.Col, view.MoveCount))
	parts = append(parts, fmt.Sprintf("Exits: %s", strings.Join(view.AvailableMoves, ", ")))

	if view.PendingPuzzle != nil {
		parts = append(parts, "")
		parts = append(parts, fmt.Sprintf(">> PUZZLE: %s", view.PendingPuzzle.Title))
		parts = append(parts, view.PendingPuzzle.Prompt)
		parts = append(parts, "  Use: answer <your answer>")
	}

	for _, msg := range messages {
		parts = append(parts, fmt.Sprintf("  [%s]", msg))
	}

	return strings.Join(parts, "\n")
}

// RenderMap draws the maze as ASCII art. The player is @, start S,
// exit X, cells with puzzles ?. Open edges draw as -- and |, gated
// edges as == and =.
func RenderMap(snap *engine.MapSnapshot) string {
	cellAt := func(r, c int) engine.MapCell {
		return snap.Cells[r*snap.Width+c]
	}
	has := func(tokens []string, token string) bool {
		for _, t := range tokens {
			if t == token {
				return true
			}
		}
		return false
	}

	var lines []string
	for r := 0; r < snap.Height; r++ {
		var row strings.Builder
		for c := 0; c < snap.Width; c++ {
			cell := cellAt(r, c)
			switch {
			case cell.Pos == snap.Player:
				row.WriteString(" @ ")
			case cell.Pos == snap.Start:
				row.WriteString(" S ")
			case cell.Pos == snap.Exit:
				row.WriteString(" X ")
			case cell.HasPuzzle:
				row.WriteString(" ? ")
			default:
				row.WriteString(" . ")
			}

			if c < snap.Width-1 {
				switch {
				case has(cell.Gated, "E"):
					row.WriteString("==")
				case has(cell.Open, "E"):
					row.WriteString("--")
				default:
					row.WriteString("  ")
				}
			}
		}
		lines = append(lines, row.String())

		if r < snap.Height-1 {
			var vert strings.Builder
			for c := 0; c < snap.Width; c++ {
				cell := cellAt(r, c)
				switch {
				case has(cell.Gated, "S"):
					vert.WriteString(" = ")
				case has(cell.Open, "S"):
					vert.WriteString(" | ")
				default:
					vert.WriteString("   ")
				}
				if c < snap.Width-1 {
					vert.WriteString("  ")
				}
			}
			lines = append(lines, vert.String())
		}
	}
	return strings.Join(lines, "\n")
}
