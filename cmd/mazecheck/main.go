// Command mazecheck validates maze definition JSON files. It checks:
//   - JSON structure and the definition invariants (dimensions, one cell
//     per position, exactly one start and one exit)
//   - that every cell puzzle and gate references a known puzzle
//   - connectivity: the exit is reachable from the start
//
// It also warns when the exit is reachable without crossing any gated
// edge, since such a maze can be finished without solving anything.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hackmaze/quizmaze/game/config"
	"github.com/hackmaze/quizmaze/game/maze"
	"github.com/hackmaze/quizmaze/game/puzzle"
)

// ValidationResult captures the outcome of validating a single file.
// When Valid is true, Notes holds informational lines; otherwise Errors
// accumulates what was found wrong.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

// validateFile loads and validates one maze definition file.
func validateFile(path string, puzzles *puzzle.Registry) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var def maze.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	m, err := maze.New(def)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if err := config.Validate(m, puzzles); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	gateCount := 0
	puzzleCount := 0
	for _, cell := range m.Cells() {
		gateCount += len(cell.Gates())
		if cell.PuzzleID != "" {
			puzzleCount++
		}
	}

	result.Notes = append(result.Notes,
		fmt.Sprintf("Maze: %s@%s", m.ID(), m.Version()),
		fmt.Sprintf("Grid: %dx%d", m.Width(), m.Height()),
		fmt.Sprintf("Gated edges: %d", gateCount),
		fmt.Sprintf("Cell puzzles: %d", puzzleCount),
	)

	if reachableWithoutGates(m) {
		result.Notes = append(result.Notes, "WARNING: exit reachable without crossing any gate")
	}

	return result
}

// reachableWithoutGates reports whether the exit can be reached from the
// start treating every gated edge as a wall.
func reachableWithoutGates(m *maze.Maze) bool {
	visited := map[maze.Position]bool{m.Start(): true}
	queue := []maze.Position{m.Start()}

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		if pos == m.Exit() {
			return true
		}
		for _, d := range m.AvailableMoves(pos) {
			if _, gated := m.GateIDFor(pos, d); gated {
				continue
			}
			next, ok := m.NextPos(pos, d)
			if !ok || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

// main validates every *.json file in the given directory (default
// "mazes") and exits non-zero if any file is invalid.
func main() {
	mazeDir := "mazes"
	if len(os.Args) > 1 {
		mazeDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(mazeDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding maze files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No maze files found in %s\n", mazeDir)
		os.Exit(1)
	}

	puzzles := puzzle.NewRegistry()

	allValid := true
	for _, file := range files {
		result := validateFile(file, puzzles)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Println("VALID")
			for _, note := range result.Notes {
				fmt.Println("  " + note)
			}
		} else {
			fmt.Println("INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Println("  " + e)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("All maze definitions are valid.")
	} else {
		fmt.Println("Some maze definitions have errors.")
		os.Exit(1)
	}
}
