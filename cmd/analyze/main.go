// Command analyze prints quick, human-readable heuristics about maze
// definition files: dimensions, gate and puzzle counts, dead ends, and
// the minimum number of moves needed to finish. It assumes the files
// already pass mazecheck; broken files are reported and skipped.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hackmaze/quizmaze/game/maze"
)

func main() {
	mazeDir := "mazes"
	if len(os.Args) > 1 {
		mazeDir = os.Args[1]
	}

	fmt.Println("=== Analyzing built-in maze ===")
	analyzeMaze(maze.BuildMinimal3x3())

	files, err := filepath.Glob(filepath.Join(mazeDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding maze files: %v\n", err)
		os.Exit(1)
	}
	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		m, err := loadMaze(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		analyzeMaze(m)
	}
}

func loadMaze(path string) (*maze.Maze, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def maze.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return maze.New(def)
}

func analyzeMaze(m *maze.Maze) {
	gateCount := 0
	puzzleCount := 0
	deadEnds := 0
	for _, cell := range m.Cells() {
		gateCount += len(cell.Gates())
		if cell.PuzzleID != "" {
			puzzleCount++
		}
		if len(m.AvailableMoves(cell.Pos)) == 1 {
			deadEnds++
		}
	}

	fmt.Printf("Maze: %s@%s\n", m.ID(), m.Version())
	fmt.Printf("Grid: %dx%d (%d cells)\n", m.Width(), m.Height(), m.Width()*m.Height())
	fmt.Printf("Start: %s  Exit: %s\n", m.Start(), m.Exit())
	fmt.Printf("Gated edges: %d\n", gateCount)
	fmt.Printf("Cell puzzles: %d\n", puzzleCount)
	fmt.Printf("Dead ends: %d\n", deadEnds)

	if moves, ok := shortestSolve(m); ok {
		fmt.Printf("Minimum moves to finish: %d\n", moves)
	} else {
		fmt.Println("Minimum moves to finish: exit unreachable")
	}
}

// shortestSolve returns the length of the shortest start-to-exit walk.
// Gated edges count as walkable since gates open once solved.
func shortestSolve(m *maze.Maze) (int, bool) {
	type node struct {
		pos   maze.Position
		moves int
	}
	visited := map[maze.Position]bool{m.Start(): true}
	queue := []node{{pos: m.Start()}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.pos == m.Exit() {
			return cur.moves, true
		}
		for _, d := range m.AvailableMoves(cur.pos) {
			next, ok := m.NextPos(cur.pos, d)
			if !ok || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, node{pos: next, moves: cur.moves + 1})
		}
	}
	return 0, false
}
