package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hackmaze/quizmaze/game/maze"
	"github.com/hackmaze/quizmaze/game/puzzle"
	"github.com/hackmaze/quizmaze/game/service"
)

var (
	ErrMazeNotFound = errors.New("maze not found")
	ErrInvalidMaze  = errors.New("invalid maze")
)

// DefaultName is the reserved name of the built-in maze. It is always
// loadable, even with no maze directory configured.
const DefaultName = "default"

// Manager loads maze definitions from JSON files and caches the built
// results. Loaded mazes are validated against the puzzle registry, so
// anything the manager hands out is playable.
type Manager struct {
	mazeDir     string
	puzzles     *puzzle.Registry
	defaultMaze *maze.Maze
	mazes       map[string]*maze.Maze
	mu          sync.RWMutex
}

// NewManager creates a maze manager. An empty mazeDir serves only the
// built-in maze; otherwise the directory must exist.
func NewManager(mazeDir string, puzzles *puzzle.Registry) (*Manager, error) {
	if mazeDir != "" {
		if _, err := os.Stat(mazeDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("maze directory does not exist: %s", mazeDir)
		}
	}

	builtin := maze.BuildMinimal3x3()
	if err := Validate(builtin, puzzles); err != nil {
		return nil, fmt.Errorf("built-in maze: %w", err)
	}

	return &Manager{
		mazeDir:     mazeDir,
		puzzles:     puzzles,
		defaultMaze: builtin,
		mazes:       map[string]*maze.Maze{DefaultName: builtin},
	}, nil
}

// LoadMaze loads a maze by name. The empty name and DefaultName both
// select the built-in maze.
func (m *Manager) LoadMaze(name string) (*maze.Maze, error) {
	if name == "" {
		name = DefaultName
	}

	m.mu.RLock()
	if mz, exists := m.mazes[name]; exists {
		m.mu.RUnlock()
		return mz, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if mz, exists := m.mazes[name]; exists {
		return mz, nil
	}
	if m.mazeDir == "" {
		return nil, fmt.Errorf("%w: %q", ErrMazeNotFound, name)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.mazeDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrMazeNotFound, name)
		}
		return nil, fmt.Errorf("failed to read maze file: %w", err)
	}

	var def maze.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMaze, filename, err)
	}

	mz, err := maze.New(def)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMaze, filename, err)
	}
	if err := Validate(mz, m.puzzles); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMaze, filename, err)
	}

	m.mazes[name] = mz
	return mz, nil
}

// ListMazes returns information about every loadable maze, the built-in
// one included. Files that fail to load are skipped.
func (m *Manager) ListMazes() ([]*service.MazeInfo, error) {
	infos := []*service.MazeInfo{mazeInfo(DefaultName, "", m.GetDefault())}

	if m.mazeDir == "" {
		return infos, nil
	}

	entries, err := os.ReadDir(m.mazeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read maze directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		if name == DefaultName {
			continue
		}
		mz, err := m.LoadMaze(name)
		if err != nil {
			continue
		}
		infos = append(infos, mazeInfo(name, entry.Name(), mz))
	}

	return infos, nil
}

// GetDefault returns the built-in maze.
func (m *Manager) GetDefault() *maze.Maze {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultMaze
}

// FindMaze locates a maze by its identity, for resuming saved games.
// It checks everything already loaded, then falls back to scanning the
// maze directory.
func (m *Manager) FindMaze(mazeID, version string) (*maze.Maze, error) {
	m.mu.RLock()
	for _, mz := range m.mazes {
		if mz.ID() == mazeID && mz.Version() == version {
			m.mu.RUnlock()
			return mz, nil
		}
	}
	m.mu.RUnlock()

	infos, err := m.ListMazes()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.MazeID != mazeID || info.Version != version {
			continue
		}
		return m.LoadMaze(info.Name)
	}
	return nil, fmt.Errorf("%w: %s@%s", ErrMazeNotFound, mazeID, version)
}

// Validate checks a maze against a puzzle registry: every gate and cell
// puzzle it references must exist, and the exit must be reachable from
// the start assuming all puzzles get solved.
func Validate(m *maze.Maze, puzzles *puzzle.Registry) error {
	for _, cell := range m.Cells() {
		if cell.PuzzleID != "" && !puzzles.Has(cell.PuzzleID) {
			return fmt.Errorf("cell %s references unknown puzzle %q", cell.Pos, cell.PuzzleID)
		}
		for d, gateID := range cell.Gates() {
			if !puzzles.Has(gateID) {
				return fmt.Errorf("edge (%s,%s) references unknown puzzle %q", cell.Pos, d, gateID)
			}
		}
	}

	reached := map[maze.Position]bool{m.Start(): true}
	queue := []maze.Position{m.Start()}
	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		for _, d := range m.AvailableMoves(pos) {
			next, ok := m.NextPos(pos, d)
			if !ok || reached[next] {
				continue
			}
			reached[next] = true
			queue = append(queue, next)
		}
	}
	if !reached[m.Exit()] {
		return errors.New("exit is not reachable from the start")
	}

	return nil
}

func mazeInfo(name, filename string, m *maze.Maze) *service.MazeInfo {
	return &service.MazeInfo{
		Name:     name,
		Filename: filename,
		MazeID:   m.ID(),
		Version:  m.Version(),
		Width:    m.Width(),
		Height:   m.Height(),
	}
}
