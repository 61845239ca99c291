package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/maze"
	"github.com/hackmaze/quizmaze/game/puzzle"
	"github.com/hackmaze/quizmaze/game/service"
	"github.com/hackmaze/quizmaze/game/store"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager keeps live game sessions in memory, keyed by game id. The
// repository is the durable source of truth: the engine autosaves on
// every mutation, so evicting a live session never loses progress and
// Get can rebuild one from its persisted record at any time.
type Manager struct {
	sessions map[string]*service.Session
	repo     store.Repository
	puzzles  *puzzle.Registry
	mazes    service.MazeManager
	log      *logrus.Logger
	mu       sync.RWMutex
	now      func() time.Time
}

// NewManager creates a new session manager
func NewManager(repo store.Repository, puzzles *puzzle.Registry, mazes service.MazeManager, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		sessions: make(map[string]*service.Session),
		repo:     repo,
		puzzles:  puzzles,
		mazes:    mazes,
		log:      log,
		now:      time.Now,
	}
}

// Create persists a fresh game record for the player and brings up a
// live session for it.
func (m *Manager) Create(player *store.PlayerRecord, mz *maze.Maze) (*service.Session, error) {
	rec, err := m.repo.CreateGame(player.ID, mz.ID(), mz.Version(), engine.InitialState(mz, m.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create game record: %w", err)
	}

	eng, err := engine.New(mz, m.puzzles, m.repo, player.ID, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	sess := &service.Session{
		GameID:         rec.ID,
		PlayerID:       player.ID,
		Engine:         eng,
		Maze:           mz,
		CreatedAt:      m.now(),
		LastAccessedAt: m.now(),
	}

	m.mu.Lock()
	m.sessions[rec.ID] = sess
	m.mu.Unlock()

	return sess, nil
}

// Get returns the live session for a game id, resuming it from the
// repository when none is in memory.
func (m *Manager) Get(gameID string) (*service.Session, error) {
	m.mu.RLock()
	sess, exists := m.sessions[gameID]
	m.mu.RUnlock()
	if exists {
		return sess, nil
	}
	return m.resume(gameID)
}

func (m *Manager) resume(gameID string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if sess, exists := m.sessions[gameID]; exists {
		return sess, nil
	}

	rec, err := m.repo.GetGame(gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, gameID)
		}
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}

	mz, err := m.mazes.FindMaze(rec.MazeID, rec.MazeVersion)
	if err != nil {
		return nil, fmt.Errorf("cannot resume game %s: %w", gameID, err)
	}

	eng, err := engine.New(mz, m.puzzles, m.repo, rec.PlayerID, rec.ID)
	if err != nil {
		return nil, err
	}

	sess := &service.Session{
		GameID:         rec.ID,
		PlayerID:       rec.PlayerID,
		Engine:         eng,
		Maze:           mz,
		CreatedAt:      m.now(),
		LastAccessedAt: m.now(),
	}
	m.sessions[gameID] = sess

	m.log.WithFields(logrus.Fields{
		"game_id": gameID,
		"maze_id": rec.MazeID,
	}).Info("session resumed from repository")

	return sess, nil
}

// List returns all live sessions.
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	return sessions
}

// Delete evicts a live session. The persisted record is untouched, so
// the game stays resumable.
func (m *Manager) Delete(gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[gameID]; !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, gameID)
	}
	delete(m.sessions, gameID)
	return nil
}

// UpdateLastAccessed marks a live session as recently used.
func (m *Manager) UpdateLastAccessed(gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[gameID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, gameID)
	}
	sess.LastAccessedAt = m.now()
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpired evicts sessions idle longer than maxIdle and returns
// how many were evicted. Evicted games resume from their autosaved
// records on the next Get.
func (m *Manager) CleanupExpired(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	evicted := 0
	for id, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.log.WithField("count", evicted).Info("evicted idle sessions")
	}
	return evicted
}
