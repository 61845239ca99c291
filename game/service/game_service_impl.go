package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/store"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	mazes    MazeManager
	repo     store.Repository
	log      *logrus.Logger
	mu       sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, mazes MazeManager, repo store.Repository, log *logrus.Logger) GameService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &gameServiceImpl{
		sessions: sessions,
		mazes:    mazes,
		repo:     repo,
		log:      log,
	}
}

// CreateGame starts a new game for the given handle on the named maze.
// An empty maze name selects the default maze.
func (s *gameServiceImpl) CreateGame(ctx context.Context, handle, mazeName string) (*GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.mazes.LoadMaze(mazeName)
	if err != nil {
		if infos, listErr := s.mazes.ListMazes(); listErr == nil && len(infos) > 0 {
			names := make([]string, 0, len(infos))
			for _, info := range infos {
				names = append(names, info.Name)
			}
			return nil, fmt.Errorf("maze %q not found. Available mazes: %v", mazeName, names)
		}
		return nil, fmt.Errorf("failed to load maze %q: %w", mazeName, err)
	}

	player, err := s.repo.GetOrCreatePlayer(handle)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player: %w", err)
	}

	sess, err := s.sessions.Create(player, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"game_id": sess.GameID,
		"player":  player.Handle,
		"maze_id": m.ID(),
	}).Info("game created")

	return s.gameInfo(sess), nil
}

// GetGame returns information about a game, resuming it from the
// repository if it is not currently live in memory.
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(gameID)
	return s.gameInfo(sess), nil
}

// ListGames returns all live sessions.
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*GameInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.gameInfo(sess))
	}
	return result, nil
}

// Execute runs one command against a game. A quit command evicts the
// live session after the engine has autosaved; the persisted record
// stays resumable.
func (s *gameServiceImpl) Execute(ctx context.Context, gameID string, cmd engine.Command) (*engine.GameOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, err
	}

	out, err := sess.Engine.Handle(cmd)
	if err != nil {
		s.log.WithError(err).WithField("game_id", gameID).Error("command failed")
		return nil, err
	}
	s.sessions.UpdateLastAccessed(gameID)

	if out.ShouldQuit {
		if err := s.sessions.Delete(gameID); err != nil {
			s.log.WithError(err).WithField("game_id", gameID).Warn("failed to evict session")
		}
	}

	return &out, nil
}

// View returns the current read-only projection of a game.
func (s *gameServiceImpl) View(ctx context.Context, gameID string) (*engine.GameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, err
	}
	v := sess.Engine.View()
	return &v, nil
}

// TopScores returns the leaderboard for a maze. An empty maze id means
// the default maze; use "*" for all mazes.
func (s *gameServiceImpl) TopScores(ctx context.Context, mazeID string, limit int) ([]*store.ScoreRecord, error) {
	if mazeID == "" {
		mazeID = s.mazes.GetDefault().ID()
	}
	if mazeID == "*" {
		mazeID = ""
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopScores(mazeID, limit)
}

// ListMazes returns all loadable mazes.
func (s *gameServiceImpl) ListMazes(ctx context.Context) ([]*MazeInfo, error) {
	return s.mazes.ListMazes()
}

func (s *gameServiceImpl) gameInfo(sess *Session) *GameInfo {
	info := &GameInfo{
		GameID:         sess.GameID,
		PlayerID:       sess.PlayerID,
		MazeID:         sess.Maze.ID(),
		MazeVersion:    sess.Maze.Version(),
		Status:         store.StatusInProgress,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		View:           sess.Engine.View(),
	}
	if info.View.IsComplete {
		info.Status = store.StatusCompleted
	}
	if player, err := s.repo.GetPlayer(sess.PlayerID); err == nil {
		info.Handle = player.Handle
	}
	return info
}
