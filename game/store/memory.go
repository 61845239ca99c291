package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// document is the full repository content. FileRepository serializes it
// as a single JSON file; MemoryRepository keeps it in memory only.
type document struct {
	SchemaVersion int                      `json:"schema_version"`
	Players       map[string]*PlayerRecord `json:"players"`
	Games         map[string]*GameRecord   `json:"games"`
	Scores        []*ScoreRecord           `json:"scores"`
}

const schemaVersion = 1

func newDocument() document {
	return document{
		SchemaVersion: schemaVersion,
		Players:       make(map[string]*PlayerRecord),
		Games:         make(map[string]*GameRecord),
		Scores:        nil,
	}
}

// MemoryRepository is an in-memory Repository used by tests and
// ephemeral servers. FileRepository builds on it by installing a
// persist hook that runs after every mutation, inside the lock.
type MemoryRepository struct {
	mu      sync.Mutex
	doc     document
	now     func() time.Time
	newID   func() string
	persist func(*document) error
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		doc:   newDocument(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (m *MemoryRepository) flush() error {
	if m.persist == nil {
		return nil
	}
	return m.persist(&m.doc)
}

// GetPlayer returns the player with the given id.
func (m *MemoryRepository) GetPlayer(id string) (*PlayerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.doc.Players[id]
	if !ok {
		return nil, fmt.Errorf("%w: player %q", ErrNotFound, id)
	}
	out := *p
	return &out, nil
}

// GetOrCreatePlayer finds a player by handle (case-insensitively) or
// creates one.
func (m *MemoryRepository) GetOrCreatePlayer(handle string) (*PlayerRecord, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		handle = "anonymous"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.doc.Players {
		if strings.EqualFold(p.Handle, handle) {
			out := *p
			return &out, nil
		}
	}

	p := &PlayerRecord{
		ID:        m.newID(),
		Handle:    handle,
		CreatedAt: FormatTime(m.now()),
	}
	m.doc.Players[p.ID] = p
	if err := m.flush(); err != nil {
		delete(m.doc.Players, p.ID)
		return nil, err
	}
	out := *p
	return &out, nil
}

// CreateGame stores a new in-progress game record.
func (m *MemoryRepository) CreateGame(playerID, mazeID, mazeVersion string, initialState map[string]any) (*GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.doc.Players[playerID]; !ok {
		return nil, fmt.Errorf("%w: player %q", ErrNotFound, playerID)
	}

	now := FormatTime(m.now())
	g := &GameRecord{
		ID:          m.newID(),
		PlayerID:    playerID,
		MazeID:      mazeID,
		MazeVersion: mazeVersion,
		Status:      StatusInProgress,
		State:       cloneState(initialState),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.doc.Games[g.ID] = g
	if err := m.flush(); err != nil {
		delete(m.doc.Games, g.ID)
		return nil, err
	}
	return copyGame(g), nil
}

// GetGame returns the game with the given id.
func (m *MemoryRepository) GetGame(gameID string) (*GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.doc.Games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: game %q", ErrNotFound, gameID)
	}
	return copyGame(g), nil
}

// SaveGame replaces the opaque state and status of an existing game.
func (m *MemoryRepository) SaveGame(gameID string, state map[string]any, status string) (*GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.doc.Games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: game %q", ErrNotFound, gameID)
	}

	prevState, prevStatus, prevUpdated := g.State, g.Status, g.UpdatedAt
	g.State = cloneState(state)
	g.Status = status
	g.UpdatedAt = FormatTime(m.now())
	if err := m.flush(); err != nil {
		g.State, g.Status, g.UpdatedAt = prevState, prevStatus, prevUpdated
		return nil, err
	}
	return copyGame(g), nil
}

// RecordScore appends a score record for a completed run.
func (m *MemoryRepository) RecordScore(playerID, gameID, mazeID, mazeVersion string, metrics map[string]any) (*ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &ScoreRecord{
		ID:          m.newID(),
		PlayerID:    playerID,
		GameID:      gameID,
		MazeID:      mazeID,
		MazeVersion: mazeVersion,
		Metrics:     cloneState(metrics),
		CreatedAt:   FormatTime(m.now()),
	}
	m.doc.Scores = append(m.doc.Scores, s)
	if err := m.flush(); err != nil {
		m.doc.Scores = m.doc.Scores[:len(m.doc.Scores)-1]
		return nil, err
	}
	out := *s
	return &out, nil
}

// TopScores returns the best runs for a maze (or all mazes when mazeID
// is empty), fewest moves first.
func (m *MemoryRepository) TopScores(mazeID string, limit int) ([]*ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*ScoreRecord
	for _, s := range m.doc.Scores {
		if mazeID != "" && s.MazeID != mazeID {
			continue
		}
		c := *s
		out = append(out, &c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := metricInt(out[i].Metrics, "moves"), metricInt(out[j].Metrics, "moves")
		if mi != mj {
			return mi < mj
		}
		ei, ej := metricInt(out[i].Metrics, "elapsed_seconds"), metricInt(out[j].Metrics, "elapsed_seconds")
		if ei != ej {
			return ei < ej
		}
		return out[i].CreatedAt < out[j].CreatedAt
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// metricInt reads a numeric metric that may be an int in memory or a
// float64 after a JSON round trip.
func metricInt(metrics map[string]any, key string) int {
	switch v := metrics[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func cloneState(state map[string]any) map[string]any {
	if state == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}

func copyGame(g *GameRecord) *GameRecord {
	out := *g
	out.State = cloneState(g.State)
	return &out
}
