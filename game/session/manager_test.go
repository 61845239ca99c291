package session

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hackmaze/quizmaze/game/config"
	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/puzzle"
	"github.com/hackmaze/quizmaze/game/store"
)

func newTestManager(t *testing.T) (*Manager, store.Repository) {
	t.Helper()
	repo := store.NewMemoryRepository()
	reg := puzzle.NewRegistry()
	mazes, err := config.NewManager("", reg)
	if err != nil {
		t.Fatal(err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewManager(repo, reg, mazes, log), repo
}

func TestCreateAndGet(t *testing.T) {
	m, repo := newTestManager(t)

	player, err := repo.GetOrCreatePlayer("morpheus")
	if err != nil {
		t.Fatal(err)
	}
	mazes, _ := config.NewManager("", puzzle.NewRegistry())

	sess, err := m.Create(player, mazes.GetDefault())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.GameID == "" {
		t.Fatal("session has no game id")
	}
	if m.Count() != 1 {
		t.Errorf("count = %d", m.Count())
	}

	got, err := m.Get(sess.GameID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != sess {
		t.Error("Get returned a different session instance")
	}

	// A record must exist behind the session.
	if _, err := repo.GetGame(sess.GameID); err != nil {
		t.Errorf("no persisted record: %v", err)
	}
}

func TestGet_ResumesFromRepository(t *testing.T) {
	m, _ := newTestManager(t)
	player, _ := m.repo.GetOrCreatePlayer("morpheus")

	sess, err := m.Create(player, m.mazes.GetDefault())
	if err != nil {
		t.Fatal(err)
	}
	gameID := sess.GameID

	// Play a move so the resumed engine has something to restore.
	out, err := sess.Engine.Handle(engine.Command{Verb: "go", Args: []string{"s"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.View.MoveCount != 1 {
		t.Fatalf("setup move failed: %+v", out.View)
	}

	if err := m.Delete(gameID); err != nil {
		t.Fatal(err)
	}
	if m.Count() != 0 {
		t.Fatalf("count = %d after delete", m.Count())
	}

	resumed, err := m.Get(gameID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Engine.View().MoveCount != 1 {
		t.Errorf("resumed move count = %d, want 1", resumed.Engine.View().MoveCount)
	}
	if m.Count() != 1 {
		t.Errorf("resumed session not cached, count = %d", m.Count())
	}
}

func TestGet_UnknownGame(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Get("no-such-game"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestDelete_Unknown(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Delete("no-such-game"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestUpdateLastAccessed(t *testing.T) {
	m, _ := newTestManager(t)
	player, _ := m.repo.GetOrCreatePlayer("morpheus")
	sess, err := m.Create(player, m.mazes.GetDefault())
	if err != nil {
		t.Fatal(err)
	}

	was := sess.LastAccessedAt
	m.now = func() time.Time { return was.Add(time.Minute) }
	if err := m.UpdateLastAccessed(sess.GameID); err != nil {
		t.Fatal(err)
	}
	if !sess.LastAccessedAt.After(was) {
		t.Error("LastAccessedAt not advanced")
	}

	if err := m.UpdateLastAccessed("no-such-game"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCleanupExpired(t *testing.T) {
	m, _ := newTestManager(t)
	player, _ := m.repo.GetOrCreatePlayer("morpheus")

	stale, err := m.Create(player, m.mazes.GetDefault())
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := m.Create(player, m.mazes.GetDefault())
	if err != nil {
		t.Fatal(err)
	}

	stale.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if evicted := m.CleanupExpired(time.Hour); evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if _, err := m.Get(fresh.GameID); err != nil {
		t.Errorf("fresh session evicted: %v", err)
	}

	// The stale game is still resumable from its record.
	if _, err := m.Get(stale.GameID); err != nil {
		t.Errorf("stale game should resume: %v", err)
	}
}

func TestList(t *testing.T) {
	m, _ := newTestManager(t)
	player, _ := m.repo.GetOrCreatePlayer("morpheus")

	for i := 0; i < 3; i++ {
		if _, err := m.Create(player, m.mazes.GetDefault()); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(m.List()); got != 3 {
		t.Errorf("List returned %d sessions", got)
	}
}
