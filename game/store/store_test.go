package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMemory_PlayerLifecycle(t *testing.T) {
	repo := NewMemoryRepository()

	p, err := repo.GetOrCreatePlayer("trinity")
	if err != nil {
		t.Fatalf("GetOrCreatePlayer: %v", err)
	}
	if p.ID == "" || p.Handle != "trinity" {
		t.Fatalf("unexpected player: %+v", p)
	}

	// Same handle, case-insensitively, returns the same player.
	again, err := repo.GetOrCreatePlayer("  TRINITY ")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != p.ID {
		t.Errorf("expected same player id, got %s and %s", p.ID, again.ID)
	}

	got, err := repo.GetPlayer(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Handle != "trinity" {
		t.Errorf("GetPlayer handle = %q", got.Handle)
	}

	if _, err := repo.GetPlayer("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_EmptyHandleDefaultsToAnonymous(t *testing.T) {
	repo := NewMemoryRepository()
	p, err := repo.GetOrCreatePlayer("   ")
	if err != nil {
		t.Fatal(err)
	}
	if p.Handle != "anonymous" {
		t.Errorf("handle = %q, want anonymous", p.Handle)
	}
}

func TestMemory_GameLifecycle(t *testing.T) {
	repo := NewMemoryRepository()
	p, _ := repo.GetOrCreatePlayer("neo")

	initial := map[string]any{"move_count": 0}
	g, err := repo.CreateGame(p.ID, "hack-the-maze-3x3", "1", initial)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if g.Status != StatusInProgress {
		t.Errorf("status = %q", g.Status)
	}

	// The stored state must be detached from the caller's map.
	initial["move_count"] = 99
	got, err := repo.GetGame(g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State["move_count"] != 0 {
		t.Errorf("state aliased caller map: %v", got.State)
	}

	saved, err := repo.SaveGame(g.ID, map[string]any{"move_count": 3}, StatusCompleted)
	if err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	if saved.Status != StatusCompleted || saved.State["move_count"] != 3 {
		t.Errorf("unexpected saved record: %+v", saved)
	}

	if _, err := repo.SaveGame("missing", nil, StatusInProgress); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.CreateGame("missing-player", "m", "1", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown player, got %v", err)
	}
}

func TestTopScores_Ordering(t *testing.T) {
	repo := NewMemoryRepository()
	p, _ := repo.GetOrCreatePlayer("morpheus")

	add := func(mazeID string, moves, elapsed int) {
		t.Helper()
		if _, err := repo.RecordScore(p.ID, "g", mazeID, "1", map[string]any{
			"moves":           moves,
			"elapsed_seconds": elapsed,
		}); err != nil {
			t.Fatal(err)
		}
	}

	add("maze-a", 9, 30)
	add("maze-a", 4, 50)
	add("maze-a", 4, 10)
	add("maze-b", 1, 1)

	scores, err := repo.TopScores("maze-a", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores for maze-a, got %d", len(scores))
	}
	if metricInt(scores[0].Metrics, "moves") != 4 || metricInt(scores[0].Metrics, "elapsed_seconds") != 10 {
		t.Errorf("wrong leader: %+v", scores[0].Metrics)
	}
	if metricInt(scores[2].Metrics, "moves") != 9 {
		t.Errorf("wrong tail: %+v", scores[2].Metrics)
	}

	// Empty maze id matches everything; limit truncates.
	all, err := repo.TopScores("", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 scores with limit, got %d", len(all))
	}
	if all[0].MazeID != "maze-b" {
		t.Errorf("expected maze-b run to lead overall, got %s", all[0].MazeID)
	}
}

func TestFileRepository_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "quizmaze.json")

	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}

	p, err := repo.GetOrCreatePlayer("tank")
	if err != nil {
		t.Fatal(err)
	}
	g, err := repo.CreateGame(p.ID, "hack-the-maze-3x3", "1", map[string]any{"move_count": 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.RecordScore(p.ID, g.ID, "hack-the-maze-3x3", "1", map[string]any{"moves": 7}); err != nil {
		t.Fatal(err)
	}

	// Reopen from disk and verify everything survived.
	reopened, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	gotPlayer, err := reopened.GetPlayer(p.ID)
	if err != nil {
		t.Fatalf("player did not survive reopen: %v", err)
	}
	if gotPlayer.Handle != "tank" {
		t.Errorf("handle = %q", gotPlayer.Handle)
	}

	gotGame, err := reopened.GetGame(g.ID)
	if err != nil {
		t.Fatalf("game did not survive reopen: %v", err)
	}
	// JSON round trips numbers as float64; metricInt normalizes.
	if metricInt(gotGame.State, "move_count") != 2 {
		t.Errorf("state move_count = %v", gotGame.State["move_count"])
	}

	scores, err := reopened.TopScores("hack-the-maze-3x3", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
}

func TestFileRepository_RefusesUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizmaze.json")
	if err := os.WriteFile(path, []byte(`{"schema_version": 42}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileRepository(path); err == nil || !strings.Contains(err.Error(), "schema_version") {
		t.Errorf("expected schema error, got %v", err)
	}
}

func TestFileRepository_NoPartialFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quizmaze.json")

	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetOrCreatePlayer("switch"); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2026, 2, 13, 10, 30, 0, 500, time.FixedZone("X", 3600))
	got := FormatTime(ts)
	if got != "2026-02-13T09:30:00Z" {
		t.Errorf("FormatTime = %q", got)
	}
}
