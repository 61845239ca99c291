package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hackmaze/quizmaze/game/config"
	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/maze"
	"github.com/hackmaze/quizmaze/game/puzzle"
	"github.com/hackmaze/quizmaze/game/service"
	"github.com/hackmaze/quizmaze/game/session"
	"github.com/hackmaze/quizmaze/game/store"
)

func newTestService(t *testing.T) service.GameService {
	t.Helper()
	repo := store.NewMemoryRepository()
	reg := puzzle.NewRegistry()
	mazes, err := config.NewManager("", reg)
	if err != nil {
		t.Fatal(err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	sessions := session.NewManager(repo, reg, mazes, log)
	return service.NewGameService(sessions, mazes, repo, log)
}

func runScript(t *testing.T, svc service.GameService, handle string, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	err := Run(context.Background(), Options{
		Service: svc,
		In:      in,
		Out:     &out,
		Handle:  handle,
	})
	if err != nil {
		t.Fatalf("Run: %v\noutput:\n%s", err, out.String())
	}
	return out.String()
}

func TestRun_BasicSession(t *testing.T) {
	svc := newTestService(t)
	out := runScript(t, svc, "trinity", "help", "look", "go s", "quit")

	for _, want := range []string{
		"HACK THE MAZE",
		"Commands:",
		"Terminal Foyer",
		"Server Aisle",
		"Moves: 1",
		"Until next time, hacker.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_PromptsForHandle(t *testing.T) {
	svc := newTestService(t)
	out := runScript(t, svc, "", "neo", "quit")
	if !strings.Contains(out, "Enter your hacker handle:") {
		t.Errorf("missing handle prompt:\n%s", out)
	}
}

func TestRun_EOFAutosaves(t *testing.T) {
	svc := newTestService(t)
	var out bytes.Buffer
	err := Run(context.Background(), Options{
		Service: svc,
		In:      strings.NewReader("go s\n"),
		Out:     &out,
		Handle:  "trinity",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Session terminated. Progress auto-saved.") {
		t.Errorf("missing autosave notice:\n%s", out.String())
	}
}

func TestRun_PuzzleFlow(t *testing.T) {
	svc := newTestService(t)
	out := runScript(t, svc, "trinity", "go e", "answer 22", "go e", "quit")

	for _, want := range []string{
		">> PUZZLE: Firewall Lattice",
		"Use: answer <your answer>",
		"[Correct.]",
		"Proxy Corridor",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_ScoresEmpty(t *testing.T) {
	svc := newTestService(t)
	out := runScript(t, svc, "trinity", "scores", "quit")
	if !strings.Contains(out, "No scores recorded yet.") {
		t.Errorf("missing empty leaderboard notice:\n%s", out)
	}
}

func TestRun_CompletionAndScores(t *testing.T) {
	svc := newTestService(t)
	out := runScript(t, svc, "trinity",
		"go s", "go e", "answer 2", "go e", "go s", "answer 0", "go s",
		"scores", "quit")

	for _, want := range []string{
		"ACCESS GRANTED",
		"Final score recorded.",
		"-- Top Scores --",
		"1. 4 moves",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_ResumeByGameID(t *testing.T) {
	svc := newTestService(t)
	info, err := svc.CreateGame(context.Background(), "trinity", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Execute(context.Background(), info.GameID, engine.Command{Verb: "go", Args: []string{"s"}}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err = Run(context.Background(), Options{
		Service: svc,
		In:      strings.NewReader("quit\n"),
		Out:     &out,
		GameID:  info.GameID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Resumed game "+info.GameID) {
		t.Errorf("missing resume notice:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Moves: 1") {
		t.Errorf("resumed view lost progress:\n%s", out.String())
	}
}

func TestRenderMap(t *testing.T) {
	m := maze.BuildMinimal3x3()
	reg := puzzle.NewRegistry()
	repo := store.NewMemoryRepository()
	player, _ := repo.GetOrCreatePlayer("x")
	rec, _ := repo.CreateGame(player.ID, m.ID(), m.Version(), engine.InitialState(m, time.Now()))
	eng, err := engine.New(m, reg, repo, player.ID, rec.ID)
	if err != nil {
		t.Fatal(err)
	}

	out, err := eng.Handle(engine.Command{Verb: "map"})
	if err != nil {
		t.Fatal(err)
	}
	art := RenderMap(out.Map)

	lines := strings.Split(art, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines for a 3x3 maze, got %d:\n%s", len(lines), art)
	}
	if !strings.HasPrefix(lines[0], " @ ==") {
		t.Errorf("player at start with a gated east edge, got %q", lines[0])
	}
	if !strings.Contains(lines[2], "?") {
		t.Errorf("puzzle cell missing from middle row: %q", lines[2])
	}
	if !strings.HasSuffix(lines[4], " X ") {
		t.Errorf("exit missing from bottom right: %q", lines[4])
	}
}

func TestRenderView_PendingPuzzle(t *testing.T) {
	v := &engine.GameView{
		Pos:            maze.Position{Row: 0, Col: 0},
		CellTitle:      "Terminal Foyer",
		AvailableMoves: []string{"S", "E"},
		PendingPuzzle:  &engine.PuzzleView{ID: "p", Title: "T", Prompt: "P?"},
	}
	s := RenderView(v, []string{"A gate bars the way. Solve its puzzle to pass."})
	for _, want := range []string{"--- Terminal Foyer ---", "Exits: S, E", ">> PUZZLE: T", "P?", "[A gate bars the way"} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in:\n%s", want, s)
		}
	}
}
