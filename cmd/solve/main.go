// Command solve plays a game to completion against a running server.
// It creates a game over the REST API, plans a shortest route on the
// map, and walks it, answering puzzles from an answers file that maps
// puzzle IDs to answer text.
//
// Useful as an end-to-end smoke test of a deployed server and for
// verifying that a maze's answers file is complete.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/maze"
	"github.com/hackmaze/quizmaze/game/service"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the game server")
	handle := flag.String("handle", "solver", "player handle")
	mazeName := flag.String("maze", "", "maze name (empty: server default)")
	answersPath := flag.String("answers", "", "JSON file mapping puzzle IDs to answers")
	flag.Parse()

	answers := map[string]string{}
	if *answersPath != "" {
		data, err := os.ReadFile(*answersPath)
		if err != nil {
			log.Fatalf("read answers: %v", err)
		}
		if err := json.Unmarshal(data, &answers); err != nil {
			log.Fatalf("parse answers: %v", err)
		}
	}

	s := &solver{
		client:  &client{baseURL: *baseURL, http: &http.Client{Timeout: 10 * time.Second}},
		answers: answers,
	}

	view, err := s.run(*handle, *mazeName)
	if err != nil {
		log.Fatalf("solve failed: %v", err)
	}
	fmt.Printf("Solved in %d moves.\n", view.MoveCount)
}

// client is a thin REST client for the game API.
type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) createGame(handle, mazeName string) (*service.GameInfo, error) {
	body, _ := json.Marshal(map[string]string{"handle": handle, "maze": mazeName})
	resp, err := c.http.Post(c.baseURL+"/api/games", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create game: %d %s", resp.StatusCode, data)
	}
	var info service.GameInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *client) command(gameID string, cmd engine.Command) (*engine.GameOutput, error) {
	body, _ := json.Marshal(cmd)
	url := fmt.Sprintf("%s/api/games/%s/command", c.baseURL, gameID)
	resp, err := c.http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("command %s: %d %s", cmd.Verb, resp.StatusCode, data)
	}
	var out engine.GameOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// solver walks one game from start to exit.
type solver struct {
	client  *client
	answers map[string]string
}

func (s *solver) run(handle, mazeName string) (*engine.GameView, error) {
	info, err := s.client.createGame(handle, mazeName)
	if err != nil {
		return nil, err
	}
	log.Printf("game %s on maze %s@%s", info.GameID, info.MazeID, info.MazeVersion)

	out, err := s.client.command(info.GameID, engine.Command{Verb: "map"})
	if err != nil {
		return nil, err
	}
	if out.Map == nil {
		return nil, fmt.Errorf("server returned no map")
	}

	route, err := planRoute(out.Map)
	if err != nil {
		return nil, err
	}
	log.Printf("route: %v (%d moves)", route, len(route))

	pos := out.Map.Player
	for _, token := range route {
		pos, err = s.step(info.GameID, pos, token)
		if err != nil {
			return nil, err
		}
	}

	final, err := s.client.command(info.GameID, engine.Command{Verb: "look"})
	if err != nil {
		return nil, err
	}
	if !final.View.IsComplete {
		return nil, fmt.Errorf("route exhausted but game not complete at %s", final.View.Pos)
	}
	return &final.View, nil
}

// step moves one cell in the given direction, answering a gate that
// blocks the edge or a puzzle posed by the destination cell.
func (s *solver) step(gameID string, pos maze.Position, token string) (maze.Position, error) {
	dir, ok := maze.ParseDirection(token)
	if !ok {
		return pos, fmt.Errorf("bad direction %q in route", token)
	}
	want := pos.Add(dir)

	// A gated edge can pend at most once per step.
	for attempt := 0; attempt < 2; attempt++ {
		out, err := s.client.command(gameID, engine.Command{Verb: "go", Args: []string{token}})
		if err != nil {
			return pos, err
		}

		if out.View.PendingPuzzle != nil {
			if err := s.answer(gameID, out.View.PendingPuzzle); err != nil {
				return pos, err
			}
			if out.View.Pos == want {
				return want, nil // cell puzzle, already advanced
			}
			continue // gate, retry the move
		}

		if out.View.Pos != want {
			return pos, fmt.Errorf("move %s from %s landed at %s, want %s", token, pos, out.View.Pos, want)
		}
		return want, nil
	}
	return pos, fmt.Errorf("edge %s from %s still gated after answering", token, pos)
}

func (s *solver) answer(gameID string, pz *engine.PuzzleView) error {
	text, ok := s.answers[pz.ID]
	if !ok {
		return fmt.Errorf("no answer on file for puzzle %q (%s)", pz.ID, pz.Title)
	}
	out, err := s.client.command(gameID, engine.Command{Verb: "answer", Args: []string{text}})
	if err != nil {
		return err
	}
	if out.View.PendingPuzzle != nil {
		return fmt.Errorf("answer %q rejected for puzzle %q", text, pz.ID)
	}
	return nil
}

// planRoute finds a shortest walk from the player to the exit over the
// map snapshot. Gated edges count as walkable; gates are handled while
// stepping.
func planRoute(snap *engine.MapSnapshot) ([]string, error) {
	cellAt := func(p maze.Position) *engine.MapCell {
		if p.Row < 0 || p.Row >= snap.Height || p.Col < 0 || p.Col >= snap.Width {
			return nil
		}
		return &snap.Cells[p.Row*snap.Width+p.Col]
	}

	type hop struct {
		from  maze.Position
		token string
	}
	prev := map[maze.Position]hop{}
	visited := map[maze.Position]bool{snap.Player: true}
	queue := []maze.Position{snap.Player}

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		if pos == snap.Exit {
			var route []string
			for at := pos; at != snap.Player; at = prev[at].from {
				route = append([]string{prev[at].token}, route...)
			}
			return route, nil
		}
		cell := cellAt(pos)
		if cell == nil {
			continue
		}
		for _, token := range cell.Open {
			dir, ok := maze.ParseDirection(token)
			if !ok {
				continue
			}
			next := pos.Add(dir)
			if cellAt(next) == nil || visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = hop{from: pos, token: token}
			queue = append(queue, next)
		}
	}
	return nil, fmt.Errorf("no route from %s to exit %s", snap.Player, snap.Exit)
}
