// Package cli implements the interactive terminal client.
//
// It is a thin presentation layer: lines from the player parse into
// engine Commands, the service executes them, and the resulting views
// render as text. Only help and scores are handled locally.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/service"
)

const banner = `==================================================
  HACK THE MAZE  -  a terminal puzzle adventure
==================================================`

const helpText = `Commands:
  n / s / e / w   - move in that direction
  go <dir>        - move (north, south, east, west, or N/S/E/W)
  look            - re-describe current cell
  map             - show a simple maze map
  answer <text>   - answer a pending puzzle
  save            - save progress
  scores          - show top scores
  help            - show this help
  quit            - exit the game`

// Options configures one interactive run.
type Options struct {
	Service service.GameService
	In      io.Reader
	Out     io.Writer

	// Handle is the player's name. When empty the player is prompted.
	Handle string
	// MazeName selects the maze for a new game; empty means default.
	MazeName string
	// GameID resumes an existing game instead of starting a new one.
	GameID string
}

// Run drives the interactive game loop until the player quits or the
// input is exhausted. Input exhaustion autosaves like a quit.
func Run(ctx context.Context, opts Options) error {
	out := opts.Out
	scanner := bufio.NewScanner(opts.In)

	fmt.Fprintln(out, banner)
	fmt.Fprintln(out)

	info, err := openGame(ctx, opts, scanner, out)
	if err != nil {
		return err
	}

	view, err := opts.Service.View(ctx, info.GameID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, RenderView(view, nil))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Type 'help' for commands.")
	fmt.Fprintln(out)

	wasComplete := view.IsComplete

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			// EOF or ^D: autosave and leave.
			if _, err := opts.Service.Execute(ctx, info.GameID, engine.Command{Verb: "quit"}); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Session terminated. Progress auto-saved.")
			return scanner.Err()
		}

		cmd := parseInput(scanner.Text())
		switch strings.ToLower(cmd.Verb) {
		case "":
			continue

		case "help":
			fmt.Fprintln(out, helpText)
			continue

		case "scores":
			if err := printScores(ctx, opts.Service, info.MazeID, out); err != nil {
				return err
			}
			continue
		}

		result, err := opts.Service.Execute(ctx, info.GameID, cmd)
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		if result.Map != nil {
			fmt.Fprintln(out, RenderMap(result.Map))
		} else {
			fmt.Fprintln(out, RenderView(&result.View, result.Messages))
		}
		fmt.Fprintln(out)

		if result.View.IsComplete && !wasComplete {
			wasComplete = true
			fmt.Fprintln(out, "Final score recorded. Type 'scores' for the leaderboard, or 'quit' to exit.")
			fmt.Fprintln(out)
		}

		if result.ShouldQuit {
			fmt.Fprintln(out, "Until next time, hacker.")
			return nil
		}
	}
}

func openGame(ctx context.Context, opts Options, scanner *bufio.Scanner, out io.Writer) (*service.GameInfo, error) {
	if opts.GameID != "" {
		info, err := opts.Service.GetGame(ctx, opts.GameID)
		if err != nil {
			return nil, fmt.Errorf("cannot resume game %s: %w", opts.GameID, err)
		}
		fmt.Fprintf(out, "Resumed game %s.\n\n", info.GameID)
		return info, nil
	}

	handle := strings.TrimSpace(opts.Handle)
	if handle == "" {
		fmt.Fprint(out, "Enter your hacker handle: ")
		if scanner.Scan() {
			handle = strings.TrimSpace(scanner.Text())
		}
		fmt.Fprintln(out)
	}

	return opts.Service.CreateGame(ctx, handle, opts.MazeName)
}

func printScores(ctx context.Context, svc service.GameService, mazeID string, out io.Writer) error {
	scores, err := svc.TopScores(ctx, mazeID, 5)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		fmt.Fprintln(out, "  No scores recorded yet.")
		return nil
	}
	fmt.Fprintln(out, "  -- Top Scores --")
	for i, s := range scores {
		fmt.Fprintf(out, "  %d. %v moves, %vs\n", i+1, metric(s.Metrics, "moves"), metric(s.Metrics, "elapsed_seconds"))
	}
	fmt.Fprintln(out)
	return nil
}

func metric(metrics map[string]any, key string) any {
	if v, ok := metrics[key]; ok {
		return v
	}
	return "?"
}

func parseInput(raw string) engine.Command {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return engine.Command{Verb: ""}
	}
	return engine.Command{Verb: tokens[0], Args: tokens[1:]}
}
