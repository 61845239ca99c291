// Command quizmaze is the Hack the Maze entry point.
//
// It bundles four ways to reach the same game service:
//
//	play    interactive terminal session
//	serve   HTTP server with REST API, WebSocket watch feed, and /mcp endpoint
//	mcp     MCP server over stdio for AI agents
//	scores  print a maze leaderboard and exit
//
// All modes share one JSON save file, so a game started in the terminal
// can be resumed over the API and vice versa.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	ucli "github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/hackmaze/quizmaze/api"
	terminal "github.com/hackmaze/quizmaze/cli"
	"github.com/hackmaze/quizmaze/game/config"
	"github.com/hackmaze/quizmaze/game/puzzle"
	"github.com/hackmaze/quizmaze/game/service"
	"github.com/hackmaze/quizmaze/game/session"
	"github.com/hackmaze/quizmaze/game/store"
	mcptransport "github.com/hackmaze/quizmaze/transport/mcp"
	"github.com/hackmaze/quizmaze/transport/websocket"
)

const (
	appName    = "quizmaze"
	appVersion = "1.0.0"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *ucli.Command {
	return &ucli.Command{
		Name:    appName,
		Usage:   "Hack the Maze: a turn-based maze crawl with puzzle gates",
		Version: appVersion,
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:    "data",
				Value:   "quizmaze.json",
				Usage:   "path of the JSON save file",
				Sources: ucli.EnvVars("QUIZMAZE_DATA"),
			},
			&ucli.StringFlag{
				Name:    "mazes",
				Value:   "",
				Usage:   "directory of maze definition files (empty: built-in maze only)",
				Sources: ucli.EnvVars("QUIZMAZE_MAZE_DIR"),
			},
			&ucli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *ucli.Command) (context.Context, error) {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				fmt.Fprintln(os.Stderr, "Warning: could not load .env file:", err)
			}
			return ctx, nil
		},
		Commands: []*ucli.Command{
			newPlayCommand(),
			newServeCommand(),
			newMCPCommand(),
			newScoresCommand(),
		},
		DefaultCommand: "play",
	}
}

// services is the wired core every mode runs on.
type services struct {
	game     service.GameService
	sessions *session.Manager
	log      *logrus.Logger
}

func buildServices(cmd *ucli.Command) (*services, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cmd.Bool("debug") {
		log.SetLevel(logrus.DebugLevel)
	}

	repo, err := store.NewFileRepository(cmd.String("data"))
	if err != nil {
		return nil, fmt.Errorf("open save file: %w", err)
	}

	puzzles := puzzle.NewRegistry()
	mazes, err := config.NewManager(cmd.String("mazes"), puzzles)
	if err != nil {
		return nil, fmt.Errorf("load mazes: %w", err)
	}

	sessions := session.NewManager(repo, puzzles, mazes, log)
	return &services{
		game:     service.NewGameService(sessions, mazes, repo, log),
		sessions: sessions,
		log:      log,
	}, nil
}

func newPlayCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "play",
		Usage: "Play interactively in the terminal",
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "handle", Usage: "player handle (prompted when empty)"},
			&ucli.StringFlag{Name: "maze", Usage: "maze name for a new game"},
			&ucli.StringFlag{Name: "game", Usage: "game ID to resume"},
		},
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			svcs, err := buildServices(cmd)
			if err != nil {
				return err
			}
			return terminal.Run(ctx, terminal.Options{
				Service:  svcs.game,
				In:       os.Stdin,
				Out:      os.Stdout,
				Handle:   cmd.String("handle"),
				MazeName: cmd.String("maze"),
				GameID:   cmd.String("game"),
			})
		},
	}
}

func newServeCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server with REST API, WebSocket feed, and /mcp endpoint",
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "host", Value: "localhost", Usage: "listen host"},
			&ucli.IntFlag{Name: "port", Value: 8080, Usage: "listen port"},
			&ucli.BoolFlag{
				Name:    "ngrok",
				Usage:   "expose the server through an ngrok tunnel",
				Sources: ucli.EnvVars("NGROK_ENABLED"),
			},
			&ucli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: ucli.EnvVars("NGROK_AUTHTOKEN"),
			},
			&ucli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain",
				Sources: ucli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			svcs, err := buildServices(cmd)
			if err != nil {
				return err
			}
			return runHTTPServer(ctx, cmd, svcs)
		},
	}
}

func newMCPCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server over stdio",
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			svcs, err := buildServices(cmd)
			if err != nil {
				return err
			}
			svcs.log.Info("MCP stdio server ready")
			return mcptransport.NewServer(svcs.game).ServeStdio()
		},
	}
}

func newScoresCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "scores",
		Usage: "Print a maze leaderboard",
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "maze-id", Usage: "maze identity to rank (default: built-in maze, * for all)"},
			&ucli.IntFlag{Name: "limit", Value: 10, Usage: "maximum entries"},
		},
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			svcs, err := buildServices(cmd)
			if err != nil {
				return err
			}
			scores, err := svcs.game.TopScores(ctx, cmd.String("maze-id"), int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			if len(scores) == 0 {
				fmt.Println("No scores recorded yet.")
				return nil
			}
			for i, sc := range scores {
				fmt.Printf("%d. %v moves, %vs (maze %s@%s)\n",
					i+1, sc.Metrics["moves"], sc.Metrics["elapsed_seconds"], sc.MazeID, sc.MazeVersion)
			}
			return nil
		},
	}
}

// runHTTPServer serves the REST API, the WebSocket hub, and an /mcp
// endpoint that speaks MCP over plain HTTP POST. An ngrok tunnel is
// attached when enabled.
func runHTTPServer(ctx context.Context, cmd *ucli.Command, svcs *services) error {
	log := svcs.log

	hub := websocket.NewHub(log)
	go hub.Run()

	apiServer := api.NewServer(svcs.game, hub, log)
	mcpServer := mcptransport.NewServer(svcs.game)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go sessionCleanupRoutine(serveCtx, svcs.sessions, log)

	var wg sync.WaitGroup

	serverErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithField("addr", addr).Info("HTTP server listening")
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?game=<game_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(serveCtx, cmd, mainRouter, log)
		}()
	}

	select {
	case sig := <-stop:
		log.WithField("signal", sig).Info("Shutting down")
	case err := <-serverErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("http server: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")
	return nil
}

// runNgrokTunnel serves the same router through an ngrok tunnel until
// the context is cancelled. Failures are logged, not fatal; the local
// server keeps running without the tunnel.
func runNgrokTunnel(ctx context.Context, cmd *ucli.Command, handler http.Handler, log *logrus.Logger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.WithField("domain", domain).Info("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithField("url", ngrokURL).Info("Ngrok tunnel established")
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?game=<game_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// sessionCleanupRoutine prunes sessions idle past the retention window.
// Their saved games stay on disk and resume on demand.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, log *logrus.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpired(24 * time.Hour); removed > 0 {
				log.WithField("removed", removed).Info("Cleaned up idle sessions")
			}
		}
	}
}
