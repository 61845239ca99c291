package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hackmaze/quizmaze/cli"
	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/service"
)

// Server exposes the game as MCP tools. It calls the game service
// directly, so the tools work whether or not the HTTP server runs.
type Server struct {
	service   service.GameService
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers all tools
func NewServer(gameService service.GameService) *Server {
	s := &Server{service: gameService}
	s.initMCPServer()
	return s
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Hack the Maze",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Hack the Maze - MCP Interface

A turn-based maze crawl. You move through a grid one step at a time;
some passages are sealed by puzzle gates and some rooms pose their own
puzzles. While a puzzle is pending you cannot move: answer it first.
Reach the exit cell to complete the run and land on the leaderboard.

AVAILABLE TOOLS:
- start_game: Start a new game (optional player handle and maze name)
- game_view: Current room, exits, pending puzzle, progress
- move: Step north/south/east/west
- answer: Answer the pending puzzle
- look_around: Re-describe the current room
- show_map: ASCII map of the maze (@ you, S start, X exit, ? puzzle, == gated)
- save_game: Save progress explicitly (moves autosave anyway)
- top_scores: Leaderboard for a maze
- list_mazes: Available mazes

Moves and correct answers autosave, so a game survives restarts; keep
the game_id from start_game to continue one.`),
	)
	s.registerTools()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new game, optionally naming the player and the maze",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"handle": map[string]interface{}{
					"type":        "string",
					"description": "Player handle for the leaderboard (optional)",
				},
				"maze": map[string]interface{}{
					"type":        "string",
					"description": "Maze name from list_mazes (optional, defaults to the built-in maze)",
				},
			},
		},
	}, s.handleStartGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_view",
		Description: "Get the current view of a game: room, exits, pending puzzle, move count",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
			},
			Required: []string{"game_id"},
		},
	}, s.handleGameView)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move one step in a direction. Blocked by walls and by unsolved puzzle gates.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"n", "s", "e", "w", "north", "south", "east", "west"},
					"description": "Direction to move",
				},
			},
			Required: []string{"game_id", "direction"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "answer",
		Description: "Answer the pending puzzle of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"answer": map[string]interface{}{
					"type":        "string",
					"description": "Your answer text",
				},
			},
			Required: []string{"game_id", "answer"},
		},
	}, s.handleAnswer)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "look_around",
		Description: "Re-describe the current room without moving",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
			},
			Required: []string{"game_id"},
		},
	}, s.handleLookAround)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "show_map",
		Description: "Render an ASCII map of the maze with the player position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
			},
			Required: []string{"game_id"},
		},
	}, s.handleShowMap)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "save_game",
		Description: "Save game progress explicitly (moves and correct answers autosave)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
			},
			Required: []string{"game_id"},
		},
	}, s.handleSaveGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "top_scores",
		Description: "Show the leaderboard: fewest moves first, elapsed time breaks ties",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"maze_id": map[string]interface{}{
					"type":        "string",
					"description": "Maze identity to rank (optional, defaults to the built-in maze; use * for all)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum entries to return (default 10)",
				},
			},
		},
	}, s.handleTopScores)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_mazes",
		Description: "List the mazes available for start_game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListMazes)
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Tool handlers

func (s *Server) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	handle, _ := args["handle"].(string)
	mazeName, _ := args["maze"].(string)

	info, err := s.service.CreateGame(ctx, handle, mazeName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Game started.\nGame ID: %s\nMaze: %s@%s\n\n%s",
		info.GameID, info.MazeID, info.MazeVersion, cli.RenderView(&info.View, nil))
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleGameView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := requiredString(request, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	view, err := s.service.View(ctx, gameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(cli.RenderView(view, nil)), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := requiredString(request, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	direction, _ := toolArgs(request)["direction"].(string)

	return s.execute(ctx, gameID, engine.Command{Verb: "go", Args: []string{direction}})
}

func (s *Server) handleAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := requiredString(request, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	answer, _ := toolArgs(request)["answer"].(string)

	return s.execute(ctx, gameID, engine.Command{Verb: "answer", Args: strings.Fields(answer)})
}

func (s *Server) handleLookAround(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := requiredString(request, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.execute(ctx, gameID, engine.Command{Verb: "look"})
}

func (s *Server) handleShowMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := requiredString(request, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.service.Execute(ctx, gameID, engine.Command{Verb: "map"})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if out.Map == nil {
		return mcp.NewToolResultError("no map available"), nil
	}
	return mcp.NewToolResultText(cli.RenderMap(out.Map)), nil
}

func (s *Server) handleSaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := requiredString(request, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.execute(ctx, gameID, engine.Command{Verb: "save"})
}

func (s *Server) handleTopScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	mazeID, _ := args["maze_id"].(string)
	limit := 10
	if l, ok := args["limit"].(float64); ok && int(l) > 0 {
		limit = int(l)
	}

	scores, err := s.service.TopScores(ctx, mazeID, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(scores) == 0 {
		return mcp.NewToolResultText("No scores recorded yet."), nil
	}

	var b strings.Builder
	b.WriteString("Top Scores:\n")
	for i, sc := range scores {
		b.WriteString(fmt.Sprintf("%d. %v moves, %vs (maze %s)\n",
			i+1, sc.Metrics["moves"], sc.Metrics["elapsed_seconds"], sc.MazeID))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListMazes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.service.ListMazes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available mazes:\n")
	for _, info := range infos {
		b.WriteString(fmt.Sprintf("- %s: %s@%s (%dx%d)\n",
			info.Name, info.MazeID, info.Version, info.Width, info.Height))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// execute runs one command and renders the resulting view with its
// messages, the same text a terminal player would see.
func (s *Server) execute(ctx context.Context, gameID string, cmd engine.Command) (*mcp.CallToolResult, error) {
	out, err := s.service.Execute(ctx, gameID, cmd)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(cli.RenderView(&out.View, out.Messages)), nil
}

func toolArgs(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	v, _ := toolArgs(request)[key].(string)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}
