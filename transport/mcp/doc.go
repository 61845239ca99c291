// Package mcp exposes the game as Model Context Protocol tools, so AI
// agents can play over stdio or the /mcp HTTP endpoint.
//
// Tools map one-to-one onto game commands (move, answer, look_around,
// show_map, save_game) plus lifecycle and leaderboard operations
// (start_game, game_view, top_scores, list_mazes). Results render as
// the same text a terminal player would see.
//
// The server calls the game service in-process rather than proxying
// the REST API, so MCP mode works standalone.
package mcp
