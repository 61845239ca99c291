// Package service provides the business logic layer of the game.
//
// GameService is the main interface the transports consume: it creates
// and resumes games, routes commands to the right engine, and exposes
// the leaderboard and maze catalogue. SessionManager and MazeManager
// are the storage and content contracts it depends on.
//
// The service layer sits between the transport layer (HTTP, WebSocket,
// MCP, terminal) and the game engine. Each live game holds its own
// engine instance with independent state; the service serializes
// command execution so concurrent transports cannot interleave
// commands within one game.
package service
