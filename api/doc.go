// Package api exposes the game over REST.
//
// Routes live under /api: games are created and listed at /games,
// commands post to /games/{id}/command, and read-only projections come
// from /games/{id}/view, /scores and /mazes. Every executed command is
// also fanned out to WebSocket watchers attached at /ws?game=<id>.
//
// Responses are JSON. Errors arrive as {"error": "..."} with the usual
// statuses: 404 for unknown games, 409 when a saved game no longer
// matches its maze, 400 for malformed requests.
package api
