// Package maze models an immutable grid maze: cells, blocked edges, and
// gate requirements attached to edges or cells.
//
// The maze is a pure query surface. It knows which moves are physically
// possible and which identifiers gate an edge or a cell, but it has no
// notion of players, solved state, or persistence. Gated edges remain in
// AvailableMoves; deciding whether a gate is satisfied belongs to the
// engine package.
//
// Mazes are built once, either from a hand-authored JSON Definition via
// New or from the built-in BuildMinimal3x3 factory, and are then safe to
// share read-only between any number of concurrent sessions.
package maze
