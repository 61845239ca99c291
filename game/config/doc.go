// Package config loads maze content.
//
// Mazes are stored as JSON definition files in a content directory and
// referred to by file stem. A built-in maze named "default" is always
// available so the game runs with no content directory at all.
//
// Every maze handed out by the Manager has been structurally validated
// and checked against the puzzle registry: all referenced puzzles
// exist and the exit is reachable from the start.
package config
