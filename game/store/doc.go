// Package store provides the durable repository for player, game, and
// score records.
//
// The Repository interface is the only surface the engine sees. Record
// fields are restricted to JSON-safe primitives, sequences, and
// string-keyed mappings; game state and score metrics cross the
// boundary as opaque maps that the repository stores verbatim.
//
// Two implementations ship with the game: MemoryRepository for tests
// and throwaway servers, and FileRepository, which keeps everything in
// a single human-readable JSON file and flushes each mutation with an
// atomic write-then-rename.
package store
