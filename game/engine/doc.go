// Package engine implements the command-processing core of the game.
//
// An Engine owns the mutable state of exactly one session and turns
// Commands from a presentation layer into state transitions, puzzle
// evaluation, and completion detection. The maze and puzzle registry it
// reads are injected, immutable, and shared; the repository it writes
// is injected and opaque.
//
// A session is always in one of three logical states:
//
//   - exploring: movement commands are accepted
//   - blocked: a pending puzzle must be answered before moving
//   - complete: terminal; movement and answer become message-only no-ops
//
// Processing is strictly sequential. One Engine handles one command to
// completion before the next; distinct sessions only share the
// read-only maze and registry and are therefore independent.
package engine
