package puzzle

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrNotFound = errors.New("puzzle not found")

// CheckFunc decides whether an answer solves a puzzle. It must be pure:
// deterministic in its two inputs and free of side effects. The state
// snapshot is a read-only copy of the session state in its JSON-safe
// form; checks may consult it but never mutate engine state through it.
type CheckFunc func(answer string, state map[string]any) bool

// Puzzle is an immutable challenge definition. The answer comparison
// policy (case folding, trimming, numeric tolerance) belongs to the
// individual puzzle's Check, not to the registry.
type Puzzle struct {
	ID     string
	Title  string
	Prompt string
	Check  CheckFunc
}

// AcceptAnswers builds a CheckFunc that accepts any of the given
// answers, compared case-insensitively after trimming.
func AcceptAnswers(accepted ...string) CheckFunc {
	return func(answer string, _ map[string]any) bool {
		a := strings.ToLower(strings.TrimSpace(answer))
		for _, want := range accepted {
			if a == want {
				return true
			}
		}
		return false
	}
}

// matchesMoveCount accepts the session's current move count. It reads
// the "move_count" key of the snapshot, which may arrive as an int or,
// after a JSON round trip, as a float64.
func matchesMoveCount(answer string, state map[string]any) bool {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return false
	}
	switch v := state["move_count"].(type) {
	case int:
		return n == v
	case int64:
		return int64(n) == v
	case float64:
		return float64(n) == v
	default:
		return false
	}
}

// Registry looks up puzzles by identifier. Its content is fixed at
// construction; nothing is added or removed at runtime, so a Registry
// is safe to share between concurrent sessions.
type Registry struct {
	byID map[string]Puzzle
}

// NewRegistry returns the built-in puzzle catalogue.
func NewRegistry() *Registry {
	return NewRegistryFrom(
		Puzzle{
			ID:    "gate-firewall",
			Title: "Firewall Lattice",
			Prompt: "The firewall demands proof you belong here.\n\n" +
				"  On what TCP port does SSH listen by default?\n" +
				"  (number)",
			Check: AcceptAnswers("22"),
		},
		Puzzle{
			ID:    "puzzle-honeypot",
			Title: "Honeypot Mirror",
			Prompt: "The honeypot replays your own session back at you.\n\n" +
				"  How many moves have you made so far?\n" +
				"  (number)",
			Check: matchesMoveCount,
		},
		Puzzle{
			ID:    "gate-root-access",
			Title: "Root Access Hatch",
			Prompt: "A uid check guards the maintenance hatch.\n\n" +
				"  What is the numeric user id of root?\n" +
				"  (number)",
			Check: AcceptAnswers("0"),
		},
		Puzzle{
			ID:    "gate-cipher",
			Title: "Cipher Node",
			Prompt: "A rotor panel blinks: URYYB.\n\n" +
				"  Decode the ROT13 ciphertext.\n" +
				"  (one word)",
			Check: AcceptAnswers("hello"),
		},
	)
}

// NewRegistryFrom builds a registry with explicit content, for maze
// packs that ship their own puzzles and for tests.
func NewRegistryFrom(puzzles ...Puzzle) *Registry {
	byID := make(map[string]Puzzle, len(puzzles))
	for _, p := range puzzles {
		byID[p.ID] = p
	}
	return &Registry{byID: byID}
}

// Get returns the puzzle for a known identifier. An unknown identifier
// is a maze-data integrity error; maze validation catches it at load
// time, so hitting ErrNotFound mid-session indicates a bug.
func (r *Registry) Get(id string) (Puzzle, error) {
	p, ok := r.byID[id]
	if !ok {
		return Puzzle{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return p, nil
}

// Has reports whether the registry knows the identifier.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns all known puzzle identifiers, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
