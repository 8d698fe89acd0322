// Package engine provides pooled access to a UCI evaluation engine
// with caching and graceful degradation.
package engine

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Kind discriminates centipawn scores from forced-mate distances.
type Kind int

const (
	Centipawns Kind = iota
	Mate
)

// Eval is one engine assessment of a position. Centipawn scores are
// normalized to white's perspective.
type Eval struct {
	Kind   Kind
	CP     int
	MateIn int
}

// Cp builds a centipawn evaluation.
func Cp(score int) *Eval {
	return &Eval{Kind: Centipawns, CP: score}
}

// MateScore builds a forced-mate evaluation.
func MateScore(n int) *Eval {
	return &Eval{Kind: Mate, MateIn: n}
}

// MarshalJSON serializes centipawns as a number and mates as "# n".
func (e *Eval) MarshalJSON() ([]byte, error) {
	if e.Kind == Mate {
		return json.Marshal(fmt.Sprintf("# %d", e.MateIn))
	}
	return json.Marshal(e.CP)
}

// String renders the evaluation the way it is serialized.
func (e *Eval) String() string {
	if e == nil {
		return "no data"
	}
	if e.Kind == Mate {
		return fmt.Sprintf("# %d", e.MateIn)
	}
	return fmt.Sprintf("%d", e.CP)
}

// MoveScore is one engine-suggested move with its evaluation. The move
// is in UCI long algebraic notation as emitted by the engine.
type MoveScore struct {
	Move string `json:"move"`
	Eval *Eval  `json:"eval"`
}
