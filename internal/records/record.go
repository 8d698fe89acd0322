// Package records defines the normalized game record and its I/O.
package records

import (
	"errors"
	"strings"
)

// Result values for a finished game.
const (
	ResultWhite = "white"
	ResultBlack = "black"
	ResultDraw  = "draw"
)

// ErrMalformed marks records missing required fields; such records are
// dropped and processing continues.
var ErrMalformed = errors.New("malformed record")

// Player is one side of a game.
type Player struct {
	Name string `json:"name"`
	Elo  int    `json:"elo"`
}

// GameRecord is a normalized game. Produced by the normalizer,
// consumed read-only by the aggregator.
type GameRecord struct {
	White     Player   `json:"white"`
	Black     Player   `json:"black"`
	Result    string   `json:"result"`
	Moves     []string `json:"moves"`
	NumMoves  int      `json:"numMoves"`
	Opening   string   `json:"opening"`
	Variation string   `json:"variation"`
	ECO       string   `json:"eco,omitempty"`

	// Optional event metadata.
	Event     string `json:"event,omitempty"`
	StudyName string `json:"studyName,omitempty"`
	GameURL   string `json:"gameURL,omitempty"`
}

// Validate checks required fields. minMoves <= 0 disables the move
// count floor.
func (r *GameRecord) Validate(minMoves int) error {
	switch {
	case r.White.Name == "" || r.Black.Name == "":
		return ErrMalformed
	case len(r.Moves) == 0:
		return ErrMalformed
	case r.NumMoves < minMoves:
		return ErrMalformed
	}
	switch r.Result {
	case ResultWhite, ResultBlack, ResultDraw:
	default:
		return ErrMalformed
	}
	return nil
}

// MapResult converts a PGN result tag to the normalized form, or ""
// for unknown results.
func MapResult(tag string) string {
	switch tag {
	case "1-0":
		return ResultWhite
	case "0-1":
		return ResultBlack
	case "1/2-1/2":
		return ResultDraw
	}
	return ""
}

// signatureMoveLen bounds how much of the move text feeds the dedup
// signature; near-identical games differ well before 100 characters.
const signatureMoveLen = 100

// Signature identifies a game for deduplication: players, result, and
// the first 100 characters of the joined move text.
func (r *GameRecord) Signature() string {
	moves := strings.Join(r.Moves, "|")
	if len(moves) > signatureMoveLen {
		moves = moves[:signatureMoveLen]
	}
	return r.White.Name + "|" + r.Black.Name + "|" + r.Result + "|" + moves
}

// Deduper retains the first record per signature.
type Deduper struct {
	seen       map[string]struct{}
	duplicates int
}

// NewDeduper creates an empty deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// Keep reports whether the record is the first with its signature.
func (d *Deduper) Keep(r *GameRecord) bool {
	sig := r.Signature()
	if _, ok := d.seen[sig]; ok {
		d.duplicates++
		return false
	}
	d.seen[sig] = struct{}{}
	return true
}

// Duplicates returns how many records were rejected.
func (d *Deduper) Duplicates() int {
	return d.duplicates
}
