package chess

import (
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"
)

// MovesToFEN replays SAN moves from the starting position and returns
// the resulting FEN. Tokens are cleaned of check/mate/annotation
// suffixes before parsing; empty tokens are skipped.
func MovesToFEN(moves []string) (string, error) {
	pos := pgn.NewStartingPosition()
	for _, san := range moves {
		san = CleanSAN(san)
		if san == "" {
			continue
		}
		mv, err := pgn.ParseSAN(pos, san)
		if err != nil {
			return "", fmt.Errorf("parse %q: %w", san, err)
		}
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return "", fmt.Errorf("apply %q: %w", san, err)
		}
	}
	return pos.ToFEN(), nil
}

// BlackToMove reports whether the side to move in a FEN is black.
func BlackToMove(fen string) bool {
	return strings.Contains(fen, " b ")
}
