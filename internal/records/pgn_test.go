package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePGN = `[Event "Rated Blitz game"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[WhiteElo "2100"]
[BlackElo "2050"]
[ECO "B90"]
[Opening "Sicilian Defense"]
[Variation "Najdorf"]

1. e4 { [%clk 0:03:00] } c5 2. Nf3 $1 d6 3. d4 cxd4 4. Nxd4 Nf6 1-0

[Event "Rated Blitz game"]
[White "carol"]
[Black "dave"]
[Result "0-1"]
[WhiteElo "1900"]
[BlackElo "1950"]
[Opening "King's Pawn Game"]

1. e4 e5 2. Nf3 Nc6 0-1

[Event "Casual game"]
[White "erin"]
[Black "frank"]
[Result "*"]
[WhiteElo "?"]
[BlackElo "?"]

1. e4 e5 2. Nf3 *

[Event "Rated Blitz game"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[WhiteElo "2100"]
[BlackElo "2050"]
[ECO "B90"]
[Opening "Sicilian Defense"]
[Variation "Najdorf"]

1. e4 c5 2. Nf3 d6 3. d4 cxd4 4. Nxd4 Nf6 1-0
`

func writePGN(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.pgn")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNormalizePGN(t *testing.T) {
	recs, stats, err := NormalizePGN(writePGN(t, samplePGN), NormalizeOptions{MinMoves: 4})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Processed)
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 1, stats.Skipped) // unfinished game
	assert.Equal(t, 1, stats.Duplicates)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "alice", first.White.Name)
	assert.Equal(t, 2100, first.White.Elo)
	assert.Equal(t, ResultWhite, first.Result)
	assert.Equal(t, "Sicilian Defense", first.Opening)
	assert.Equal(t, "Najdorf", first.Variation)
	assert.Equal(t, "B90", first.ECO)
	// Clocks, NAGs, move numbers, and the result token are stripped.
	assert.Equal(t, []string{"e4", "c5", "Nf3", "d6", "d4", "cxd4", "Nxd4", "Nf6"}, first.Moves)
	assert.Equal(t, 8, first.NumMoves)

	assert.Equal(t, ResultBlack, recs[1].Result)
}

func TestNormalizePGNRatingFloor(t *testing.T) {
	recs, stats, err := NormalizePGN(writePGN(t, samplePGN),
		NormalizeOptions{MinMoves: 4, RatingMin: 2000})
	require.NoError(t, err)

	// Only alice-bob clears a 2000 floor; its duplicate still counts.
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Duplicates)
	require.Len(t, recs, 1)
	assert.Equal(t, "alice", recs[0].White.Name)
}

func TestNormalizePGNMinMoves(t *testing.T) {
	short := `[White "a"]
[Black "b"]
[Result "1-0"]

1. e4 e5 1-0
`
	recs, stats, err := NormalizePGN(writePGN(t, short), NormalizeOptions{MinMoves: 4})
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 1, stats.Malformed)
}

func TestCleanMovetext(t *testing.T) {
	moves := CleanMovetext(`1. e4 { [%eval 0.2] } e5 2. Nf3 $6 Nc6 3. Bb5 a6 1/2-1/2`)
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}, moves)

	moves = CleanMovetext(`1.d4 d5 2.c4 ... dxc4`)
	assert.Equal(t, []string{"d4", "d5", "c4", "dxc4"}, moves)
}
