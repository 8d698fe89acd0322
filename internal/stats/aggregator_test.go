package stats_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessdata/openingstats/internal/eco"
	"github.com/chessdata/openingstats/internal/engine"
	"github.com/chessdata/openingstats/internal/records"
	"github.com/chessdata/openingstats/internal/stats"
)

const taxonomyJSON = `[
  {"name": "King's Pawn Game", "eco": "B00", "moves": "1.e4"},
  {"name": "Ruy Lopez", "eco": "C60", "moves": "1.e4 e5 2.Nf3 Nc6 3.Bb5"},
  {"name": "Sicilian Defense", "eco": "B20", "moves": "1.e4 c5"},
  {"name": "Sicilian Defense: Najdorf Variation", "eco": "B90", "moves": "1.e4 c5 2.Nf3 d6 3.d4 cxd4 4.Nxd4 Nf6 5.Nc3 a6"}
]`

var najdorfMoves = []string{"e4", "c5", "Nf3", "d6", "d4", "cxd4", "Nxd4", "Nf6", "Nc3", "a6"}

func newTestAggregator(t *testing.T, cfg stats.Config) *stats.Aggregator {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eco_test.json")
	require.NoError(t, os.WriteFile(path, []byte(taxonomyJSON), 0o644))

	db := eco.NewDatabase()
	require.NoError(t, db.LoadFile(path))
	matcher := eco.NewMatcher(db, 100, 100)
	pool := engine.NewPool(engine.Config{Disabled: true, Logger: zerolog.Nop()})
	t.Cleanup(pool.Close)

	cfg.Logger = zerolog.Nop()
	return stats.New(cfg, db, matcher, pool)
}

// najdorfGames builds 12 games in one group: 5 white wins, 4 black
// wins, 3 draws, with distinct digit-free player names and rising elos.
func najdorfGames() []records.GameRecord {
	recs := make([]records.GameRecord, 12)
	for i := range recs {
		result := records.ResultWhite
		switch {
		case i >= 9:
			result = records.ResultDraw
		case i >= 5:
			result = records.ResultBlack
		}

		continuation := []string{"Be3", "e5"}
		if i >= 8 {
			continuation = []string{"Bg5", "e6"}
		}
		moves := append(append([]string{}, najdorfMoves...), continuation...)

		suffix := string(rune('A' + i))
		recs[i] = records.GameRecord{
			White:     records.Player{Name: "White " + suffix, Elo: 2600 + 10*i},
			Black:     records.Player{Name: "Black " + suffix, Elo: 2500 + 10*i},
			Result:    result,
			Moves:     moves,
			NumMoves:  len(moves),
			Opening:   "Sicilian Defense",
			Variation: "Najdorf",
			ECO:       "B90",
		}
	}
	return recs
}

func TestAggregateNajdorfGroup(t *testing.T) {
	agg := newTestAggregator(t, stats.Config{MinGames: 10})

	out, err := agg.Aggregate(najdorfGames())
	require.NoError(t, err)
	require.Len(t, out, 1)

	opening := out[0]
	assert.Equal(t, "Sicilian Defense", opening.Opening)
	require.Len(t, opening.Variations, 1)

	vs := opening.Variations[0]
	assert.Equal(t, "Najdorf Variation", vs.Variation)
	assert.Equal(t, najdorfMoves, vs.OpeningMoves)
	assert.Equal(t, 12, vs.TotalGames)
	assert.InDelta(t, 41.67, vs.WinPctWhite, 0.001)
	assert.InDelta(t, 33.33, vs.WinPctBlack, 0.001)
	assert.InDelta(t, 25.0, vs.DrawPct, 0.001)
	assert.InDelta(t, 100.0, vs.WinPctWhite+vs.WinPctBlack+vs.DrawPct, 0.01,
		"percentages must close to 100")
	assert.InDelta(t, 12.0, vs.AvgMoves, 0.001)

	// Resolved position after the ten opening plies, white to move.
	require.NotEmpty(t, vs.FEN)
	assert.Contains(t, vs.FEN, " w ")

	// No engine: the score index stands in for an evaluation.
	require.NotNil(t, vs.OpeningEval)
	assert.Equal(t, engine.Centipawns, vs.OpeningEval.Kind)
	assert.Equal(t, 17, vs.OpeningEval.CP)

	assert.Equal(t, "White L", vs.StrongestPlayer)

	// All whites precede all blacks, capped at the default ten.
	require.Len(t, vs.PlayerElos, 10)
	assert.Equal(t, records.Player{Name: "White A", Elo: 2600}, vs.PlayerElos[0])
	assert.Equal(t, records.Player{Name: "White J", Elo: 2690}, vs.PlayerElos[9])

	// Continuations past the opening, by corpus frequency.
	require.Len(t, vs.PopularNextMoves, 2)
	assert.Equal(t, "Be3", vs.PopularNextMoves[0].Move)
	assert.Equal(t, 8, vs.PopularNextMoves[0].Count)
	assert.Equal(t, "Bg5", vs.PopularNextMoves[1].Move)
	assert.Equal(t, 4, vs.PopularNextMoves[1].Count)

	// The two highest combined-elo games.
	require.Len(t, vs.TopGames, 2)
	assert.Equal(t, "White L", vs.TopGames[0].White.Name)
	assert.Equal(t, "White K", vs.TopGames[1].White.Name)
}

func TestAggregateEmpty(t *testing.T) {
	agg := newTestAggregator(t, stats.Config{})
	_, err := agg.Aggregate(nil)
	assert.ErrorIs(t, err, stats.ErrNoRecords)
}

func TestAggregateSkipsSmallGroups(t *testing.T) {
	recs := najdorfGames()
	stray := records.GameRecord{
		White:    records.Player{Name: "Gamma", Elo: 2000},
		Black:    records.Player{Name: "Delta", Elo: 1900},
		Result:   records.ResultDraw,
		Moves:    []string{"d4", "d5", "c4", "e6"},
		NumMoves: 4,
		Opening:  "Queen's Gambit",
	}
	recs = append(recs, stray)

	agg := newTestAggregator(t, stats.Config{MinGames: 10})
	out, err := agg.Aggregate(recs)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Sicilian Defense", out[0].Opening)
}

func TestAggregateSkipsPlaceholderOpening(t *testing.T) {
	recs := najdorfGames()
	for i := range recs {
		recs[i].Opening = "?"
	}

	agg := newTestAggregator(t, stats.Config{MinGames: 10})
	out, err := agg.Aggregate(recs)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAggregateSkipsCorruptStrongestPlayer(t *testing.T) {
	recs := najdorfGames()
	recs[3].White = records.Player{Name: "Bot3000", Elo: 3200}

	agg := newTestAggregator(t, stats.Config{MinGames: 10})
	out, err := agg.Aggregate(recs)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAggregateResolvesOpeningFromMoves(t *testing.T) {
	// The label is unregistered; the sample moves still resolve the
	// canonical name.
	moves := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O", "Be7"}
	recs := make([]records.GameRecord, 10)
	for i := range recs {
		suffix := string(rune('A' + i))
		recs[i] = records.GameRecord{
			White:    records.Player{Name: "West " + suffix, Elo: 2200},
			Black:    records.Player{Name: "East " + suffix, Elo: 2200},
			Result:   records.ResultDraw,
			Moves:    moves,
			NumMoves: len(moves),
			Opening:  "Spanish Game",
		}
	}

	agg := newTestAggregator(t, stats.Config{MinGames: 10})
	out, err := agg.Aggregate(recs)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Ruy Lopez", out[0].Opening)
	require.Len(t, out[0].Variations, 1)
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}, out[0].Variations[0].OpeningMoves)
}
