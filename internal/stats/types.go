// Package stats aggregates game records into per-opening statistics.
package stats

import (
	"github.com/chessdata/openingstats/internal/engine"
	"github.com/chessdata/openingstats/internal/records"
)

// NextMove is one popular continuation. Engine-sourced moves carry an
// evaluation; corpus-sourced moves carry a frequency count.
type NextMove struct {
	Move  string       `json:"move"`
	Count int          `json:"count,omitempty"`
	Eval  *engine.Eval `json:"eval,omitempty"`
}

// TopGame is a representative high-rated game, stripped of the
// combined-elo ranking key.
type TopGame struct {
	White     records.Player `json:"white"`
	Black     records.Player `json:"black"`
	Result    string         `json:"result"`
	NumMoves  int            `json:"numMoves"`
	Event     string         `json:"event,omitempty"`
	StudyName string         `json:"studyName,omitempty"`
	GameURL   string         `json:"gameURL,omitempty"`
}

// VariationStats is the per-variation statistics record. Built once
// per valid group; never mutated after creation.
type VariationStats struct {
	Variation        string           `json:"variation"`
	OpeningMoves     []string         `json:"openingMoves"`
	FEN              string           `json:"fen,omitempty"`
	OpeningEval      *engine.Eval     `json:"openingEval"`
	TotalGames       int              `json:"totalGames"`
	WinPctWhite      float64          `json:"winPercentageWhite"`
	WinPctBlack      float64          `json:"winPercentageBlack"`
	DrawPct          float64          `json:"drawPercentage"`
	AvgMoves         float64          `json:"averageMoves"`
	StrongestPlayer  string           `json:"strongestPlayer"`
	PopularNextMoves []NextMove       `json:"popularNextMoves"`
	PlayerElos       []records.Player `json:"playerElos"`
	TopGames         []TopGame        `json:"topGames"`
}

// OpeningStats groups the variations of one base opening.
type OpeningStats struct {
	Opening    string           `json:"opening"`
	Variations []VariationStats `json:"variations"`
}
