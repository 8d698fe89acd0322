package stats

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/chessdata/openingstats/internal/continuation"
	"github.com/chessdata/openingstats/internal/eco"
	"github.com/chessdata/openingstats/internal/engine"
	"github.com/chessdata/openingstats/internal/records"
)

// ErrNoRecords is returned when aggregation is given nothing to do.
var ErrNoRecords = errors.New("no game records to aggregate")

// topGamesKept is how many representative games each variation keeps.
const topGamesKept = 2

// skipReason says why a group produced no statistics. Expected
// outcomes, not errors.
type skipReason string

const (
	skipNone          skipReason = ""
	skipTooFewGames   skipReason = "too few games"
	skipPlaceholder   skipReason = "placeholder label"
	skipNoPlayers     skipReason = "no players"
	skipCorruptPlayer skipReason = "strongest player name has digits"
	skipInternal      skipReason = "internal error"
)

// groupOutcome is the per-group result: statistics or a skip reason.
type groupOutcome struct {
	stats *VariationStats
	base  string
	skip  skipReason
}

// Config tunes the aggregator.
type Config struct {
	MinGames             int
	MaxPlayersPerOpening int
	MinSamples           int
	TopNextMoves         int
	Logger               zerolog.Logger
}

// Aggregator groups game records by (opening, variation) and builds
// one VariationStats per valid group, resolving canonical openings
// through the matcher and scoring positions through the engine pool.
type Aggregator struct {
	cfg     Config
	db      *eco.Database
	matcher *eco.Matcher
	pool    *engine.Pool
	log     zerolog.Logger
}

// New creates an aggregator.
func New(cfg Config, db *eco.Database, matcher *eco.Matcher, pool *engine.Pool) *Aggregator {
	if cfg.MinGames == 0 {
		cfg.MinGames = 10
	}
	if cfg.MaxPlayersPerOpening == 0 {
		cfg.MaxPlayersPerOpening = 10
	}
	if cfg.MinSamples == 0 {
		cfg.MinSamples = continuation.DefaultMinSamples
	}
	if cfg.TopNextMoves == 0 {
		cfg.TopNextMoves = 5
	}
	return &Aggregator{
		cfg:     cfg,
		db:      db,
		matcher: matcher,
		pool:    pool,
		log:     cfg.Logger,
	}
}

type groupKey struct {
	opening   string
	variation string
}

// Aggregate builds per-opening statistics. Group failures skip that
// group only; the run fails only when there is no input at all.
func (a *Aggregator) Aggregate(recs []records.GameRecord) ([]OpeningStats, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}

	groups := make(map[groupKey][]*records.GameRecord)
	var order []groupKey
	for i := range recs {
		rec := &recs[i]
		key := groupKey{opening: rec.Opening, variation: rec.Variation}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].opening != order[j].opening {
			return order[i].opening < order[j].opening
		}
		return order[i].variation < order[j].variation
	})

	byOpening := make(map[string][]VariationStats)
	var openingOrder []string
	emitted, skipped := 0, 0
	for _, key := range order {
		outcome := a.safeProcessGroup(key, groups[key])
		if outcome.skip != skipNone {
			skipped++
			a.log.Debug().
				Str("opening", key.opening).
				Str("variation", key.variation).
				Str("reason", string(outcome.skip)).
				Msg("group skipped")
			continue
		}
		if _, ok := byOpening[outcome.base]; !ok {
			openingOrder = append(openingOrder, outcome.base)
		}
		byOpening[outcome.base] = append(byOpening[outcome.base], *outcome.stats)
		emitted++
	}

	out := make([]OpeningStats, 0, len(openingOrder))
	for _, name := range openingOrder {
		if isPlaceholderLabel(name) {
			continue
		}
		out = append(out, OpeningStats{Opening: name, Variations: byOpening[name]})
	}

	a.log.Info().
		Int("groups", len(order)).
		Int("emitted", emitted).
		Int("skipped", skipped).
		Int("openings", len(out)).
		Msg("aggregation complete")
	return out, nil
}

// safeProcessGroup contains a panicking group so one bad group cannot
// abort the run.
func (a *Aggregator) safeProcessGroup(key groupKey, games []*records.GameRecord) (outcome groupOutcome) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().
				Str("opening", key.opening).
				Interface("panic", r).
				Msg("group processing panicked")
			outcome = groupOutcome{skip: skipInternal}
		}
	}()
	return a.processGroup(key, games)
}

func (a *Aggregator) processGroup(key groupKey, games []*records.GameRecord) groupOutcome {
	if len(games) < a.cfg.MinGames {
		return groupOutcome{skip: skipTooFewGames}
	}
	if isPlaceholderLabel(key.opening) {
		return groupOutcome{skip: skipPlaceholder}
	}

	total := len(games)
	whiteWins, blackWins, draws := 0, 0, 0
	moveCounts := make([]float64, total)
	for i, g := range games {
		switch g.Result {
		case records.ResultWhite:
			whiteWins++
		case records.ResultBlack:
			blackWins++
		case records.ResultDraw:
			draws++
		}
		moveCounts[i] = float64(g.NumMoves)
	}
	winPctWhite := round2(100 * float64(whiteWins) / float64(total))
	winPctBlack := round2(100 * float64(blackWins) / float64(total))
	drawPct := round2(100 * float64(draws) / float64(total))
	avgMoves := round2(stat.Mean(moveCounts, nil))

	players := collectPlayers(games)
	if len(players) == 0 {
		return groupOutcome{skip: skipNoPlayers}
	}
	strongest := strongestPlayer(players)
	if hasDigit(strongest) {
		return groupOutcome{skip: skipCorruptPlayer}
	}
	playerElos := dedupePlayers(players, a.cfg.MaxPlayersPerOpening)

	base, variationName, openingMoves := a.matcher.ResolveCanonical(
		key.opening, key.variation, games[0].Moves)

	// Taxonomy-code fallback: a representative line for the code still
	// gives us a position to score when name and move matching failed.
	if len(openingMoves) == 0 && games[0].ECO != "" {
		if entry := a.db.ByCode(games[0].ECO); entry != nil {
			openingMoves = entry.Moves
		}
	}

	fen := ""
	if len(openingMoves) > 0 {
		fen = a.pool.FENAfter(openingMoves)
	}

	openingEval := a.pool.Evaluate(fen)
	if openingEval == nil {
		// Directional fallback keeps every group sortable by a signed
		// indicator even without an engine.
		openingEval = engine.Cp(int(math.Round((winPctWhite - winPctBlack) * 2)))
	}

	nextMoves := a.popularNextMoves(fen, games, len(openingMoves))
	topGames := rankTopGames(games)

	vs := &VariationStats{
		Variation:        variationName,
		OpeningMoves:     openingMovesOrEmpty(openingMoves),
		FEN:              fen,
		OpeningEval:      openingEval,
		TotalGames:       total,
		WinPctWhite:      winPctWhite,
		WinPctBlack:      winPctBlack,
		DrawPct:          drawPct,
		AvgMoves:         avgMoves,
		StrongestPlayer:  strongest,
		PopularNextMoves: nextMoves,
		PlayerElos:       playerElos,
		TopGames:         topGames,
	}
	return groupOutcome{stats: vs, base: base}
}

// popularNextMoves prefers the engine's top moves for the resolved
// position and falls back to the corpus continuation detector.
func (a *Aggregator) popularNextMoves(fen string, games []*records.GameRecord, openingLen int) []NextMove {
	if top := a.pool.TopMoves(fen, a.cfg.TopNextMoves); len(top) > 0 {
		out := make([]NextMove, len(top))
		for i, ms := range top {
			out[i] = NextMove{Move: ms.Move, Eval: ms.Eval}
		}
		return out
	}

	moveLists := make([][]string, len(games))
	for i, g := range games {
		moveLists[i] = g.Moves
	}
	table, _ := continuation.Detect(moveLists, openingLen, a.cfg.MinSamples)
	ranked := continuation.TopK(table, a.cfg.TopNextMoves)
	out := make([]NextMove, len(ranked))
	for i, mc := range ranked {
		out[i] = NextMove{Move: mc.Move, Count: mc.Count}
	}
	return out
}

// collectPlayers returns (name, elo) pairs, all whites before all
// blacks; this order decides strongest-player ties.
func collectPlayers(games []*records.GameRecord) []records.Player {
	players := make([]records.Player, 0, 2*len(games))
	for _, g := range games {
		if g.White.Name != "" {
			players = append(players, g.White)
		}
	}
	for _, g := range games {
		if g.Black.Name != "" {
			players = append(players, g.Black)
		}
	}
	return players
}

// strongestPlayer returns the max-elo name; earlier entries win ties.
func strongestPlayer(players []records.Player) string {
	best := players[0]
	for _, p := range players[1:] {
		if p.Elo > best.Elo {
			best = p
		}
	}
	return best.Name
}

// dedupePlayers keeps the first-seen elo per name, capped at limit.
func dedupePlayers(players []records.Player, limit int) []records.Player {
	seen := make(map[string]struct{}, len(players))
	out := make([]records.Player, 0, limit)
	for _, p := range players {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// rankTopGames keeps the two games with the highest combined elo.
func rankTopGames(games []*records.GameRecord) []TopGame {
	ranked := make([]*records.GameRecord, len(games))
	copy(ranked, games)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].White.Elo+ranked[i].Black.Elo >
			ranked[j].White.Elo+ranked[j].Black.Elo
	})
	if len(ranked) > topGamesKept {
		ranked = ranked[:topGamesKept]
	}

	out := make([]TopGame, len(ranked))
	for i, g := range ranked {
		out[i] = TopGame{
			White:     g.White,
			Black:     g.Black,
			Result:    g.Result,
			NumMoves:  g.NumMoves,
			Event:     g.Event,
			StudyName: g.StudyName,
			GameURL:   g.GameURL,
		}
	}
	return out
}

func isPlaceholderLabel(name string) bool {
	switch strings.TrimSpace(name) {
	case "", "?", eco.UnknownOpening:
		return true
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func openingMovesOrEmpty(moves []string) []string {
	if moves == nil {
		return []string{}
	}
	return moves
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
