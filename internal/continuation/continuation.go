// Package continuation finds the most popular moves played right
// after an opening, searching adjacent lengths when the expected
// opening length yields too few samples.
package continuation

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/chessdata/openingstats/internal/chess"
)

const (
	// DefaultMinSamples is the floor on valid samples for a length to win.
	DefaultMinSamples = 3

	// Derived default lengths are clamped to [minDerivedLen, maxDerivedLen].
	minDerivedLen = 6
	maxDerivedLen = 8

	// Fallback search bounds.
	minFallbackLen = 4
	maxFallbackLen = 14
	maxLongerSteps = 3
)

// MoveCount is one continuation move with its frequency.
type MoveCount struct {
	Move  string `json:"move"`
	Count int    `json:"count"`
}

// Detect returns the frequency table of moves played at the resolved
// opening length across games, and that length. Candidate lengths are
// tried in a fixed order: the expected length, then shorter lengths
// down to 4, then (only when an expected length was supplied) up to
// three longer lengths capped at 14. The first length meeting
// minSamples wins; otherwise the last attempt's table is returned.
func Detect(games [][]string, expectedLen, minSamples int) (map[string]int, int) {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	if len(games) == 0 {
		return map[string]int{}, 0
	}

	supplied := expectedLen > 0
	if !supplied {
		expectedLen = derivedLength(games)
	}

	var table map[string]int
	resolved := expectedLen
	for _, length := range candidateLengths(expectedLen, supplied) {
		table = movesAt(games, length)
		resolved = length
		if total(table) >= minSamples {
			break
		}
	}
	return table, resolved
}

// TopK returns the k most frequent moves, counts descending with ties
// broken by move text so the ranking is deterministic.
func TopK(table map[string]int, k int) []MoveCount {
	ranked := make([]MoveCount, 0, len(table))
	for move, count := range table {
		ranked = append(ranked, MoveCount{Move: move, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Move < ranked[j].Move
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// candidateLengths builds the ordered fallback states up front so the
// search policy stays flat and auditable.
func candidateLengths(expected int, supplied bool) []int {
	lengths := []int{expected}
	if expected > minFallbackLen {
		for l := expected - 1; l >= minFallbackLen; l-- {
			lengths = append(lengths, l)
		}
	}
	if supplied {
		for l := expected + 1; l <= expected+maxLongerSteps && l <= maxFallbackLen; l++ {
			lengths = append(lengths, l)
		}
	}
	return lengths
}

// movesAt tallies the grammar-valid token at index length of every
// game long enough to have one.
func movesAt(games [][]string, length int) map[string]int {
	table := make(map[string]int)
	for _, moves := range games {
		if len(moves) <= length {
			continue
		}
		token := moves[length]
		if chess.ValidSAN(token) {
			table[chess.CleanSAN(token)]++
		}
	}
	return table
}

// derivedLength estimates an opening length from average game length,
// clamped to [6,8].
func derivedLength(games [][]string) int {
	lengths := make([]float64, len(games))
	for i, moves := range games {
		lengths[i] = float64(len(moves))
	}
	derived := int(stat.Mean(lengths, nil) * 0.2)
	if derived < minDerivedLen {
		derived = minDerivedLen
	}
	if derived > maxDerivedLen {
		derived = maxDerivedLen
	}
	return derived
}

func total(table map[string]int) int {
	n := 0
	for _, count := range table {
		n += count
	}
	return n
}
