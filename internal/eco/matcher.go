package eco

import (
	"strings"

	"github.com/chessdata/openingstats/internal/cache"
)

// UnknownOpening is the sentinel returned when no entry matches.
const UnknownOpening = "Unknown Opening"

// sampleMoveLimit caps how many game moves feed a canonical-resolution
// match query.
const sampleMoveLimit = 10

// Matcher resolves move sequences and labels to canonical openings.
// Results are cached because identical sequences recur across a large
// corpus. Safe for concurrent use.
type Matcher struct {
	db         *Database
	matchCache *cache.LRU[string, string]
	splitCache *cache.LRU[string, [2]string]
}

// NewMatcher creates a matcher over db with the given cache capacities.
func NewMatcher(db *Database, matchCap, splitCap int) *Matcher {
	return &Matcher{
		db:         db,
		matchCache: cache.New[string, string](matchCap),
		splitCache: cache.New[string, [2]string](splitCap),
	}
}

// Match returns the name of the longest taxonomy entry whose move
// sequence is a prefix of moves, or UnknownOpening. Equal-length
// candidates keep the earlier-loaded entry.
func (m *Matcher) Match(moves []string) string {
	cleaned := cleanMoves(moves)
	if len(cleaned) == 0 {
		return UnknownOpening
	}

	key := strings.Join(cleaned, "|")
	if name, ok := m.matchCache.Get(key); ok {
		return name
	}

	name := m.matchScan(cleaned)
	m.matchCache.Put(key, name)
	return name
}

func (m *Matcher) matchScan(moves []string) string {
	// First-move buckets narrow the scan; every prefix match shares the
	// input's first token, so a present bucket is exhaustive.
	candidates, ok := m.db.byFirst[moves[0]]
	if !ok {
		return m.scanAll(moves)
	}

	bestName := UnknownOpening
	bestLen := 0
	for _, idx := range candidates {
		entry := &m.db.entries[idx]
		if n := matchedPrefix(entry.Moves, moves); n > bestLen {
			bestName, bestLen = entry.Name, n
			if bestLen == len(moves) {
				break
			}
		}
	}
	return bestName
}

// scanAll walks the full ordered entry list.
func (m *Matcher) scanAll(moves []string) string {
	bestName := UnknownOpening
	bestLen := 0
	for i := range m.db.entries {
		entry := &m.db.entries[i]
		if n := matchedPrefix(entry.Moves, moves); n > bestLen {
			bestName, bestLen = entry.Name, n
			if bestLen == len(moves) {
				break
			}
		}
	}
	return bestName
}

// matchedPrefix returns len(entry) when entry is a prefix of moves,
// else 0.
func matchedPrefix(entry, moves []string) int {
	if len(entry) == 0 || len(entry) > len(moves) {
		return 0
	}
	for i, mv := range entry {
		if moves[i] != mv {
			return 0
		}
	}
	return len(entry)
}

// SplitName splits a full opening name into base and variation:
// on the first colon then the first comma of the remainder; with no
// colon, on the first comma; otherwise the variation is empty.
func (m *Matcher) SplitName(full string) (base, variation string) {
	if parts, ok := m.splitCache.Get(full); ok {
		return parts[0], parts[1]
	}
	base, variation = splitName(full)
	m.splitCache.Put(full, [2]string{base, variation})
	return base, variation
}

func splitName(full string) (string, string) {
	if i := strings.Index(full, ":"); i >= 0 {
		base := strings.TrimSpace(full[:i])
		rest := strings.TrimSpace(full[i+1:])
		if j := strings.Index(rest, ","); j >= 0 {
			return base, strings.TrimSpace(rest[:j])
		}
		return base, rest
	}
	if i := strings.Index(full, ","); i >= 0 {
		return strings.TrimSpace(full[:i]), strings.TrimSpace(full[i+1:])
	}
	return full, ""
}

// ResolveCanonical finds the canonical opening for a labeled game
// group. It tries the explicit labels against registered names first
// (exact, then substring candidates in load order), then falls back to
// prefix-matching the sample move sequence. The returned moves are
// empty when nothing resolved.
func (m *Matcher) ResolveCanonical(opening, variation string, sample []string) (string, string, []string) {
	fullName, moves := m.findByLabel(opening, variation)

	if len(moves) == 0 && len(sample) > 0 {
		query := sample
		if len(query) > sampleMoveLimit {
			query = query[:sampleMoveLimit]
		}
		if matched := m.Match(query); matched != UnknownOpening {
			fullName = matched
			if entry := m.db.ByName(matched); entry != nil {
				moves = entry.Moves
			}
		}
	}

	base, resolvedVariation := splitName(fullName)
	if resolvedVariation == "" {
		resolvedVariation = variation
	}
	return base, resolvedVariation, moves
}

// findByLabel looks up "Opening: Variation" (then the bare opening) in
// the registered names, falling back to the first substring candidate.
func (m *Matcher) findByLabel(opening, variation string) (string, []string) {
	search := strings.ToLower(opening)
	if variation != "" {
		search = strings.ToLower(opening + ": " + variation)
	}

	if idx, ok := m.db.byName[search]; ok {
		entry := &m.db.entries[idx]
		return entry.Name, entry.Moves
	}

	for i := range m.db.entries {
		entry := &m.db.entries[i]
		if strings.Contains(strings.ToLower(entry.Name), search) {
			return entry.Name, entry.Moves
		}
	}

	full := opening
	if variation != "" {
		full = opening + ": " + variation
	}
	return full, nil
}

// cleanMoves trims tokens and drops empties without reordering.
func cleanMoves(moves []string) []string {
	out := make([]string, 0, len(moves))
	for _, mv := range moves {
		mv = strings.TrimSpace(mv)
		if mv != "" {
			out = append(out, mv)
		}
	}
	return out
}
