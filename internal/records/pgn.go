package records

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// headerRegex matches PGN tag pairs like [White "Carlsen, Magnus"].
var headerRegex = regexp.MustCompile(`^\[(\w+)\s+"(.*)"\]\s*$`)

var (
	braceRegex      = regexp.MustCompile(`\{[^}]*\}`)
	moveNumRegex    = regexp.MustCompile(`\d+\.`)
	resultTagRegex  = regexp.MustCompile(`1-0|0-1|1/2-1/2|\*`)
	annotationGlyph = regexp.MustCompile(`\$\d+`)
)

// NormalizeOptions tunes PGN normalization.
type NormalizeOptions struct {
	MinMoves  int // minimum moves per game
	RatingMin int // rating floor for both players (0 = off)
}

// NormalizeStats summarizes one normalization pass.
type NormalizeStats struct {
	Processed  int
	Written    int
	Malformed  int
	Skipped    int // rating filter or unknown result
	Duplicates int
}

// NormalizePGN parses a PGN file (transparently zstd-decompressed for
// .zst paths) into validated, deduplicated game records. Per-game
// problems drop that game only.
func NormalizePGN(path string, opts NormalizeOptions) ([]GameRecord, NormalizeStats, error) {
	var stats NormalizeStats

	f, err := os.Open(path)
	if err != nil {
		return nil, stats, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, stats, fmt.Errorf("open zstd %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	deduper := NewDeduper()
	var out []GameRecord

	tags := make(map[string]string)
	var movetext strings.Builder
	inMoves := false

	flush := func() {
		if len(tags) == 0 && movetext.Len() == 0 {
			return
		}
		stats.Processed++
		rec, ok := buildRecord(tags, movetext.String(), opts, &stats)
		if ok {
			if deduper.Keep(rec) {
				out = append(out, *rec)
				stats.Written++
			}
		}
		tags = make(map[string]string)
		movetext.Reset()
		inMoves = false
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "["):
			// A header after movetext starts the next game.
			if inMoves {
				flush()
			}
			if m := headerRegex.FindStringSubmatch(line); m != nil {
				tags[m[1]] = m[2]
			}
		default:
			inMoves = true
			movetext.WriteString(line)
			movetext.WriteByte(' ')
		}
	}
	flush()

	stats.Duplicates = deduper.Duplicates()
	if err := scanner.Err(); err != nil {
		return out, stats, err
	}
	return out, stats, nil
}

// buildRecord assembles a validated record from tags and movetext.
func buildRecord(tags map[string]string, movetext string, opts NormalizeOptions, stats *NormalizeStats) (*GameRecord, bool) {
	result := MapResult(tags["Result"])
	if result == "" {
		stats.Skipped++
		return nil, false
	}

	whiteElo := ParseRating(tags["WhiteElo"])
	blackElo := ParseRating(tags["BlackElo"])
	if opts.RatingMin > 0 && (whiteElo < opts.RatingMin || blackElo < opts.RatingMin) {
		stats.Skipped++
		return nil, false
	}

	moves := CleanMovetext(movetext)
	rec := &GameRecord{
		White:     Player{Name: tags["White"], Elo: whiteElo},
		Black:     Player{Name: tags["Black"], Elo: blackElo},
		Result:    result,
		Moves:     moves,
		NumMoves:  len(moves),
		Opening:   tags["Opening"],
		Variation: tags["Variation"],
		ECO:       tags["ECO"],
		Event:     tags["Event"],
		StudyName: tags["StudyName"],
		GameURL:   tags["GameURL"],
	}
	if err := rec.Validate(opts.MinMoves); err != nil {
		stats.Malformed++
		return nil, false
	}
	return rec, true
}

// CleanMovetext strips annotations, clocks, move numbers, NAGs, and
// result tokens from raw PGN movetext, returning SAN tokens.
func CleanMovetext(movetext string) []string {
	clean := braceRegex.ReplaceAllString(movetext, "")
	clean = annotationGlyph.ReplaceAllString(clean, "")
	clean = moveNumRegex.ReplaceAllString(clean, "")
	clean = resultTagRegex.ReplaceAllString(clean, "")

	var moves []string
	for _, token := range strings.Fields(clean) {
		if token == ".." || token == "..." {
			continue
		}
		moves = append(moves, token)
	}
	return moves
}

// ParseRating parses an Elo tag; "?" and "-" mean unknown.
func ParseRating(s string) int {
	if s == "" || s == "?" || s == "-" {
		return 0
	}
	r, _ := strconv.Atoi(s)
	return r
}
