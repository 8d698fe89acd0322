package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/chessdata/openingstats/internal/logx"
	"github.com/chessdata/openingstats/internal/records"
)

func main() {
	defaultRatingMin := 0
	if envRating := os.Getenv("OPENINGSTATS_RATING_MIN"); envRating != "" {
		if rating, err := strconv.Atoi(envRating); err == nil {
			defaultRatingMin = rating
		}
	}

	var (
		inputPath  = flag.String("pgn", "", "PGN file or directory of PGN files (supports .zst)")
		outputPath = flag.String("out", "games.ndjson", "Output NDJSON file (supports .zst)")
		ratingMin  = flag.Int("rating-min", defaultRatingMin, "Rating floor for games (0 = off)")
		minMoves   = flag.Int("min-moves", 4, "Minimum moves in a valid game")
		logLevel   = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: normalize --pgn <file.pgn[.zst] | dir> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLoggerWithLevel(*logLevel)
	startTime := time.Now()

	files, err := pgnFiles(*inputPath)
	if err != nil {
		logger.Fatal().Err(err).Str("pgn", *inputPath).Msg("locate PGN input")
	}
	if len(files) == 0 {
		logger.Fatal().Str("pgn", *inputPath).Msg("no PGN files found")
	}

	opts := records.NormalizeOptions{
		MinMoves:  *minMoves,
		RatingMin: *ratingMin,
	}

	var all []records.GameRecord
	var total records.NormalizeStats
	for _, file := range files {
		recs, fileStats, err := records.NormalizePGN(file, opts)
		if err != nil {
			// A broken file drops that file only.
			logger.Error().Err(err).Str("file", file).Msg("normalize failed, skipping file")
			continue
		}
		all = append(all, recs...)
		total.Processed += fileStats.Processed
		total.Written += fileStats.Written
		total.Malformed += fileStats.Malformed
		total.Skipped += fileStats.Skipped
		total.Duplicates += fileStats.Duplicates
		logger.Info().
			Str("file", file).
			Int("games", fileStats.Processed).
			Int("kept", fileStats.Written).
			Msg("file normalized")
	}

	if err := records.WriteFile(*outputPath, all); err != nil {
		logger.Fatal().Err(err).Str("out", *outputPath).Msg("write records")
	}

	logger.Info().
		Int("files", len(files)).
		Int("games_processed", total.Processed).
		Int("games_written", total.Written).
		Int("malformed", total.Malformed).
		Int("skipped", total.Skipped).
		Int("duplicates", total.Duplicates).
		Dur("elapsed", time.Since(startTime)).
		Str("out", *outputPath).
		Msg("normalization complete")
}

// pgnFiles expands a file or directory argument into a sorted file list.
func pgnFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	for _, pat := range []string{"*.pgn", "*.pgn.zst"} {
		matched, err := filepath.Glob(filepath.Join(path, pat))
		if err != nil {
			return nil, err
		}
		files = append(files, matched...)
	}
	sort.Strings(files)
	return files, nil
}
