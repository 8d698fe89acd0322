package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/chessdata/openingstats/internal/config"
	"github.com/chessdata/openingstats/internal/eco"
	"github.com/chessdata/openingstats/internal/engine"
	"github.com/chessdata/openingstats/internal/logx"
	"github.com/chessdata/openingstats/internal/records"
	"github.com/chessdata/openingstats/internal/stats"
)

func main() {
	defaultECODir := "data/eco"
	if envDir := os.Getenv("OPENINGSTATS_ECO_DIR"); envDir != "" {
		defaultECODir = envDir
	}

	var (
		configPath = flag.String("config", "", "Optional YAML config file")
		inputPath  = flag.String("records", "", "Game records NDJSON file (supports .zst)")
		outputPath = flag.String("out", "opening_stats.json", "Output JSON file (supports .zst)")
		ecoDir     = flag.String("eco", defaultECODir, "Opening taxonomy directory")
		enginePath = flag.String("engine", "", "Evaluation engine binary (overrides config)")
		noEngine   = flag.Bool("no-engine", false, "Disable position evaluation")
		minGames   = flag.Int("min-games", 0, "Minimum games per statistics group (overrides config)")
		logLevel   = flag.String("log-level", "", "Log level (overrides config)")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: openingstats --records <games.ndjson[.zst]> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *ecoDir != "" {
		cfg.ECODir = *ecoDir
	}
	if *enginePath != "" {
		cfg.Engine.Path = *enginePath
	}
	if *noEngine {
		cfg.Engine.Disabled = true
	}
	if *minGames > 0 {
		cfg.MinGames = *minGames
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := logx.NewLoggerWithLevel(cfg.LogLevel)
	startTime := time.Now()

	db := eco.NewDatabase()
	if err := db.LoadDir(cfg.ECODir); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.ECODir).Msg("load opening taxonomy")
	}
	if db.Count() == 0 {
		logger.Warn().Str("dir", cfg.ECODir).
			Msg("no taxonomy files found, openings will be unresolved")
	} else {
		logger.Info().Int("openings", db.Count()).Msg("taxonomy loaded")
	}
	matcher := eco.NewMatcher(db, cfg.Caches.Match, cfg.Caches.Split)

	pool := engine.NewPool(engine.Config{
		Path:        cfg.Engine.Path,
		Disabled:    cfg.Engine.Disabled,
		Depth:       cfg.Engine.Depth,
		PoolSize:    cfg.Engine.PoolSize,
		Workers:     cfg.Engine.Workers,
		MultiPV:     cfg.Engine.MultiPV,
		HashMB:      cfg.Engine.HashMB,
		Threads:     cfg.Engine.Threads,
		CallTimeout: cfg.Engine.CallTimeout,
		EvalCache:   cfg.Caches.Eval,
		FENCache:    cfg.Caches.FEN,
		Logger:      logger,
	})
	defer pool.Close()

	recs, readStats, err := records.ReadFile(*inputPath, cfg.MinMoveCount)
	if err != nil {
		logger.Fatal().Err(err).Str("records", *inputPath).Msg("read game records")
	}
	logger.Info().
		Int("read", readStats.Read).
		Int("kept", len(recs)).
		Int("malformed", readStats.Malformed).
		Int("duplicates", readStats.Duplicates).
		Msg("game records loaded")

	agg := stats.New(stats.Config{
		MinGames:             cfg.MinGames,
		MaxPlayersPerOpening: cfg.MaxPlayersPerOpening,
		MinSamples:           cfg.MinSamples,
		TopNextMoves:         cfg.TopNextMoves,
		Logger:               logger,
	}, db, matcher, pool)

	output, err := agg.Aggregate(recs)
	if err != nil {
		logger.Fatal().Err(err).Msg("aggregation failed")
	}

	if err := writeOutput(*outputPath, output); err != nil {
		logger.Fatal().Err(err).Str("out", *outputPath).Msg("write output")
	}

	ps := pool.PoolStats()
	logger.Info().
		Int("openings", len(output)).
		Int64("evaluated", ps.Evaluated).
		Int64("eval_failures", ps.Failures).
		Uint64("eval_cache_hits", ps.EvalCacheHits).
		Dur("elapsed", time.Since(startTime)).
		Str("out", *outputPath).
		Msg("opening statistics written")
}

func writeOutput(path string, output []stats.OpeningStats) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if strings.HasSuffix(path, ".zst") {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return err
		}
		w = enc
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if enc != nil {
		return enc.Close()
	}
	return nil
}
