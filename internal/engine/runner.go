package engine

import (
	"fmt"

	"github.com/freeeve/uci"
)

// rawLine is one principal variation reported by the engine, scores
// from the side to move's perspective.
type rawLine struct {
	Move  string
	Score int
	Mate  bool
}

// runner is one exclusive engine process handle. Implementations are
// not safe for concurrent use; the pool guarantees single ownership.
type runner interface {
	Eval(fen string, depth int) (score int, mate bool, err error)
	TopMoves(fen string, depth int) ([]rawLine, error)
	Close()
}

// uciRunner binds a runner to a live UCI engine process.
type uciRunner struct {
	eng *uci.Engine
}

func newUCIRunner(path string, hashMB, threads, multiPV int) (runner, error) {
	eng, err := uci.NewEngine(path)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	opts := uci.Options{
		Hash:    hashMB,
		Threads: threads,
		MultiPV: multiPV,
		Ponder:  false,
		OwnBook: false,
	}
	if err := eng.SetOptions(opts); err != nil {
		eng.Close()
		return nil, fmt.Errorf("set options: %w", err)
	}

	return &uciRunner{eng: eng}, nil
}

func (r *uciRunner) Eval(fen string, depth int) (int, bool, error) {
	if err := r.eng.SetFEN(fen); err != nil {
		return 0, false, fmt.Errorf("set FEN: %w", err)
	}

	results, err := r.eng.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return 0, false, fmt.Errorf("engine eval: %w", err)
	}
	if len(results.Results) == 0 {
		return 0, false, fmt.Errorf("no results from engine")
	}

	best := results.Results[0]
	for _, res := range results.Results {
		if res.Depth > best.Depth {
			best = res
		}
	}
	return best.Score, best.Mate, nil
}

func (r *uciRunner) TopMoves(fen string, depth int) ([]rawLine, error) {
	if err := r.eng.SetFEN(fen); err != nil {
		return nil, fmt.Errorf("set FEN: %w", err)
	}

	results, err := r.eng.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return nil, fmt.Errorf("engine eval: %w", err)
	}

	lines := make([]rawLine, 0, len(results.Results))
	for _, res := range results.Results {
		if len(res.BestMoves) == 0 {
			continue
		}
		lines = append(lines, rawLine{
			Move:  res.BestMoves[0],
			Score: res.Score,
			Mate:  res.Mate,
		})
	}
	return lines, nil
}

func (r *uciRunner) Close() {
	r.eng.Close()
}
