package engine

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/chessdata/openingstats/internal/cache"
	"github.com/chessdata/openingstats/internal/chess"
)

var errCallTimeout = errors.New("engine call timed out")

// Config configures the evaluation pool.
type Config struct {
	Path        string // engine binary path
	Disabled    bool   // skip engine startup entirely
	Depth       int    // search depth per evaluation
	PoolSize    int    // target number of pooled handles
	Workers     int    // batch evaluation goroutines
	MultiPV     int    // principal variations per handle
	HashMB      int    // hash table size per handle
	Threads     int    // engine threads per handle
	CallTimeout time.Duration
	EvalCache   int // position -> evaluation capacity
	FENCache    int // move sequence -> position capacity
	Logger      zerolog.Logger
}

// Pool manages exclusive engine handles behind a mutex-guarded free
// list, with LRU caches in front of the engine. When the binary is
// unavailable the pool runs disabled: every call answers no-data
// without erroring.
type Pool struct {
	cfg       Config
	log       zerolog.Logger
	newRunner func() (runner, error)

	mu       sync.Mutex
	free     []runner
	disabled bool

	evalCache *cache.LRU[string, *Eval]
	fenCache  *cache.LRU[string, string]

	evaluated int64
	failures  int64
}

// NewPool creates the pool and eagerly constructs the target number of
// handles. If the first handle cannot be built the pool is disabled.
func NewPool(cfg Config) *Pool {
	if cfg.Path == "" {
		cfg.Path = "stockfish"
	}
	if cfg.Depth == 0 {
		cfg.Depth = 10
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 4
	}
	if cfg.Workers == 0 {
		cfg.Workers = cfg.PoolSize
	}
	if cfg.MultiPV == 0 {
		cfg.MultiPV = 5
	}
	if cfg.HashMB == 0 {
		cfg.HashMB = 128
	}
	if cfg.Threads == 0 {
		cfg.Threads = 1
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.EvalCache == 0 {
		cfg.EvalCache = 10000
	}
	if cfg.FENCache == 0 {
		cfg.FENCache = 10000
	}

	p := &Pool{
		cfg:       cfg,
		log:       cfg.Logger,
		evalCache: cache.New[string, *Eval](cfg.EvalCache),
		fenCache:  cache.New[string, string](cfg.FENCache),
	}
	p.newRunner = func() (runner, error) {
		return newUCIRunner(cfg.Path, cfg.HashMB, cfg.Threads, cfg.MultiPV)
	}

	if cfg.Disabled {
		p.disabled = true
		p.log.Info().Msg("evaluation engine disabled by config")
		return p
	}
	p.initHandles()
	return p
}

// initHandles builds the startup free list. The first failure disables
// the pool; later failures just leave it short (demand creates more).
func (p *Pool) initHandles() {
	for i := 0; i < p.cfg.PoolSize; i++ {
		r, err := p.newRunner()
		if err != nil {
			if i == 0 {
				p.disabled = true
				p.log.Warn().Err(err).Str("path", p.cfg.Path).
					Msg("evaluation engine unavailable, evaluations disabled")
			} else {
				p.log.Warn().Err(err).Int("handles", i).
					Msg("engine pool started short")
			}
			return
		}
		p.free = append(p.free, r)
	}
	p.log.Info().
		Int("pool_size", p.cfg.PoolSize).
		Int("depth", p.cfg.Depth).
		Str("path", p.cfg.Path).
		Msg("engine pool started")
}

// Disabled reports whether evaluations are unavailable.
func (p *Pool) Disabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disabled
}

// Close shuts down every pooled handle.
func (p *Pool) Close() {
	p.mu.Lock()
	free := p.free
	p.free = nil
	p.mu.Unlock()
	for _, r := range free {
		r.Close()
	}
}

// checkout pops a free handle or builds an overflow one. Never blocks.
func (p *Pool) checkout() (runner, error) {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		r := p.free[n-1]
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return r, nil
	}
	p.mu.Unlock()
	return p.newRunner()
}

// checkin returns a handle to the free list, dropping it when the list
// is already at target size.
func (p *Pool) checkin(r runner) {
	p.mu.Lock()
	if len(p.free) < p.cfg.PoolSize {
		p.free = append(p.free, r)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	r.Close()
}

// withTimeout runs fn, abandoning it when the per-call deadline
// expires. Closing the handle afterwards unblocks the stalled call.
func (p *Pool) withTimeout(fn func() error) error {
	if p.cfg.CallTimeout <= 0 {
		return fn()
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-time.After(p.cfg.CallTimeout):
		return errCallTimeout
	}
}

// Evaluate scores a FEN position, normalized to white's perspective.
// Returns nil (no data) for empty input, a disabled pool, or any
// per-call failure; failures never propagate.
func (p *Pool) Evaluate(fen string) *Eval {
	if fen == "" || p.Disabled() {
		return nil
	}
	if ev, ok := p.evalCache.Get(fen); ok {
		return ev
	}

	r, err := p.checkout()
	if err != nil {
		atomic.AddInt64(&p.failures, 1)
		p.log.Debug().Err(err).Msg("engine checkout failed")
		return nil
	}

	var score int
	var mate bool
	err = p.withTimeout(func() error {
		var callErr error
		score, mate, callErr = r.Eval(fen, p.cfg.Depth)
		return callErr
	})
	if err != nil {
		atomic.AddInt64(&p.failures, 1)
		p.log.Debug().Err(err).Str("fen", fen).Msg("eval failed, discarding handle")
		r.Close()
		p.evalCache.Put(fen, nil)
		return nil
	}
	p.checkin(r)

	// Engine scores are from the side to move; normalize to white.
	if chess.BlackToMove(fen) {
		score = -score
	}

	ev := Cp(score)
	if mate {
		ev = MateScore(score)
	}
	p.evalCache.Put(fen, ev)
	atomic.AddInt64(&p.evaluated, 1)
	return ev
}

// TopMoves returns up to n engine-suggested moves for a position, best
// line first. Empty on any failure.
func (p *Pool) TopMoves(fen string, n int) []MoveScore {
	if fen == "" || n <= 0 || p.Disabled() {
		return nil
	}

	r, err := p.checkout()
	if err != nil {
		atomic.AddInt64(&p.failures, 1)
		p.log.Debug().Err(err).Msg("engine checkout failed")
		return nil
	}

	var lines []rawLine
	err = p.withTimeout(func() error {
		var callErr error
		lines, callErr = r.TopMoves(fen, p.cfg.Depth)
		return callErr
	})
	if err != nil {
		atomic.AddInt64(&p.failures, 1)
		p.log.Debug().Err(err).Str("fen", fen).Msg("top moves failed, discarding handle")
		r.Close()
		return nil
	}
	p.checkin(r)

	if len(lines) > n {
		lines = lines[:n]
	}
	moves := make([]MoveScore, 0, len(lines))
	for _, line := range lines {
		ev := Cp(line.Score)
		if line.Mate {
			ev = MateScore(line.Score)
		}
		moves = append(moves, MoveScore{Move: line.Move, Eval: ev})
	}
	return moves
}

// BatchEvaluate scores positions across a bounded worker set.
// result[i] corresponds to fens[i]; empty inputs hold a nil
// placeholder and one task's failure does not affect the rest.
func (p *Pool) BatchEvaluate(fens []string) []*Eval {
	results := make([]*Eval, len(fens))
	workers := pool.New().WithMaxGoroutines(p.cfg.Workers)
	for i, fen := range fens {
		if fen == "" {
			continue
		}
		workers.Go(func() {
			results[i] = p.Evaluate(fen)
		})
	}
	workers.Wait()
	return results
}

// FENAfter replays a move sequence and returns the resulting position,
// or "" when the replay fails. Cached by the joined move string; works
// whether or not the engine is available.
func (p *Pool) FENAfter(moves []string) string {
	if len(moves) == 0 {
		return ""
	}
	key := strings.Join(moves, "|")
	if fen, ok := p.fenCache.Get(key); ok {
		return fen
	}

	fen, err := chess.MovesToFEN(moves)
	if err != nil {
		fen = ""
	}
	p.fenCache.Put(key, fen)
	return fen
}

// Stats holds pool counters.
type Stats struct {
	Evaluated     int64
	Failures      int64
	EvalCacheHits uint64
	FENCacheHits  uint64
	FreeHandles   int
}

// PoolStats returns current counters.
func (p *Pool) PoolStats() Stats {
	evalHits, _ := p.evalCache.Stats()
	fenHits, _ := p.fenCache.Stats()
	p.mu.Lock()
	free := len(p.free)
	p.mu.Unlock()
	return Stats{
		Evaluated:     atomic.LoadInt64(&p.evaluated),
		Failures:      atomic.LoadInt64(&p.failures),
		EvalCacheHits: evalHits,
		FENCacheHits:  fenHits,
		FreeHandles:   free,
	}
}
