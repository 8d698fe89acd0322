// Package config holds the pipeline configuration surface.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig configures the evaluation engine pool.
type EngineConfig struct {
	Path        string        `yaml:"path"`        // engine binary ("" = search PATH default "stockfish")
	Disabled    bool          `yaml:"disabled"`    // force-disable evaluation even if a binary exists
	Depth       int           `yaml:"depth"`       // search depth per evaluation
	PoolSize    int           `yaml:"poolSize"`    // target number of pooled handles
	Workers     int           `yaml:"workers"`     // batch evaluation worker goroutines
	MultiPV     int           `yaml:"multiPV"`     // principal variations requested for top-move queries
	HashMB      int           `yaml:"hashMB"`      // hash table size per handle
	Threads     int           `yaml:"threads"`     // engine threads per handle
	CallTimeout time.Duration `yaml:"callTimeout"` // per-call deadline; handle discarded on expiry
}

// CacheConfig sets bounded LRU capacities.
type CacheConfig struct {
	Match int `yaml:"match"` // move-sequence -> opening name
	Split int `yaml:"split"` // opening name -> (base, variation)
	Eval  int `yaml:"eval"`  // position -> evaluation
	FEN   int `yaml:"fen"`   // move-sequence -> position
}

// Config is the full pipeline configuration.
type Config struct {
	ECODir string `yaml:"ecoDir"` // opening taxonomy directory

	MinGames             int `yaml:"minGames"`             // minimum games per statistics group
	MinMoveCount         int `yaml:"minMoveCount"`         // minimum moves in a valid game record
	MaxPlayersPerOpening int `yaml:"maxPlayersPerOpening"` // players retained per variation
	MinSamples           int `yaml:"minSamples"`           // continuation detection threshold
	TopNextMoves         int `yaml:"topNextMoves"`         // top-K continuation/engine moves

	RatingMin int `yaml:"ratingMin"` // rating floor for normalized games (0 = off)

	Engine EngineConfig `yaml:"engine"`
	Caches CacheConfig  `yaml:"caches"`

	LogLevel string `yaml:"logLevel"`
}

// Default returns a config with every knob at its default.
func Default() Config {
	cfg := Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.ECODir == "" {
		c.ECODir = "data/eco"
	}
	if c.MinGames == 0 {
		c.MinGames = 10
	}
	if c.MinMoveCount == 0 {
		c.MinMoveCount = 4
	}
	if c.MaxPlayersPerOpening == 0 {
		c.MaxPlayersPerOpening = 10
	}
	if c.MinSamples == 0 {
		c.MinSamples = 3
	}
	if c.TopNextMoves == 0 {
		c.TopNextMoves = 5
	}
	if c.Engine.Path == "" {
		c.Engine.Path = "stockfish"
	}
	if c.Engine.Depth == 0 {
		c.Engine.Depth = 10
	}
	if c.Engine.PoolSize == 0 {
		c.Engine.PoolSize = 4
	}
	if c.Engine.Workers == 0 {
		c.Engine.Workers = c.Engine.PoolSize
	}
	if c.Engine.MultiPV == 0 {
		c.Engine.MultiPV = c.TopNextMoves
	}
	if c.Engine.HashMB == 0 {
		c.Engine.HashMB = 128
	}
	if c.Engine.Threads == 0 {
		c.Engine.Threads = 1
	}
	if c.Engine.CallTimeout == 0 {
		c.Engine.CallTimeout = 30 * time.Second
	}
	if c.Caches.Match == 0 {
		c.Caches.Match = 5000
	}
	if c.Caches.Split == 0 {
		c.Caches.Split = 1000
	}
	if c.Caches.Eval == 0 {
		c.Caches.Eval = 10000
	}
	if c.Caches.FEN == 0 {
		c.Caches.FEN = 10000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load reads a YAML config file and applies defaults.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}
