package config

import (
	"boards/game"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Player kinds.
const (
	KindMCTS      = "mcts"
	KindAlphaBeta = "alphabeta"
	KindRandom    = "random"
)

type PlayerConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Seed uint64 `yaml:"seed"` // 0 picks a seed from the clock

	// Shared search budget
	Duration time.Duration `yaml:"duration"`

	// MCTS
	Episodes    int     `yaml:"episodes"`
	Goroutines  int     `yaml:"goroutines"`
	Exploration float64 `yaml:"exploration"`
	Scoring     string  `yaml:"scoring"`   // searcher or mover
	Selection   string  `yaml:"selection"` // visits or ucb
	TreeReuse   bool    `yaml:"tree_reuse"`
	Table       bool    `yaml:"table"`
	TablePath   string  `yaml:"table_path"`
	Temperature float64 `yaml:"temperature"`

	// Alpha-beta
	MaxDepth  int  `yaml:"max_depth"`
	Heuristic bool `yaml:"heuristic"`
}

type Matchup struct {
	First  string `yaml:"first"`
	Second string `yaml:"second"`
}

type ExperimentConfig struct {
	Name     string    `yaml:"name"`
	Games    int       `yaml:"games"` // Per matchup
	Workers  int       `yaml:"workers"`
	OutDir   string    `yaml:"out_dir"`
	Matchups []Matchup `yaml:"matchups"`
}

type Config struct {
	LogLevel    string           `yaml:"log_level"`
	Rules       game.Rules       `yaml:"rules"`
	TurnTimeout time.Duration    `yaml:"turn_timeout"`
	Players     []PlayerConfig   `yaml:"players"`
	Experiment  ExperimentConfig `yaml:"experiment"`
}

func Default() Config {
	return Config{
		LogLevel:    "info",
		Rules:       game.StandardRules(),
		TurnTimeout: 10 * time.Second,
		Players: []PlayerConfig{
			{Name: "mcts", Kind: KindMCTS, Duration: time.Second, Goroutines: 1, Exploration: 1.21, Scoring: "searcher", Selection: "visits", Table: true},
			{Name: "alphabeta", Kind: KindAlphaBeta, Duration: time.Second},
			{Name: "random", Kind: KindRandom},
		},
		Experiment: ExperimentConfig{
			Name:    "mcts_vs_alphabeta",
			Games:   10,
			Workers: 2,
			OutDir:  "experiments",
			Matchups: []Matchup{
				{First: "mcts", Second: "alphabeta"},
				{First: "mcts", Second: "random"},
			},
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	names := map[string]bool{}
	for _, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("%w: player without a name", ErrInvalidConfig)
		}
		if names[p.Name] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidConfig, p.Name)
		}
		names[p.Name] = true
		if err := p.validate(); err != nil {
			return err
		}
	}

	for _, m := range c.Experiment.Matchups {
		if !names[m.First] || !names[m.Second] {
			return fmt.Errorf("%w: matchup %s vs %s names an unknown player", ErrInvalidConfig, m.First, m.Second)
		}
	}
	if len(c.Experiment.Matchups) > 0 && c.Experiment.Games <= 0 {
		return fmt.Errorf("%w: experiment needs a positive game count", ErrInvalidConfig)
	}
	return nil
}

func (p PlayerConfig) validate() error {
	switch p.Kind {
	case KindMCTS:
		switch p.Scoring {
		case "", "searcher", "mover":
		default:
			return fmt.Errorf("%w: player %s has unknown scoring %q", ErrInvalidConfig, p.Name, p.Scoring)
		}
		switch p.Selection {
		case "", "visits", "ucb":
		default:
			return fmt.Errorf("%w: player %s has unknown selection %q", ErrInvalidConfig, p.Name, p.Selection)
		}
		if p.Goroutines < 0 || p.Episodes < 0 || p.Temperature < 0 {
			return fmt.Errorf("%w: player %s has a negative setting", ErrInvalidConfig, p.Name)
		}
	case KindAlphaBeta:
		if p.MaxDepth < 0 {
			return fmt.Errorf("%w: player %s has a negative depth", ErrInvalidConfig, p.Name)
		}
	case KindRandom:
	default:
		return fmt.Errorf("%w: player %s has unknown kind %q", ErrInvalidConfig, p.Name, p.Kind)
	}
	return nil
}

// Player returns the player configured under name.
func (c Config) Player(name string) (PlayerConfig, bool) {
	for _, p := range c.Players {
		if p.Name == name {
			return p, true
		}
	}
	return PlayerConfig{}, false
}

func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(c.LogLevel)
}
