package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	require.Equal(t, 7, cfg.Rules.Width)
	p, ok := cfg.Player("mcts")
	require.True(t, ok)
	require.Equal(t, KindMCTS, p.Kind)
	_, ok = cfg.Player("nobody")
	require.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Run("overrides defaults from YAML", func(t *testing.T) {
		path := writeConfig(t, `
log_level: debug
rules:
  width: 3
  height: 3
  target: 3
  gravity: false
turn_timeout: 3s
players:
  - name: fast
    kind: mcts
    duration: 50ms
    goroutines: 4
    selection: ucb
  - name: deep
    kind: alphabeta
    max_depth: 9
experiment:
  name: tictactoe
  games: 4
  matchups:
    - first: fast
      second: deep
`)
		cfg, err := Load(path)

		require.NoError(t, err)
		level, err := cfg.Level()
		require.NoError(t, err)
		require.Equal(t, zerolog.DebugLevel, level)
		require.False(t, cfg.Rules.Gravity)
		require.Equal(t, 3*time.Second, cfg.TurnTimeout)
		require.Len(t, cfg.Players, 2)
		require.Equal(t, 50*time.Millisecond, cfg.Players[0].Duration)
		require.Equal(t, 9, cfg.Players[1].MaxDepth)
		require.Equal(t, 2, cfg.Experiment.Workers, "Unset keys keep their default")
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := Load(writeConfig(t, "log_levle: debug\n"))
		require.Error(t, err)
	})

	t.Run("reports a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad rules", func(c *Config) { c.Rules.Width = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"unknown kind", func(c *Config) { c.Players[0].Kind = "oracle" }},
		{"duplicate names", func(c *Config) { c.Players[1].Name = c.Players[0].Name }},
		{"unknown scoring", func(c *Config) { c.Players[0].Scoring = "both" }},
		{"unknown matchup player", func(c *Config) { c.Experiment.Matchups[0].Second = "ghost" }},
		{"no games", func(c *Config) { c.Experiment.Games = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
