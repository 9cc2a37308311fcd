package experiments

import (
	"boards/config"
	"boards/game"
	"boards/player"
	"boards/searcher"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func smallConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Players = []config.PlayerConfig{
		{Name: "mcts", Kind: config.KindMCTS, Episodes: 50, Seed: 1, Table: true, TablePath: filepath.Join(t.TempDir(), "mcts.dat")},
		{Name: "alphabeta", Kind: config.KindAlphaBeta, Duration: 20 * time.Millisecond, MaxDepth: 2},
		{Name: "random", Kind: config.KindRandom, Seed: 5},
	}
	cfg.Experiment = config.ExperimentConfig{
		Name:    "smoke",
		Games:   2,
		Workers: 2,
		OutDir:  t.TempDir(),
		Matchups: []config.Matchup{
			{First: "mcts", Second: "random"},
			{First: "alphabeta", Second: "random"},
		},
	}
	return cfg
}

func TestNewPlayer(t *testing.T) {
	cfg := smallConfig(t)

	require.IsType(t, &player.MCTSPlayer{}, NewPlayer(cfg.Players[0], 1))
	require.IsType(t, &player.AlphaBetaPlayer{}, NewPlayer(cfg.Players[1], 1))
	require.IsType(t, &player.RandomPlayer{}, NewPlayer(cfg.Players[2], 1))

	t.Run("a table path is only used with the table on", func(t *testing.T) {
		pc := config.PlayerConfig{Name: "m", Kind: config.KindMCTS, Episodes: 10, TablePath: "unused.dat"}
		p := NewPlayer(pc, 1).(*player.MCTSPlayer)
		require.Nil(t, p.Table())
	})

	t.Run("the table path defaults by player name", func(t *testing.T) {
		require.Equal(t, filepath.Join("res", "C4_Zobrist.dat_mcts"), TablePath(config.PlayerConfig{Name: "mcts"}))
		require.Equal(t, "own.dat", TablePath(config.PlayerConfig{Name: "mcts", TablePath: "own.dat"}))
	})
}

func TestAgentConfigs(t *testing.T) {
	configs := AgentConfigs(smallConfig(t))

	require.Len(t, configs, 3)
	require.Equal(t, 1, configs[0].ID)
	require.Equal(t, "alphabeta", configs[1].Name)
	require.Equal(t, 2, configs[1].MaxDepth)
}

func TestPlay(t *testing.T) {
	cfg := smallConfig(t)

	records, err := Play(context.Background(), cfg)

	require.NoError(t, err)
	require.Len(t, records.Games, 4)
	moves := 0
	for i, g := range records.Games {
		require.Equal(t, i+1, g.ID)
		require.Len(t, g.Columns, g.TotalMoves)
		moves += g.TotalMoves
	}
	require.Len(t, records.Moves, moves)
	// Second game of a matchup swaps seats
	require.Equal(t, 1, records.Games[0].Agent1)
	require.Equal(t, 3, records.Games[1].Agent1)

	t.Run("the shared table is saved once at the end", func(t *testing.T) {
		table := searcher.NewTable()
		require.NoError(t, table.LoadFile(cfg.Players[0].TablePath))
		require.NotZero(t, table.Len())
	})
}

func TestPlaySeeds(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Players = []config.PlayerConfig{
		{Name: "r1", Kind: config.KindRandom, Seed: 5},
		{Name: "r2", Kind: config.KindRandom, Seed: 9},
	}
	cfg.Experiment.Games = 8
	cfg.Experiment.Workers = 4
	cfg.Experiment.Matchups = []config.Matchup{{First: "r1", Second: "r2"}}
	columns := func() [][]int {
		records, err := Play(context.Background(), cfg)
		require.NoError(t, err)
		games := make([][]int, len(records.Games))
		for i, g := range records.Games {
			games[i] = g.Columns
		}
		return games
	}

	first := columns()
	require.Len(t, first, 8)
	require.Equal(t, first, columns(), "Fixed seeds replay the same games with parallel workers")
}

func TestRun(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Experiment.Matchups = cfg.Experiment.Matchups[1:]

	dir, err := Run(context.Background(), cfg)

	require.NoError(t, err)
	for _, name := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv", "games.parquet"} {
		require.FileExists(t, filepath.Join(dir, name))
	}
	entries, err := os.ReadDir(filepath.Join(cfg.Experiment.OutDir, "smoke"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRunThroughputExperiment(t *testing.T) {
	results, err := RunThroughputExperiment(context.Background(), game.StandardRules(), 20*time.Millisecond, []int{1, 2})

	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.Positive(t, r.Episodes)
		require.Positive(t, r.Rate())
	}
	require.Equal(t, 2, results[1].Goroutines)
}
