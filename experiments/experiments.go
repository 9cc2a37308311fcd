package experiments

import (
	"boards/config"
	"boards/engine"
	"boards/experiments/metrics"
	"boards/minimax"
	"boards/player"
	"boards/searcher"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NewPlayer builds the player described by pc. Players with a fixed seed get
// seed+offset so games played side by side do not mirror each other. An MCTS
// player with a table keeps it at TablePath between games.
func NewPlayer(pc config.PlayerConfig, offset uint64) player.Player {
	return newPlayer(pc, offset, nil)
}

// TablePath is where pc's transposition table is persisted.
func TablePath(pc config.PlayerConfig) string {
	if pc.TablePath != "" {
		return pc.TablePath
	}
	return searcher.DefaultTablePath("_" + pc.Name)
}

func newPlayer(pc config.PlayerConfig, offset uint64, shared *searcher.Table) player.Player {
	seed := pc.Seed + offset
	if pc.Seed == 0 {
		seed = uint64(time.Now().UnixNano()) + offset
	}

	switch pc.Kind {
	case config.KindMCTS:
		return newMCTSPlayer(pc, seed, shared)
	case config.KindAlphaBeta:
		options := []minimax.Option{minimax.WithDuration(pc.Duration), minimax.WithHeuristic(pc.Heuristic)}
		if pc.MaxDepth > 0 {
			options = append(options, minimax.WithMaxDepth(pc.MaxDepth))
		}
		return player.NewAlphaBetaPlayer(pc.Name, options...)
	default:
		return player.NewRandomPlayer(pc.Name, seed)
	}
}

func newMCTSPlayer(pc config.PlayerConfig, seed uint64, shared *searcher.Table) *player.MCTSPlayer {
	options := []searcher.Option{searcher.WithSeed(seed), searcher.WithTreeReuse(pc.TreeReuse)}
	if pc.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(pc.Episodes))
	}
	if pc.Duration > 0 {
		options = append(options, searcher.WithDuration(pc.Duration))
	}
	if pc.Goroutines > 0 {
		options = append(options, searcher.WithGoroutines(pc.Goroutines))
	}
	if pc.Exploration > 0 {
		options = append(options, searcher.WithExploration(pc.Exploration))
	}
	if pc.Scoring == "mover" {
		options = append(options, searcher.WithScoring(searcher.ScoreMover))
	}
	if pc.Selection == "ucb" {
		options = append(options, searcher.WithFinalSelection(searcher.SelectExplorationQuirk))
	}

	playerOptions := []player.MCTSOption{player.WithSearchOptions(options...)}
	switch {
	case !pc.Table:
		playerOptions = append(playerOptions, player.WithoutTable())
	case shared != nil:
		playerOptions = append(playerOptions, player.WithSharedTable(shared))
	default:
		playerOptions = append(playerOptions, player.WithTablePath(TablePath(pc)))
	}
	if pc.Temperature > 0 {
		playerOptions = append(playerOptions, player.WithTemperature(pc.Temperature, seed))
	}
	return player.NewMCTSPlayer(pc.Name, playerOptions...)
}

// AgentConfigs numbers the configured players from 1 in declaration order.
func AgentConfigs(cfg config.Config) []metrics.AgentConfig {
	configs := make([]metrics.AgentConfig, len(cfg.Players))
	for i, p := range cfg.Players {
		configs[i] = metrics.AgentConfig{
			ID:         i + 1,
			Name:       p.Name,
			Kind:       p.Kind,
			Goroutines: p.Goroutines,
			Duration:   p.Duration,
			Episodes:   p.Episodes,
			MaxDepth:   p.MaxDepth,
		}
	}
	return configs
}

func agentID(configs []metrics.AgentConfig, name string) int {
	for _, c := range configs {
		if c.Name == name {
			return c.ID
		}
	}
	return 0
}

// Records is everything an experiment produced.
type Records struct {
	Games []metrics.GameRecord
	Moves []metrics.MoveRecord
}

// Run plays every configured matchup through the arena and writes agent
// configs, game and move records under the experiment's output directory.
// It returns the directory written to.
func Run(ctx context.Context, cfg config.Config) (string, error) {
	records, err := Play(ctx, cfg)
	if err != nil {
		return "", err
	}

	writer, err := metrics.NewWriter(cfg.Experiment.OutDir, cfg.Experiment.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(AgentConfigs(cfg)); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(records.Games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if _, err := writer.WriteGameParquet(records.Games); err != nil {
		return "", fmt.Errorf("failed to write game parquet: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(records.Moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")

	return writer.Dir(), nil
}

// Play runs the matchups without writing anything but the players' tables.
// Every MCTS configuration with a table shares one across all of its games;
// it is loaded before the first matchup and saved after the last.
func Play(ctx context.Context, cfg config.Config) (Records, error) {
	if err := cfg.Validate(); err != nil {
		return Records{}, err
	}
	agents := AgentConfigs(cfg)
	exp := cfg.Experiment
	tables := loadTables(cfg)
	records := Records{}
	count := 0

	log.Info().Msgf("starting %s experiment...", exp.Name)

	for mi, matchup := range exp.Matchups {
		first, _ := cfg.Player(matchup.First)
		second, _ := cfg.Player(matchup.Second)
		log.Info().Msgf("starting matchup %d of %d between %s and %s...", mi+1, len(exp.Matchups), first.Name, second.Name)

		// Seeds follow the game, not the order workers pick games up
		factory := func(pc config.PlayerConfig, seat int) engine.Factory {
			return func(i int) player.Player {
				offset := uint64(2*(mi*exp.Games+i) + seat)
				return newPlayer(pc, offset, tables[pc.Name])
			}
		}
		arena := engine.NewArena(cfg.Rules, factory(first, 0), factory(second, 1), exp.Workers,
			engine.WithTurnTimeout(cfg.TurnTimeout))

		games, err := arena.Play(ctx, exp.Games)
		if err != nil {
			if err := saveTables(cfg, tables); err != nil {
				log.Error().Err(err).Msg("failed to save tables after an interrupted matchup")
			}
			return records, fmt.Errorf("matchup %s vs %s: %w", first.Name, second.Name, err)
		}

		for _, g := range games {
			count++
			agent1, agent2 := agentID(agents, first.Name), agentID(agents, second.Name)
			if g.Switched {
				agent1, agent2 = agent2, agent1
			}
			record := metrics.GameRecord{
				ID:         count,
				UUID:       uuid.New(),
				Agent1:     agent1,
				Agent2:     agent2,
				GameMetric: g.GameMetric,
			}
			for _, move := range g.Moves {
				record.Columns = append(record.Columns, move.X)
				record.Rows = append(record.Rows, move.Y)
			}
			records.Games = append(records.Games, record)
			for _, mm := range g.MoveMetrics {
				records.Moves = append(records.Moves, metrics.MoveRecord{Game: count, MoveMetric: mm})
			}
		}
		log.Info().Msgf("completed matchup %d of %d: %s %d, %s %d, draws %d",
			mi+1, len(exp.Matchups), first.Name, arena.P1Wins(), second.Name, arena.P2Wins(), arena.Draws())
	}

	if err := saveTables(cfg, tables); err != nil {
		return records, err
	}
	log.Info().Msgf("completed %s experiment", exp.Name)
	return records, nil
}

// loadTables opens one table per MCTS configuration that keeps one. A file
// that cannot be read leaves that table empty.
func loadTables(cfg config.Config) map[string]*searcher.Table {
	tables := map[string]*searcher.Table{}
	for _, pc := range cfg.Players {
		if pc.Kind != config.KindMCTS || !pc.Table {
			continue
		}
		table := searcher.NewTable()
		path := TablePath(pc)
		if err := table.LoadFile(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msgf("%s starts with an empty table", pc.Name)
			table.Clear()
		}
		tables[pc.Name] = table
	}
	return tables
}

func saveTables(cfg config.Config, tables map[string]*searcher.Table) error {
	for _, pc := range cfg.Players {
		table, ok := tables[pc.Name]
		if !ok {
			continue
		}
		path := TablePath(pc)
		if err := table.SaveFile(path); err != nil {
			return fmt.Errorf("failed to save the %s table: %w", pc.Name, err)
		}
		log.Info().Str("path", path).Msgf("saved %d table entries for %s", table.Len(), pc.Name)
	}
	return nil
}
