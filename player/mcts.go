package player

import (
	"boards/experiments/metrics"
	"boards/game"
	"boards/searcher"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// MCTSPlayer searches with Monte Carlo tree search. It owns a transposition
// table for its whole lifetime and, given a path, loads it in Init and saves
// it in EndGame. A shared table is never loaded or saved by the player.
type MCTSPlayer struct {
	name        string
	table       *searcher.Table
	shared      bool
	tablePath   string
	temperature float64
	rng         *rand.Rand
	options     []searcher.Option
	mcts        *searcher.MCTS
	last        metrics.SearchMetric
}

type MCTSOption func(p *MCTSPlayer)

// WithTablePath persists the transposition table at path between games.
func WithTablePath(path string) MCTSOption {
	return func(p *MCTSPlayer) {
		p.tablePath = path
	}
}

// WithSharedTable searches with t, which the caller loads and saves. Players
// in concurrent games may share one table.
func WithSharedTable(t *searcher.Table) MCTSOption {
	return func(p *MCTSPlayer) {
		if t != nil {
			p.table, p.shared = t, true
		}
	}
}

// WithoutTable searches on node statistics alone.
func WithoutTable() MCTSOption {
	return func(p *MCTSPlayer) {
		p.table, p.shared = nil, false
	}
}

// WithTemperature samples the move from visits^(1/temperature) instead of
// taking the search's choice.
func WithTemperature(temperature float64, seed uint64) MCTSOption {
	return func(p *MCTSPlayer) {
		if temperature > 0 {
			p.temperature = temperature
			p.rng = rand.New(rand.NewSource(seed))
		}
	}
}

func WithSearchOptions(options ...searcher.Option) MCTSOption {
	return func(p *MCTSPlayer) {
		p.options = append(p.options, options...)
	}
}

func NewMCTSPlayer(name string, options ...MCTSOption) *MCTSPlayer {
	p := &MCTSPlayer{
		name:  name,
		table: searcher.NewTable(),
	}
	for _, option := range options {
		option(p)
	}
	searchOptions := append(p.options, searcher.WithMetrics())
	if p.table != nil {
		searchOptions = append(searchOptions, searcher.WithTable(p.table))
	}
	p.mcts = searcher.NewMCTS(searchOptions...)
	return p
}

func (p *MCTSPlayer) Name() string {
	return p.name
}

func (p *MCTSPlayer) Table() *searcher.Table {
	return p.table
}

func (p *MCTSPlayer) LastMetric() metrics.SearchMetric {
	return p.last
}

// Init loads persisted statistics. A missing or unreadable file leaves the
// table empty.
func (p *MCTSPlayer) Init(view game.View, id game.Player) error {
	if p.table == nil || p.shared || p.tablePath == "" {
		return nil
	}
	if err := p.table.LoadFile(p.tablePath); err != nil {
		log.Warn().Err(err).Str("path", p.tablePath).Msgf("%s starts with an empty table", p.name)
		p.table.Clear()
		return nil
	}
	log.Info().Str("path", p.tablePath).Msgf("%s loaded %d table entries as %s", p.name, p.table.Len(), id)
	return nil
}

func (p *MCTSPlayer) TakeTurn(ctx context.Context, view game.View, id game.Player) error {
	board, err := game.Snapshot(view, id)
	if err != nil {
		return fmt.Errorf("failed to snapshot game: %w", err)
	}
	result, err := p.mcts.Search(ctx, board)
	if err != nil {
		return err
	}
	p.last = result.Metric

	move := result.Move
	if p.temperature > 0 && !result.Opening && len(result.Children) > 0 {
		policy := adjustTemperature(result.Children, p.temperature)
		move = result.Children[sample(policy, p.rng)].Move
	}
	return view.PlacePiece(move)
}

// EndGame saves the table. Failing to save is logged and otherwise ignored.
func (p *MCTSPlayer) EndGame(view game.View, winner game.Player) error {
	if p.table == nil || p.shared || p.tablePath == "" {
		return nil
	}
	if err := p.table.SaveFile(p.tablePath); err != nil {
		log.Error().Err(err).Str("path", p.tablePath).Msgf("%s could not save its table", p.name)
		return nil
	}
	log.Info().Str("path", p.tablePath).Msgf("%s saved %d table entries", p.name, p.table.Len())
	return nil
}
