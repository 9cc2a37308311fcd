package player

import (
	"boards/experiments/metrics"
	"boards/game"
	"boards/minimax"
	"context"
	"fmt"
)

type AlphaBetaPlayer struct {
	name     string
	searcher *minimax.Searcher
	last     metrics.SearchMetric
}

func NewAlphaBetaPlayer(name string, options ...minimax.Option) *AlphaBetaPlayer {
	return &AlphaBetaPlayer{
		name:     name,
		searcher: minimax.New(append(options, minimax.WithMetrics())...),
	}
}

func (p *AlphaBetaPlayer) Name() string {
	return p.name
}

func (p *AlphaBetaPlayer) LastMetric() metrics.SearchMetric {
	return p.last
}

func (p *AlphaBetaPlayer) Init(view game.View, id game.Player) error {
	return nil
}

func (p *AlphaBetaPlayer) TakeTurn(ctx context.Context, view game.View, id game.Player) error {
	board, err := game.Snapshot(view, id)
	if err != nil {
		return fmt.Errorf("failed to snapshot game: %w", err)
	}
	result, err := p.searcher.Search(ctx, board)
	if err != nil {
		return err
	}
	p.last = result.Metric
	return view.PlacePiece(result.Move)
}

func (p *AlphaBetaPlayer) EndGame(view game.View, winner game.Player) error {
	return nil
}
