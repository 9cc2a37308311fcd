package engine

import (
	"boards/experiments/metrics"
	"boards/game"
	"context"
	"errors"
)

var (
	ErrAlreadyPlaced = errors.New("piece already placed this turn")
	ErrNotPlaced     = errors.New("turn ended without a placement")
	ErrTurnTimeout   = errors.New("turn exceeded its time limit")
)

type Engine interface {
	// Run plays a game till a player wins, the board fills or a player forfeits
	Run(ctx context.Context) (Outcome, error)
}

type Outcome struct {
	Winner      game.Player // game.None for a draw
	Forfeit     bool
	Moves       []game.Move
	Board       *game.Board
	GameMetric  metrics.GameMetric
	MoveMetrics []metrics.MoveMetric
}
