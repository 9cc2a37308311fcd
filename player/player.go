package player

import (
	"boards/experiments/metrics"
	"boards/game"
	"context"
)

// Player is one side of a game. The driver calls Init once, TakeTurn whenever
// id is to move, and EndGame once the game is decided.
type Player interface {
	Name() string
	Init(view game.View, id game.Player) error
	// TakeTurn must place exactly one piece through view before returning.
	TakeTurn(ctx context.Context, view game.View, id game.Player) error
	EndGame(view game.View, winner game.Player) error
}

// Reporter is implemented by players that measure their searches.
type Reporter interface {
	LastMetric() metrics.SearchMetric
}
