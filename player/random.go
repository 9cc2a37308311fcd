package player

import (
	"boards/game"
	"context"
	"fmt"

	"golang.org/x/exp/rand"
)

// RandomPlayer places uniformly at random. It is the baseline opponent.
type RandomPlayer struct {
	name string
	rng  *rand.Rand
}

func NewRandomPlayer(name string, seed uint64) *RandomPlayer {
	return &RandomPlayer{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPlayer) Name() string {
	return p.name
}

func (p *RandomPlayer) Init(view game.View, id game.Player) error {
	return nil
}

func (p *RandomPlayer) TakeTurn(ctx context.Context, view game.View, id game.Player) error {
	board, err := game.Snapshot(view, id)
	if err != nil {
		return fmt.Errorf("failed to snapshot game: %w", err)
	}
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return game.ErrNoLegalMoves
	}
	return view.PlacePiece(moves[p.rng.Intn(len(moves))])
}

func (p *RandomPlayer) EndGame(view game.View, winner game.Player) error {
	return nil
}
