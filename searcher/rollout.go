package searcher

import (
	"boards/game"

	"golang.org/x/exp/rand"
)

// RolloutPolicy plays a board to the end and reports the winner (None for a
// draw) and the number of moves played. It must not modify b.
type RolloutPolicy func(b *game.Board, rng *rand.Rand) (winner game.Player, steps int)

// RandomRollout plays uniformly random legal moves on a private copy of b.
// Every move fills a cell, so it stops after at most b.Empty() moves.
func RandomRollout(b *game.Board, rng *rand.Rand) (game.Player, int) {
	if terminal, winner := b.Status(); terminal {
		return winner, 0
	}

	state := b.Clone()
	steps := 0
	for {
		moves := state.LegalMoves()
		if len(moves) == 0 {
			return game.None, steps
		}
		move := moves[rng.Intn(len(moves))] // Random rollout policy
		mover := state.ToMove()
		if err := state.Apply(move); err != nil {
			panic(err)
		}
		steps++
		if state.WinsAt(move.X, move.Y) {
			return mover, steps
		}
	}
}
