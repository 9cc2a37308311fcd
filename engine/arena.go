package engine

import (
	"boards/game"
	"boards/player"
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh player for the game with the given index so
// concurrent games never share search state.
type Factory func(index int) player.Player

type ArenaStats struct {
	p1Wins   atomic.Int32
	p2Wins   atomic.Int32
	draws    atomic.Int32
	forfeits atomic.Int32
}

func (s *ArenaStats) Total() int {
	return s.P1Wins() + s.P2Wins() + s.Draws()
}

func (s *ArenaStats) P1Wins() int {
	return int(s.p1Wins.Load())
}

func (s *ArenaStats) P2Wins() int {
	return int(s.p2Wins.Load())
}

func (s *ArenaStats) Draws() int {
	return int(s.draws.Load())
}

func (s *ArenaStats) Forfeits() int {
	return int(s.forfeits.Load())
}

// ArenaGame is one finished game. Switched is set when the second factory's
// player moved first.
type ArenaGame struct {
	Index    int
	Switched bool
	Outcome
}

// Arena plays a series of games between two player configurations,
// alternating who moves first.
type Arena struct {
	ArenaStats
	rules   game.Rules
	player1 Factory
	player2 Factory
	workers int
	options []MatchOption
}

func NewArena(rules game.Rules, player1, player2 Factory, workers int, options ...MatchOption) *Arena {
	if workers < 1 {
		workers = 1
	}
	return &Arena{
		rules:   rules,
		player1: player1,
		player2: player2,
		workers: workers,
		options: options,
	}
}

// Play runs games matches, at most workers at a time. Games already finished
// are returned even when ctx ends the series early.
func (a *Arena) Play(ctx context.Context, games int) ([]ArenaGame, error) {
	results := make([]ArenaGame, games)
	done := make([]bool, games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := 0; i < games; i++ {
		g.Go(func() error {
			switched := i%2 == 1
			p1, p2 := a.player1(i), a.player2(i)
			first, second := p1, p2
			if switched {
				first, second = p2, p1
			}

			outcome, err := NewMatch(a.rules, first, second, a.options...).Run(ctx)
			if err != nil {
				return err
			}
			results[i] = ArenaGame{Index: i, Switched: switched, Outcome: outcome}
			done[i] = true
			a.record(outcome.Winner, outcome.Forfeit, switched)
			log.Info().Msgf("arena game %d of %d finished, p1 %d p2 %d draws %d", i+1, games, a.P1Wins(), a.P2Wins(), a.Draws())
			return nil
		})
	}
	err := g.Wait()

	finished := make([]ArenaGame, 0, games)
	for i, ok := range done {
		if ok {
			finished = append(finished, results[i])
		}
	}
	return finished, err
}

func (a *Arena) record(winner game.Player, forfeit, switched bool) {
	if forfeit {
		a.forfeits.Add(1)
	}
	switch {
	case winner == game.None:
		a.draws.Add(1)
	case (winner == game.PlayerA) != switched:
		a.p1Wins.Add(1)
	default:
		a.p2Wins.Add(1)
	}
}
