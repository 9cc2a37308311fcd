package experiments

import (
	"boards/game"
	"boards/searcher"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

type Throughput struct {
	Goroutines   int
	Episodes     int
	FullPlayouts int
	Duration     time.Duration
}

// Rate is episodes per second.
func (t Throughput) Rate() float64 {
	if t.Duration <= 0 {
		return 0
	}
	return float64(t.Episodes) / t.Duration.Seconds()
}

// RunThroughputExperiment times one MCTS search per goroutine count from the
// position after the opening move.
func RunThroughputExperiment(ctx context.Context, rules game.Rules, duration time.Duration, goroutines []int) ([]Throughput, error) {
	board, err := game.NewBoard(rules)
	if err != nil {
		return nil, err
	}
	opening, _ := board.OpeningMove()
	if err := board.Apply(opening); err != nil {
		return nil, fmt.Errorf("failed to play the opening: %w", err)
	}

	log.Info().Msg("starting throughput experiment...")
	results := make([]Throughput, 0, len(goroutines))
	for _, n := range goroutines {
		mcts := searcher.NewMCTS(
			searcher.WithGoroutines(n),
			searcher.WithDuration(duration),
			searcher.WithSeed(1),
			searcher.WithMetrics(),
		)
		result, err := mcts.Search(ctx, board)
		if err != nil {
			return results, err
		}
		t := Throughput{
			Goroutines:   n,
			Episodes:     result.Metric.Episodes,
			FullPlayouts: result.Metric.FullPlayouts,
			Duration:     result.Metric.Duration,
		}
		results = append(results, t)
		log.Info().Msgf("%d goroutines: %d episodes in %s (%.0f/s)", n, t.Episodes, t.Duration, t.Rate())
	}
	log.Info().Msg("completed throughput experiment")
	return results, nil
}
