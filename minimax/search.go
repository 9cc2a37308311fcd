package minimax

import (
	"boards/experiments/metrics"
	"boards/game"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// WinScore marks a forced win. The remaining depth is added on top so that
// shallower wins score higher.
const WinScore = 1_000_000

const infinity = 2 * WinScore

const DefaultDuration = 2000 * time.Millisecond

// Nodes between deadline checks inside an iteration.
const checkInterval = 1024

type Option func(s *Searcher)

// Searcher is an iterative deepening negamax with alpha-beta pruning.
type Searcher struct {
	duration  time.Duration
	maxDepth  int
	heuristic bool
	metrics   metrics.Collector
}

type Result struct {
	Move    game.Move
	Score   int  // From the point of view of the player to move
	Depth   int  // Deepest completed iteration
	Nodes   int  // Positions visited across all iterations
	Opening bool // Chosen by the opening rule without searching
	Metric  metrics.SearchMetric
}

func WithDuration(duration time.Duration) Option {
	return func(s *Searcher) {
		if duration > 0 {
			s.duration = duration
		}
	}
}

// WithMaxDepth stops deepening after depth plies.
func WithMaxDepth(depth int) Option {
	return func(s *Searcher) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithHeuristic scores leaves by open windows instead of a constant.
func WithHeuristic(enabled bool) Option {
	return func(s *Searcher) {
		s.heuristic = enabled
	}
}

func WithMetrics() Option {
	return func(s *Searcher) {
		s.metrics = metrics.NewCollector()
	}
}

func New(options ...Option) *Searcher {
	s := &Searcher{
		duration: DefaultDuration,
		metrics:  metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Search deepens one ply at a time until the budget runs out, the depth limit
// is reached or every empty cell is covered. An iteration cut short by the
// deadline is thrown away.
func (s *Searcher) Search(ctx context.Context, board *game.Board) (Result, error) {
	if move, ok := board.OpeningMove(); ok {
		return Result{Move: move, Opening: true}, nil
	}
	if terminal, _ := board.Status(); terminal {
		return Result{}, fmt.Errorf("searching %s: %w", board.ToMove(), game.ErrNoLegalMoves)
	}

	s.metrics.Start("alphabeta", 1)
	ctx, cancel := context.WithTimeout(ctx, s.duration)
	defer cancel()

	maxDepth := board.Empty()
	if s.maxDepth > 0 && s.maxDepth < maxDepth {
		maxDepth = s.maxDepth
	}

	run := &iteration{
		ctx:       ctx,
		arena:     newArena(board),
		heuristic: s.heuristic,
		buffers:   make([][]game.Move, maxDepth+1),
	}
	result := Result{Move: board.LegalMoves()[0]}

	for depth := 1; depth <= maxDepth && ctx.Err() == nil; depth++ {
		score, move, ok := run.negamax(board.ToMove(), depth, -infinity, infinity)
		if !ok {
			log.Debug().Msgf("alpha-beta stopped during depth %d after %d nodes", depth, run.nodes)
			break
		}
		result.Move, result.Score, result.Depth = move, score, depth
		log.Debug().Msgf("alpha-beta depth %d: %s scores %d", depth, move, score)
		if score >= WinScore {
			break
		}
	}

	result.Nodes = run.nodes
	s.metrics.SetDepth(result.Depth, result.Nodes)
	result.Metric = s.metrics.Complete()
	return result, nil
}

type iteration struct {
	ctx       context.Context
	arena     *arena
	heuristic bool
	buffers   [][]game.Move // Candidate lists per remaining depth
	nodes     int
	stopped   bool
}

func (it *iteration) expired() bool {
	if it.stopped {
		return true
	}
	if (it.nodes-1)%checkInterval == 0 && it.ctx.Err() != nil {
		it.stopped = true
	}
	return it.stopped
}

// leafScore is what a move is worth when nothing deeper is searched.
func leafScore(depth int) int {
	if depth == 1 {
		return 0
	}
	return -100
}

// negamax returns the best score for player, the move achieving it, and false
// if the deadline interrupted the search. A position without moves is a draw.
func (it *iteration) negamax(player game.Player, depth, alpha, beta int) (int, game.Move, bool) {
	it.nodes++
	if it.expired() {
		return 0, game.Move{}, false
	}

	candidates := it.arena.candidates(it.buffers[depth])
	it.buffers[depth] = candidates

	best, bestMove, found := -infinity, game.Move{}, false
	for _, move := range candidates {
		it.arena.push(move, player)
		if it.arena.wins(move) {
			it.arena.undo(move)
			return WinScore + depth, move, true
		}

		score := leafScore(depth)
		if depth > 1 {
			reply, _, ok := it.negamax(player.Opponent(), depth-1, -beta, -alpha)
			if !ok {
				it.arena.undo(move)
				return 0, game.Move{}, false
			}
			score = -reply
		} else if it.heuristic {
			score = it.arena.heuristic(player)
		}
		it.arena.undo(move)

		if !found || score > best {
			best, bestMove, found = score, move, true
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}

	if !found {
		return 0, game.Move{}, true
	}
	return best, bestMove, true
}
