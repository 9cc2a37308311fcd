package searcher

import (
	"boards/experiments/metrics"
	"boards/game"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

type Option func(mcts *MCTS)

type MCTS struct {
	goroutines  int
	duration    time.Duration
	episodes    int
	exploration float64
	seed        uint64
	table       *Table
	scoring     Scoring
	selection   Selection
	reuse       bool
	rollout     RolloutPolicy
	metrics     metrics.Collector
	rngs        []*rand.Rand
	trees       []*node // Roots kept for the next search when reuse is on
}

// Result is the outcome of one search.
type Result struct {
	Move     game.Move
	Opening  bool // Chosen by the opening rule without searching
	Children []ChildStats
	Metric   metrics.SearchMetric
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

// WithEpisodes bounds the search by iteration count instead of wall-clock
// time. When both are set the search stops at whichever comes first.
func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

// WithGoroutines runs that many independent trees from the same root and
// merges their root statistics. Worker i draws from its own generator seeded
// with seed+i.
func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		if goroutines > 0 {
			m.goroutines = goroutines
		}
	}
}

// WithTable shares statistics between transposed branches through t. During
// a search every worker reads t as it was when the search started plus its
// own updates; the updates are merged into t in worker order afterwards.
func WithTable(t *Table) Option {
	return func(m *MCTS) {
		m.table = t
	}
}

func WithScoring(scoring Scoring) Option {
	return func(m *MCTS) {
		m.scoring = scoring
	}
}

func WithFinalSelection(selection Selection) Option {
	return func(m *MCTS) {
		m.selection = selection
	}
}

// WithTreeReuse keeps the tree between searches and restarts from the
// matching grandchild of the previous root when one exists.
func WithTreeReuse(reuse bool) Option {
	return func(m *MCTS) {
		m.reuse = reuse
	}
}

func WithRollout(rollout RolloutPolicy) Option {
	return func(m *MCTS) {
		if rollout != nil {
			m.rollout = rollout
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:  1,
		exploration: Exploration,
		seed:        uint64(time.Now().UnixNano()),
		scoring:     ScoreSearcher,
		selection:   SelectMostVisited,
		rollout:     RandomRollout,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		m.duration = DefaultDuration
	}

	m.rngs = make([]*rand.Rand, m.goroutines)
	for i := range m.rngs {
		m.rngs[i] = rand.New(rand.NewSource(m.seed + uint64(i)))
	}
	m.trees = make([]*node, m.goroutines)
	return m
}

func (m *MCTS) Table() *Table {
	return m.table
}

// Search picks a move for the player to move on board. The first move of a
// game goes to the centre without searching. A board without legal moves, or
// one that is already won, yields game.ErrNoLegalMoves.
func (m *MCTS) Search(ctx context.Context, board *game.Board) (Result, error) {
	if move, ok := board.OpeningMove(); ok {
		return Result{Move: move, Opening: true}, nil
	}
	if terminal, _ := board.Status(); terminal {
		return Result{}, fmt.Errorf("searching %s: %w", board.ToMove(), game.ErrNoLegalMoves)
	}

	m.metrics.Start("mcts", m.goroutines)
	deadline := time.Now().Add(m.duration)

	workers := make([]*worker, m.goroutines)
	roots := make([]*node, m.goroutines)
	counts := make([]int, m.goroutines)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < m.goroutines; i++ {
		workers[i] = m.newWorker(i, board.ToMove())
		episodes := m.share(i)
		g.Go(func() error {
			roots[i], counts[i] = m.buildTree(ctx, workers[i], board, deadline, episodes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	episodes := 0
	for i, w := range workers {
		episodes += counts[i]
		if w.table != nil {
			m.table.absorb(w.table.delta)
		}
	}

	children := merge(roots)
	if len(children) == 0 {
		return Result{}, fmt.Errorf("searching %s: %w", board.ToMove(), game.ErrNoLegalMoves)
	}
	best := m.findBestMove(children)

	if m.table != nil {
		m.metrics.SetTable(m.table.Len(), int(m.table.Collisions()))
	}
	metric := m.metrics.Complete()
	log.Debug().Msgf("mcts chose %s for %s after %d episodes", children[best].Move, board.ToMove(), episodes)

	return Result{Move: children[best].Move, Children: children, Metric: metric}, nil
}

// share splits the episode budget over the workers.
func (m *MCTS) share(worker int) int {
	if m.episodes <= 0 {
		return 0
	}
	n := m.episodes / m.goroutines
	if worker < m.episodes%m.goroutines {
		n++
	}
	return n
}

// worker is the state one goroutine owns during a search.
type worker struct {
	index  int
	rng    *rand.Rand
	player game.Player // Searching player
	table  *tableView  // Nil without a table
}

func (m *MCTS) newWorker(index int, player game.Player) *worker {
	w := &worker{index: index, rng: m.rngs[index], player: player}
	if m.table != nil {
		w.table = newTableView(m.table, m.tableSign(player))
	}
	return w
}

// tableSign orients table scores. Searcher-relative scores are stored from
// PlayerA's side so a table means the same to both seats.
func (m *MCTS) tableSign(player game.Player) int64 {
	if m.scoring == ScoreSearcher && player == game.PlayerB {
		return -1
	}
	return 1
}

// buildTree runs episodes on the worker's tree and returns its root with the
// number of episodes completed.
func (m *MCTS) buildTree(ctx context.Context, w *worker, board *game.Board, deadline time.Time, episodes int) (*node, int) {
	root := m.findRoot(w.index, board)

	done := 0
	for ; m.episodes <= 0 || done < episodes; done++ {
		if m.duration > 0 && !time.Now().Before(deadline) {
			break
		}
		if ctx.Err() != nil {
			break
		}
		m.simulate(w, root)
		m.metrics.AddEpisode()
	}
	return root, done
}

func (m *MCTS) findRoot(worker int, board *game.Board) *node {
	var root *node
	if m.reuse && m.trees[worker] != nil {
		root = m.trees[worker].find(board)
		if root == nil {
			log.Debug().Msgf("worker %d found no reusable subtree for the new position", worker)
		}
	}

	if root == nil {
		root = newNode(nil, game.Move{}, board.Clone())
		m.metrics.SetTreeReset(true)
	} else {
		root.parent = nil
		m.metrics.SetTreeReset(false)
	}
	root.expand() // Root children are always expanded eagerly

	if m.reuse {
		m.trees[worker] = root
	}
	return root
}

func (m *MCTS) simulate(w *worker, root *node) {
	leaf := m.selectThenExpand(w, root)
	if !leaf.terminal {
		m.metrics.AddFullPlayout()
	}
	winner, _ := m.rollout(leaf.board, w.rng)
	m.backup(w, leaf, winner)
}

// selectThenExpand descends by UCB1 while the node has children. A node seen
// for the first time is rolled out as is; a visited one is expanded and its
// first child is rolled out instead.
func (m *MCTS) selectThenExpand(w *worker, root *node) *node {
	n := root
	for len(n.children) > 0 {
		n = n.children[m.pickChild(w, n)]
	}
	if n.visits == 0 || n.terminal {
		return n
	}
	n.expand()
	return n.children[0]
}

func (m *MCTS) pickChild(w *worker, n *node) int {
	return argmax(len(n.children), func(i int) float64 {
		visits, score := m.stats(w, n.children[i])
		return ucb1(score, visits, n.visits, m.exploration)
	})
}

// stats prefers the table entry of the child's position.
func (m *MCTS) stats(w *worker, n *node) (visits, score float64) {
	if w.table != nil {
		if s, ok := w.table.get(n.board); ok {
			return float64(s.Visits), float64(s.Score)
		}
	}
	return float64(n.visits), float64(n.score)
}

// backup walks from the simulated node to the root. Every node gains a visit.
// Score goes only to nodes whose move was made by the winner, i.e. whose
// parent had the winner to move.
func (m *MCTS) backup(w *worker, leaf *node, winner game.Player) {
	outcome := 0
	switch winner {
	case w.player:
		outcome = 1
	case w.player.Opponent():
		outcome = -1
	}

	ply := leaf.depth() + 1
	for n := leaf; n != nil; n = n.parent {
		delta := 0
		if n.parent != nil && n.parent.board.ToMove() == winner {
			delta = m.scoring.delta(outcome, ply)
		}
		n.visits++
		n.score += delta
		if w.table != nil {
			w.table.put(n.board, 1, int64(delta))
		}
		ply--
	}
}
