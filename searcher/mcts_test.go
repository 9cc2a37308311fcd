package searcher

import (
	"boards/game"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// X to move with three in a row on the bottom and both ends open.
var openThreeRows = []string{
	".......",
	".......",
	".......",
	".......",
	".OO....",
	".XXX..O",
}

// One X in the centre, O to move.
var secondMoveRows = []string{
	".......",
	".......",
	".......",
	".......",
	".......",
	"...X...",
}

func totalVisits(children []ChildStats) int {
	total := 0
	for _, c := range children {
		total += c.Visits
	}
	return total
}

// checkVisits asserts that every expanded non-root node was rolled out once
// itself before its children were added.
func checkVisits(t *testing.T, n *node) {
	t.Helper()
	if len(n.children) == 0 {
		return
	}
	sum := 0
	for _, child := range n.children {
		sum += child.visits
		require.Equal(t, n, child.parent)
		require.Equal(t, n.depth()+1, child.depth())
		checkVisits(t, child)
	}
	if n.parent == nil {
		require.Equal(t, n.visits, sum, "Root visits should equal the sum of its children's visits")
	} else {
		require.Equal(t, n.visits, sum+1, "Expanded node should hold its own rollout plus its children's")
	}
}

func TestNewMCTS(t *testing.T) {
	t.Run("defaults to a two second budget", func(t *testing.T) {
		m := NewMCTS()
		require.Equal(t, DefaultDuration, m.duration)
		require.Equal(t, Exploration, m.exploration)
		require.Equal(t, SelectMostVisited, m.selection)
		require.False(t, m.reuse, "Tree reuse should be off by default")
	})

	t.Run("episodes replace the default duration", func(t *testing.T) {
		m := NewMCTS(WithEpisodes(10))
		require.Equal(t, time.Duration(0), m.duration)
		require.Equal(t, 10, m.episodes)
	})
}

func TestMCTSSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("opening move goes to the centre column", func(t *testing.T) {
		b, _ := game.NewBoard(game.StandardRules())
		m := NewMCTS(WithEpisodes(100), WithSeed(1))

		result, err := m.Search(ctx, b)

		require.NoError(t, err)
		require.True(t, result.Opening)
		require.Equal(t, game.Move{X: 3, Y: 0}, result.Move)
	})

	t.Run("full board has no legal moves", func(t *testing.T) {
		rules := game.Rules{Width: 3, Height: 3, Target: 3}
		b := parse(t, rules, "XOX", "XOO", "OXX")
		m := NewMCTS(WithEpisodes(10), WithSeed(1))

		_, err := m.Search(ctx, b)
		require.ErrorIs(t, err, game.ErrNoLegalMoves)
	})

	t.Run("won board has no legal moves", func(t *testing.T) {
		b := parse(t, game.StandardRules(), ".......", ".......", ".......", ".......", "OOO....", "XXXX...")
		m := NewMCTS(WithEpisodes(10), WithSeed(1))

		_, err := m.Search(ctx, b)
		require.ErrorIs(t, err, game.ErrNoLegalMoves)
	})

	t.Run("taking an immediate win", func(t *testing.T) {
		b := parse(t, game.StandardRules(), openThreeRows...)

		for _, selection := range []Selection{SelectMostVisited, SelectExplorationQuirk} {
			m := NewMCTS(WithEpisodes(3000), WithSeed(1), WithFinalSelection(selection))

			result, err := m.Search(ctx, b)

			require.NoError(t, err)
			require.Contains(t, []int{0, 4}, result.Move.X, "Selection %s should complete the streak", selection)
		}
	})

	t.Run("visits are conserved across the tree", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithEpisodes(500), WithSeed(7))

		result, err := m.Search(ctx, b)

		require.NoError(t, err)
		require.Len(t, result.Children, 7)
		require.Equal(t, 500, totalVisits(result.Children), "Every episode passes through depth 1")
	})

	t.Run("same seed gives the same statistics", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)

		r1, err := NewMCTS(WithEpisodes(300), WithSeed(5)).Search(ctx, b)
		require.NoError(t, err)
		r2, err := NewMCTS(WithEpisodes(300), WithSeed(5)).Search(ctx, b)
		require.NoError(t, err)

		require.Equal(t, r1.Children, r2.Children)
		require.Equal(t, r1.Move, r2.Move)
	})

	t.Run("root parallel workers split the episodes", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithEpisodes(402), WithSeed(3), WithGoroutines(4), WithMetrics())

		result, err := m.Search(ctx, b)

		require.NoError(t, err)
		require.Equal(t, 402, totalVisits(result.Children))
		require.Equal(t, 402, result.Metric.Episodes)
		require.Equal(t, 4, result.Metric.Goroutines)
	})

	t.Run("duration budget stops the search", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithDuration(50*time.Millisecond), WithSeed(3), WithMetrics())

		start := time.Now()
		result, err := m.Search(ctx, b)

		require.NoError(t, err)
		require.Less(t, time.Since(start), time.Second)
		require.Greater(t, result.Metric.Episodes, 0)
	})

	t.Run("cancelled context ends the search early", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithDuration(time.Hour), WithSeed(3))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := m.Search(cancelled, b)

		require.NoError(t, err)
		require.Equal(t, 0, totalVisits(result.Children))
		require.Equal(t, game.Move{X: 0, Y: 0}, result.Move, "Without statistics the first move is chosen")
	})
}

func TestMCTSTree(t *testing.T) {
	t.Run("expansion and backpropagation keep visit counts consistent", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithEpisodes(400), WithSeed(11))

		root, done := m.buildTree(context.Background(), m.newWorker(0, b.ToMove()), b, time.Time{}, 400)

		require.Equal(t, 400, done)
		require.Equal(t, 400, root.visits)
		checkVisits(t, root)
	})

	t.Run("first iteration rolls out the first root child", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithEpisodes(1), WithSeed(11))

		root, _ := m.buildTree(context.Background(), m.newWorker(0, b.ToMove()), b, time.Time{}, 1)

		require.Len(t, root.children, 7, "Root children are expanded eagerly")
		require.Equal(t, 1, root.children[0].visits)
		require.Empty(t, root.children[0].children, "A first visit rolls out without expanding")
		for _, child := range root.children[1:] {
			require.Equal(t, 0, child.visits)
		}
	})

	t.Run("score only credits moves made by the winner", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithEpisodes(1))
		root := newNode(nil, game.Move{}, b)
		root.expand()
		child := root.children[2]
		child.expand()
		grandChild := child.children[1]

		// O moved at the root, X replied.
		m.backup(m.newWorker(0, game.PlayerB), grandChild, game.PlayerB)

		require.Equal(t, 1, grandChild.visits)
		require.Equal(t, 0, grandChild.score, "X made this move and lost")
		require.Equal(t, 1, child.score, "O made this move and won")
		require.Equal(t, 0, root.score, "Root has no move")
		require.Equal(t, 1, root.visits)
	})

	t.Run("table receives every node on the path", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		table := NewTable()
		m := NewMCTS(WithEpisodes(200), WithSeed(2), WithTable(table), WithMetrics())

		result, err := m.Search(context.Background(), b)
		require.NoError(t, err)

		stats, ok := table.Get(b)
		require.True(t, ok)
		require.Equal(t, int64(200), stats.Visits, "Root position is updated once per episode")
		require.Equal(t, table.Len(), result.Metric.TableEntries)
		require.Equal(t, 0, result.Metric.Collisions)
	})

	t.Run("parallel search with a table is reproducible", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		search := func() (Result, []Record) {
			table := NewTable()
			m := NewMCTS(WithEpisodes(4000), WithSeed(3), WithGoroutines(4), WithTable(table))
			result, err := m.Search(context.Background(), b)
			require.NoError(t, err)
			return result, table.Records()
		}

		r1, records1 := search()
		for i := 0; i < 3; i++ {
			r2, records2 := search()
			require.Equal(t, r1.Children, r2.Children)
			require.Equal(t, records1, records2)
		}
		require.Equal(t, 4000, totalVisits(r1.Children))
	})

	t.Run("table scores read the same from either seat", func(t *testing.T) {
		// X to move must block O's vertical three in the first column
		xBoard := parse(t, game.StandardRules(), ".......", ".......", "O......", "O......", "O......", "X..XX..")
		oBoard := parse(t, game.StandardRules(), ".......", ".......", "O......", "O......", "O......", "X..XX.X")
		win := game.Move{X: 0, Y: 4}
		won, err := oBoard.Play(win)
		require.NoError(t, err)

		table := NewTable()
		_, err = NewMCTS(WithEpisodes(3000), WithSeed(1), WithTable(table)).Search(context.Background(), xBoard)
		require.NoError(t, err)

		stored, ok := table.Get(won)
		require.True(t, ok, "X explored letting O complete the column")
		require.Positive(t, stored.Visits)
		require.Equal(t, -stored.Visits, stored.Score, "Stored as a loss for X")

		m := NewMCTS(WithEpisodes(50), WithSeed(1), WithTable(table))
		seen, ok := m.newWorker(0, game.PlayerB).table.get(won)
		require.True(t, ok)
		require.Equal(t, stored.Visits, seen.Score, "Read by O as a win for O")

		result, err := m.Search(context.Background(), oBoard)
		require.NoError(t, err)
		require.Equal(t, win, result.Move)
	})
}

func TestMCTSTreeReuse(t *testing.T) {
	ctx := context.Background()

	t.Run("continuing from the previous tree", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithEpisodes(300), WithSeed(4), WithTreeReuse(true), WithMetrics())

		first, err := m.Search(ctx, b)
		require.NoError(t, err)

		var played *node
		for _, child := range m.trees[0].children {
			if child.move == first.Move {
				played = child
			}
		}
		require.NotNil(t, played)
		require.NotEmpty(t, played.children, "Most visited child should be expanded")
		reply := played.children[argmax(len(played.children), func(i int) float64 {
			return float64(played.children[i].visits)
		})]
		before := reply.visits

		second, err := m.Search(ctx, reply.board.Clone())

		require.NoError(t, err)
		require.Same(t, reply, m.trees[0], "Matching grandchild should become the root")
		require.Nil(t, reply.parent)
		require.Equal(t, before+300, reply.visits)
		require.False(t, second.Metric.IsTreeReset)
	})

	t.Run("unknown position starts a fresh tree", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithEpisodes(100), WithSeed(4), WithTreeReuse(true), WithMetrics())
		_, err := m.Search(ctx, b)
		require.NoError(t, err)

		other := parse(t, game.StandardRules(), ".......", ".......", ".......", ".......", ".......", "X......")
		result, err := m.Search(ctx, other)

		require.NoError(t, err)
		require.True(t, result.Metric.IsTreeReset)
		require.Equal(t, 100, m.trees[0].visits)
	})

	t.Run("trees are discarded when reuse is off", func(t *testing.T) {
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithEpisodes(100), WithSeed(4), WithMetrics())

		result, err := m.Search(ctx, b)

		require.NoError(t, err)
		require.Nil(t, m.trees[0])
		require.True(t, result.Metric.IsTreeReset)
	})
}

func TestFindBestMove(t *testing.T) {
	children := []ChildStats{
		{Move: game.Move{X: 0}, Visits: 40, Score: 10},
		{Move: game.Move{X: 1}, Visits: 5, Score: 4},
		{Move: game.Move{X: 2}, Visits: 40, Score: 30},
	}

	t.Run("most visited child with ties to the lowest index", func(t *testing.T) {
		m := NewMCTS(WithFinalSelection(SelectMostVisited))
		require.Equal(t, 0, m.findBestMove(children))
	})

	t.Run("UCB1 at iteration one picks the best score per visit", func(t *testing.T) {
		m := NewMCTS(WithFinalSelection(SelectExplorationQuirk))
		require.Equal(t, 1, m.findBestMove(children), "Diverges from the most visited child")
	})
}

func TestCustomRollout(t *testing.T) {
	t.Run("rollout policy is pluggable", func(t *testing.T) {
		calls := 0
		always := func(b *game.Board, rng *rand.Rand) (game.Player, int) {
			calls++
			return game.PlayerB, 0
		}
		b := parse(t, game.StandardRules(), secondMoveRows...)
		m := NewMCTS(WithEpisodes(50), WithSeed(1), WithRollout(always))

		_, err := m.Search(context.Background(), b)

		require.NoError(t, err)
		require.Equal(t, 50, calls)
	})
}
