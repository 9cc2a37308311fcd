package minimax

import (
	"boards/game"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestArena(t *testing.T) {
	t.Run("push and undo restore the position", func(t *testing.T) {
		b := parse(t, ".......", ".......", ".......", "...O...", "..XX...", ".OXOX..")
		a := newArena(b)

		move := game.Move{X: 3, Y: 3}
		a.push(move, game.PlayerB)
		require.Equal(t, game.PlayerB, a.at(3, 3))
		require.Equal(t, 4, a.heights[3])

		a.undo(move)
		require.Equal(t, game.None, a.at(3, 3))
		require.Equal(t, 3, a.heights[3])
		for x := 0; x < 7; x++ {
			for y := 0; y < 6; y++ {
				require.Equal(t, b.At(x, y), a.at(x, y))
			}
		}
	})

	t.Run("candidates match the board's legal moves", func(t *testing.T) {
		b := parse(t, "X......", "O......", "X......", "O......", "X..O...", "O.XX...")
		a := newArena(b)

		require.Equal(t, b.LegalMoves(), a.candidates(nil))
	})

	t.Run("local win check agrees with the board over random games", func(t *testing.T) {
		for seed := uint64(0); seed < 30; seed++ {
			rng := rand.New(rand.NewSource(seed))
			b, _ := game.NewBoard(game.StandardRules())
			a := newArena(b)

			for {
				moves := b.LegalMoves()
				if len(moves) == 0 {
					break
				}
				move := moves[rng.Intn(len(moves))]
				a.push(move, b.ToMove())
				require.NoError(t, b.Apply(move))

				require.Equal(t, b.WinsAt(move.X, move.Y), a.wins(move), "Seed %d move %s", seed, move)
				if a.wins(move) {
					break
				}
			}
		}
	})

	t.Run("free placement candidates are empty cells", func(t *testing.T) {
		rules := game.Rules{Width: 3, Height: 3, Target: 3}
		b, err := game.ParseBoard(rules, "...", ".X.", "...")
		require.NoError(t, err)

		a := newArena(b)
		require.Equal(t, b.LegalMoves(), a.candidates(nil))
		require.Len(t, a.candidates(nil), 8)
	})
}
