package minimax

import "boards/game"

// arena is a single mutable grid shared by the whole recursion. Moves are
// pushed and undone in place instead of copying the board per node.
type arena struct {
	rules   game.Rules
	cells   []game.Player
	heights []int // Next free row per column
}

func newArena(b *game.Board) *arena {
	rules := b.Rules()
	a := &arena{
		rules:   rules,
		cells:   make([]game.Player, rules.Cells()),
		heights: make([]int, rules.Width),
	}
	for x := 0; x < rules.Width; x++ {
		for y := 0; y < rules.Height; y++ {
			if p := b.At(x, y); p != game.None {
				a.cells[y*rules.Width+x] = p
				a.heights[x] = y + 1
			}
		}
	}
	return a
}

func (a *arena) at(x, y int) game.Player {
	if x < 0 || x >= a.rules.Width || y < 0 || y >= a.rules.Height {
		return game.None
	}
	return a.cells[y*a.rules.Width+x]
}

// candidates lists moves in ascending order: non-full columns with gravity,
// empty cells row by row without it.
func (a *arena) candidates(buf []game.Move) []game.Move {
	buf = buf[:0]
	if a.rules.Gravity {
		for x, h := range a.heights {
			if h < a.rules.Height {
				buf = append(buf, game.Move{X: x, Y: h})
			}
		}
		return buf
	}
	for y := 0; y < a.rules.Height; y++ {
		for x := 0; x < a.rules.Width; x++ {
			if a.cells[y*a.rules.Width+x] == game.None {
				buf = append(buf, game.Move{X: x, Y: y})
			}
		}
	}
	return buf
}

func (a *arena) push(m game.Move, p game.Player) {
	a.cells[m.Y*a.rules.Width+m.X] = p
	if a.rules.Gravity {
		a.heights[m.X]++
	}
}

func (a *arena) undo(m game.Move) {
	a.cells[m.Y*a.rules.Width+m.X] = game.None
	if a.rules.Gravity {
		a.heights[m.X]--
	}
}

var axes = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// wins counts same-owner cells outward from the placed cell along each axis.
func (a *arena) wins(m game.Move) bool {
	owner := a.at(m.X, m.Y)
	for _, axis := range axes {
		count := 1
		for _, sign := range [2]int{1, -1} {
			dx, dy := axis[0]*sign, axis[1]*sign
			for x, y := m.X+dx, m.Y+dy; a.at(x, y) == owner; x, y = x+dx, y+dy {
				count++
			}
		}
		if count >= a.rules.Target {
			return true
		}
	}
	return false
}

func (a *arena) heuristic(p game.Player) int {
	return game.ScoreWindows(a.rules, a.at, p)
}
