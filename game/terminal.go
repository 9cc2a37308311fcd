package game

type direction struct {
	dx, dy int
}

// Scan order matters: the first winning streak found decides the winner.
var directions = [4]direction{
	{1, 0},  // horizontal
	{1, 1},  // diagonal up-right
	{0, 1},  // vertical
	{-1, 1}, // diagonal up-left
}

// Winner scans every occupied cell (x ascending, then y) for a streak of
// Target same-player marks starting there in each direction, returning the
// owner of the first streak found. It returns None if no streak exists.
func (b *Board) Winner() Player {
	target := b.rules.Target
	for x := 0; x < b.rules.Width; x++ {
		for y := 0; y < b.rules.Height; y++ {
			owner := b.cells[b.index(x, y)]
			if owner == None {
				continue
			}
			for _, d := range directions {
				if b.streak(x, y, d, owner, target) {
					return owner
				}
			}
		}
	}
	return None
}

func (b *Board) streak(x, y int, d direction, owner Player, length int) bool {
	for i := 1; i < length; i++ {
		cx, cy := x+d.dx*i, y+d.dy*i
		if !b.inBounds(cx, cy) || b.cells[b.index(cx, cy)] != owner {
			return false
		}
	}
	return true
}

// Status reports whether the game is over and who won. A full board without a
// streak is a draw: terminal with winner None.
func (b *Board) Status() (terminal bool, winner Player) {
	if w := b.Winner(); w != None {
		return true, w
	}
	return b.Full(), None
}

// Full reports whether no move remains.
func (b *Board) Full() bool {
	return b.occupied == len(b.cells)
}

// WinsAt reports whether the mark at (x, y) is part of a streak of Target
// marks, counting outward from the cell in both directions of each axis.
func (b *Board) WinsAt(x, y int) bool {
	owner := b.At(x, y)
	if owner == None {
		return false
	}
	for _, d := range directions {
		count := 1
		count += b.run(x, y, d.dx, d.dy, owner)
		count += b.run(x, y, -d.dx, -d.dy, owner)
		if count >= b.rules.Target {
			return true
		}
	}
	return false
}

func (b *Board) run(x, y, dx, dy int, owner Player) int {
	n := 0
	for cx, cy := x+dx, y+dy; b.inBounds(cx, cy) && b.cells[b.index(cx, cy)] == owner; cx, cy = cx+dx, cy+dy {
		n++
	}
	return n
}
