package game

import "fmt"

// Move places the mover's mark at (X, Y). For gravity games X is the column
// and Y the row the piece lands on, counted from the bottom.
type Move struct {
	X int
	Y int
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.X, m.Y)
}
